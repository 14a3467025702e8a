package traceability

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Farm is a registered production site tied to a farmer
type Farm struct {
	shared.BaseAggregateRoot
	FarmerID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name               string          `gorm:"type:varchar(200);not null"`
	Country            string          `gorm:"type:varchar(2);not null"`
	Region             string          `gorm:"type:varchar(100)"`
	Location           string          `gorm:"type:varchar(255)"`
	Latitude           *float64        `gorm:"type:decimal(10,7)"`
	Longitude          *float64        `gorm:"type:decimal(10,7)"`
	SizeHectares       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	OrganicCertified   bool            `gorm:"not null;default:false"`
	RegistrationNumber string          `gorm:"type:varchar(50);uniqueIndex"`
	Active             bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Farm) TableName() string {
	return "farms"
}

// NewFarm registers a farm for a farmer
func NewFarm(farmerID uuid.UUID, name, country, region string, sizeHectares decimal.Decimal) (*Farm, error) {
	if farmerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FARMER", "Farmer ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Farm name cannot be empty")
	}
	if len(country) != 2 {
		return nil, shared.NewDomainError("INVALID_COUNTRY", "Country must be a two-letter ISO code")
	}
	if !sizeHectares.IsPositive() {
		return nil, shared.NewDomainError("INVALID_SIZE", "Farm size must be positive")
	}

	return &Farm{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FarmerID:          farmerID,
		Name:              name,
		Country:           country,
		Region:            region,
		SizeHectares:      sizeHectares,
		Active:            true,
	}, nil
}

// SetCoordinates records the farm's GPS position
func (f *Farm) SetCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return shared.NewDomainError("INVALID_COORDINATES", "Coordinates out of range")
	}
	f.Latitude = &lat
	f.Longitude = &lng
	f.UpdatedAt = time.Now()
	return nil
}

// SetRegistration records the official registration number
func (f *Farm) SetRegistration(number string) {
	f.RegistrationNumber = number
	f.UpdatedAt = time.Now()
}

// CertifyOrganic flags the farm as organic certified
func (f *Farm) CertifyOrganic() {
	f.OrganicCertified = true
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

// RevokeOrganic removes organic certification
func (f *Farm) RevokeOrganic() {
	f.OrganicCertified = false
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

// FarmRepository defines the interface for farm persistence
type FarmRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Farm, error)
	FindByFarmer(ctx context.Context, farmerID uuid.UUID) ([]Farm, error)
	FindByRegistration(ctx context.Context, number string) (*Farm, error)
	Save(ctx context.Context, farm *Farm) error
}
