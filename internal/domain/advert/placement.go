package advert

import (
	"context"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PlacementLocation is where on the platform an ad slot appears
type PlacementLocation string

const (
	PlacementHomeBanner    PlacementLocation = "home_banner"
	PlacementSearchResults PlacementLocation = "search_results"
	PlacementProductPage   PlacementLocation = "product_page"
	PlacementDashboard     PlacementLocation = "dashboard"
)

// IsValid checks if the placement location is valid
func (l PlacementLocation) IsValid() bool {
	switch l {
	case PlacementHomeBanner, PlacementSearchResults, PlacementProductPage, PlacementDashboard:
		return true
	}
	return false
}

// AdPlacement is a sellable slot on the platform
type AdPlacement struct {
	shared.BaseAggregateRoot
	Location PlacementLocation `gorm:"type:varchar(30);not null;uniqueIndex"`
	Name     string            `gorm:"type:varchar(100);not null"`
	Width    int               `gorm:"not null"`
	Height   int               `gorm:"not null"`
	MaxSlots int               `gorm:"not null;default:1"`
	Active   bool              `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (AdPlacement) TableName() string {
	return "ad_placements"
}

// NewAdPlacement creates a placement definition
func NewAdPlacement(location PlacementLocation, name string, width, height, maxSlots int) (*AdPlacement, error) {
	if !location.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Unknown placement location")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Placement name cannot be empty")
	}
	if width <= 0 || height <= 0 {
		return nil, shared.NewDomainError("INVALID_DIMENSIONS", "Placement dimensions must be positive")
	}
	if maxSlots <= 0 {
		return nil, shared.NewDomainError("INVALID_SLOTS", "Placement must offer at least one slot")
	}

	return &AdPlacement{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Location:          location,
		Name:              name,
		Width:             width,
		Height:            height,
		MaxSlots:          maxSlots,
		Active:            true,
	}, nil
}

// SetActive opens or closes the slot for new campaigns
func (p *AdPlacement) SetActive(active bool) {
	p.Active = active
	p.IncrementVersion()
}

// PlacementRepository defines the interface for placement persistence
type PlacementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AdPlacement, error)
	FindByLocation(ctx context.Context, location PlacementLocation) (*AdPlacement, error)
	FindAll(ctx context.Context) ([]AdPlacement, error)
	Save(ctx context.Context, placement *AdPlacement) error
}
