package traceability

import (
	"time"

	"github.com/agriconnect/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterFarmRequest registers a production site for a farmer
type RegisterFarmRequest struct {
	Name               string          `json:"name" binding:"required,max=200"`
	Country            string          `json:"country" binding:"required,len=2"`
	Region             string          `json:"region" binding:"max=100"`
	Location           string          `json:"location" binding:"max=255"`
	Latitude           *float64        `json:"latitude"`
	Longitude          *float64        `json:"longitude"`
	SizeHectares       decimal.Decimal `json:"size_hectares" binding:"required"`
	RegistrationNumber string          `json:"registration_number" binding:"max=50"`
}

// SetCoordinatesRequest records a farm's GPS position
type SetCoordinatesRequest struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
}

// FarmResponse is the outward representation of a farm
type FarmResponse struct {
	ID                 uuid.UUID       `json:"id"`
	FarmerID           uuid.UUID       `json:"farmer_id"`
	Name               string          `json:"name"`
	Country            string          `json:"country"`
	Region             string          `json:"region,omitempty"`
	Location           string          `json:"location,omitempty"`
	Latitude           *float64        `json:"latitude,omitempty"`
	Longitude          *float64        `json:"longitude,omitempty"`
	SizeHectares       decimal.Decimal `json:"size_hectares"`
	OrganicCertified   bool            `json:"organic_certified"`
	RegistrationNumber string          `json:"registration_number,omitempty"`
	Active             bool            `json:"active"`
	CreatedAt          time.Time       `json:"created_at"`
}

// ToFarmResponse converts a domain farm
func ToFarmResponse(f *traceability.Farm) FarmResponse {
	return FarmResponse{
		ID:                 f.ID,
		FarmerID:           f.FarmerID,
		Name:               f.Name,
		Country:            f.Country,
		Region:             f.Region,
		Location:           f.Location,
		Latitude:           f.Latitude,
		Longitude:          f.Longitude,
		SizeHectares:       f.SizeHectares,
		OrganicCertified:   f.OrganicCertified,
		RegistrationNumber: f.RegistrationNumber,
		Active:             f.Active,
		CreatedAt:          f.CreatedAt,
	}
}

// CreateTraceRequest opens a trace for a product batch
type CreateTraceRequest struct {
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	FarmID      uuid.UUID `json:"farm_id" binding:"required"`
	BatchNumber string    `json:"batch_number" binding:"required,max=50"`
}

// AppendEventRequest adds the next link to a trace's chain
type AppendEventRequest struct {
	Stage      string     `json:"stage" binding:"required,oneof=planting growing harvesting processing packaging storage transport retail"`
	Location   string     `json:"location" binding:"max=255"`
	Data       string     `json:"data"`
	OccurredAt *time.Time `json:"occurred_at"`
}

// SupplyChainEventResponse is one link of a trace's chain
type SupplyChainEventResponse struct {
	Sequence   int       `json:"sequence"`
	Stage      string    `json:"stage"`
	ActorName  string    `json:"actor_name,omitempty"`
	Location   string    `json:"location,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       string    `json:"data,omitempty"`
	Hash       string    `json:"hash"`
}

// TraceResponse is the owner's view of a product trace
type TraceResponse struct {
	ID           uuid.UUID                  `json:"id"`
	ProductID    uuid.UUID                  `json:"product_id"`
	FarmID       uuid.UUID                  `json:"farm_id"`
	BatchNumber  string                     `json:"batch_number"`
	CurrentStage string                     `json:"current_stage,omitempty"`
	ScanCount    int64                      `json:"scan_count"`
	Sealed       bool                       `json:"sealed"`
	QRPayload    string                     `json:"qr_payload"`
	Events       []SupplyChainEventResponse `json:"events"`
	CreatedAt    time.Time                  `json:"created_at"`
}

// ToTraceResponse converts a domain trace
func ToTraceResponse(t *traceability.ProductTrace, baseURL string) TraceResponse {
	return TraceResponse{
		ID:           t.ID,
		ProductID:    t.ProductID,
		FarmID:       t.FarmID,
		BatchNumber:  t.BatchNumber,
		CurrentStage: string(t.CurrentStage()),
		ScanCount:    t.ScanCount,
		Sealed:       t.Sealed,
		QRPayload:    t.QRPayload(baseURL),
		Events:       toEventResponses(t.Events),
		CreatedAt:    t.CreatedAt,
	}
}

func toEventResponses(events []traceability.SupplyChainEvent) []SupplyChainEventResponse {
	responses := make([]SupplyChainEventResponse, len(events))
	for i := range events {
		responses[i] = SupplyChainEventResponse{
			Sequence:   events[i].Sequence,
			Stage:      string(events[i].Stage),
			ActorName:  events[i].ActorName,
			Location:   events[i].Location,
			OccurredAt: events[i].OccurredAt,
			Data:       events[i].Data,
			Hash:       events[i].Hash,
		}
	}
	return responses
}

// VerifyResponse reports whether a trace's chain is intact
type VerifyResponse struct {
	BatchNumber string `json:"batch_number"`
	Valid       bool   `json:"valid"`
	Reason      string `json:"reason,omitempty"`
}

// PublicTraceResponse is what a consumer sees after scanning a QR code.
// It exposes provenance, not the owner's identifiers.
type PublicTraceResponse struct {
	BatchNumber      string                     `json:"batch_number"`
	ProductName      string                     `json:"product_name"`
	FarmName         string                     `json:"farm_name"`
	FarmRegion       string                     `json:"farm_region,omitempty"`
	FarmCountry      string                     `json:"farm_country"`
	OrganicCertified bool                       `json:"organic_certified"`
	CurrentStage     string                     `json:"current_stage,omitempty"`
	Verified         bool                       `json:"verified"`
	Events           []SupplyChainEventResponse `json:"events"`
}
