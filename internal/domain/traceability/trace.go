package traceability

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SupplyChainStage orders the lifecycle of a product batch
type SupplyChainStage string

const (
	StagePlanting   SupplyChainStage = "planting"
	StageGrowing    SupplyChainStage = "growing"
	StageHarvesting SupplyChainStage = "harvesting"
	StageProcessing SupplyChainStage = "processing"
	StagePackaging  SupplyChainStage = "packaging"
	StageStorage    SupplyChainStage = "storage"
	StageTransport  SupplyChainStage = "transport"
	StageRetail     SupplyChainStage = "retail"
)

// stageOrder positions each stage in the lifecycle, stages must not regress
var stageOrder = map[SupplyChainStage]int{
	StagePlanting:   1,
	StageGrowing:    2,
	StageHarvesting: 3,
	StageProcessing: 4,
	StagePackaging:  5,
	StageStorage:    6,
	StageTransport:  7,
	StageRetail:     8,
}

// IsValid checks if the stage is valid
func (s SupplyChainStage) IsValid() bool {
	_, ok := stageOrder[s]
	return ok
}

// Order returns the stage's position in the lifecycle
func (s SupplyChainStage) Order() int {
	return stageOrder[s]
}

// genesisHash anchors the first event of every chain
const genesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// SupplyChainEvent is one link in a trace's tamper-evident chain.
// Hash covers the previous hash and the event's canonical payload,
// so altering any stored event breaks verification of its successors.
type SupplyChainEvent struct {
	shared.BaseEntity
	TraceID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	Sequence     int              `gorm:"not null"`
	Stage        SupplyChainStage `gorm:"type:varchar(20);not null"`
	ActorID      uuid.UUID        `gorm:"type:uuid;not null"`
	ActorName    string           `gorm:"type:varchar(200)"`
	Location     string           `gorm:"type:varchar(255)"`
	OccurredAt   time.Time        `gorm:"not null"`
	Data         string           `gorm:"type:jsonb"` // stage-specific details as JSON
	PreviousHash string           `gorm:"type:char(64);not null"`
	Hash         string           `gorm:"type:char(64);not null"`
}

// TableName returns the table name for GORM
func (SupplyChainEvent) TableName() string {
	return "supply_chain_events"
}

// canonicalPayload is the exact byte string the hash commits to.
// Changing this format invalidates every stored chain.
func (e *SupplyChainEvent) canonicalPayload() string {
	return strings.Join([]string{
		e.TraceID.String(),
		fmt.Sprintf("%d", e.Sequence),
		string(e.Stage),
		e.ActorID.String(),
		e.Location,
		e.OccurredAt.UTC().Format(time.RFC3339Nano),
		e.Data,
	}, "|")
}

// ComputeHash derives the event hash from the previous hash and payload
func (e *SupplyChainEvent) ComputeHash() string {
	sum := sha256.Sum256([]byte(e.PreviousHash + e.canonicalPayload()))
	return hex.EncodeToString(sum[:])
}

// ProductTrace is the traceable history of one product batch
type ProductTrace struct {
	shared.BaseAggregateRoot
	ProductID   uuid.UUID          `gorm:"type:uuid;not null;index"`
	FarmID      uuid.UUID          `gorm:"type:uuid;not null;index"`
	BatchNumber string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	Events      []SupplyChainEvent `gorm:"foreignKey:TraceID"`
	ScanCount   int64              `gorm:"not null;default:0"`
	Sealed      bool               `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ProductTrace) TableName() string {
	return "product_traces"
}

// NewProductTrace opens a trace for a product batch
func NewProductTrace(productID, farmID uuid.UUID, batchNumber string) (*ProductTrace, error) {
	if productID == uuid.Nil || farmID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product and farm are required")
	}
	if batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH", "Batch number cannot be empty")
	}

	return &ProductTrace{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		FarmID:            farmID,
		BatchNumber:       batchNumber,
	}, nil
}

// AppendEvent adds the next link to the chain. The stage must not come
// before the latest recorded stage in the lifecycle ordering.
func (t *ProductTrace) AppendEvent(stage SupplyChainStage, actorID uuid.UUID, actorName, location, data string, occurredAt time.Time) (*SupplyChainEvent, error) {
	if t.Sealed {
		return nil, shared.NewDomainError("TRACE_SEALED", "Trace is sealed, no further events accepted")
	}
	if !stage.IsValid() {
		return nil, shared.NewDomainError("INVALID_STAGE", "Unknown supply chain stage")
	}
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}
	if data == "" {
		data = "{}"
	}

	previousHash := genesisHash
	if n := len(t.Events); n > 0 {
		last := &t.Events[n-1]
		if stage.Order() < last.Stage.Order() {
			return nil, shared.NewDomainError("STAGE_REGRESSION", "Stage cannot precede the latest recorded stage")
		}
		previousHash = last.Hash
	}

	event := SupplyChainEvent{
		BaseEntity:   shared.NewBaseEntity(),
		TraceID:      t.ID,
		Sequence:     len(t.Events) + 1,
		Stage:        stage,
		ActorID:      actorID,
		ActorName:    actorName,
		Location:     location,
		OccurredAt:   occurredAt,
		Data:         data,
		PreviousHash: previousHash,
	}
	event.Hash = event.ComputeHash()

	t.Events = append(t.Events, event)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	if stage == StageRetail {
		t.Sealed = true
	}

	return &t.Events[len(t.Events)-1], nil
}

// Verify recomputes the whole chain and reports the first broken link.
// A nil error means no stored event has been altered.
func (t *ProductTrace) Verify() error {
	previousHash := genesisHash
	for i := range t.Events {
		e := &t.Events[i]
		if e.PreviousHash != previousHash {
			return shared.NewDomainError("CHAIN_BROKEN", fmt.Sprintf("Event %d does not link to its predecessor", e.Sequence))
		}
		if e.ComputeHash() != e.Hash {
			return shared.NewDomainError("CHAIN_TAMPERED", fmt.Sprintf("Event %d payload does not match its hash", e.Sequence))
		}
		previousHash = e.Hash
	}
	return nil
}

// CurrentStage returns the latest recorded stage, empty when no events
func (t *ProductTrace) CurrentStage() SupplyChainStage {
	if len(t.Events) == 0 {
		return ""
	}
	return t.Events[len(t.Events)-1].Stage
}

// RecordScan counts a consumer QR scan
func (t *ProductTrace) RecordScan() {
	t.ScanCount++
	t.UpdatedAt = time.Now()
}

// QRPayload is what gets encoded into the printed QR code
func (t *ProductTrace) QRPayload(baseURL string) string {
	return fmt.Sprintf("%s/api/v1/traceability/scan/%s", strings.TrimRight(baseURL, "/"), t.BatchNumber)
}

// ConsumerScan records one public lookup of a trace
type ConsumerScan struct {
	shared.BaseEntity
	TraceID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ScannedAt time.Time `gorm:"not null"`
	Location  string    `gorm:"type:varchar(255)"`
	UserAgent string    `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (ConsumerScan) TableName() string {
	return "consumer_scans"
}

// NewConsumerScan records a public trace lookup
func NewConsumerScan(traceID uuid.UUID, location, userAgent string) *ConsumerScan {
	return &ConsumerScan{
		BaseEntity: shared.NewBaseEntity(),
		TraceID:    traceID,
		ScannedAt:  time.Now(),
		Location:   location,
		UserAgent:  userAgent,
	}
}

// TraceRepository defines the interface for trace persistence
type TraceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductTrace, error)
	FindByBatchNumber(ctx context.Context, batchNumber string) (*ProductTrace, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]ProductTrace, error)
	Save(ctx context.Context, trace *ProductTrace) error
	SaveScan(ctx context.Context, scan *ConsumerScan) error
}
