package warehouse

import (
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TemperatureLog is a sensor reading for a warehouse zone
type TemperatureLog struct {
	shared.BaseEntity
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;index"`
	ZoneID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Celsius     float64   `gorm:"not null"`
	Humidity    *float64
	InRange     bool      `gorm:"not null"`
	RecordedAt  time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (TemperatureLog) TableName() string {
	return "temperature_logs"
}

// NewTemperatureLog records a reading and marks it against the
// acceptable band for the warehouse type
func NewTemperatureLog(wh *Warehouse, zoneID uuid.UUID, celsius float64, humidity *float64, recordedAt time.Time) (*TemperatureLog, error) {
	if wh == nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse is required")
	}
	if wh.FindZone(zoneID) == nil {
		return nil, shared.NewDomainError("ZONE_NOT_FOUND", "Zone does not belong to this warehouse")
	}

	min, max := wh.Type.TemperatureRange()
	return &TemperatureLog{
		BaseEntity:  shared.NewBaseEntity(),
		WarehouseID: wh.ID,
		ZoneID:      zoneID,
		Celsius:     celsius,
		Humidity:    humidity,
		InRange:     celsius >= min && celsius <= max,
		RecordedAt:  recordedAt,
	}, nil
}

// NeedsAlert reports whether the reading should trigger an alert
func (l *TemperatureLog) NeedsAlert() bool {
	return !l.InRange
}
