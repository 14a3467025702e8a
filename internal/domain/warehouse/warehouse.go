package warehouse

import (
	"strings"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WarehouseType determines storage conditions and the acceptable
// temperature band for the facility
type WarehouseType string

const (
	WarehouseTypeDry        WarehouseType = "dry"
	WarehouseTypeCold       WarehouseType = "cold"
	WarehouseTypeOrganic    WarehouseType = "organic"
	WarehouseTypeProcessing WarehouseType = "processing"
)

// IsValid checks if the warehouse type is valid
func (t WarehouseType) IsValid() bool {
	switch t {
	case WarehouseTypeDry, WarehouseTypeCold, WarehouseTypeOrganic, WarehouseTypeProcessing:
		return true
	}
	return false
}

// TemperatureRange returns the acceptable band in Celsius for the type
func (t WarehouseType) TemperatureRange() (min, max float64) {
	switch t {
	case WarehouseTypeCold:
		return 0, 8
	default:
		return 10, 35
	}
}

// WarehouseStatus represents the operational status of a warehouse
type WarehouseStatus string

const (
	WarehouseStatusActive      WarehouseStatus = "active"
	WarehouseStatusMaintenance WarehouseStatus = "maintenance"
	WarehouseStatusClosed      WarehouseStatus = "closed"
)

// Warehouse is an aggregate root for a storage facility
type Warehouse struct {
	shared.BaseAggregateRoot
	Code               string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name               string          `gorm:"type:varchar(200);not null"`
	Type               WarehouseType   `gorm:"type:varchar(20);not null"`
	Country            string          `gorm:"type:varchar(2);not null;default:'GH'"`
	Region             string          `gorm:"type:varchar(100)"`
	City               string          `gorm:"type:varchar(100)"`
	CapacityM3         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TemperatureControl bool            `gorm:"not null;default:false"`
	HumidityControl    bool            `gorm:"not null;default:false"`
	OrganicCertified   bool            `gorm:"not null;default:false"`
	ManagerID          *uuid.UUID      `gorm:"type:uuid;index"`
	Status             WarehouseStatus `gorm:"type:varchar(20);not null;default:'active'"`

	Zones []Zone `gorm:"foreignKey:WarehouseID;references:ID"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new warehouse
func NewWarehouse(code, name string, whType WarehouseType, country string, capacityM3 decimal.Decimal) (*Warehouse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > 20 {
		return nil, shared.NewDomainError("INVALID_CODE", "Warehouse code must be 1-20 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Warehouse name cannot be empty")
	}
	if !whType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown warehouse type")
	}
	country = strings.ToUpper(strings.TrimSpace(country))
	if len(country) != 2 {
		return nil, shared.NewDomainError("INVALID_COUNTRY", "Country must be a two-letter ISO code")
	}
	if capacityM3.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_CAPACITY", "Capacity must be positive")
	}

	return &Warehouse{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		Code:               code,
		Name:               name,
		Type:               whType,
		Country:            country,
		CapacityM3:         capacityM3,
		TemperatureControl: whType == WarehouseTypeCold,
		Status:             WarehouseStatusActive,
		Zones:              make([]Zone, 0),
	}, nil
}

// AddZone adds a storage zone to the warehouse.
// Total zone capacity may not exceed the warehouse capacity.
func (w *Warehouse) AddZone(code string, zoneType ZoneType, capacity decimal.Decimal) (*Zone, error) {
	if w.Status != WarehouseStatusActive {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add zones to an inactive warehouse")
	}

	allocated := decimal.Zero
	for _, z := range w.Zones {
		if strings.EqualFold(z.Code, code) {
			return nil, shared.NewDomainError("DUPLICATE_ZONE", "Zone code already exists in this warehouse")
		}
		allocated = allocated.Add(z.Capacity)
	}
	if allocated.Add(capacity).GreaterThan(w.CapacityM3) {
		return nil, shared.NewDomainError("CAPACITY_EXCEEDED", "Zone capacity exceeds remaining warehouse capacity")
	}

	zone, err := NewZone(w.ID, code, zoneType, capacity)
	if err != nil {
		return nil, err
	}

	w.Zones = append(w.Zones, *zone)
	w.UpdatedAt = time.Now()
	w.IncrementVersion()

	return zone, nil
}

// SetManager assigns the warehouse manager
func (w *Warehouse) SetManager(managerID uuid.UUID) error {
	if managerID == uuid.Nil {
		return shared.NewDomainError("INVALID_MANAGER", "Manager ID cannot be empty")
	}
	w.ManagerID = &managerID
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	return nil
}

// SetControls sets the environmental control flags
func (w *Warehouse) SetControls(temperature, humidity bool) {
	w.TemperatureControl = temperature
	w.HumidityControl = humidity
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}

// CertifyOrganic marks the facility as certified for organic storage
func (w *Warehouse) CertifyOrganic() {
	w.OrganicCertified = true
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}

// EnterMaintenance takes the warehouse out of service temporarily
func (w *Warehouse) EnterMaintenance() error {
	if w.Status == WarehouseStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Warehouse is closed")
	}
	w.Status = WarehouseStatusMaintenance
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	return nil
}

// Reopen returns the warehouse to active service
func (w *Warehouse) Reopen() error {
	if w.Status == WarehouseStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Warehouse is closed")
	}
	w.Status = WarehouseStatusActive
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	return nil
}

// Close permanently closes the warehouse
func (w *Warehouse) Close() {
	w.Status = WarehouseStatusClosed
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}

// Utilization returns the share of zone capacity in use, 0-100
func (w *Warehouse) Utilization() decimal.Decimal {
	capacity := decimal.Zero
	used := decimal.Zero
	for _, z := range w.Zones {
		capacity = capacity.Add(z.Capacity)
		used = used.Add(z.CurrentStock)
	}
	if capacity.IsZero() {
		return decimal.Zero
	}
	return used.Div(capacity).Mul(decimal.NewFromInt(100)).Round(2)
}

// FindZone returns the zone with the given ID, or nil
func (w *Warehouse) FindZone(zoneID uuid.UUID) *Zone {
	for idx := range w.Zones {
		if w.Zones[idx].ID == zoneID {
			return &w.Zones[idx]
		}
	}
	return nil
}

// ZoneType classifies what a zone may hold
type ZoneType string

const (
	ZoneTypeStorage     ZoneType = "storage"
	ZoneTypeColdStorage ZoneType = "cold_storage"
	ZoneTypeQuarantine  ZoneType = "quarantine"
	ZoneTypeLoading     ZoneType = "loading"
	ZoneTypeOrganic     ZoneType = "organic"
)

// IsValid checks if the zone type is valid
func (t ZoneType) IsValid() bool {
	switch t {
	case ZoneTypeStorage, ZoneTypeColdStorage, ZoneTypeQuarantine, ZoneTypeLoading, ZoneTypeOrganic:
		return true
	}
	return false
}

// Zone is a storage area inside a warehouse
type Zone struct {
	shared.BaseEntity
	WarehouseID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Code         string          `gorm:"type:varchar(20);not null"`
	Type         ZoneType        `gorm:"type:varchar(20);not null"`
	Capacity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CurrentStock decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Zone) TableName() string {
	return "warehouse_zones"
}

// NewZone creates a new zone
func NewZone(warehouseID uuid.UUID, code string, zoneType ZoneType, capacity decimal.Decimal) (*Zone, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > 20 {
		return nil, shared.NewDomainError("INVALID_ZONE_CODE", "Zone code must be 1-20 characters")
	}
	if !zoneType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ZONE_TYPE", "Unknown zone type")
	}
	if capacity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_CAPACITY", "Zone capacity must be positive")
	}

	return &Zone{
		BaseEntity:   shared.NewBaseEntity(),
		WarehouseID:  warehouseID,
		Code:         code,
		Type:         zoneType,
		Capacity:     capacity,
		CurrentStock: decimal.Zero,
	}, nil
}

// AddStock increases the zone's stock level, bounded by capacity
func (z *Zone) AddStock(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if z.CurrentStock.Add(quantity).GreaterThan(z.Capacity) {
		return shared.NewDomainError("ZONE_FULL", "Zone does not have enough free capacity")
	}
	z.CurrentStock = z.CurrentStock.Add(quantity)
	z.UpdatedAt = time.Now()
	return nil
}

// RemoveStock decreases the zone's stock level
func (z *Zone) RemoveStock(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity.GreaterThan(z.CurrentStock) {
		return shared.ErrInsufficientStock
	}
	z.CurrentStock = z.CurrentStock.Sub(quantity)
	z.UpdatedAt = time.Now()
	return nil
}

// FreeCapacity returns the remaining capacity in the zone
func (z *Zone) FreeCapacity() decimal.Decimal {
	return z.Capacity.Sub(z.CurrentStock)
}
