package warehouse

import (
	"context"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/warehouse"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WarehouseService manages storage facilities and their zones
type WarehouseService struct {
	warehouseRepo warehouse.WarehouseRepository
	logger        *zap.Logger
}

// NewWarehouseService creates a new warehouse service
func NewWarehouseService(warehouseRepo warehouse.WarehouseRepository, logger *zap.Logger) *WarehouseService {
	return &WarehouseService{
		warehouseRepo: warehouseRepo,
		logger:        logger,
	}
}

// Create registers a new warehouse
func (s *WarehouseService) Create(ctx context.Context, req CreateWarehouseRequest) (*WarehouseResponse, error) {
	exists, err := s.warehouseRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		s.logger.Error("Failed to check warehouse code", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create warehouse")
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_CODE", "A warehouse with this code already exists")
	}

	wh, err := warehouse.NewWarehouse(req.Code, req.Name, warehouse.WarehouseType(req.Type), req.Country, req.CapacityM3)
	if err != nil {
		return nil, err
	}
	wh.Region = req.Region
	wh.City = req.City

	if err := s.warehouseRepo.Save(ctx, wh); err != nil {
		s.logger.Error("Failed to save warehouse", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create warehouse")
	}

	s.logger.Info("Warehouse created",
		zap.String("warehouse_id", wh.ID.String()),
		zap.String("code", wh.Code))

	response := ToWarehouseResponse(wh)
	return &response, nil
}

// AddZone adds a storage zone to an existing warehouse
func (s *WarehouseService) AddZone(ctx context.Context, warehouseID uuid.UUID, req AddZoneRequest) (*WarehouseResponse, error) {
	wh, err := s.warehouseRepo.FindByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	if _, err := wh.AddZone(req.Code, warehouse.ZoneType(req.Type), req.Capacity); err != nil {
		return nil, err
	}

	if err := s.warehouseRepo.Save(ctx, wh); err != nil {
		s.logger.Error("Failed to save warehouse zone", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to add zone")
	}

	response := ToWarehouseResponse(wh)
	return &response, nil
}

// SetManager assigns a manager to the warehouse
func (s *WarehouseService) SetManager(ctx context.Context, warehouseID, managerID uuid.UUID) (*WarehouseResponse, error) {
	wh, err := s.warehouseRepo.FindByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	if err := wh.SetManager(managerID); err != nil {
		return nil, err
	}

	return s.saveAndRespond(ctx, wh)
}

// SetControls toggles environmental controls
func (s *WarehouseService) SetControls(ctx context.Context, warehouseID uuid.UUID, req SetControlsRequest) (*WarehouseResponse, error) {
	wh, err := s.warehouseRepo.FindByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	wh.SetControls(req.Temperature, req.Humidity)

	return s.saveAndRespond(ctx, wh)
}

// CertifyOrganic marks the warehouse as certified for organic storage
func (s *WarehouseService) CertifyOrganic(ctx context.Context, warehouseID uuid.UUID) (*WarehouseResponse, error) {
	wh, err := s.warehouseRepo.FindByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	wh.CertifyOrganic()

	return s.saveAndRespond(ctx, wh)
}

// EnterMaintenance takes the warehouse offline for maintenance
func (s *WarehouseService) EnterMaintenance(ctx context.Context, warehouseID uuid.UUID) (*WarehouseResponse, error) {
	wh, err := s.warehouseRepo.FindByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	if err := wh.EnterMaintenance(); err != nil {
		return nil, err
	}

	return s.saveAndRespond(ctx, wh)
}

// Reopen brings a warehouse back from maintenance
func (s *WarehouseService) Reopen(ctx context.Context, warehouseID uuid.UUID) (*WarehouseResponse, error) {
	wh, err := s.warehouseRepo.FindByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	if err := wh.Reopen(); err != nil {
		return nil, err
	}

	return s.saveAndRespond(ctx, wh)
}

// Close permanently closes a warehouse
func (s *WarehouseService) Close(ctx context.Context, warehouseID uuid.UUID) (*WarehouseResponse, error) {
	wh, err := s.warehouseRepo.FindByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	wh.Close()

	return s.saveAndRespond(ctx, wh)
}

// Get retrieves a warehouse with its zones
func (s *WarehouseService) Get(ctx context.Context, warehouseID uuid.UUID) (*WarehouseResponse, error) {
	wh, err := s.warehouseRepo.FindByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	response := ToWarehouseResponse(wh)
	return &response, nil
}

// List lists warehouses, optionally filtered by country
func (s *WarehouseService) List(ctx context.Context, filter WarehouseListFilter) ([]WarehouseResponse, int64, error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		OrderBy:  "code",
		OrderDir: "asc",
		Filters:  map[string]interface{}{},
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 20
	}

	var warehouses []warehouse.Warehouse
	var err error
	if filter.Country != "" {
		warehouses, err = s.warehouseRepo.FindByCountry(ctx, filter.Country, f)
		f.Filters["country"] = filter.Country
	} else {
		warehouses, err = s.warehouseRepo.FindAll(ctx, f)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.warehouseRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]WarehouseResponse, len(warehouses))
	for i := range warehouses {
		responses[i] = ToWarehouseResponse(&warehouses[i])
	}
	return responses, total, nil
}

func (s *WarehouseService) saveAndRespond(ctx context.Context, wh *warehouse.Warehouse) (*WarehouseResponse, error) {
	if err := s.warehouseRepo.Save(ctx, wh); err != nil {
		s.logger.Error("Failed to save warehouse",
			zap.String("warehouse_id", wh.ID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update warehouse")
	}

	response := ToWarehouseResponse(wh)
	return &response, nil
}
