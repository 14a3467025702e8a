package warehouse

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/warehouse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InventoryService tracks physical stock across warehouses. Every
// quantity change writes exactly one movement record.
type InventoryService struct {
	warehouseRepo  warehouse.WarehouseRepository
	inventoryRepo  warehouse.InventoryRepository
	movementRepo   warehouse.MovementRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	warehouseRepo warehouse.WarehouseRepository,
	inventoryRepo warehouse.InventoryRepository,
	movementRepo warehouse.MovementRepository,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		warehouseRepo: warehouseRepo,
		inventoryRepo: inventoryRepo,
		movementRepo:  movementRepo,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for stock events
func (s *InventoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Receive books inbound stock into a zone, creating the inventory
// record on first receipt
func (s *InventoryService) Receive(ctx context.Context, operatorID uuid.UUID, req ReceiveStockRequest) (*InventoryItemResponse, error) {
	wh, err := s.warehouseRepo.FindByID(ctx, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh.Status != warehouse.WarehouseStatusActive {
		return nil, shared.NewDomainError("WAREHOUSE_INACTIVE", "Warehouse is not accepting stock")
	}
	zone := wh.FindZone(req.ZoneID)
	if zone == nil {
		return nil, shared.NewDomainError("ZONE_NOT_FOUND", "Zone does not belong to this warehouse")
	}

	item, err := s.inventoryRepo.FindByLocation(ctx, req.WarehouseID, req.ZoneID, req.ProductID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		item, err = warehouse.NewInventoryItem(req.WarehouseID, req.ZoneID, req.ProductID)
		if err != nil {
			return nil, err
		}
	}

	if err := zone.AddStock(req.Quantity); err != nil {
		return nil, err
	}
	if err := item.Receive(req.Quantity, req.BatchNumber, req.LotNumber, req.HarvestDate, req.ExpiryDate); err != nil {
		return nil, err
	}

	if err := s.inventoryRepo.Save(ctx, item); err != nil {
		s.logger.Error("Failed to save inventory item", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to receive stock")
	}
	if err := s.warehouseRepo.Save(ctx, wh); err != nil {
		s.logger.Error("Failed to save zone stock level", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to receive stock")
	}

	s.recordMovement(ctx, warehouse.MovementTypeInbound, req.WarehouseID, req.ProductID, req.Quantity,
		func(m *warehouse.StockMovement) {
			m.WithZones(nil, &req.ZoneID).WithOperator(operatorID)
		})

	s.publishEvents(ctx, item)

	s.logger.Info("Stock received",
		zap.String("warehouse_id", req.WarehouseID.String()),
		zap.String("product_id", req.ProductID.String()),
		zap.String("quantity", req.Quantity.String()))

	response := ToInventoryItemResponse(item)
	return &response, nil
}

// ReserveForOrder holds stock for an order, drawing from the
// soonest-expiring batches first
func (s *InventoryService) ReserveForOrder(ctx context.Context, orderID, productID uuid.UUID, quantity decimal.Decimal) error {
	items, err := s.availableByExpiry(ctx, productID)
	if err != nil {
		return err
	}

	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].Available())
	}
	if total.LessThan(quantity) {
		return shared.ErrInsufficientStock
	}

	remaining := quantity
	for i := range items {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		item := &items[i]
		take := decimal.Min(remaining, item.Available())
		if take.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if err := item.Reserve(take); err != nil {
			return err
		}
		if err := s.inventoryRepo.Save(ctx, item); err != nil {
			s.logger.Error("Failed to save reservation",
				zap.String("item_id", item.ID.String()),
				zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to reserve stock")
		}
		remaining = remaining.Sub(take)
	}

	s.logger.Info("Stock reserved for order",
		zap.String("order_id", orderID.String()),
		zap.String("product_id", productID.String()),
		zap.String("quantity", quantity.String()))

	return nil
}

// ReleaseForOrder returns an order's reserved stock to the pool,
// e.g. after a cancellation
func (s *InventoryService) ReleaseForOrder(ctx context.Context, orderID, productID uuid.UUID, quantity decimal.Decimal) error {
	items, err := s.availableByExpiry(ctx, productID)
	if err != nil {
		return err
	}

	remaining := quantity
	for i := range items {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		item := &items[i]
		give := decimal.Min(remaining, item.Reserved)
		if give.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if err := item.Release(give); err != nil {
			return err
		}
		if err := s.inventoryRepo.Save(ctx, item); err != nil {
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to release stock")
		}
		remaining = remaining.Sub(give)
	}

	s.logger.Info("Reserved stock released",
		zap.String("order_id", orderID.String()),
		zap.String("product_id", productID.String()),
		zap.String("quantity", quantity.Sub(remaining).String()))

	return nil
}

// DeductForOrder removes reserved stock at shipment and records the
// outbound movements against the order
func (s *InventoryService) DeductForOrder(ctx context.Context, orderID, productID uuid.UUID, quantity decimal.Decimal) error {
	items, err := s.availableByExpiry(ctx, productID)
	if err != nil {
		return err
	}

	remaining := quantity
	for i := range items {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		item := &items[i]
		take := decimal.Min(remaining, item.Reserved)
		if take.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if err := item.Deduct(take); err != nil {
			return err
		}
		if err := s.inventoryRepo.Save(ctx, item); err != nil {
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to deduct stock")
		}

		if wh, whErr := s.warehouseRepo.FindByID(ctx, item.WarehouseID); whErr == nil {
			if zone := wh.FindZone(item.ZoneID); zone != nil {
				if zoneErr := zone.RemoveStock(take); zoneErr == nil {
					if saveErr := s.warehouseRepo.Save(ctx, wh); saveErr != nil {
						s.logger.Warn("Failed to save zone stock level", zap.Error(saveErr))
					}
				}
			}
		}

		zoneID := item.ZoneID
		s.recordMovement(ctx, warehouse.MovementTypeOutbound, item.WarehouseID, productID, take,
			func(m *warehouse.StockMovement) {
				m.WithZones(&zoneID, nil).WithOrder(orderID)
			})

		s.publishEvents(ctx, item)
		remaining = remaining.Sub(take)
	}

	if remaining.IsPositive() {
		return shared.ErrInsufficientStock
	}

	s.logger.Info("Stock deducted for order",
		zap.String("order_id", orderID.String()),
		zap.String("product_id", productID.String()),
		zap.String("quantity", quantity.String()))

	return nil
}

// Adjust corrects an item's on-hand quantity after a stock count
func (s *InventoryService) Adjust(ctx context.Context, itemID, operatorID uuid.UUID, req AdjustStockRequest) (*InventoryItemResponse, error) {
	item, err := s.inventoryRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	delta, err := item.AdjustTo(req.ActualQuantity, req.Reason)
	if err != nil {
		return nil, err
	}

	if err := s.inventoryRepo.Save(ctx, item); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to adjust stock")
	}

	if !delta.IsZero() {
		zoneID := item.ZoneID
		s.recordMovement(ctx, warehouse.MovementTypeAdjustment, item.WarehouseID, item.ProductID, delta.Abs(),
			func(m *warehouse.StockMovement) {
				m.WithZones(&zoneID, &zoneID).WithReason(req.Reason).WithOperator(operatorID)
			})
	}

	s.publishEvents(ctx, item)

	s.logger.Info("Stock adjusted",
		zap.String("item_id", item.ID.String()),
		zap.String("delta", delta.String()),
		zap.String("reason", req.Reason))

	response := ToInventoryItemResponse(item)
	return &response, nil
}

// Transfer moves unreserved stock between two zones of the same warehouse
func (s *InventoryService) Transfer(ctx context.Context, operatorID uuid.UUID, req TransferStockRequest) error {
	if req.FromZoneID == req.ToZoneID {
		return shared.NewDomainError("INVALID_TRANSFER", "Source and destination zones must differ")
	}

	wh, err := s.warehouseRepo.FindByID(ctx, req.WarehouseID)
	if err != nil {
		return err
	}
	fromZone := wh.FindZone(req.FromZoneID)
	toZone := wh.FindZone(req.ToZoneID)
	if fromZone == nil || toZone == nil {
		return shared.NewDomainError("ZONE_NOT_FOUND", "Both zones must belong to the warehouse")
	}

	source, err := s.inventoryRepo.FindByLocation(ctx, req.WarehouseID, req.FromZoneID, req.ProductID)
	if err != nil {
		return err
	}
	if source.Available().LessThan(req.Quantity) {
		return shared.ErrInsufficientStock
	}

	dest, err := s.inventoryRepo.FindByLocation(ctx, req.WarehouseID, req.ToZoneID, req.ProductID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		dest, err = warehouse.NewInventoryItem(req.WarehouseID, req.ToZoneID, req.ProductID)
		if err != nil {
			return err
		}
	}

	if err := toZone.AddStock(req.Quantity); err != nil {
		return err
	}
	if err := fromZone.RemoveStock(req.Quantity); err != nil {
		return err
	}

	source.Quantity = source.Quantity.Sub(req.Quantity)
	source.UpdatedAt = time.Now()
	source.IncrementVersion()
	if err := dest.Receive(req.Quantity, source.BatchNumber, source.LotNumber, source.HarvestDate, source.ExpiryDate); err != nil {
		return err
	}
	dest.ClearDomainEvents()

	if err := s.inventoryRepo.Save(ctx, source); err != nil {
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to transfer stock")
	}
	if err := s.inventoryRepo.Save(ctx, dest); err != nil {
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to transfer stock")
	}
	if err := s.warehouseRepo.Save(ctx, wh); err != nil {
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to transfer stock")
	}

	s.recordMovement(ctx, warehouse.MovementTypeTransfer, req.WarehouseID, req.ProductID, req.Quantity,
		func(m *warehouse.StockMovement) {
			m.WithZones(&req.FromZoneID, &req.ToZoneID).WithOperator(operatorID)
		})

	s.logger.Info("Stock transferred",
		zap.String("warehouse_id", req.WarehouseID.String()),
		zap.String("product_id", req.ProductID.String()),
		zap.String("quantity", req.Quantity.String()))

	return nil
}

// SetQuality changes the inspection state of a stock record
func (s *InventoryService) SetQuality(ctx context.Context, itemID uuid.UUID, req SetQualityRequest) (*InventoryItemResponse, error) {
	item, err := s.inventoryRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	item.SetQuality(warehouse.QualityStatus(req.Quality))

	if err := s.inventoryRepo.Save(ctx, item); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update stock quality")
	}

	response := ToInventoryItemResponse(item)
	return &response, nil
}

// SetMinQuantity sets the low-stock alert threshold for an item
func (s *InventoryService) SetMinQuantity(ctx context.Context, itemID uuid.UUID, req SetMinQuantityRequest) (*InventoryItemResponse, error) {
	item, err := s.inventoryRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if err := item.SetMinQuantity(req.MinQuantity); err != nil {
		return nil, err
	}

	if err := s.inventoryRepo.Save(ctx, item); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update threshold")
	}

	response := ToInventoryItemResponse(item)
	return &response, nil
}

// ListByWarehouse lists the stock records in a warehouse
func (s *InventoryService) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID, page, pageSize int) ([]InventoryItemResponse, error) {
	f := shared.Filter{Page: page, PageSize: pageSize, OrderBy: "updated_at", OrderDir: "desc"}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 50
	}
	items, err := s.inventoryRepo.FindByWarehouse(ctx, warehouseID, f)
	if err != nil {
		return nil, err
	}
	return ToInventoryItemResponses(items), nil
}

// ListByProduct lists a product's stock across all warehouses
func (s *InventoryService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]InventoryItemResponse, error) {
	items, err := s.inventoryRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ToInventoryItemResponses(items), nil
}

// ListMovements lists the movement history for a product
func (s *InventoryService) ListMovements(ctx context.Context, productID uuid.UUID, page, pageSize int) ([]MovementResponse, error) {
	f := shared.Filter{Page: page, PageSize: pageSize, OrderBy: "created_at", OrderDir: "desc"}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 50
	}
	movements, err := s.movementRepo.FindByProduct(ctx, productID, f)
	if err != nil {
		return nil, err
	}
	responses := make([]MovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToMovementResponse(&movements[i])
	}
	return responses, nil
}

// ListExpiring lists good stock whose expiry date falls within the window
func (s *InventoryService) ListExpiring(ctx context.Context, within time.Duration) ([]InventoryItemResponse, error) {
	items, err := s.inventoryRepo.FindExpiring(ctx, time.Now().Add(within))
	if err != nil {
		return nil, err
	}
	return ToInventoryItemResponses(items), nil
}

// ListLowStock lists items that have fallen under their minimum quantity
func (s *InventoryService) ListLowStock(ctx context.Context) ([]InventoryItemResponse, error) {
	items, err := s.inventoryRepo.FindBelowMinimum(ctx)
	if err != nil {
		return nil, err
	}
	return ToInventoryItemResponses(items), nil
}

// MarkExpiredStock flags good stock past its expiry date. Intended to
// run on a schedule.
func (s *InventoryService) MarkExpiredStock(ctx context.Context) (int, error) {
	items, err := s.inventoryRepo.FindExpiring(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	marked := 0
	for i := range items {
		item := &items[i]
		if !item.IsExpiredAt(time.Now()) || item.Quality != warehouse.QualityStatusGood {
			continue
		}
		item.SetQuality(warehouse.QualityStatusExpired)
		if err := s.inventoryRepo.Save(ctx, item); err != nil {
			s.logger.Error("Failed to mark stock expired",
				zap.String("item_id", item.ID.String()),
				zap.Error(err))
			continue
		}
		marked++
	}

	if marked > 0 {
		s.logger.Info("Expired stock marked", zap.Int("count", marked))
	}
	return marked, nil
}

// availableByExpiry returns good-quality stock for a product sorted so
// the soonest-expiring batches are consumed first
func (s *InventoryService) availableByExpiry(ctx context.Context, productID uuid.UUID) ([]warehouse.InventoryItem, error) {
	items, err := s.inventoryRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	usable := items[:0]
	for i := range items {
		if items[i].Quality == warehouse.QualityStatusGood {
			usable = append(usable, items[i])
		}
	}

	sort.SliceStable(usable, func(a, b int) bool {
		ea, eb := usable[a].ExpiryDate, usable[b].ExpiryDate
		switch {
		case ea == nil:
			return false
		case eb == nil:
			return true
		default:
			return ea.Before(*eb)
		}
	})

	return usable, nil
}

func (s *InventoryService) recordMovement(ctx context.Context, movementType warehouse.MovementType, warehouseID, productID uuid.UUID, quantity decimal.Decimal, decorate func(*warehouse.StockMovement)) {
	movement, err := warehouse.NewStockMovement(movementType, warehouseID, productID, quantity)
	if err != nil {
		s.logger.Error("Failed to build stock movement", zap.Error(err))
		return
	}
	decorate(movement)
	if err := s.movementRepo.Save(ctx, movement); err != nil {
		s.logger.Error("Failed to save stock movement",
			zap.String("reference", movement.ReferenceNumber),
			zap.Error(err))
	}
}

func (s *InventoryService) publishEvents(ctx context.Context, item *warehouse.InventoryItem) {
	if s.eventPublisher == nil {
		item.ClearDomainEvents()
		return
	}
	for _, event := range item.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish stock event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	item.ClearDomainEvents()
}
