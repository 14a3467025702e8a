package warehouse

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/warehouse"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TemperatureService records sensor readings for zones and surfaces
// out-of-range alerts
type TemperatureService struct {
	warehouseRepo warehouse.WarehouseRepository
	logRepo       warehouse.TemperatureLogRepository
	logger        *zap.Logger
}

// NewTemperatureService creates a new temperature service
func NewTemperatureService(
	warehouseRepo warehouse.WarehouseRepository,
	logRepo warehouse.TemperatureLogRepository,
	logger *zap.Logger,
) *TemperatureService {
	return &TemperatureService{
		warehouseRepo: warehouseRepo,
		logRepo:       logRepo,
		logger:        logger,
	}
}

// Record stores a reading and logs a warning when it falls outside the
// acceptable band for the warehouse type
func (s *TemperatureService) Record(ctx context.Context, warehouseID uuid.UUID, req RecordTemperatureRequest) (*TemperatureLogResponse, error) {
	wh, err := s.warehouseRepo.FindByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	recordedAt := time.Now()
	if req.RecordedAt != nil {
		recordedAt = *req.RecordedAt
	}

	reading, err := warehouse.NewTemperatureLog(wh, req.ZoneID, req.Celsius, req.Humidity, recordedAt)
	if err != nil {
		return nil, err
	}

	if err := s.logRepo.Save(ctx, reading); err != nil {
		s.logger.Error("Failed to save temperature reading", zap.Error(err))
		return nil, err
	}

	if reading.NeedsAlert() {
		s.logger.Warn("Temperature out of range",
			zap.String("warehouse_id", warehouseID.String()),
			zap.String("zone_id", req.ZoneID.String()),
			zap.Float64("celsius", req.Celsius))
	}

	response := ToTemperatureLogResponse(reading)
	return &response, nil
}

// History lists readings for a zone within a time window
func (s *TemperatureService) History(ctx context.Context, zoneID uuid.UUID, from, to time.Time) ([]TemperatureLogResponse, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.Add(-24 * time.Hour)
	}

	logs, err := s.logRepo.FindByZone(ctx, zoneID, from, to)
	if err != nil {
		return nil, err
	}

	responses := make([]TemperatureLogResponse, len(logs))
	for i := range logs {
		responses[i] = ToTemperatureLogResponse(&logs[i])
	}
	return responses, nil
}

// Alerts lists out-of-range readings since the cutoff
func (s *TemperatureService) Alerts(ctx context.Context, since time.Time) ([]TemperatureLogResponse, error) {
	if since.IsZero() {
		since = time.Now().Add(-24 * time.Hour)
	}

	logs, err := s.logRepo.FindOutOfRange(ctx, since)
	if err != nil {
		return nil, err
	}

	responses := make([]TemperatureLogResponse, len(logs))
	for i := range logs {
		responses[i] = ToTemperatureLogResponse(&logs[i])
	}
	return responses, nil
}
