package traceability

import (
	"context"
	"errors"
	"time"

	"github.com/agriconnect/backend/internal/domain/catalog"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TraceService manages product traces and their supply chain events
type TraceService struct {
	traceRepo   traceability.TraceRepository
	farmRepo    traceability.FarmRepository
	productRepo catalog.ProductRepository
	baseURL     string
	logger      *zap.Logger
}

// NewTraceService creates a new trace service. baseURL is the public
// address QR payloads point at.
func NewTraceService(
	traceRepo traceability.TraceRepository,
	farmRepo traceability.FarmRepository,
	productRepo catalog.ProductRepository,
	baseURL string,
	logger *zap.Logger,
) *TraceService {
	return &TraceService{
		traceRepo:   traceRepo,
		farmRepo:    farmRepo,
		productRepo: productRepo,
		baseURL:     baseURL,
		logger:      logger,
	}
}

// Create opens a trace for a product batch. The caller must own both
// the product listing and the farm.
func (s *TraceService) Create(ctx context.Context, farmerID uuid.UUID, req CreateTraceRequest) (*TraceResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.SellerID != farmerID {
		return nil, shared.ErrForbidden
	}

	farm, err := s.farmRepo.FindByID(ctx, req.FarmID)
	if err != nil {
		return nil, err
	}
	if farm.FarmerID != farmerID {
		return nil, shared.ErrForbidden
	}

	existing, err := s.traceRepo.FindByBatchNumber(ctx, req.BatchNumber)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_BATCH", "A trace with this batch number already exists")
	}

	trace, err := traceability.NewProductTrace(req.ProductID, req.FarmID, req.BatchNumber)
	if err != nil {
		return nil, err
	}

	if err := s.traceRepo.Save(ctx, trace); err != nil {
		s.logger.Error("Failed to save trace", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create trace")
	}

	s.logger.Info("Product trace opened",
		zap.String("batch_number", trace.BatchNumber),
		zap.String("product_id", product.ID.String()))

	response := ToTraceResponse(trace, s.baseURL)
	return &response, nil
}

// AppendEvent adds the next link to a trace's chain. Any authenticated
// actor may append, their identity is committed into the chain.
func (s *TraceService) AppendEvent(ctx context.Context, actorID uuid.UUID, actorName string, traceID uuid.UUID, req AppendEventRequest) (*TraceResponse, error) {
	trace, err := s.traceRepo.FindByID(ctx, traceID)
	if err != nil {
		return nil, err
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	event, err := trace.AppendEvent(traceability.SupplyChainStage(req.Stage), actorID, actorName, req.Location, req.Data, occurredAt)
	if err != nil {
		return nil, err
	}

	if err := s.traceRepo.Save(ctx, trace); err != nil {
		s.logger.Error("Failed to save trace event", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to record event")
	}

	s.logger.Info("Supply chain event recorded",
		zap.String("batch_number", trace.BatchNumber),
		zap.String("stage", string(event.Stage)),
		zap.Int("sequence", event.Sequence))

	response := ToTraceResponse(trace, s.baseURL)
	return &response, nil
}

// Get retrieves a trace with its full chain
func (s *TraceService) Get(ctx context.Context, traceID uuid.UUID) (*TraceResponse, error) {
	trace, err := s.traceRepo.FindByID(ctx, traceID)
	if err != nil {
		return nil, err
	}
	response := ToTraceResponse(trace, s.baseURL)
	return &response, nil
}

// ListByProduct lists the traces opened for a product
func (s *TraceService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]TraceResponse, error) {
	traces, err := s.traceRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	responses := make([]TraceResponse, len(traces))
	for i := range traces {
		responses[i] = ToTraceResponse(&traces[i], s.baseURL)
	}
	return responses, nil
}

// Verify recomputes a trace's chain and reports whether it is intact
func (s *TraceService) Verify(ctx context.Context, traceID uuid.UUID) (*VerifyResponse, error) {
	trace, err := s.traceRepo.FindByID(ctx, traceID)
	if err != nil {
		return nil, err
	}

	resp := VerifyResponse{BatchNumber: trace.BatchNumber, Valid: true}
	if err := trace.Verify(); err != nil {
		resp.Valid = false
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			resp.Reason = domainErr.Message
		} else {
			resp.Reason = err.Error()
		}
	}
	return &resp, nil
}

// Scan handles a public QR lookup of a batch. It counts the scan and
// returns the consumer-facing provenance view.
func (s *TraceService) Scan(ctx context.Context, batchNumber, location, userAgent string) (*PublicTraceResponse, error) {
	trace, err := s.traceRepo.FindByBatchNumber(ctx, batchNumber)
	if err != nil {
		return nil, err
	}

	trace.RecordScan()
	if err := s.traceRepo.Save(ctx, trace); err != nil {
		s.logger.Warn("Failed to count scan",
			zap.String("batch_number", batchNumber),
			zap.Error(err))
	}
	if err := s.traceRepo.SaveScan(ctx, traceability.NewConsumerScan(trace.ID, location, userAgent)); err != nil {
		s.logger.Warn("Failed to log consumer scan",
			zap.String("batch_number", batchNumber),
			zap.Error(err))
	}

	resp := PublicTraceResponse{
		BatchNumber:  trace.BatchNumber,
		CurrentStage: string(trace.CurrentStage()),
		Verified:     trace.Verify() == nil,
		Events:       toEventResponses(trace.Events),
	}

	if product, err := s.productRepo.FindByID(ctx, trace.ProductID); err == nil {
		resp.ProductName = product.Name
	}
	if farm, err := s.farmRepo.FindByID(ctx, trace.FarmID); err == nil {
		resp.FarmName = farm.Name
		resp.FarmRegion = farm.Region
		resp.FarmCountry = farm.Country
		resp.OrganicCertified = farm.OrganicCertified
	}

	return &resp, nil
}
