package traceability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agriconnect/backend/internal/domain/catalog"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/agriconnect/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockTraceRepository is a mock implementation of traceability.TraceRepository
type MockTraceRepository struct {
	mock.Mock
}

func (m *MockTraceRepository) FindByID(ctx context.Context, id uuid.UUID) (*traceability.ProductTrace, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*traceability.ProductTrace), args.Error(1)
}

func (m *MockTraceRepository) FindByBatchNumber(ctx context.Context, batchNumber string) (*traceability.ProductTrace, error) {
	args := m.Called(ctx, batchNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*traceability.ProductTrace), args.Error(1)
}

func (m *MockTraceRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]traceability.ProductTrace, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]traceability.ProductTrace), args.Error(1)
}

func (m *MockTraceRepository) Save(ctx context.Context, trace *traceability.ProductTrace) error {
	args := m.Called(ctx, trace)
	return args.Error(0)
}

func (m *MockTraceRepository) SaveScan(ctx context.Context, scan *traceability.ConsumerScan) error {
	args := m.Called(ctx, scan)
	return args.Error(0)
}

// MockFarmRepository is a mock implementation of traceability.FarmRepository
type MockFarmRepository struct {
	mock.Mock
}

func (m *MockFarmRepository) FindByID(ctx context.Context, id uuid.UUID) (*traceability.Farm, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*traceability.Farm), args.Error(1)
}

func (m *MockFarmRepository) FindByFarmer(ctx context.Context, farmerID uuid.UUID) ([]traceability.Farm, error) {
	args := m.Called(ctx, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]traceability.Farm), args.Error(1)
}

func (m *MockFarmRepository) FindByRegistration(ctx context.Context, number string) (*traceability.Farm, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*traceability.Farm), args.Error(1)
}

func (m *MockFarmRepository) Save(ctx context.Context, farm *traceability.Farm) error {
	args := m.Called(ctx, farm)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, sellerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, categoryID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByStatus(ctx context.Context, status catalog.ProductStatus, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindFeatured(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) CountBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).(int64), args.Error(1)
}

const testBaseURL = "https://agriconnect.example.com"

func newTraceService(traceRepo *MockTraceRepository, farmRepo *MockFarmRepository, productRepo *MockProductRepository) *TraceService {
	return NewTraceService(traceRepo, farmRepo, productRepo, testBaseURL, zap.NewNop())
}

func newTestFarm(t *testing.T, farmerID uuid.UUID) *traceability.Farm {
	t.Helper()
	farm, err := traceability.NewFarm(farmerID, "Nkawkaw Maize Fields", "GH", "Eastern", decimal.NewFromFloat(12.5))
	require.NoError(t, err)
	return farm
}

func newTestProduct(t *testing.T, sellerID uuid.UUID) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(sellerID, "Yellow Maize", catalog.ProductTypeRaw, valueobject.UnitKilogram)
	require.NoError(t, err)
	return product
}

func newTestTrace(t *testing.T, productID, farmID uuid.UUID) *traceability.ProductTrace {
	t.Helper()
	trace, err := traceability.NewProductTrace(productID, farmID, "MAIZE-2026-0042")
	require.NoError(t, err)
	return trace
}

func TestTraceService_Create_OpensTraceForOwnedBatch(t *testing.T) {
	traceRepo := new(MockTraceRepository)
	farmRepo := new(MockFarmRepository)
	productRepo := new(MockProductRepository)
	service := newTraceService(traceRepo, farmRepo, productRepo)

	farmerID := uuid.New()
	product := newTestProduct(t, farmerID)
	farm := newTestFarm(t, farmerID)

	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	farmRepo.On("FindByID", mock.Anything, farm.ID).Return(farm, nil)
	traceRepo.On("FindByBatchNumber", mock.Anything, "MAIZE-2026-0042").Return(nil, shared.ErrNotFound)
	traceRepo.On("Save", mock.Anything, mock.MatchedBy(func(tr *traceability.ProductTrace) bool {
		return tr.BatchNumber == "MAIZE-2026-0042" && !tr.Sealed
	})).Return(nil)

	resp, err := service.Create(context.Background(), farmerID, CreateTraceRequest{
		ProductID:   product.ID,
		FarmID:      farm.ID,
		BatchNumber: "MAIZE-2026-0042",
	})

	require.NoError(t, err)
	assert.Equal(t, "MAIZE-2026-0042", resp.BatchNumber)
	assert.Equal(t, testBaseURL+"/api/v1/traceability/scan/MAIZE-2026-0042", resp.QRPayload)
	traceRepo.AssertExpectations(t)
}

func TestTraceService_Create_RejectsForeignProduct(t *testing.T) {
	traceRepo := new(MockTraceRepository)
	productRepo := new(MockProductRepository)
	service := newTraceService(traceRepo, new(MockFarmRepository), productRepo)

	product := newTestProduct(t, uuid.New())
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	_, err := service.Create(context.Background(), uuid.New(), CreateTraceRequest{
		ProductID:   product.ID,
		FarmID:      uuid.New(),
		BatchNumber: "MAIZE-2026-0042",
	})

	assert.ErrorIs(t, err, shared.ErrForbidden)
	traceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestTraceService_Create_RejectsDuplicateBatch(t *testing.T) {
	traceRepo := new(MockTraceRepository)
	farmRepo := new(MockFarmRepository)
	productRepo := new(MockProductRepository)
	service := newTraceService(traceRepo, farmRepo, productRepo)

	farmerID := uuid.New()
	product := newTestProduct(t, farmerID)
	farm := newTestFarm(t, farmerID)
	existing := newTestTrace(t, product.ID, farm.ID)

	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	farmRepo.On("FindByID", mock.Anything, farm.ID).Return(farm, nil)
	traceRepo.On("FindByBatchNumber", mock.Anything, "MAIZE-2026-0042").Return(existing, nil)

	_, err := service.Create(context.Background(), farmerID, CreateTraceRequest{
		ProductID:   product.ID,
		FarmID:      farm.ID,
		BatchNumber: "MAIZE-2026-0042",
	})

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "DUPLICATE_BATCH", domainErr.Code)
}

func TestTraceService_AppendEvent_ChainsOntoPreviousHash(t *testing.T) {
	traceRepo := new(MockTraceRepository)
	service := newTraceService(traceRepo, new(MockFarmRepository), new(MockProductRepository))

	trace := newTestTrace(t, uuid.New(), uuid.New())
	actorID := uuid.New()
	_, err := trace.AppendEvent(traceability.StagePlanting, actorID, "Kwame Mensah", "Nkawkaw", "", time.Now().AddDate(0, -4, 0))
	require.NoError(t, err)

	traceRepo.On("FindByID", mock.Anything, trace.ID).Return(trace, nil)
	traceRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	resp, err := service.AppendEvent(context.Background(), actorID, "Kwame Mensah", trace.ID, AppendEventRequest{
		Stage:    "harvesting",
		Location: "Nkawkaw",
		Data:     `{"yield_kg": 1200}`,
	})

	require.NoError(t, err)
	require.Len(t, resp.Events, 2)
	assert.Equal(t, "harvesting", resp.CurrentStage)
	assert.Equal(t, trace.Events[0].Hash, trace.Events[1].PreviousHash)
}

func TestTraceService_AppendEvent_RejectsStageRegression(t *testing.T) {
	traceRepo := new(MockTraceRepository)
	service := newTraceService(traceRepo, new(MockFarmRepository), new(MockProductRepository))

	trace := newTestTrace(t, uuid.New(), uuid.New())
	actorID := uuid.New()
	_, err := trace.AppendEvent(traceability.StageProcessing, actorID, "Mill", "Accra", "", time.Now())
	require.NoError(t, err)

	traceRepo.On("FindByID", mock.Anything, trace.ID).Return(trace, nil)

	_, err = service.AppendEvent(context.Background(), actorID, "Mill", trace.ID, AppendEventRequest{
		Stage: "planting",
	})

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "STAGE_REGRESSION", domainErr.Code)
	traceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestTraceService_AppendEvent_SealedAtRetail(t *testing.T) {
	traceRepo := new(MockTraceRepository)
	service := newTraceService(traceRepo, new(MockFarmRepository), new(MockProductRepository))

	trace := newTestTrace(t, uuid.New(), uuid.New())
	actorID := uuid.New()
	traceRepo.On("FindByID", mock.Anything, trace.ID).Return(trace, nil)
	traceRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	resp, err := service.AppendEvent(context.Background(), actorID, "Market Stall", trace.ID, AppendEventRequest{
		Stage: "retail",
	})
	require.NoError(t, err)
	assert.True(t, resp.Sealed)

	_, err = service.AppendEvent(context.Background(), actorID, "Market Stall", trace.ID, AppendEventRequest{
		Stage: "retail",
	})
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "TRACE_SEALED", domainErr.Code)
}

func TestTraceService_Verify_DetectsTampering(t *testing.T) {
	traceRepo := new(MockTraceRepository)
	service := newTraceService(traceRepo, new(MockFarmRepository), new(MockProductRepository))

	trace := newTestTrace(t, uuid.New(), uuid.New())
	_, err := trace.AppendEvent(traceability.StagePlanting, uuid.New(), "Kwame Mensah", "Nkawkaw", "", time.Now())
	require.NoError(t, err)
	_, err = trace.AppendEvent(traceability.StageHarvesting, uuid.New(), "Kwame Mensah", "Nkawkaw", `{"yield_kg": 1200}`, time.Now())
	require.NoError(t, err)

	trace.Events[0].Data = `{"pesticide": "none, honest"}` // tamper after the fact

	traceRepo.On("FindByID", mock.Anything, trace.ID).Return(trace, nil)

	resp, err := service.Verify(context.Background(), trace.ID)

	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Reason)
}

func TestTraceService_Scan_CountsAndReturnsProvenance(t *testing.T) {
	traceRepo := new(MockTraceRepository)
	farmRepo := new(MockFarmRepository)
	productRepo := new(MockProductRepository)
	service := newTraceService(traceRepo, farmRepo, productRepo)

	farmerID := uuid.New()
	product := newTestProduct(t, farmerID)
	farm := newTestFarm(t, farmerID)
	farm.CertifyOrganic()
	trace := newTestTrace(t, product.ID, farm.ID)
	_, err := trace.AppendEvent(traceability.StageHarvesting, farmerID, "Kwame Mensah", "Nkawkaw", "", time.Now())
	require.NoError(t, err)

	traceRepo.On("FindByBatchNumber", mock.Anything, trace.BatchNumber).Return(trace, nil)
	traceRepo.On("Save", mock.Anything, mock.MatchedBy(func(tr *traceability.ProductTrace) bool {
		return tr.ScanCount == 1
	})).Return(nil)
	traceRepo.On("SaveScan", mock.Anything, mock.MatchedBy(func(scan *traceability.ConsumerScan) bool {
		return scan.TraceID == trace.ID && scan.UserAgent == "Mozilla/5.0"
	})).Return(nil)
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	farmRepo.On("FindByID", mock.Anything, farm.ID).Return(farm, nil)

	resp, err := service.Scan(context.Background(), trace.BatchNumber, "Accra", "Mozilla/5.0")

	require.NoError(t, err)
	assert.True(t, resp.Verified)
	assert.True(t, resp.OrganicCertified)
	assert.Equal(t, "Yellow Maize", resp.ProductName)
	assert.Equal(t, "Nkawkaw Maize Fields", resp.FarmName)
	assert.Equal(t, "harvesting", resp.CurrentStage)
	traceRepo.AssertExpectations(t)
}

func TestFarmService_Register_RejectsDuplicateRegistration(t *testing.T) {
	farmRepo := new(MockFarmRepository)
	service := NewFarmService(farmRepo, zap.NewNop())

	existing := newTestFarm(t, uuid.New())
	farmRepo.On("FindByRegistration", mock.Anything, "GH-EA-00123").Return(existing, nil)

	_, err := service.Register(context.Background(), uuid.New(), RegisterFarmRequest{
		Name:               "Nkawkaw Maize Fields",
		Country:            "GH",
		Region:             "Eastern",
		SizeHectares:       decimal.NewFromFloat(12.5),
		RegistrationNumber: "GH-EA-00123",
	})

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "DUPLICATE_REGISTRATION", domainErr.Code)
	farmRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestFarmService_Register_StoresCoordinates(t *testing.T) {
	farmRepo := new(MockFarmRepository)
	service := NewFarmService(farmRepo, zap.NewNop())

	lat, lng := 6.5502, -0.7631
	farmRepo.On("Save", mock.Anything, mock.MatchedBy(func(f *traceability.Farm) bool {
		return f.Latitude != nil && *f.Latitude == lat && f.Longitude != nil && *f.Longitude == lng
	})).Return(nil)

	resp, err := service.Register(context.Background(), uuid.New(), RegisterFarmRequest{
		Name:         "Nkawkaw Maize Fields",
		Country:      "GH",
		Region:       "Eastern",
		SizeHectares: decimal.NewFromFloat(12.5),
		Latitude:     &lat,
		Longitude:    &lng,
	})

	require.NoError(t, err)
	assert.True(t, resp.OrganicCertified == false)
	farmRepo.AssertExpectations(t)
}
