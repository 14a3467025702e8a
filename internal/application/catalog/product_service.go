package catalog

import (
	"context"
	"errors"

	"github.com/agriconnect/backend/internal/domain/catalog"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListingQuota charges listing slots against the seller's subscription plan.
// Implemented by the subscription application service.
type ListingQuota interface {
	ConsumeListing(ctx context.Context, sellerID uuid.UUID) error
	ReleaseListing(ctx context.Context, sellerID uuid.UUID) error
}

// ProductService handles marketplace listing operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	quota        ListingQuota
	logger       *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	quota ListingQuota,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		quota:        quota,
		logger:       logger,
	}
}

// Create creates a draft listing, charging one listing slot against the
// seller's plan.
func (s *ProductService) Create(ctx context.Context, sellerID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(sellerID, req.Name, catalog.ProductType(req.ProductType), valueobject.Unit(req.Unit))
	if err != nil {
		return nil, err
	}

	if err := s.applyCreateFields(ctx, product, req); err != nil {
		return nil, err
	}

	if err := s.quota.ConsumeListing(ctx, sellerID); err != nil {
		if errors.Is(err, shared.ErrQuotaExceeded) {
			return nil, shared.NewDomainError("LISTING_QUOTA_EXCEEDED", "Your plan's listing limit has been reached. Upgrade to list more products")
		}
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		// Give back the slot we just charged.
		if releaseErr := s.quota.ReleaseListing(ctx, sellerID); releaseErr != nil {
			s.logger.Error("Failed to release listing slot after save failure",
				zap.String("seller_id", sellerID.String()),
				zap.Error(releaseErr))
		}
		s.logger.Error("Failed to save product", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create product")
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("seller_id", sellerID.String()))

	resp := ToProductResponse(product)
	return &resp, nil
}

// Update updates a listing owned by the seller
func (s *ProductService) Update(ctx context.Context, sellerID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.findOwned(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Description != nil {
		name := product.Name
		description := product.Description
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if err := product.Update(name, description); err != nil {
			return nil, err
		}
	}

	if req.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *req.CategoryID); err != nil {
			return nil, shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")
		}
		product.SetCategory(req.CategoryID)
	}

	if req.PricePerUnit != nil {
		currency := product.Currency
		if req.Currency != nil {
			currency = valueobject.Currency(*req.Currency)
		}
		price, err := valueobject.NewMoney(*req.PricePerUnit, currency)
		if err != nil {
			return nil, err
		}
		if err := product.SetPrice(price); err != nil {
			return nil, err
		}
	}

	if req.MinOrderQty != nil {
		if err := product.SetMinimumOrderQuantity(*req.MinOrderQty); err != nil {
			return nil, err
		}
	}
	if req.OrganicStatus != nil {
		if err := product.SetOrganicStatus(catalog.OrganicStatus(*req.OrganicStatus)); err != nil {
			return nil, err
		}
	}
	if req.QualityGrade != nil {
		product.SetQualityGrade(catalog.QualityGrade(*req.QualityGrade))
	}
	if req.HarvestDate != nil || req.ProcessingDate != nil || req.ExpiryDate != nil {
		harvest := product.HarvestDate
		processing := product.ProcessingDate
		expiry := product.ExpiryDate
		if req.HarvestDate != nil {
			harvest = req.HarvestDate
		}
		if req.ProcessingDate != nil {
			processing = req.ProcessingDate
		}
		if req.ExpiryDate != nil {
			expiry = req.ExpiryDate
		}
		if err := product.SetDates(harvest, processing, expiry); err != nil {
			return nil, err
		}
	}
	if req.Attributes != nil {
		if err := product.SetAttributes(*req.Attributes); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to save product update", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update product")
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// Activate publishes a draft listing to the marketplace
func (s *ProductService) Activate(ctx context.Context, sellerID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.findOwned(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}

	if err := product.Activate(); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to activate product")
	}

	s.logger.Info("Product activated", zap.String("product_id", productID.String()))

	resp := ToProductResponse(product)
	return &resp, nil
}

// Deactivate takes a listing back to draft without discontinuing it
func (s *ProductService) Deactivate(ctx context.Context, sellerID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.findOwned(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}

	if err := product.Deactivate(); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to deactivate product")
	}

	s.logger.Info("Product deactivated", zap.String("product_id", productID.String()))

	resp := ToProductResponse(product)
	return &resp, nil
}

// Discontinue permanently removes a listing and releases its plan slot
func (s *ProductService) Discontinue(ctx context.Context, sellerID, productID uuid.UUID) error {
	product, err := s.findOwned(ctx, sellerID, productID)
	if err != nil {
		return err
	}

	if err := product.Discontinue(); err != nil {
		return err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to discontinue product")
	}

	if err := s.quota.ReleaseListing(ctx, sellerID); err != nil {
		s.logger.Warn("Failed to release listing slot",
			zap.String("seller_id", sellerID.String()),
			zap.Error(err))
	}

	s.logger.Info("Product discontinued", zap.String("product_id", productID.String()))
	return nil
}

// AdjustStock changes the stock level of a listing by a signed delta
func (s *ProductService) AdjustStock(ctx context.Context, sellerID, productID uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	product, err := s.findOwned(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}

	if err := product.AdjustStock(req.Delta); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to adjust stock")
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// Get retrieves a listing and counts the view
func (s *ProductService) Get(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	product.RecordView()
	if err := s.productRepo.Save(ctx, product); err != nil {
		// View counting must never break reads.
		s.logger.Warn("Failed to record product view", zap.Error(err))
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// List returns listings matching the filter with a total count
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := buildProductFilter(filter)

	var (
		products []catalog.Product
		err      error
	)
	switch {
	case filter.SellerID != nil:
		products, err = s.productRepo.FindBySeller(ctx, *filter.SellerID, domainFilter)
	case filter.CategoryID != nil:
		products, err = s.productRepo.FindByCategory(ctx, *filter.CategoryID, domainFilter)
	case filter.Featured:
		products, err = s.productRepo.FindFeatured(ctx, domainFilter)
	default:
		products, err = s.productRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToProductResponses(products), total, nil
}

// SetFeatured toggles the featured flag, admin only
func (s *ProductService) SetFeatured(ctx context.Context, productID uuid.UUID, featured bool) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}

	product.MarkFeatured(featured)
	return s.productRepo.Save(ctx, product)
}

func (s *ProductService) findOwned(ctx context.Context, sellerID, productID uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.SellerID != sellerID {
		return nil, shared.ErrForbidden
	}
	return product, nil
}

func (s *ProductService) applyCreateFields(ctx context.Context, product *catalog.Product, req CreateProductRequest) error {
	if req.Description != "" {
		if err := product.Update(req.Name, req.Description); err != nil {
			return err
		}
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *req.CategoryID); err != nil {
			return shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")
		}
		product.SetCategory(req.CategoryID)
	}
	if !req.PricePerUnit.IsZero() {
		currency := valueobject.DefaultCurrency
		if req.Currency != "" {
			currency = valueobject.Currency(req.Currency)
		}
		price, err := valueobject.NewMoney(req.PricePerUnit, currency)
		if err != nil {
			return err
		}
		if err := product.SetPrice(price); err != nil {
			return err
		}
	}
	if req.MinOrderQty != nil {
		if err := product.SetMinimumOrderQuantity(*req.MinOrderQty); err != nil {
			return err
		}
	}
	if req.OrganicStatus != "" {
		if err := product.SetOrganicStatus(catalog.OrganicStatus(req.OrganicStatus)); err != nil {
			return err
		}
	}
	if req.QualityGrade != "" {
		product.SetQualityGrade(catalog.QualityGrade(req.QualityGrade))
	}
	if req.OriginCountry != "" || req.OriginRegion != "" || req.OriginCity != "" {
		country := req.OriginCountry
		if country == "" {
			country = product.OriginCountry
		}
		if err := product.SetOrigin(country, req.OriginRegion, req.OriginCity); err != nil {
			return err
		}
	}
	if req.HarvestDate != nil || req.ProcessingDate != nil || req.ExpiryDate != nil {
		if err := product.SetDates(req.HarvestDate, req.ProcessingDate, req.ExpiryDate); err != nil {
			return err
		}
	}
	if req.Attributes != "" {
		if err := product.SetAttributes(req.Attributes); err != nil {
			return err
		}
	}
	return nil
}

func buildProductFilter(filter ProductListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	return domainFilter
}
