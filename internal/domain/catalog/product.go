package catalog

import (
	"strings"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductType distinguishes raw produce from processed goods
type ProductType string

const (
	ProductTypeRaw       ProductType = "raw"
	ProductTypeProcessed ProductType = "processed"
)

// IsValid checks if the product type is valid
func (t ProductType) IsValid() bool {
	return t == ProductTypeRaw || t == ProductTypeProcessed
}

// OrganicStatus represents the organic classification of a product
type OrganicStatus string

const (
	OrganicStatusOrganic      OrganicStatus = "organic"
	OrganicStatusNonOrganic   OrganicStatus = "non_organic"
	OrganicStatusTransitional OrganicStatus = "transitional"
)

// IsValid checks if the organic status is valid
func (s OrganicStatus) IsValid() bool {
	switch s {
	case OrganicStatusOrganic, OrganicStatusNonOrganic, OrganicStatusTransitional:
		return true
	default:
		return false
	}
}

// ProductStatus represents the listing status of a product
type ProductStatus string

const (
	ProductStatusDraft        ProductStatus = "draft"
	ProductStatusActive       ProductStatus = "active"
	ProductStatusOutOfStock   ProductStatus = "out_of_stock"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// QualityGrade represents the quality grading of produce
type QualityGrade string

const (
	QualityGradeA        QualityGrade = "grade_a"
	QualityGradeB        QualityGrade = "grade_b"
	QualityGradeC        QualityGrade = "grade_c"
	QualityGradePremium  QualityGrade = "premium"
	QualityGradeStandard QualityGrade = "standard"
)

// Product represents a produce listing in the marketplace
// It is the aggregate root for product-related operations
type Product struct {
	shared.BaseAggregateRoot
	Name           string               `gorm:"type:varchar(200);not null;index"`
	Description    string               `gorm:"type:text"`
	CategoryID     *uuid.UUID           `gorm:"type:uuid;index"`
	SellerID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	ProductType    ProductType          `gorm:"type:varchar(20);not null"`
	OrganicStatus  OrganicStatus        `gorm:"type:varchar(20);not null;default:'non_organic'"`
	PricePerUnit   decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null;default:'GHS'"`
	Unit           valueobject.Unit     `gorm:"type:varchar(20);not null"`
	MinOrderQty    decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:1"`
	StockQuantity  decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	HarvestDate    *time.Time           `gorm:"type:date"`
	ProcessingDate *time.Time           `gorm:"type:date"`
	ExpiryDate     *time.Time           `gorm:"type:date;index"`
	OriginCountry  string               `gorm:"type:varchar(2);not null;default:'GH'"`
	OriginRegion   string               `gorm:"type:varchar(100)"`
	OriginCity     string               `gorm:"type:varchar(100)"`
	QualityGrade   QualityGrade         `gorm:"type:varchar(20);default:'standard'"`
	Status         ProductStatus        `gorm:"type:varchar(20);not null;default:'draft';index"`
	Featured       bool                 `gorm:"not null;default:false;index"`
	ViewCount      int64                `gorm:"not null;default:0"`
	OrderCount     int64                `gorm:"not null;default:0"`
	Attributes     string               `gorm:"type:jsonb"` // JSON storage for crop-specific attributes
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product listing in draft status
func NewProduct(sellerID uuid.UUID, name string, productType ProductType, unit valueobject.Unit) (*Product, error) {
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller ID cannot be empty")
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if !productType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PRODUCT_TYPE", "Product type must be raw or processed")
	}
	if !unit.IsValid() {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit is not a supported measurement unit")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		SellerID:          sellerID,
		ProductType:       productType,
		OrganicStatus:     OrganicStatusNonOrganic,
		Unit:              unit,
		Currency:          valueobject.DefaultCurrency,
		PricePerUnit:      decimal.Zero,
		MinOrderQty:       decimal.NewFromInt(1),
		StockQuantity:     decimal.Zero,
		OriginCountry:     "GH",
		QualityGrade:      QualityGradeStandard,
		Status:            ProductStatusDraft,
		Attributes:        "{}",
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetCategory sets the product category
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// SetPrice sets the price per unit
func (p *Product) SetPrice(price valueobject.Money) error {
	if price.Amount().IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if !valueobject.IsSupportedCurrency(price.Currency()) {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency is not supported")
	}

	oldPrice := p.PricePerUnit
	p.PricePerUnit = price.Amount()
	p.Currency = price.Currency()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))

	return nil
}

// SetMinimumOrderQuantity sets the smallest quantity a buyer can order
func (p *Product) SetMinimumOrderQuantity(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return shared.NewDomainError("INVALID_MIN_ORDER_QTY", "Minimum order quantity must be positive")
	}

	p.MinOrderQty = qty
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetOrganicStatus sets the organic classification
func (p *Product) SetOrganicStatus(status OrganicStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_ORGANIC_STATUS", "Organic status must be organic, non_organic, or transitional")
	}

	p.OrganicStatus = status
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetQualityGrade sets the quality grading
func (p *Product) SetQualityGrade(grade QualityGrade) {
	p.QualityGrade = grade
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetOrigin sets the country, region, and city the produce comes from
func (p *Product) SetOrigin(country, region, city string) error {
	country = strings.ToUpper(strings.TrimSpace(country))
	if len(country) != 2 {
		return shared.NewDomainError("INVALID_ORIGIN", "Origin country must be a two-letter ISO code")
	}

	p.OriginCountry = country
	p.OriginRegion = strings.TrimSpace(region)
	p.OriginCity = strings.TrimSpace(city)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetDates sets the harvest, processing, and expiry dates
func (p *Product) SetDates(harvest, processing, expiry *time.Time) error {
	if expiry != nil {
		if harvest != nil && expiry.Before(*harvest) {
			return shared.NewDomainError("INVALID_DATES", "Expiry date cannot be before harvest date")
		}
		if processing != nil && expiry.Before(*processing) {
			return shared.NewDomainError("INVALID_DATES", "Expiry date cannot be before processing date")
		}
	}

	p.HarvestDate = harvest
	p.ProcessingDate = processing
	p.ExpiryDate = expiry
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetAttributes sets crop-specific attributes as JSON
func (p *Product) SetAttributes(attributes string) error {
	if attributes == "" {
		attributes = "{}"
	}
	trimmed := strings.TrimSpace(attributes)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return shared.NewDomainError("INVALID_ATTRIBUTES", "Attributes must be valid JSON object")
	}

	p.Attributes = trimmed
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Activate publishes the listing to the marketplace.
// Raw products must carry a harvest date, processed ones a processing date.
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	if p.Status == ProductStatusDiscontinued {
		return shared.NewDomainError("CANNOT_ACTIVATE", "Cannot activate a discontinued product")
	}
	if p.PricePerUnit.IsZero() || p.PricePerUnit.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Product needs a positive price before activation")
	}
	if p.ProductType == ProductTypeRaw && p.HarvestDate == nil {
		return shared.NewDomainError("MISSING_HARVEST_DATE", "Raw products require a harvest date")
	}
	if p.ProductType == ProductTypeProcessed && p.ProcessingDate == nil {
		return shared.NewDomainError("MISSING_PROCESSING_DATE", "Processed products require a processing date")
	}

	oldStatus := p.Status
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p, oldStatus, ProductStatusActive))

	return nil
}

// Deactivate takes the listing off the marketplace without
// discontinuing it; the product returns to draft and can be
// activated again later.
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusDraft {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is not listed")
	}
	if p.Status == ProductStatusDiscontinued {
		return shared.NewDomainError("CANNOT_DEACTIVATE", "Cannot deactivate a discontinued product")
	}

	oldStatus := p.Status
	p.Status = ProductStatusDraft
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p, oldStatus, ProductStatusDraft))

	return nil
}

// Discontinue permanently removes the listing.
// A discontinued product cannot be reactivated.
func (p *Product) Discontinue() error {
	if p.Status == ProductStatusDiscontinued {
		return shared.NewDomainError("ALREADY_DISCONTINUED", "Product is already discontinued")
	}

	oldStatus := p.Status
	p.Status = ProductStatusDiscontinued
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p, oldStatus, ProductStatusDiscontinued))

	return nil
}

// MarkFeatured toggles the featured flag
func (p *Product) MarkFeatured(featured bool) {
	p.Featured = featured
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// AdjustStock adds or removes stock. Stock can never go negative.
// When stock reaches zero an active listing flips to out_of_stock;
// restocking an out_of_stock listing flips it back to active.
func (p *Product) AdjustStock(delta decimal.Decimal) error {
	if p.Status == ProductStatusDiscontinued {
		return shared.NewDomainError("INVALID_STATE", "Cannot adjust stock of a discontinued product")
	}

	newQty := p.StockQuantity.Add(delta)
	if newQty.IsNegative() {
		return shared.ErrInsufficientStock
	}

	p.StockQuantity = newQty
	switch {
	case newQty.IsZero() && p.Status == ProductStatusActive:
		p.Status = ProductStatusOutOfStock
		p.AddDomainEvent(NewProductStatusChangedEvent(p, ProductStatusActive, ProductStatusOutOfStock))
	case newQty.IsPositive() && p.Status == ProductStatusOutOfStock:
		p.Status = ProductStatusActive
		p.AddDomainEvent(NewProductStatusChangedEvent(p, ProductStatusOutOfStock, ProductStatusActive))
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// CanFulfill reports whether an order for qty can be placed against this listing
func (p *Product) CanFulfill(qty decimal.Decimal) error {
	if p.Status != ProductStatusActive {
		return shared.NewDomainError("PRODUCT_NOT_ACTIVE", "Product is not available for ordering")
	}
	if qty.LessThan(p.MinOrderQty) {
		return shared.NewDomainError("BELOW_MIN_ORDER_QTY", "Quantity is below the minimum order quantity")
	}
	if qty.GreaterThan(p.StockQuantity) {
		return shared.ErrInsufficientStock
	}
	return nil
}

// RecordView increments the view counter
func (p *Product) RecordView() {
	p.ViewCount++
}

// RecordOrder increments the order counter
func (p *Product) RecordOrder() {
	p.OrderCount++
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// IsDiscontinued returns true if the product is discontinued
func (p *Product) IsDiscontinued() bool {
	return p.Status == ProductStatusDiscontinued
}

// IsOrganic returns true for certified organic produce
func (p *Product) IsOrganic() bool {
	return p.OrganicStatus == OrganicStatusOrganic
}

// GetPriceMoney returns the unit price as a Money value object
func (p *Product) GetPriceMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(p.PricePerUnit, p.Currency)
	return m
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
