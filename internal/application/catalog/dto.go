package catalog

import (
	"time"

	"github.com/agriconnect/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest creates a new draft listing
type CreateProductRequest struct {
	Name           string           `json:"name" binding:"required,min=2,max=200"`
	Description    string           `json:"description"`
	CategoryID     *uuid.UUID       `json:"category_id"`
	ProductType    string           `json:"product_type" binding:"required,oneof=raw processed"`
	Unit           string           `json:"unit" binding:"required"`
	PricePerUnit   decimal.Decimal  `json:"price_per_unit"`
	Currency       string           `json:"currency"`
	MinOrderQty    *decimal.Decimal `json:"min_order_qty"`
	OrganicStatus  string           `json:"organic_status"`
	QualityGrade   string           `json:"quality_grade"`
	OriginCountry  string           `json:"origin_country"`
	OriginRegion   string           `json:"origin_region"`
	OriginCity     string           `json:"origin_city"`
	HarvestDate    *time.Time       `json:"harvest_date"`
	ProcessingDate *time.Time       `json:"processing_date"`
	ExpiryDate     *time.Time       `json:"expiry_date"`
	Attributes     string           `json:"attributes"`
}

// UpdateProductRequest updates a listing's mutable fields
type UpdateProductRequest struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	CategoryID     *uuid.UUID       `json:"category_id"`
	PricePerUnit   *decimal.Decimal `json:"price_per_unit"`
	Currency       *string          `json:"currency"`
	MinOrderQty    *decimal.Decimal `json:"min_order_qty"`
	OrganicStatus  *string          `json:"organic_status"`
	QualityGrade   *string          `json:"quality_grade"`
	HarvestDate    *time.Time       `json:"harvest_date"`
	ProcessingDate *time.Time       `json:"processing_date"`
	ExpiryDate     *time.Time       `json:"expiry_date"`
	Attributes     *string          `json:"attributes"`
}

// AdjustStockRequest changes the stock level by a signed delta
type AdjustStockRequest struct {
	Delta decimal.Decimal `json:"delta" binding:"required"`
}

// ProductListFilter narrows down product listings
type ProductListFilter struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	Search     string     `form:"search"`
	CategoryID *uuid.UUID `form:"category_id"`
	SellerID   *uuid.UUID `form:"seller_id"`
	Status     string     `form:"status"`
	Featured   bool       `form:"featured"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir"`
}

// ProductResponse is the outward representation of a listing
type ProductResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	CategoryID     *uuid.UUID      `json:"category_id,omitempty"`
	SellerID       uuid.UUID       `json:"seller_id"`
	ProductType    string          `json:"product_type"`
	OrganicStatus  string          `json:"organic_status"`
	PricePerUnit   decimal.Decimal `json:"price_per_unit"`
	Currency       string          `json:"currency"`
	Unit           string          `json:"unit"`
	MinOrderQty    decimal.Decimal `json:"min_order_qty"`
	StockQuantity  decimal.Decimal `json:"stock_quantity"`
	HarvestDate    *time.Time      `json:"harvest_date,omitempty"`
	ProcessingDate *time.Time      `json:"processing_date,omitempty"`
	ExpiryDate     *time.Time      `json:"expiry_date,omitempty"`
	OriginCountry  string          `json:"origin_country"`
	OriginRegion   string          `json:"origin_region,omitempty"`
	OriginCity     string          `json:"origin_city,omitempty"`
	QualityGrade   string          `json:"quality_grade"`
	Status         string          `json:"status"`
	Featured       bool            `json:"featured"`
	ViewCount      int64           `json:"view_count"`
	OrderCount     int64           `json:"order_count"`
	Attributes     string          `json:"attributes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain product to its response form
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		CategoryID:     p.CategoryID,
		SellerID:       p.SellerID,
		ProductType:    string(p.ProductType),
		OrganicStatus:  string(p.OrganicStatus),
		PricePerUnit:   p.PricePerUnit,
		Currency:       string(p.Currency),
		Unit:           string(p.Unit),
		MinOrderQty:    p.MinOrderQty,
		StockQuantity:  p.StockQuantity,
		HarvestDate:    p.HarvestDate,
		ProcessingDate: p.ProcessingDate,
		ExpiryDate:     p.ExpiryDate,
		OriginCountry:  p.OriginCountry,
		OriginRegion:   p.OriginRegion,
		OriginCity:     p.OriginCity,
		QualityGrade:   string(p.QualityGrade),
		Status:         string(p.Status),
		Featured:       p.Featured,
		ViewCount:      p.ViewCount,
		OrderCount:     p.OrderCount,
		Attributes:     p.Attributes,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// CreateCategoryRequest creates a category, optionally under a parent
type CreateCategoryRequest struct {
	Slug        string     `json:"slug" binding:"required,min=2,max=50"`
	Name        string     `json:"name" binding:"required,min=2,max=100"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SortOrder   int        `json:"sort_order"`
}

// UpdateCategoryRequest updates a category's basic fields
type UpdateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description"`
	SortOrder   *int   `json:"sort_order"`
}

// CategoryResponse is the outward representation of a category
type CategoryResponse struct {
	ID          uuid.UUID          `json:"id"`
	Slug        string             `json:"slug"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	ParentID    *uuid.UUID         `json:"parent_id,omitempty"`
	Level       int                `json:"level"`
	SortOrder   int                `json:"sort_order"`
	Status      string             `json:"status"`
	Children    []CategoryResponse `json:"children,omitempty"`
}

// ToCategoryResponse converts a domain category to its response form
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Slug:        c.Slug,
		Name:        c.Name,
		Description: c.Description,
		ParentID:    c.ParentID,
		Level:       c.Level,
		SortOrder:   c.SortOrder,
		Status:      string(c.Status),
	}
}

// AddCertificationRequest attaches a certification claim to a product
type AddCertificationRequest struct {
	ProductID         uuid.UUID `json:"product_id" binding:"required"`
	Type              string    `json:"type" binding:"required"`
	CertificateNumber string    `json:"certificate_number" binding:"required"`
	IssuingBody       string    `json:"issuing_body" binding:"required"`
	IssueDate         time.Time `json:"issue_date" binding:"required"`
	ExpiryDate        time.Time `json:"expiry_date" binding:"required"`
}

// ReviewCertificationRequest approves or rejects a pending certification
type ReviewCertificationRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

// CertificationResponse is the outward representation of a certification
type CertificationResponse struct {
	ID                uuid.UUID `json:"id"`
	ProductID         uuid.UUID `json:"product_id"`
	Type              string    `json:"type"`
	CertificateNumber string    `json:"certificate_number"`
	IssuingBody       string    `json:"issuing_body"`
	IssueDate         time.Time `json:"issue_date"`
	ExpiryDate        time.Time `json:"expiry_date"`
	Status            string    `json:"status"`
	ReviewNote        string    `json:"review_note,omitempty"`
}

// ToCertificationResponse converts a domain certification
func ToCertificationResponse(c *catalog.Certification) CertificationResponse {
	return CertificationResponse{
		ID:                c.ID,
		ProductID:         c.ProductID,
		Type:              string(c.Type),
		CertificateNumber: c.CertificateNumber,
		IssuingBody:       c.IssuingBody,
		IssueDate:         c.IssueDate,
		ExpiryDate:        c.ExpiryDate,
		Status:            string(c.Status),
		ReviewNote:        c.ReviewNote,
	}
}

// InitiateUploadRequest starts a media upload for a listing
type InitiateUploadRequest struct {
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	Type        string    `json:"type" binding:"required"`
	FileName    string    `json:"file_name" binding:"required"`
	FileSize    int64     `json:"file_size" binding:"required,gt=0"`
	ContentType string    `json:"content_type" binding:"required"`
}

// InitiateUploadResponse carries the presigned upload target
type InitiateUploadResponse struct {
	MediaID   uuid.UUID `json:"media_id"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MediaResponse is the outward representation of product media
type MediaResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	FileName    string    `json:"file_name"`
	FileSize    int64     `json:"file_size"`
	ContentType string    `json:"content_type"`
	SortOrder   int       `json:"sort_order"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToMediaResponse converts a domain media record
func ToMediaResponse(m *catalog.ProductMedia) MediaResponse {
	return MediaResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		Type:        string(m.Type),
		Status:      string(m.Status),
		FileName:    m.FileName,
		FileSize:    m.FileSize,
		ContentType: m.ContentType,
		SortOrder:   m.SortOrder,
		CreatedAt:   m.CreatedAt,
	}
}
