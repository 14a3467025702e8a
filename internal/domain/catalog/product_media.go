package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxMediaFileSize is the maximum allowed upload size (20MB)
const MaxMediaFileSize = 20 * 1024 * 1024

// MediaType represents the type of product media
type MediaType string

const (
	MediaTypeMainImage    MediaType = "main_image"
	MediaTypeGalleryImage MediaType = "gallery_image"
	MediaTypeDocument     MediaType = "document"
)

// IsValid checks if the media type is valid
func (t MediaType) IsValid() bool {
	switch t {
	case MediaTypeMainImage, MediaTypeGalleryImage, MediaTypeDocument:
		return true
	default:
		return false
	}
}

// IsImage returns true if the media type is an image type
func (t MediaType) IsImage() bool {
	return t == MediaTypeMainImage || t == MediaTypeGalleryImage
}

// MediaStatus represents the upload lifecycle of a media file
type MediaStatus string

const (
	MediaStatusPending MediaStatus = "pending"
	MediaStatusActive  MediaStatus = "active"
	MediaStatusDeleted MediaStatus = "deleted"
)

// ProductMedia represents an image or document attached to a listing.
// The binary lives in object storage; this entity records the key.
type ProductMedia struct {
	shared.BaseAggregateRoot
	ProductID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	Type        MediaType   `gorm:"type:varchar(20);not null"`
	Status      MediaStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	FileName    string      `gorm:"type:varchar(255);not null"`
	FileSize    int64       `gorm:"not null"`
	ContentType string      `gorm:"type:varchar(100);not null"`
	StorageKey  string      `gorm:"type:varchar(500);not null"`
	SortOrder   int         `gorm:"not null;default:0"`
	UploadedBy  *uuid.UUID  `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ProductMedia) TableName() string {
	return "product_media"
}

// NewProductMedia creates a media record in pending status.
// Confirm is called after the bytes land in object storage.
func NewProductMedia(productID uuid.UUID, mediaType MediaType, fileName string, fileSize int64, contentType, storageKey string, uploadedBy *uuid.UUID) (*ProductMedia, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT_ID", "Product ID cannot be empty")
	}
	if !mediaType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MEDIA_TYPE", "Unknown media type")
	}
	if fileName == "" || len(fileName) > 255 {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name must be 1-255 characters")
	}
	if fileSize <= 0 || fileSize > MaxMediaFileSize {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size must be positive and at most 20MB")
	}
	if contentType == "" {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type cannot be empty")
	}
	if mediaType.IsImage() && !strings.HasPrefix(contentType, "image/") {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Image media requires an image content type")
	}
	if storageKey == "" {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}

	return &ProductMedia{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		Type:              mediaType,
		Status:            MediaStatusPending,
		FileName:          fileName,
		FileSize:          fileSize,
		ContentType:       contentType,
		StorageKey:        storageKey,
		UploadedBy:        uploadedBy,
	}, nil
}

// Confirm activates the media after the upload completed
func (m *ProductMedia) Confirm() error {
	if m.Status != MediaStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending media can be confirmed")
	}

	m.Status = MediaStatusActive
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	return nil
}

// MarkDeleted soft-deletes the media record
func (m *ProductMedia) MarkDeleted() error {
	if m.Status == MediaStatusDeleted {
		return shared.NewDomainError("INVALID_STATE", "Media is already deleted")
	}

	m.Status = MediaStatusDeleted
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	return nil
}

// SetSortOrder sets the gallery position
func (m *ProductMedia) SetSortOrder(order int) {
	m.SortOrder = order
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

// ProductMediaRepository defines the interface for media persistence
type ProductMediaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductMedia, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]ProductMedia, error)
	// FindStalePending finds pending records older than the cutoff, for cleanup
	FindStalePending(ctx context.Context, cutoff time.Time) ([]ProductMedia, error)
	Save(ctx context.Context, media *ProductMedia) error
	Delete(ctx context.Context, id uuid.UUID) error
}
