package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/agriconnect/backend/internal/domain/catalog"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// allowedMediaContentTypes whitelists upload content types. SVG is excluded,
// it can carry scripts.
var allowedMediaContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// ObjectStorage is implemented by the S3 adapter in the infrastructure layer
type ObjectStorage interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL returns a presigned GET URL and its expiry
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject removes an object from the bucket
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks whether the object landed in the bucket
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// MediaServiceConfig holds configuration for the media service
type MediaServiceConfig struct {
	UploadURLExpiry    time.Duration
	DownloadURLExpiry  time.Duration
	MaxMediaPerProduct int
	StalePendingMaxAge time.Duration
}

// DefaultMediaServiceConfig returns the default configuration
func DefaultMediaServiceConfig() MediaServiceConfig {
	return MediaServiceConfig{
		UploadURLExpiry:    15 * time.Minute,
		DownloadURLExpiry:  time.Hour,
		MaxMediaPerProduct: 10,
		StalePendingMaxAge: 24 * time.Hour,
	}
}

// MediaService handles listing images and documents through presigned URLs
type MediaService struct {
	mediaRepo   catalog.ProductMediaRepository
	productRepo catalog.ProductRepository
	storage     ObjectStorage
	config      MediaServiceConfig
	logger      *zap.Logger
}

// NewMediaService creates a new media service
func NewMediaService(
	mediaRepo catalog.ProductMediaRepository,
	productRepo catalog.ProductRepository,
	storage ObjectStorage,
	logger *zap.Logger,
) *MediaService {
	return &MediaService{
		mediaRepo:   mediaRepo,
		productRepo: productRepo,
		storage:     storage,
		config:      DefaultMediaServiceConfig(),
		logger:      logger,
	}
}

// SetConfig sets the service configuration
func (s *MediaService) SetConfig(config MediaServiceConfig) {
	s.config = config
}

// InitiateUpload creates a pending media record and returns a presigned
// upload URL for the seller's client to PUT the bytes to.
func (s *MediaService) InitiateUpload(ctx context.Context, sellerID uuid.UUID, req InitiateUploadRequest) (*InitiateUploadResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}
	if product.SellerID != sellerID {
		return nil, shared.ErrForbidden
	}

	existing, err := s.mediaRepo.FindByProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	active := 0
	for i := range existing {
		if existing[i].Status != catalog.MediaStatusDeleted {
			active++
		}
	}
	if active >= s.config.MaxMediaPerProduct {
		return nil, shared.NewDomainError("MEDIA_LIMIT_EXCEEDED",
			fmt.Sprintf("Maximum %d media files per product allowed", s.config.MaxMediaPerProduct))
	}

	if !allowedMediaContentTypes[strings.ToLower(req.ContentType)] {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed", req.ContentType))
	}

	storageKey := s.generateStorageKey(req.ProductID, req.FileName)

	media, err := catalog.NewProductMedia(
		req.ProductID,
		catalog.MediaType(req.Type),
		req.FileName,
		req.FileSize,
		req.ContentType,
		storageKey,
		&sellerID,
	)
	if err != nil {
		return nil, err
	}

	if err := s.mediaRepo.Save(ctx, media); err != nil {
		return nil, err
	}

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, storageKey, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		// Clean up the record if URL generation fails.
		_ = s.mediaRepo.Delete(ctx, media.ID)
		s.logger.Error("Failed to generate upload URL", zap.Error(err))
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &InitiateUploadResponse{
		MediaID:   media.ID,
		UploadURL: uploadURL,
		ExpiresAt: expiresAt,
	}, nil
}

// ConfirmUpload verifies the bytes landed in storage and activates the record
func (s *MediaService) ConfirmUpload(ctx context.Context, mediaID uuid.UUID) (*MediaResponse, error) {
	media, err := s.mediaRepo.FindByID(ctx, mediaID)
	if err != nil {
		return nil, err
	}

	exists, err := s.storage.ObjectExists(ctx, media.StorageKey)
	if err != nil {
		return nil, shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to verify upload")
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "File not found in storage. Please upload the file first")
	}

	if err := media.Confirm(); err != nil {
		return nil, err
	}

	if err := s.mediaRepo.Save(ctx, media); err != nil {
		return nil, err
	}

	resp := ToMediaResponse(media)
	if url, _, err := s.storage.GenerateDownloadURL(ctx, media.StorageKey, s.config.DownloadURLExpiry); err == nil {
		resp.URL = url
	}
	return &resp, nil
}

// ListByProduct lists active media with presigned download URLs
func (s *MediaService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]MediaResponse, error) {
	media, err := s.mediaRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	responses := make([]MediaResponse, 0, len(media))
	for i := range media {
		m := &media[i]
		if m.Status != catalog.MediaStatusActive {
			continue
		}
		resp := ToMediaResponse(m)
		if url, _, err := s.storage.GenerateDownloadURL(ctx, m.StorageKey, s.config.DownloadURLExpiry); err == nil {
			resp.URL = url
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// Delete soft-deletes a media record owned by the seller
func (s *MediaService) Delete(ctx context.Context, sellerID, mediaID uuid.UUID) error {
	media, err := s.mediaRepo.FindByID(ctx, mediaID)
	if err != nil {
		return err
	}

	product, err := s.productRepo.FindByID(ctx, media.ProductID)
	if err != nil {
		return err
	}
	if product.SellerID != sellerID {
		return shared.ErrForbidden
	}

	if err := media.MarkDeleted(); err != nil {
		return err
	}
	if err := s.mediaRepo.Save(ctx, media); err != nil {
		return err
	}

	// Removal from the bucket may lag the record, the object might already
	// be gone.
	if err := s.storage.DeleteObject(ctx, media.StorageKey); err != nil {
		s.logger.Warn("Failed to delete media from storage",
			zap.String("media_id", media.ID.String()),
			zap.String("storage_key", media.StorageKey),
			zap.Error(err))
	}

	return nil
}

// CleanupStalePending removes pending records whose upload never completed.
// Run by the scheduler.
func (s *MediaService) CleanupStalePending(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.config.StalePendingMaxAge)
	stale, err := s.mediaRepo.FindStalePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	removed := 0
	for i := range stale {
		m := &stale[i]
		if err := s.storage.DeleteObject(ctx, m.StorageKey); err != nil {
			s.logger.Warn("Failed to delete stale upload from storage",
				zap.String("storage_key", m.StorageKey),
				zap.Error(err))
		}
		if err := s.mediaRepo.Delete(ctx, m.ID); err != nil {
			s.logger.Error("Failed to delete stale media record",
				zap.String("media_id", m.ID.String()),
				zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *MediaService) generateStorageKey(productID uuid.UUID, fileName string) string {
	ext := filepath.Ext(fileName)
	return fmt.Sprintf("products/%s/media/%s%s", productID.String(), uuid.New().String(), ext)
}
