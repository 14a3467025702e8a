package catalog

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/catalog"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CertificationService manages product certification claims and their review
type CertificationService struct {
	certRepo    catalog.CertificationRepository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewCertificationService creates a new certification service
func NewCertificationService(certRepo catalog.CertificationRepository, productRepo catalog.ProductRepository, logger *zap.Logger) *CertificationService {
	return &CertificationService{
		certRepo:    certRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// Add attaches a certification claim to a seller's own product
func (s *CertificationService) Add(ctx context.Context, sellerID uuid.UUID, req AddCertificationRequest) (*CertificationResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	}
	if product.SellerID != sellerID {
		return nil, shared.ErrForbidden
	}

	cert, err := catalog.NewCertification(
		req.ProductID,
		catalog.CertificationType(req.Type),
		req.CertificateNumber,
		req.IssuingBody,
		req.IssueDate,
		req.ExpiryDate,
	)
	if err != nil {
		return nil, err
	}

	if err := s.certRepo.Save(ctx, cert); err != nil {
		s.logger.Error("Failed to save certification", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to add certification")
	}

	s.logger.Info("Certification submitted",
		zap.String("certification_id", cert.ID.String()),
		zap.String("product_id", req.ProductID.String()),
		zap.String("type", req.Type))

	resp := ToCertificationResponse(cert)
	return &resp, nil
}

// Review approves or rejects a pending certification. Approving an organic
// certification upgrades the product's organic status.
func (s *CertificationService) Review(ctx context.Context, certID uuid.UUID, req ReviewCertificationRequest) (*CertificationResponse, error) {
	cert, err := s.certRepo.FindByID(ctx, certID)
	if err != nil {
		return nil, err
	}

	if req.Approve {
		if err := cert.Approve(req.Note); err != nil {
			return nil, err
		}
	} else {
		if err := cert.Reject(req.Note); err != nil {
			return nil, err
		}
	}

	if err := s.certRepo.Save(ctx, cert); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save review")
	}

	if req.Approve && cert.Type == catalog.CertificationTypeOrganic {
		if product, err := s.productRepo.FindByID(ctx, cert.ProductID); err == nil {
			if err := product.SetOrganicStatus(catalog.OrganicStatusOrganic); err == nil {
				if err := s.productRepo.Save(ctx, product); err != nil {
					s.logger.Warn("Failed to update organic status after approval",
						zap.String("product_id", cert.ProductID.String()),
						zap.Error(err))
				}
			}
		}
	}

	s.logger.Info("Certification reviewed",
		zap.String("certification_id", certID.String()),
		zap.Bool("approved", req.Approve))

	resp := ToCertificationResponse(cert)
	return &resp, nil
}

// ListByProduct lists all certifications attached to a product
func (s *CertificationService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]CertificationResponse, error) {
	certs, err := s.certRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	responses := make([]CertificationResponse, len(certs))
	for i := range certs {
		responses[i] = ToCertificationResponse(&certs[i])
	}
	return responses, nil
}

// ListPending lists certifications awaiting admin review
func (s *CertificationService) ListPending(ctx context.Context, filter shared.Filter) ([]CertificationResponse, error) {
	certs, err := s.certRepo.FindByStatus(ctx, catalog.CertificationStatusPending, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]CertificationResponse, len(certs))
	for i := range certs {
		responses[i] = ToCertificationResponse(&certs[i])
	}
	return responses, nil
}

// ExpireDue marks approved certifications past their expiry date as expired.
// Run by the scheduler.
func (s *CertificationService) ExpireDue(ctx context.Context) (int, error) {
	now := time.Now()
	certs, err := s.certRepo.FindExpiring(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range certs {
		cert := &certs[i]
		if err := cert.MarkExpired(now); err != nil {
			continue
		}
		if err := s.certRepo.Save(ctx, cert); err != nil {
			s.logger.Error("Failed to expire certification",
				zap.String("certification_id", cert.ID.String()),
				zap.Error(err))
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.Info("Expired certifications", zap.Int("count", expired))
	}
	return expired, nil
}
