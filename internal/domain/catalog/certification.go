package catalog

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CertificationType classifies a product certification
type CertificationType string

const (
	CertificationTypeOrganic   CertificationType = "organic"
	CertificationTypeQuality   CertificationType = "quality"
	CertificationTypeSafety    CertificationType = "safety"
	CertificationTypeFairTrade CertificationType = "fair_trade"
	CertificationTypeGlobalGAP CertificationType = "global_gap"
	CertificationTypeHalal     CertificationType = "halal"
)

// IsValid checks if the certification type is valid
func (t CertificationType) IsValid() bool {
	switch t {
	case CertificationTypeOrganic, CertificationTypeQuality, CertificationTypeSafety,
		CertificationTypeFairTrade, CertificationTypeGlobalGAP, CertificationTypeHalal:
		return true
	default:
		return false
	}
}

// CertificationStatus represents the review status of a certification
type CertificationStatus string

const (
	CertificationStatusPending  CertificationStatus = "pending"
	CertificationStatusApproved CertificationStatus = "approved"
	CertificationStatusRejected CertificationStatus = "rejected"
	CertificationStatusExpired  CertificationStatus = "expired"
)

// Certification is a verifiable claim attached to a product,
// reviewed by platform admins before it shows on the listing
type Certification struct {
	shared.BaseAggregateRoot
	ProductID         uuid.UUID           `gorm:"type:uuid;not null;index"`
	Type              CertificationType   `gorm:"type:varchar(20);not null"`
	CertificateNumber string              `gorm:"type:varchar(100);not null"`
	IssuingBody       string              `gorm:"type:varchar(200);not null"`
	IssueDate         time.Time           `gorm:"type:date;not null"`
	ExpiryDate        time.Time           `gorm:"type:date;not null;index"`
	Status            CertificationStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	ReviewNote        string              `gorm:"type:text"`
	DocumentKey       string              `gorm:"type:varchar(500)"` // storage key of the scanned certificate
}

// TableName returns the table name for GORM
func (Certification) TableName() string {
	return "certifications"
}

// NewCertification creates a certification claim awaiting review
func NewCertification(productID uuid.UUID, certType CertificationType, number, issuingBody string, issueDate, expiryDate time.Time) (*Certification, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT_ID", "Product ID cannot be empty")
	}
	if !certType.IsValid() {
		return nil, shared.NewDomainError("INVALID_CERT_TYPE", "Unknown certification type")
	}
	if number == "" {
		return nil, shared.NewDomainError("INVALID_CERT_NUMBER", "Certificate number cannot be empty")
	}
	if issuingBody == "" {
		return nil, shared.NewDomainError("INVALID_ISSUING_BODY", "Issuing body cannot be empty")
	}
	if !expiryDate.After(issueDate) {
		return nil, shared.NewDomainError("INVALID_DATES", "Expiry date must be after issue date")
	}

	return &Certification{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		Type:              certType,
		CertificateNumber: number,
		IssuingBody:       issuingBody,
		IssueDate:         issueDate,
		ExpiryDate:        expiryDate,
		Status:            CertificationStatusPending,
	}, nil
}

// Approve marks the certification as verified
func (c *Certification) Approve(note string) error {
	if c.Status != CertificationStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending certifications can be approved")
	}

	c.Status = CertificationStatusApproved
	c.ReviewNote = note
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Reject marks the certification as rejected
func (c *Certification) Reject(note string) error {
	if c.Status != CertificationStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending certifications can be rejected")
	}

	c.Status = CertificationStatusRejected
	c.ReviewNote = note
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// MarkExpired flips an approved certification past its expiry date
func (c *Certification) MarkExpired(now time.Time) error {
	if c.Status != CertificationStatusApproved {
		return shared.NewDomainError("INVALID_STATE", "Only approved certifications can expire")
	}
	if now.Before(c.ExpiryDate) {
		return shared.NewDomainError("NOT_EXPIRED", "Certification has not reached its expiry date")
	}

	c.Status = CertificationStatusExpired
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// IsValidAt reports whether the certification is approved and unexpired at t
func (c *Certification) IsValidAt(t time.Time) bool {
	return c.Status == CertificationStatusApproved && t.Before(c.ExpiryDate)
}

// CertificationRepository defines the interface for certification persistence
type CertificationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Certification, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]Certification, error)
	FindByStatus(ctx context.Context, status CertificationStatus, filter shared.Filter) ([]Certification, error)
	// FindExpiring finds approved certifications whose expiry date falls before the cutoff
	FindExpiring(ctx context.Context, cutoff time.Time) ([]Certification, error)
	Save(ctx context.Context, cert *Certification) error
	Delete(ctx context.Context, id uuid.UUID) error
}
