package documents

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentNumber string    `gorm:"uniqueIndex;not null;column:document_number" json:"document_number"`
	Title          string    `gorm:"not null;column:title" json:"title"`
	CreatedByID    uuid.UUID `gorm:"type:uuid;not null;index;column:created_by_id" json:"created_by_id"`

	Status         DocumentStatus          `gorm:"not null;index;column:status" json:"status"`
	ApprovalStatus ApprovalAggregateStatus `gorm:"not null;column:approval_status" json:"approval_status"`
	RevisionCycle  int                     `gorm:"not null;default:0;column:revision_cycle" json:"revision_cycle"`

	// Creator signature survives every revision cycle once set.
	PreparedBySignature *string    `gorm:"type:text;column:prepared_by_signature" json:"prepared_by_signature,omitempty"`
	PreparedBySignedAt  *time.Time `gorm:"column:prepared_by_signed_at" json:"prepared_by_signed_at,omitempty"`

	ValidatedCategory *string    `gorm:"column:validated_category" json:"validated_category,omitempty"`
	CompanyStamp      *string    `gorm:"type:text;column:company_stamp" json:"company_stamp,omitempty"`
	FinalPdfURL       *string    `gorm:"column:final_pdf_url" json:"final_pdf_url,omitempty"`
	CertificateURL    *string    `gorm:"column:certificate_url" json:"certificate_url,omitempty"`
	ValidatedAt       *time.Time `gorm:"column:validated_at" json:"validated_at,omitempty"`
	ValidatedByID     *uuid.UUID `gorm:"type:uuid;column:validated_by_id" json:"validated_by_id,omitempty"`

	ActivatedAt    *time.Time `gorm:"column:activated_at" json:"activated_at,omitempty"`
	ObsoletedAt    *time.Time `gorm:"column:obsoleted_at" json:"obsoleted_at,omitempty"`
	ObsoleteReason *string    `gorm:"column:obsolete_reason" json:"obsolete_reason,omitempty"`

	CreatedAt time.Time `gorm:"not null;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at" json:"updated_at"`
}

func (Document) TableName() string { return "document" }

func (d *Document) CreatorSigned() bool {
	return d != nil && d.PreparedBySignedAt != nil
}

func (d *Document) Finalized() bool {
	return d != nil && d.ValidatedAt != nil
}
