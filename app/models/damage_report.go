package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusRejected  = "REJECTED"
	StatusManual    = "MANUAL"
)

// ReportStatuses lists every valid report status, initial state first.
var ReportStatuses = []string{StatusPending, StatusConfirmed, StatusRejected, StatusManual}

type DamageReport struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	ItemSKU string `gorm:"column:item_sku;type:varchar(100);not null;index" json:"item_sku" validate:"required,max=100"`
	// Creator identity comes from the verified token, never from the request body.
	CreatedByID     string           `gorm:"type:varchar(100);not null" json:"created_by_id" validate:"required"`
	CreatedByEmail  string           `gorm:"type:varchar(200);not null" json:"created_by_email" validate:"required,email"`
	CreatedByName   *string          `gorm:"type:varchar(150)" json:"created_by_name,omitempty"`
	Status          string           `gorm:"type:varchar(20);default:'PENDING';index" json:"status" validate:"oneof=PENDING CONFIRMED REJECTED MANUAL"`
	FinalConfidence *decimal.Decimal `gorm:"type:decimal(5,2)" json:"final_confidence,omitempty"`
	CreatedAt       time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	// relations
	Images          []DamageImage    `gorm:"foreignKey:ReportID" json:"images"`
	AnalysisResults []AnalysisResult `gorm:"foreignKey:ReportID" json:"analysis_results,omitempty"`
}

func (r *DamageReport) Validate() error {
	v := validator.New()

	return v.Struct(r)
}

// IsValidStatus reports whether s is part of the closed status enum.
func IsValidStatus(s string) bool {
	for _, known := range ReportStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// CanTransition reports whether a review may move a report from one status
// to another. PENDING is the only non-terminal state; reapplying the same
// decision is allowed so reviews stay idempotent.
func CanTransition(from, to string) bool {
	if !IsValidStatus(to) {
		return false
	}
	if from == to {
		return true
	}
	return from == StatusPending && to != StatusPending
}
