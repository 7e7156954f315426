package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnalysisResult records an external classifier verdict for a report.
// Rows are append-only.
type AnalysisResult struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ReportID    uint            `gorm:"not null;index" json:"report_id"`
	Report      *DamageReport   `gorm:"foreignKey:ReportID;constraint:OnUpdate:NO ACTION,OnDelete:NO ACTION" json:"-"`
	Result      string          `gorm:"type:varchar(100);not null" json:"result"`
	Confidence  decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"confidence"`
	RawResponse *JSON           `gorm:"type:json" json:"raw_response,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
