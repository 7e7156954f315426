package models

import (
	"time"
)

// DamageImage is one uploaded photo attached to a DamageReport. Size and
// Mimetype reflect the actually received file, not client-declared values.
// Rows are append-only.
type DamageImage struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	ReportID     uint          `gorm:"not null;index" json:"report_id"`
	Report       *DamageReport `gorm:"foreignKey:ReportID;constraint:OnUpdate:NO ACTION,OnDelete:NO ACTION" json:"-"`
	ImageURL     string        `gorm:"type:varchar(255);not null" json:"image_url"`
	FileName     string        `gorm:"type:varchar(255);not null;uniqueIndex" json:"filename"`
	OriginalName string        `gorm:"type:varchar(255)" json:"original_name"`
	Size         int64         `gorm:"type:bigint;not null" json:"size"`
	Mimetype     string        `gorm:"type:varchar(100);not null" json:"mimetype"`
	Metadata     *JSON         `gorm:"type:json" json:"metadata"`
	CreatedAt    time.Time     `gorm:"autoCreateTime" json:"created_at"`
}
