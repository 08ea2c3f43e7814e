package models

import "github.com/shopspring/decimal"

// Medicine is an inventory item. QuantityInStock may go negative.
type Medicine struct {
	BaseModel
	Name            string          `gorm:"size:150;index;not null" json:"name"`
	Brand           string          `gorm:"size:100" json:"brand"`
	Description     string          `gorm:"type:text" json:"description"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	QuantityInStock int             `gorm:"not null" json:"quantityInStock"`
	ReorderLevel    int             `gorm:"not null" json:"reorderLevel"`
	IsActive        bool            `gorm:"index" json:"isActive"`
}

// NeedsReorder reports whether stock has fallen to the reorder level.
func (m Medicine) NeedsReorder() bool {
	return m.QuantityInStock <= m.ReorderLevel
}
