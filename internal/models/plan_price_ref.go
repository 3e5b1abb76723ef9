package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanPriceRef memoizes the processor-side product and price created for a
// plan, so repeated checkouts reuse the same catalog objects instead of
// re-searching the processor on every call. A row is only trusted while
// unit_amount/currency/interval still match the plan definition.
type PlanPriceRef struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PlanID     string    `gorm:"size:50;not null;uniqueIndex" json:"plan_id"`
	ProductID  string    `gorm:"size:255;not null" json:"product_id"`
	PriceID    string    `gorm:"size:255;not null" json:"price_id"`
	UnitAmount int64     `gorm:"not null" json:"unit_amount"`
	Currency   string    `gorm:"size:10;not null" json:"currency"`
	Interval   string    `gorm:"size:16;not null" json:"interval"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
