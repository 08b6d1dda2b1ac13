package models

import (
	"time"
)

// BillingStatus represents the payment status of an invoice.
type BillingStatus string

const (
	BillingPending   BillingStatus = "pending"
	BillingPaid      BillingStatus = "paid"
	BillingRefunded  BillingStatus = "refunded"
	BillingCancelled BillingStatus = "cancelled"
)

// Billing represents an invoice issued to a patient. PaidAt is set exactly when
// the status transitions to paid.
type Billing struct {
	BaseModel
	PatientID   string        `gorm:"size:36;index" json:"patientId"`
	Amount      float64       `gorm:"not null" json:"amount"`
	Currency    string        `gorm:"size:10;default:'USD'" json:"currency"`
	Status      BillingStatus `gorm:"size:20;default:'pending'" json:"status"`
	Description string        `gorm:"size:255" json:"description,omitempty"`
	IssuedAt    time.Time     `json:"issuedAt"`
	PaidAt      *time.Time    `json:"paidAt,omitempty"`

	Patient Patient `gorm:"foreignKey:PatientID" json:"-"`
}
