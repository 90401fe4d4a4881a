package models

import (
	"time"

	"github.com/Ramsey-B/clover/pkg/vector"
)

// Processing statuses for incoming customer requests. Transitions only move
// forward: pending/processing may become processed or failed, never the
// other way around.
const (
	ProcessingStatusPending    = "pending"
	ProcessingStatusProcessing = "processing"
	ProcessingStatusProcessed  = "processed"
	ProcessingStatusFailed     = "failed"
)

// IncomingCustomer is a customer record awaiting resolution against the
// canonical customer base
type IncomingCustomer struct {
	RequestID     int64    `json:"request_id" db:"request_id"`
	CompanyName   string   `json:"company_name" db:"company_name"`
	ContactName   *string  `json:"contact_name,omitempty" db:"contact_name"`
	Email         *string  `json:"email,omitempty" db:"email"`
	Phone         *string  `json:"phone,omitempty" db:"phone"`
	AddressLine1  *string  `json:"address_line1,omitempty" db:"address_line1"`
	AddressLine2  *string  `json:"address_line2,omitempty" db:"address_line2"`
	City          *string  `json:"city,omitempty" db:"city"`
	StateProvince *string  `json:"state_province,omitempty" db:"state_province"`
	PostalCode    *string  `json:"postal_code,omitempty" db:"postal_code"`
	Country       *string  `json:"country,omitempty" db:"country"`
	Industry      *string  `json:"industry,omitempty" db:"industry"`
	AnnualRevenue *float64 `json:"annual_revenue,omitempty" db:"annual_revenue"`
	EmployeeCount *int     `json:"employee_count,omitempty" db:"employee_count"`
	Website       *string  `json:"website,omitempty" db:"website"`
	Description   *string  `json:"description,omitempty" db:"description"`

	RequestDate time.Time `json:"request_date" db:"request_date"`

	CompanyNameEmbedding vector.Vector `json:"-" db:"company_name_embedding"`
	FullProfileEmbedding vector.Vector `json:"-" db:"full_profile_embedding"`

	ProcessingStatus string     `json:"processing_status" db:"processing_status"`
	ProcessedDate    *time.Time `json:"processed_date,omitempty" db:"processed_date"`
}

// HasMatchSignal reports whether the record carries at least one field a
// matching strategy can work with
func (ic *IncomingCustomer) HasMatchSignal() bool {
	if ic.CompanyName != "" {
		return true
	}
	if ic.Email != nil && *ic.Email != "" {
		return true
	}
	if ic.Phone != nil && *ic.Phone != "" {
		return true
	}
	return len(ic.FullProfileEmbedding) > 0
}
