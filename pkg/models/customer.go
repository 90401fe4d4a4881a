package models

import (
	"time"

	"github.com/Ramsey-B/clover/pkg/vector"
)

// Customer is a canonical customer record
type Customer struct {
	CustomerID    int64    `json:"customer_id" db:"customer_id"`
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

	CreatedDate time.Time `json:"created_date" db:"created_date"`
	UpdatedDate time.Time `json:"updated_date" db:"updated_date"`

	CompanyNameEmbedding vector.Vector `json:"-" db:"company_name_embedding"`
	FullProfileEmbedding vector.Vector `json:"-" db:"full_profile_embedding"`
}

// ScoredCustomer is a customer row paired with a database-computed similarity
type ScoredCustomer struct {
	Customer
	SimilarityScore float64 `json:"similarity_score" db:"similarity_score"`
}
