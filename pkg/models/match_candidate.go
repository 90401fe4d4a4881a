package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MatchType classifies how strong a match candidate is
type MatchType string

const (
	MatchTypeExact          MatchType = "exact"
	MatchTypeHighConfidence MatchType = "high_confidence"
	MatchTypePotential      MatchType = "potential"
	MatchTypeLowConfidence  MatchType = "low_confidence"
)

// MatchCriteria records which strategy produced a candidate and what evidence
// it used. Stored as jsonb.
type MatchCriteria map[string]any

// Value implements driver.Valuer
func (mc MatchCriteria) Value() (driver.Value, error) {
	if mc == nil {
		return nil, nil
	}
	return json.Marshal(mc)
}

// Scan implements sql.Scanner
func (mc *MatchCriteria) Scan(src any) error {
	if src == nil {
		*mc = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into MatchCriteria", src)
	}

	return json.Unmarshal(data, mc)
}

// MatchCandidate is a scored link between an incoming customer request and a
// canonical customer
type MatchCandidate struct {
	MatchID            string        `json:"match_id" db:"match_id"`
	IncomingCustomerID int64         `json:"incoming_customer_id" db:"incoming_customer_id"`
	MatchedCustomerID  int64         `json:"matched_customer_id" db:"matched_customer_id"`
	SimilarityScore    float64       `json:"similarity_score" db:"similarity_score"`
	MatchType          MatchType     `json:"match_type" db:"match_type"`
	MatchCriteria      MatchCriteria `json:"match_criteria" db:"match_criteria"`
	ConfidenceLevel    float64       `json:"confidence_level" db:"confidence_level"`
	CreatedDate        time.Time     `json:"created_date" db:"created_date"`
	Reviewed           bool          `json:"reviewed" db:"reviewed"`
	ReviewerNotes      *string       `json:"reviewer_notes,omitempty" db:"reviewer_notes"`
}
