// Package vector provides the pgvector column representation used for
// customer embeddings
package vector

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Dimensions is the expected embedding width for customer profiles
const Dimensions = 1536

// Vector is an embedding stored in a pgvector column. The wire format is the
// pgvector text representation: "[0.1,0.2,...]".
type Vector []float32

// Value implements driver.Valuer
func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String(), nil
}

// Scan implements sql.Scanner
func (v *Vector) Scan(src any) error {
	if src == nil {
		*v = nil
		return nil
	}

	var s string
	switch value := src.(type) {
	case []byte:
		s = string(value)
	case string:
		s = value
	default:
		return fmt.Errorf("cannot scan %T into Vector", src)
	}

	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return fmt.Errorf("malformed vector value %q", s)
	}

	s = s[1 : len(s)-1]
	if s == "" {
		*v = Vector{}
		return nil
	}

	parts := strings.Split(s, ",")
	result := make(Vector, len(parts))
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return fmt.Errorf("malformed vector element %q: %w", part, err)
		}
		result[i] = float32(f)
	}

	*v = result
	return nil
}

// Norm returns the L2 norm of the vector
func (v Vector) Norm() float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

// IsUnit reports whether the vector is unit length within tolerance.
// Embedding providers return unit vectors; anything else suggests a corrupted
// or truncated embedding.
func (v Vector) IsUnit(tolerance float64) bool {
	norm := v.Norm()
	return norm >= 1.0-tolerance && norm <= 1.0+tolerance
}
