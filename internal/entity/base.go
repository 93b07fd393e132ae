package entity

import (
	"time"

	"github.com/mbeoliero/coursehub/pkg/idgen"
)

// Now returns the current UTC time at millisecond precision, the precision
// every timestamp column is stored with
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NewId returns a random id for uuid keyed rows
func NewId() string {
	return idgen.NewUUID()
}

// StrPtr returns nil for an empty string, otherwise a pointer to s
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StrVal dereferences p, returning "" for nil
func StrVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
