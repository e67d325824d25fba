package service

import (
	"database/sql"
	"errors"
	"math"
	"strings"

	"github.com/lib/pq"

	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
	"github.com/unisphere/unisphere-api/pkg/validation"
)

// invalid converts a validator failure into a VALIDATION_ERROR with per-field messages.
func invalid(err error, message string) error {
	return appErrors.Validation(err, message, validation.Translate(err))
}

// lookupError maps sql.ErrNoRows to NOT_FOUND and anything else to INTERNAL_ERROR.
func lookupError(err error, notFound, failure string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Internal(err, failure)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// stringList trims entries, drops blanks and never returns nil so arrays
// serialise as [] and store as '{}'.
func stringList(in []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
