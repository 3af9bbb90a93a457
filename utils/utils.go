package utils

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strings"

	"homedish/apperr"

	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// GetUUID returns a random document id.
func GetUUID() string {
	return uuid.New().String()
}

// DecodeJSON decodes a bounded request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("invalid JSON payload")
	}
	return nil
}

// RoundCents rounds an amount to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// NormalizeEmail lowercases and trims an email used as a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CleanList trims entries and drops empty and duplicate ones.
func CleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool)
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
