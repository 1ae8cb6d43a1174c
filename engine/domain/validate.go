package domain

import (
	"math"
	"strconv"
	"strings"
)

// ParseYear accepts a four-digit year with optional surrounding whitespace.
func ParseYear(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if len(s) != 4 {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return y, true
}

// ParsePrice strips thousands separators and parses a float ("45,000" -> 45000).
func ParsePrice(raw string) (float64, bool) {
	return parseGrouped(raw)
}

// ParseAccelTime parses a 0-60 time; unparsable values become 0.
func ParseAccelTime(raw string) float64 {
	v, ok := parseGrouped(raw)
	if !ok {
		return 0
	}
	return v
}

// ParseHorsepower parses a plain numeric value. Anything else, including
// comma-grouped numbers, is reported as absent.
func ParseHorsepower(raw string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseGrouped(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
