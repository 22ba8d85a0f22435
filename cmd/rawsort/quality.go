package main

import (
	"strconv"
	"strings"

	"rawsort/internal/config"
)

// qualityResult explains how a --convert-to-jpg value was interpreted.
type qualityResult struct {
	Value   uint8
	Raw     string
	Invalid bool
	Clamped bool
}

// parseQuality accepts any value that parses as an unsigned 8-bit integer;
// anything else falls back to the default quality. Values above 100 are
// clamped to 100.
func parseQuality(raw string) qualityResult {
	raw = strings.TrimSpace(raw)
	result := qualityResult{Value: config.DefaultQuality, Raw: raw}
	if raw == "" {
		return result
	}
	parsed, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		result.Invalid = true
		return result
	}
	if parsed > 100 {
		result.Value = 100
		result.Clamped = true
		return result
	}
	result.Value = uint8(parsed)
	return result
}
