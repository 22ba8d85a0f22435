package main

import (
	"slices"
	"testing"
)

func TestNormalizeArgs(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{"numeric after flag", []string{"in", "out", "--convert-to-jpg", "50"}, []string{"in", "out", "--convert-to-jpg=50"}},
		{"flag alone", []string{"in", "out", "--convert-to-jpg"}, []string{"in", "out", "--convert-to-jpg"}},
		{"flag before positionals", []string{"--convert-to-jpg", "in", "out"}, []string{"--convert-to-jpg", "in", "out"}},
		{"numeric before positionals", []string{"--convert-to-jpg", "70", "in", "out"}, []string{"--convert-to-jpg=70", "in", "out"}},
		{"third positional is the value", []string{"in", "out", "--convert-to-jpg", "high"}, []string{"in", "out", "--convert-to-jpg=high"}},
		{"negative number is the value", []string{"in", "out", "--convert-to-jpg", "-5"}, []string{"in", "out", "--convert-to-jpg=-5"}},
		{"next is a flag", []string{"in", "out", "--convert-to-jpg", "--dry-run"}, []string{"in", "out", "--convert-to-jpg", "--dry-run"}},
		{"config value is not positional", []string{"-c", "x.toml", "--convert-to-jpg", "in", "out"}, []string{"-c", "x.toml", "--convert-to-jpg", "in", "out"}},
		{"no flag", []string{"history", "--limit", "5"}, []string{"history", "--limit", "5"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeArgs(tc.in); !slices.Equal(got, tc.want) {
				t.Fatalf("normalizeArgs(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseQuality(t *testing.T) {
	cases := []struct {
		raw     string
		value   uint8
		invalid bool
		clamped bool
	}{
		{"50", 50, false, false},
		{"0", 0, false, false},
		{"100", 100, false, false},
		{"", 80, false, false},
		{"150", 100, false, true},
		{"255", 100, false, true},
		{"256", 80, true, false},
		{"-1", 80, true, false},
		{"high", 80, true, false},
	}
	for _, tc := range cases {
		got := parseQuality(tc.raw)
		if got.Value != tc.value || got.Invalid != tc.invalid || got.Clamped != tc.clamped {
			t.Fatalf("parseQuality(%q) = %+v", tc.raw, got)
		}
	}
}
