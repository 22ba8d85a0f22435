package main

import (
	"strconv"
	"strings"
)

const convertFlag = "--convert-to-jpg"

// valueFlags take their value from the following token.
var valueFlags = map[string]bool{
	"-c":          true,
	"--config":    true,
	"--log-level": true,
	"--limit":     true,
	"-n":          true,
	"--lines":     true,
	"-p":          true,
	"--path":      true,
}

// normalizeArgs rewrites `--convert-to-jpg <q>` into `--convert-to-jpg=<q>` so
// the optional-value flag accepts a space-separated quality. The following
// token is taken as the quality when it parses as an integer (negative values
// included, so they reach the quality fallback instead of flag parsing) or
// when it does not look like a flag and is a third positional argument (so
// `rawsort in out --convert-to-jpg high` still reaches the quality fallback).
func normalizeArgs(args []string) []string {
	idx := -1
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if arg == convertFlag {
			idx = i
			break
		}
	}
	if idx < 0 || idx+1 >= len(args) {
		return args
	}
	next := args[idx+1]
	if next == "" {
		return args
	}
	_, numErr := strconv.Atoi(next)
	if numErr != nil && (strings.HasPrefix(next, "-") || countPositionals(args, idx+1) < 3) {
		return args
	}

	out := make([]string, 0, len(args)-1)
	out = append(out, args[:idx]...)
	out = append(out, convertFlag+"="+next)
	out = append(out, args[idx+2:]...)
	return out
}

// countPositionals counts non-flag tokens, treating args[candidate] as positional.
func countPositionals(args []string, candidate int) int {
	count := 0
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return count + len(args) - i - 1
		case i == candidate:
			count++
		case valueFlags[arg]:
			i++
		case strings.HasPrefix(arg, "-"):
		default:
			count++
		}
	}
	return count
}
