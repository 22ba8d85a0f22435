// Package logs finds and reads the per-run log files rawsort writes.
//
// Reading is bounded: LastLines keeps a ring of the final N lines instead of
// loading the whole file, and Follow polls from a byte offset so a second
// terminal can watch a run in progress.
package logs
