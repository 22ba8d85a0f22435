// Package preflight validates the source and destination directories before an
// organize run touches any file.
package preflight
