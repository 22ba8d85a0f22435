// Package organizer moves raw files into date-named folders.
//
// A run scans the source directory, asks the date reader for each matching
// file's capture date, and relocates dated files under
// <destination>/<YYYY-MM-DD>/, optionally producing a compressed JPEG preview
// beside each one. Files are handled one at a time and failures are isolated
// per file: an undated file stays where it is, a failed move is counted and
// logged, and the run carries on. Only an unreadable source directory or a
// canceled context ends a run early. The returned Summary is what the CLI
// reports and what the journal stores.
package organizer
