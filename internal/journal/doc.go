// Package journal persists an optional SQLite record of organize runs and the
// files each run moved. The journal is write-only during a run and never
// influences where files go; `rawsort history` reads it back.
package journal
