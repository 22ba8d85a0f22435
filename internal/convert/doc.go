// Package convert turns raw camera files into compressed preview JPEGs.
//
// The raw decoder (dcraw) writes image bytes to stdout; the converter stores
// them atomically next to the organized raw file and hands the result to the
// compression chain. Decoder problems are logged and swallowed so a missing
// dcraw never fails an organize run.
package convert
