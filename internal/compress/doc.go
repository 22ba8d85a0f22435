// Package compress recompresses JPEG files in place through an ordered chain
// of external tools.
//
// Each Provider wraps one binary (ImageMagick, jpegoptim). The Chain tries
// providers in configuration order and stops at the first success. A chain
// where every provider fails only logs a warning; compression never aborts an
// organize run.
package compress
