// Package exiftool reads capture dates from image files by shelling out to
// exiftool.
//
// Only the DateTimeOriginal tag is requested, in short value-only form. A
// missing, empty, or malformed value is an ordinary "unknown date" result
// rather than an error, so callers can log and leave the file in place.
package exiftool
