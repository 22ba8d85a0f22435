package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := min(int64(chunkSize), remaining)
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteRaw creates a fake raw file and, when date is non-empty, a sidecar
// "<path>.date" that the stub exiftool prints (e.g. "2023:07:04 10:11:12").
func WriteRaw(t testing.TB, path, date string) {
	t.Helper()
	WriteFile(t, path, 64)
	if date == "" {
		return
	}
	if err := os.WriteFile(path+".date", []byte(date+"\n"), 0o644); err != nil {
		t.Fatalf("write date sidecar for %s: %v", path, err)
	}
}
