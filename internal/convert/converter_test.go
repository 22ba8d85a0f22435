package convert_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rawsort/internal/convert"
	"rawsort/internal/logging"
	"rawsort/internal/services"
)

type stubExecutor struct {
	output []byte
	err    error
	args   []string
}

func (s *stubExecutor) Output(_ context.Context, _ string, args ...string) ([]byte, error) {
	s.args = append([]string(nil), args...)
	return s.output, s.err
}

type recordingCompressor struct {
	path    string
	quality uint8
	err     error
}

func (r *recordingCompressor) Compress(_ context.Context, path string, quality uint8) (string, error) {
	r.path = path
	r.quality = quality
	if r.err != nil {
		return "", r.err
	}
	return "magick", nil
}

func TestConvertWritesImageAndCompresses(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "IMG_0001.ARW")
	dst := filepath.Join(dir, "IMG_0001.jpg")

	exec := &stubExecutor{output: []byte("decoded-image")}
	comp := &recordingCompressor{}
	conv := convert.New("dcraw", comp, convert.WithExecutor(exec), convert.WithLogger(logging.NewNop()))

	result := conv.Convert(context.Background(), src, dst, 50)
	if result.Output != dst {
		t.Fatalf("expected output %q, got %q", dst, result.Output)
	}
	if result.Compressor != "magick" {
		t.Fatalf("expected compressor recorded, got %q", result.Compressor)
	}
	if got := strings.Join(exec.args, " "); got != "-c -w "+src {
		t.Fatalf("unexpected decoder args %q", got)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "decoded-image" {
		t.Fatalf("unexpected output %q err=%v", data, err)
	}
	if comp.path != dst || comp.quality != 50 {
		t.Fatalf("unexpected compress call path=%q quality=%d", comp.path, comp.quality)
	}
}

func TestConvertDecoderMissingProducesNothing(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "IMG_0001.jpg")
	exec := &stubExecutor{err: services.Wrap(services.ErrNotFound, "dcraw", "start", "binary unavailable", nil)}
	comp := &recordingCompressor{}

	result := convert.New("dcraw", comp, convert.WithExecutor(exec)).Convert(context.Background(), "src.arw", dst, 80)
	if result.Output != "" {
		t.Fatalf("expected no output, got %q", result.Output)
	}
	if _, err := os.Stat(dst); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no file written, err=%v", err)
	}
	if comp.path != "" {
		t.Fatal("compressor must not run without decoder output")
	}
}

func TestConvertKeepsImageWhenCompressionFails(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "IMG_0002.jpg")
	exec := &stubExecutor{output: []byte("decoded")}
	comp := &recordingCompressor{err: errors.New("all providers failed")}

	result := convert.New("", comp, convert.WithExecutor(exec)).Convert(context.Background(), "src.arw", dst, 80)
	if result.Output != dst {
		t.Fatalf("expected output kept, got %q", result.Output)
	}
	if result.Compressor != "" {
		t.Fatalf("expected no compressor recorded, got %q", result.Compressor)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("expected decoded image to remain: %v", err)
	}
}
