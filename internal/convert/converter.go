package convert

import (
	"context"
	"log/slog"
	"strings"

	"rawsort/internal/fileutil"
	"rawsort/internal/logging"
	"rawsort/internal/services"
	"rawsort/internal/toolexec"
)

// Compressor shrinks a JPEG in place. *compress.Chain satisfies it.
type Compressor interface {
	Compress(ctx context.Context, path string, quality uint8) (string, error)
}

// Result describes what a conversion produced.
type Result struct {
	// Output is the written image path, empty when nothing was produced.
	Output string
	// Bytes is the decoder output size before compression.
	Bytes int
	// Compressor names the provider that compressed Output, if any.
	Compressor string
}

// Option configures a Converter.
type Option func(*Converter)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec toolexec.Executor) Option {
	return func(c *Converter) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger sets the converter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logging.NewComponentLogger(logger, "convert")
	}
}

// Converter decodes raw files with dcraw and compresses the result.
type Converter struct {
	binary     string
	exec       toolexec.Executor
	compressor Compressor
	logger     *slog.Logger
}

// New constructs a converter. An empty binary defaults to "dcraw"; a nil
// compressor skips compression.
func New(binary string, compressor Compressor, opts ...Option) *Converter {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "dcraw"
	}
	c := &Converter{
		binary:     binary,
		exec:       toolexec.CommandExecutor{},
		compressor: compressor,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert decodes src with `dcraw -c -w`, writes the image to dst, then
// compresses dst at quality. When the decoder is unavailable or fails, or its
// output cannot be written, Convert logs a warning and returns a zero Result.
// Compression failures are logged by the compressor and leave the decoded
// image in place.
func (c *Converter) Convert(ctx context.Context, src, dst string, quality uint8) Result {
	logger := logging.WithContext(services.WithStage(ctx, "convert"), c.logger)

	data, err := c.exec.Output(ctx, c.binary, "-c", "-w", src)
	if err != nil {
		hint := "check that dcraw supports this camera model"
		if services.ToolUnavailable(err) {
			hint = "install dcraw or set tools.dcraw"
		}
		logging.WarnWithContext(logger, "raw decode failed", "raw_decode_failed",
			logging.String("source", src),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hint),
			logging.String(logging.FieldImpact, "no jpeg preview produced for this file"),
		)
		return Result{}
	}
	if len(data) == 0 {
		logging.WarnWithContext(logger, "raw decode produced no output", "raw_decode_empty",
			logging.String("source", src),
			logging.String(logging.FieldErrorHint, "run dcraw manually against the file"),
			logging.String(logging.FieldImpact, "no jpeg preview produced for this file"),
		)
		return Result{}
	}

	if err := fileutil.WriteFileAtomic(dst, data, 0o644); err != nil {
		logging.WarnWithContext(logger, "jpeg write failed", "jpeg_write_failed",
			logging.String("output", dst),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check destination free space and permissions"),
			logging.String(logging.FieldImpact, "no jpeg preview produced for this file"),
		)
		return Result{}
	}

	result := Result{Output: dst, Bytes: len(data)}
	logger.Info("raw decoded",
		logging.String("source", src),
		logging.String("output", dst),
		logging.Int("bytes", len(data)),
		logging.String(logging.FieldEventType, "raw_decoded"),
	)

	if c.compressor == nil {
		return result
	}
	if used, err := c.compressor.Compress(ctx, dst, quality); err == nil {
		result.Compressor = used
	}
	return result
}
