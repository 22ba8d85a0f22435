package exiftool

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"rawsort/internal/logging"
	"rawsort/internal/toolexec"
)

// dateLayout matches the date portion of exiftool's "YYYY:MM:DD HH:MM:SS" output.
const dateLayout = "2006:01:02"

// DateReader resolves the capture date of a file.
type DateReader interface {
	CaptureDate(ctx context.Context, path string) (time.Time, bool)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec toolexec.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger sets the logger used for unknown-date diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "exiftool")
	}
}

// Client wraps exiftool CLI interactions.
type Client struct {
	binary string
	exec   toolexec.Executor
	logger *slog.Logger
}

// New constructs an exiftool client. An empty binary defaults to "exiftool".
func New(binary string, opts ...Option) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "exiftool"
	}
	client := &Client{
		binary: binary,
		exec:   toolexec.CommandExecutor{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// CaptureDate runs `exiftool -DateTimeOriginal -s3 <path>` and parses the
// result. It reports false when the tool is unavailable, fails, prints
// nothing, or prints something that is not a date.
func (c *Client) CaptureDate(ctx context.Context, path string) (time.Time, bool) {
	logger := logging.WithContext(ctx, c.logger)
	output, err := c.exec.Output(ctx, c.binary, "-DateTimeOriginal", "-s3", path)
	if err != nil {
		logger.Debug("capture date lookup failed", logging.String("path", path), logging.Error(err))
		return time.Time{}, false
	}
	date, ok := ParseCaptureDate(string(output))
	if !ok {
		logger.Debug("capture date not parsable",
			logging.String("path", path),
			logging.String("output", strings.TrimSpace(string(output))),
		)
	}
	return date, ok
}

// ParseCaptureDate parses the first ten characters of trimmed exiftool output
// as YYYY:MM:DD. The returned time is midnight UTC of that day.
func ParseCaptureDate(output string) (time.Time, bool) {
	value := strings.TrimSpace(output)
	if len(value) < len(dateLayout) {
		return time.Time{}, false
	}
	date, err := time.Parse(dateLayout, value[:len(dateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
