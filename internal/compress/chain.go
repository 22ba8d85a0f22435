package compress

import (
	"context"
	"errors"
	"log/slog"

	"rawsort/internal/config"
	"rawsort/internal/logging"
	"rawsort/internal/services"
	"rawsort/internal/toolexec"
)

// ErrNoProvider is returned when the chain has nothing to try.
var ErrNoProvider = errors.New("no compression provider configured")

// Chain tries providers in order until one succeeds.
type Chain struct {
	providers []Provider
	logger    *slog.Logger
}

// NewChain builds a chain over the given providers.
func NewChain(logger *slog.Logger, providers ...Provider) *Chain {
	return &Chain{
		providers: append([]Provider(nil), providers...),
		logger:    logging.NewComponentLogger(logger, "compress"),
	}
}

// NewFromConfig builds the chain in tools.compressors order.
func NewFromConfig(cfg *config.Config, exec toolexec.Executor, logger *slog.Logger) *Chain {
	providers := make([]Provider, 0, len(cfg.Tools.Compressors))
	for _, name := range cfg.Tools.Compressors {
		switch name {
		case config.CompressorMagick:
			providers = append(providers, NewMagick(cfg.Tools.Magick, exec))
		case config.CompressorJpegoptim:
			providers = append(providers, NewJpegoptim(cfg.Tools.Jpegoptim, exec))
		}
	}
	return NewChain(logger, providers...)
}

// Providers returns the provider names in the order they are tried.
func (c *Chain) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

// Compress runs providers in order against path and returns the name of the
// one that succeeded. When all fail, the joined provider errors are returned
// after a warning is logged.
func (c *Chain) Compress(ctx context.Context, path string, quality uint8) (string, error) {
	logger := logging.WithContext(ctx, c.logger)
	if len(c.providers) == 0 {
		return "", ErrNoProvider
	}

	var errs []error
	for _, provider := range c.providers {
		err := provider.Compress(ctx, path, quality)
		if err == nil {
			logger.Info("jpeg compressed",
				logging.String("provider", provider.Name()),
				logging.String("path", path),
				logging.Int("quality", int(quality)),
				logging.String(logging.FieldEventType, "jpeg_compressed"),
			)
			return provider.Name(), nil
		}
		reason := "failed"
		if services.ToolUnavailable(err) {
			reason = "unavailable"
		}
		logger.Info("compressor did not succeed",
			logging.String("provider", provider.Name()),
			logging.String("reason", reason),
			logging.Error(err),
		)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}

	err := errors.Join(errs...)
	logging.WarnWithContext(logger, "jpeg compression failed", "jpeg_compress_failed",
		logging.String("path", path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "install ImageMagick or jpegoptim, or check tools.compressors"),
		logging.String(logging.FieldImpact, "jpeg left at decoder quality"),
	)
	return "", err
}
