package compress

import (
	"context"
	"strconv"

	"rawsort/internal/services"
	"rawsort/internal/toolexec"
)

// Provider compresses a JPEG file in place.
type Provider interface {
	Name() string
	Compress(ctx context.Context, path string, quality uint8) error
}

// toolProvider adapts a binary plus an argument builder into a Provider.
type toolProvider struct {
	name   string
	binary string
	args   func(path string, quality uint8) []string
	exec   toolexec.Executor
}

func (p toolProvider) Name() string { return p.name }

func (p toolProvider) Compress(ctx context.Context, path string, quality uint8) error {
	if _, err := p.exec.Output(ctx, p.binary, p.args(path, quality)...); err != nil {
		return services.Wrap(services.ErrExternalTool, "compress", p.name, "", err)
	}
	return nil
}

// NewMagick returns the ImageMagick provider: `magick <f> -quality <q> <f>`.
func NewMagick(binary string, exec toolexec.Executor) Provider {
	return toolProvider{
		name:   "magick",
		binary: defaultString(binary, "magick"),
		exec:   defaultExecutor(exec),
		args: func(path string, quality uint8) []string {
			return []string{path, "-quality", strconv.Itoa(int(quality)), path}
		},
	}
}

// NewJpegoptim returns the jpegoptim provider: `jpegoptim --max <q> <f>`.
func NewJpegoptim(binary string, exec toolexec.Executor) Provider {
	return toolProvider{
		name:   "jpegoptim",
		binary: defaultString(binary, "jpegoptim"),
		exec:   defaultExecutor(exec),
		args: func(path string, quality uint8) []string {
			return []string{"--max", strconv.Itoa(int(quality)), path}
		},
	}
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func defaultExecutor(exec toolexec.Executor) toolexec.Executor {
	if exec == nil {
		return toolexec.CommandExecutor{}
	}
	return exec
}
