package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"rawsort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "state", "logs")
	cfgVal.Journal.Path = filepath.Join(base, "state", "journal.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithConversion enables JPEG conversion at the given quality.
func WithConversion(quality int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Convert.Enabled = true
		b.cfg.Convert.Quality = quality
	}
}

// WithJournal turns on the SQLite move journal.
func WithJournal() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = true
	}
}

// Stub scripts understood by WithStubbedBinaries. exiftool answers with the
// contents of "<file>.date" when present, mimicking -s3 output; dcraw prints
// a fixed payload; compressors log their arguments to $RAWSORT_STUB_LOG.
const (
	exiftoolStub = `#!/bin/sh
for last; do :; done
if [ -f "$last.date" ]; then cat "$last.date"; fi
exit 0
`
	dcrawStub = `#!/bin/sh
printf 'stub-jpeg'
`
	compressorStub = `#!/bin/sh
if [ -n "$RAWSORT_STUB_LOG" ]; then echo "$(basename "$0") $*" >> "$RAWSORT_STUB_LOG"; fi
exit 0
`
	genericStub = "#!/bin/sh\nexit 0\n"
)

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default rawsort external
// binaries are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"exiftool", "dcraw", "magick", "jpegoptim"}
		}
		binDir := StubBinaries(b.t, filepath.Join(b.baseDir, "bin"), names...)
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// StubBinaries writes stub executables into dir and returns it.
func StubBinaries(t testing.TB, dir string, names ...string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	for _, name := range names {
		script := genericStub
		switch name {
		case "exiftool":
			script = exiftoolStub
		case "dcraw":
			script = dcrawStub
		case "magick", "jpegoptim":
			script = compressorStub
		}
		target := filepath.Join(dir, name)
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
	return dir
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
