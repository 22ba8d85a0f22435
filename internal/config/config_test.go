package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"rawsort/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "rawsort", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "rawsort")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Journal.Path != filepath.Join(wantState, "journal.db") {
		t.Fatalf("unexpected journal path: %q", cfg.Journal.Path)
	}
	if len(cfg.Scan.Extensions) != 1 || cfg.Scan.Extensions[0] != "arw" {
		t.Fatalf("unexpected default extensions: %v", cfg.Scan.Extensions)
	}
	if cfg.ConvertQuality() != config.DefaultQuality {
		t.Fatalf("expected default quality %d, got %d", config.DefaultQuality, cfg.ConvertQuality())
	}
	if cfg.Convert.Enabled {
		t.Fatal("expected conversion disabled by default")
	}
	if got := strings.Join(cfg.Tools.Compressors, ","); got != "magick,jpegoptim" {
		t.Fatalf("unexpected compressor order %q", got)
	}
	if cfg.ToolTimeout() != 0 {
		t.Fatalf("expected no tool timeout by default, got %s", cfg.ToolTimeout())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "rawsort.toml")

	type payload struct {
		Scan struct {
			Extensions []string `toml:"extensions"`
		} `toml:"scan"`
		Convert struct {
			Enabled bool `toml:"enabled"`
			Quality int  `toml:"quality"`
		} `toml:"convert"`
		Tools struct {
			Compressors    []string `toml:"compressors"`
			TimeoutSeconds int      `toml:"timeout_seconds"`
		} `toml:"tools"`
		Logging struct {
			Level string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Scan.Extensions = []string{".ARW", "cr2", "arw", " "}
	custom.Convert.Enabled = true
	custom.Convert.Quality = 55
	custom.Tools.Compressors = []string{"JPEGOPTIM"}
	custom.Tools.TimeoutSeconds = 30
	custom.Logging.Level = " DEBUG "

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if got := strings.Join(cfg.Scan.Extensions, ","); got != "arw,cr2" {
		t.Fatalf("expected normalized extensions, got %q", got)
	}
	if !cfg.Convert.Enabled || cfg.ConvertQuality() != 55 {
		t.Fatalf("unexpected convert settings: %+v", cfg.Convert)
	}
	if len(cfg.Tools.Compressors) != 1 || cfg.Tools.Compressors[0] != config.CompressorJpegoptim {
		t.Fatalf("unexpected compressors: %v", cfg.Tools.Compressors)
	}
	if cfg.ToolTimeout().Seconds() != 30 {
		t.Fatalf("unexpected timeout: %s", cfg.ToolTimeout())
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized log level, got %q", cfg.Logging.Level)
	}
	if cfg.CompressorBinary(config.CompressorJpegoptim) != "jpegoptim" {
		t.Fatalf("unexpected jpegoptim binary %q", cfg.CompressorBinary(config.CompressorJpegoptim))
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"quality":    "[convert]\nquality = 150\n",
		"compressor": "[tools]\ncompressors = [\"gimp\"]\n",
		"timeout":    "[tools]\ntimeout_seconds = -1\n",
		"level":      "[logging]\nlevel = \"verbose\"\n",
		"clash":      "[scan]\nextensions = [\"jpg\"]\n",
		"unknown":    "[paths]\nlibrary_dir = \"/tmp\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rawsort.toml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Tools.ExifTool != "exiftool" {
		t.Fatalf("unexpected exiftool binary %q", cfg.Tools.ExifTool)
	}
}
