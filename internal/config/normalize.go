package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeConvert()
	c.normalizeTools()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() {
	exts := make([]string, 0, len(c.Scan.Extensions))
	seen := make(map[string]struct{}, len(c.Scan.Extensions))
	for _, ext := range c.Scan.Extensions {
		normalized := normalizeExtension(ext)
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = []string{defaultRawExtension}
	}
	c.Scan.Extensions = exts
}

func (c *Config) normalizeConvert() {
	c.Convert.Extension = normalizeExtension(c.Convert.Extension)
	if c.Convert.Extension == "" {
		c.Convert.Extension = defaultImageExtension
	}
}

func (c *Config) normalizeTools() {
	c.Tools.ExifTool = strings.TrimSpace(c.Tools.ExifTool)
	if c.Tools.ExifTool == "" {
		c.Tools.ExifTool = defaultExifToolBinary
	}
	c.Tools.Dcraw = strings.TrimSpace(c.Tools.Dcraw)
	if c.Tools.Dcraw == "" {
		c.Tools.Dcraw = defaultDcrawBinary
	}
	c.Tools.Magick = strings.TrimSpace(c.Tools.Magick)
	if c.Tools.Magick == "" {
		c.Tools.Magick = defaultMagickBinary
	}
	c.Tools.Jpegoptim = strings.TrimSpace(c.Tools.Jpegoptim)
	if c.Tools.Jpegoptim == "" {
		c.Tools.Jpegoptim = defaultJpegoptimBinary
	}
	names := make([]string, 0, len(c.Tools.Compressors))
	seen := make(map[string]struct{}, len(c.Tools.Compressors))
	for _, name := range c.Tools.Compressors {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		names = append(names, normalized)
	}
	c.Tools.Compressors = names
}

func (c *Config) normalizeJournal() error {
	var err error
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = filepath.Join(c.Paths.StateDir, defaultJournalFile)
	}
	if c.Journal.Path, err = expandPath(strings.TrimSpace(c.Journal.Path)); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

// normalizeExtension lower-cases an extension and strips a leading dot.
func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
