package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateConvert(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateScan() error {
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must include at least one extension")
	}
	for _, ext := range c.Scan.Extensions {
		if strings.ContainsAny(ext, `/\`) {
			return fmt.Errorf("scan.extensions: %q is not a file extension", ext)
		}
	}
	return nil
}

func (c *Config) validateConvert() error {
	if c.Convert.Quality < 0 || c.Convert.Quality > 100 {
		return errors.New("convert.quality must be between 0 and 100")
	}
	if strings.ContainsAny(c.Convert.Extension, `/\`) {
		return fmt.Errorf("convert.extension: %q is not a file extension", c.Convert.Extension)
	}
	for _, ext := range c.Scan.Extensions {
		if ext == c.Convert.Extension {
			return fmt.Errorf("convert.extension %q must differ from the scanned raw extensions", ext)
		}
	}
	return nil
}

func (c *Config) validateTools() error {
	for _, name := range c.Tools.Compressors {
		if c.CompressorBinary(name) == "" {
			return fmt.Errorf("tools.compressors: unknown compressor %q (expected %q or %q)", name, CompressorMagick, CompressorJpegoptim)
		}
	}
	if c.Tools.TimeoutSeconds < 0 {
		return errors.New("tools.timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
