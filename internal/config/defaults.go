package config

const (
	defaultStateDir         = "~/.local/share/rawsort"
	defaultLogDir           = "~/.local/share/rawsort/logs"
	defaultRawExtension     = "arw"
	defaultImageExtension   = "jpg"
	defaultQuality          = 80
	defaultExifToolBinary   = "exiftool"
	defaultDcrawBinary      = "dcraw"
	defaultMagickBinary     = "magick"
	defaultJpegoptimBinary  = "jpegoptim"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
	defaultJournalFile      = "journal.db"

	// CompressorMagick names the ImageMagick provider in tools.compressors.
	CompressorMagick = "magick"
	// CompressorJpegoptim names the jpegoptim provider in tools.compressors.
	CompressorJpegoptim = "jpegoptim"
)

// DefaultQuality is the JPEG quality used when none (or an invalid one) is supplied.
const DefaultQuality uint8 = defaultQuality

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Scan: Scan{
			Extensions: []string{defaultRawExtension},
		},
		Convert: Convert{
			Quality:   defaultQuality,
			Extension: defaultImageExtension,
		},
		Tools: Tools{
			ExifTool:    defaultExifToolBinary,
			Dcraw:       defaultDcrawBinary,
			Magick:      defaultMagickBinary,
			Jpegoptim:   defaultJpegoptimBinary,
			Compressors: []string{CompressorMagick, CompressorJpegoptim},
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
