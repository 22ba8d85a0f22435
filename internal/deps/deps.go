// Package deps reports which of the external tools rawsort drives are
// installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"rawsort/internal/config"
)

// Requirement defines an external binary rawsort relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	// Path is the resolved executable when Available.
	Path   string
	Detail string
}

// Requirements lists the tools cfg needs. exiftool is always required, dcraw
// only when conversion is enabled; compressors are optional because the run
// keeps the decoder output when none works.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{{
		Name:        "ExifTool",
		Command:     cfg.Tools.ExifTool,
		Description: "Reads capture dates",
	}}
	reqs = append(reqs, Requirement{
		Name:        "dcraw",
		Command:     cfg.Tools.Dcraw,
		Description: "Decodes raw files for JPEG previews",
		Optional:    !cfg.Convert.Enabled,
	})
	for i, name := range cfg.Tools.Compressors {
		desc := "JPEG compression"
		if i > 0 {
			desc = "JPEG compression fallback"
		}
		label := name
		if name == config.CompressorMagick {
			label = "ImageMagick"
		}
		reqs = append(reqs, Requirement{
			Name:        label,
			Command:     cfg.CompressorBinary(name),
			Description: desc,
			Optional:    true,
		})
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of required dependencies that are unavailable.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
