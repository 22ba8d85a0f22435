package preflight

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"rawsort/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Err converts a failed result into a validation error.
func (r Result) Err() error {
	if r.Passed {
		return nil
	}
	return services.Wrap(services.ErrValidation, "preflight", strings.ToLower(r.Name), r.Detail, nil)
}

// CheckDirectoryAccess verifies that the directory exists and grants the
// requested access mode (unix.R_OK, unix.W_OK, ...). Search permission is
// always required.
func CheckDirectoryAccess(name, path string, mode uint32) Result {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s ok)", path, modeLabel(mode))}
}

// CheckSource requires a readable source directory. Files are moved out of it,
// so it must be writable too unless dryRun is set.
func CheckSource(path string, dryRun bool) Result {
	mode := uint32(unix.R_OK)
	if !dryRun {
		mode |= unix.W_OK
	}
	return CheckDirectoryAccess("Source directory", path, mode)
}

// CheckDestination creates the destination root when missing and requires it
// to be writable. In a dry run nothing is created and a missing destination
// passes.
func CheckDestination(path string, dryRun bool) Result {
	const name = "Destination directory"
	if dryRun {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (would be created)", path)}
		}
		return CheckDirectoryAccess(name, path, unix.R_OK)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: create: %v)", path, err)}
	}
	return CheckDirectoryAccess(name, path, unix.W_OK)
}

// Run checks source and destination and returns the first failure as an error.
func Run(src, dst string, dryRun bool) ([]Result, error) {
	results := []Result{CheckSource(src, dryRun)}
	if err := results[0].Err(); err != nil {
		return results, err
	}
	results = append(results, CheckDestination(dst, dryRun))
	return results, results[1].Err()
}

func modeLabel(mode uint32) string {
	var parts []string
	if mode&unix.R_OK != 0 {
		parts = append(parts, "read")
	}
	if mode&unix.W_OK != 0 {
		parts = append(parts, "write")
	}
	if len(parts) == 0 {
		return "access"
	}
	return strings.Join(parts, "/")
}
