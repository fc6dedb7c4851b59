package gradebook

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agentstation/gradesync/internal/matcher"
	"github.com/agentstation/gradesync/pkg/constants"
	"github.com/agentstation/gradesync/pkg/errors"
)

// Default directories used with --archive.
const (
	OutputDir  = "output"
	ArchiveDir = "oldzybooks"
)

// DefaultPlatformPattern matches grading-platform exports.
const DefaultPlatformPattern = "UCSC*.csv"

// DefaultRosterPattern matches roster exports, which are prefixed with the year.
func DefaultRosterPattern(now time.Time) string {
	return fmt.Sprintf("%d*.csv", now.Year())
}

// Locate returns the first file in dir matching pattern. what names the
// file in the error.
func Locate(dir, pattern, what string) (string, error) {
	path, err := matcher.FindFirst(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("%s: %w", what, err)
	}
	return path, nil
}

// LocateScores returns the export publish reads when none is configured.
// The corrected export written by reconcile is preferred over a raw
// platform export matching pattern.
func LocateScores(dir, pattern string) (string, error) {
	corrected := filepath.Join(dir, OutputDir, CorrectedFile)
	if info, err := os.Stat(corrected); err == nil && !info.IsDir() {
		return corrected, nil
	}
	return Locate(dir, pattern, "grade export")
}

// Archive moves path into dir and returns the new location.
func Archive(path, dir string) (string, error) {
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", dir, err)
	}
	dest := filepath.Join(dir, filepath.Base(path))
	if err := os.Rename(path, dest); err == nil {
		return dest, nil
	}

	// Rename fails across filesystems; copy then remove.
	if err := copyFile(path, dest); err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil {
		return "", errors.WrapIO("remove", path, err)
	}
	return dest, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.WrapIO("open", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.WrapIO("write", dest, err)
	}
	return errors.WrapIO("close", dest, out.Close())
}
