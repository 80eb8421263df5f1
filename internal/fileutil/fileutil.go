// Package fileutil holds the file and path helpers shared by the exporter
// and the CLI.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrFilenameInvalid is returned for artifact names that would leave their
// directory.
var ErrFilenameInvalid = errors.New("filename must not contain path separators")

// maxBasenameLength caps sanitized basenames.
const maxBasenameLength = 50

// WriteFileAtomic writes content to path through a hidden temp file in the
// same directory, so readers never observe a partial artifact.
// Existing files are replaced.
func WriteFileAtomic(path string, content []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".html2img-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	fail := func(step string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%s: %w", step, err)
	}

	if _, err := tmp.Write(content); err != nil {
		return fail("writing temp file", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail("setting permissions", err)
	}
	if err := tmp.Close(); err != nil {
		return fail("closing temp file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ValidateFilename rejects names that would escape their directory.
func ValidateFilename(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrFilenameInvalid, name)
	}
	return nil
}

// SanitizeBasename keeps ASCII letters, digits, '-' and '_', turns spaces into
// hyphens and drops everything else. The result is at most 50 bytes; an empty
// result yields fallback.
func SanitizeBasename(name, fallback string) string {
	var b strings.Builder
	for _, r := range name {
		if b.Len() >= maxBasenameLength {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}

// Stem returns the file name of path without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FileExists reports whether path is an existing non-directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsFilePath reports whether s names a path rather than a bare name:
// "social" is a name, "./social.yaml" and `C:\cfg\social.yaml` are paths.
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// IsHTMLFile reports whether path has an .html or .htm extension.
func IsHTMLFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}
