// Package static embeds static files into the binary and copies them to the
// data directory
package static

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/ayoisaiah/focusguard/internal/osutil"
)

const (
	filesDir = "files"

	// IconFile is the notification icon.
	IconFile = "icon.svg"
)

//go:embed files/*
var embeddedFiles embed.FS

// Install copies the embedded files into dataDir, a directory relative to
// the xdg data home. Files that already exist are left alone.
func Install(dataDir string) error {
	return fs.WalkDir(
		embeddedFiles,
		filesDir,
		func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				return nil
			}

			b, err := embeddedFiles.ReadFile(p)
			if err != nil {
				return err
			}

			rel, err := filepath.Rel(filesDir, filepath.FromSlash(p))
			if err != nil {
				return err
			}

			destPath, err := xdg.DataFile(filepath.Join(dataDir, rel))
			if err != nil {
				return err
			}

			if _, err := os.Stat(destPath); !errors.Is(err, os.ErrNotExist) {
				return err
			}

			return os.WriteFile(destPath, b, osutil.FilePermission)
		},
	)
}

// Path returns where an installed file lives, or an empty string if it is
// missing.
func Path(dataDir, name string) string {
	p, err := xdg.SearchDataFile(path.Join(dataDir, name))
	if err != nil {
		return ""
	}

	return p
}
