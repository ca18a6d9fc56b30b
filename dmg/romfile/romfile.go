// Package romfile loads cartridge and boot ROM images from plain
// files or common archive formats.
package romfile

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

var errEmptyArchive = errors.New("romfile: archive contains no files")

// Load reads a ROM image from path. Archives (.zip, .7z, .gz) are
// unpacked transparently; any other extension is returned as-is.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return fromZip(data)
	case ".7z":
		return from7z(data)
	case ".gz":
		return fromGzip(data)
	default:
		return data, nil
	}
}

func fromZip(data []byte) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(r.File))
	for i, f := range r.File {
		names[i] = f.Name
	}
	i := pickEntry(names)
	if i < 0 {
		return nil, errEmptyArchive
	}
	rc, err := r.File[i].Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func from7z(data []byte) ([]byte, error) {
	r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(r.File))
	for i, f := range r.File {
		names[i] = f.Name
	}
	i := pickEntry(names)
	if i < 0 {
		return nil, errEmptyArchive
	}
	rc, err := r.File[i].Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func fromGzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// pickEntry chooses the archive member to load: the first entry with a
// ROM-looking extension, or the first entry at all when none match.
func pickEntry(names []string) int {
	for i, name := range names {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".gb", ".gbc", ".bin", ".rom":
			return i
		}
	}
	if len(names) > 0 {
		return 0
	}
	return -1
}
