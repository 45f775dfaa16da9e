// Package archive extracts downloaded distribution archives. Both
// upstream endpoints serve zip archives, but mirrors commonly re-serve
// them as tar.gz, so both formats are recognized by magic bytes.
package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"path/filepath"
	"strings"

	"github.com/sandpress/sandpress/pkg/errors"
	"github.com/sandpress/sandpress/pkg/filesystem"
	"github.com/sandpress/sandpress/pkg/logging"
	"github.com/sandpress/sandpress/pkg/types"
)

var log = logging.GetLogger("archive")

// Extract unpacks the archive at archivePath into destDir, creating it
// if needed. The archive format is detected from its leading bytes.
func Extract(fsys types.FS, archivePath, destDir string) error {
	data, err := fsys.ReadFile(archivePath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchiveRead, "cannot read archive %s", archivePath)
	}
	if err := fsys.MkdirAll(destDir, filesystem.DirMode); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", destDir)
	}

	switch {
	case len(data) >= 4 && data[0] == 'P' && data[1] == 'K':
		return extractZip(fsys, data, destDir)
	case len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b:
		return extractTarGz(fsys, data, destDir)
	default:
		return errors.Newf(errors.ErrArchiveRead, "%s is not a zip or tar.gz archive", archivePath)
	}
}

// SingleRoot returns the path of dir's sole top-level directory. Both
// upstream sources nest all content under one synthetic root; callers
// strip it by moving the returned subtree. A different layout means the
// upstream structure changed and is reported as such.
func SingleRoot(fsys types.FS, dir string) (string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileRead, "cannot list %s", dir)
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return "", errors.Newf(errors.ErrArchiveLayout,
			"expected a single top-level directory in %s, found %d entries", dir, len(entries))
	}
	return filepath.Join(dir, entries[0].Name()), nil
}

func extractZip(fsys types.FS, data []byte, destDir string) error {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return errors.Wrap(err, errors.ErrArchiveRead, "corrupt zip archive")
	}

	log.Debug().Int("entries", len(reader.File)).Str("dest", destDir).Msg("Extracting zip")

	for _, file := range reader.File {
		target, err := sanitizePath(destDir, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := fsys.MkdirAll(target, filesystem.DirMode); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", target)
			}
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return errors.Wrapf(err, errors.ErrArchiveRead, "cannot open archive entry %s", file.Name)
		}
		content, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return errors.Wrapf(err, errors.ErrArchiveRead, "cannot read archive entry %s", file.Name)
		}

		if err := writeEntry(fsys, target, content); err != nil {
			return err
		}
	}
	return nil
}

func extractTarGz(fsys types.FS, data []byte, destDir string) error {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, errors.ErrArchiveRead, "corrupt gzip stream")
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrArchiveRead, "corrupt tar stream")
		}

		target, err := sanitizePath(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := fsys.MkdirAll(target, filesystem.DirMode); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", target)
			}
		case tar.TypeReg:
			content, err := io.ReadAll(tr)
			if err != nil {
				return errors.Wrapf(err, errors.ErrArchiveRead, "cannot read archive entry %s", header.Name)
			}
			if err := writeEntry(fsys, target, content); err != nil {
				return err
			}
		}
	}
}

func writeEntry(fsys types.FS, target string, content []byte) error {
	if err := fsys.MkdirAll(filepath.Dir(target), filesystem.DirMode); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent of %s", target)
	}
	if err := fsys.WriteFile(target, content, filesystem.FileMode); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", target)
	}
	return nil
}

// sanitizePath rejects entries that would escape destDir.
func sanitizePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrArchiveRead, "archive entry %q escapes extraction directory", name)
	}
	return target, nil
}
