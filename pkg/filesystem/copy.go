package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/sandpress/sandpress/pkg/errors"
	"github.com/sandpress/sandpress/pkg/types"
)

// CopyFile copies src to dst byte-for-byte, preserving the source file
// mode. The destination is truncated if it already exists.
func CopyFile(fsys types.FS, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrFileNotFound, "source file %s does not exist", src)
		}
		return errors.Wrapf(err, errors.ErrFileRead, "cannot stat %s", src)
	}
	if info.IsDir() {
		return errors.Newf(errors.ErrInvalidInput, "%s is a directory, not a file", src)
	}

	data, err := fsys.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "cannot read %s", src)
	}
	if err := fsys.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", dst)
	}
	return nil
}

// CopyTree reproduces the directory tree rooted at src under dst,
// including empty directories. Any individual file failure aborts the
// whole copy; files are never silently skipped.
func CopyTree(fsys types.FS, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileNotFound, "source tree %s does not exist", src)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrInvalidInput, "%s is not a directory", src)
	}

	if err := fsys.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dst)
	}

	entries, err := fsys.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "cannot list %s", src)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := CopyTree(fsys, srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := CopyFile(fsys, srcPath, dstPath); err != nil {
			return errors.Wrapf(err, errors.ErrFileCopy, "copying %s", srcPath)
		}
	}
	return nil
}

// MoveDir relocates the directory src to dst. It first attempts an
// atomic rename; when the filesystem rejects that (cross-device moves,
// locked files on some platforms), it falls back to a full recursive
// copy followed by deletion of the source. Either way dst only ever
// becomes visible as a complete tree.
func MoveDir(fsys types.FS, src, dst string) error {
	if _, err := fsys.Stat(src); err != nil {
		return errors.Wrapf(err, errors.ErrFileNotFound, "move source %s does not exist", src)
	}

	if err := fsys.Rename(src, dst); err == nil {
		return nil
	} else {
		log.Debug().Err(err).Str("src", src).Str("dst", dst).
			Msg("atomic rename rejected, falling back to copy+delete")
	}

	if err := CopyTree(fsys, src, dst); err != nil {
		return errors.Wrapf(err, errors.ErrMove, "copy fallback from %s to %s", src, dst)
	}
	if err := fsys.RemoveAll(src); err != nil {
		return errors.Wrapf(err, errors.ErrMove, "removing move source %s", src)
	}
	return nil
}

// Exists reports whether the path exists at all, file or directory.
func Exists(fsys types.FS, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

// DirMode is the permission bits used for directories sandpress creates.
const DirMode fs.FileMode = 0755

// FileMode is the permission bits used for files sandpress writes.
const FileMode fs.FileMode = 0644
