package types

import "io/fs"

// FS is the narrow filesystem port used by every component that touches
// disk. Both the provisioner and the snapshot engine depend on this
// interface rather than the os package so tests can run against an
// in-memory or temp-directory fake.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Removal and rename
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
}

// Installer is the contract shared by the provisioning steps. Each step
// answers whether it is already satisfied without side effects, and
// performs its work idempotently otherwise.
type Installer interface {
	IsInstalled() (bool, error)
	Install(force bool) error
}
