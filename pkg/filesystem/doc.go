// Package filesystem provides the OS-backed implementation of the
// types.FS port, plus the shared copy and move helpers used by the
// provisioning pipeline and the snapshot engine.
//
// MoveDir is the load-bearing helper: final install paths are only ever
// populated through it, so a killed process can never leave a partial
// tree at a path that IsInstalled checks would mistake for a complete
// installation.
package filesystem
