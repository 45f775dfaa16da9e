// Package testutil provides test doubles shared across sandpress test
// suites, most importantly MemoryFS, an in-memory implementation of the
// types.FS port with deterministic error injection.
package testutil
