package types

// ProgressFunc receives install progress. It is called once before each
// pipeline step begins with a human-readable message, the 1-based step
// index, and the total step count. Purely observational: implementations
// must not fail the install.
type ProgressFunc func(message string, step, total int)

// NopProgress discards progress events.
func NopProgress(string, int, int) {}
