// Package types defines the shared interfaces and value types used across
// sandpress packages. Keeping them here avoids import cycles between the
// provisioning packages and their collaborators.
package types
