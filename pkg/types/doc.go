// Package types defines the SheetStore interface, the Sheet entity, the
// store configuration, and the standard errors shared by every storage
// backend of etable.
package types
