// Package etable holds build metadata shared by the command-line tools.
package etable

// Version is the release version of the etable module.
const Version = "0.3.0"

// ModulePath is the Go module path.
const ModulePath = "github.com/mesh-intelligence/etable"
