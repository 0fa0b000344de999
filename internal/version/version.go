// Package version provides version information for pddserve.
// The Version variable is set at build time via ldflags.
package version

// Version is the current version of pddserve.
// Set at build time via: -ldflags "-X github.com/pddkit/pddserve/internal/version.Version=v1.0.0"
// Defaults to "dev" for development builds.
var Version = "dev"

// APIVersion is the version reported by the HTTP liveness endpoint.
// It tracks the request/response contract, not the binary.
const APIVersion = "1.0.0"
