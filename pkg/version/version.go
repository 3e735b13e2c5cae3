// Package version holds the build version of the server.
package version

// Version is overridable at build time via -ldflags.
var Version = "0.1.0"
