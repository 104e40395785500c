// Package build provides the canonical manual build pipeline.
//
// Every execution path (build command, watch rebuilds, tests) routes through
// BuildService: load the identifier index, resolve the configured documents,
// assemble all pages in memory, then write them and the build manifest to
// the output sink.
//
// The package also defines sentinel errors for classifying pipeline stage
// failures. They are wrapped with context at the call site.
package build
