// Package driver loads function info files in bulk: it expands directories,
// decodes files in parallel, consults the on-disk program cache and reports
// progress to an optional sink.
package driver
