// Package diff subtracts baseline stylesheets from a main stylesheet:
// declarations the baseline already supplies for the same selector in the
// same at-rule context are removed and selectors left with identical
// declarations are regrouped into a single rule.
package diff

// Options control a diff. The value is copied into every component and never
// changed during a diff.
type Options struct {
	// Strict disables asset aware comparison of url() values.
	Strict bool
	// Cwd is the base directory for local asset references, process working
	// directory when empty.
	Cwd string
	// FailOnAssetError aborts the diff when an asset could not be read in
	// non strict mode. Otherwise such declarations are considered different.
	FailOnAssetError bool
	// Minify produces compact output.
	Minify bool
	// Normalize re-tokenizes inputs before parsing.
	Normalize bool
}

// DefaultOptions returns options used when nothing is configured.
func DefaultOptions() Options {
	return Options{Strict: true}
}
