// Package validation provides common validation utilities for configuration
// parameters across the rwflow library.
//
// Every component Config is checked with these helpers before a builder is
// returned, so a bad key length or an empty command name surfaces at
// construction time as a ValidationError instead of on the first Read.
package validation
