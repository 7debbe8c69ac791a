package lvp

import "fmt"

// FormatError marks an archive written by an unsupported major version.
type FormatError struct {
	Version   string
	Supported string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported package version %s (supported: %s)", e.Version, e.Supported)
}

// ValidationError marks a malformed or inconsistent archive. Check names
// the first failing invariant; validation stops there and no partial
// package is returned.
type ValidationError struct {
	Check  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid package: %s: %s", e.Check, e.Detail)
}
