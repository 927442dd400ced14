package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig   = fmt.Errorf("configuration not found")
	ErrInvalidConfig   = fmt.Errorf("invalid configuration")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	// API and server errors
	ErrAPIRequest        = fmt.Errorf("API request failed")
	ErrUnsupportedServer = fmt.Errorf("unsupported server version")

	// Run control
	ErrRunAborted = fmt.Errorf("run aborted")
)
