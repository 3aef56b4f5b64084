package misc

import (
	"errors"
	"fmt"

	"github.com/BrugadaSyndrome/bslogger"
)

const (
	Fatal Severity = iota
	Error
	Warning
	Info
	Debug
)

type Severity int

func (s Severity) String() string {
	return []string{
		"Fatal", "Error", "Warning", "Info", "Debug",
	}[s]
}

var (
	ErrNotFound      = errors.New("not found")
	ErrCancelled     = errors.New("cancelled")
	ErrExportActive  = errors.New("an export is already running")
	ErrCacheEmpty    = errors.New("no computed fractal to recolor")
	ErrInvalidSize   = errors.New("image size must be positive")
	ErrShapeMismatch = errors.New("image shape mismatch")
)

// ConfigurationError reports a name (plugin, colour pack, colour map) or setting that could
// not be resolved. It is fatal to the operation that asked for it.
type ConfigurationError struct {
	What string
	Name string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %s", e.What, e.Name, e.Err)
	}
	return fmt.Sprintf("unknown %s %q", e.What, e.Name)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ComputationError wraps a failure raised while computing or colouring a grid.
type ComputationError struct {
	Stage string
	Err   error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Stage, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

// DataError means a colouring algorithm did not get the input it needs. A fallback image is
// always produced alongside it.
type DataError struct {
	Algorithm string
	Missing   string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("%s coloring is missing %s", e.Algorithm, e.Missing)
}

// CheckError logs err at the given severity and reports whether there was an error at all.
func CheckError(err error, logger bslogger.Logger, severity Severity) bool {
	if err == nil {
		return false
	}
	switch severity {
	case Fatal:
		logger.Fatal(err.Error())
	case Error:
		logger.Error(err.Error())
	case Warning:
		logger.Warning(err.Error())
	case Info:
		logger.Info(err.Error())
	case Debug:
		logger.Debug(err.Error())
	default:
		logger.Fatal(err.Error())
	}
	return true
}

// Describe turns an error into the short text shown to a user. Details stay in the logs.
func Describe(err error) string {
	var configErr *ConfigurationError
	var computeErr *ComputationError
	var dataErr *DataError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCancelled):
		return "Cancelled"
	case errors.Is(err, ErrExportActive):
		return "Another export is still running"
	case errors.As(err, &configErr):
		return fmt.Sprintf("Unknown %s: %s", configErr.What, configErr.Name)
	case errors.As(err, &computeErr) && computeErr.Stage == "downsample":
		return "Could not downsample the image"
	case errors.As(err, &computeErr):
		return fmt.Sprintf("The %s step failed", computeErr.Stage)
	case errors.As(err, &dataErr):
		return "Coloring input was incomplete"
	case errors.Is(err, ErrShapeMismatch):
		return "The image has the wrong size"
	default:
		return "Unexpected error"
	}
}
