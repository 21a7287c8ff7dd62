package process

import "errors"

var (
	// ErrProcessNotOpen is returned when an operation requiring an attached process
	// is attempted before Attach succeeded or after the process has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrProcessNotFound is returned when no running process matches the requested image name.
	ErrProcessNotFound = errors.New("process not found")

	// ErrModuleNotFound is returned when no loaded module matches the requested name.
	ErrModuleNotFound = errors.New("module not found")

	// ErrPatternNotFound is returned when a byte pattern does not occur in a module image.
	ErrPatternNotFound = errors.New("pattern not found")

	// ErrSymbolNotFound is returned when a module does not export the requested symbol.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrBadImage is returned when a module's DOS or NT headers fail validation.
	ErrBadImage = errors.New("malformed image headers")

	ErrShortRead = errors.New("short read")
)
