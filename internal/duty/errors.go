package duty

import "errors"

var (
	// ErrNotFound is returned by sources when a referenced document no
	// longer exists.
	ErrNotFound = errors.New("duty: not found")
)

// ErrorKind maps errors seen during a pass to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNotFound) {
		return "not_found"
	}
	return "transient"
}
