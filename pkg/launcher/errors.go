package launcher

import "errors"

var (
	// ErrCancelled is returned when the user dismisses the menu (ESC).
	ErrCancelled = errors.New("cancelled by user")

	// ErrNoLauncher is returned for an unknown launcher name.
	ErrNoLauncher = errors.New("no launcher configured")
)

// IsCancelled reports whether err came from the user closing the menu.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
