package kvengine

import (
	"errors"
	"fmt"
)

// ErrEngine is the sentinel every kvengine failure wraps, so callers in
// the warren package can translate it into warren.ErrEngine without
// inspecting bbolt-specific error values directly.
var ErrEngine = errors.New("kvengine: engine fault")

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %v", op, ErrEngine, err)
}
