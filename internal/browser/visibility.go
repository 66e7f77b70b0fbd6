package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// EnsureVisible makes sure the node can be interacted with: first it
// polls until the node reports itself attached to the live document,
// then it checks viewport intersection and, if needed, scrolls the
// node into view and polls until it intersects. The two phases are
// separate because a freshly resolved node can still be mid-transition
// and visibility is meaningless on a detached node.
func EnsureVisible(ctx context.Context, d DOM, node NodeRef, timeout time.Duration) error {
	err := Poll(ctx, timeout, func(ctx context.Context) (bool, error) {
		return d.Attached(ctx, node)
	})
	if err != nil {
		if errors.Is(err, ErrPollTimeout) {
			return fmt.Errorf("%w: %v", ErrDetached, err)
		}
		return err
	}

	visible, err := d.Intersecting(ctx, node)
	if err != nil {
		return err
	}
	if visible {
		return nil
	}

	if err := d.ScrollIntoView(ctx, node); err != nil {
		return err
	}
	err = Poll(ctx, timeout, func(ctx context.Context) (bool, error) {
		return d.Intersecting(ctx, node)
	})
	if err != nil {
		if errors.Is(err, ErrPollTimeout) {
			return fmt.Errorf("%w: %v", ErrNotVisible, err)
		}
		return err
	}
	return nil
}
