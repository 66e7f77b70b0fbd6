package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jakopako/visawatch/internal/log"
)

// Locate resolves a target to a live node ref. The target's
// strategies are tried in listed order and the first one that
// resolves wins; each selector step is retried via Poll until found
// or the target's timeout elapses. If every strategy exhausts its
// timeout the returned error wraps ErrElementNotFound and lists all
// attempted strategies.
func Locate(ctx context.Context, d DOM, t Target) (NodeRef, error) {
	if len(t.Strategies) == 0 {
		return "", fmt.Errorf("target %q has no selector strategies", t.Name)
	}
	logger := log.LoggerFromContext(ctx).With(slog.String("target", t.Name))

	root, err := d.DocumentRoot(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve document root: %w", err)
	}

	for i, strategy := range t.Strategies {
		node, err := resolveStrategy(ctx, d, root, strategy, t.Timeout)
		if err == nil {
			logger.Debug("resolved element", slog.Int("strategy", i), slog.Any("steps", strategy))
			return node, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.Debug("strategy failed", slog.Int("strategy", i), slog.Any("steps", strategy), slog.String("err", err.Error()))
	}
	return "", fmt.Errorf("%w: target %q, attempted strategies %v", ErrElementNotFound, t.Name, t.Strategies)
}

// resolveStrategy resolves one selector chain left to right. After a
// non-final step the search descends into the resolved node's shadow
// root, if any, so chains can cross encapsulation boundaries.
func resolveStrategy(ctx context.Context, d DOM, root NodeRef, strategy Strategy, timeout time.Duration) (NodeRef, error) {
	cur := root
	for i, selector := range strategy {
		var node NodeRef
		err := Poll(ctx, timeout, func(ctx context.Context) (bool, error) {
			n, found, err := d.Query(ctx, cur, selector)
			if err != nil {
				return false, err
			}
			if !found {
				return false, nil
			}
			node = n
			return true, nil
		})
		if err != nil {
			return "", fmt.Errorf("step %d (%s): %w", i, selector, err)
		}
		if i == len(strategy)-1 {
			return node, nil
		}
		cur, err = d.InnerRoot(ctx, node)
		if err != nil {
			return "", fmt.Errorf("step %d (%s): failed to descend: %w", i, selector, err)
		}
	}
	return cur, nil
}
