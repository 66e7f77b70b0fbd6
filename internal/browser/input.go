package browser

import (
	"context"
	"fmt"
)

// typeableControls are the input categories that reliably accept
// simulated keystrokes. For anything else the value is injected
// directly and the change-notification events are synthesized,
// because direct assignment alone is invisible to most UI frameworks.
var typeableControls = map[string]bool{
	"text":       true,
	"number":     true,
	"email":      true,
	"password":   true,
	"url":        true,
	"tel":        true,
	"search":     true,
	"select-one": true,
}

// TypeInto enters value into the given node. The node should have
// been resolved via Locate and checked via EnsureVisible first.
func TypeInto(ctx context.Context, d DOM, node NodeRef, value string) error {
	category, err := d.ControlType(ctx, node)
	if err != nil {
		return fmt.Errorf("failed to determine input category: %w", err)
	}
	if typeableControls[category] {
		// per-character keystrokes so that attached validation
		// listeners fire exactly as they would for a human
		return d.SendKeys(ctx, node, value)
	}
	return d.SetValue(ctx, node, value)
}
