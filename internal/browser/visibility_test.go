package browser

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

func TestEnsureVisibleAttachedAndIntersecting(t *testing.T) {
	d := NewMockDOM()
	err := EnsureVisible(context.Background(), d, "node", time.Second)
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	if len(d.Scrolled) != 0 {
		t.Fatalf("expected no scrolling for an already visible element, got %v", d.Scrolled)
	}
}

func TestEnsureVisibleWaitsForAttachment(t *testing.T) {
	d := NewMockDOM()
	d.AttachAfter["node"] = 2
	err := EnsureVisible(context.Background(), d, "node", time.Second)
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
}

func TestEnsureVisibleDetached(t *testing.T) {
	d := NewMockDOM()
	d.AttachAfter["node"] = 1000
	err := EnsureVisible(context.Background(), d, "node", 200*time.Millisecond)
	if !errors.Is(err, ErrDetached) {
		t.Fatalf("expected ErrDetached but got %v", err)
	}
	if len(d.Scrolled) != 0 {
		t.Fatal("visibility must not be checked on a detached node")
	}
}

func TestEnsureVisibleScrollsHiddenElement(t *testing.T) {
	d := NewMockDOM()
	d.Hidden["node"] = true
	err := EnsureVisible(context.Background(), d, "node", time.Second)
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	if !slices.Contains(d.Scrolled, "node") {
		t.Fatal("expected the element to be scrolled into view")
	}
}

func TestEnsureVisibleNeverIntersecting(t *testing.T) {
	d := NewMockDOM()
	d.Hidden["node"] = true
	d.NeverVisible["node"] = true
	err := EnsureVisible(context.Background(), d, "node", 200*time.Millisecond)
	if !errors.Is(err, ErrNotVisible) {
		t.Fatalf("expected ErrNotVisible but got %v", err)
	}
	if !slices.Contains(d.Scrolled, "node") {
		t.Fatal("expected a scroll attempt before giving up")
	}
}
