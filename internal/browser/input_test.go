package browser

import (
	"context"
	"testing"
)

func TestTypeIntoSendsKeystrokesToTextControls(t *testing.T) {
	for _, category := range []string{"text", "email", "password", "select-one"} {
		d := NewMockDOM()
		d.Controls["node"] = category
		if err := TypeInto(context.Background(), d, "node", "value"); err != nil {
			t.Fatalf("got unexpected error for %s: %v", category, err)
		}
		if d.Typed["node"] != "value" {
			t.Fatalf("expected keystrokes for %s control but got %v", category, d.Injected)
		}
		if len(d.Injected) != 0 {
			t.Fatalf("value must not be injected into a %s control", category)
		}
	}
}

func TestTypeIntoInjectsValueIntoOtherControls(t *testing.T) {
	d := NewMockDOM()
	d.Controls["node"] = "checkbox"
	if err := TypeInto(context.Background(), d, "node", "true"); err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	if d.Injected["node"] != "true" {
		t.Fatalf("expected injected value but got %v", d.Typed)
	}
	if len(d.Typed) != 0 {
		t.Fatal("keystrokes must not be sent to a checkbox control")
	}
}

func TestTypeIntoDefaultsToText(t *testing.T) {
	d := NewMockDOM()
	if err := TypeInto(context.Background(), d, "node", "hello"); err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	if d.Typed["node"] != "hello" {
		t.Fatalf("expected 'hello' to be typed but got '%s'", d.Typed["node"])
	}
}
