package browser

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLocateFirstStrategyWins(t *testing.T) {
	d := NewMockDOM()
	d.Children[mockDocument] = map[string]string{"#user_email": "email-input"}
	target := Target{
		Name:       "username field",
		Strategies: []Strategy{{"#user_email"}, {"form", "input[type=email]"}},
		Timeout:    300 * time.Millisecond,
	}
	node, err := Locate(context.Background(), d, target)
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	if node != "email-input" {
		t.Fatalf("expected 'email-input' but got '%s'", node)
	}
	for _, q := range d.Queries {
		if strings.Contains(q, "form") {
			t.Fatalf("second strategy was attempted after the first one succeeded: %s", q)
		}
	}
}

func TestLocateFallsBackToNextStrategy(t *testing.T) {
	d := NewMockDOM()
	d.Children[mockDocument] = map[string]string{"form": "form-node"}
	d.Children["form-node"] = map[string]string{"input[type=email]": "email-input"}
	timeout := 150 * time.Millisecond
	target := Target{
		Name:       "username field",
		Strategies: []Strategy{{"#user_email"}, {"form", "input[type=email]"}},
		Timeout:    timeout,
	}
	start := time.Now()
	node, err := Locate(context.Background(), d, target)
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	if node != "email-input" {
		t.Fatalf("expected 'email-input' but got '%s'", node)
	}
	// the first strategy must have been given its full timeout
	if elapsed := time.Since(start); elapsed < timeout {
		t.Fatalf("fallback happened after %v, before the first strategy's %v timeout", elapsed, timeout)
	}
}

func TestLocateDescendsIntoShadowRoot(t *testing.T) {
	d := NewMockDOM()
	d.Children[mockDocument] = map[string]string{"login-widget": "widget"}
	d.Shadow["widget"] = "widget-shadow"
	d.Children["widget-shadow"] = map[string]string{"input": "inner-input"}
	target := Target{
		Name:       "shadowed input",
		Strategies: []Strategy{{"login-widget", "input"}},
		Timeout:    300 * time.Millisecond,
	}
	node, err := Locate(context.Background(), d, target)
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	if node != "inner-input" {
		t.Fatalf("expected 'inner-input' but got '%s'", node)
	}
}

func TestLocateChainsThroughPlainContainers(t *testing.T) {
	// a container without a shadow root is its own inner root
	d := NewMockDOM()
	d.Children[mockDocument] = map[string]string{"form": "form-node"}
	d.Children["form-node"] = map[string]string{"input": "plain-input"}
	target := Target{
		Name:       "nested input",
		Strategies: []Strategy{{"form", "input"}},
		Timeout:    300 * time.Millisecond,
	}
	node, err := Locate(context.Background(), d, target)
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	if node != "plain-input" {
		t.Fatalf("expected 'plain-input' but got '%s'", node)
	}
}

func TestLocateExhaustsAllStrategies(t *testing.T) {
	d := NewMockDOM()
	timeout := 150 * time.Millisecond
	target := Target{
		Name:       "missing element",
		Strategies: []Strategy{{"#user_email"}, {"input[type=email]"}},
		Timeout:    timeout,
	}
	start := time.Now()
	_, err := Locate(context.Background(), d, target)
	if !errors.Is(err, ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound but got %v", err)
	}
	// no early abort: every strategy's individual timeout must elapse
	if elapsed := time.Since(start); elapsed < 2*timeout {
		t.Fatalf("locator gave up after %v, before both %v timeouts elapsed", elapsed, timeout)
	}
	// the error carries all attempted strategies for diagnostics
	for _, sel := range []string{"#user_email", "input[type=email]"} {
		if !strings.Contains(err.Error(), sel) {
			t.Fatalf("expected error to mention strategy %q: %v", sel, err)
		}
	}
}

func TestLocateEmptyStrategySetIsConfigError(t *testing.T) {
	d := NewMockDOM()
	_, err := Locate(context.Background(), d, Target{Name: "nothing", Timeout: time.Second})
	if err == nil {
		t.Fatal("expected an error for an empty strategy set")
	}
	if errors.Is(err, ErrElementNotFound) {
		t.Fatalf("an empty strategy set is a config error, not ElementNotFound: %v", err)
	}
}

func TestLocateRetriesUntilElementAppears(t *testing.T) {
	d := NewMockDOM()
	d.Children[mockDocument] = map[string]string{"#late": "late-node"}
	d.AppearAfter[mockDocument+"|#late"] = 2
	target := Target{
		Name:       "late element",
		Strategies: []Strategy{{"#late"}},
		Timeout:    time.Second,
	}
	node, err := Locate(context.Background(), d, target)
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	if node != "late-node" {
		t.Fatalf("expected 'late-node' but got '%s'", node)
	}
	if len(d.Queries) < 3 {
		t.Fatalf("expected at least 3 lookups but got %d", len(d.Queries))
	}
}
