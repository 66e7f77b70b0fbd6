package browser

import (
	"context"
	"slices"
)

// MockDOM is an in-memory DOM implementation used in tests. The fake
// document is described with flat maps keyed by node id; every
// interaction is recorded so tests can assert on what happened.
type MockDOM struct {
	// Children maps a node id to the nodes one selector step resolves to.
	Children map[string]map[string]string
	// Shadow maps a node id to its shadow root's id, if it has one.
	Shadow map[string]string
	// AppearAfter delays a "node|selector" lookup for n queries.
	AppearAfter map[string]int
	// AttachAfter makes a node report detached for the first n checks.
	AttachAfter map[string]int
	// Hidden nodes only intersect the viewport after being scrolled to,
	// and only if they are not also in NeverVisible.
	Hidden       map[string]bool
	NeverVisible map[string]bool
	// Controls maps a node id to its input category (default "text").
	Controls map[string]string

	Queries  []string
	Typed    map[string]string
	Injected map[string]string
	Scrolled []string
	Clicked  []string

	queryCounts  map[string]int
	attachChecks map[string]int
}

func NewMockDOM() *MockDOM {
	return &MockDOM{
		Children:     map[string]map[string]string{},
		Shadow:       map[string]string{},
		AppearAfter:  map[string]int{},
		AttachAfter:  map[string]int{},
		Hidden:       map[string]bool{},
		NeverVisible: map[string]bool{},
		Controls:     map[string]string{},
		Typed:        map[string]string{},
		Injected:     map[string]string{},
		queryCounts:  map[string]int{},
		attachChecks: map[string]int{},
	}
}

const mockDocument = "document"

func (d *MockDOM) DocumentRoot(ctx context.Context) (NodeRef, error) {
	return mockDocument, nil
}

func (d *MockDOM) Query(ctx context.Context, root NodeRef, selector string) (NodeRef, bool, error) {
	key := string(root) + "|" + selector
	d.Queries = append(d.Queries, key)
	seen := d.queryCounts[key]
	d.queryCounts[key] = seen + 1
	child, ok := d.Children[string(root)][selector]
	if !ok || seen < d.AppearAfter[key] {
		return "", false, nil
	}
	return NodeRef(child), true, nil
}

func (d *MockDOM) InnerRoot(ctx context.Context, node NodeRef) (NodeRef, error) {
	if s, ok := d.Shadow[string(node)]; ok {
		return NodeRef(s), nil
	}
	return node, nil
}

func (d *MockDOM) Attached(ctx context.Context, node NodeRef) (bool, error) {
	seen := d.attachChecks[string(node)]
	d.attachChecks[string(node)] = seen + 1
	return seen >= d.AttachAfter[string(node)], nil
}

func (d *MockDOM) Intersecting(ctx context.Context, node NodeRef) (bool, error) {
	if d.NeverVisible[string(node)] {
		return false, nil
	}
	if d.Hidden[string(node)] {
		return slices.Contains(d.Scrolled, string(node)), nil
	}
	return true, nil
}

func (d *MockDOM) ScrollIntoView(ctx context.Context, node NodeRef) error {
	d.Scrolled = append(d.Scrolled, string(node))
	return nil
}

func (d *MockDOM) ControlType(ctx context.Context, node NodeRef) (string, error) {
	if c, ok := d.Controls[string(node)]; ok {
		return c, nil
	}
	return "text", nil
}

func (d *MockDOM) SendKeys(ctx context.Context, node NodeRef, value string) error {
	d.Typed[string(node)] = value
	return nil
}

func (d *MockDOM) SetValue(ctx context.Context, node NodeRef, value string) error {
	d.Injected[string(node)] = value
	return nil
}

func (d *MockDOM) Click(ctx context.Context, node NodeRef) error {
	d.Clicked = append(d.Clicked, string(node))
	return nil
}
