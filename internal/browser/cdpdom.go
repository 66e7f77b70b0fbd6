package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// cdpDOM implements DOM on top of a chromedp tab context. Node refs
// are CDP remote object ids, so every method must be called with a
// chromedp context.
type cdpDOM struct{}

// jsString encodes s as a javascript string literal. JSON string
// encoding is valid javascript, which saves us hand-rolled escaping.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// callOn invokes a function declaration with the node as `this`. With
// byValue the result is serialized, otherwise a remote object
// reference is returned.
func callOn(ctx context.Context, node NodeRef, decl string, byValue bool) (*runtime.RemoteObject, error) {
	var obj *runtime.RemoteObject
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		p := runtime.CallFunctionOn(decl).WithObjectID(runtime.RemoteObjectID(node))
		if byValue {
			p = p.WithReturnByValue(true)
		}
		o, exp, err := p.Do(ctx)
		if err != nil {
			return err
		}
		if exp != nil {
			return exp
		}
		obj = o
		return nil
	}))
	return obj, err
}

func callOnValue(ctx context.Context, node NodeRef, decl string, out any) error {
	obj, err := callOn(ctx, node, decl, true)
	if err != nil {
		return err
	}
	if obj == nil || obj.Value == nil {
		return fmt.Errorf("call returned no value")
	}
	return json.Unmarshal(obj.Value, out)
}

func (cdpDOM) DocumentRoot(ctx context.Context) (NodeRef, error) {
	var ref NodeRef
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, exp, err := runtime.Evaluate("document").Do(ctx)
		if err != nil {
			return err
		}
		if exp != nil {
			return exp
		}
		if obj == nil || obj.ObjectID == "" {
			return fmt.Errorf("document did not resolve to a remote object")
		}
		ref = NodeRef(obj.ObjectID)
		return nil
	}))
	return ref, err
}

func (cdpDOM) Query(ctx context.Context, root NodeRef, selector string) (NodeRef, bool, error) {
	decl := fmt.Sprintf("function() { return this.querySelector(%s); }", jsString(selector))
	obj, err := callOn(ctx, root, decl, false)
	if err != nil {
		return "", false, err
	}
	if obj == nil || obj.Subtype == "null" || obj.ObjectID == "" {
		return "", false, nil
	}
	return NodeRef(obj.ObjectID), true, nil
}

func (cdpDOM) InnerRoot(ctx context.Context, node NodeRef) (NodeRef, error) {
	obj, err := callOn(ctx, node, "function() { return this.shadowRoot || this; }", false)
	if err != nil {
		return "", err
	}
	if obj == nil || obj.ObjectID == "" {
		return "", fmt.Errorf("inner root did not resolve to a remote object")
	}
	return NodeRef(obj.ObjectID), nil
}

func (cdpDOM) Attached(ctx context.Context, node NodeRef) (bool, error) {
	var attached bool
	err := callOnValue(ctx, node, "function() { return this.isConnected === true; }", &attached)
	return attached, err
}

func (cdpDOM) Intersecting(ctx context.Context, node NodeRef) (bool, error) {
	const decl = `function() {
		const r = this.getBoundingClientRect();
		const h = window.innerHeight || document.documentElement.clientHeight;
		const w = window.innerWidth || document.documentElement.clientWidth;
		return r.width > 0 && r.height > 0 && r.bottom > 0 && r.right > 0 && r.top < h && r.left < w;
	}`
	var visible bool
	err := callOnValue(ctx, node, decl, &visible)
	return visible, err
}

func (cdpDOM) ScrollIntoView(ctx context.Context, node NodeRef) error {
	_, err := callOn(ctx, node, "function() { this.scrollIntoView({behavior: 'smooth', block: 'center', inline: 'center'}); }", true)
	return err
}

func (cdpDOM) ControlType(ctx context.Context, node NodeRef) (string, error) {
	var category string
	err := callOnValue(ctx, node, "function() { return ((this.type || this.tagName) + '').toLowerCase(); }", &category)
	return category, err
}

func (cdpDOM) SendKeys(ctx context.Context, node NodeRef, value string) error {
	return chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return dom.Focus().WithObjectID(runtime.RemoteObjectID(node)).Do(ctx)
		}),
		chromedp.KeyEvent(value),
	)
}

func (cdpDOM) SetValue(ctx context.Context, node NodeRef, value string) error {
	decl := fmt.Sprintf(`function() {
		this.value = %s;
		this.dispatchEvent(new Event('input', {bubbles: true}));
		this.dispatchEvent(new Event('change', {bubbles: true}));
	}`, jsString(value))
	_, err := callOn(ctx, node, decl, true)
	return err
}

func (cdpDOM) Click(ctx context.Context, node NodeRef) error {
	_, err := callOn(ctx, node, "function() { this.click(); }", true)
	return err
}
