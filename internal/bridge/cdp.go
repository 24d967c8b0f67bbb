package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ErrNoElement is returned when a CSS selector matches nothing.
var ErrNoElement = errors.New("no element matches selector")

// NavigatePage uses raw CDP Page.navigate + polls document.readyState for completion.
func NavigatePage(ctx context.Context, url string) error {
	err := chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, _, _, _, err := page.Navigate(url).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			var state string
			err = chromedp.Run(ctx,
				chromedp.Evaluate("document.readyState", &state),
			)
			if err == nil && (state == "interactive" || state == "complete") {
				return nil
			}
		}
	}
}

// NodeRef identifies a DOM element by both frontend and backend node IDs.
type NodeRef struct {
	NodeID    int64
	BackendID int64
}

// QueryNode resolves a CSS selector to a NodeRef via DOM.querySelector.
// Returns ErrNoElement when nothing matches.
func QueryNode(ctx context.Context, selector string) (NodeRef, error) {
	var ref NodeRef
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		exec := chromedp.FromContext(ctx).Target

		var docResult json.RawMessage
		if err := exec.Execute(ctx, "DOM.getDocument", map[string]any{"depth": 0}, &docResult); err != nil {
			return fmt.Errorf("get document: %w", err)
		}
		var doc struct {
			Root struct {
				NodeID int64 `json:"nodeId"`
			} `json:"root"`
		}
		if err := json.Unmarshal(docResult, &doc); err != nil {
			return err
		}

		var qResult json.RawMessage
		p := map[string]any{"nodeId": doc.Root.NodeID, "selector": selector}
		if err := exec.Execute(ctx, "DOM.querySelector", p, &qResult); err != nil {
			return fmt.Errorf("querySelector: %w", err)
		}
		var qr struct {
			NodeID int64 `json:"nodeId"`
		}
		if err := json.Unmarshal(qResult, &qr); err != nil {
			return err
		}
		if qr.NodeID == 0 {
			return fmt.Errorf("%w: %q", ErrNoElement, selector)
		}

		var descResult json.RawMessage
		if err := exec.Execute(ctx, "DOM.describeNode", map[string]any{"nodeId": qr.NodeID}, &descResult); err != nil {
			return fmt.Errorf("describe node: %w", err)
		}
		var desc struct {
			Node struct {
				BackendNodeID int64 `json:"backendNodeId"`
			} `json:"node"`
		}
		if err := json.Unmarshal(descResult, &desc); err != nil {
			return err
		}

		ref = NodeRef{NodeID: qr.NodeID, BackendID: desc.Node.BackendNodeID}
		return nil
	}))
	return ref, err
}

// NodeAttributes fetches an element's attributes via DOM.getAttributes,
// which returns a flat [name, value, name, value, ...] list.
func NodeAttributes(ctx context.Context, nodeID int64) (map[string]string, error) {
	var attrs map[string]string
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var result json.RawMessage
		if err := chromedp.FromContext(ctx).Target.Execute(ctx, "DOM.getAttributes", map[string]any{
			"nodeId": nodeID,
		}, &result); err != nil {
			return fmt.Errorf("getAttributes: %w", err)
		}
		var resp struct {
			Attributes []string `json:"attributes"`
		}
		if err := json.Unmarshal(result, &resp); err != nil {
			return err
		}
		attrs = make(map[string]string, len(resp.Attributes)/2)
		for i := 0; i+1 < len(resp.Attributes); i += 2 {
			attrs[resp.Attributes[i]] = resp.Attributes[i+1]
		}
		return nil
	}))
	return attrs, err
}

// AttributeByBackendID reads one attribute from an element identified by
// its backend DOM node ID. Resolves the node to a JS object and calls
// getAttribute on it, which works for nodes found through the
// accessibility tree.
func AttributeByBackendID(ctx context.Context, backendID int64, name string) (string, bool, error) {
	var value string
	var present bool
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		exec := chromedp.FromContext(ctx).Target

		var resolved json.RawMessage
		if err := exec.Execute(ctx, "DOM.resolveNode", map[string]any{
			"backendNodeId": backendID,
		}, &resolved); err != nil {
			return fmt.Errorf("resolveNode: %w", err)
		}
		var obj struct {
			Object struct {
				ObjectID string `json:"objectId"`
			} `json:"object"`
		}
		if err := json.Unmarshal(resolved, &obj); err != nil {
			return err
		}

		var callResult json.RawMessage
		if err := exec.Execute(ctx, "Runtime.callFunctionOn", map[string]any{
			"objectId":            obj.Object.ObjectID,
			"functionDeclaration": "function(n) { return this.getAttribute(n); }",
			"arguments":           []map[string]any{{"value": name}},
			"returnByValue":       true,
		}, &callResult); err != nil {
			return fmt.Errorf("callFunctionOn: %w", err)
		}
		var call struct {
			Result struct {
				Type  string          `json:"type"`
				Value json.RawMessage `json:"value"`
			} `json:"result"`
		}
		if err := json.Unmarshal(callResult, &call); err != nil {
			return err
		}
		if call.Result.Type == "object" || call.Result.Value == nil {
			// getAttribute returned null: attribute absent
			return nil
		}
		present = true
		return json.Unmarshal(call.Result.Value, &value)
	}))
	return value, present, err
}

// TextByBackendID reads an element's textContent through its backend
// DOM node ID.
func TextByBackendID(ctx context.Context, backendID int64) (string, error) {
	var text string
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		exec := chromedp.FromContext(ctx).Target

		var resolved json.RawMessage
		if err := exec.Execute(ctx, "DOM.resolveNode", map[string]any{
			"backendNodeId": backendID,
		}, &resolved); err != nil {
			return fmt.Errorf("resolveNode: %w", err)
		}
		var obj struct {
			Object struct {
				ObjectID string `json:"objectId"`
			} `json:"object"`
		}
		if err := json.Unmarshal(resolved, &obj); err != nil {
			return err
		}

		var callResult json.RawMessage
		if err := exec.Execute(ctx, "Runtime.callFunctionOn", map[string]any{
			"objectId":            obj.Object.ObjectID,
			"functionDeclaration": "function() { return this.textContent; }",
			"returnByValue":       true,
		}, &callResult); err != nil {
			return fmt.Errorf("callFunctionOn: %w", err)
		}
		var call struct {
			Result struct {
				Value json.RawMessage `json:"value"`
			} `json:"result"`
		}
		if err := json.Unmarshal(callResult, &call); err != nil {
			return err
		}
		if call.Result.Value == nil {
			return nil
		}
		return json.Unmarshal(call.Result.Value, &text)
	}))
	return text, err
}

// WaitForSelector polls until the selector matches or the context expires.
func WaitForSelector(ctx context.Context, selector string) (NodeRef, error) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		ref, err := QueryNode(ctx, selector)
		if err == nil {
			return ref, nil
		}
		if !errors.Is(err, ErrNoElement) {
			return NodeRef{}, err
		}

		select {
		case <-ctx.Done():
			return NodeRef{}, fmt.Errorf("%w: %q", ErrNoElement, selector)
		case <-ticker.C:
		}
	}
}

// FetchAXTree retrieves the full accessibility tree for the page.
func FetchAXTree(ctx context.Context) ([]RawAXNode, error) {
	var rawResult json.RawMessage
	if err := chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return chromedp.FromContext(ctx).Target.Execute(ctx,
				"Accessibility.getFullAXTree", nil, &rawResult)
		}),
	); err != nil {
		return nil, fmt.Errorf("a11y tree: %w", err)
	}

	var treeResp struct {
		Nodes []RawAXNode `json:"nodes"`
	}
	if err := json.Unmarshal(rawResult, &treeResp); err != nil {
		return nil, fmt.Errorf("parse a11y tree: %w", err)
	}
	return treeResp.Nodes, nil
}

// CaptureScreenshot renders the page to PNG or JPEG bytes.
func CaptureScreenshot(ctx context.Context, format string, quality int) ([]byte, error) {
	var buf []byte
	err := chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			cap := page.CaptureScreenshot()
			switch format {
			case "png":
				cap = cap.WithFormat(page.CaptureScreenshotFormatPng)
			default:
				cap = cap.WithFormat(page.CaptureScreenshotFormatJpeg).
					WithQuality(int64(quality))
			}
			var err error
			buf, err = cap.Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return buf, nil
}

// WaitForTitle waits up to timeout for a non-blank title, then returns
// whatever the page has.
func WaitForTitle(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		var title string
		if err := chromedp.Run(ctx, chromedp.Title(&title)); err != nil {
			return "", err
		}
		return title, nil
	}

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline:
			var title string
			if err := chromedp.Run(ctx, chromedp.Title(&title)); err != nil {
				return "", err
			}
			return title, nil
		case <-ticker.C:
			var title string
			if err := chromedp.Run(ctx, chromedp.Title(&title)); err != nil {
				continue
			}
			if title != "" && title != "about:blank" {
				return title, nil
			}
		}
	}
}
