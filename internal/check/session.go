package check

import (
	"context"

	"github.com/pagecheck/pagecheck/internal/bridge"
)

// Session is the slice of browser behavior the runner needs. The runner
// never talks CDP directly, so tests can drive it with a fake.
type Session interface {
	Navigate(ctx context.Context, url string) error
	QueryNode(ctx context.Context, selector string) (bridge.NodeRef, error)
	WaitSelector(ctx context.Context, selector string) (bridge.NodeRef, error)
	NodeAttributes(ctx context.Context, nodeID int64) (map[string]string, error)
	AttributeByBackendID(ctx context.Context, backendID int64, name string) (string, bool, error)
	TextByBackendID(ctx context.Context, backendID int64) (string, error)
	AXNodes(ctx context.Context) ([]bridge.A11yNode, error)
	Screenshot(ctx context.Context, format string, quality int) ([]byte, error)
}

// TabSession implements Session over a chromedp tab context. All methods
// expect the tab's context (or a timeout child of it).
type TabSession struct{}

func (TabSession) Navigate(ctx context.Context, url string) error {
	return bridge.NavigatePage(ctx, url)
}

func (TabSession) QueryNode(ctx context.Context, selector string) (bridge.NodeRef, error) {
	return bridge.QueryNode(ctx, selector)
}

func (TabSession) WaitSelector(ctx context.Context, selector string) (bridge.NodeRef, error) {
	return bridge.WaitForSelector(ctx, selector)
}

func (TabSession) NodeAttributes(ctx context.Context, nodeID int64) (map[string]string, error) {
	return bridge.NodeAttributes(ctx, nodeID)
}

func (TabSession) AttributeByBackendID(ctx context.Context, backendID int64, name string) (string, bool, error) {
	return bridge.AttributeByBackendID(ctx, backendID, name)
}

func (TabSession) TextByBackendID(ctx context.Context, backendID int64) (string, error) {
	return bridge.TextByBackendID(ctx, backendID)
}

func (TabSession) AXNodes(ctx context.Context) ([]bridge.A11yNode, error) {
	raw, err := bridge.FetchAXTree(ctx)
	if err != nil {
		return nil, err
	}
	flat, _ := bridge.BuildSnapshot(raw, "", -1)
	return flat, nil
}

func (TabSession) Screenshot(ctx context.Context, format string, quality int) ([]byte, error) {
	return bridge.CaptureScreenshot(ctx, format, quality)
}
