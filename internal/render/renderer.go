// Package render loads pages in a headless browser so client-side
// hydrated content is visible to the extractor.
package render

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/saransh482003/healthassist/internal/model"
)

const (
	defaultPageTimeout = 30 * time.Second
	// maxCapturedPayloads bounds how many JSON bodies one render keeps.
	maxCapturedPayloads = 10
	// maxPayloadBytes drops oversized JSON bodies.
	maxPayloadBytes = 256 * 1024
)

// Renderer loads a URL and returns the final DOM plus any JSON observed
// over the network during load.
type Renderer interface {
	Render(ctx context.Context, url string) (*model.RenderedPage, error)
	Close()
}

// ChromeRenderer implements Renderer on a shared headless Chrome process.
// Each Render runs in its own tab.
type ChromeRenderer struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	pageTimeout   time.Duration
}

// Option configures the renderer.
type Option func(*ChromeRenderer)

// WithPageTimeout overrides the per-page render timeout.
func WithPageTimeout(d time.Duration) Option {
	return func(r *ChromeRenderer) {
		r.pageTimeout = d
	}
}

// NewChromeRenderer starts a shared headless browser context.
func NewChromeRenderer(opts ...Option) *ChromeRenderer {
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), execOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	r := &ChromeRenderer{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		pageTimeout:   defaultPageTimeout,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Close tears down the browser process.
func (r *ChromeRenderer) Close() {
	r.browserCancel()
	r.allocCancel()
}

// Render navigates to the URL in a fresh tab, waits for the body to
// materialize, and captures the rendered document plus intercepted JSON
// network responses.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (*model.RenderedPage, error) {
	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()

	// Bound the tab by both the caller's context and the page timeout.
	timeoutCtx, cancelTimeout := context.WithTimeout(tabCtx, r.pageTimeout)
	defer cancelTimeout()

	stop := context.AfterFunc(ctx, func() { cancelTimeout() })
	defer stop()

	// Record JSON response request IDs as they arrive; bodies are only
	// retrievable after the load settles.
	var mu sync.Mutex
	var jsonRequests []network.RequestID
	chromedp.ListenTarget(timeoutCtx, func(ev any) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok {
			return
		}
		if !strings.Contains(resp.Response.MimeType, "json") {
			return
		}
		mu.Lock()
		if len(jsonRequests) < maxCapturedPayloads {
			jsonRequests = append(jsonRequests, resp.RequestID)
		}
		mu.Unlock()
	})

	page := &model.RenderedPage{URL: url}

	err := chromedp.Run(timeoutCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Title(&page.Title),
		chromedp.OuterHTML("html", &page.HTML),
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &page.Text),
		chromedp.ActionFunc(func(actx context.Context) error {
			mu.Lock()
			ids := append([]network.RequestID{}, jsonRequests...)
			mu.Unlock()
			for _, id := range ids {
				body, err := network.GetResponseBody(id).Do(actx)
				if err != nil {
					// Bodies for evicted requests are gone; skip them.
					continue
				}
				if len(body) == 0 || len(body) > maxPayloadBytes {
					continue
				}
				page.JSONPayloads = append(page.JSONPayloads, string(body))
			}
			return nil
		}),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "render: load %s", url)
	}

	zap.L().Debug("render: page loaded",
		zap.String("url", url),
		zap.Int("text_len", len(page.Text)),
		zap.Int("json_payloads", len(page.JSONPayloads)),
	)
	return page, nil
}
