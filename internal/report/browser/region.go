// Package browser captures the rendered report view with a headless
// browser. It is the only place aware of how the report is actually
// drawn; the exporter sees it through the report.Region interface.
package browser

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/corex-health/corex/internal/report"
	"github.com/corex-health/corex/internal/shared/config"
)

// hideScript makes every element marked .no-pdf invisible, remembering
// its previous inline display value for restore
const hideScript = `(() => {
	const els = document.querySelectorAll('.no-pdf');
	els.forEach(el => {
		el.dataset.corexPrevDisplay = el.style.display || '';
		el.style.display = 'none';
	});
	return els.length;
})()`

const restoreScript = `(() => {
	const els = document.querySelectorAll('.no-pdf');
	els.forEach(el => {
		el.style.display = el.dataset.corexPrevDisplay || '';
		delete el.dataset.corexPrevDisplay;
	});
	return els.length;
})()`

// Opener launches a fresh headless browser tab on the report view for
// each export run
type Opener struct {
	viewURL string
	scale   float64
	timeout time.Duration
}

// NewOpener creates a new browser opener
func NewOpener(cfg config.ReportConfig) *Opener {
	return &Opener{
		viewURL: cfg.ViewURL,
		scale:   cfg.Scale,
		timeout: cfg.CaptureTimeout,
	}
}

// Open navigates a new tab to the report view and waits for the report
// content to be present
func (o *Opener) Open(ctx context.Context) (report.Region, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, o.timeout)

	cancel := func() {
		timeoutCancel()
		tabCancel()
		allocCancel()
	}

	// The viewport size is irrelevant to the capture (it uses the full
	// layout extent); EmulateViewport only carries the oversampling factor
	if err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(1280, 1024, chromedp.EmulateScale(o.scale)),
		chromedp.Navigate(o.viewURL),
		chromedp.WaitVisible("#pdf-content", chromedp.ByQuery),
	); err != nil {
		cancel()
		return nil, fmt.Errorf("open report view: %w", err)
	}

	return &Region{ctx: tabCtx, cancel: cancel}, nil
}

// Region is one open browser tab on the report view
type Region struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Hide makes the .no-pdf elements invisible for the duration of capture
func (r *Region) Hide(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var hidden int
	if err := chromedp.Run(r.ctx, chromedp.Evaluate(hideScript, &hidden)); err != nil {
		return fmt.Errorf("hide elements: %w", err)
	}
	return nil
}

// Restore reverts Hide. It deliberately ignores the caller's context:
// the tab's own deadline is the only bound, so a cancelled export still
// gets its elements back.
func (r *Region) Restore(ctx context.Context) error {
	var restored int
	if err := chromedp.Run(r.ctx, chromedp.Evaluate(restoreScript, &restored)); err != nil {
		return fmt.Errorf("restore elements: %w", err)
	}
	return nil
}

// Capture rasters the full scrollable extent of the page, not just the
// visible viewport, so tall reports are never clipped
func (r *Region) Capture(ctx context.Context) (report.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return report.Snapshot{}, err
	}

	var buf []byte
	if err := chromedp.Run(r.ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return report.Snapshot{}, fmt.Errorf("screenshot: %w", err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return report.Snapshot{}, fmt.Errorf("decode screenshot: %w", err)
	}

	return report.Snapshot{PNG: buf, Width: cfg.Width, Height: cfg.Height}, nil
}

// Close tears down the browser tab
func (r *Region) Close() error {
	r.cancel()
	return nil
}
