// Package browser runs one headless Chrome for the whole process and hands
// out tabs in it.
//
// Launch starts the browser, Close tears it down; both are called exactly once
// by the owner (cmd/odds-service). Tabs are opened with NewPage and must be
// closed by the caller. Every tab aborts requests for the configured resource
// types (images, stylesheets and fonts by default) through the Fetch domain,
// which leaves the DOM intact for text extraction.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/Vodeneev/keirin-odds/internal/odds"
)

// Options configures the Chrome process.
type Options struct {
	Headless  bool
	NoSandbox bool
	UserAgent string
	ExecPath  string
	// BlockedResources are CDP resource types, case-insensitive: image, stylesheet, font, media...
	BlockedResources []string
	// Debug forwards chromedp protocol logs at debug level.
	Debug bool
}

// Browser is a running Chrome instance shared by all requests.
type Browser struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	blocked       map[network.ResourceType]bool
	log           logrus.FieldLogger

	closeOnce sync.Once
	closeErr  error
}

var _ odds.Browser = (*Browser)(nil)

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	o := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", opts.NoSandbox),
	)
	if opts.UserAgent != "" {
		o = append(o, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		o = append(o, chromedp.ExecPath(opts.ExecPath))
	}
	return o
}

// blockedSet maps configured names onto CDP resource types.
func blockedSet(names []string) (map[network.ResourceType]bool, error) {
	known := []network.ResourceType{
		network.ResourceTypeDocument,
		network.ResourceTypeStylesheet,
		network.ResourceTypeImage,
		network.ResourceTypeMedia,
		network.ResourceTypeFont,
		network.ResourceTypeScript,
		network.ResourceTypeTextTrack,
		network.ResourceTypeXHR,
		network.ResourceTypeFetch,
		network.ResourceTypeEventSource,
		network.ResourceTypeWebSocket,
		network.ResourceTypeManifest,
		network.ResourceTypeOther,
	}

	set := make(map[network.ResourceType]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		found := false
		for _, rt := range known {
			if strings.EqualFold(string(rt), name) {
				if rt == network.ResourceTypeDocument {
					return nil, fmt.Errorf("refusing to block %q: the odds page itself is a document", name)
				}
				set[rt] = true
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown resource type %q", name)
		}
	}
	return set, nil
}

// Launch starts Chrome and waits until it accepts commands.
func Launch(opts Options, log logrus.FieldLogger) (*Browser, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	blocked, err := blockedSet(opts.BlockedResources)
	if err != nil {
		return nil, fmt.Errorf("browser options: %w", err)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(opts)...)

	contextOpts := []chromedp.ContextOption{
		chromedp.WithErrorf(func(format string, v ...interface{}) {
			log.Errorf("chromedp: "+format, v...)
		}),
	}
	if opts.Debug {
		contextOpts = append(contextOpts, chromedp.WithLogf(func(format string, v ...interface{}) {
			log.Debugf("chromedp: "+format, v...)
		}))
	}
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, contextOpts...)

	// the first Run on a fresh context starts the browser process
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	log.WithFields(logrus.Fields{
		"headless": opts.Headless,
		"blocked":  opts.BlockedResources,
	}).Info("Browser started")

	return &Browser{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		blocked:       blocked,
		log:           log,
	}, nil
}

// NewPage opens a tab with resource blocking enabled. ctx only bounds the
// opening itself; the tab lives until Close.
func (b *Browser) NewPage(ctx context.Context) (odds.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.browserCtx.Err(); err != nil {
		return nil, fmt.Errorf("browser closed: %w", err)
	}

	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	p := &Page{ctx: tabCtx, cancel: cancel, blocked: b.blocked, log: b.log}

	chromedp.ListenTarget(tabCtx, p.onEvent)

	// Run on tabCtx itself: the first Run creates the target, and a derived
	// context there would tie the tab's lifetime to the request.
	errc := make(chan error, 1)
	go func() {
		errc <- chromedp.Run(tabCtx, fetch.Enable())
	}()
	select {
	case err := <-errc:
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("open tab: %w", err)
		}
	case <-ctx.Done():
		_ = p.Close()
		return nil, ctx.Err()
	}

	return p, nil
}

// Close shuts Chrome down. Safe to call more than once.
func (b *Browser) Close() error {
	b.closeOnce.Do(func() {
		// graceful close first so Chrome can flush its profile
		if err := chromedp.Cancel(b.browserCtx); err != nil && !errors.Is(err, context.Canceled) {
			b.closeErr = fmt.Errorf("close chrome: %w", err)
		}
		b.browserCancel()
		b.allocCancel()
		b.log.Info("Browser stopped")
	})
	return b.closeErr
}

// Page is one Chrome tab.
type Page struct {
	ctx     context.Context
	cancel  context.CancelFunc
	blocked map[network.ResourceType]bool
	log     logrus.FieldLogger

	closeOnce sync.Once
	closeErr  error
}

var _ odds.Page = (*Page)(nil)

func (p *Page) onEvent(ev interface{}) {
	e, ok := ev.(*fetch.EventRequestPaused)
	if !ok {
		return
	}
	// Listeners run on the event loop; issuing commands there would deadlock.
	go func() {
		c := chromedp.FromContext(p.ctx)
		if c == nil || c.Target == nil {
			return
		}
		ctx := cdp.WithExecutor(p.ctx, c.Target)

		var err error
		if p.blocked[e.ResourceType] {
			err = fetch.FailRequest(e.RequestID, network.ErrorReasonBlockedByClient).Do(ctx)
		} else {
			err = fetch.ContinueRequest(e.RequestID).Do(ctx)
		}
		if err != nil && p.ctx.Err() == nil {
			p.log.WithField("url", e.Request.URL).WithError(err).Debug("Failed to resolve paused request")
		}
	}()
}

// run executes actions on the tab, bounded by both ctx and the tab lifetime.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
		// report the caller's reason (deadline vs cancel), not the derived one
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return err
}

// Navigate loads url and waits for the load event.
func (p *Page) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.Navigate(url))
}

// WaitVisible waits until selector matches a visible element.
func (p *Page) WaitVisible(ctx context.Context, selector string) error {
	return p.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// HTML returns the serialized document.
func (p *Page) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Close closes the tab. Safe to call more than once.
func (p *Page) Close() error {
	p.closeOnce.Do(func() {
		if err := chromedp.Cancel(p.ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.closeErr = fmt.Errorf("close tab: %w", err)
		}
		p.cancel()
	})
	return p.closeErr
}
