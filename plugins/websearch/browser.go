package websearch

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/va6996/travelingman-mcp/config"
)

// Page is the rendered state of a results page.
type Page struct {
	Title string
	HTML  string
}

// Session is one isolated browser profile. Close must be called on every
// path once the session is no longer needed.
type Session interface {
	Fetch(ctx context.Context, homeURL, searchURL string) (*Page, error)
	Close() error
}

// Browser opens sessions.
type Browser interface {
	NewSession(ctx context.Context) (Session, error)
}

const maskWebdriver = `Object.defineProperty(navigator, 'webdriver', { get: () => undefined });`

// ChromeBrowser drives headless Chrome through the DevTools protocol.
type ChromeBrowser struct {
	UserAgent         string
	ExecPath          string
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
}

func NewChromeBrowser(cfg config.SearchConfig) *ChromeBrowser {
	return &ChromeBrowser{
		UserAgent:         cfg.UserAgent,
		ExecPath:          cfg.ChromePath,
		NavigationTimeout: cfg.NavigationTimeout,
		SettleDelay:       cfg.SettleDelay,
	}
}

func (b *ChromeBrowser) NewSession(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.WindowSize(1920, 1080),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if b.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.UserAgent))
	}
	if b.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	s := &chromeSession{
		ctx:    tabCtx,
		cancel: func() { cancelTab(); cancelAlloc() },
		nav:    b.NavigationTimeout,
		settle: b.SettleDelay,
	}

	// The first Run starts the browser and must use the session context,
	// otherwise a later timeout would tear the tab down.
	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(maskWebdriver).Do(ctx)
		return err
	}))
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

type chromeSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	nav    time.Duration
	settle time.Duration
}

func (s *chromeSession) navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(s.ctx, s.nav)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(navCtx, chromedp.Navigate(url))
}

func (s *chromeSession) Fetch(ctx context.Context, homeURL, searchURL string) (*Page, error) {
	if err := s.navigate(ctx, homeURL); err != nil {
		return nil, err
	}
	if err := chromedp.Run(s.ctx, chromedp.Sleep(s.settle)); err != nil {
		return nil, err
	}
	if err := s.navigate(ctx, searchURL); err != nil {
		return nil, err
	}

	var p Page
	err := chromedp.Run(s.ctx,
		chromedp.Sleep(s.settle),
		chromedp.Title(&p.Title),
		chromedp.OuterHTML("html", &p.HTML, chromedp.ByQuery),
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *chromeSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancel()
	return err
}
