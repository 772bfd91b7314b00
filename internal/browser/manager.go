// Package browser owns the lifecycle of a single Chrome instance and
// hands out isolated page contexts. One Manager maps to at most one
// live browser process.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// Realistic Chrome user-agent so the identity provider does not serve
// the degraded "unsupported browser" markup to the automation profile.
const stealthUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// stealthJS masks the most common automation indicators. It runs before
// any page script via Page.addScriptToEvaluateOnNewDocument.
const stealthJS = `
(function() {
    const proto = Object.getPrototypeOf(navigator);
    if ('webdriver' in proto) {
        delete proto.webdriver;
    }
    try {
        Object.defineProperty(navigator, 'webdriver', {
            get: () => undefined,
            set: () => {},
            configurable: false,
            enumerable: false
        });
    } catch (e) {}

    Object.defineProperty(navigator, 'languages', {
        get: () => ['en-US', 'en'],
        configurable: true
    });

    window.chrome = window.chrome || {
        runtime: {},
        loadTimes: function() {},
        csi: function() {},
        app: {}
    };

    const originalQuery = window.navigator.permissions.query;
    window.navigator.permissions.query = (parameters) => (
        parameters.name === 'notifications' ?
            Promise.resolve({ state: Notification.permission }) :
            originalQuery(parameters)
    );
})();
`

// Config holds browser launch configuration.
type Config struct {
	ExecPath            string `json:"exec_path"`
	UserDataDir         string `json:"user_data_dir"`
	ViewportWidth       int    `json:"viewport_width"`
	ViewportHeight      int    `json:"viewport_height"`
	NavigationTimeoutMs int    `json:"navigation_timeout_ms"`
	Stealth             bool   `json:"stealth"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ViewportWidth:       1280,
		ViewportHeight:      900,
		NavigationTimeoutMs: 30000,
		Stealth:             true,
	}
}

// NavigationTimeout returns the navigation timeout as a duration.
func (c Config) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// Manager launches and reuses one Chrome process. Pages are created as
// tabs of that process; Shutdown releases everything. All methods are
// safe for concurrent use, though callers serialize page work above
// this layer.
type Manager struct {
	cfg Config
	log zerolog.Logger

	mu          sync.Mutex
	allocCancel context.CancelFunc
	browserCtx  context.Context
	browserStop context.CancelFunc
	visible     bool
	started     bool
}

// NewManager creates a manager; the browser is not launched until
// Start is called.
func NewManager(cfg Config, log zerolog.Logger) *Manager {
	return &Manager{cfg: cfg, log: log}
}

// Start idempotently launches the browser. A second call with the same
// visibility reuses the running process; changing visibility restarts
// it, since headless cannot be toggled on a live Chrome.
func (m *Manager) Start(ctx context.Context, visible bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		if m.visible == visible {
			return nil
		}
		m.log.Debug().Bool("visible", visible).Msg("visibility changed, restarting browser")
		m.shutdownLocked()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !visible),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-backgrounding-occluded-windows", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.WindowSize(m.cfg.ViewportWidth, m.cfg.ViewportHeight),
	)
	if m.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(m.cfg.ExecPath))
	}
	if m.cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(m.cfg.UserDataDir))
	}
	if m.cfg.Stealth {
		opts = append(opts,
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.UserAgent(stealthUserAgent),
		)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserStop := chromedp.NewContext(allocCtx)

	// Run with no actions forces the process to actually launch, so a
	// bad exec path fails here instead of inside the first page. The
	// probe is bounded by the configured timeout and aborts if the
	// caller's context is canceled.
	launchCtx, cancel := context.WithTimeout(browserCtx, m.cfg.NavigationTimeout())
	defer cancel()
	stopAbort := context.AfterFunc(ctx, cancel)
	defer stopAbort()
	if err := chromedp.Run(launchCtx); err != nil {
		browserStop()
		allocCancel()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("launch browser: %w", ctxErr)
		}
		return fmt.Errorf("launch browser: %w", err)
	}

	m.allocCancel = allocCancel
	m.browserCtx = browserCtx
	m.browserStop = browserStop
	m.visible = visible
	m.started = true
	m.log.Debug().Bool("visible", visible).Msg("browser started")
	return nil
}

// NewPage opens a fresh tab and returns its context plus a release
// func. The release func closes the tab and is safe to call more than
// once. The tab also dies if parent is canceled.
func (m *Manager) NewPage(parent context.Context) (context.Context, func(), error) {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return nil, nil, fmt.Errorf("browser not started")
	}
	browserCtx := m.browserCtx
	m.mu.Unlock()

	tabCtx, tabCancel := chromedp.NewContext(browserCtx)

	// Materialize the tab now so the release func always has a real
	// target to close.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, nil, fmt.Errorf("open page: %w", err)
	}

	if m.cfg.Stealth {
		err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthJS).Do(ctx)
			return err
		}))
		if err != nil {
			m.log.Warn().Err(err).Msg("stealth script injection failed")
		}
	}

	stop := context.AfterFunc(parent, tabCancel)

	var once sync.Once
	release := func() {
		once.Do(func() {
			stop()
			tabCancel()
		})
	}
	return tabCtx, release, nil
}

// Visible reports whether the running browser has a visible window.
func (m *Manager) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started && m.visible
}

// Shutdown closes the browser process. Safe to call when not started
// and safe to call twice.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownLocked()
}

func (m *Manager) shutdownLocked() {
	if !m.started {
		return
	}
	// Cancel the browser context first so chromedp sends Browser.close
	// before the allocator kills the process.
	m.browserStop()
	m.allocCancel()
	m.browserCtx = nil
	m.browserStop = nil
	m.allocCancel = nil
	m.started = false
	m.log.Debug().Msg("browser shut down")
}
