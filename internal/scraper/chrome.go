package scraper

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"watchflip/internal/domain"
	applog "watchflip/internal/log"
	"watchflip/internal/workers"
)

// extractJS reads the fields a listing form needs from an eBay item page.
const extractJS = `
(function() {
  var text = function(sel) {
    var el = document.querySelector(sel);
    return el ? (el.innerText || el.textContent || '').trim() : '';
  };
  var specifics = {};
  document.querySelectorAll('.ux-labels-values, .ux-layout-section-evo__col').forEach(function(row) {
    var k = row.querySelector('.ux-labels-values__labels, .ux-labels-values__labels-content');
    var v = row.querySelector('.ux-labels-values__values, .ux-labels-values__values-content');
    if (k && v) specifics[k.innerText.replace(':', '').trim()] = v.innerText.trim();
  });
  var images = [];
  document.querySelectorAll('.ux-image-carousel-item img, #icImg').forEach(function(img) {
    var src = img.getAttribute('data-zoom-src') || img.getAttribute('data-src') || img.src;
    if (src) images.push(src);
  });
  return {
    title: text('h1.x-item-title__mainTitle') || text('#itemTitle') || document.title,
    description: text('#viTabs_0_is') || text('.x-item-description'),
    price: text('.x-price-primary') || text('#prcIsum'),
    condition: text('.x-item-condition-text') || text('#vi-itm-cond'),
    images: images,
    specifics: specifics
  };
})()`

// Chrome drives a headless browser.
type Chrome struct {
	chromeBin string
	timeout   time.Duration
	retry     workers.Retry
}

func NewChrome(chromeBin string, timeout time.Duration, retry workers.Retry) *Chrome {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Chrome{chromeBin: chromeBin, timeout: timeout, retry: retry}
}

func (s *Chrome) Scrape(ctx context.Context, listingURL string) (domain.ScrapedListing, error) {
	u, err := CheckURL(listingURL)
	if err != nil {
		return domain.ScrapedListing{}, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if s.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(s.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	start := time.Now()
	var page pageData
	err = s.retry.Do(browserCtx, "ebay-scrape", func(ctx context.Context) error {
		tabCtx, cancelTab := chromedp.NewContext(ctx)
		defer cancelTab()
		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.timeout)
		defer cancelTimeout()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(u.String()),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Sleep(2*time.Second),
			chromedp.Evaluate(extractJS, &page),
		)
	})
	applog.Timed("scraper.ebay", start, err, map[string]any{"url": u.String()})
	if err != nil {
		return domain.ScrapedListing{}, fmt.Errorf("scrape %s: %w", u.Host, err)
	}
	return page.listing(u), nil
}

// findChromeBinary checks CHROME_BIN, PATH, then common install locations.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}
	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	for _, p := range []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
