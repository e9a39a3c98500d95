// Package scraper pulls listing details from eBay item pages.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"watchflip/internal/domain"
	"watchflip/internal/workers"
)

var (
	// ErrUnavailable is returned by the disabled scraper.
	ErrUnavailable = errors.New("eBay scraping is disabled, please use manual entry")
	ErrInvalidURL  = errors.New("invalid eBay URL")
)

type Scraper interface {
	Scrape(ctx context.Context, listingURL string) (domain.ScrapedListing, error)
}

// Disabled validates the URL and then refuses.
type Disabled struct{}

func (Disabled) Scrape(_ context.Context, listingURL string) (domain.ScrapedListing, error) {
	if _, err := CheckURL(listingURL); err != nil {
		return domain.ScrapedListing{}, err
	}
	return domain.ScrapedListing{}, ErrUnavailable
}

var reItemID = regexp.MustCompile(`/itm/(?:[^/]+/)?(\d{9,15})`)

// CheckURL accepts http(s) URLs on an ebay host. The error wraps both
// ErrInvalidURL and workers.ErrPermanent.
func CheckURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, workers.ErrPermanent)
	}
	for _, label := range strings.Split(strings.ToLower(u.Hostname()), ".") {
		if label == "ebay" {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrInvalidURL, workers.ErrPermanent)
}

// ListingID extracts the numeric item id from an /itm/ path.
func ListingID(u *url.URL) string {
	if m := reItemID.FindStringSubmatch(u.Path); m != nil {
		return m[1]
	}
	return ""
}

// pageData is what the in-page script returns.
type pageData struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Price       string            `json:"price"`
	Images      []string          `json:"images"`
	Condition   string            `json:"condition"`
	Specifics   map[string]string `json:"specifics"`
}

var priceRegexp = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)

// parsePrice takes the first number in strings like "US $1,249.99".
func parsePrice(raw string) decimal.Decimal {
	m := priceRegexp.FindString(raw)
	if m == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// specific returns the first of keys, in the order given, that the item
// specifics carry with a real value. eBay fills unknown fields with
// "Does Not Apply".
func specific(s map[string]string, keys ...string) string {
	for _, want := range keys {
		for k, v := range s {
			if !strings.EqualFold(strings.TrimSpace(k), want) {
				continue
			}
			v = strings.TrimSpace(v)
			if v != "" && !strings.EqualFold(v, "does not apply") {
				return v
			}
		}
	}
	return ""
}

func normaliseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (p pageData) listing(u *url.URL) domain.ScrapedListing {
	images := make([]string, 0, len(p.Images))
	seen := map[string]bool{}
	for _, img := range p.Images {
		img = strings.TrimSpace(img)
		if img == "" || seen[img] {
			continue
		}
		seen[img] = true
		images = append(images, img)
	}
	return domain.ScrapedListing{
		URL:             u.String(),
		ListingID:       ListingID(u),
		Title:           normaliseText(p.Title),
		Description:     strings.TrimSpace(p.Description),
		Price:           parsePrice(p.Price),
		Images:          images,
		Condition:       normaliseText(p.Condition),
		Brand:           specific(p.Specifics, "Brand"),
		Model:           specific(p.Specifics, "Model"),
		ReferenceNumber: specific(p.Specifics, "Reference Number", "Model Number", "MPN"),
	}
}
