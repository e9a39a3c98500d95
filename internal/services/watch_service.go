package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"watchflip/internal/domain"
	"watchflip/internal/events"
	applog "watchflip/internal/log"
	"watchflip/internal/repos"
	"watchflip/internal/validate"
)

const (
	maxImageBytes  = 5 << 20
	publishTimeout = 5 * time.Second
)

var (
	ErrImageType = errors.New("unsupported image type (use jpg, png, webp or gif)")
	ErrImageSize = errors.New("image too large (max 5 MB)")

	imageExts  = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}
	reFileName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

type WatchService struct {
	Watches  *repos.WatchRepo
	Events   events.Publisher
	MediaDir string
	Now      func() time.Time
}

func NewWatchService(watches *repos.WatchRepo, pub events.Publisher, mediaDir string) *WatchService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &WatchService{Watches: watches, Events: pub, MediaDir: mediaDir, Now: time.Now}
}

func (s *WatchService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// publish never fails the write that triggered it.
func (s *WatchService) publish(ctx context.Context, typ domain.EventType, w domain.Watch) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	e := domain.WatchEvent{Type: typ, WatchID: w.ID, Brand: w.Brand, Model: w.Model, Status: w.Status, Timestamp: s.now()}
	if err := s.Events.Publish(ctx, e); err != nil {
		applog.Warn(nil, "event.publish.fail", err, map[string]any{"type": string(typ), "watch_id": w.ID})
	}
}

func (s *WatchService) List(ctx context.Context) ([]domain.Watch, error) {
	return s.Watches.List(ctx)
}

func (s *WatchService) Get(ctx context.Context, id string) (domain.Watch, error) {
	return s.Watches.Get(ctx, id)
}

func (s *WatchService) Create(ctx context.Context, in domain.WatchInput) (domain.Watch, error) {
	return s.create(ctx, in, false)
}

// create builds and stores a watch. Imported rows may be sold without a
// sold price because the simple CSV layout has no such column.
func (s *WatchService) create(ctx context.Context, in domain.WatchInput, imported bool) (domain.Watch, error) {
	if err := validate.Watch(in, true).Err(); err != nil {
		return domain.Watch{}, err
	}
	w := domain.Watch{Status: domain.StatusNeedsService, Tags: []string{}, Images: []string{}}
	in.Apply(&w)
	now := s.now()
	if w.PurchaseDate == nil {
		w.PurchaseDate = &now
	}
	if w.Status == domain.StatusSold && w.SoldDate == nil {
		w.SoldDate = &now
	}
	v := validate.Linkage(w)
	if imported {
		allowUnpricedSale(v)
	}
	if err := v.Err(); err != nil {
		return domain.Watch{}, err
	}
	if err := s.Watches.Create(ctx, &w); err != nil {
		return domain.Watch{}, err
	}
	s.publish(ctx, domain.EventCreated, w)
	if w.Status == domain.StatusSold {
		s.publish(ctx, domain.EventSold, w)
	}
	return w, nil
}

// Update applies a partial change. Moving a watch out of sold clears its
// sale fields unless the same request sets them; moving into sold without
// a date stamps today.
func (s *WatchService) Update(ctx context.Context, id string, in domain.WatchInput) (domain.Watch, error) {
	if err := validate.Watch(in, false).Err(); err != nil {
		return domain.Watch{}, err
	}
	w, err := s.Watches.Get(ctx, id)
	if err != nil {
		return domain.Watch{}, err
	}
	wasSold := w.Status == domain.StatusSold
	// an imported sale without a price stays editable until someone sets one
	unpriced := wasSold && !w.SoldPrice.Valid
	in.Apply(&w)

	if w.Status != domain.StatusSold && wasSold {
		if in.SoldDate == nil {
			w.SoldDate = nil
		}
		if in.SoldPrice == nil {
			w.SoldPrice.Valid = false
		}
	}
	if w.Status == domain.StatusSold && w.SoldDate == nil {
		now := s.now()
		w.SoldDate = &now
	}
	v := validate.Linkage(w)
	if unpriced {
		allowUnpricedSale(v)
	}
	if err := v.Err(); err != nil {
		return domain.Watch{}, err
	}
	if err := s.Watches.Update(ctx, &w); err != nil {
		return domain.Watch{}, err
	}
	s.publish(ctx, domain.EventUpdated, w)
	if w.Status == domain.StatusSold && !wasSold {
		s.publish(ctx, domain.EventSold, w)
	}
	return w, nil
}

func (s *WatchService) Delete(ctx context.Context, id string) error {
	w, err := s.Watches.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Watches.Delete(ctx, id); err != nil {
		return err
	}
	for _, img := range w.Images {
		s.removeFile(img)
	}
	s.publish(ctx, domain.EventDeleted, w)
	return nil
}

func (s *WatchService) SetStatus(ctx context.Context, id string, st domain.Status) (domain.Watch, error) {
	return s.Update(ctx, id, domain.WatchInput{Status: &st})
}

func (s *WatchService) ToggleFavorite(ctx context.Context, id string) (domain.Watch, error) {
	w, err := s.Watches.Get(ctx, id)
	if err != nil {
		return domain.Watch{}, err
	}
	fav := !w.IsFavorite
	return s.Update(ctx, id, domain.WatchInput{IsFavorite: &fav})
}

// AddImage stores data under MediaDir/watches and appends its public URL.
func (s *WatchService) AddImage(ctx context.Context, id, filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExts[ext] {
		return "", &validate.Error{Violations: validate.Violations{"file": ErrImageType.Error()}}
	}
	if len(data) == 0 || len(data) > maxImageBytes {
		return "", &validate.Error{Violations: validate.Violations{"file": ErrImageSize.Error()}}
	}
	w, err := s.Watches.Get(ctx, id)
	if err != nil {
		return "", err
	}

	base := reFileName.ReplaceAllString(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)), "_")
	name := fmt.Sprintf("%s-%d-%s%s", w.ID, s.now().UnixMilli(), strings.Trim(base, "._"), ext)
	dir := filepath.Join(s.MediaDir, "watches")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	url := "/media/watches/" + name

	w.Images = append(w.Images, url)
	if err := s.Watches.Update(ctx, &w); err != nil {
		s.removeFile(url)
		return "", err
	}
	s.publish(ctx, domain.EventUpdated, w)
	return url, nil
}

func (s *WatchService) RemoveImage(ctx context.Context, id, url string) (domain.Watch, error) {
	w, err := s.Watches.Get(ctx, id)
	if err != nil {
		return domain.Watch{}, err
	}
	kept := make([]string, 0, len(w.Images))
	for _, img := range w.Images {
		if img != url {
			kept = append(kept, img)
		}
	}
	if len(kept) == len(w.Images) {
		return domain.Watch{}, fmt.Errorf("image %s: %w", url, repos.ErrNotFound)
	}
	w.Images = kept
	if err := s.Watches.Update(ctx, &w); err != nil {
		return domain.Watch{}, err
	}
	s.removeFile(url)
	s.publish(ctx, domain.EventUpdated, w)
	return w, nil
}

// removeFile deletes a stored upload. External URLs are left alone.
func (s *WatchService) removeFile(url string) {
	name, ok := strings.CutPrefix(url, "/media/watches/")
	if !ok || name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return
	}
	if err := os.Remove(filepath.Join(s.MediaDir, "watches", name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		applog.Warn(nil, "media.remove.fail", err, map[string]any{"url": url})
	}
}

// Import creates each parsed record independently. Failures are keyed by
// 1-based record number. Sold rows without a sold price are accepted.
func (s *WatchService) Import(ctx context.Context, inputs []domain.WatchInput) domain.BulkResult {
	res := domain.BulkResult{Succeeded: []string{}, Failed: []domain.BulkFailure{}}
	for i, in := range inputs {
		w, err := s.create(ctx, in, true)
		if err != nil {
			res.Failed = append(res.Failed, domain.BulkFailure{ID: fmt.Sprintf("record %d", i+1), Error: err.Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, w.ID)
	}
	return res
}

func allowUnpricedSale(v validate.Violations) {
	if v["soldPrice"] == validate.CodeSoldNeedsPrice {
		delete(v, "soldPrice")
	}
}
