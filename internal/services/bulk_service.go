package services

import (
	"context"

	"watchflip/internal/domain"
	applog "watchflip/internal/log"
	"watchflip/internal/validate"
	"watchflip/internal/workers"
)

// BulkService fans one independent write per id out over a bounded pool.
// A failed id never rolls back the others.
type BulkService struct {
	Watches *WatchService
	Workers int
}

func NewBulkService(watches *WatchService, n int) *BulkService {
	return &BulkService{Watches: watches, Workers: n}
}

func (s *BulkService) run(ctx context.Context, action string, ids []string, fn func(context.Context, string) error) domain.BulkResult {
	errs := workers.Each(ctx, s.Workers, ids, fn)
	res := domain.BulkResult{Succeeded: []string{}, Failed: []domain.BulkFailure{}}
	for i, err := range errs {
		if err != nil {
			res.Failed = append(res.Failed, domain.BulkFailure{ID: ids[i], Error: err.Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, ids[i])
	}
	applog.Info(nil, action, map[string]any{"requested": len(ids), "succeeded": len(res.Succeeded), "failed": len(res.Failed)})
	return res
}

func (s *BulkService) UpdateStatus(ctx context.Context, ids []string, st domain.Status) (domain.BulkResult, error) {
	if !st.Valid() {
		return domain.BulkResult{}, validate.Violations{"status": validate.CodeInvalidStatus}.Err()
	}
	return s.run(ctx, "bulk.status", ids, func(ctx context.Context, id string) error {
		_, err := s.Watches.SetStatus(ctx, id, st)
		return err
	}), nil
}

func (s *BulkService) Delete(ctx context.Context, ids []string) domain.BulkResult {
	return s.run(ctx, "bulk.delete", ids, s.Watches.Delete)
}

// Edit appends tags and overwrites any supplied status or cost.
func (s *BulkService) Edit(ctx context.Context, ids []string, p domain.BulkPatch) (domain.BulkResult, error) {
	if err := validate.Bulk(p).Err(); err != nil {
		return domain.BulkResult{}, err
	}
	return s.run(ctx, "bulk.edit", ids, func(ctx context.Context, id string) error {
		in := domain.WatchInput{
			Status:       p.Status,
			ServiceCost:  p.ServiceCost,
			CleaningCost: p.CleaningCost,
			OtherCosts:   p.OtherCosts,
		}
		if len(p.AddTags) > 0 {
			w, err := s.Watches.Get(ctx, id)
			if err != nil {
				return err
			}
			in.Tags = append(append([]string{}, w.Tags...), p.AddTags...)
		}
		_, err := s.Watches.Update(ctx, id, in)
		return err
	}), nil
}
