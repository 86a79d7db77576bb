package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ggorockee/reviewmaps-alerts/internal/domain/common/errorz"
	"github.com/ggorockee/reviewmaps-alerts/internal/domain/entity"
	"github.com/ggorockee/reviewmaps-alerts/pkg/logger/types"
	"github.com/google/uuid"
)

type activityAlertStorage interface {
	Create(ctx context.Context, alert *entity.ActivityAlert) error
	GetPending(ctx context.Context) ([]entity.ActivityAlert, error)
	MarkNotified(ctx context.Context, id uint) error
	MarkRead(ctx context.Context, userID uint, ids []uint) error
	Hide(ctx context.Context, userID uint, ids []uint) error
}

// AlertService runs the daily activity alert scan and the dispatch pass.
type AlertService struct {
	alertStorage activityAlertStorage
	notify       *NotifyService
	strategies   []AlertStrategy
	logger       *types.Logger
}

func NewAlertService(storage activityAlertStorage, notify *NotifyService, logger *types.Logger, strategies ...AlertStrategy) *AlertService {
	return &AlertService{
		alertStorage: storage,
		notify:       notify,
		strategies:   strategies,
		logger:       logger,
	}
}

// RunScan runs every registered strategy for the given date and persists
// the drafts they produce. Rerunning the same date is a no-op thanks to the
// store's dedup index. Per-row failures are logged and skipped so one bad
// record can not starve the rest of the sequence; a page-fetch failure
// abandons that strategy for this run and moves on to the next one.
// Returns the number of newly created alerts.
func (s *AlertService) RunScan(ctx context.Context, today time.Time) (int, error) {
	runID := uuid.New().String()
	today = dateOf(today)

	var created int
	for _, strategy := range s.strategies {
		it := strategy.Generate(ctx, today)
		for {
			ok, err := it.HasNext()
			if err != nil {
				s.logger.Errorf("(run: %s) | strategy %s: page fetch failed: %v", runID, strategy.Name(), err)
				break
			}
			if !ok {
				break
			}

			draft, err := it.Next()
			if err != nil {
				s.logger.Errorf("(run: %s) | strategy %s: %v", runID, strategy.Name(), err)
				break
			}

			if errCreate := s.alertStorage.Create(ctx, &draft); errCreate != nil {
				if errors.Is(errCreate, errorz.ErrAlertExists) {
					continue
				}
				s.logger.Errorf("(run: %s) | strategy %s: failed to persist alert for user %d campaign %d: %v",
					runID, strategy.Name(), draft.UserID, draft.CampaignID, errCreate)
				continue
			}
			created++
		}
	}

	s.logger.Infof("(run: %s) | scan for %s generated %d new alerts", runID, today.Format("2006-01-02"), created)
	return created, nil
}

// DispatchPending sends every unsent, visible alert and moves successfully
// delivered ones to the sent stage. A failed send leaves the alert pending
// so the next run retries it; an alert with an unknown type is hidden
// instead, since no retry can fix it.
func (s *AlertService) DispatchPending(ctx context.Context) (int, int, error) {
	alerts, err := s.alertStorage.GetPending(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("load pending alerts: %w", err)
	}

	var sent, failed int
	for _, alert := range alerts {
		if errSend := s.notify.SendActivityAlert(ctx, alert); errSend != nil {
			if errors.Is(errSend, errorz.ErrUnknownAlertType) {
				// Retrying can never succeed, so the row is taken out of
				// the pending set.
				s.logger.Errorf("alert %d is malformed, hiding it: %v", alert.ID, errSend)
				if errHide := s.alertStorage.Hide(ctx, alert.UserID, []uint{alert.ID}); errHide != nil {
					s.logger.Errorf("failed to hide malformed alert %d: %v", alert.ID, errHide)
				}
			} else {
				s.logger.Errorf("failed to send alert %d to user %d: %v", alert.ID, alert.UserID, errSend)
			}
			failed++
			continue
		}

		if errMark := s.alertStorage.MarkNotified(ctx, alert.ID); errMark != nil {
			s.logger.Errorf("failed to mark alert %d as sent: %v", alert.ID, errMark)
			failed++
			continue
		}
		sent++
	}

	return sent, failed, nil
}

// MarkRead flags the user's alerts as read. Unknown ids and already-read
// alerts are ignored.
func (s *AlertService) MarkRead(ctx context.Context, userID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return s.alertStorage.MarkRead(ctx, userID, ids)
}

// Delete hides the user's alerts from their listing. Rows are kept so a
// rerun of the scan does not resurrect them.
func (s *AlertService) Delete(ctx context.Context, userID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return s.alertStorage.Hide(ctx, userID, ids)
}

// dateOf truncates a timestamp to its calendar date.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// sameDay reports whether two timestamps fall on the same calendar date.
// Dates loaded from the database carry a different location than the
// scheduler clock, so the instants themselves are not comparable.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
