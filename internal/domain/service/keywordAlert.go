package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ggorockee/reviewmaps-alerts/internal/domain/entity"
	"github.com/ggorockee/reviewmaps-alerts/pkg/iterator"
	"github.com/ggorockee/reviewmaps-alerts/pkg/logger/types"
)

// Policy decides at what intensity a keyword count is worth a notification.
type Policy struct {
	High int
	Low  int
}

func DefaultPolicy() Policy {
	return Policy{High: 100, Low: 10}
}

func (p Policy) Validate() error {
	if p.Low <= 0 || p.High <= p.Low {
		return fmt.Errorf("invalid keyword policy: high=%d low=%d (need high > low > 0)", p.High, p.Low)
	}
	return nil
}

// FormatCountText buckets a count for message rendering: "{high}+" at or
// above the high threshold, "{low}+" at or above the low one, the exact
// count below that.
func (p Policy) FormatCountText(count int) string {
	switch {
	case count >= p.High:
		return fmt.Sprintf("%d+", p.High)
	case count >= p.Low:
		return fmt.Sprintf("%d+", p.Low)
	default:
		return strconv.Itoa(count)
	}
}

// DetermineStage is the authoritative staging function: 2 at or above the
// high threshold, 1 at or above the low one, 0 otherwise.
func (p Policy) DetermineStage(count int) int {
	switch {
	case count >= p.High:
		return entity.KeywordStageHigh
	case count >= p.Low:
		return entity.KeywordStageLow
	default:
		return entity.KeywordStageNone
	}
}

// ShouldNotify fires only on stage escalation: within one day the stage is
// a monotonic ratchet, so a rescan that does not cross a new threshold must
// not notify again.
func (p Policy) ShouldNotify(count, currentStage int) bool {
	return p.DetermineStage(count) > currentStage
}

type keywordAlertStorage interface {
	GetActivePage(ctx context.Context, page, size int) ([]entity.KeywordCampaignAlert, int, error)
	Save(ctx context.Context, alert *entity.KeywordCampaignAlert) error
	GetUnnotified(ctx context.Context) ([]entity.KeywordCampaignAlert, error)
	MarkNotified(ctx context.Context, id uint) error
}

type campaignCounter interface {
	CountMatchingOnDay(ctx context.Context, keyword string, day time.Time) (int64, error)
}

type countCache interface {
	Get(ctx context.Context, keyword string, day time.Time) (int64, bool, error)
	Set(ctx context.Context, keyword string, day time.Time, count int64, expiration time.Duration) error
}

// KeywordAlertService recomputes per-keyword daily stages (update phase)
// and pushes not-yet-notified rows (dispatch phase). The phases run on
// separate triggers, mirroring the activity alert scan/dispatch split.
type KeywordAlertService struct {
	alerts    keywordAlertStorage
	campaigns campaignCounter
	cache     countCache
	notify    *NotifyService
	policy    Policy
	logger    *types.Logger
}

func NewKeywordAlertService(
	alerts keywordAlertStorage,
	campaigns campaignCounter,
	cache countCache,
	notify *NotifyService,
	policy Policy,
	logger *types.Logger,
) *KeywordAlertService {
	return &KeywordAlertService{
		alerts:    alerts,
		campaigns: campaigns,
		cache:     cache,
		notify:    notify,
		policy:    policy,
		logger:    logger,
	}
}

// UpdateStages walks every active keyword subscription, recomputes today's
// matching-campaign count and ratchets the stage up where a new threshold
// was crossed. Rows below the low threshold are not touched at all, which
// bounds the scan cost. A stage escalation resets the notified flag so the
// dispatch phase picks the row up.
func (s *KeywordAlertService) UpdateStages(ctx context.Context, now time.Time) error {
	today := dateOf(now)

	it := iterator.NewPaged(
		func(page int) (iterator.Page[entity.KeywordCampaignAlert], error) {
			rows, pages, err := s.alerts.GetActivePage(ctx, page, iterator.PageSize)
			if err != nil {
				return iterator.Page[entity.KeywordCampaignAlert]{}, err
			}
			return iterator.Page[entity.KeywordCampaignAlert]{Rows: rows, TotalPages: pages}, nil
		},
		func(a entity.KeywordCampaignAlert) entity.KeywordCampaignAlert { return a },
	)

	for {
		ok, err := it.HasNext()
		if err != nil {
			return fmt.Errorf("load keyword subscriptions: %w", err)
		}
		if !ok {
			break
		}

		sub, err := it.Next()
		if err != nil {
			return err
		}

		count, err := s.dailyCount(ctx, sub.Keyword, today, now)
		if err != nil {
			s.logger.Errorf("failed to count campaigns for keyword %q: %v", sub.Keyword, err)
			continue
		}
		if count < int64(s.policy.Low) {
			continue
		}

		// A row from a previous day starts the new day at stage 0.
		currentStage := entity.KeywordStageNone
		if sameDay(sub.AlertDate, today) {
			currentStage = sub.Stage
		}
		if !s.policy.ShouldNotify(int(count), currentStage) {
			continue
		}

		sub.Stage = s.policy.DetermineStage(int(count))
		sub.MatchedCount = int(count)
		sub.AlertDate = today
		sub.IsNotified = false
		if errSave := s.alerts.Save(ctx, &sub); errSave != nil {
			s.logger.Errorf("failed to save keyword alert for user %d keyword %q: %v", sub.UserID, sub.Keyword, errSave)
		}
	}

	return nil
}

// DispatchPending pushes every staged, not-yet-notified keyword alert. A
// failed send leaves the row unnotified for the next run.
func (s *KeywordAlertService) DispatchPending(ctx context.Context) (int, int, error) {
	alerts, err := s.alerts.GetUnnotified(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("load unnotified keyword alerts: %w", err)
	}

	var sent, failed int
	for _, alert := range alerts {
		countText := s.policy.FormatCountText(alert.MatchedCount)
		if errSend := s.notify.SendKeywordAlert(ctx, alert, countText); errSend != nil {
			s.logger.Errorf("failed to send keyword alert %d to user %d: %v", alert.ID, alert.UserID, errSend)
			failed++
			continue
		}

		if errMark := s.alerts.MarkNotified(ctx, alert.ID); errMark != nil {
			s.logger.Errorf("failed to mark keyword alert %d as notified: %v", alert.ID, errMark)
			failed++
			continue
		}
		sent++
	}

	return sent, failed, nil
}

// dailyCount returns today's matching-campaign count for a keyword, served
// from the cache when possible. Cache failures fall back to a direct count.
func (s *KeywordAlertService) dailyCount(ctx context.Context, keyword string, today, now time.Time) (int64, error) {
	if s.cache != nil {
		count, hit, err := s.cache.Get(ctx, keyword, today)
		if err != nil {
			s.logger.Warnf("count cache read failed for keyword %q: %v", keyword, err)
		} else if hit {
			return count, nil
		}
	}

	count, err := s.campaigns.CountMatchingOnDay(ctx, keyword, today)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		ttl := today.AddDate(0, 0, 1).Sub(now)
		if errSet := s.cache.Set(ctx, keyword, today, count, ttl); errSet != nil {
			s.logger.Warnf("count cache write failed for keyword %q: %v", keyword, errSet)
		}
	}
	return count, nil
}
