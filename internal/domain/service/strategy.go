package service

import (
	"context"
	"time"

	"github.com/ggorockee/reviewmaps-alerts/internal/domain/entity"
	"github.com/ggorockee/reviewmaps-alerts/pkg/iterator"
)

// AlertIterator is a lazy sequence of alert drafts.
type AlertIterator = iterator.Iterator[entity.ActivityAlert]

// AlertStrategy produces drafts for every (user, campaign) pair eligible
// under its rules on the given date. Strategies do no deduplication; the
// store's unique index is the sole backstop.
type AlertStrategy interface {
	Name() string
	Generate(ctx context.Context, today time.Time) AlertIterator
}

type bookmarkAlertStorage interface {
	GetActiveByApplyEnd(ctx context.Context, applyEnd time.Time, page, size int) ([]entity.Bookmark, int, error)
}

type statusAlertStorage interface {
	GetByReviewerAnnouncement(ctx context.Context, date time.Time, page, size int) ([]entity.CampaignStatus, int, error)
	GetByReviewEnd(ctx context.Context, date time.Time, page, size int) ([]entity.CampaignStatus, int, error)
	GetByVisitStart(ctx context.Context, date time.Time, page, size int) ([]entity.CampaignStatus, int, error)
}

func draft(userID, campaignID uint, alertType entity.ActivityAlertType, today time.Time) entity.ActivityAlert {
	return entity.ActivityAlert{
		UserID:     userID,
		CampaignID: campaignID,
		AlertType:  alertType,
		AlertDate:  today,
		Stage:      entity.StagePending,
		IsVisible:  true,
	}
}

// BookmarkStrategy alerts users whose bookmarked campaign stops taking
// applications tomorrow (D-1) or today (D-Day).
type BookmarkStrategy struct {
	bookmarks bookmarkAlertStorage
}

func NewBookmarkStrategy(bookmarks bookmarkAlertStorage) *BookmarkStrategy {
	return &BookmarkStrategy{
		bookmarks: bookmarks,
	}
}

func (s *BookmarkStrategy) Name() string {
	return "bookmark-deadline"
}

func (s *BookmarkStrategy) Generate(ctx context.Context, today time.Time) AlertIterator {
	d1 := s.window(ctx, today.AddDate(0, 0, 1), entity.BookmarkDeadlineD1, today)
	dDay := s.window(ctx, today, entity.BookmarkDeadlineDDay, today)
	return iterator.NewComposite[entity.ActivityAlert](d1, dDay)
}

func (s *BookmarkStrategy) window(ctx context.Context, applyEnd time.Time, alertType entity.ActivityAlertType, today time.Time) AlertIterator {
	return iterator.NewPaged(
		func(page int) (iterator.Page[entity.Bookmark], error) {
			rows, pages, err := s.bookmarks.GetActiveByApplyEnd(ctx, applyEnd, page, iterator.PageSize)
			if err != nil {
				return iterator.Page[entity.Bookmark]{}, err
			}
			return iterator.Page[entity.Bookmark]{Rows: rows, TotalPages: pages}, nil
		},
		func(b entity.Bookmark) entity.ActivityAlert {
			return draft(b.UserID, b.CampaignID, alertType, today)
		},
	)
}

// ApplyResultStrategy alerts applicants on the day the reviewer selection
// is announced.
type ApplyResultStrategy struct {
	statuses statusAlertStorage
}

func NewApplyResultStrategy(statuses statusAlertStorage) *ApplyResultStrategy {
	return &ApplyResultStrategy{
		statuses: statuses,
	}
}

func (s *ApplyResultStrategy) Name() string {
	return "apply-result"
}

func (s *ApplyResultStrategy) Generate(ctx context.Context, today time.Time) AlertIterator {
	return statusWindow(ctx, s.statuses.GetByReviewerAnnouncement, today, entity.ApplyResultDDay, today)
}

// ReviewingStrategy alerts reviewers three days before and on the day their
// review period ends.
type ReviewingStrategy struct {
	statuses statusAlertStorage
}

func NewReviewingStrategy(statuses statusAlertStorage) *ReviewingStrategy {
	return &ReviewingStrategy{
		statuses: statuses,
	}
}

func (s *ReviewingStrategy) Name() string {
	return "reviewing-deadline"
}

func (s *ReviewingStrategy) Generate(ctx context.Context, today time.Time) AlertIterator {
	d3 := statusWindow(ctx, s.statuses.GetByReviewEnd, today.AddDate(0, 0, 3), entity.ReviewingDeadlineD3, today)
	dDay := statusWindow(ctx, s.statuses.GetByReviewEnd, today, entity.ReviewingDeadlineDDay, today)
	return iterator.NewComposite[entity.ActivityAlert](d3, dDay)
}

// SelectedVisitStrategy alerts selected users three days before and on the
// day of their scheduled visit.
type SelectedVisitStrategy struct {
	statuses statusAlertStorage
}

func NewSelectedVisitStrategy(statuses statusAlertStorage) *SelectedVisitStrategy {
	return &SelectedVisitStrategy{
		statuses: statuses,
	}
}

func (s *SelectedVisitStrategy) Name() string {
	return "selected-visit"
}

func (s *SelectedVisitStrategy) Generate(ctx context.Context, today time.Time) AlertIterator {
	d3 := statusWindow(ctx, s.statuses.GetByVisitStart, today.AddDate(0, 0, 3), entity.SelectedVisitD3, today)
	dDay := statusWindow(ctx, s.statuses.GetByVisitStart, today, entity.SelectedVisitDDay, today)
	return iterator.NewComposite[entity.ActivityAlert](d3, dDay)
}

type statusFetch func(ctx context.Context, date time.Time, page, size int) ([]entity.CampaignStatus, int, error)

func statusWindow(ctx context.Context, fetch statusFetch, date time.Time, alertType entity.ActivityAlertType, today time.Time) AlertIterator {
	return iterator.NewPaged(
		func(page int) (iterator.Page[entity.CampaignStatus], error) {
			rows, pages, err := fetch(ctx, date, page, iterator.PageSize)
			if err != nil {
				return iterator.Page[entity.CampaignStatus]{}, err
			}
			return iterator.Page[entity.CampaignStatus]{Rows: rows, TotalPages: pages}, nil
		},
		func(st entity.CampaignStatus) entity.ActivityAlert {
			return draft(st.UserID, st.CampaignID, alertType, today)
		},
	)
}
