package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ggorockee/reviewmaps-alerts/internal/domain/common/errorz"
	"github.com/ggorockee/reviewmaps-alerts/internal/domain/entity"
	"github.com/ggorockee/reviewmaps-alerts/pkg/logger/types"
	"go.uber.org/zap"
)

func testLogger() *types.Logger {
	return &types.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dedupKey(a entity.ActivityAlert) string {
	return fmt.Sprintf("%d:%d:%s:%s", a.UserID, a.CampaignID, a.AlertType, a.AlertDate.Format("2006-01-02"))
}

// fakeAlertStore enforces the same dedup index as the real table.
type fakeAlertStore struct {
	alerts []entity.ActivityAlert
	nextID uint
	failOn map[string]error
}

func newFakeAlertStore() *fakeAlertStore {
	return &fakeAlertStore{failOn: map[string]error{}}
}

func (s *fakeAlertStore) Create(_ context.Context, alert *entity.ActivityAlert) error {
	key := dedupKey(*alert)
	if err, ok := s.failOn[key]; ok {
		delete(s.failOn, key)
		return err
	}
	for _, existing := range s.alerts {
		if dedupKey(existing) == key {
			return errorz.ErrAlertExists
		}
	}
	s.nextID++
	alert.ID = s.nextID
	s.alerts = append(s.alerts, *alert)
	return nil
}

func (s *fakeAlertStore) GetPending(context.Context) ([]entity.ActivityAlert, error) {
	var pending []entity.ActivityAlert
	for _, a := range s.alerts {
		if a.Stage == entity.StagePending && a.IsVisible {
			pending = append(pending, a)
		}
	}
	return pending, nil
}

func (s *fakeAlertStore) MarkNotified(_ context.Context, id uint) error {
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts[i].Stage = entity.StageSent
		}
	}
	return nil
}

func (s *fakeAlertStore) MarkRead(_ context.Context, userID uint, ids []uint) error {
	for i := range s.alerts {
		if s.alerts[i].UserID != userID {
			continue
		}
		for _, id := range ids {
			if s.alerts[i].ID == id {
				s.alerts[i].IsRead = true
			}
		}
	}
	return nil
}

func (s *fakeAlertStore) Hide(_ context.Context, userID uint, ids []uint) error {
	for i := range s.alerts {
		if s.alerts[i].UserID != userID {
			continue
		}
		for _, id := range ids {
			if s.alerts[i].ID == id {
				s.alerts[i].IsVisible = false
			}
		}
	}
	return nil
}

type fakeBookmarks struct {
	bookmarks []entity.Bookmark
}

func (s *fakeBookmarks) GetActiveByApplyEnd(_ context.Context, applyEnd time.Time, page, size int) ([]entity.Bookmark, int, error) {
	var matched []entity.Bookmark
	for _, b := range s.bookmarks {
		if b.IsActive && b.Campaign.IsActive && b.Campaign.ApplyEndAt.Equal(applyEnd) {
			matched = append(matched, b)
		}
	}
	return paginate(matched, page, size)
}

type fakeStatuses struct {
	statuses []entity.CampaignStatus
}

func (s *fakeStatuses) GetByReviewerAnnouncement(_ context.Context, d time.Time, page, size int) ([]entity.CampaignStatus, int, error) {
	return s.filter(entity.StatusApply, func(st entity.CampaignStatus) *time.Time { return st.ReviewerAnnouncementAt }, d, page, size)
}

func (s *fakeStatuses) GetByReviewEnd(_ context.Context, d time.Time, page, size int) ([]entity.CampaignStatus, int, error) {
	return s.filter(entity.StatusReviewing, func(st entity.CampaignStatus) *time.Time { return st.ReviewEndAt }, d, page, size)
}

func (s *fakeStatuses) GetByVisitStart(_ context.Context, d time.Time, page, size int) ([]entity.CampaignStatus, int, error) {
	return s.filter(entity.StatusSelected, func(st entity.CampaignStatus) *time.Time { return st.VisitStartAt }, d, page, size)
}

func (s *fakeStatuses) filter(status entity.StatusType, field func(entity.CampaignStatus) *time.Time, d time.Time, page, size int) ([]entity.CampaignStatus, int, error) {
	var matched []entity.CampaignStatus
	for _, st := range s.statuses {
		if st.Status == status && field(st) != nil && field(st).Equal(d) {
			matched = append(matched, st)
		}
	}
	return paginate(matched, page, size)
}

func paginate[T any](rows []T, page, size int) ([]T, int, error) {
	start := page * size
	if start > len(rows) {
		start = len(rows)
	}
	end := min(start+size, len(rows))
	pages := (len(rows) + size - 1) / size
	return rows[start:end], pages, nil
}

type fakeSender struct {
	sends   []uint
	failFor map[uint]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{failFor: map[uint]bool{}}
}

func (s *fakeSender) Send(_ context.Context, userID uint, _ entity.PushMessage) error {
	if s.failFor[userID] {
		return errors.New("device unreachable")
	}
	s.sends = append(s.sends, userID)
	return nil
}

func newTestAlertService(store *fakeAlertStore, sender *fakeSender, strategies ...AlertStrategy) *AlertService {
	notify := NewNotifyService(sender, testLogger())
	return NewAlertService(store, notify, testLogger(), strategies...)
}

func TestRunScanCreatesBookmarkD1Alert(t *testing.T) {
	today := date(2026, 3, 10)
	bookmarks := &fakeBookmarks{bookmarks: []entity.Bookmark{{
		UserID:     1,
		CampaignID: 7,
		IsActive:   true,
		Campaign:   entity.Campaign{ID: 7, Title: "맛집 체험", IsActive: true, ApplyEndAt: today.AddDate(0, 0, 1)},
	}}}

	store := newFakeAlertStore()
	svc := newTestAlertService(store, newFakeSender(), NewBookmarkStrategy(bookmarks))

	created, err := svc.RunScan(context.Background(), today)
	if err != nil {
		t.Fatalf("RunScan failed: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 created alert, got %d", created)
	}

	alert := store.alerts[0]
	if alert.AlertType != entity.BookmarkDeadlineD1 {
		t.Fatalf("expected BOOKMARK_DEADLINE_D1, got %s", alert.AlertType)
	}
	if alert.UserID != 1 || alert.CampaignID != 7 {
		t.Fatalf("wrong target: user %d campaign %d", alert.UserID, alert.CampaignID)
	}
	if !alert.AlertDate.Equal(today) {
		t.Fatalf("expected alert date %s, got %s", today, alert.AlertDate)
	}
	if alert.Stage != entity.StagePending || !alert.IsVisible || alert.IsRead {
		t.Fatalf("wrong initial state: stage=%d visible=%v read=%v", alert.Stage, alert.IsVisible, alert.IsRead)
	}
}

func TestRunScanProcessesWindowsInOrder(t *testing.T) {
	today := date(2026, 3, 10)
	bookmarks := &fakeBookmarks{bookmarks: []entity.Bookmark{
		{UserID: 2, CampaignID: 20, IsActive: true, Campaign: entity.Campaign{ID: 20, IsActive: true, ApplyEndAt: today}},
		{UserID: 1, CampaignID: 10, IsActive: true, Campaign: entity.Campaign{ID: 10, IsActive: true, ApplyEndAt: today.AddDate(0, 0, 1)}},
	}}

	store := newFakeAlertStore()
	svc := newTestAlertService(store, newFakeSender(), NewBookmarkStrategy(bookmarks))

	if _, err := svc.RunScan(context.Background(), today); err != nil {
		t.Fatalf("RunScan failed: %v", err)
	}
	if len(store.alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(store.alerts))
	}
	// D-1 window is declared before D-Day and must be drained first.
	if store.alerts[0].AlertType != entity.BookmarkDeadlineD1 || store.alerts[1].AlertType != entity.BookmarkDeadlineDDay {
		t.Fatalf("wrong order: %s, %s", store.alerts[0].AlertType, store.alerts[1].AlertType)
	}
}

func TestRunScanIdempotent(t *testing.T) {
	today := date(2026, 3, 10)
	d3 := today.AddDate(0, 0, 3)
	statuses := &fakeStatuses{statuses: []entity.CampaignStatus{
		{UserID: 1, CampaignID: 5, Status: entity.StatusApply, ReviewerAnnouncementAt: &today},
		{UserID: 2, CampaignID: 6, Status: entity.StatusReviewing, ReviewEndAt: &d3},
		{UserID: 3, CampaignID: 7, Status: entity.StatusSelected, VisitStartAt: &today},
	}}

	store := newFakeAlertStore()
	svc := newTestAlertService(store, newFakeSender(),
		NewApplyResultStrategy(statuses),
		NewReviewingStrategy(statuses),
		NewSelectedVisitStrategy(statuses),
	)

	created, err := svc.RunScan(context.Background(), today)
	if err != nil {
		t.Fatalf("first RunScan failed: %v", err)
	}
	if created != 3 {
		t.Fatalf("expected 3 created alerts, got %d", created)
	}

	created, err = svc.RunScan(context.Background(), today)
	if err != nil {
		t.Fatalf("second RunScan failed: %v", err)
	}
	if created != 0 {
		t.Fatalf("expected rerun to create nothing, got %d", created)
	}
	if len(store.alerts) != 3 {
		t.Fatalf("expected 3 alerts total after rerun, got %d", len(store.alerts))
	}
}

func TestRunScanContinuesAfterPersistFailure(t *testing.T) {
	today := date(2026, 3, 10)
	bookmarks := &fakeBookmarks{bookmarks: []entity.Bookmark{
		{UserID: 1, CampaignID: 10, IsActive: true, Campaign: entity.Campaign{ID: 10, IsActive: true, ApplyEndAt: today}},
		{UserID: 2, CampaignID: 10, IsActive: true, Campaign: entity.Campaign{ID: 10, IsActive: true, ApplyEndAt: today}},
	}}

	store := newFakeAlertStore()
	store.failOn[fmt.Sprintf("1:10:%s:%s", entity.BookmarkDeadlineDDay, today.Format("2006-01-02"))] = errors.New("connection reset")

	svc := newTestAlertService(store, newFakeSender(), NewBookmarkStrategy(bookmarks))

	created, err := svc.RunScan(context.Background(), today)
	if err != nil {
		t.Fatalf("RunScan failed: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected the second draft to survive the first one's failure, got %d created", created)
	}

	// The failed row is picked up by the idempotent rerun.
	created, err = svc.RunScan(context.Background(), today)
	if err != nil {
		t.Fatalf("rerun failed: %v", err)
	}
	if created != 1 || len(store.alerts) != 2 {
		t.Fatalf("expected rerun to backfill 1 alert, got created=%d total=%d", created, len(store.alerts))
	}
}

// flakyBookmarks fails the page fetch for one apply-end date and behaves
// like fakeBookmarks otherwise.
type flakyBookmarks struct {
	fakeBookmarks
	failOn time.Time
}

func (s *flakyBookmarks) GetActiveByApplyEnd(ctx context.Context, applyEnd time.Time, page, size int) ([]entity.Bookmark, int, error) {
	if applyEnd.Equal(s.failOn) {
		return nil, 0, errors.New("connection reset")
	}
	return s.fakeBookmarks.GetActiveByApplyEnd(ctx, applyEnd, page, size)
}

func TestRunScanAbandonsStrategyOnFetchFailure(t *testing.T) {
	today := date(2026, 3, 10)
	bookmarks := &flakyBookmarks{
		fakeBookmarks: fakeBookmarks{bookmarks: []entity.Bookmark{
			{UserID: 1, CampaignID: 10, IsActive: true, Campaign: entity.Campaign{ID: 10, IsActive: true, ApplyEndAt: today.AddDate(0, 0, 1)}},
			{UserID: 2, CampaignID: 11, IsActive: true, Campaign: entity.Campaign{ID: 11, IsActive: true, ApplyEndAt: today}},
		}},
		failOn: today, // the D-Day window's fetch breaks mid-strategy
	}
	statuses := &fakeStatuses{statuses: []entity.CampaignStatus{
		{UserID: 3, CampaignID: 12, Status: entity.StatusApply, ReviewerAnnouncementAt: &today},
	}}

	store := newFakeAlertStore()
	svc := newTestAlertService(store, newFakeSender(), NewBookmarkStrategy(bookmarks), NewApplyResultStrategy(statuses))

	created, err := svc.RunScan(context.Background(), today)
	if err != nil {
		t.Fatalf("RunScan failed: %v", err)
	}
	// The D-1 window drained before the failure, the broken D-Day window is
	// abandoned, and the second strategy still runs.
	if created != 2 {
		t.Fatalf("expected 2 created alerts, got %d", created)
	}
	gotTypes := map[entity.ActivityAlertType]bool{}
	for _, a := range store.alerts {
		gotTypes[a.AlertType] = true
	}
	if !gotTypes[entity.BookmarkDeadlineD1] || !gotTypes[entity.ApplyResultDDay] {
		t.Fatalf("wrong alert types survived the failure: %v", gotTypes)
	}
	if gotTypes[entity.BookmarkDeadlineDDay] {
		t.Fatal("the failed window must not produce alerts")
	}
}

func TestDispatchHidesMalformedAlert(t *testing.T) {
	today := date(2026, 3, 10)
	store := newFakeAlertStore()
	broken := entity.ActivityAlert{
		UserID: 1, CampaignID: 10,
		AlertType: "RETIRED_ALERT_TYPE", AlertDate: today,
		Stage: entity.StagePending, IsVisible: true,
		Campaign: entity.Campaign{ID: 10, Title: "카페 체험"},
	}
	healthy := entity.ActivityAlert{
		UserID: 2, CampaignID: 10,
		AlertType: entity.BookmarkDeadlineDDay, AlertDate: today,
		Stage: entity.StagePending, IsVisible: true,
		Campaign: entity.Campaign{ID: 10, Title: "카페 체험"},
	}
	for _, a := range []entity.ActivityAlert{broken, healthy} {
		if err := store.Create(context.Background(), &a); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	sender := newFakeSender()
	svc := newTestAlertService(store, sender)

	sent, failed, err := svc.DispatchPending(context.Background())
	if err != nil {
		t.Fatalf("DispatchPending failed: %v", err)
	}
	if sent != 1 || failed != 1 {
		t.Fatalf("expected 1 sent / 1 failed, got %d / %d", sent, failed)
	}
	if store.alerts[0].IsVisible {
		t.Fatal("malformed alert must be hidden, not left pending")
	}

	// The next run has nothing left to retry.
	sent, failed, err = svc.DispatchPending(context.Background())
	if err != nil {
		t.Fatalf("second DispatchPending failed: %v", err)
	}
	if sent != 0 || failed != 0 {
		t.Fatalf("expected an empty second run, got %d / %d", sent, failed)
	}
}

func TestDispatchRetrySafety(t *testing.T) {
	today := date(2026, 3, 10)
	store := newFakeAlertStore()
	campaign := entity.Campaign{ID: 10, Title: "카페 체험", IsActive: true}
	for _, userID := range []uint{1, 2} {
		alert := entity.ActivityAlert{
			UserID: userID, CampaignID: 10,
			AlertType: entity.BookmarkDeadlineDDay, AlertDate: today,
			Stage: entity.StagePending, IsVisible: true,
			Campaign: campaign,
		}
		if err := store.Create(context.Background(), &alert); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	sender := newFakeSender()
	sender.failFor[2] = true
	svc := newTestAlertService(store, sender)

	sent, failed, err := svc.DispatchPending(context.Background())
	if err != nil {
		t.Fatalf("DispatchPending failed: %v", err)
	}
	if sent != 1 || failed != 1 {
		t.Fatalf("expected 1 sent / 1 failed, got %d / %d", sent, failed)
	}
	if store.alerts[0].Stage != entity.StageSent {
		t.Fatal("successful alert should be stage 1")
	}
	if store.alerts[1].Stage != entity.StagePending {
		t.Fatal("failed alert must stay stage 0 for retry")
	}

	// Next run retries only the failed alert.
	sender.failFor = map[uint]bool{}
	sent, failed, err = svc.DispatchPending(context.Background())
	if err != nil {
		t.Fatalf("second DispatchPending failed: %v", err)
	}
	if sent != 1 || failed != 0 {
		t.Fatalf("expected 1 sent / 0 failed on retry, got %d / %d", sent, failed)
	}
	if len(sender.sends) != 2 {
		t.Fatalf("expected 2 total sends, got %d (alert re-sent after success?)", len(sender.sends))
	}
}

func TestMarkReadAndDelete(t *testing.T) {
	today := date(2026, 3, 10)
	store := newFakeAlertStore()
	alert := entity.ActivityAlert{
		UserID: 1, CampaignID: 10,
		AlertType: entity.BookmarkDeadlineDDay, AlertDate: today,
		Stage: entity.StagePending, IsVisible: true,
	}
	if err := store.Create(context.Background(), &alert); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	svc := newTestAlertService(store, newFakeSender())
	ctx := context.Background()

	if err := svc.MarkRead(ctx, 1, nil); err != nil {
		t.Fatalf("empty MarkRead should be a no-op, got %v", err)
	}

	if err := svc.MarkRead(ctx, 1, []uint{alert.ID}); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if !store.alerts[0].IsRead {
		t.Fatal("alert should be read")
	}
	// Repeating is a no-op.
	if err := svc.MarkRead(ctx, 1, []uint{alert.ID}); err != nil {
		t.Fatalf("repeated MarkRead failed: %v", err)
	}

	// Another user can not touch the alert.
	if err := svc.Delete(ctx, 2, []uint{alert.ID}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !store.alerts[0].IsVisible {
		t.Fatal("alert of another user must stay visible")
	}

	if err := svc.Delete(ctx, 1, []uint{alert.ID}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.alerts[0].IsVisible {
		t.Fatal("alert should be hidden")
	}
}
