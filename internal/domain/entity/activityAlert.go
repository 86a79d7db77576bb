package entity

import (
	"fmt"
	"time"

	"github.com/ggorockee/reviewmaps-alerts/internal/domain/common/errorz"
)

type ActivityAlertType string

const (
	BookmarkDeadlineD1    ActivityAlertType = "BOOKMARK_DEADLINE_D1"
	BookmarkDeadlineDDay  ActivityAlertType = "BOOKMARK_DEADLINE_DDAY"
	ApplyResultDDay       ActivityAlertType = "APPLY_RESULT_DDAY"
	SelectedVisitD3       ActivityAlertType = "SELECTED_VISIT_D3"
	SelectedVisitDDay     ActivityAlertType = "SELECTED_VISIT_DDAY"
	ReviewingDeadlineD3   ActivityAlertType = "REVIEWING_DEADLINE_D3"
	ReviewingDeadlineDDay ActivityAlertType = "REVIEWING_DEADLINE_DDAY"
)

// Alert stages
const (
	StagePending = 0
	StageSent    = 1
)

type alertTypeInfo struct {
	category string
	dDay     string
	template string
}

// Every alert type carries its push title category, day-offset label and
// body template. Adding a type means adding a row here.
var alertTypes = map[ActivityAlertType]alertTypeInfo{
	BookmarkDeadlineD1:    {category: "신청 마감", dDay: "D-1", template: "찜한 『%s』 체험단 신청 마감이 하루 남았어요!"},
	BookmarkDeadlineDDay:  {category: "신청 마감", dDay: "D-Day", template: "찜한 『%s』 체험단 신청이 오늘 마감돼요!"},
	ApplyResultDDay:       {category: "선정 발표", dDay: "D-Day", template: "『%s』 체험단 선정 결과가 오늘 발표돼요!"},
	SelectedVisitD3:       {category: "방문 일정", dDay: "D-3", template: "『%s』 체험단 방문일이 3일 남았어요!"},
	SelectedVisitDDay:     {category: "방문 일정", dDay: "D-Day", template: "『%s』 체험단 방문일이 오늘이에요!"},
	ReviewingDeadlineD3:   {category: "리뷰 마감", dDay: "D-3", template: "『%s』 리뷰 등록 마감이 3일 남았어요!"},
	ReviewingDeadlineDDay: {category: "리뷰 마감", dDay: "D-Day", template: "『%s』 리뷰 등록 마감이 오늘이에요!"},
}

func (t ActivityAlertType) Valid() bool {
	_, ok := alertTypes[t]
	return ok
}

// Category returns the push title for the alert type.
func (t ActivityAlertType) Category() string {
	return alertTypes[t].category
}

// DDayLabel returns the day-offset label ("D-1", "D-Day", "D-3").
func (t ActivityAlertType) DDayLabel() string {
	return alertTypes[t].dDay
}

// Render formats the push body for the given campaign title. A type without
// a template is a programming defect, surfaced as ErrUnknownAlertType.
func (t ActivityAlertType) Render(campaignTitle string) (string, error) {
	info, ok := alertTypes[t]
	if !ok || info.template == "" {
		return "", fmt.Errorf("%w: %s", errorz.ErrUnknownAlertType, string(t))
	}
	return fmt.Sprintf(info.template, campaignTitle), nil
}

// ActivityAlert is one generated notification for a (user, campaign) pair.
// The dedup index makes re-running a day's scan idempotent: a second insert
// of the same (user, campaign, type, date) tuple is rejected by the database
// and treated as already generated.
type ActivityAlert struct {
	ID         uint              `gorm:"primaryKey"`
	UserID     uint              `gorm:"not null;uniqueIndex:idx_activity_alert_dedup"`
	CampaignID uint              `gorm:"not null;uniqueIndex:idx_activity_alert_dedup"`
	AlertType  ActivityAlertType `gorm:"size:40;not null;uniqueIndex:idx_activity_alert_dedup"`
	AlertDate  time.Time         `gorm:"type:date;not null;uniqueIndex:idx_activity_alert_dedup"`

	Stage     int  `gorm:"not null;default:0;index"`
	IsVisible bool `gorm:"not null;default:true"`
	IsRead    bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time

	User     User     `gorm:"foreignKey:UserID"`
	Campaign Campaign `gorm:"foreignKey:CampaignID"`
}

func (ActivityAlert) TableName() string {
	return "activity_alerts"
}
