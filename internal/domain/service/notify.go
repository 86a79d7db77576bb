package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ggorockee/reviewmaps-alerts/internal/domain/entity"
	"github.com/ggorockee/reviewmaps-alerts/pkg/logger/types"
)

type pushSender interface {
	Send(ctx context.Context, userID uint, msg entity.PushMessage) error
}

// NotifyService composes push messages for both alert families and hands
// them to the push delivery collaborator.
type NotifyService struct {
	sender pushSender
	logger *types.Logger
}

func NewNotifyService(sender pushSender, logger *types.Logger) *NotifyService {
	return &NotifyService{
		sender: sender,
		logger: logger,
	}
}

// SendActivityAlert renders the alert into a push message and sends it to
// the alert's user. The alert must carry its Campaign relation.
func (s *NotifyService) SendActivityAlert(ctx context.Context, alert entity.ActivityAlert) error {
	body, err := alert.AlertType.Render(alert.Campaign.Title)
	if err != nil {
		return err
	}

	msg := entity.PushMessage{
		Title:    alert.AlertType.Category(),
		Body:     body,
		ImageURL: alert.Campaign.ImageURL,
		Data: map[string]string{
			"alert_type":     string(alert.AlertType),
			"d_day":          alert.AlertType.DDayLabel(),
			"campaign_id":    strconv.FormatUint(uint64(alert.CampaignID), 10),
			"campaign_title": alert.Campaign.Title,
			"action":         "campaign_detail",
		},
	}
	return s.sender.Send(ctx, alert.UserID, msg)
}

// SendKeywordAlert sends the staged keyword notification. countText is the
// already-bucketed count ("10+", "100+", exact below the low threshold).
func (s *NotifyService) SendKeywordAlert(ctx context.Context, alert entity.KeywordCampaignAlert, countText string) error {
	msg := entity.PushMessage{
		Title: "키워드 알림",
		Body:  fmt.Sprintf("『%s』 키워드의 새 캠페인이 %s개 등록됐어요!", alert.Keyword, countText),
		Data: map[string]string{
			"keyword": alert.Keyword,
			"count":   countText,
			"stage":   strconv.Itoa(alert.Stage),
			"action":  "keyword_campaign_list",
		},
	}
	return s.sender.Send(ctx, alert.UserID, msg)
}
