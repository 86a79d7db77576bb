package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ggorockee/reviewmaps-alerts/internal/domain/common/errorz"
	"github.com/ggorockee/reviewmaps-alerts/internal/domain/entity"
	"github.com/ggorockee/reviewmaps-alerts/pkg/logger/types"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

type deviceStorage interface {
	GetActiveByUser(ctx context.Context, userID uint) ([]entity.FCMDevice, error)
	Deactivate(ctx context.Context, token string) error
}

// Client delivers push messages to all active devices of a user via FCM.
type Client struct {
	httpClient *http.Client
	devices    deviceStorage
	logger     *types.Logger

	endpoint  string
	serverKey string
}

func NewClient(devices deviceStorage, logger *types.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		devices:    devices,
		logger:     logger,
		endpoint:   viper.GetString("service.fcm.endpoint"),
		serverKey:  viper.GetString("service.fcm.server-key"),
	}
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Image string `json:"image,omitempty"`
}

type fcmRequest struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

// Send delivers the message to every active device of the user. The send is
// considered successful if at least one device accepted it.
func (c *Client) Send(ctx context.Context, userID uint, msg entity.PushMessage) error {
	devices, err := c.devices.GetActiveByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("get devices: %w", err)
	}
	if len(devices) == 0 {
		return errorz.ErrNoDevices
	}

	messageID := uuid.New().String()

	var sent int
	for _, device := range devices {
		if errSend := c.sendToToken(ctx, device.FCMToken, messageID, msg); errSend != nil {
			c.logger.Errorf("(user: %d) | message: %s | failed to send to device %d: %v", userID, messageID, device.ID, errSend)
			continue
		}
		sent++
	}

	if sent == 0 {
		return fmt.Errorf("no device accepted message %s", messageID)
	}
	return nil
}

func (c *Client) sendToToken(ctx context.Context, token, messageID string, msg entity.PushMessage) error {
	data := make(map[string]string, len(msg.Data)+1)
	for k, v := range msg.Data {
		data[k] = v
	}
	data["message_id"] = messageID

	body, err := json.Marshal(fcmRequest{
		To: token,
		Notification: fcmNotification{
			Title: msg.Title,
			Body:  msg.Body,
			Image: msg.ImageURL,
		},
		Data: data,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("key=%s", c.serverKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		// Token is dead, stop retrying it on every dispatch run.
		if errDeactivate := c.devices.Deactivate(ctx, token); errDeactivate != nil {
			c.logger.Errorf("failed to deactivate dead token: %v", errDeactivate)
		}
		return fmt.Errorf("token rejected with status %d", resp.StatusCode)
	default:
		return fmt.Errorf("fcm responded with status %d", resp.StatusCode)
	}
}
