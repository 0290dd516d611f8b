// Package notify delivers stock alerts to external channels.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"msana/internal/core/id"
	"msana/internal/domain/stockalert"
	"msana/pkg/logger"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramConfig configures the Telegram notifier.
type TelegramConfig struct {
	BotToken string
	ChatIDs  []string
	Timeout  time.Duration
}

// TelegramNotifier delivers stock alerts via the Telegram Bot API. Each chat
// ID is dispatched independently and every attempt is written to the
// notification log.
type TelegramNotifier struct {
	config TelegramConfig
	client *http.Client
	repo   stockalert.NotificationRepository
	log    *logger.Logger
}

// NewTelegramNotifier creates a Telegram notifier.
func NewTelegramNotifier(config TelegramConfig, repo stockalert.NotificationRepository, log *logger.Logger) *TelegramNotifier {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TelegramNotifier{
		config: config,
		client: &http.Client{Timeout: timeout},
		repo:   repo,
		log:    log.WithComponent("telegram"),
	}
}

// Send formats the alert and dispatches it to every configured chat. A failed
// recipient does not block the rest; the returned error summarizes failures
// and is informational only.
func (n *TelegramNotifier) Send(ctx context.Context, alert stockalert.Alert) error {
	message := formatAlert(alert)
	productID := alert.Product.ID

	if n.config.BotToken == "" || len(n.config.ChatIDs) == 0 {
		n.log.Warnw("telegram not configured, alert logged only",
			"product_id", productID,
			"kind", alert.Kind,
		)
		n.record(ctx, alert, message, "", stockalert.DeliveryPending, "telegram not configured")
		return nil
	}

	var failed []string
	for _, chatID := range n.config.ChatIDs {
		if err := n.sendToChat(ctx, chatID, message); err != nil {
			n.log.Errorw("telegram delivery failed",
				"chat_id", chatID,
				"product_id", productID,
				"error", err,
			)
			n.record(ctx, alert, message, chatID, stockalert.DeliveryFailed, err.Error())
			failed = append(failed, chatID)
			continue
		}
		n.record(ctx, alert, message, chatID, stockalert.DeliverySent, "")
	}

	if len(failed) > 0 {
		return fmt.Errorf("telegram delivery failed for %d of %d chats", len(failed), len(n.config.ChatIDs))
	}
	return nil
}

func (n *TelegramNotifier) sendToChat(ctx context.Context, chatID, message string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", telegramAPIBase, n.config.BotToken)

	form := url.Values{}
	form.Set("chat_id", chatID)
	form.Set("text", message)
	form.Set("parse_mode", "HTML")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiResp struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("telegram responded %d: %s", resp.StatusCode, string(body))
	}
	if !apiResp.OK {
		return errors.New("telegram API error: " + apiResp.Description)
	}
	return nil
}

func (n *TelegramNotifier) record(ctx context.Context, alert stockalert.Alert, message, chatID string, status stockalert.DeliveryStatus, errMsg string) {
	productID := alert.Product.ID
	entry := &stockalert.NotificationLog{
		ID:        id.New(),
		Message:   message,
		ProductID: &productID,
		Type:      alert.Kind,
		Status:    status,
		ChatID:    chatID,
		ErrorMsg:  errMsg,
		CreatedAt: time.Now().UTC(),
	}
	if err := n.repo.Create(ctx, entry); err != nil {
		n.log.Warnw("notification log write failed", "error", err)
	}
}

func formatAlert(alert stockalert.Alert) string {
	p := alert.Product

	if alert.Kind == stockalert.KindOutOfStock {
		return fmt.Sprintf(
			"🚨 <b>OUT OF STOCK</b>\n%s\nSKU: %s\nStock: 0 (min %d)",
			p.DisplayName(), p.SKU, p.MinStock,
		)
	}
	return fmt.Sprintf(
		"⚠️ <b>Low stock</b>\n%s\nSKU: %s\nStock: %d (min %d)",
		p.DisplayName(), p.SKU, p.Stock, p.MinStock,
	)
}
