package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const telegramBaseURL = "https://api.telegram.org"

// TelegramService handles sending notifications to Telegram.
type TelegramService struct {
	client      *resty.Client
	botToken    string
	adminChatID string
	log         *zap.Logger
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string, log *zap.Logger) *TelegramService {
	return &TelegramService{
		client: resty.New().
			SetBaseURL(telegramBaseURL).
			SetTimeout(10 * time.Second).
			SetRetryCount(2),
		botToken:    botToken,
		adminChatID: adminChatID,
		log:         log,
	}
}

// SetBaseURL points the client at another Bot API host.
func (s *TelegramService) SetBaseURL(url string) {
	s.client.SetBaseURL(url)
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		s.log.Debug("telegram bot token not configured")
		return nil
	}

	var res telegramResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(telegramMessage{ChatID: chatID, Text: text, ParseMode: "HTML"}).
		SetResult(&res).
		SetError(&res).
		Post("/bot" + s.botToken + "/sendMessage")
	if err != nil {
		s.log.Warn("failed to send telegram message", zap.Error(err))
		return err
	}

	if resp.IsError() || !res.OK {
		s.log.Warn("unexpected telegram response",
			zap.Int("status", resp.StatusCode()),
			zap.String("description", res.Description),
		)
		return fmt.Errorf("telegram returned status %d: %s", resp.StatusCode(), res.Description)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(ctx context.Context, text string) error {
	if s.adminChatID == "" {
		s.log.Debug("telegram admin chat not configured")
		return nil
	}
	return s.SendMessage(ctx, s.adminChatID, text)
}

// NotifyNewSubscriber tells the admin chat about a newsletter sign-up.
func (s *TelegramService) NotifyNewSubscriber(ctx context.Context, email string) error {
	message := fmt.Sprintf(`<b>🎼 New newsletter subscriber</b>
<b>Email:</b> %s
<b>At:</b> %s`,
		html.EscapeString(email),
		time.Now().UTC().Format(time.RFC1123),
	)
	return s.SendToAdmin(ctx, strings.TrimSpace(message))
}

// NotifyCartsPurged reports a cleanup run that removed abandoned carts.
func (s *TelegramService) NotifyCartsPurged(ctx context.Context, count int64) error {
	if count == 0 {
		return nil
	}
	return s.SendToAdmin(ctx, fmt.Sprintf("<b>🧹 Cart cleanup</b>\nRemoved %d abandoned carts.", count))
}
