package notifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var fastJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Telegram is a stateless sink posting to the Bot API's sendMessage
// endpoint. No Telegram SDK appears anywhere in the dependency corpus this
// project is grounded on, so this is a direct net/http POST, matching the
// corpus's pattern for other hand-rolled external senders.
type Telegram struct {
	BotToken string
	Client   *http.Client
}

func NewTelegram(botToken string) *Telegram {
	return &Telegram{BotToken: botToken, Client: &http.Client{Timeout: 10 * time.Second}}
}

type telegramSendRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

func (t *Telegram) Send(ctx context.Context, chatID, message string) error {
	body, err := fastJSON.Marshal(telegramSendRequest{ChatID: chatID, Text: message})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("telegram: unexpected status %d", resp.StatusCode)
	}
	return nil
}
