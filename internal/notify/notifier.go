// Package notify implements spec §4.6: a single NotificationWorker that
// consumes notifQ, applies a per-camera debounce, and delivers via a
// pluggable Notifier. Grounded on the Python predecessor's
// notifications/telegram.py (debounce map, best-effort delivery, no
// retry) and the net/http multipart-upload idiom from the wider example
// pack's telegram client.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/brightloop/camwatch/internal/mediastore"
	"github.com/brightloop/camwatch/internal/models"
	"github.com/brightloop/camwatch/internal/observability"
	"github.com/brightloop/camwatch/internal/queue"
)

// Notifier delivers one rendered notification. Implementations must be
// best-effort: the worker never retries a failed Send.
type Notifier interface {
	Send(ctx context.Context, message string, photo []byte) error
}

const httpTimeout = 10 * time.Second

// TelegramNotifier posts to the Bot API's sendPhoto/sendMessage endpoints,
// matching the predecessor's choice between a photo-caption message and a
// text-only message depending on whether a crop file exists.
type TelegramNotifier struct {
	token  string
	chatID string
	client *http.Client
}

func NewTelegramNotifier(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{token: token, chatID: chatID, client: &http.Client{Timeout: httpTimeout}}
}

func (t *TelegramNotifier) Send(ctx context.Context, message string, photo []byte) error {
	if len(photo) == 0 {
		return t.sendMessage(ctx, message)
	}
	return t.sendPhoto(ctx, message, photo)
}

func (t *TelegramNotifier) sendMessage(ctx context.Context, message string) error {
	body, err := json.Marshal(map[string]string{"chat_id": t.chatID, "text": message})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return t.do(req)
}

func (t *TelegramNotifier) sendPhoto(ctx context.Context, caption string, photo []byte) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("chat_id", t.chatID); err != nil {
		return err
	}
	if err := mw.WriteField("caption", caption); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("photo", "event.jpg")
	if err != nil {
		return err
	}
	if _, err := part.Write(photo); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL("sendPhoto"), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return t.do(req)
}

func (t *TelegramNotifier) do(req *http.Request) error {
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram api: status %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

func (t *TelegramNotifier) apiURL(method string) string {
	return fmt.Sprintf("https://api.telegram.org/bot%s/%s", t.token, method)
}
