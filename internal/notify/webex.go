package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sunieldevarapu/deployment-scheduler/internal/config"
)

// Webex posts markdown messages to a Webex room.
type Webex struct {
	cfg        config.Webex
	HTTPClient *http.Client // optional; nil uses http.DefaultClient
}

func NewWebex(cfg config.Webex, httpClient *http.Client) *Webex {
	return &Webex{cfg: cfg, HTTPClient: httpClient}
}

func (w *Webex) client() *http.Client {
	if w.HTTPClient != nil {
		return w.HTTPClient
	}
	return http.DefaultClient
}

func (w *Webex) Post(ctx context.Context, markdown string) error {
	payload, err := json.Marshal(map[string]string{
		"roomId":   w.cfg.RoomID,
		"markdown": markdown,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+w.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webex post: status %d", resp.StatusCode)
	}
	return nil
}
