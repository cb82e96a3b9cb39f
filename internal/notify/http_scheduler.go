package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const eventsPath = "/api/events"

type HTTPScheduler struct {
	baseURL string
	client  *http.Client
}

func NewHTTPScheduler(baseURL string, timeout time.Duration) *HTTPScheduler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPScheduler{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPScheduler) CreateEvent(ctx context.Context, ev Event) (EventRef, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRef{}, fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+eventsPath, bytes.NewReader(payload))
	if err != nil {
		return EventRef{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return EventRef{}, fmt.Errorf("scheduler request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return EventRef{}, fmt.Errorf("read scheduler response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return EventRef{}, fmt.Errorf("scheduler returned status %d", resp.StatusCode)
	}

	var ref EventRef
	if err := json.Unmarshal(body, &ref); err != nil {
		return EventRef{}, fmt.Errorf("decode scheduler response: %w", err)
	}
	return ref, nil
}
