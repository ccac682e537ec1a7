package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nurseryhub/nursery-api/pkg/httpclient"
	"github.com/nurseryhub/nursery-api/pkg/logger"
	"go.uber.org/zap"
)

// Event is the JSON body posted to a trigger URL
type Event struct {
	Type       string    `json:"type"`
	RecordID   string    `json:"recordId"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data,omitempty"`
}

// Call posts event to triggerURL and returns an error for transport failures or non-2xx replies.
func Call(ctx context.Context, triggerURL string, event Event, httpClient httpclient.Client) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode trigger event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, triggerURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build trigger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call trigger URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("trigger URL returned status %d", resp.StatusCode)
	}
	return nil
}

// CallAsync posts the event in a goroutine. Failures are logged and never block the caller.
// An empty URL disables the trigger.
func CallAsync(triggerURL string, event Event, httpClient httpclient.Client) {
	if triggerURL == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := Call(ctx, triggerURL, event, httpClient); err != nil {
			logger.Error("Failed to call trigger URL",
				zap.Error(err),
				zap.String("event", event.Type),
				zap.String("record_id", event.RecordID))
			return
		}

		logger.Info("Trigger URL called successfully",
			zap.String("event", event.Type),
			zap.String("record_id", event.RecordID))
	}()
}
