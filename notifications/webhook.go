package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"taskflow-project/taskflow-service/logging"
)

// WebhookForwarder pushes published events to an external HTTP endpoint.
// Delivery is fire-and-forget: every failure is swallowed and logged, and a
// circuit breaker stops hammering an endpoint that keeps failing.
type WebhookForwarder struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewWebhookForwarder(url string) *WebhookForwarder {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notifications-webhook-cb",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
	return &WebhookForwarder{
		url:     url,
		client:  &http.Client{Timeout: 5 * time.Second},
		breaker: breaker,
	}
}

// Handle is an EventCallback; wire it with NotificationService.Subscribe.
func (f *WebhookForwarder) Handle(event Event) {
	_, err := f.breaker.Execute(func() (interface{}, error) {
		body, err := json.Marshal(event)
		if err != nil {
			return nil, err
		}
		resp, err := f.client.Post(f.url, "application/json", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		logging.Logger.Warnf("Event ID: WEBHOOK_FORWARD_FAILED, Description: Failed to forward %s event: %v", event.EventType, err)
	}
}
