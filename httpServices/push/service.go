// Package push is a thin JSON client for the hosted push-notification API.
package push

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type notifyRequest struct {
	Topic   string `json:"topic"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	EventID uint   `json:"event_id"`
}

// NotifyFeedbackRequest sends one notification per dispatched invite task.
func (c *Client) NotifyFeedbackRequest(eventID uint, eventTitle string, recipients int) error {
	req := notifyRequest{
		Topic:   "feedback_invites",
		Title:   "Feedback requested",
		Body:    fmt.Sprintf("Feedback invites for %q are going out to %d attendees", eventTitle, recipients),
		EventID: eventID,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequest("POST", c.baseURL+"/v1/notifications", bytes.NewBuffer(body))
	if err != nil {
		return err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return errors.New("push API returned non-OK status: " + resp.Status)
	}
	return nil
}
