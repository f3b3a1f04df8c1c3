// Package mailer is a thin JSON client for the hosted mail-delivery API.
// Delivery itself is an external collaborator; this client only shapes the
// request and reports non-2xx responses as errors.
package mailer

import (
	"bytes"
	"encoding/json"
	"errors"
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

// SendFeedbackInvite emails one recipient a link to the event's feedback
// form.
func (c *Client) SendFeedbackInvite(toEmail, toName, eventTitle, formURL string) error {
	req := SendMessageRequest{
		To:       toEmail,
		ToName:   toName,
		Subject:  "How was " + eventTitle + "? Share your feedback",
		Template: "feedback_invite",
		Vars: map[string]string{
			"name":        toName,
			"event_title": eventTitle,
			"form_url":    formURL,
		},
	}
	return c.send(req)
}

func (c *Client) send(req SendMessageRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequest("POST", c.baseURL+"/v1/messages", bytes.NewBuffer(body))
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
		return errors.New("mailer API returned non-OK status: " + resp.Status)
	}

	var apiResp SendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return err
	}
	if !apiResp.Accepted {
		return errors.New("mailer API rejected the message: " + apiResp.Message)
	}
	return nil
}
