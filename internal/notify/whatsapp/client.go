// Package whatsapp sends text messages through an HTTP messaging gateway.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrEmptyRecipient = errors.New("whatsapp: recipient phone is empty")

type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	RetryCount int
}

type Client struct {
	http *resty.Client
}

type sendRequest struct {
	To      string `json:"to"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type sendResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= 500
		}).
		SetAuthToken(cfg.Token).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: client}
}

// SendText delivers message to phone and returns the gateway message id.
func (c *Client) SendText(ctx context.Context, phone, message string) (string, error) {
	to := NormalizePhone(phone)
	if to == "" {
		return "", ErrEmptyRecipient
	}

	var result sendResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sendRequest{To: to, Type: "text", Message: message}).
		SetResult(&result).
		SetError(&result).
		Post("/messages")
	if err != nil {
		return "", fmt.Errorf("whatsapp: send message: %w", err)
	}
	if resp.IsError() {
		detail := strings.TrimSpace(result.Message)
		if detail == "" {
			detail = resp.Status()
		}
		return "", fmt.Errorf("whatsapp: gateway returned %d: %s", resp.StatusCode(), detail)
	}
	return result.ID, nil
}

// NormalizePhone strips everything but digits, keeping a leading plus.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	if b.Len() == 1 && strings.HasPrefix(b.String(), "+") {
		return ""
	}
	return b.String()
}
