package services

import (
	"context"

	"lablinc/httpclient"
	"lablinc/services/logger"
)

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// HTTPSMSSender posts messages to an HTTP SMS gateway.
type HTTPSMSSender struct {
	client *httpclient.Client
	url    string
}

func NewHTTPSMSSender(url, apiKey string, client *httpclient.Client) *HTTPSMSSender {
	if client == nil {
		client = httpclient.New(httpclient.Options{Headers: map[string]string{"X-Api-Key": apiKey}})
	}
	return &HTTPSMSSender{client: client, url: url}
}

type smsRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

func (s *HTTPSMSSender) Send(ctx context.Context, phone, message string) error {
	return s.client.PostJSON(ctx, s.url, smsRequest{To: phone, Message: message}, nil)
}

// LogSMSSender only logs messages. Used when no gateway is configured.
type LogSMSSender struct {
	logger logger.Logger
}

func NewLogSMSSender(log logger.Logger) *LogSMSSender {
	return &LogSMSSender{logger: log}
}

func (s *LogSMSSender) Send(_ context.Context, phone, message string) error {
	s.logger.Info("[sms] to=%s message=%q", phone, message)
	return nil
}
