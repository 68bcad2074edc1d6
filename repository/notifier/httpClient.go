package notifier

import (
	"context"
	"fmt"
	"net/http"

	"bagrental/util/httpx"
)

type httpSender struct {
	url    string
	apiKey string
	from   string
	client *http.Client
}

// NewHTTP posts messages as JSON to a transactional mail API with a bearer key.
func NewHTTP(url, apiKey, from string) Sender {
	return &httpSender{url: url, apiKey: apiKey, from: from, client: httpx.Client()}
}

type mailBody struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (s *httpSender) Send(ctx context.Context, m Message) error {
	err := httpx.PostJSON(ctx, s.client, s.url, s.apiKey, mailBody{
		From:    s.from,
		To:      []string{m.To},
		Subject: m.Subject,
		HTML:    m.HTML,
	})
	if err != nil {
		return fmt.Errorf("mail send failed: %w", err)
	}
	return nil
}
