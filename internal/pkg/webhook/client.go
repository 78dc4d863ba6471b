package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var ErrNotConfigured = errors.New("webhook url is not configured")

// Payload is the JSON body posted to the notification function.
type Payload struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	RecipientID string         `json:"recipient_id"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	Data        map[string]any `json:"data,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Client posts notifications to an HTTP function.
type Client struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a resty-backed client. An empty token sends no Authorization header.
func NewClient(url, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	restyClient := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	if token != "" {
		restyClient.SetAuthToken(token)
	}

	return &Client{
		httpClient: restyClient,
		url:        strings.TrimSpace(url),
	}
}

// ClientCredentials configures the OAuth2 client credentials grant for the webhook endpoint.
type ClientCredentials struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

func (cc ClientCredentials) enabled() bool {
	return cc.TokenURL != "" && cc.ClientID != ""
}

// WithClientCredentials replaces the static token with OAuth2 access tokens fetched from cc.TokenURL.
// Tokens are cached until they expire. It is a no-op when cc is incomplete.
func (c *Client) WithClientCredentials(ctx context.Context, cc ClientCredentials) *Client {
	if c == nil || !cc.enabled() {
		return c
	}
	conf := &clientcredentials.Config{
		ClientID:     cc.ClientID,
		ClientSecret: cc.ClientSecret,
		TokenURL:     cc.TokenURL,
		Scopes:       cc.Scopes,
	}
	c.httpClient.Token = ""
	c.httpClient.SetTransport(&oauth2.Transport{
		Source: oauth2.ReuseTokenSource(nil, conf.TokenSource(ctx)),
		Base:   http.DefaultTransport,
	})
	return c
}

func (c *Client) Enabled() bool {
	return c != nil && c.url != ""
}

func (c *Client) Send(ctx context.Context, p Payload) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}

	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(p).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		return fmt.Errorf("webhook error: status=%d, message=%s", resp.StatusCode(), message)
	}
	return nil
}
