package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	twapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/iliyamo/parkseva/internal/config"
)

// Sender delivers a text message to a phone number.  The returned map is
// the provider's decoded response.
type Sender interface {
	Configured() bool
	Send(ctx context.Context, to, message string) (map[string]any, error)
}

// SMSSender sends SMS through the Twilio Messages API.
type SMSSender struct {
	AccountSID string
	AuthToken  string
	From       string
	// BaseURL overrides the API host, for Twilio-compatible gateways and
	// tests.  Empty means api.twilio.com.
	BaseURL string
	Client  *http.Client
}

// NewSMSSender builds a sender from the notification config.
func NewSMSSender(cfg config.NotifyConfig) *SMSSender {
	return &SMSSender{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		From:       cfg.TwilioFrom,
		BaseURL:    strings.TrimRight(cfg.TwilioBaseURL, "/"),
		Client:     &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

func (s *SMSSender) Configured() bool {
	return s.AccountSID != "" && s.AuthToken != "" && s.From != ""
}

// Send creates a message resource.  The twilio client has no context
// parameter, so each call gets a client whose transport carries ctx.
func (s *SMSSender) Send(ctx context.Context, to, message string) (map[string]any, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("sms: %w", ErrNotConfigured)
	}
	rest, err := s.rest(ctx)
	if err != nil {
		return nil, fmt.Errorf("sms: %w", err)
	}

	params := &twapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.From)
	params.SetBody(message)

	msg, err := rest.Api.CreateMessage(params)
	if err != nil {
		var te *twclient.TwilioRestError
		if errors.As(err, &te) && te.Message != "" {
			return nil, fmt.Errorf("sms: %s", te.Message)
		}
		return nil, fmt.Errorf("sms: %w", err)
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("sms: encode response: %w", err)
	}
	result := map[string]any{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("sms: decode response: %w", err)
	}
	return result, nil
}

func (s *SMSSender) rest(ctx context.Context) (*twilio.RestClient, error) {
	hc := &http.Client{}
	var next http.RoundTripper = http.DefaultTransport
	if s.Client != nil {
		hc.Timeout = s.Client.Timeout
		if s.Client.Transport != nil {
			next = s.Client.Transport
		}
	}
	rt := &requestRewriter{ctx: ctx, next: next}
	if s.BaseURL != "" {
		u, err := url.Parse(s.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("bad base url: %w", err)
		}
		rt.base = u
	}
	hc.Transport = rt

	c := &twclient.Client{
		Credentials: twclient.NewCredentials(s.AccountSID, s.AuthToken),
		HTTPClient:  hc,
	}
	c.SetAccountSid(s.AccountSID)
	return twilio.NewRestClientWithParams(twilio.ClientParams{Client: c}), nil
}

// requestRewriter binds outgoing requests to ctx and, when base is set,
// points them at another host.
type requestRewriter struct {
	ctx  context.Context
	base *url.URL
	next http.RoundTripper
}

func (t *requestRewriter) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(t.ctx)
	if t.base != nil {
		r.URL.Scheme = t.base.Scheme
		r.URL.Host = t.base.Host
		r.URL.Path = strings.TrimRight(t.base.Path, "/") + r.URL.Path
		r.Host = t.base.Host
	}
	return t.next.RoundTrip(r)
}
