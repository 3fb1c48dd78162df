package sdk

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
)

// Client is a minimal API client for the billing service. Checkout is a
// browser redirect flow, so StartCheckout surfaces the redirect target
// instead of following it.
type Client struct {
	BaseURL      string
	SessionToken string
	CookieName   string
	HTTP         *http.Client
}

func New(baseURL, sessionToken string) *Client {
	if baseURL == "" {
		baseURL = "https://billing.example.com"
	}
	return &Client{
		BaseURL:      baseURL,
		SessionToken: sessionToken,
		CookieName:   "session_id",
		HTTP: &http.Client{
			// Redirect targets are the result, not a hop to follow
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *Client) attachSession(req *http.Request) {
	if c.SessionToken != "" {
		req.AddCookie(&http.Cookie{Name: c.CookieName, Value: c.SessionToken})
	}
}

// StartCheckout initiates checkout for a price and returns the redirect
// target: the hosted payment page on success, or the registration or
// pricing page otherwise.
func (c *Client) StartCheckout(priceID string, params map[string]string) (string, error) {
	u, err := url.Parse(c.BaseURL + "/checkout/" + url.PathEscape(priceID))
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequest("GET", u.String(), nil)
	if err != nil {
		return "", err
	}
	c.attachSession(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusSeeOther {
		return "", errors.New("checkout failed: " + resp.Status)
	}
	return resp.Header.Get("Location"), nil
}

// Health reports whether the service is up
func (c *Client) Health() error {
	req, err := http.NewRequest("GET", c.BaseURL+"/v1/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return errors.New("unhealthy: " + resp.Status)
	}
	return nil
}

// Version returns the build information reported by the service
func (c *Client) Version() (map[string]string, error) {
	req, err := http.NewRequest("GET", c.BaseURL+"/v1/version", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
