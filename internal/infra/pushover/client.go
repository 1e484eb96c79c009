package pushover

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"espresso-log/internal/domain"
	"espresso-log/internal/infra"
)

// Client pushes change notifications and command outcomes to the user's
// phone. Both paths are best-effort; callers log failures and move on.
type Client struct {
	token      string
	userKey    string
	httpClient *http.Client
}

func NewClient(token, userKey string) *Client {
	return &Client{
		token:      token,
		userKey:    userKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

var changeTitles = map[domain.ChangeType]string{
	domain.ChangeShotLogged:     "Shot logged",
	domain.ChangeShotUpdated:    "Shot updated",
	domain.ChangeBeanAdded:      "Bean added",
	domain.ChangeBagAdded:       "Bag opened",
	domain.ChangeEquipmentAdded: "Equipment added",
	domain.ChangeProfileAdded:   "Profile added",
}

func (c *Client) Notify(ctx context.Context, change domain.ChangeType, entity string) error {
	title, ok := changeTitles[change]
	if !ok {
		title = "Espresso Log"
	}
	return c.send(ctx, title, entity)
}

func (c *Client) Deliver(ctx context.Context, outcome domain.Outcome) error {
	return c.send(ctx, "Espresso Log", outcome.Message)
}

func (c *Client) send(ctx context.Context, title, message string) error {
	if c.token == "" || c.userKey == "" {
		return nil
	}

	data := url.Values{}
	data.Set("token", c.token)
	data.Set("user", c.userKey)
	data.Set("message", message)
	data.Set("title", title)

	return infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(
			ctx,
			http.MethodPost,
			"https://api.pushover.net/1/messages.json",
			strings.NewReader(data.Encode()),
		)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending notification: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("pushover error: %s (retryable)", resp.Status)
			}
			return fmt.Errorf("pushover error: %s", resp.Status)
		}

		return nil
	})
}
