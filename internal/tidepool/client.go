// Package tidepool is a minimal client for the Tidepool platform API,
// covering the record types the sync pipeline consumes.
package tidepool

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const sessionTokenHeader = "x-tidepool-session-token"

// Client talks to the Tidepool platform API. Call Login before any data
// query; it installs the session token on all subsequent requests.
type Client struct {
	http     *resty.Client
	username string
	password string
	userID   string
}

// NewClient creates an unauthenticated Tidepool client.
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		http:     resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")),
		username: username,
		password: password,
	}
}

// Login authenticates with HTTP basic auth and caches the session token and
// user ID for the lifetime of the client.
func (c *Client) Login(ctx context.Context) error {
	var body struct {
		UserID string `json:"userid"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.username, c.password).
		SetResult(&body).
		Post("/auth/login")
	if err != nil {
		return fmt.Errorf("tidepool login: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("tidepool login: %s", resp.Status())
	}

	token := resp.Header().Get(sessionTokenHeader)
	if token == "" {
		return fmt.Errorf("tidepool login: no %s header in response", sessionTokenHeader)
	}

	c.userID = body.UserID
	c.http.SetHeader(sessionTokenHeader, token)
	return nil
}

// UserID returns the authenticated user's ID (empty before Login).
func (c *Client) UserID() string {
	return c.userID
}

// PumpSettingsHistory returns pump configuration records in the window.
func (c *Client) PumpSettingsHistory(ctx context.Context, since, till time.Time) ([]PumpSettings, error) {
	var out []PumpSettings
	if err := c.data(ctx, "pumpSettings", since, till, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Boluses returns insulin bolus events in the window.
func (c *Client) Boluses(ctx context.Context, since, till time.Time) ([]Bolus, error) {
	var out []Bolus
	if err := c.data(ctx, "bolus", since, till, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Foods returns carbohydrate intake events in the window.
func (c *Client) Foods(ctx context.Context, since, till time.Time) ([]Food, error) {
	var out []Food
	if err := c.data(ctx, "food", since, till, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PhysicalActivities returns exercise events in the window.
func (c *Client) PhysicalActivities(ctx context.Context, since, till time.Time) ([]PhysicalActivity, error) {
	var out []PhysicalActivity
	if err := c.data(ctx, "physicalActivity", since, till, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GlucoseReadings returns CGM readings in the window.
func (c *Client) GlucoseReadings(ctx context.Context, since, till time.Time) ([]CBG, error) {
	var out []CBG
	if err := c.data(ctx, "cbg", since, till, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// data queries /data/{userID} for one record type. A zero till leaves the
// window open-ended.
func (c *Client) data(ctx context.Context, typ string, since, till time.Time, out any) error {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("type", typ).
		SetResult(out)
	if !since.IsZero() {
		req.SetQueryParam("startDate", since.UTC().Format(time.RFC3339))
	}
	if !till.IsZero() {
		req.SetQueryParam("endDate", till.UTC().Format(time.RFC3339))
	}

	resp, err := req.Get("/data/" + c.userID)
	if err != nil {
		return fmt.Errorf("tidepool %s query: %w", typ, err)
	}
	if resp.IsError() {
		return fmt.Errorf("tidepool %s query: %s", typ, resp.Status())
	}
	return nil
}
