// Package nightscout is a client for the Nightscout REST API v1. Reads
// authenticate with a token query argument, writes with an api-secret header
// carrying the SHA-1 digest of the API secret.
package nightscout

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Client talks to a Nightscout instance.
type Client struct {
	http       *resty.Client
	secretHash string
}

// NewClient creates a client for the Nightscout instance at baseURL,
// authenticating with apiSecret.
func NewClient(baseURL, apiSecret string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetQueryParam("token", apiSecret),
		secretHash: sha1Hex(apiSecret),
	}
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Profiles returns all profile documents stored on the instance.
func (c *Client) Profiles(ctx context.Context) ([]Profile, error) {
	var out []Profile
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/v1/profile")
	if err != nil {
		return nil, fmt.Errorf("nightscout get profiles: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("nightscout get profiles: %s", resp.Status())
	}
	return out, nil
}

// UpsertProfile writes a profile document. Nightscout treats a document
// carrying an existing _id as an update, anything else as an insert.
func (c *Client) UpsertProfile(ctx context.Context, profile Profile) (Profile, error) {
	var out Profile
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("api-secret", c.secretHash).
		SetBody(profile).
		SetResult(&out).
		Put("/api/v1/profile")
	if err != nil {
		return Profile{}, fmt.Errorf("nightscout upsert profile: %w", err)
	}
	if resp.IsError() {
		return Profile{}, fmt.Errorf("nightscout upsert profile: %s", resp.Status())
	}
	return out, nil
}

// AddTreatments appends a batch of treatments.
func (c *Client) AddTreatments(ctx context.Context, treatments []Treatment) ([]Treatment, error) {
	var out []Treatment
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("api-secret", c.secretHash).
		SetBody(treatments).
		SetResult(&out).
		Post("/api/v1/treatments")
	if err != nil {
		return nil, fmt.Errorf("nightscout add treatments: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("nightscout add treatments: %s", resp.Status())
	}
	return out, nil
}

// GetTreatments queries stored treatments. find is a Nightscout find
// expression (empty for none); count limits the result size (0 for the
// server default).
func (c *Client) GetTreatments(ctx context.Context, find string, count int) ([]Treatment, error) {
	req := c.http.R().SetContext(ctx)
	if find != "" {
		req.SetQueryParam("find", find)
	}
	if count > 0 {
		req.SetQueryParam("count", strconv.Itoa(count))
	}

	var out []Treatment
	resp, err := req.SetResult(&out).Get("/api/v1/treatments")
	if err != nil {
		return nil, fmt.Errorf("nightscout get treatments: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("nightscout get treatments: %s", resp.Status())
	}
	return out, nil
}

// AddEntries appends a batch of sensor glucose entries.
func (c *Client) AddEntries(ctx context.Context, entries []Entry) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("api-secret", c.secretHash).
		SetBody(entries).
		Post("/api/v1/entries")
	if err != nil {
		return fmt.Errorf("nightscout add entries: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("nightscout add entries: %s", resp.Status())
	}
	return nil
}

// Status fetches the instance status, including its configured display unit.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var out Status
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/v1/status.json")
	if err != nil {
		return Status{}, fmt.Errorf("nightscout status: %w", err)
	}
	if resp.IsError() {
		return Status{}, fmt.Errorf("nightscout status: %s", resp.Status())
	}
	return out, nil
}
