// Package source fetches and normalizes daily bhavcopy files from the
// exchange archive.
package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nse-data/internal/model"
)

// DefaultBaseURL is the public archive endpoint for full bhavcopy files.
const DefaultBaseURL = "https://archives.nseindia.com/products/content"

// Sentinel strings the archive embeds in an otherwise-200 body when a
// date has no published data.
var noDataMarkers = []string{"No Data", "Error occured"}

// Table is one date's raw bhavcopy: header plus records, untrimmed.
type Table struct {
	Header []string
	Rows   [][]string
}

// baseTransportConfig returns the HTTP transport shared by archive clients.
func baseTransportConfig() *http.Transport {
	return &http.Transport{
		ResponseHeaderTimeout: 10 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		DisableKeepAlives:     true,
	}
}

// Client downloads one bhavcopy per call. Rate limiting between calls is
// the caller's responsibility.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Client for the given archive base URL ("" uses the
// public archive) with the given request timeout (<=0 uses 10s).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: baseTransportConfig(),
			Timeout:   timeout,
		},
	}
}

// URL returns the bhavcopy URL for a trade date.
func (c *Client) URL(date time.Time) string {
	return fmt.Sprintf("%s/sec_bhavdata_full_%s.csv", c.baseURL, model.DateKey(date))
}

// Fetch downloads the bhavcopy for one date. It issues exactly one request.
// Returns (nil, nil) when the archive has no data for the date (empty body
// or a no-data marker); callers skip such dates without treating them as
// failures. Transport failures and non-2xx statuses return an error.
func (c *Client) Fetch(ctx context.Context, date time.Time) (*Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(date), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Connection", "close")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bhavcopy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("archive status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	text := string(body)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	for _, marker := range noDataMarkers {
		if strings.Contains(text, marker) {
			return nil, nil
		}
	}

	table, err := parseTable(text)
	if err != nil {
		return nil, fmt.Errorf("parse bhavcopy: %w", err)
	}
	if table == nil || len(table.Rows) == 0 {
		return nil, nil
	}
	return table, nil
}

// parseTable reads a character-delimited body leniently: variable field
// counts are tolerated and rows shorter than the header are dropped, the
// way the source's occasional bad lines are skipped rather than fatal.
func parseTable(text string) (*Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// bad line, skip
			continue
		}
		if len(rec) < len(header) {
			continue
		}
		rows = append(rows, rec)
	}
	return &Table{Header: header, Rows: rows}, nil
}
