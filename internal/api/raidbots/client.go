package raidbots

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/omarshaarawi/upgradebot/internal/config"
	"github.com/omarshaarawi/upgradebot/internal/models"
)

const dataSuffix = "/data.csv"

type Client struct {
	httpClient *http.Client
	Config     config.Raidbots
}

func NewClient(cfg config.Raidbots) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		Config:     cfg,
	}
}

// DataURL returns the CSV endpoint for a report link.
func DataURL(link string) string {
	return link + dataSuffix
}

// FetchReport downloads a report's data.csv and splits it into rows. It makes exactly one
// attempt; any failure comes back as a *FetchError.
func (c *Client) FetchReport(ctx context.Context, link string) (models.RawTable, error) {
	url := DataURL(link)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Link: link, Err: fmt.Errorf("error creating request: %w", err)}
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Link: link, Err: fmt.Errorf("error making request: %w", err)}
	}
	defer resp.Body.Close()

	slog.Debug("Fetched report data", "link", link, "status", resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Link: link, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Link: link, StatusCode: resp.StatusCode, Err: fmt.Errorf("error reading response body: %w", err)}
	}

	table, err := ParseCSV(body)
	if err != nil {
		return nil, &FetchError{Link: link, StatusCode: resp.StatusCode, Err: err}
	}
	return table, nil
}

// ParseCSV decodes body as UTF-8 and splits it with standard CSV quoting. Rows may have
// differing field counts.
func ParseCSV(body []byte) (models.RawTable, error) {
	body = bytes.TrimPrefix(body, []byte("\ufeff"))
	text := strings.ToValidUTF8(string(body), "\uFFFD")

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error decoding csv: %w", err)
	}
	return models.RawTable(records), nil
}
