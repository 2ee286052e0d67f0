package status

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	logx "reviewbot/pkg/logx"
)

// DefaultEndpoint is the Practicum homework status API.
const DefaultEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 4 << 20

// RawSnapshot is the decoded response body. Numbers are kept as json.Number.
type RawSnapshot map[string]any

type ClientConfig struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// Client fetches status snapshots. It performs exactly one request per Fetch.
type Client struct {
	endpoint string
	token    string
	timeout  time.Duration
	http     *http.Client
	log      logx.Logger
}

func NewClient(cfg ClientConfig, log logx.Logger) *Client {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		endpoint: endpoint,
		token:    cfg.Token,
		timeout:  timeout,
		http:     &http.Client{Timeout: timeout},
		log:      log,
	}
}

func (c *Client) Fetch(ctx context.Context, cursor int64) (RawSnapshot, error) {
	if cursor < 0 {
		return nil, ErrNegativeCursor
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, &TransportError{Cause: fmt.Errorf("parse endpoint: %w", err)}
	}
	q := u.Query()
	q.Set("from_date", strconv.FormatInt(cursor, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}
	req.Header.Set("Authorization", "OAuth "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Cause: fmt.Errorf("read body: %w", err)}
	}
	c.log.Debug("status api answered",
		logx.Int("http", resp.StatusCode),
		logx.Int64("from_date", cursor),
		logx.Duration("took", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteStatusError{Code: resp.StatusCode, Body: snippet(body, 200)}
	}

	return decodeSnapshot(body)
}

func decodeSnapshot(body []byte) (RawSnapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw RawSnapshot
	if err := dec.Decode(&raw); err != nil {
		return nil, &DecodeError{Cause: err}
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("trailing data")
		}
		return nil, &DecodeError{Cause: err}
	}
	if raw == nil {
		return nil, &DecodeError{Cause: errors.New("body is null")}
	}
	return raw, nil
}

func snippet(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
