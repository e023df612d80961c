// Package pvoutput sends the confirmed daily-energy reading to the
// PVOutput addstatus endpoint. One attempt per call, no internal retry:
// the caller keeps the pending flag set and tries again on the next loop
// iteration. Transport failures and non-200 responses are treated the
// same way; only a 200 clears the reading.
package pvoutput

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"aurora-pvlogd/internal/clock"
	"aurora-pvlogd/internal/errors"
	"aurora-pvlogd/internal/logger"
)

const (
	DefaultURL = "https://pvoutput.org/service/r2/addstatus.jsp"

	requestTimeout  = 15 * time.Second
	maxResponseBody = 4096
)

type Config struct {
	URL      string
	APIKey   string
	SystemID string
}

func (c Config) Validate() error {
	errFactory := errors.New()
	if c.APIKey == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "report API key is required")
	}
	if c.SystemID == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "report system id is required")
	}

	return nil
}

type Client struct {
	cfg  Config
	clk  clock.Clock
	http *http.Client
}

func NewClient(cfg Config, clk clock.Clock) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}

	return &Client{
		cfg: cfg,
		clk: clk,
		http: &http.Client{
			Timeout: requestTimeout,
		},
	}, nil
}

// Send posts one addstatus report for the reading taken at readAt. The
// date and time fields are local calendar values derived from the
// configured clock offset.
func (c *Client) Send(ctx context.Context, energy uint64, readAt int64) error {
	errFactory := errors.New()

	local := time.Unix(c.clk.ToLocal(readAt), 0).UTC()
	form := url.Values{}
	form.Set("d", local.Format("20060102"))
	form.Set("t", local.Format("15:04"))
	form.Set("v1", fmt.Sprintf("%d", energy))
	form.Set("c1", "0")
	body := form.Encode()

	logger.Debug().
		Str("url", c.cfg.URL).
		Str("payload", body).
		Msg("Posting report")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, strings.NewReader(body))
	if err != nil {
		return errFactory.Wrap(errors.ErrReportSend, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Pvoutput-Apikey", c.cfg.APIKey)
	req.Header.Set("X-Pvoutput-SystemId", c.cfg.SystemID)

	resp, err := c.http.Do(req)
	if err != nil {
		return errFactory.Wrap(errors.ErrReportSend, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if resp.StatusCode != http.StatusOK {
		logger.Warn().
			Int("status", resp.StatusCode).
			Str("body", strings.TrimSpace(string(respBody))).
			Msg("Report rejected")

		return errFactory.WithData(errors.ErrReportReject, resp.StatusCode)
	}

	logger.Info().
		Uint64("energy", energy).
		Str("response", strings.TrimSpace(string(respBody))).
		Msg("Report accepted")

	return nil
}

// Online reports basic network connectivity: at least one non-loopback
// interface address is configured. Cheap enough to run every iteration.
func Online() bool {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return false
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
			return true
		}
	}

	return false
}
