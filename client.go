package comelit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/sync/cio"
	logp "github.com/charmbracelet/log"
	"github.com/j-keck/arping"
)

var log = logp.NewWithOptions(os.Stderr, logp.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "comelit",
})

const timeout = 5 * time.Second

var (
	ErrInvalidPIN = errors.New("invalid pin")
	ErrNotLogged  = errors.New("session is not logged in")
)

type Client struct {
	http *http.Client
	base string
	pin  string
}

func New(host, port, pin string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("could not create cookie jar: %w", err)
	}
	return &Client{
		http: &http.Client{Jar: jar},
		base: "http://" + net.JoinHostPort(host, port),
		pin:  pin,
	}, nil
}

func MacAddress(ip string) (string, error) {
	hw, _, err := arping.Ping(net.ParseIP(ip))
	if err != nil {
		return "", fmt.Errorf("could not get the mac address: %w", err)
	}
	return hw.String(), nil
}

func (c *Client) Login(ctx context.Context) error {
	log.Debug("login")
	form := url.Values{"code": {c.pin}}
	buf, err := c.do(ctx, http.MethodPost, pathLogin, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("could not login: %w", err)
	}
	if err := parseLoginResponse(buf); err != nil {
		return fmt.Errorf("could not login: %w", err)
	}
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	log.Debug("logout")
	if _, err := c.do(ctx, http.MethodGet, pathLogout, nil); err != nil {
		return fmt.Errorf("could not logout: %w", err)
	}
	return nil
}

func (c *Client) AlarmData(ctx context.Context) (AlarmData, error) {
	log.Debug("alarm data")
	buf, err := c.do(ctx, http.MethodGet, pathZoneDesc, nil)
	if err != nil {
		return AlarmData{}, fmt.Errorf("could not gather zones: %w", err)
	}
	desc, err := parseZoneDesc(buf)
	if err != nil {
		return AlarmData{}, fmt.Errorf("could not gather zones: %w", err)
	}

	buf, err = c.do(ctx, http.MethodGet, pathZoneStat, nil)
	if err != nil {
		return AlarmData{}, fmt.Errorf("could not gather zone status: %w", err)
	}
	codes, err := parseZoneStat(buf)
	if err != nil {
		return AlarmData{}, fmt.Errorf("could not gather zone status: %w", err)
	}

	return mergeZones(desc, codes), nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}
	return io.ReadAll(cio.TimeoutReader(resp.Body, timeout))
}
