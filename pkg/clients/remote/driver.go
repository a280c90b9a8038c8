package remote

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/leapstack-labs/leapsqlite/pkg/adapter"
	"github.com/leapstack-labs/leapsqlite/pkg/core"
)

// DriverName is the registry name of the remote driver.
const DriverName = "remote"

func init() {
	adapter.Register(DriverName, func(logger *slog.Logger) adapter.Driver { return NewDriver(logger) })
}

// Driver opens sessions on a remote store.
type Driver struct {
	logger *slog.Logger

	// HTTPClient is the base client for requests; nil uses http.DefaultClient.
	HTTPClient *http.Client
}

// NewDriver creates a remote driver.
// If logger is nil, a discard logger is used.
func NewDriver(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{logger: logger}
}

// Features reports the capabilities of remote sessions.
func (d *Driver) Features() core.Features {
	return core.Features{}
}

// IntrospectWithPragma reports that remote sessions only route reads
// through SELECT.
func (d *Driver) IntrospectWithPragma() bool {
	return false
}

// Open creates a session on the store at cfg.URL.
func (d *Driver) Open(ctx context.Context, cfg adapter.Config) (core.Client, error) {
	if cfg.URL == "" {
		return nil, &core.ConfigurationError{Message: "remote driver requires a url"}
	}
	params, err := decodeParams(cfg.Params)
	if err != nil {
		return nil, &core.ConfigurationError{Message: err.Error()}
	}

	hc := d.httpClient(ctx, cfg.Token, params)
	limiter := newLimiter(params)
	base := strings.TrimRight(cfg.URL, "/")

	d.logger.Debug("opening remote session", "url", base, "database", cfg.Database)

	var session SessionResponse
	req := SessionRequest{Database: cfg.Database, Mode: string(cfg.Mode)}
	if err := doJSON(ctx, hc, limiter, http.MethodPost, base+SessionsPath, req, &session); err != nil {
		return nil, err
	}

	c := &Client{
		http:    hc,
		base:    base,
		session: session.Session,
		limiter: limiter,
		logger:  d.logger,
	}
	d.logger.Debug("remote session opened", "session", c.Session())
	return c, nil
}

// httpClient returns the base client, wrapped with a bearer token
// transport when a token is configured.
func (d *Driver) httpClient(ctx context.Context, token string, p Params) *http.Client {
	base := d.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}

	hc := base
	if token != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
	}
	if p.TimeoutMS > 0 {
		withTimeout := *hc
		withTimeout.Timeout = time.Duration(p.TimeoutMS) * time.Millisecond
		hc = &withTimeout
	}
	return hc
}

func newLimiter(p Params) *rate.Limiter {
	if p.RatePerSecond <= 0 || math.IsInf(p.RatePerSecond, 0) {
		return nil
	}
	burst := p.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(p.RatePerSecond), burst)
}

// Ensure Driver implements adapter.Driver interface
var _ adapter.Driver = (*Driver)(nil)
