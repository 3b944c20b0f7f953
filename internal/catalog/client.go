// Package catalog talks to the Titlovi.com kodi API and its download endpoint.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Belphemur/titlovi/internal/apperrors"
	"github.com/Belphemur/titlovi/internal/config"
	"github.com/Belphemur/titlovi/internal/metrics"
	"github.com/Belphemur/titlovi/internal/models"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
)

// Endpoint names, used as the Op of transport errors and as metric labels
const (
	OpGetToken      = "gettoken"
	OpValidateLogin = "validatelogin"
	OpSearch        = "search"
	OpDownload      = "download"
)

// Client is the catalog as seen by the acquisition engine
type Client interface {
	GetToken(ctx context.Context, creds models.Credentials) (models.Token, error)
	ValidateLogin(ctx context.Context, creds models.Credentials) error
	Search(ctx context.Context, token models.Token, criteria models.SearchCriteria) (*models.SubtitleResultPage, error)
	Download(ctx context.Context, mediaID int, contentType models.ContentType) ([]byte, error)
}

// Options configures an HTTPClient. Zero values use the catalog defaults.
type Options struct {
	KodiBaseURL      string
	DownloadBaseURL  string
	UserAgent        string
	AppHeader        string
	ProxyURL         string
	Timeout          time.Duration
	FailureThreshold uint
	BreakerDelay     time.Duration
	// Transport replaces the default base transport, mostly for tests
	Transport http.RoundTripper
}

// HTTPClient implements Client over HTTP
type HTTPClient struct {
	httpClient  *http.Client
	kodiBase    *url.URL
	downloadURL *url.URL
	breaker     circuitbreaker.CircuitBreaker[*response]
}

type response struct {
	body        []byte
	contentType string
}

// NewClient creates a catalog client from the process configuration
func NewClient(cfg *config.Config) (*HTTPClient, error) {
	return New(Options{
		KodiBaseURL:      cfg.KodiBaseURL,
		DownloadBaseURL:  cfg.DownloadBaseURL,
		UserAgent:        cfg.UserAgent,
		AppHeader:        cfg.AppHeader,
		ProxyURL:         cfg.ProxyConnectionString,
		Timeout:          cfg.Timeout(),
		FailureThreshold: cfg.Breaker.FailureThreshold,
		BreakerDelay:     cfg.BreakerDelay(),
	})
}

// New creates a catalog client
func New(opts Options) (*HTTPClient, error) {
	logger := config.GetLogger()

	if opts.KodiBaseURL == "" {
		opts.KodiBaseURL = config.DefaultKodiBaseURL
	}
	if opts.DownloadBaseURL == "" {
		opts.DownloadBaseURL = config.DefaultDownloadBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}
	if opts.AppHeader == "" {
		opts.AppHeader = config.DefaultAppHeader
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	if opts.BreakerDelay <= 0 {
		opts.BreakerDelay = time.Minute
	}

	kodiBase, err := parseBaseURL(opts.KodiBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid kodi base url: %w", err)
	}
	downloadBase, err := parseBaseURL(opts.DownloadBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid download base url: %w", err)
	}

	base := opts.Transport
	if base == nil {
		// Clone DefaultTransport to keep its pooling, HTTP/2 and timeout settings
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if opts.ProxyURL != "" {
			proxyURL, err := url.Parse(opts.ProxyURL)
			if err != nil {
				logger.Warn().Err(err).Str("proxy", opts.ProxyURL).Msg("Invalid proxy URL, continuing without proxy")
			} else {
				transport.Proxy = http.ProxyURL(proxyURL)
			}
		}
		base = transport
	}

	breaker := circuitbreaker.NewBuilder[*response]().
		HandleIf(func(_ *response, err error) bool {
			return isBreakerFailure(err)
		}).
		WithFailureThreshold(opts.FailureThreshold).
		WithDelay(opts.BreakerDelay).
		OnOpen(func(circuitbreaker.StateChangedEvent) {
			logger.Warn().Dur("delay", opts.BreakerDelay).Msg("Catalog circuit breaker opened")
		}).
		OnClose(func(circuitbreaker.StateChangedEvent) {
			logger.Info().Msg("Catalog circuit breaker closed")
		}).
		Build()

	return &HTTPClient{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: newCatalogTransport(base, opts.UserAgent, opts.AppHeader),
		},
		kodiBase:    kodiBase,
		downloadURL: downloadBase,
		breaker:     breaker,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%q is not an absolute url", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// isBreakerFailure counts unreachable catalogs and server errors. Client
// errors such as a 401 on bad credentials and caller cancellations do not.
func isBreakerFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var transportErr *apperrors.ErrTransport
	if errors.As(err, &transportErr) {
		return transportErr.StatusCode == 0 || transportErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}

func (c *HTTPClient) endpoint(base *url.URL, path string, query url.Values) string {
	u := base.ResolveReference(&url.URL{Path: path})
	u.RawQuery = query.Encode()
	return u.String()
}

// do executes req through the circuit breaker and returns the body of a 200 response
func (c *HTTPClient) do(op string, req *http.Request) (*response, error) {
	logger := config.GetLogger()
	start := time.Now()

	resp, err := failsafe.With[*response](c.breaker).
		WithContext(req.Context()).
		Get(func() (*response, error) {
			return c.roundTrip(op, req)
		})

	metrics.CatalogRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues(op, metrics.StatusError).Inc()
		if errors.Is(err, circuitbreaker.ErrOpen) {
			return nil, apperrors.NewTransportError(op, 0, err)
		}
		return nil, err
	}

	metrics.CatalogRequestsTotal.WithLabelValues(op, metrics.StatusSuccess).Inc()
	logger.Debug().Str("endpoint", op).Int("size", len(resp.body)).Dur("elapsed", time.Since(start)).Msg("Catalog request completed")
	return resp, nil
}

func (c *HTTPClient) roundTrip(op string, req *http.Request) (*response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.NewTransportError(op, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, apperrors.NewTransportError(op, resp.StatusCode, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewTransportError(op, 0, fmt.Errorf("failed to read response body: %w", err))
	}
	return &response{body: body, contentType: resp.Header.Get("Content-Type")}, nil
}
