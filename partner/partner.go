// Package partner looks up partner records from the partner service and
// keeps them in the cache for half an hour.
package partner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/unkn0wn-root/aimcache"
	"github.com/unkn0wn-root/aimcache/internal/robusthttp"
	"github.com/unkn0wn-root/aimcache/internal/util"
)

const (
	// CacheTTL is how long a partner record is remembered.
	CacheTTL = 30 * time.Minute

	requestTimeout = 10 * time.Second
	keyPrefix      = "partnerInfo"
	maxBody        = 4 << 20
)

var ErrMissingParam = errors.New("partner: invalid parameter - missing")

// Info is a partner record as returned by the service. The shape is owned by
// the partner service, so it is kept as a generic JSON object.
type Info map[string]any

// Client is a partner mapped to an OAuth client registration.
type Client struct {
	ClientID      string   `json:"client_id"`
	ClientSecret  string   `json:"client_secret"`
	GrantTypes    []string `json:"grant_types"`
	ResponseTypes []string `json:"response_types"`
	RedirectURIs  []string `json:"redirect_uris"`
}

type Config struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	// Environment namespaces cache keys, e.g. "production".
	Environment string

	HTTPClient *http.Client    // nil => robusthttp client with a 10s timeout
	Logger     aimcache.Logger // nil => NopLogger
}

type Service struct {
	endpoint string
	id       string
	secret   string
	env      string
	http     *http.Client
	log      aimcache.Logger
	cache    aimcache.Cache[Info]
}

// New validates cfg. cache may be nil, in which case every lookup goes to
// the partner service.
func New(cfg Config, cache aimcache.Cache[Info]) (*Service, error) {
	for _, p := range []struct{ name, v string }{
		{"endpoint", cfg.Endpoint},
		{"client id", cfg.ClientID},
		{"client secret", cfg.ClientSecret},
	} {
		if strings.TrimSpace(p.v) == "" {
			return nil, fmt.Errorf("%w %s", ErrMissingParam, p.name)
		}
	}
	s := &Service{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		id:       cfg.ClientID,
		secret:   cfg.ClientSecret,
		env:      cfg.Environment,
		http:     cfg.HTTPClient,
		log:      cfg.Logger,
		cache:    cache,
	}
	if s.http == nil {
		s.http = robusthttp.NewClient(robusthttp.WithTimeout(requestTimeout))
	}
	if s.log == nil {
		s.log = aimcache.NopLogger{}
	}
	return s, nil
}

// CacheKey is the key a partner record is cached under.
func (s *Service) CacheKey(partnerKey string) string {
	return util.Key(keyPrefix, s.env, partnerKey)
}

// Get returns the partner record for partnerKey. With useCache the record is
// served from the cache when present and remembered on a miss; a failed
// fetch is never cached. Either way a failure reads as absent.
func (s *Service) Get(ctx context.Context, partnerKey string, useCache bool) (Info, bool) {
	if partnerKey == "" {
		return nil, false
	}
	if useCache && s.cache != nil {
		return s.cache.Remember(ctx, s.CacheKey(partnerKey), CacheTTL,
			aimcache.ComputeWith(s.fetchOne, partnerKey))
	}
	info, err := s.fetchOne(ctx, partnerKey)
	if err != nil {
		s.log.Warn("partner fetch without cache failed", aimcache.Fields{"partner": partnerKey, "err": err})
		return nil, false
	}
	return info, true
}

// GetAll lists every partner as an OAuth client. It is never cached and
// errors are returned as is.
func (s *Service) GetAll(ctx context.Context) ([]Client, error) {
	var records []struct {
		PartnerKey    string   `json:"partnerKey"`
		PartnerSecret string   `json:"partnerSecret"`
		GrantTypes    []string `json:"grantTypes"`
		ResponseTypes []string `json:"responseTypes"`
		Redirects     []string `json:"allowLoginSuccessRedirect"`
	}
	if err := s.call(ctx, s.endpoint, &records); err != nil {
		return nil, err
	}
	out := make([]Client, 0, len(records))
	for _, r := range records {
		out = append(out, Client{
			ClientID:      r.PartnerKey,
			ClientSecret:  r.PartnerSecret,
			GrantTypes:    r.GrantTypes,
			ResponseTypes: r.ResponseTypes,
			RedirectURIs:  r.Redirects,
		})
	}
	return out, nil
}

func (s *Service) fetchOne(ctx context.Context, partnerKey string) (Info, error) {
	var info Info
	if err := s.call(ctx, s.endpoint+"/"+url.PathEscape(partnerKey), &info); err != nil {
		return nil, err
	}
	if info == nil {
		return nil, aimcache.ErrNoValue
	}
	return info, nil
}

// call GETs u with basic auth and decodes the "response" member into out.
func (s *Service) call(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("partner: build request: %w", err)
	}
	req.SetBasicAuth(s.id, s.secret)
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("partner: GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("partner: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Body: truncate(body, 256)}
	}

	var envelope struct {
		Response json.RawMessage `json:"response"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("partner: decode envelope: %w", err)
	}
	if len(envelope.Response) == 0 || string(envelope.Response) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Response, out); err != nil {
		return fmt.Errorf("partner: decode response: %w", err)
	}
	return nil
}

// StatusError is a non-200 reply from the partner service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("partner: unexpected status %d: %s", e.Code, e.Body)
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
