// Package template fetches mail/SMS templates from object storage and
// renders them with pongo2.
package template

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/unkn0wn-root/aimcache"
	"github.com/unkn0wn-root/aimcache/internal/util"
)

// Props locate one template.
type Props struct {
	Entity   string
	EntityID string
	Category string
	Type     string
	Language string
}

func (p Props) validate() error {
	for _, f := range []struct{ name, v string }{
		{"entity", p.Entity},
		{"entityId", p.EntityID},
		{"category", p.Category},
		{"type", p.Type},
		{"language", p.Language},
	} {
		if f.v == "" {
			return missing(f.name, CodeMissingParam)
		}
	}
	return nil
}

type Template struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Config struct {
	Folder  string
	Fetcher Fetcher
	// Cache, when set together with a positive CacheTTL, keeps parsed
	// templates so repeated renders skip the fetch.
	Cache    aimcache.Cache[Template]
	CacheTTL time.Duration
}

type Service struct {
	folder string
	fetch  Fetcher
	cache  aimcache.Cache[Template]
	ttl    time.Duration
}

func New(cfg Config) (*Service, error) {
	if cfg.Fetcher == nil {
		return nil, missing("fetcher", CodeMissingConfig)
	}
	if strings.Trim(cfg.Folder, "/") == "" {
		return nil, missing("folder name", CodeMissingFolder)
	}
	return &Service{
		folder: strings.Trim(cfg.Folder, "/"),
		fetch:  cfg.Fetcher,
		cache:  cfg.Cache,
		ttl:    cfg.CacheTTL,
	}, nil
}

// ObjectKey is <folder>/<entity>/<entityId>/<category>/<type>/<language>.txt.
func (s *Service) ObjectKey(p Props) string {
	return strings.Join([]string{s.folder, p.Entity, p.EntityID, p.Category, p.Type, p.Language + ".txt"}, "/")
}

// Raw returns the stored template. Objects holding a JSON {subject, body}
// document are decoded; anything else becomes the body with no subject.
func (s *Service) Raw(ctx context.Context, p Props) (Template, error) {
	if err := p.validate(); err != nil {
		return Template{}, err
	}
	key := s.ObjectKey(p)
	caching := s.cache != nil && s.ttl > 0
	ckey := util.Key("template", key)
	if caching {
		if t, ok := s.cache.Get(ctx, ckey); ok {
			return t, nil
		}
	}
	b, err := s.fetch.Fetch(ctx, key)
	if err != nil {
		return Template{}, wrap(err)
	}
	t := parse(b)
	if caching {
		s.cache.Put(ctx, ckey, t, s.ttl)
	}
	return t, nil
}

// Interpolate renders subject and body against data. Values are HTML-escaped
// unless marked safe in the template.
func (s *Service) Interpolate(ctx context.Context, p Props, data map[string]any) (Template, error) {
	t, err := s.Raw(ctx, p)
	if err != nil {
		return Template{}, err
	}
	subject, err := render(t.Subject, data)
	if err != nil {
		return Template{}, err
	}
	body, err := render(t.Body, data)
	if err != nil {
		return Template{}, err
	}
	return Template{Subject: subject, Body: body}, nil
}

func parse(b []byte) Template {
	var doc struct {
		Subject *string `json:"subject"`
		Body    *string `json:"body"`
	}
	if err := json.Unmarshal(b, &doc); err == nil && doc.Body != nil {
		t := Template{Body: *doc.Body}
		if doc.Subject != nil {
			t.Subject = *doc.Subject
		}
		return t
	}
	return Template{Body: string(b)}
}

func render(src string, data map[string]any) (string, error) {
	if src == "" {
		return "", nil
	}
	tpl, err := pongo2.FromString(src)
	if err != nil {
		return "", &Error{Code: CodeRender, Message: "parse template", Err: err}
	}
	out, err := tpl.Execute(pongo2.Context(data))
	if err != nil {
		return "", &Error{Code: CodeRender, Message: "render template", Err: err}
	}
	return out, nil
}
