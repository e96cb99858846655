package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"dealscope/internal/storage"
)

const xmlnsSitemap = "http://www.sitemaps.org/schemas/sitemap/0.9"

// URL is one sitemap entry.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Options parameterise sitemap generation.
type Options struct {
	PublicURL     string
	ChangeFreq    string
	Priority      float64
	PingEndpoints []string
	PingTimeout   time.Duration
}

// Builder renders the sitemap for published articles and pings search
// engines with its location.
type Builder struct {
	opts   Options
	http   *resty.Client
	logger zerolog.Logger
}

// NewBuilder constructs a sitemap builder.
func NewBuilder(opts Options, logger zerolog.Logger) *Builder {
	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Builder{
		opts:   opts,
		http:   resty.New().SetTimeout(timeout),
		logger: logger.With().Str("component", "sitemap").Logger(),
	}
}

// Build renders the urlset document: the landing page first, then one
// entry per published article.
func (b *Builder) Build(articles []storage.Article) ([]byte, error) {
	base := strings.TrimRight(b.opts.PublicURL, "/")
	if base == "" {
		return nil, fmt.Errorf("public url required to build sitemap")
	}

	set := urlSet{XMLNS: xmlnsSitemap}
	set.URLs = append(set.URLs, URL{
		Loc:        base + "/",
		ChangeFreq: "daily",
		Priority:   "1.0",
	})

	for _, article := range articles {
		if !article.Published {
			continue
		}
		set.URLs = append(set.URLs, URL{
			Loc:        fmt.Sprintf("%s/articles/%s", base, article.Slug),
			LastMod:    article.UpdatedAt.UTC().Format("2006-01-02"),
			ChangeFreq: b.opts.ChangeFreq,
			Priority:   fmt.Sprintf("%.1f", b.opts.Priority),
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// Ping notifies each configured search-engine endpoint of the sitemap
// location. Individual ping failures are logged and do not fail the run.
func (b *Builder) Ping(ctx context.Context, sitemapURL string) {
	for _, endpoint := range b.opts.PingEndpoints {
		resp, err := b.http.R().
			SetContext(ctx).
			SetQueryParam("sitemap", sitemapURL).
			Get(endpoint)
		if err != nil {
			b.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("sitemap ping failed")
			continue
		}
		if resp.IsError() {
			b.logger.Warn().Int("status", resp.StatusCode()).Str("endpoint", endpoint).Msg("sitemap ping rejected")
			continue
		}
		b.logger.Info().Str("endpoint", endpoint).Msg("sitemap ping accepted")
	}
}
