package sitemap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"dealscope/internal/storage"
)

func TestBuildListsPublishedArticles(t *testing.T) {
	builder := NewBuilder(Options{
		PublicURL:  "https://dealscope.app/",
		ChangeFreq: "weekly",
		Priority:   0.7,
	}, zerolog.Nop())

	updated := time.Date(2026, 4, 20, 9, 30, 0, 0, time.UTC)
	body, err := builder.Build([]storage.Article{
		{Slug: "best-budget-phones", Published: true, UpdatedAt: updated},
		{Slug: "draft-post", Published: false, UpdatedAt: updated},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	xml := string(body)
	if !strings.Contains(xml, `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`) {
		t.Fatal("missing sitemap namespace")
	}
	if !strings.Contains(xml, "<loc>https://dealscope.app/articles/best-budget-phones</loc>") {
		t.Fatalf("missing published article entry:\n%s", xml)
	}
	if strings.Contains(xml, "draft-post") {
		t.Fatal("draft articles must not be listed")
	}
	if !strings.Contains(xml, "<lastmod>2026-04-20</lastmod>") {
		t.Fatalf("missing lastmod date:\n%s", xml)
	}
	if !strings.Contains(xml, "<changefreq>weekly</changefreq>") {
		t.Fatal("missing changefreq")
	}
	if !strings.Contains(xml, "<priority>0.7</priority>") {
		t.Fatal("missing priority")
	}
	if !strings.Contains(xml, "<loc>https://dealscope.app/</loc>") {
		t.Fatal("missing landing page entry")
	}
}

func TestBuildRequiresPublicURL(t *testing.T) {
	builder := NewBuilder(Options{}, zerolog.Nop())
	if _, err := builder.Build(nil); err == nil {
		t.Fatal("missing public url should surface an error")
	}
}

func TestPingHitsEveryEndpoint(t *testing.T) {
	var pinged []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pinged = append(pinged, r.URL.Query().Get("sitemap"))
	}))
	defer srv.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	builder := NewBuilder(Options{
		PublicURL:     "https://dealscope.app",
		PingEndpoints: []string{srv.URL, failing.URL, srv.URL},
		PingTimeout:   time.Second,
	}, zerolog.Nop())

	// A failing endpoint must not stop the remaining pings.
	builder.Ping(context.Background(), "https://dealscope.app/sitemap.xml")

	if len(pinged) != 2 {
		t.Fatalf("expected 2 accepted pings, got %d", len(pinged))
	}
	for _, sitemapURL := range pinged {
		if sitemapURL != "https://dealscope.app/sitemap.xml" {
			t.Fatalf("unexpected sitemap parameter %q", sitemapURL)
		}
	}
}
