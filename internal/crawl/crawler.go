// Package crawl discovers doctor-listing pages on a hospital website.
package crawl

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	// DefaultMaxPages bounds how many distinct pages one crawl fetches.
	DefaultMaxPages = 5
	// maxResults caps the returned candidate list.
	maxResults = 20

	fetchTimeout = 10 * time.Second
	maxBodyBytes = 512 * 1024
)

// Crawler discovers same-domain pages plausibly containing doctor
// listings, breadth-first, bounded by page count and queue size.
type Crawler struct {
	http *http.Client
}

// New creates a Crawler with a sensible default HTTP client.
func New() *Crawler {
	return &Crawler{
		http: &http.Client{
			Timeout: fetchTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
	}
}

// NewWithHTTPClient creates a Crawler using the given http.Client.
func NewWithHTTPClient(hc *http.Client) *Crawler {
	return &Crawler{http: hc}
}

// FindDoctorPages crawls from seedURL and returns URLs likely to contain
// doctor listings. Deterministic given identical HTML. A seed that cannot
// be fetched yields an empty result, not an error; that is the common
// "no usable website" case. maxPages <= 0 uses DefaultMaxPages.
func (c *Crawler) FindDoctorPages(ctx context.Context, seedURL, specialty string, maxPages int) ([]string, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	seed, err := normalizeSeed(seedURL)
	if err != nil {
		return nil, eris.Wrapf(err, "crawl: parse seed %q", seedURL)
	}
	domain := registrableDomain(seed.Host)

	f := newFrontier(seed.String())
	accepted := make(map[string]bool)
	fetched := 0

	for fetched < maxPages {
		pageURL, ok := f.pop()
		if !ok {
			break
		}
		if ctx.Err() != nil {
			break
		}

		links, err := c.fetchLinks(ctx, pageURL)
		fetched++
		if err != nil {
			// A single failed page degrades the crawl, never aborts it.
			zap.L().Debug("crawl: page fetch failed",
				zap.String("url", pageURL),
				zap.Error(err),
			)
			continue
		}

		base, err := url.Parse(pageURL)
		if err != nil {
			continue
		}

		for _, link := range links {
			resolved := resolveLink(base, link.url)
			if resolved == "" {
				continue
			}
			if registrableDomain(hostOf(resolved)) != domain {
				continue
			}
			link.url = resolved
			if !relevant(link, specialty) {
				continue
			}
			accepted[resolved] = true
			f.push(resolved)
		}
	}

	return finalize(accepted), nil
}

// finalize dedupes, orders, and filters the accepted set. Shorter URLs
// rank first: /doctors is a better starting point than a deep bio page.
func finalize(accepted map[string]bool) []string {
	out := make([]string, 0, len(accepted))
	for u := range accepted {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		return out[i] < out[j]
	})

	filtered := out[:0]
	for _, u := range out {
		if !excluded(u) {
			filtered = append(filtered, u)
		}
	}
	if len(filtered) > maxResults {
		filtered = filtered[:maxResults]
	}
	return filtered
}

// fetchLinks fetches one page and returns its anchors with the evidence
// needed by the relevance predicate.
func (c *Crawler) fetchLinks(ctx context.Context, pageURL string) ([]candidateLink, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; HealthAssistBot/1.0)")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetch")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "read body")
	}

	return parseAnchors(string(body)), nil
}

// parseAnchors walks the HTML tree collecting anchor href, visible text,
// and title attribute.
func parseAnchors(body string) []candidateLink {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var links []candidateLink
	var walker func(*html.Node)
	walker = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			var href, title string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "href":
					href = strings.TrimSpace(attr.Val)
				case "title":
					title = attr.Val
				}
			}
			if href != "" {
				links = append(links, candidateLink{
					url:        href,
					anchorText: nodeText(n),
					titleAttr:  title,
				})
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walker(child)
		}
	}
	walker(doc)
	return links
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walker func(*html.Node)
	walker = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walker(child)
		}
	}
	walker(n)
	return strings.TrimSpace(b.String())
}

// resolveLink resolves href against the page URL, dropping anchors,
// javascript:, mailto:, and non-HTTP schemes. Fragments are stripped so
// the visited set treats /a and /a#top as one page.
func resolveLink(base *url.URL, href string) string {
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}

func normalizeSeed(raw string) (*url.URL, error) {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, eris.New("missing host")
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// registrableDomain reduces a host to its last two labels, ignoring a
// leading www and any port. Good enough to confine a crawl to one site;
// multi-part public suffixes are not special-cased.
func registrableDomain(host string) string {
	host = strings.ToLower(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "www.")
	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return host
	}
	return strings.Join(parts[len(parts)-2:], ".")
}
