package crawler

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractDomain extracts the host component (including any port) from an
// absolute URL, lowercased. Returns "" for URLs without a host.
func ExtractDomain(urlStr string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(urlStr))
	if err != nil {
		return "", err
	}
	return strings.ToLower(parsed.Host), nil
}

// ExtractAnchors returns the href of every anchor in the document, as written
func ExtractAnchors(html []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		hrefs = append(hrefs, href)
	})
	return hrefs, nil
}

// ExtractLinks resolves the document's anchors against baseURL and keeps the
// ones on the same domain. Root-relative hrefs ("/path") are joined to the
// base scheme and host; http(s) URLs are kept as written; everything else
// (relative paths, fragments, mailto:, javascript:) is dropped.
// The result is deduplicated and keeps first-seen document order.
func ExtractLinks(html []byte, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	baseDomain := strings.ToLower(base.Host)
	if baseDomain == "" {
		return nil, fmt.Errorf("base URL %q has no host", baseURL)
	}

	hrefs, err := ExtractAnchors(html)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var links []string

	for _, href := range hrefs {
		link := resolveLink(strings.TrimSpace(href), base)
		if link == "" {
			continue
		}

		domain, err := ExtractDomain(link)
		if err != nil || domain != baseDomain {
			continue
		}

		if seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}

	return links, nil
}

// resolveLink applies the root-relative / absolute rules, "" means discard
func resolveLink(href string, base *url.URL) string {
	lower := strings.ToLower(href)
	switch {
	case strings.HasPrefix(href, "/"):
		return base.Scheme + "://" + base.Host + href
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return href
	default:
		return ""
	}
}
