package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentIDs are element ids that usually wrap the main content
var contentIDs = []string{"content", "main-content", "main", "primary", "article", "post"}

// contentClasses are class names that usually wrap the main content
var contentClasses = []string{
	"content", "main-content", "page-content", "article-content",
	"post-content", "entry-content", "article", "post", "markdown-body",
}

// regionSelector finds candidate main-content elements in a document
type regionSelector struct {
	name  string
	match func(doc *goquery.Document) *goquery.Selection
}

// regionSelectors are tried in priority order; the first one that matches
// anything wins. Among its matches the element with the longest normalized
// text is chosen, and on equal length the earliest in document order.
var regionSelectors = []regionSelector{
	{name: "id", match: byAttrValues("id", contentIDs)},
	{name: "main", match: byTag("main")},
	{name: "article", match: byTag("article")},
	{name: "class", match: byAttrValues("class", contentClasses)},
}

// selectRegion returns the main-content region and the name of the selector
// that produced it. Falls back to <body>, then the whole document.
func selectRegion(doc *goquery.Document) (*goquery.Selection, string) {
	for _, sel := range regionSelectors {
		matches := sel.match(doc)
		if matches.Length() == 0 {
			continue
		}
		return longestText(matches), sel.name
	}

	if body := doc.Find("body").First(); body.Length() > 0 {
		return body, "body"
	}
	return doc.Selection, "document"
}

func byTag(tag string) func(doc *goquery.Document) *goquery.Selection {
	return func(doc *goquery.Document) *goquery.Selection {
		return doc.Find(tag)
	}
}

// byAttrValues matches elements whose space-separated attribute value list
// contains any of the targets
func byAttrValues(attr string, targets []string) func(doc *goquery.Document) *goquery.Selection {
	wanted := make(map[string]bool, len(targets))
	for _, t := range targets {
		wanted[t] = true
	}

	return func(doc *goquery.Document) *goquery.Selection {
		return doc.Find("[" + attr + "]").FilterFunction(func(_ int, s *goquery.Selection) bool {
			value, _ := s.Attr(attr)
			for _, token := range strings.Fields(value) {
				if wanted[token] {
					return true
				}
			}
			return false
		})
	}
}

func longestText(matches *goquery.Selection) *goquery.Selection {
	best := matches.First()
	bestLen := -1
	matches.Each(func(_ int, s *goquery.Selection) {
		if n := len(selectionText(s)); n > bestLen {
			best, bestLen = s, n
		}
	})
	return best
}
