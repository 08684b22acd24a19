// Package extract locates the main content of an HTML page and splits it
// into heading-delimited sections.
package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/alvmarrod/content-weaver/internal/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// noiseSelector matches structural markup whose text never belongs in output
const noiseSelector = "nav, header, footer, script, style, noscript, iframe, svg, aside, form"

// headingSelector matches the heading levels that start a new section
const headingSelector = "h1, h2, h3, h4"

// ExtractContent returns the page title and the ordered sections of its main
// content region. Empty or unparseable input yields ("", nil).
func ExtractContent(htmlBody []byte, pageURL string) (string, []storage.Section) {
	if len(bytes.TrimSpace(htmlBody)) == 0 {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		logrus.Debugf("Failed to parse %s: %v", pageURL, err)
		return "", nil
	}

	// Title is read before noise removal so an h1 inside <header> still counts
	title := extractTitle(doc)

	doc.Find(noiseSelector).Remove()

	region, selector := selectRegion(doc)
	logrus.Debugf("Content region for %s selected by %s", pageURL, selector)

	sections := splitSections(region)
	if storage.AllEmpty(sections) {
		sections = []storage.Section{fallbackSection(region)}
	}

	return title, sections
}

// extractTitle prefers <title>, then the first <h1>
func extractTitle(doc *goquery.Document) string {
	if title := selectionText(doc.Find("title").First()); title != "" {
		return title
	}
	return selectionText(doc.Find("h1").First())
}

// splitSections builds one section per non-empty h1-h4 in document order.
// Each heading's parent is scanned once, linearly: children accumulate into the
// current section and every tracked heading starts a new one.
func splitSections(region *goquery.Selection) []storage.Section {
	headings := region.Find(headingSelector)
	if headings.Length() == 0 {
		return nil
	}

	byHeading := make(map[*html.Node]*storage.Section)
	scanned := make(map[*html.Node]bool)

	headings.Each(func(_ int, h *goquery.Selection) {
		parent := h.Nodes[0].Parent
		if parent == nil || scanned[parent] {
			return
		}
		scanned[parent] = true
		scanChildren(parent, byHeading)
	})

	var sections []storage.Section
	headings.Each(func(_ int, h *goquery.Selection) {
		if section, ok := byHeading[h.Nodes[0]]; ok {
			sections = append(sections, *section)
		}
	})
	return sections
}

func scanChildren(parent *html.Node, out map[*html.Node]*storage.Section) {
	var (
		current   *storage.Section
		fragments []string
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.Join(fragments, " ")
		if current.Text == "" {
			current.Text = storage.NoContentMarker
		}
	}

	for child := parent.FirstChild; child != nil; child = child.NextSibling {
		if isHeading(child) {
			flush()
			current, fragments = nil, nil

			// A heading without text ends the previous section but opens none
			if header := normalize(nodeText(child)); header != "" {
				current = &storage.Section{Header: header}
				out[child] = current
			}
			continue
		}

		if current == nil {
			continue
		}
		if fragment := normalize(nodeText(child)); fragment != "" {
			fragments = append(fragments, fragment)
		}
	}
	flush()
}

// fallbackSection joins paragraph text, or the whole region text if no
// paragraph carries any
func fallbackSection(region *goquery.Selection) storage.Section {
	var paragraphs []string
	region.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := selectionText(p); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	if len(paragraphs) > 0 {
		return storage.Section{Text: strings.Join(paragraphs, " ")}
	}
	return storage.Section{Text: selectionText(region)}
}

func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4:
		return true
	}
	return false
}

// nodeText joins the non-blank text nodes under n with single spaces, so
// adjacent elements never run together
func nodeText(n *html.Node) string {
	var parts []string
	collectText(n, &parts)
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		if text := normalize(n.Data); text != "" {
			*parts = append(*parts, text)
		}
	case html.ElementNode, html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collectText(c, parts)
		}
	}
}

// selectionText is nodeText over every node of sel
func selectionText(sel *goquery.Selection) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, " ")
}

// normalize collapses runs of whitespace into single spaces
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
