package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/alvmarrod/content-weaver/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://example.org/page"

func TestExtractContent_HeadingSections(t *testing.T) {
	html := `<html><body>
		<h1>Intro</h1>
		<p>Intro first.</p>
		<p>Intro second.</p>
		<h1>Details</h1>
		<p>Details only.</p>
	</body></html>`

	title, sections := ExtractContent([]byte(html), pageURL)

	assert.Equal(t, "Intro", title)
	assert.Equal(t, []storage.Section{
		{Header: "Intro", Text: "Intro first. Intro second."},
		{Header: "Details", Text: "Details only."},
	}, sections)
}

func TestExtractContent_ScriptNeverLeaks(t *testing.T) {
	title, sections := ExtractContent([]byte(`<script>alert(1)</script><p>real text</p>`), pageURL)

	assert.Empty(t, title)
	require.Len(t, sections, 1)
	assert.Empty(t, sections[0].Header)
	assert.Contains(t, sections[0].Text, "real text")
	assert.NotContains(t, sections[0].Text, "alert")
}

func TestExtractContent_ParagraphFallback(t *testing.T) {
	html := `<html><head><title>Plain</title></head><body>
		<p>First paragraph.</p>
		<div><p>Second   paragraph.</p></div>
	</body></html>`

	title, sections := ExtractContent([]byte(html), pageURL)

	assert.Equal(t, "Plain", title)
	assert.Equal(t, []storage.Section{{Text: "First paragraph. Second paragraph."}}, sections)
}

func TestExtractContent_FullTextFallback(t *testing.T) {
	_, sections := ExtractContent([]byte(`<body><div>just <b>some</b> text</div></body>`), pageURL)

	assert.Equal(t, []storage.Section{{Text: "just some text"}}, sections)
}

func TestExtractContent_BlockElementsKeepWordBoundaries(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []storage.Section
	}{
		{
			name: "list under heading",
			html: `<body><h2>Steps</h2><ul><li>Install</li><li>Configure</li></ul></body>`,
			want: []storage.Section{{Header: "Steps", Text: "Install Configure"}},
		},
		{
			name: "nested divs in full text fallback",
			html: `<body><div><div>alpha</div><div>beta</div></div></body>`,
			want: []storage.Section{{Text: "alpha beta"}},
		},
		{
			name: "cells in paragraph fallback",
			html: `<body><p><span>left</span><span>right</span></p></body>`,
			want: []storage.Section{{Text: "left right"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, sections := ExtractContent([]byte(tt.html), pageURL)
			assert.Equal(t, tt.want, sections)
		})
	}
}

func TestExtractContent_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   \n\t"} {
		title, sections := ExtractContent([]byte(input), pageURL)
		assert.Empty(t, title)
		assert.Empty(t, sections)
	}
}

func TestExtractContent_NoiseRemoved(t *testing.T) {
	html := `<html><body>
		<header><h1>Site Name</h1></header>
		<nav><a href="/">Home</a> Navigation text</nav>
		<aside>Sidebar ad</aside>
		<form><label>Search box</label></form>
		<h2>Topic</h2>
		<p>Body text.</p>
		<style>.x{color:red}</style>
		<footer>Copyright footer</footer>
	</body></html>`

	title, sections := ExtractContent([]byte(html), pageURL)

	assert.Equal(t, "Site Name", title, "title falls back to the first h1 before noise removal")
	require.Len(t, sections, 1)
	assert.Equal(t, storage.Section{Header: "Topic", Text: "Body text."}, sections[0])
	for _, noise := range []string{"Navigation", "Sidebar", "Search box", "color", "Copyright"} {
		assert.NotContains(t, sections[0].Text, noise)
	}
}

func TestExtractContent_TitleElementPreferred(t *testing.T) {
	html := `<html><head><title>  Document   Title </title></head><body><h1>Heading</h1><p>x</p></body></html>`

	title, _ := ExtractContent([]byte(html), pageURL)
	assert.Equal(t, "Document Title", title)
}

func TestExtractContent_EmptyHeadingGetsMarker(t *testing.T) {
	html := `<body><h2>Alpha</h2><h2>Beta</h2><p>beta text</p></body>`

	_, sections := ExtractContent([]byte(html), pageURL)
	assert.Equal(t, []storage.Section{
		{Header: "Alpha", Text: storage.NoContentMarker},
		{Header: "Beta", Text: "beta text"},
	}, sections)
}

func TestExtractContent_AllEmptySectionsFallBack(t *testing.T) {
	html := `<body><div><h2>Lonely</h2></div><p>orphan paragraph</p></body>`

	_, sections := ExtractContent([]byte(html), pageURL)
	assert.Equal(t, []storage.Section{{Text: "orphan paragraph"}}, sections)
}

func TestExtractContent_TextlessHeadingSkipped(t *testing.T) {
	html := `<body><h2>Kept</h2><p>one</p><h3>   </h3><p>dropped with the blank heading</p></body>`

	_, sections := ExtractContent([]byte(html), pageURL)
	assert.Equal(t, []storage.Section{{Header: "Kept", Text: "one"}}, sections)
}

func TestExtractContent_HeadingsInSeparateContainers(t *testing.T) {
	html := `<body>
		<div><h2>One</h2><p>first</p></div>
		<div><h3>Two</h3>loose text<p>second</p><h5>minor</h5></div>
	</body>`

	_, sections := ExtractContent([]byte(html), pageURL)
	assert.Equal(t, []storage.Section{
		{Header: "One", Text: "first"},
		{Header: "Two", Text: "loose text second minor"},
	}, sections)
}

func TestSelectRegion(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		selector string
		want     string
	}{
		{
			name:     "id wins over main",
			html:     `<main><p>main text that is quite long</p></main><div id="content"><p>short</p></div>`,
			selector: "id",
			want:     "short",
		},
		{
			name:     "main tag",
			html:     `<div id="sidebar"><p>side</p></div><main><p>inside main</p></main>`,
			selector: "main",
			want:     "inside main",
		},
		{
			name:     "article tag",
			html:     `<div><p>outside</p></div><article><p>the article</p></article>`,
			selector: "article",
			want:     "the article",
		},
		{
			name:     "class picks longest match",
			html:     `<div class="box content"><p>tiny</p></div><div class="post-content wide"><p>this text is much longer</p></div>`,
			selector: "class",
			want:     "this text is much longer",
		},
		{
			name:     "tie keeps first match",
			html:     `<div class="content"><p>aaaa</p></div><div class="content"><p>bbbb</p></div>`,
			selector: "class",
			want:     "aaaa",
		},
		{
			name:     "adjacent blocks are space separated",
			html:     `<main><div>one</div><div>two</div></main>`,
			selector: "main",
			want:     "one two",
		},
		{
			name:     "body fallback",
			html:     `<div><p>nothing special</p></div>`,
			selector: "body",
			want:     "nothing special",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			require.NoError(t, err)

			region, selector := selectRegion(doc)
			assert.Equal(t, tt.selector, selector)
			assert.Equal(t, tt.want, selectionText(region))
		})
	}
}
