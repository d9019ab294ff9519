package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_Convert(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		contains []string
		excludes []string
	}{
		{
			name:     "headings and paragraphs",
			html:     `<html><head><title>T</title></head><body><h1>Title</h1><p>First   para.</p><h2>Sub</h2><p>Second</p></body></html>`,
			contains: []string{"# Title\n\nFirst para.\n\n## Sub\n\nSecond"},
			excludes: []string{"<p>", "T\n"},
		},
		{
			name:     "emphasis",
			html:     `<p>a <b>bold</b> and <i>italic</i> and <code>x := 1</code></p>`,
			contains: []string{"a **bold** and _italic_ and `x := 1`"},
		},
		{
			name:     "relative links resolved",
			html:     `<p>See <a href="/wiki/Go_(programming_language)">Go</a> and <a href="#cite">[1]</a></p>`,
			contains: []string{"[Go](https://en.wikipedia.org/wiki/Go_(programming_language))", "[1]"},
			excludes: []string{"#cite"},
		},
		{
			name:     "images",
			html:     `<p><img src="//upload.wikimedia.org/a.png" alt="Logo"></p>`,
			contains: []string{"![Logo](https://upload.wikimedia.org/a.png)"},
		},
		{
			name:     "unordered and ordered lists",
			html:     `<ul><li>one</li><li>two<ul><li>nested</li></ul></li></ul><ol start="3"><li>c</li><li>d</li></ol>`,
			contains: []string{"- one\n- two\n  - nested", "3. c\n4. d"},
		},
		{
			name:     "scripts and styles dropped",
			html:     `<body><script>var x = 1;</script><style>p{}</style><noscript>js off</noscript><p>kept</p></body>`,
			contains: []string{"kept"},
			excludes: []string{"var x", "p{}", "js off"},
		},
		{
			name:     "preformatted",
			html:     "<pre>line 1\n  line 2</pre>",
			contains: []string{"```\nline 1\n  line 2\n```"},
		},
		{
			name:     "blockquote",
			html:     `<blockquote><p>quoted</p></blockquote>`,
			contains: []string{"> quoted"},
		},
	}

	c := NewConverter()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.Convert(tt.html, "https://en.wikipedia.org/wiki/Page")
			require.NoError(t, err)

			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}

			for _, unwanted := range tt.excludes {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestConverter_TableAligned(t *testing.T) {
	html := `<table>
<tr><th>Name</th><th>Views</th></tr>
<tr><td>Go</td><td>1,234</td></tr>
<tr><td>A | B</td><td>5</td></tr>
</table>`

	out, err := NewConverter().Convert(html, "")
	require.NoError(t, err)

	expected := strings.Join([]string{
		"| Name   | Views |",
		"| ------ | ----- |",
		"| Go     | 1,234 |",
		`| A \| B | 5     |`,
	}, "\n")
	assert.Equal(t, expected, out)
}

func TestConverter_TableUnformatted(t *testing.T) {
	html := `<table><tr><th>A</th></tr><tr><td>long value</td><td>extra</td></tr></table>`

	out, err := NewConverter(WithTableFormatting(false)).Convert(html, "")
	require.NoError(t, err)

	assert.Equal(t, "| A |  |\n| --- | --- |\n| long value | extra |", out)
}

func TestConverter_EmptyInput(t *testing.T) {
	out, err := NewConverter().Convert("", "")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestConverter_InvalidBaseURL(t *testing.T) {
	_, err := NewConverter().Convert("<p>x</p>", "://bad")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestConverter_Readability(t *testing.T) {
	var sb strings.Builder

	sb.WriteString(`<html><head><title>Article</title></head><body>`)
	sb.WriteString(`<nav><a href="/a">Navigation link</a></nav><div id="content"><article>`)

	for i := 0; i < 6; i++ {
		sb.WriteString(`<p>This is a long paragraph of article text, written with commas, so that the content scorer picks it as the main body of the page.</p>`)
	}

	sb.WriteString(`</article></div></body></html>`)

	out, err := NewConverter(WithReadability(true)).Convert(sb.String(), "https://en.wikipedia.org/wiki/Article")
	require.NoError(t, err)
	assert.Contains(t, out, "This is a long paragraph of article text")
}
