package content

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"mostviewed/internal/formatter"
	"mostviewed/pkg/utils"
)

var strs = utils.NewStringHelper()

// droppedSelector lists elements that never carry article text.
const droppedSelector = "head, script, style, noscript, template, iframe, svg, link, meta"

var (
	spaceRun    = regexp.MustCompile(`[ \t\r\n\f]+`)
	blankLines  = regexp.MustCompile(`\n[ \t]*(\n[ \t]*)+\n`)
	trailingWS  = regexp.MustCompile(`[ \t]+\n`)
	headingTags = map[string]int{"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6}
	blockTags   = map[string]bool{
		"p": true, "div": true, "section": true, "article": true, "main": true, "header": true,
		"footer": true, "nav": true, "aside": true, "figure": true, "figcaption": true,
		"dl": true, "dt": true, "dd": true, "address": true, "center": true, "body": true, "html": true,
	}
)

// Converter turns rendered HTML into Markdown.
type Converter struct {
	readability  bool
	formatTables bool
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithReadability isolates the main article node before conversion.
func WithReadability(enabled bool) ConverterOption {
	return func(c *Converter) {
		c.readability = enabled
	}
}

// WithTableFormatting aligns pipe tables in the output.
func WithTableFormatting(enabled bool) ConverterOption {
	return func(c *Converter) {
		c.formatTables = enabled
	}
}

// NewConverter creates a converter. Tables are aligned by default.
func NewConverter(opts ...ConverterOption) *Converter {
	c := &Converter{formatTables: true}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Convert transforms body into Markdown. pageURL resolves relative links and may be empty.
func (c *Converter) Convert(body, pageURL string) (string, error) {
	var base *url.URL

	if pageURL != "" {
		u, err := url.Parse(pageURL)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %w", ErrInvalidURL, pageURL, err)
		}

		base = u
	}

	if c.readability && base != nil {
		if article, err := readability.FromReader(strings.NewReader(body), base); err == nil && strings.TrimSpace(article.Content) != "" {
			body = article.Content
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	doc.Find(droppedSelector).Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	w := &mdWriter{base: base}

	var sb strings.Builder
	for _, n := range root.Nodes {
		sb.WriteString(w.children(n, 0))
	}

	out := tidy(sb.String())

	if c.formatTables {
		if out, err = formatter.FormatMarkdown(out); err != nil {
			return "", fmt.Errorf("failed to format tables: %w", err)
		}
	}

	return out, nil
}

// tidy collapses blank line runs and strips trailing spaces.
func tidy(s string) string {
	s = trailingWS.ReplaceAllString(s, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

type mdWriter struct {
	base *url.URL
}

func (w *mdWriter) children(n *html.Node, depth int) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(w.node(c, depth))
	}

	return sb.String()
}

func (w *mdWriter) node(n *html.Node, depth int) string {
	switch n.Type {
	case html.TextNode:
		return spaceRun.ReplaceAllString(n.Data, " ")
	case html.ElementNode:
	case html.DocumentNode:
		return w.children(n, depth)
	default:
		return ""
	}

	tag := n.Data

	if level, ok := headingTags[tag]; ok {
		text := strings.TrimSpace(w.children(n, depth))
		if text == "" {
			return ""
		}

		return "\n\n" + strings.Repeat("#", level) + " " + text + "\n\n"
	}

	if blockTags[tag] {
		return "\n\n" + strings.TrimSpace(w.children(n, depth)) + "\n\n"
	}

	switch tag {
	case "br":
		return "\n"
	case "hr":
		return "\n\n---\n\n"
	case "strong", "b":
		return wrapInline(w.children(n, depth), "**")
	case "em", "i":
		return wrapInline(w.children(n, depth), "_")
	case "code", "kbd", "samp", "tt":
		return wrapInline(textOf(n), "`")
	case "pre":
		return "\n\n```\n" + strings.Trim(textOf(n), "\n") + "\n```\n\n"
	case "a":
		return w.link(n, depth)
	case "img":
		return w.image(n)
	case "ul", "ol":
		return w.list(n, depth)
	case "blockquote":
		return w.quote(n, depth)
	case "table":
		return w.table(n)
	default:
		return w.children(n, depth)
	}
}

// wrapInline keeps the surrounding spaces outside the markers.
func wrapInline(s, marker string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}

	lead := ""
	if strings.HasPrefix(s, " ") {
		lead = " "
	}

	trail := ""
	if strings.HasSuffix(s, " ") {
		trail = " "
	}

	return lead + marker + trimmed + marker + trail
}

func (w *mdWriter) link(n *html.Node, depth int) string {
	text := w.children(n, depth)
	href := strings.TrimSpace(attr(n, "href"))

	if href == "" || strings.HasPrefix(href, "#") || strings.TrimSpace(text) == "" {
		return text
	}

	return wrapLink(text, w.resolve(href))
}

func wrapLink(text, href string) string {
	trimmed := strings.TrimSpace(text)

	lead := ""
	if strings.HasPrefix(text, " ") {
		lead = " "
	}

	trail := ""
	if strings.HasSuffix(text, " ") {
		trail = " "
	}

	return lead + "[" + trimmed + "](" + href + ")" + trail
}

func (w *mdWriter) image(n *html.Node) string {
	src := strings.TrimSpace(attr(n, "src"))
	if src == "" {
		return ""
	}

	return "![" + strings.TrimSpace(attr(n, "alt")) + "](" + w.resolve(src) + ")"
}

func (w *mdWriter) resolve(ref string) string {
	if w.base == nil {
		return ref
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	return w.base.ResolveReference(u).String()
}

func (w *mdWriter) list(n *html.Node, depth int) string {
	ordered := n.Data == "ol"
	index := 1

	if start, err := strconv.Atoi(attr(n, "start")); ordered && err == nil {
		index = start
	}

	var items []string

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}

		marker := "- "
		if ordered {
			marker = strconv.Itoa(index) + ". "
			index++
		}

		body := strings.TrimSpace(blankLines.ReplaceAllString(w.children(c, depth+1), "\n"))
		body = strings.ReplaceAll(body, "\n\n", "\n")
		indent := strings.Repeat(" ", len(marker))
		body = strings.ReplaceAll(body, "\n", "\n"+indent)

		items = append(items, marker+body)
	}

	if len(items) == 0 {
		return ""
	}

	return "\n\n" + strings.Join(items, "\n") + "\n\n"
}

func (w *mdWriter) quote(n *html.Node, depth int) string {
	body := tidy(w.children(n, depth))
	if body == "" {
		return ""
	}

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}

	return "\n\n" + strings.Join(lines, "\n") + "\n\n"
}

func (w *mdWriter) table(n *html.Node) string {
	var rows [][]string

	var visit func(*html.Node)
	visit = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}

			switch c.Data {
			case "thead", "tbody", "tfoot":
				visit(c)
			case "tr":
				rows = append(rows, w.cells(c))
			}
		}
	}
	visit(n)

	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}

	if cols == 0 {
		return ""
	}

	lines := make([]string, 0, len(rows)+1)
	for i, r := range rows {
		for len(r) < cols {
			r = append(r, "")
		}

		lines = append(lines, "| "+strings.Join(r, " | ")+" |")

		if i == 0 {
			sep := make([]string, cols)
			for j := range sep {
				sep[j] = "---"
			}

			lines = append(lines, "| "+strings.Join(sep, " | ")+" |")
		}
	}

	return "\n\n" + strings.Join(lines, "\n") + "\n\n"
}

func (w *mdWriter) cells(tr *html.Node) []string {
	var cells []string

	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}

		text := strs.NormalizeWhitespace(w.children(c, 0))
		text = strings.ReplaceAll(text, "|", `\|`)
		cells = append(cells, text)
	}

	return cells
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}

	return ""
}

func textOf(n *html.Node) string {
	return goquery.NewDocumentFromNode(n).Text()
}
