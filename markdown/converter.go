// Package markdown renders newsmd.Node trees as Markdown.
//
// Conversion is a depth-first walk. Every element is mapped to a category
// (see categorize) and each category has exactly one rendering rule.
// Elements outside the table are transparent: their markup is dropped and
// their text, including any recognized descendants, is kept.
package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fwojciec/newsmd"
)

// indentUnit is the indentation added per list nesting level.
// Four spaces nest correctly under both "- " and "N. " markers.
const indentUnit = "    "

// htmlSpace is the set of characters HTML treats as inter-element whitespace.
const htmlSpace = " \t\n\f\r"

var (
	spaceRun   = regexp.MustCompile(`[ \t\n\f\r]+`)
	lineSpace  = regexp.MustCompile(`[ \t]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// Ensure Converter implements newsmd.Converter at compile time.
var _ newsmd.Converter = (*Converter)(nil)

// Converter renders DOM nodes as Markdown. It holds no state and is safe
// for concurrent use.
type Converter struct{}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	return &Converter{}
}

// Convert renders nodes as a Markdown document. Each node starts a new
// block, so sibling roots never run together on one line.
func (c *Converter) Convert(nodes []newsmd.Node) (string, error) {
	w := &blockWriter{}
	for _, n := range nodes {
		w.walk(n)
		w.flush()
	}
	return w.document(), nil
}

// segment is one rendered block. Verbatim segments (fenced code) bypass
// whitespace normalization.
type segment struct {
	text     string
	verbatim bool
}

// blockWriter accumulates rendered block segments. Inline content is
// buffered until a block boundary turns it into a paragraph.
type blockWriter struct {
	segments []segment
	inline   strings.Builder
}

// flush emits buffered inline content as a paragraph.
func (w *blockWriter) flush() {
	if s := normalizeInline(w.inline.String()); s != "" {
		w.segments = append(w.segments, segment{text: s})
	}
	w.inline.Reset()
}

// add ends the current paragraph and appends s.
func (w *blockWriter) add(s string) {
	w.flush()
	if s != "" {
		w.segments = append(w.segments, segment{text: s})
	}
}

// addVerbatim ends the current paragraph and appends s unchanged.
func (w *blockWriter) addVerbatim(s string) {
	w.flush()
	if s != "" {
		w.segments = append(w.segments, segment{text: s, verbatim: true})
	}
}

// document joins the segments with one blank line between blocks.
func (w *blockWriter) document() string {
	parts := make([]string, 0, len(w.segments))
	for _, seg := range w.segments {
		text := seg.text
		if !seg.verbatim {
			text = normalize(text)
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// walk renders n in block context.
func (w *blockWriter) walk(n newsmd.Node) {
	switch n.Type() {
	case newsmd.TextNode:
		w.inline.WriteString(collapseSpace(n.TextContent()))
		return
	case newsmd.ElementNode:
	default:
		return
	}

	switch categorize(n.TagName()) {
	case categoryContainer:
		w.flush()
		for _, child := range n.Children() {
			w.walk(child)
		}
		w.flush()
	case categoryParagraph:
		w.add(normalizeInline(inlineChildren(n)))
	case categoryHeading:
		w.add(heading(n))
	case categoryList:
		w.add(list(n, 0))
	case categoryListItem:
		w.add(listItem(n, "-", 0))
	case categoryCodeBlock:
		w.addVerbatim(codeBlock(n))
	case categoryBlockquote:
		w.add(blockquote(n))
	case categoryTable:
		w.add(table(n))
	case categoryRule:
		w.add("---")
	case categoryLink, categoryImage, categoryEmphasis, categoryStrong, categoryCode, categoryLineBreak:
		w.inline.WriteString(inline(n))
	case categoryIgnored:
	default:
		for _, child := range n.Children() {
			w.walk(child)
		}
	}
}

// inline renders n as inline Markdown. Block elements found in inline
// context are flattened to their inline content, padded with spaces so
// adjacent blocks do not run together.
func inline(n newsmd.Node) string {
	switch n.Type() {
	case newsmd.TextNode:
		return collapseSpace(n.TextContent())
	case newsmd.ElementNode:
	default:
		return ""
	}

	switch categorize(n.TagName()) {
	case categoryLink:
		return link(n)
	case categoryImage:
		return image(n)
	case categoryEmphasis:
		return wrap(inlineChildren(n), "_")
	case categoryStrong:
		return wrap(inlineChildren(n), "**")
	case categoryCode:
		return code(n.TextContent())
	case categoryLineBreak:
		return "\n"
	case categoryIgnored:
		return ""
	case categoryRule:
		return " "
	case categoryCodeBlock:
		return " " + code(n.TextContent()) + " "
	case categoryContainer, categoryParagraph, categoryHeading, categoryList, categoryListItem,
		categoryBlockquote, categoryTable:
		return " " + inlineChildren(n) + " "
	default:
		return inlineChildren(n)
	}
}

func inlineChildren(n newsmd.Node) string {
	var b strings.Builder
	for _, child := range n.Children() {
		b.WriteString(inline(child))
	}
	return b.String()
}

func link(n newsmd.Node) string {
	text := inlineChildren(n)
	href := strings.TrimSpace(n.Attr("href"))
	if href == "" {
		return text
	}
	core := strings.Trim(text, htmlSpace)
	if core == "" {
		return text
	}
	lead, trail := surroundingSpace(text)
	return lead + "[" + core + "](" + href + ")" + trail
}

func image(n newsmd.Node) string {
	src := strings.TrimSpace(n.Attr("src"))
	if src == "" {
		return ""
	}
	alt := strings.Trim(collapseSpace(n.Attr("alt")), htmlSpace)
	return "![" + alt + "](" + src + ")"
}

// wrap surrounds the non-space core of s with mark, keeping surrounding
// whitespace outside the delimiters so the emphasis stays valid.
func wrap(s, mark string) string {
	core := strings.Trim(s, htmlSpace)
	if core == "" {
		return s
	}
	lead, trail := surroundingSpace(s)
	return lead + mark + core + mark + trail
}

func surroundingSpace(s string) (lead, trail string) {
	lead = s[:len(s)-len(strings.TrimLeft(s, htmlSpace))]
	trail = s[len(strings.TrimRight(s, htmlSpace)):]
	return lead, trail
}

func code(text string) string {
	core := strings.Trim(collapseSpace(text), htmlSpace)
	if core == "" {
		return ""
	}
	if strings.Contains(core, "`") {
		return "`` " + core + " ``"
	}
	return "`" + core + "`"
}

func heading(n newsmd.Node) string {
	level, _ := strconv.Atoi(n.TagName()[1:])
	text := normalizeInline(strings.ReplaceAll(inlineChildren(n), "\n", " "))
	if text == "" {
		return ""
	}
	return strings.Repeat("#", level) + " " + text
}

func list(n newsmd.Node, depth int) string {
	ordered := n.TagName() == "ol"
	num := 1
	if ordered {
		if start, err := strconv.Atoi(strings.TrimSpace(n.Attr("start"))); err == nil {
			num = start
		}
	}

	marker := func() string {
		if !ordered {
			return "-"
		}
		m := strconv.Itoa(num) + "."
		num++
		return m
	}

	var parts []string
	for _, child := range n.Children() {
		var part string
		switch child.Type() {
		case newsmd.ElementNode:
			switch categorize(child.TagName()) {
			case categoryListItem:
				part = listItem(child, marker(), depth)
			case categoryList:
				// Lists nested without a wrapping <li> still indent.
				part = list(child, depth+1)
			case categoryIgnored:
			default:
				if text := normalizeInline(inline(child)); text != "" {
					part = itemLines(text, marker(), depth)
				}
			}
		case newsmd.TextNode:
			if text := normalizeInline(collapseSpace(child.TextContent())); text != "" {
				part = itemLines(text, marker(), depth)
			}
		}
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "\n")
}

// listItem renders one <li>. Nested lists, including those wrapped in
// transparent elements, are rendered one level deeper below the item's
// own line; everything else is inline content.
func listItem(n newsmd.Node, marker string, depth int) string {
	item := &itemWriter{depth: depth}
	for _, child := range n.Children() {
		item.walk(child)
	}

	parts := []string{itemLines(normalizeInline(item.text.String()), marker, depth)}
	parts = append(parts, item.nested...)
	return strings.Join(parts, "\n")
}

// itemWriter splits the content of a list item into inline text and
// nested lists.
type itemWriter struct {
	depth  int
	text   strings.Builder
	nested []string
}

func (w *itemWriter) walk(n newsmd.Node) {
	if n.Type() == newsmd.ElementNode {
		switch categorize(n.TagName()) {
		case categoryList:
			if s := list(n, w.depth+1); s != "" {
				w.nested = append(w.nested, s)
			}
			return
		case categoryContainer, categoryParagraph, categoryUnknown:
			if hasList(n) {
				w.text.WriteString(" ")
				for _, child := range n.Children() {
					w.walk(child)
				}
				w.text.WriteString(" ")
				return
			}
		}
	}
	w.text.WriteString(inline(n))
}

// hasList reports whether a list is reachable from n through elements
// that render transparently.
func hasList(n newsmd.Node) bool {
	for _, child := range n.Children() {
		if child.Type() != newsmd.ElementNode {
			continue
		}
		switch categorize(child.TagName()) {
		case categoryList:
			return true
		case categoryContainer, categoryParagraph, categoryUnknown:
			if hasList(child) {
				return true
			}
		}
	}
	return false
}

// itemLines prefixes the first line of text with marker and aligns any
// continuation lines with the item's content column.
func itemLines(text, marker string, depth int) string {
	indent := strings.Repeat(indentUnit, depth)
	lines := strings.Split(text, "\n")
	lines[0] = indent + marker + " " + lines[0]
	cont := indent + strings.Repeat(" ", len(marker)+1)
	for i := 1; i < len(lines); i++ {
		lines[i] = cont + lines[i]
	}
	return strings.Join(lines, "\n")
}

func codeBlock(n newsmd.Node) string {
	body := strings.Trim(n.TextContent(), "\n")
	if strings.Trim(body, htmlSpace) == "" {
		return ""
	}
	fence := "```"
	if run := longestRun(body, '`'); run >= len(fence) {
		fence = strings.Repeat("`", run+1)
	}
	return fence + codeLanguage(n) + "\n" + body + "\n" + fence
}

// codeLanguage reads a language hint from the class of a <pre> or its
// first <code> child ("language-go", "lang-go").
func codeLanguage(n newsmd.Node) string {
	candidates := []newsmd.Node{n}
	for _, child := range n.Children() {
		if child.Type() == newsmd.ElementNode && child.TagName() == "code" {
			candidates = append(candidates, child)
			break
		}
	}
	for _, c := range candidates {
		for _, class := range strings.Fields(c.Attr("class")) {
			for _, prefix := range []string{"language-", "lang-"} {
				if lang, ok := strings.CutPrefix(class, prefix); ok && lang != "" {
					return lang
				}
			}
		}
	}
	return ""
}

func longestRun(s string, r byte) int {
	longest, cur := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == r {
			cur++
			longest = max(longest, cur)
		} else {
			cur = 0
		}
	}
	return longest
}

func blockquote(n newsmd.Node) string {
	w := &blockWriter{}
	for _, child := range n.Children() {
		w.walk(child)
	}
	w.flush()
	inner := w.document()
	if inner == "" {
		return ""
	}

	lines := strings.Split(inner, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	return strings.Join(lines, "\n")
}

func table(n newsmd.Node) string {
	var caption string
	var rows [][]string
	for _, child := range n.Children() {
		if child.Type() != newsmd.ElementNode {
			continue
		}
		switch child.TagName() {
		case "caption":
			caption = normalizeInline(strings.ReplaceAll(inlineChildren(child), "\n", " "))
		case "thead", "tbody", "tfoot":
			for _, tr := range child.Children() {
				if tr.Type() == newsmd.ElementNode && tr.TagName() == "tr" {
					rows = appendRow(rows, tr)
				}
			}
		case "tr":
			rows = appendRow(rows, child)
		}
	}

	if len(rows) == 0 {
		return caption
	}

	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}

	lines := make([]string, 0, len(rows)+1)
	for i, row := range rows {
		for len(row) < cols {
			row = append(row, "")
		}
		lines = append(lines, "| "+strings.Join(row, " | ")+" |")
		if i == 0 {
			sep := make([]string, cols)
			for j := range sep {
				sep[j] = "---"
			}
			lines = append(lines, "| "+strings.Join(sep, " | ")+" |")
		}
	}

	out := strings.Join(lines, "\n")
	if caption != "" {
		out = caption + "\n\n" + out
	}
	return out
}

func appendRow(rows [][]string, tr newsmd.Node) [][]string {
	var cells []string
	for _, cell := range tr.Children() {
		if cell.Type() != newsmd.ElementNode || (cell.TagName() != "td" && cell.TagName() != "th") {
			continue
		}
		text := normalizeInline(strings.ReplaceAll(inlineChildren(cell), "\n", " "))
		cells = append(cells, strings.ReplaceAll(text, "|", `\|`))
	}
	if len(cells) == 0 {
		return rows
	}
	return append(rows, cells)
}

func collapseSpace(s string) string {
	return spaceRun.ReplaceAllString(s, " ")
}

// normalizeInline tidies a run of inline Markdown: spaces are collapsed,
// each line is trimmed, and empty lines left behind by <br> are dropped.
func normalizeInline(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Trim(lineSpace.ReplaceAllString(line, " "), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// normalize tidies one non-verbatim block. Trailing whitespace is removed
// from every line, runs of blank lines become one, and the result is
// trimmed.
func normalize(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	s = blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.Trim(s, htmlSpace)
}
