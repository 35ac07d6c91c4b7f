// Package selector splits a request document into its discrete request
// blocks. Splitting only inspects line starts, so delimiter-like text
// embedded inside a body (for example in a JSON string) never opens a new
// block. Parsing the block bodies is left to packages/core/parser.
package selector

import (
	"regexp"
	"strings"
)

// Recognized block metadata keys. Unknown @keys on comment lines are
// ignored, not fatal.
var metadataKeys = map[string]bool{
	"name":          true,
	"note":          true,
	"no-redirect":   true,
	"no-cookie-jar": true,
	"prompt":        true,
}

var variableLineRe = regexp.MustCompile(`^@([A-Za-z0-9_.-]+)\s*[:=]\s*(.*)$`)

// Range is a half-open [Start, End) span of byte offsets in the document.
type Range struct {
	Start int
	End   int
}

func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Block is one request definition plus its metadata. Raw covers the
// metadata lines and body exactly as authored; Text is the body handed to
// the request parsers.
type Block struct {
	Name     string
	Raw      string
	Text     string
	Metadata map[string]string
	Range    Range
	Line     int

	region Range
}

// Variable is a file-scoped @name = value declaration. Offset marks where
// the declaration starts so later consumers can honor declaration order.
type Variable struct {
	Name   string
	Value  string
	Offset int
	Line   int
}

// Document is the result of splitting: ordered, non-overlapping blocks and
// the file-scoped variables declared between them.
type Document struct {
	Blocks    []*Block
	Variables []*Variable

	src *Source
}

func (d *Document) Source() *Source { return d.src }

// Split partitions a document into request blocks. A line whose first
// non-whitespace characters are "###" is a boundary; text before the first
// boundary forms block 0. Blocks whose trimmed body is empty are dropped.
func Split(text string) *Document {
	src := NewSource(text)
	doc := &Document{src: src}

	lines := splitLines(text)

	regionStart := 0
	var regionLines []lineRec
	name := ""
	nameLine := 1

	flush := func(end int) {
		block := buildRegion(doc, regionLines, name, nameLine, regionStart, end)
		if block != nil {
			doc.Blocks = append(doc.Blocks, block)
		}
	}

	for idx, ln := range lines {
		trimmed := strings.TrimSpace(ln.text)
		if strings.HasPrefix(trimmed, "###") {
			flush(ln.start)
			regionLines = nil
			// The delimiter line belongs to the block it opens, so a cursor
			// on the "###" line selects the request below it.
			regionStart = ln.start
			name = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			nameLine = idx + 1
			continue
		}
		regionLines = append(regionLines, ln)
	}
	flush(len(text))

	return doc
}

// BlockAt returns the block enclosing a byte offset.
func (d *Document) BlockAt(offset int) (*Block, bool) {
	for _, b := range d.Blocks {
		if b.region.Contains(offset) || b.Range.Contains(offset) {
			return b, true
		}
	}
	return nil, false
}

// BlockAtPosition is BlockAt for a 1-based line/column cursor.
func (d *Document) BlockAtPosition(line, col int) (*Block, bool) {
	return d.BlockAt(d.src.Offset(line, col))
}

type lineRec struct {
	text  string // without trailing newline
	start int    // byte offset of the line start
	num   int    // 1-based line number
}

func splitLines(text string) []lineRec {
	var out []lineRec
	start := 0
	num := 1
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == '\n' {
			out = append(out, lineRec{text: text[start:i], start: start, num: num})
			start = i + 1
			num++
		}
	}
	return out
}

// buildRegion scans one delimiter-free region: metadata comment lines and
// file variable declarations first, then the body. Returns nil when the
// body is empty.
func buildRegion(doc *Document, lines []lineRec, name string, nameLine, regionStart, regionEnd int) *Block {
	meta := map[string]string{}
	bodyIdx := -1

	for i, ln := range lines {
		trimmed := strings.TrimSpace(strings.TrimRight(ln.text, "\r"))
		if trimmed == "" {
			continue
		}
		if key, value, ok := metadataLine(trimmed); ok {
			if metadataKeys[key] {
				if _, dup := meta[key]; !dup {
					meta[key] = value
				}
			}
			continue
		}
		if isComment(trimmed) {
			continue
		}
		if m := variableLineRe.FindStringSubmatch(trimmed); m != nil {
			doc.Variables = append(doc.Variables, &Variable{
				Name:   m[1],
				Value:  strings.TrimSpace(m[2]),
				Offset: ln.start,
				Line:   ln.num,
			})
			continue
		}
		bodyIdx = i
		break
	}

	if bodyIdx == -1 {
		return nil
	}

	bodyStart := lines[bodyIdx].start
	bodyEnd := bodyStart
	for _, ln := range lines[bodyIdx:] {
		if strings.TrimSpace(ln.text) != "" {
			bodyEnd = ln.start + len(ln.text)
		}
	}

	text := doc.src.Text()
	body := text[bodyStart:bodyEnd]
	if strings.TrimSpace(body) == "" {
		return nil
	}

	// The reported range starts at the first metadata or body line so it
	// covers the metadata that belongs to this block.
	rangeStart := bodyStart
	for _, ln := range lines {
		if strings.TrimSpace(ln.text) != "" {
			rangeStart = ln.start
			break
		}
	}

	block := &Block{
		Name:     name,
		Raw:      text[rangeStart:bodyEnd],
		Text:     body,
		Metadata: meta,
		Range:    Range{Start: rangeStart, End: bodyEnd},
		Line:     nameLine,
		region:   Range{Start: regionStart, End: regionEnd},
	}
	if n, ok := meta["name"]; ok && n != "" {
		block.Name = n
	}
	return block
}

func metadataLine(trimmed string) (key, value string, ok bool) {
	var rest string
	switch {
	case strings.HasPrefix(trimmed, "//"):
		rest = strings.TrimSpace(trimmed[2:])
	case strings.HasPrefix(trimmed, "#"):
		rest = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
	default:
		return "", "", false
	}
	if !strings.HasPrefix(rest, "@") {
		return "", "", false
	}
	rest = rest[1:]
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if c == ':' || c == ' ' || c == '\t' {
			return strings.ToLower(rest[:i]), strings.TrimSpace(rest[i+1:]), rest[:i] != ""
		}
	}
	return strings.ToLower(rest), "", rest != ""
}

func isComment(trimmed string) bool {
	return strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//")
}
