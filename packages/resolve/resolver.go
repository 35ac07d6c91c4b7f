// Package resolve expands {{...}} placeholders in request descriptors
// through an ordered chain of variable providers. Resolution is a pure
// function of provider state: the resolver holds nothing mutable and is
// safe to use from concurrent goroutines.
package resolve

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/devraw/restfile/packages/core/parser"
)

// DefaultMaxDepth bounds recursive re-resolution per top-level placeholder
// span. Cycle detection catches loops; the depth limit is the backstop for
// long non-cyclic chains.
const DefaultMaxDepth = 10

type Resolver struct {
	providers []Provider
	maxDepth  int
}

// NewResolver builds a resolver over an explicit, ordered provider list;
// the first provider that recognizes a name wins.
func NewResolver(providers ...Provider) *Resolver {
	return &Resolver{providers: providers, maxDepth: DefaultMaxDepth}
}

// Resolve expands every placeholder in the descriptor's string fields and
// returns a new descriptor plus the warnings and errors encountered.
// Resolving an already fully-resolved descriptor is a no-op.
func (r *Resolver) Resolve(d *parser.Descriptor, ctx *Context) (*parser.Descriptor, []Diagnostic) {
	out := d.Clone()
	var diags []Diagnostic

	out.URL = r.field("url", out.URL, ctx, &diags)
	for i, h := range out.Headers.All() {
		out.Headers.SetAt(i, r.field("header "+h.Name, h.Value, ctx, &diags))
	}
	out.Body = r.field("body", out.Body, ctx, &diags)
	out.FileRef = r.field("file", out.FileRef, ctx, &diags)
	for i := range out.Form {
		f := &out.Form[i]
		f.Value = r.field("form "+f.Name, f.Value, ctx, &diags)
		f.FilePath = r.field("form "+f.Name, f.FilePath, ctx, &diags)
	}

	return out, diags
}

// ResolveText expands placeholders in a free-standing string, e.g. for a
// hover preview.
func (r *Resolver) ResolveText(text string, ctx *Context) (string, []Diagnostic) {
	var diags []Diagnostic
	resolved := r.field("text", text, ctx, &diags)
	return resolved, diags
}

func (r *Resolver) field(field, value string, ctx *Context, diags *[]Diagnostic) string {
	if !strings.Contains(value, "{{") {
		return value
	}
	st := &chainState{seen: make(map[string]bool)}
	return r.evalText(field, value, ctx, st, 0, diags)
}

// evalText substitutes every top-level span in text. Spans that fail to
// resolve keep their literal placeholder text.
func (r *Resolver) evalText(field, text string, ctx *Context, st *chainState, depth int, diags *[]Diagnostic) string {
	spans := scanSpans(text)
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, sp := range spans {
		b.WriteString(text[last:sp.start])
		if resolved, ok := r.resolveExpr(field, sp.expr, ctx, st, depth, diags); ok {
			b.WriteString(resolved)
		} else {
			b.WriteString(text[sp.start:sp.end])
		}
		last = sp.end
	}
	b.WriteString(text[last:])
	return b.String()
}

// resolveExpr resolves one placeholder expression to its final text,
// re-resolving values that themselves contain placeholders.
func (r *Resolver) resolveExpr(field, rawExpr string, ctx *Context, st *chainState, depth int, diags *[]Diagnostic) (string, bool) {
	e := parseExpr(rawExpr)
	if e.name == "" {
		*diags = append(*diags, unresolvedWarning(field, rawExpr))
		return "", false
	}

	if st.seen[e.name] {
		*diags = append(*diags, circularError(field, append(append([]string{}, st.names...), e.name)))
		return "", false
	}

	value, found, err := r.lookup(e, ctx)
	if err != nil {
		*diags = append(*diags, badArgumentError(field, e.name, err))
		return "", false
	}
	if !found {
		if e.hasFallback {
			st.push(e.name)
			defer st.pop()
			return r.evalText(field, e.fallback, ctx, st, depth+1, diags), true
		}
		*diags = append(*diags, unresolvedWarning(field, e.name))
		return "", false
	}

	text := stringify(value)
	if strings.Contains(text, "{{") {
		if depth >= r.maxDepth {
			*diags = append(*diags, depthWarning(field, e.name, r.maxDepth))
			return text, true
		}
		st.push(e.name)
		defer st.pop()
		text = r.evalText(field, text, ctx, st, depth+1, diags)
	}
	return text, true
}

func (r *Resolver) lookup(e expr, ctx *Context) (any, bool, error) {
	for _, p := range r.providers {
		if !p.CanResolve(e.name) {
			continue
		}
		return p.Resolve(e.name, e.args, ctx)
	}
	return nil, false, nil
}

// stringify turns a provider value into substitution text. Strings pass
// through; structured values keep their JSON form, so a whole-field
// placeholder injects the native JSON structure rather than a Go-formatted
// rendering.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.RawMessage:
		return string(t)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

type chainState struct {
	names []string
	seen  map[string]bool
}

func (st *chainState) push(name string) {
	st.names = append(st.names, name)
	st.seen[name] = true
}

func (st *chainState) pop() {
	last := st.names[len(st.names)-1]
	st.names = st.names[:len(st.names)-1]
	delete(st.seen, last)
}

type span struct {
	start int // offset of "{{"
	end   int // offset just past "}}"
	expr  string
}

// scanSpans finds top-level {{...}} spans in a single pass. One level of
// internal nesting is honored (a fallback expression may contain its own
// placeholder); deeper {{ sequences are treated as literal text, and an
// unterminated {{ is literal too.
func scanSpans(s string) []span {
	var spans []span
	i := 0
	for i+1 < len(s) {
		if s[i] != '{' || s[i+1] != '{' {
			i++
			continue
		}
		depth := 1
		j := i + 2
		closed := false
		for j+1 < len(s) {
			if s[j] == '{' && s[j+1] == '{' {
				if depth < 2 {
					depth++
				}
				j += 2
				continue
			}
			if s[j] == '}' && s[j+1] == '}' {
				depth--
				j += 2
				if depth == 0 {
					closed = true
					break
				}
				continue
			}
			j++
		}
		if closed {
			spans = append(spans, span{start: i, end: j, expr: strings.TrimSpace(s[i+2 : j-2])})
			i = j
		} else {
			i += 2
		}
	}
	return spans
}

type expr struct {
	name        string
	args        []string
	fallback    string
	hasFallback bool
}

// parseExpr splits "name[.path][|fallback]" or "$func arg arg". The
// fallback separator is only honored at nesting depth zero so a fallback
// can itself contain placeholders.
func parseExpr(s string) expr {
	s = strings.TrimSpace(s)
	var e expr

	depth := 0
	cut := -1
	for i := 0; i < len(s); i++ {
		if i+1 < len(s) {
			if s[i] == '{' && s[i+1] == '{' {
				depth++
				i++
				continue
			}
			if s[i] == '}' && s[i+1] == '}' {
				depth--
				i++
				continue
			}
		}
		if s[i] == '|' && depth == 0 {
			cut = i
			break
		}
	}

	head := s
	if cut >= 0 {
		e.hasFallback = true
		e.fallback = strings.TrimSpace(s[cut+1:])
		head = strings.TrimSpace(s[:cut])
	}

	if strings.HasPrefix(head, "$") {
		fields := splitArgs(head)
		if len(fields) > 0 {
			e.name = fields[0]
			e.args = fields[1:]
		}
		return e
	}
	e.name = head
	return e
}

// splitArgs splits on whitespace while honoring single and double quotes,
// so a $datetime format may contain spaces.
func splitArgs(s string) []string {
	var fields []string
	var current strings.Builder
	var quote byte
	inToken := false

	flush := func() {
		if inToken {
			fields = append(fields, current.String())
			current.Reset()
			inToken = false
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				current.WriteByte(c)
			}
		case c == '"' || c == '\'':
			quote = c
			inToken = true
		case c == ' ' || c == '\t':
			flush()
		default:
			current.WriteByte(c)
			inToken = true
		}
	}
	flush()
	return fields
}
