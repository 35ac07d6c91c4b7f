package resolve

import (
	"encoding/json"
	"os"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/devraw/restfile/packages/builtin"
	"github.com/devraw/restfile/packages/core/selector"
	"github.com/devraw/restfile/packages/store"
)

// Context carries the per-resolution inputs a provider may consult: which
// document is resolving (cache identity) and where in it the block starts,
// so file-scoped variables only apply once declared.
type Context struct {
	Document string
	Offset   int
}

// Provider is one ordered lookup source for a variable name. found=false
// is an explicit not-found; a non-nil error is fatal for the placeholder
// span that asked.
type Provider interface {
	CanResolve(name string) bool
	Resolve(name string, args []string, ctx *Context) (value any, found bool, err error)
}

// SystemProvider resolves $-prefixed system function names through a
// builtin registry.
type SystemProvider struct {
	Funcs *builtin.Registry
}

func NewSystemProvider(opts ...builtin.Option) *SystemProvider {
	return &SystemProvider{Funcs: builtin.NewRegistry(opts...)}
}

func (p *SystemProvider) CanResolve(name string) bool {
	return strings.HasPrefix(name, "$") && p.Funcs.Has(strings.TrimPrefix(name, "$"))
}

func (p *SystemProvider) Resolve(name string, args []string, _ *Context) (any, bool, error) {
	v, found, err := p.Funcs.Call(strings.TrimPrefix(name, "$"), args)
	if err != nil {
		return nil, true, err
	}
	if !found || v == nil {
		return nil, false, nil
	}
	return v, true, nil
}

var requestRefRe = regexp.MustCompile(`^([A-Za-z0-9_-]+)\.(request|response)(?:\.(.+))?$`)

// RequestProvider resolves references into previously executed requests,
// e.g. login.response.body.$.token, against a cache snapshot. A request
// that has not run yet is a plain not-found.
type RequestProvider struct {
	Snapshot *store.Snapshot
}

func (p *RequestProvider) CanResolve(name string) bool {
	return requestRefRe.MatchString(name)
}

func (p *RequestProvider) Resolve(name string, _ []string, ctx *Context) (any, bool, error) {
	m := requestRefRe.FindStringSubmatch(name)
	if m == nil {
		return nil, false, nil
	}
	document := ""
	if ctx != nil {
		document = ctx.Document
	}
	entry, ok := p.Snapshot.Get(document, m[1])
	if !ok {
		return nil, false, nil
	}
	if m[2] == "request" {
		return extractRequest(entry, m[3])
	}
	return extractResponse(entry, m[3])
}

func extractResponse(entry *store.Entry, path string) (any, bool, error) {
	resp := entry.Response
	if resp == nil {
		return nil, false, nil
	}
	switch {
	case path == "" || path == "body":
		return resp.BodyString(), true, nil
	case strings.HasPrefix(path, "body."):
		return jsonLookup(resp.JSON(), strings.TrimPrefix(path, "body."))
	case path == "status":
		return resp.StatusCode, true, nil
	case strings.HasPrefix(path, "headers."):
		v := resp.Header(strings.TrimPrefix(path, "headers."))
		if v == "" {
			return nil, false, nil
		}
		return v, true, nil
	default:
		return nil, false, nil
	}
}

func extractRequest(entry *store.Entry, path string) (any, bool, error) {
	req := entry.Request
	if req == nil {
		return nil, false, nil
	}
	switch {
	case path == "" || path == "body":
		if req.Body == "" {
			return nil, false, nil
		}
		return req.Body, true, nil
	case strings.HasPrefix(path, "body."):
		if !gjson.Valid(req.Body) {
			return nil, false, nil
		}
		return jsonLookup(gjson.Parse(req.Body), strings.TrimPrefix(path, "body."))
	case path == "url":
		return req.URL, true, nil
	case path == "method":
		return req.Method, true, nil
	case strings.HasPrefix(path, "headers."):
		v, ok := req.Headers.Get(strings.TrimPrefix(path, "headers."))
		if !ok {
			return nil, false, nil
		}
		return v, true, nil
	default:
		return nil, false, nil
	}
}

// jsonLookup evaluates a body path. JSONPath-style "$.a.b[0]" is accepted
// and translated to the gjson form.
func jsonLookup(root gjson.Result, path string) (any, bool, error) {
	if !root.Exists() {
		return nil, false, nil
	}
	res := root.Get(toGJSONPath(path))
	if !res.Exists() {
		return nil, false, nil
	}
	return jsonValue(res), true, nil
}

func toGJSONPath(path string) string {
	path = strings.TrimPrefix(path, "$.")
	path = strings.TrimPrefix(path, "$")
	var b strings.Builder
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '[':
			if b.Len() > 0 {
				b.WriteByte('.')
			}
		case ']':
		default:
			b.WriteByte(path[i])
		}
	}
	return strings.Trim(b.String(), ".")
}

// jsonValue keeps objects and arrays as raw JSON so whole-field
// substitution injects structure, not a re-stringified form.
func jsonValue(res gjson.Result) any {
	switch res.Type {
	case gjson.JSON:
		return json.RawMessage(res.Raw)
	default:
		return res.Value()
	}
}

// FileProvider resolves @name = value declarations from the document
// itself. Only declarations earlier than the requesting block apply; the
// last one before it wins.
type FileProvider struct {
	Variables []*selector.Variable
}

func (p *FileProvider) CanResolve(name string) bool {
	base := baseName(name)
	for _, v := range p.Variables {
		if v.Name == name || v.Name == base {
			return true
		}
	}
	return false
}

func (p *FileProvider) Resolve(name string, _ []string, ctx *Context) (any, bool, error) {
	limit := -1
	if ctx != nil && ctx.Offset > 0 {
		limit = ctx.Offset
	}
	lookup := func(n string) (string, bool) {
		found := false
		value := ""
		for _, v := range p.Variables {
			if v.Name != n {
				continue
			}
			if limit >= 0 && v.Offset >= limit {
				continue
			}
			value = v.Value
			found = true
		}
		return value, found
	}
	if v, ok := lookup(name); ok {
		return v, true, nil
	}
	base, path := splitPath(name)
	if v, ok := lookup(base); ok && path != "" {
		if gjson.Valid(v) {
			return jsonLookup(gjson.Parse(v), path)
		}
		return nil, false, nil
	}
	return nil, false, nil
}

// EnvironmentProvider resolves variables of the active environment
// profile. Values come from configuration and may be structured.
type EnvironmentProvider struct {
	Vars map[string]any
}

func (p *EnvironmentProvider) CanResolve(name string) bool {
	if _, ok := p.Vars[name]; ok {
		return true
	}
	_, ok := p.Vars[baseName(name)]
	return ok
}

func (p *EnvironmentProvider) Resolve(name string, _ []string, _ *Context) (any, bool, error) {
	if v, ok := p.Vars[name]; ok {
		return v, true, nil
	}
	base, path := splitPath(name)
	v, ok := p.Vars[base]
	if !ok || path == "" {
		return nil, false, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, false, nil
	}
	return jsonLookup(gjson.ParseBytes(raw), path)
}

// ProcessEnvProvider is the lowest-priority fallback: plain process
// environment variables.
type ProcessEnvProvider struct {
	Lookup func(string) (string, bool)
}

func (p *ProcessEnvProvider) CanResolve(name string) bool {
	lookup := p.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	_, ok := lookup(name)
	return ok
}

func (p *ProcessEnvProvider) Resolve(name string, _ []string, _ *Context) (any, bool, error) {
	lookup := p.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(name)
	if !ok {
		return nil, false, nil
	}
	return v, true, nil
}

func baseName(name string) string {
	base, _ := splitPath(name)
	return base
}

func splitPath(name string) (base, path string) {
	if idx := strings.Index(name, "."); idx > 0 {
		return name[:idx], name[idx+1:]
	}
	return name, ""
}
