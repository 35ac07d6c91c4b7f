package parser

import "strings"

// Descriptor is a single request ready to be resolved and handed to a
// transport. Header order and casing are preserved as authored. After
// variable resolution completes the descriptor is treated as immutable.
type Descriptor struct {
	Method  string
	URL     string
	Headers Headers
	// Body holds the request body verbatim. FileRef is set instead when the
	// body line was "< path"; reading the file is the transport's job.
	Body    string
	FileRef string
	// Form carries multipart fields built from curl -F flags. A field with
	// FilePath set is a file upload.
	Form             []FormField
	Name             string
	PreRequestScript string
	TestScript       string
	Options          Options
}

// Options records transport hints that the parsers recognize but do not
// enact (curl -L, --compressed, the no-redirect metadata key).
type Options struct {
	FollowRedirects bool
	Compressed      bool
	NoRedirect      bool
	NoCookieJar     bool
}

type FormField struct {
	Name     string
	Value    string
	FilePath string
}

// Header is one header entry with its original casing.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered header collection. Lookups are case-insensitive;
// insertion order and the casing of the first write are kept for output.
type Headers struct {
	entries []Header
}

func (h *Headers) Add(name, value string) {
	h.entries = append(h.entries, Header{Name: name, Value: value})
}

// Set replaces the value of an existing entry, keeping its position and
// original casing, or appends when the name is new.
func (h *Headers) Set(name, value string) {
	for i := range h.entries {
		if strings.EqualFold(h.entries[i].Name, name) {
			h.entries[i].Value = value
			return
		}
	}
	h.Add(name, value)
}

func (h Headers) Get(name string) (string, bool) {
	for _, e := range h.entries {
		if strings.EqualFold(e.Name, name) {
			return e.Value, true
		}
	}
	return "", false
}

// SetAt replaces the value at position i, keeping the entry's name and
// casing. Unlike Set it never collapses duplicate names.
func (h *Headers) SetAt(i int, value string) {
	h.entries[i].Value = value
}

func (h Headers) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

func (h Headers) Len() int {
	return len(h.entries)
}

// All returns the entries in insertion order. The slice is a copy.
func (h Headers) All() []Header {
	out := make([]Header, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h Headers) Clone() Headers {
	return Headers{entries: h.All()}
}

// Clone returns a deep copy of the descriptor. The resolver works on a
// clone so the unresolved input stays untouched.
func (d *Descriptor) Clone() *Descriptor {
	out := *d
	out.Headers = d.Headers.Clone()
	if d.Form != nil {
		out.Form = make([]FormField, len(d.Form))
		copy(out.Form, d.Form)
	}
	return &out
}
