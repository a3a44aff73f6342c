package httpmsg

import "strings"

// field is one header line as it arrived on the wire: original casing
// preserved, one entry per occurrence.
type field struct {
	Name  string
	Value string
}

// Header is an insertion-ordered, case-insensitive multimap. Duplicate
// names (Set-Cookie, Via, ...) keep every value; lookups fold case. A plain
// map[string][]string would lose first-seen casing and, more importantly,
// would silently merge entries that the wire format keeps distinct — see
// spec §9 "Header multimap semantics".
type Header struct {
	fields []field
}

// NewHeader returns an empty header ready to use.
func NewHeader() *Header {
	return &Header{}
}

// Add appends name/value as a new entry, preserving name's casing as given.
func (h *Header) Add(name, value string) {
	h.fields = append(h.fields, field{Name: name, Value: value})
}

// Set replaces all existing entries for name (case-insensitive) with a
// single entry carrying the given value. The casing of the first existing
// match is kept; if there is no existing entry, name is used as given.
func (h *Header) Set(name, value string) {
	lower := strings.ToLower(name)
	replaced := false
	kept := h.fields[:0]
	for _, f := range h.fields {
		if strings.ToLower(f.Name) != lower {
			kept = append(kept, f)
			continue
		}
		if !replaced {
			kept = append(kept, field{Name: f.Name, Value: value})
			replaced = true
		}
	}
	h.fields = kept
	if !replaced {
		h.fields = append(h.fields, field{Name: name, Value: value})
	}
}

func dropMatching(fs []field, lowerName string) []field {
	out := fs[:0]
	for _, f := range fs {
		if strings.ToLower(f.Name) == lowerName {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Get returns the first value associated with name (case-insensitive), and
// whether any entry exists at all.
func (h *Header) Get(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, f := range h.fields {
		if strings.ToLower(f.Name) == lower {
			return f.Value, true
		}
	}
	return "", false
}

// Values returns every value associated with name, in arrival order.
func (h *Header) Values(name string) []string {
	lower := strings.ToLower(name)
	var out []string
	for _, f := range h.fields {
		if strings.ToLower(f.Name) == lower {
			out = append(out, f.Value)
		}
	}
	return out
}

// Has reports whether name occurs at all (case-insensitive).
func (h *Header) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Del removes every entry matching name (case-insensitive).
func (h *Header) Del(name string) {
	lower := strings.ToLower(name)
	h.fields = dropMatching(h.fields, lower)
}

// Each calls fn for every entry in insertion order.
func (h *Header) Each(fn func(name, value string)) {
	for _, f := range h.fields {
		fn(f.Name, f.Value)
	}
}

// Len returns the number of entries (counting duplicates separately).
func (h *Header) Len() int {
	return len(h.fields)
}

// HasToken reports whether name's value(s), split on commas and trimmed,
// contain token case-insensitively. Used for Connection/Upgrade/
// Transfer-Encoding, all of which are comma-separated token lists per
// RFC 7230.
func (h *Header) HasToken(name, token string) bool {
	token = strings.ToLower(token)
	for _, v := range h.Values(name) {
		for _, part := range strings.Split(v, ",") {
			if strings.ToLower(strings.TrimSpace(part)) == token {
				return true
			}
		}
	}
	return false
}

// LastToken returns the last comma-separated token of name's value, lower
// cased and trimmed — used to check Transfer-Encoding's last coding per
// RFC 7230 §3.3.1.
func (h *Header) LastToken(name string) (string, bool) {
	v, ok := h.Get(name)
	if !ok {
		return "", false
	}
	parts := strings.Split(v, ",")
	last := strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
	if last == "" {
		return "", false
	}
	return last, true
}
