package model

import (
	"bytes"
	"sort"

	"github.com/goccy/go-json"
)

// ProfileFields are the keys the profile form lets a user edit, in form
// order.  Every other key is carried through untouched.
var ProfileFields = []string{"name", "email", "phone", "ic", "gender", "address"}

// clientOnly keys never travel back upstream.
var clientOnly = map[string]bool{"token": true}

// Profile is the object served by the profile endpoints.  It keeps every
// upstream field as raw JSON so that a fetched profile saved unchanged is
// sent back exactly as it was received.
type Profile struct {
	fields map[string]json.RawMessage
}

// UnmarshalJSON stores each top-level member verbatim.
func (p *Profile) UnmarshalJSON(b []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	p.fields = fields
	return nil
}

// MarshalJSON writes the members in key order, without client-only keys.
func (p Profile) MarshalJSON() ([]byte, error) {
	keys := p.Keys()
	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0
	for _, k := range keys {
		if clientOnly[k] {
			continue
		}
		if n > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(p.fields[k])
		n++
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Keys returns all member names in sorted order.
func (p Profile) Keys() []string {
	keys := make([]string, 0, len(p.fields))
	for k := range p.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the member as form text: strings unquoted, numbers and
// booleans as their literal, null and missing as "".
func (p Profile) Get(key string) string {
	raw, ok := p.fields[key]
	if !ok {
		return ""
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// Set stores value as a JSON string unless it equals what Get already
// returns, in which case the original member (and its JSON type) is kept.
func (p *Profile) Set(key, value string) {
	if p.Get(key) == value {
		return
	}
	if p.fields == nil {
		p.fields = map[string]json.RawMessage{}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	p.fields[key] = raw
}

// Apply copies the editable fields from form into the profile.
func (p *Profile) Apply(form map[string]string) {
	for _, k := range ProfileFields {
		if v, ok := form[k]; ok {
			p.Set(k, v)
		}
	}
}

// ID returns the "id" member as text.
func (p Profile) ID() string { return p.Get("id") }
