package apiclient

import (
	"bytes"
	"sort"

	"github.com/goccy/go-json"
)

// listOf decodes either a bare JSON array or an object wrapping one, such
// as {"data":[...]} or {"residents":[...]}.  "data" wins when several
// members hold arrays; otherwise the first array member in key order.
type listOf[T any] []T

func (l *listOf[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*l = nil
		return nil
	}
	if b[0] == '[' {
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(b, &wrapper); err != nil {
		return err
	}
	keys := make([]string, 0, len(wrapper))
	for k := range wrapper {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if _, ok := wrapper["data"]; ok {
		keys = append([]string{"data"}, keys...)
	}
	for _, k := range keys {
		raw := bytes.TrimSpace(wrapper[k])
		if len(raw) > 0 && raw[0] == '[' {
			var items []T
			if err := json.Unmarshal(raw, &items); err != nil {
				return err
			}
			*l = items
			return nil
		}
	}
	*l = nil
	return nil
}
