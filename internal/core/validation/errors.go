package validation

import (
	"sort"
	"strings"
)

// Errors maps form field names to a single message each.
type Errors struct {
	Fields map[string]string `json:"fields"`
}

// Add records msg for field unless the field already has an error.
func (e *Errors) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *Errors) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// Err returns e as an error, or nil when there is nothing to report.
func (e *Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *Errors) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
