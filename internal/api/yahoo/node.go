package yahoo

import (
	"strconv"
	"strings"
)

// node wraps a decoded value and gives nil-safe navigation over it.
type node struct {
	v any
}

// child returns the value under tag. A sequence stands in for its repeated
// child tag, so child on a sequence yields its first item.
func (n node) child(tag string) node {
	switch v := n.v.(type) {
	case map[string]any:
		return node{v[tag]}
	case []any:
		if len(v) == 0 {
			return node{}
		}
		return node{v[0]}
	}
	return node{}
}

func (n node) path(tags ...string) node {
	for _, tag := range tags {
		n = n.child(tag)
	}
	return n
}

// items returns the repeated children of a collection node regardless of
// whether the decoder produced a sequence or a single mapping.
func (n node) items(tag string) []node {
	switch v := n.v.(type) {
	case []any:
		out := make([]node, 0, len(v))
		for _, item := range v {
			out = append(out, node{item})
		}
		return out
	case map[string]any:
		inner, ok := v[tag]
		if !ok {
			return nil
		}
		if seq, ok := inner.([]any); ok {
			return node{seq}.items(tag)
		}
		return []node{{inner}}
	}
	return nil
}

func (n node) exists() bool {
	switch v := n.v.(type) {
	case nil:
		return false
	case string:
		return v != ""
	}
	return true
}

func (n node) str() string {
	s, _ := n.v.(string)
	return strings.TrimSpace(s)
}

func (n node) float() float64 {
	f, err := strconv.ParseFloat(n.str(), 64)
	if err != nil {
		return 0
	}
	return f
}

func (n node) integer() (int, bool) {
	i, err := strconv.Atoi(n.str())
	if err != nil {
		return 0, false
	}
	return i, true
}

func (n node) flag() bool {
	i, ok := n.integer()
	return ok && i != 0
}

// shape collects required-field lookups against one response so a missing
// field surfaces as a DataShapeError naming it.
type shape struct {
	path string
	err  error
}

func (s *shape) str(n node, field string) string {
	if !n.exists() {
		s.fail(field)
		return ""
	}
	return n.str()
}

func (s *shape) integer(n node, field string) int {
	i, ok := n.integer()
	if !ok {
		s.fail(field)
	}
	return i
}

func (s *shape) fail(field string) {
	if s.err == nil {
		s.err = &DataShapeError{Path: s.path, Field: field}
	}
}
