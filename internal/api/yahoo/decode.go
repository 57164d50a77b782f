package yahoo

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// listTags always decode to a sequence, even with a single child.
var listTags = map[string]bool{
	"players":          true,
	"teams":            true,
	"matchups":         true,
	"transactions":     true,
	"draft_results":    true,
	"stats":            true,
	"roster_positions": true,
	"game_weeks":       true,
}

type element struct {
	tag      string
	text     strings.Builder
	children []*element
}

// Decode converts a Fantasy API XML document into nested map[string]any,
// []any and string values. Namespaces are dropped. An element decodes to a
// sequence when its tag is list-shaped or when it has several children that
// all share one tag; otherwise to a mapping keyed by child tag. Childless
// elements decode to their trimmed text. The root element itself is unwrapped.
func Decode(raw []byte) (any, error) {
	root, err := parseTree(raw)
	if err != nil {
		return nil, err
	}
	return root.value(), nil
}

func parseTree(raw []byte) (*element, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var stack []*element
	var root *element
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{tag: t.Name.Local}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			} else if root == nil {
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
	if root == nil {
		return nil, errors.New("decoding xml: empty document")
	}
	return root, nil
}

func (e *element) value() any {
	if len(e.children) == 0 {
		return strings.TrimSpace(e.text.String())
	}
	if e.isList() {
		items := make([]any, 0, len(e.children))
		for _, child := range e.children {
			items = append(items, child.value())
		}
		return items
	}
	fields := make(map[string]any, len(e.children))
	for _, child := range e.children {
		v := child.value()
		existing, ok := fields[child.tag]
		if !ok {
			fields[child.tag] = v
			continue
		}
		if repeated, ok := existing.(repeatedField); ok {
			fields[child.tag] = append(repeated, v)
			continue
		}
		fields[child.tag] = repeatedField{existing, v}
	}
	for tag, v := range fields {
		if repeated, ok := v.(repeatedField); ok {
			fields[tag] = []any(repeated)
		}
	}
	return fields
}

// repeatedField marks a tag seen more than once among mixed siblings so a
// child that is itself a sequence is not mistaken for the accumulator.
type repeatedField []any

func (e *element) isList() bool {
	if listTags[e.tag] {
		return true
	}
	if len(e.children) < 2 {
		return false
	}
	first := e.children[0].tag
	for _, child := range e.children[1:] {
		if child.tag != first {
			return false
		}
	}
	return true
}
