package negotiation

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/raywall/fast-mock-server/json/value"
	"github.com/raywall/fast-mock-server/pkg/apperrors"
)

// Nomes usados para objetos e arrays sem nome próprio.
const (
	xmlObject = "item"
	xmlArray  = "items"
	xmlType   = "type"
)

// xmlCodec mapeia objeto para elemento e array para elementos "item"
// repetidos. Tipos que não são texto vão no atributo type.
type xmlCodec struct{}

func (xmlCodec) Encode(v any) ([]byte, error) {
	root := xmlObject
	if _, ok := v.([]any); ok {
		root = xmlArray
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if err := encodeElement(enc, root, v); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, apperrors.Wrap(apperrors.Unhandled, err, "cannot encode xml")
	}
	return buf.Bytes(), nil
}

func encodeElement(enc *xml.Encoder, name string, v any) error {
	if !validXMLName(name) {
		return apperrors.NotAcceptablef("property %q cannot be represented as xml", name)
	}
	start := xml.StartElement{Name: xml.Name{Local: name}}
	typed := func(t string) {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: xmlType}, Value: t})
	}

	var text string
	switch t := v.(type) {
	case nil:
		typed(value.KindNull.String())
	case bool:
		typed(value.KindBool.String())
		text = strconv.FormatBool(t)
	case string:
		text = t
	case []any:
		typed(value.KindArray.String())
	case map[string]any:
		if _, only := t[xmlObject]; len(t) == 0 || (only && len(t) == 1) {
			typed(value.KindObject.String())
		}
	default:
		if value.KindOf(v) != value.KindNumber {
			return apperrors.NotAcceptablef("value of %s cannot be represented as xml", name)
		}
		typed(value.KindNumber.String())
		text = value.Text(v)
	}

	if err := enc.EncodeToken(start); err != nil {
		return apperrors.Wrap(apperrors.Unhandled, err, "cannot encode xml")
	}
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if err := encodeElement(enc, xmlObject, e); err != nil {
				return err
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := encodeElement(enc, k, t[k]); err != nil {
				return err
			}
		}
	default:
		if text != "" {
			if err := enc.EncodeToken(xml.CharData(text)); err != nil {
				return apperrors.Wrap(apperrors.Unhandled, err, "cannot encode xml")
			}
		}
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return apperrors.Wrap(apperrors.Unhandled, err, "cannot encode xml")
	}
	return nil
}

func validXMLName(name string) bool {
	if name == "" || strings.HasPrefix(strings.ToLower(name), "xml") {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || r == '.' || unicode.IsDigit(r)):
		default:
			return false
		}
	}
	return true
}

type xmlNode struct {
	name     string
	typ      string
	text     strings.Builder
	children []*xmlNode
}

func (xmlCodec) Decode(data []byte) (any, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var root *xmlNode
	var stack []*xmlNode
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.BadRequestf("malformed xml body: %v", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Local == xmlType {
					n.typ = a.Value
				}
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else if root != nil {
				return nil, apperrors.BadRequestf("malformed xml body: more than one root element")
			} else {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
	if root == nil {
		return nil, apperrors.BadRequestf("malformed xml body: no root element")
	}
	return root.value()
}

func (n *xmlNode) value() (any, error) {
	text := n.text.String()
	switch n.typ {
	case value.KindNull.String():
		return nil, nil
	case value.KindBool.String():
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return nil, apperrors.BadRequestf("element %s: %q is not a boolean", n.name, text)
		}
		return b, nil
	case value.KindNumber.String():
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, apperrors.BadRequestf("element %s: %q is not a number", n.name, text)
		}
		return f, nil
	case value.KindArray.String():
		return n.array()
	case value.KindObject.String():
		return n.object()
	case "", value.KindString.String():
	default:
		return nil, apperrors.BadRequestf("element %s: unknown type %q", n.name, n.typ)
	}

	if len(n.children) == 0 {
		return text, nil
	}
	if n.typ == "" && n.allItems() {
		return n.array()
	}
	return n.object()
}

func (n *xmlNode) allItems() bool {
	for _, c := range n.children {
		if c.name != xmlObject {
			return false
		}
	}
	return true
}

func (n *xmlNode) array() (any, error) {
	out := make([]any, 0, len(n.children))
	for _, c := range n.children {
		if c.name != xmlObject {
			return nil, apperrors.BadRequestf("element %s: array elements must be named %s, got %s", n.name, xmlObject, c.name)
		}
		v, err := c.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (n *xmlNode) object() (any, error) {
	out := make(map[string]any, len(n.children))
	for _, c := range n.children {
		if _, dup := out[c.name]; dup {
			return nil, apperrors.BadRequestf("element %s: repeated property %s", n.name, c.name)
		}
		v, err := c.value()
		if err != nil {
			return nil, err
		}
		out[c.name] = v
	}
	return out, nil
}
