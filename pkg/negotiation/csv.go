package negotiation

import (
	"bytes"
	"encoding/csv"
	"sort"

	"github.com/raywall/fast-mock-server/json/path"
	"github.com/raywall/fast-mock-server/json/value"
	"github.com/raywall/fast-mock-server/pkg/apperrors"
)

const csvSeparator = ';'

// Marcadores de valores que não geram colunas próprias. Campo vazio é
// string vazia ou célula ausente numa lista de registros.
const (
	emptyArray  = "[]"
	emptyObject = "{}"
	nullValue   = "null"
)

// csvCodec representa cada registro como uma linha. A primeira linha traz os
// caminhos achatados (published.year, genre[0]) e null vira o marcador null.
type csvCodec struct{}

func (csvCodec) Encode(v any) ([]byte, error) {
	var records []map[string]any
	switch t := v.(type) {
	case map[string]any:
		records = []map[string]any{t}
	case []any:
		for _, e := range t {
			r, ok := e.(map[string]any)
			if !ok {
				return nil, apperrors.NotAcceptablef("only lists of objects can be represented as csv")
			}
			records = append(records, r)
		}
	default:
		return nil, apperrors.NotAcceptablef("value cannot be represented as csv")
	}
	if len(records) == 0 {
		return []byte{}, nil
	}

	var header []string
	seen := map[string]bool{}
	rows := make([]map[string]string, len(records))
	for i, r := range records {
		rows[i] = map[string]string{}
		for _, f := range Flatten(r) {
			if !seen[f.Path] {
				seen[f.Path] = true
				header = append(header, f.Path)
			}
			rows[i][f.Path] = f.Value
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = csvSeparator
	if err := w.Write(header); err != nil {
		return nil, apperrors.Wrap(apperrors.Unhandled, err, "cannot encode csv")
	}
	line := make([]string, len(header))
	for _, row := range rows {
		for i, h := range header {
			line[i] = row[h]
		}
		if err := w.Write(line); err != nil {
			return nil, apperrors.Wrap(apperrors.Unhandled, err, "cannot encode csv")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.Wrap(apperrors.Unhandled, err, "cannot encode csv")
	}
	return buf.Bytes(), nil
}

// Decode devolve um objeto quando há uma linha de valores e uma lista de
// objetos quando há mais de uma.
func (csvCodec) Decode(data []byte) (any, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = csvSeparator
	lines, err := r.ReadAll()
	if err != nil {
		return nil, apperrors.BadRequestf("malformed csv body: %v", err)
	}
	if len(lines) < 2 {
		return nil, apperrors.BadRequestf("malformed csv body: expected a header and at least one line of values")
	}

	header := make([]path.Path, len(lines[0]))
	for i, h := range lines[0] {
		p, err := path.Parse(h)
		if err != nil {
			return nil, apperrors.BadRequestf("malformed csv header %q: %v", h, err)
		}
		header[i] = p
	}

	out := make([]any, 0, len(lines)-1)
	for _, line := range lines[1:] {
		record, err := Unflatten(header, line)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if len(out) == 1 {
		return out[0], nil
	}
	return out, nil
}

// Field é uma folha de um registro achatado.
type Field struct {
	Path  string
	Value string
}

// Flatten percorre o registro em profundidade, com as chaves em ordem.
func Flatten(record map[string]any) []Field {
	var out []Field
	flattenInto(&out, nil, record)
	return out
}

func flattenInto(out *[]Field, prefix path.Path, v any) {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 {
			*out = append(*out, Field{Path: prefix.String(), Value: emptyObject})
			return
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flattenInto(out, append(prefix[:len(prefix):len(prefix)], path.Segment{Kind: path.SegmentField, Field: k}), t[k])
		}
	case []any:
		if len(t) == 0 {
			*out = append(*out, Field{Path: prefix.String(), Value: emptyArray})
			return
		}
		for i, e := range t {
			flattenInto(out, append(prefix[:len(prefix):len(prefix)], path.Segment{Kind: path.SegmentIndex, Index: i}), e)
		}
	case nil:
		*out = append(*out, Field{Path: prefix.String(), Value: nullValue})
	default:
		*out = append(*out, Field{Path: prefix.String(), Value: value.Text(v)})
	}
}

// Unflatten reconstrói um registro. Os valores continuam texto: a
// conversão de tipos fica com o schema da coleção. Índices de array não
// podem passar do número de colunas do cabeçalho.
func Unflatten(header []path.Path, line []string) (map[string]any, error) {
	for _, p := range header {
		for _, seg := range p {
			if seg.Kind == path.SegmentIndex && seg.Index >= len(header) {
				return nil, apperrors.BadRequestf("malformed csv header %q: index %d exceeds the %d columns", p.String(), seg.Index, len(header))
			}
		}
	}

	record := map[string]any{}
	for i, p := range header {
		var v any = line[i]
		switch line[i] {
		case emptyArray:
			v = []any{}
		case emptyObject:
			v = map[string]any{}
		case nullValue:
			v = nil
		}
		if err := path.Set(record, p, v); err != nil {
			return nil, apperrors.BadRequestf("malformed csv body: %v", err)
		}
	}
	return record, nil
}
