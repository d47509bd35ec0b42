package negotiation

import (
	json "github.com/goccy/go-json"

	"github.com/raywall/fast-mock-server/pkg/apperrors"
)

// Codec converte valores JSON (map[string]any, []any e primitivos) de e
// para um formato de transporte.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte) (any, error)
}

// CodecFor devolve o codec do formato.
func CodecFor(f Format) Codec {
	switch f {
	case XML:
		return xmlCodec{}
	case CSV:
		return csvCodec{}
	}
	return jsonCodec{}
}

// Encode normaliza v e o codifica no formato f.
func Encode(f Format, v any) ([]byte, error) {
	nv, err := normalize(v)
	if err != nil {
		return nil, err
	}
	return CodecFor(f).Encode(nv)
}

// DecodeRecord decodifica um corpo que deve conter um único objeto.
func DecodeRecord(f Format, data []byte) (map[string]any, error) {
	v, err := CodecFor(f).Decode(data)
	if err != nil {
		return nil, err
	}
	record, ok := v.(map[string]any)
	if !ok {
		return nil, apperrors.BadRequestf("request body must be a single %s object", f)
	}
	return record, nil
}

// normalize leva v para a representação genérica de JSON. Structs e
// slices tipados passam por um ciclo de serialização.
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil, bool, float64, string, map[string]any, []any:
		return v, nil
	case []map[string]any:
		out := make([]any, len(t))
		for i, r := range t {
			out[i] = r
		}
		return out, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Unhandled, err, "cannot encode %T", v)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, apperrors.Wrap(apperrors.Unhandled, err, "cannot encode %T", v)
	}
	return out, nil
}

type jsonCodec struct{}

func (jsonCodec) Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Unhandled, err, "cannot encode json")
	}
	return b, nil
}

func (jsonCodec) Decode(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, apperrors.BadRequestf("malformed json body: %v", err)
	}
	return v, nil
}
