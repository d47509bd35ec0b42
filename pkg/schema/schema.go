// Package schema infere, valida e consulta os schemas das coleções.
//
// O subconjunto de JSON Schema suportado é o necessário para descrever
// registros JSON: type, format, properties, required, additionalProperties
// e items. Tipos em lista ("type": ["string", "null"]) são aceitos e
// reduzidos a um tipo principal mais a marca Nullable.
package schema

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/raywall/fast-mock-server/pkg/apperrors"
)

// Tipos primitivos e estruturais reconhecidos.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeNull    = "null"
)

// Formatos com semântica própria de comparação.
const (
	FormatDate     = "date"
	FormatDateTime = "date-time"
)

// DefaultVersion é a versão declarada pelos schemas inferidos.
const DefaultVersion = "http://json-schema.org/draft-07/schema#"

var supportedVersions = map[string]struct{}{
	"http://json-schema.org/draft-04/schema":       {},
	"http://json-schema.org/draft-06/schema":       {},
	"http://json-schema.org/draft-07/schema":       {},
	"https://json-schema.org/draft/2019-09/schema": {},
	"https://json-schema.org/draft/2020-12/schema": {},
}

// Schema é um nó do schema de uma coleção.
type Schema struct {
	Version              string             `json:"$schema,omitempty"`
	Type                 string             `json:"type,omitempty"`
	Format               string             `json:"format,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`

	// Nullable indica que null também é aceito ("type": [T, "null"]).
	Nullable bool `json:"-"`
}

type rawSchema struct {
	Version              string             `json:"$schema,omitempty"`
	Type                 json.RawMessage    `json:"type,omitempty"`
	Format               string             `json:"format,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
}

// UnmarshalJSON aceita "type" como string ou lista de strings.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw rawSchema
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Schema{
		Version:              raw.Version,
		Format:               raw.Format,
		Properties:           raw.Properties,
		Required:             raw.Required,
		AdditionalProperties: raw.AdditionalProperties,
		Items:                raw.Items,
	}
	if len(raw.Type) == 0 {
		return nil
	}

	var single string
	if err := json.Unmarshal(raw.Type, &single); err == nil {
		s.Type = single
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw.Type, &list); err != nil {
		return fmt.Errorf("type deve ser string ou lista de strings: %w", err)
	}
	for _, t := range list {
		if t == TypeNull {
			s.Nullable = true
			continue
		}
		if s.Type != "" {
			return fmt.Errorf("union de tipos não suportada: %v", list)
		}
		s.Type = t
	}
	if s.Type == "" {
		s.Type = TypeNull
		s.Nullable = false
	}
	return nil
}

// MarshalJSON volta a emitir a lista de tipos quando Nullable.
func (s Schema) MarshalJSON() ([]byte, error) {
	raw := rawSchema{
		Version:              s.Version,
		Format:               s.Format,
		Properties:           s.Properties,
		Required:             s.Required,
		AdditionalProperties: s.AdditionalProperties,
		Items:                s.Items,
	}
	var err error
	switch {
	case s.Nullable && s.Type != "" && s.Type != TypeNull:
		raw.Type, err = json.Marshal([]string{s.Type, TypeNull})
	case s.Type != "":
		raw.Type, err = json.Marshal(s.Type)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

// Decode interpreta um schema individual.
func Decode(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, apperrors.Wrap(apperrors.InvalidSchema, err, "schema is not valid JSON")
	}
	return &s, nil
}

// DecodeDocument interpreta o documento de schemas (coleção -> schema) e
// verifica a versão e o tipo raiz de cada entrada.
func DecodeDocument(data []byte) (map[string]*Schema, error) {
	var doc map[string]*Schema
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.Wrap(apperrors.InvalidSchema, err, "schema document is not valid JSON")
	}
	for name, s := range doc {
		if s == nil {
			return nil, apperrors.InvalidSchemaf("schema for collection %s is empty", name)
		}
		if err := ValidateVersion(s); err != nil {
			return nil, fmt.Errorf("collection %s: %w", name, err)
		}
		if s.Type != TypeObject {
			return nil, apperrors.InvalidSchemaf("schema for collection %s must be of type object", name)
		}
	}
	return doc, nil
}

// ValidateVersion rejeita schemas sem $schema ou com versão não suportada.
func ValidateVersion(s *Schema) error {
	if s == nil || s.Version == "" {
		return apperrors.InvalidSchemaf("schema version ($schema) is missing")
	}
	if _, ok := supportedVersions[strings.TrimSuffix(s.Version, "#")]; !ok {
		return apperrors.InvalidSchemaf("schema version %s is not supported", s.Version)
	}
	return nil
}

// Property devolve o sub-schema da propriedade name, se declarado.
func (s *Schema) Property(name string) (*Schema, bool) {
	if s == nil || s.Properties == nil {
		return nil, false
	}
	p, ok := s.Properties[name]
	return p, ok && p != nil
}

// IsLeaf informa se o nó descreve um valor primitivo.
func (s *Schema) IsLeaf() bool {
	return s != nil && s.Type != TypeObject && s.Type != TypeArray
}

// Allows informa se o schema aceita propriedades não declaradas.
func (s *Schema) AllowsAdditional() bool {
	return s.AdditionalProperties == nil || *s.AdditionalProperties
}

func boolPtr(b bool) *bool { return &b }
