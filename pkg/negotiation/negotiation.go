// Package negotiation escolhe o formato das respostas a partir do cabeçalho
// Accept e o formato das requisições a partir do Content-Type, e codifica
// os registros em JSON, XML ou CSV.
package negotiation

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/munnerz/goautoneg"
)

// Format é um dos formatos suportados.
type Format int

const (
	JSON Format = iota
	XML
	CSV
)

// Supported lista os formatos na ordem de desempate.
var Supported = []Format{JSON, XML, CSV}

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case XML:
		return "xml"
	case CSV:
		return "csv"
	}
	return "unknown"
}

// MediaType é o tipo usado no Content-Type das respostas.
func (f Format) MediaType() string {
	switch f {
	case XML:
		return "application/xml"
	case CSV:
		return "text/csv"
	}
	return "application/json"
}

// SupportedMediaTypes é o valor do cabeçalho Accept devolvido junto com 415.
func SupportedMediaTypes() string {
	types := make([]string, len(Supported))
	for i, f := range Supported {
		types[i] = f.MediaType()
	}
	return strings.Join(types, ", ")
}

// Especificidade de um media range em relação a um formato.
const (
	noMatch = iota
	anyMatch
	typeMatch
	exactMatch
)

func specificity(r goautoneg.Accept, f Format) int {
	typ, sub, _ := strings.Cut(f.MediaType(), "/")
	switch {
	case r.Type == typ && r.SubType == sub:
		return exactMatch
	case r.Type == typ && r.SubType == "*":
		return typeMatch
	case r.Type == "*" && r.SubType == "*":
		return anyMatch
	}
	return noMatch
}

// NegotiateAccept escolhe o formato da resposta. Para cada formato vale o
// media range mais específico que o alcança; q=0 exclui o formato. Entre os
// restantes vence o maior q, depois a maior especificidade e por fim a ordem
// de Supported. Cabeçalho vazio resulta em JSON; ok é false quando nenhum
// formato é aceito.
func NegotiateAccept(header string) (Format, bool) {
	if strings.TrimSpace(header) == "" {
		return JSON, true
	}
	ranges := goautoneg.ParseAccept(strings.ToLower(header))

	best, bestQ, bestSpec := JSON, 0.0, noMatch
	found := false
	for _, f := range Supported {
		q, spec := 0.0, noMatch
		for _, r := range ranges {
			s := specificity(r, f)
			if s > spec || (s == spec && s != noMatch && r.Q > q) {
				q, spec = r.Q, s
			}
		}
		if spec == noMatch || q <= 0 {
			continue
		}
		if !found || q > bestQ || (q == bestQ && spec > bestSpec) {
			best, bestQ, bestSpec, found = f, q, spec, true
		}
	}
	return best, found
}

// ContentType identifica o formato do corpo de uma requisição. Sem
// cabeçalho, o formato é detectado pelo conteúdo e, na dúvida, é JSON.
func ContentType(header string, body []byte) (Format, bool) {
	if strings.TrimSpace(header) == "" {
		return sniff(body), true
	}
	ranges := goautoneg.ParseAccept(strings.ToLower(header))
	if len(ranges) == 0 {
		return JSON, false
	}
	switch ranges[0].Type + "/" + ranges[0].SubType {
	case "application/json":
		return JSON, true
	case "application/xml", "text/xml":
		return XML, true
	case "text/csv":
		return CSV, true
	}
	return JSON, false
}

func sniff(body []byte) Format {
	for m := mimetype.Detect(body); m != nil; m = m.Parent() {
		switch {
		case m.Is("application/json"):
			return JSON
		case m.Is("text/xml"), m.Is("application/xml"):
			return XML
		case m.Is("text/csv"):
			return CSV
		}
	}
	return JSON
}
