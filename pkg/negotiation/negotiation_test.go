package negotiation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNegotiateAccept(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   Format
		ok     bool
	}{
		{"vazio", "", JSON, true},
		{"exato json", "application/json", JSON, true},
		{"exato xml", "application/xml", XML, true},
		{"exato csv", "text/csv", CSV, true},
		{"qualquer", "*/*", JSON, true},
		{"json excluído", "application/json;q=0, */*", XML, true},
		{"todos excluídos", "application/json;q=0, application/xml;q=0, text/csv;q=0, */*", JSON, false},
		{"maior q vence", "application/json;q=0.5, text/csv;q=0.9", CSV, true},
		{"especificidade no empate", "*/*;q=0.8, application/xml;q=0.8", XML, true},
		{"range mais específico define q", "application/*;q=0.1, application/json;q=0.9, text/csv;q=0.5", JSON, true},
		{"tipo curinga", "text/*", CSV, true},
		{"desempate pela ordem", "application/*", JSON, true},
		{"maiúsculas", "Application/XML", XML, true},
		{"parâmetros extras", "text/csv; charset=utf-8; q=0.7, application/xml;q=0.6", CSV, true},
		{"não suportado", "text/html", JSON, false},
		{"imagem", "image/*", JSON, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := NegotiateAccept(c.header)
			assert.Equal(t, c.ok, ok)
			if c.ok {
				assert.Equal(t, c.want, got, "formato %s", got)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	cases := []struct {
		header string
		body   string
		want   Format
		ok     bool
	}{
		{"application/json", `{}`, JSON, true},
		{"application/json; charset=utf-8", `{}`, JSON, true},
		{"application/xml", `<item/>`, XML, true},
		{"text/xml", `<item/>`, XML, true},
		{"text/csv", "a;b\n1;2\n", CSV, true},
		{"text/plain", "x", JSON, false},
		{"*/*", "x", JSON, false},
		{"", `{"title": "Dune"}`, JSON, true},
		{"", `<?xml version="1.0" encoding="UTF-8"?><item><title>Dune</title></item>`, XML, true},
	}
	for _, c := range cases {
		got, ok := ContentType(c.header, []byte(c.body))
		assert.Equal(t, c.ok, ok, c.header)
		if c.ok {
			assert.Equal(t, c.want, got, "%q", c.header)
		}
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "application/json, application/xml, text/csv", SupportedMediaTypes())
	assert.Equal(t, "xml", XML.String())
	assert.Equal(t, "text/csv", CSV.MediaType())
}
