package transport

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/raywall/fast-mock-server/pkg/apperrors"
	"github.com/raywall/fast-mock-server/pkg/negotiation"
)

func (s *server) write(w http.ResponseWriter, r *http.Request, format negotiation.Format, status int, v any) {
	body, err := negotiation.Encode(format, v)
	if err != nil {
		s.fail(w, r, negotiation.JSON, err)
		return
	}
	w.Header().Set("Content-Type", format.MediaType())
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("falha ao escrever resposta")
	}
}

// fail traduz err para a resposta de erro. Erros internos são registrados
// no log e expostos apenas como "internal server error".
func (s *server) fail(w http.ResponseWriter, r *http.Request, format negotiation.Format, err error) {
	kind, msg, details := apperrors.Public(err)
	status := kind.HTTPStatus()

	log := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Erro crítico na execução")
	} else {
		log.Debug().Err(err).Str("kind", kind.String()).Msg("requisição rejeitada")
	}

	switch kind {
	case apperrors.NotAcceptable:
		format = negotiation.JSON
	case apperrors.UnsupportedMediaType:
		w.Header().Set("Accept", negotiation.SupportedMediaTypes())
	}

	payload := map[string]any{"error": kind.String(), "message": msg}
	if len(details) > 0 {
		list := make([]any, len(details))
		for i, d := range details {
			list[i] = d
		}
		payload["details"] = list
	}
	writeError(w, r, format, status, payload)
}

func writeError(w http.ResponseWriter, r *http.Request, format negotiation.Format, status int, payload map[string]any) {
	body, err := negotiation.Encode(format, payload)
	if err != nil {
		format = negotiation.JSON
		body, _ = negotiation.Encode(format, payload)
	}
	w.Header().Set("Content-Type", format.MediaType())
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("falha ao escrever resposta")
	}
}
