package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/raywall/fast-mock-server/pkg/apperrors"
	"github.com/raywall/fast-mock-server/pkg/collection"
	"github.com/raywall/fast-mock-server/pkg/negotiation"
	"github.com/raywall/fast-mock-server/pkg/schema"
)

func (s *server) index(w http.ResponseWriter, r *http.Request) {
	format, ok := s.accept(w, r)
	if !ok {
		return
	}
	names := s.Store.Names()
	out := make([]any, 0, len(names))
	for _, name := range names {
		c, err := s.Store.Collection(name)
		if err != nil {
			continue
		}
		out = append(out, map[string]any{"name": name, "count": float64(c.Len())})
	}
	s.write(w, r, format, http.StatusOK, out)
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	state := s.Store.State()
	status := http.StatusOK
	if state != collection.Ready {
		status = http.StatusServiceUnavailable
	}
	s.write(w, r, negotiation.JSON, status, map[string]any{"status": state.String()})
}

func (s *server) list(w http.ResponseWriter, r *http.Request) {
	format, ok := s.accept(w, r)
	if !ok {
		return
	}
	name := mux.Vars(r)["collection"]

	res, err := s.Orchestrator.List(name, r.URL.Query(), baseURL(r))
	if err != nil {
		s.fail(w, r, format, err)
		return
	}
	w.Header().Set(HeaderTotalCount, strconv.Itoa(res.Total))
	if link := res.LinkHeader(); link != "" {
		w.Header().Set("Link", link)
	}
	s.write(w, r, format, http.StatusOK, res.Items)
}

func (s *server) get(w http.ResponseWriter, r *http.Request) {
	format, ok := s.accept(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)

	item, err := s.Orchestrator.Get(vars["collection"], vars["id"], r.URL.Query())
	if err != nil {
		s.fail(w, r, format, err)
		return
	}
	s.write(w, r, format, http.StatusOK, item)
}

// schema é sempre servido em JSON.
func (s *server) schema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Vary", "Accept")
	sc, err := s.Store.Schema(mux.Vars(r)["collection"])
	if err != nil {
		s.fail(w, r, negotiation.JSON, err)
		return
	}
	s.write(w, r, negotiation.JSON, http.StatusOK, sc)
}

func (s *server) create(w http.ResponseWriter, r *http.Request) {
	format, ok := s.accept(w, r)
	if !ok {
		return
	}
	name := mux.Vars(r)["collection"]

	item, err := s.decode(r, name)
	if err != nil {
		s.fail(w, r, format, err)
		return
	}

	ctx, cancel := s.operation(r.Context())
	defer cancel()
	stored, err := s.Store.Insert(ctx, name, item)
	if err != nil {
		s.fail(w, r, format, err)
		return
	}
	s.mutated(r.Context(), name, "insert")
	s.created(w, r, format, name, stored)
}

// replace atualiza o registro ou, se ele não existir, insere um novo com
// identificador escolhido pelo servidor.
func (s *server) replace(w http.ResponseWriter, r *http.Request) {
	format, ok := s.accept(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	name := vars["collection"]

	item, err := s.decode(r, name)
	if err != nil {
		s.fail(w, r, format, err)
		return
	}

	ctx, cancel := s.operation(r.Context())
	defer cancel()
	stored, created, err := s.Store.Upsert(ctx, name, vars["id"], item)
	if err != nil {
		s.fail(w, r, format, err)
		return
	}
	if created {
		s.mutated(r.Context(), name, "insert")
		s.created(w, r, format, name, stored)
		return
	}
	s.mutated(r.Context(), name, "update")
	s.write(w, r, format, http.StatusOK, stored)
}

func (s *server) remove(w http.ResponseWriter, r *http.Request) {
	format, ok := s.accept(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)

	ctx, cancel := s.operation(r.Context())
	defer cancel()
	if err := s.Store.Delete(ctx, vars["collection"], vars["id"]); err != nil {
		s.fail(w, r, format, err)
		return
	}
	s.mutated(r.Context(), vars["collection"], "delete")
	s.write(w, r, format, http.StatusOK, map[string]any{})
}

func (s *server) graphql(w http.ResponseWriter, r *http.Request) {
	var p struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.MaxBodyBytes)).Decode(&p); err != nil {
		s.fail(w, r, negotiation.JSON, apperrors.BadRequestf("invalid graphql request body: %v", err))
		return
	}

	result := s.GraphQL.Execute(r.Context(), p.Query, p.Variables)
	s.write(w, r, negotiation.JSON, http.StatusOK, result)
}

func (s *server) notFound(w http.ResponseWriter, r *http.Request) {
	s.fail(w, r, negotiation.JSON, apperrors.NotFoundf("route %s not found", r.URL.Path))
}

func (s *server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, negotiation.JSON, http.StatusMethodNotAllowed, map[string]any{
		"error":   "MethodNotAllowed",
		"message": "method " + r.Method + " is not allowed for " + r.URL.Path,
	})
}

// accept negocia o formato da resposta. Quando nenhum formato é aceito a
// resposta 406 já foi escrita.
func (s *server) accept(w http.ResponseWriter, r *http.Request) (negotiation.Format, bool) {
	w.Header().Set("Vary", "Accept")
	format, ok := negotiation.NegotiateAccept(r.Header.Get("Accept"))
	if !ok {
		s.fail(w, r, negotiation.JSON, apperrors.NotAcceptablef("none of the accepted media types is supported: %s", negotiation.SupportedMediaTypes()))
		return negotiation.JSON, false
	}
	return format, true
}

// decode lê o corpo no formato do Content-Type e converte os textos para
// os tipos do schema da coleção.
func (s *server) decode(r *http.Request, name string) (map[string]any, error) {
	sc, err := s.Store.Schema(name)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.MaxBodyBytes+1))
	if err != nil {
		return nil, apperrors.BadRequestf("cannot read request body: %v", err)
	}
	if int64(len(body)) > s.MaxBodyBytes {
		return nil, apperrors.BadRequestf("request body exceeds %d bytes", s.MaxBodyBytes)
	}

	format, ok := negotiation.ContentType(r.Header.Get("Content-Type"), body)
	if !ok {
		return nil, apperrors.UnsupportedMediaTypef("content type %s is not supported", r.Header.Get("Content-Type"))
	}
	item, err := negotiation.DecodeRecord(format, body)
	if err != nil {
		return nil, err
	}
	return schema.ConvertTypes(sc, item)
}

func (s *server) operation(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout > 0 {
		return context.WithTimeout(ctx, s.Timeout)
	}
	return context.WithCancel(ctx)
}

func (s *server) mutated(ctx context.Context, name, op string) {
	log := zerolog.Ctx(ctx)
	if err := s.Recorder.Mutation(name, op); err != nil {
		log.Warn().Err(err).Msg("falha ao registrar métricas")
	}
	if c, err := s.Store.Collection(name); err == nil {
		if err := s.Recorder.Collection(name, c.Len()); err != nil {
			log.Warn().Err(err).Msg("falha ao registrar métricas")
		}
	}
}

func (s *server) created(w http.ResponseWriter, r *http.Request, format negotiation.Format, name string, stored map[string]any) {
	c, err := s.Store.Collection(name)
	if err == nil {
		w.Header().Set("Location", "/"+url.PathEscape(name)+"/"+url.PathEscape(textID(stored[c.IdentifierKey()])))
	}
	s.write(w, r, format, http.StatusCreated, stored)
}

func textID(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatInt(int64(f), 10)
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// baseURL reconstrói a URL da requisição sem a query string, para os links
// de paginação.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	if r.Host == "" {
		return r.URL.Path
	}
	return scheme + "://" + r.Host + r.URL.Path
}
