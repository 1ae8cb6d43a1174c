package main

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/WessleyAI/sportscar-dash/engine/chart"
	"github.com/WessleyAI/sportscar-dash/engine/domain"
	"github.com/WessleyAI/sportscar-dash/engine/events"
	"github.com/WessleyAI/sportscar-dash/engine/filter"
	"github.com/WessleyAI/sportscar-dash/engine/query"
	"github.com/WessleyAI/sportscar-dash/engine/session"
	"github.com/WessleyAI/sportscar-dash/pkg/metrics"
	"github.com/WessleyAI/sportscar-dash/pkg/mid"
)

const sessionCookie = "dash_session"

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"json": func(v any) (template.JS, error) {
		b, err := json.Marshal(v)
		return template.JS(b), err
	},
}).ParseFS(templateFS, "templates/index.html"))

// server holds everything the HTTP handlers share. All fields are safe for
// concurrent use.
type server struct {
	engine      *filter.Engine
	parser      *query.Parser
	sessions    *session.Store
	publisher   events.Publisher
	metrics     *metrics.Metrics
	log         *slog.Logger
	defaultMake domain.Make
}

func newServer(e *filter.Engine, sessions *session.Store, pub events.Publisher, m *metrics.Metrics, log *slog.Logger, defaultMake string) *server {
	mk, known := e.Catalog().ParseMake(defaultMake)
	if !known {
		log.Warn("default make not in dataset", "make", defaultMake)
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &server{
		engine:      e,
		parser:      query.NewParser(e.Catalog()),
		sessions:    sessions,
		publisher:   pub,
		metrics:     m,
		log:         log,
		defaultMake: mk,
	}
}

func (s *server) routes(c Config) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /api/charts", s.handleCharts)
	mux.HandleFunc("GET /api/query", s.handleQuery)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	return mid.Chain(mux,
		mid.Recover(s.log),
		mid.RequestID(),
		mid.OTel(c.OTelServiceName),
		mid.CORS(c.CORSOrigin),
		mid.RateLimit(mid.RateLimitOpts{
			RPS:      c.RateLimit.RPS,
			Burst:    c.RateLimit.Burst,
			OnReject: func(*http.Request) { s.metrics.RateLimited.Inc() },
		}),
		mid.Logger(s.log),
		mid.Instrument(s.metrics.ObserveRequest),
	)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// selectionFromQuery parses the make, model and year parameters. A non-empty
// free-text "q" parameter takes precedence over all three.
func (s *server) selectionFromQuery(r *http.Request) (filter.Selection, error) {
	q := r.URL.Query()
	if text := q.Get("q"); text != "" {
		return s.parser.Parse(text).Selection, nil
	}
	return filter.ParseSelection(s.engine.Catalog(), q.Get("make"), q.Get("model"), q["year"])
}

func (s *server) compute(ctx context.Context, sel filter.Selection) filter.View {
	defer s.metrics.ObserveCompute("http", time.Now())
	return s.engine.Compute(ctx, sel)
}

// OptionsResponse is the body of GET /api/options.
type OptionsResponse struct {
	Makes  []domain.Make  `json:"makes"`
	Models []domain.Model `json:"models"`
	Years  []int          `json:"years"`
}

func (s *server) handleOptions(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selectionFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, OptionsResponse{
		Makes:  s.engine.MakeOptions(),
		Models: s.engine.ModelOptions(sel.Make),
		Years:  s.engine.YearOptions(sel.Make, sel.Model),
	})
}

func (s *server) handleView(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selectionFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.compute(r.Context(), sel))
}

func (s *server) handleCharts(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selectionFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, chart.Build(s.compute(r.Context(), sel)))
}

func (s *server) handleQuery(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("q")
	if text == "" {
		writeError(w, http.StatusBadRequest, "missing q parameter")
		return
	}
	writeJSON(w, http.StatusOK, s.parser.Parse(text))
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"rows":     s.engine.Dataset().Len(),
		"sessions": s.sessions.Len(),
	})
}

// pageData feeds templates/index.html.
type pageData struct {
	View      filter.View
	Charts    []chart.Config
	AllYears  bool
	Selected  map[int]bool
	Version   string
	SessionID string
}

// handlePage renders the dashboard for the caller's session. A form submit
// carries "apply=1"; its make, model and year fields (or a free-text "q")
// replace the session's selection, and an empty year list means every year.
func (s *server) handlePage(w http.ResponseWriter, r *http.Request) {
	id, sel := s.session(w, r)

	if r.URL.Query().Get("apply") != "" {
		next, err := s.selectionFromQuery(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		updated := sel.Clone()
		updated.SelectMake(next.Make)
		updated.SelectModel(next.Model)
		updated.SelectYears(next.Years)
		updated.Reconcile(s.engine)
		if !updated.Equal(sel) {
			sel = updated
			s.sessions.Put(id, sel)
			defer s.announce(r.Context(), id, sel)
		}
	}

	view := s.compute(r.Context(), sel)
	selected := make(map[int]bool, len(sel.Years))
	for _, y := range sel.Years {
		selected[y] = true
	}
	data := pageData{
		View:      view,
		Charts:    chart.Build(view),
		AllYears:  sel.AllYears(view.Years),
		Selected:  selected,
		Version:   Version,
		SessionID: id,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		s.log.ErrorContext(r.Context(), "render page", "error", err)
	}
}

// session returns the caller's session, creating one with the default
// selection when the cookie is missing or the session was evicted.
func (s *server) session(w http.ResponseWriter, r *http.Request) (string, filter.Selection) {
	if c, err := r.Cookie(sessionCookie); err == nil && session.ValidID(c.Value) {
		if sel, ok := s.sessions.Get(c.Value); ok {
			return c.Value, sel
		}
	}
	sel := s.engine.DefaultSelection(s.defaultMake)
	id := s.sessions.Create(sel)
	s.metrics.Sessions.Set(float64(s.sessions.Len()))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, sel
}

func (s *server) announce(ctx context.Context, id string, sel filter.Selection) {
	rows := len(s.engine.FilteredRows(sel.Make, sel.Model, sel.Years))
	// publish failures are counted and logged by the publisher
	_ = s.publisher.PublishSelection(context.WithoutCancel(ctx), events.SelectionChanged{
		SessionID: id,
		Selection: sel,
		Rows:      rows,
	})
}
