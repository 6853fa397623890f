// internal/httpserver/server.go
//
// HTTP adapter that lets a browser UI drive game sessions.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     access logging).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game endpoints: POST /game/new, GET /game, POST /game/guess,
//     GET /game/rows/{row}.
//   - Daily endpoints: mounted under /daily.
//   - History endpoints: GET /stats, GET /stats/recent (when a history store
//     is configured).
//
// Notes:
//   - A session is identified by a signed HS256 token carrying its ID ("sid").
//     The token is returned in the body and set as an HttpOnly cookie; either
//     an Authorization: Bearer header or the cookie is accepted.
//   - Finished games are recorded to history best-effort; a failed write never
//     fails the guess.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/shash-786/wordle-engine/internal/game"
	"github.com/shash-786/wordle-engine/internal/history"
	"github.com/shash-786/wordle-engine/internal/store"
	"github.com/shash-786/wordle-engine/internal/words"
)

// Recorder is the slice of the history store the server needs.
type Recorder interface {
	Record(ctx context.Context, r history.Result) error
	Stats(ctx context.Context) (history.Stats, error)
	Recent(ctx context.Context, limit int) ([]history.Result, error)
}

// Options configures a Server.
type Options struct {
	WordLength int
	MaxGuesses int
	Selector   words.Selector // nil means words.RandomSelector
	DailySalt  string

	JWTSecret     string
	TokenTTL      time.Duration // default 14 days
	CookieName    string
	ClientOrigin  string
	SecureCookies bool

	// AllowFixedAnswer lets POST /game/new pick the secret. Testing only.
	AllowFixedAnswer bool

	Logger zerolog.Logger
}

// Server bundles router, session store, word source and optional history.
type Server struct {
	r       *chi.Mux
	store   store.Store
	src     words.Source
	history Recorder
	opts    Options
	log     zerolog.Logger
}

// New constructs a Server, installs middleware, and registers routes.
// rec may be nil to disable history.
func New(st store.Store, src words.Source, rec Recorder, opts Options) *Server {
	if opts.Selector == nil {
		opts.Selector = words.RandomSelector
	}
	if opts.WordLength < 1 {
		opts.WordLength = words.DefaultWordLength
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 14 * 24 * time.Hour
	}
	if opts.CookieName == "" {
		opts.CookieName = "wordle_session"
	}
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	s := &Server{r: chi.NewRouter(), store: st, src: src, history: rec, opts: opts, log: opts.Logger}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(s.log))          // request-scoped logger
	s.r.Use(requestIDLogField)               // tag log lines with the request ID
	s.r.Use(hlog.AccessHandler(accessLog))   // one line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "wordle-engine",
			"endpoints": []string{"/health", "POST /game/new", "GET /game", "POST /game/guess", "GET /game/rows/{row}", "POST /daily/new", "/stats"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/debug/words", s.handleWordStats)

	// --- game ---
	s.r.Group(func(r chi.Router) {
		r.Use(s.withSession)
		r.Post("/game/new", s.handleNewGame)
		r.Get("/game", s.handleGetGame)
		r.Post("/game/guess", s.handleGuess)
		r.Get("/game/rows/{row}", s.handleRow)
		s.mountDaily(r)
	})

	// --- history ---
	s.r.Get("/stats", s.handleStats)
	s.r.Get("/stats/recent", s.handleRecent)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests and custom listeners).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the single configured origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.opts.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestIDLogField(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			l := zerolog.Ctx(r.Context())
			l.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new and POST /daily/new.
type newGameReq struct {
	Answer string `json:"answer"` // optional fixed answer (testing)
}
type newGameRes struct {
	Token string        `json:"token"`
	Game  game.Snapshot `json:"game"`
	Error string        `json:"error,omitempty"`
}

// handleNewGame resets the caller's session, or creates one when the request
// carries no valid session token.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	if req.Answer != "" {
		if !s.opts.AllowFixedAnswer {
			writeError(w, http.StatusForbidden, "fixed_answer_disabled")
			return
		}
		s.startSession(w, r, words.FixedSelector(req.Answer))
		return
	}

	if sc, ok := sessionFrom(r.Context()); ok {
		err := sc.sess.StartNewGame(r.Context())
		s.respondNewGame(w, r, sc.sess, sc.token, err)
		return
	}
	s.startSession(w, r, s.opts.Selector)
}

// startSession creates, loads, stores and hands out a brand-new session.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, sel words.Selector) {
	sess := game.NewSession(s.src,
		game.WithWordLength(s.opts.WordLength),
		game.WithMaxGuesses(s.opts.MaxGuesses),
		game.WithSelector(sel),
		game.WithLogger(s.log),
	)
	loadErr := sess.Load(r.Context())

	if err := s.store.Save(r.Context(), sess); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	tok, exp, err := s.signToken(sess.ID())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("sign session token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setSessionCookie(w, tok, exp)
	s.respondNewGame(w, r, sess, tok, loadErr)
}

func (s *Server) respondNewGame(w http.ResponseWriter, r *http.Request, sess *game.Session, tok string, err error) {
	res := newGameRes{Token: tok, Game: sess.Snapshot()}
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("session", sess.ID()).Msg("new game unavailable")
		res.Error = loadErrorCode(err)
		writeJSON(w, http.StatusServiceUnavailable, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleGetGame returns the caller's current snapshot.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sc, ok := sessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, http.StatusOK, sc.sess.Snapshot())
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	Guess string `json:"guess"`
}
type guessRes struct {
	Result game.SubmitResult `json:"result"`
	Game   game.Snapshot     `json:"game"`
	Error  string            `json:"error,omitempty"`
}

// handleGuess submits a guess and, if it ends the game, records the outcome.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	sc, ok := sessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	res, err := sc.sess.SubmitGuess(req.Guess)
	switch {
	case errors.Is(err, game.ErrInvalidWord):
		writeJSON(w, http.StatusUnprocessableEntity, guessRes{Result: res, Game: sc.sess.Snapshot(), Error: "invalid_word"})
		return
	case errors.Is(err, game.ErrWrongLength):
		writeError(w, http.StatusBadRequest, "wrong_length")
		return
	case errors.Is(err, game.ErrGameNotActive):
		writeError(w, http.StatusConflict, "game_not_active")
		return
	case err != nil:
		hlog.FromRequest(r).Error().Err(err).Msg("submit guess")
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	if res.Status.Terminal() {
		s.recordOutcome(r, sc.sess)
	}
	if err := s.store.Save(r.Context(), sc.sess); err != nil {
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	writeJSON(w, http.StatusOK, guessRes{Result: res, Game: sc.sess.Snapshot()})
}

// rowRes is returned by GET /game/rows/{row}.
type rowRes struct {
	Row      int    `json:"row"`
	Feedback string `json:"feedback"`
	Locked   bool   `json:"locked"`
}

// handleRow exposes FeedbackFor / IsRowLocked for a single row.
func (s *Server) handleRow(w http.ResponseWriter, r *http.Request) {
	sc, ok := sessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil || row < 0 {
		writeError(w, http.StatusBadRequest, "bad_row")
		return
	}
	writeJSON(w, http.StatusOK, rowRes{
		Row:      row,
		Feedback: sc.sess.FeedbackFor(row),
		Locked:   sc.sess.IsRowLocked(row),
	})
}

// handleWordStats loads the configured lists and reports their sizes.
func (s *Server) handleWordStats(w http.ResponseWriter, r *http.Request) {
	c, err := words.LoadFrom(r.Context(), s.src, s.opts.WordLength)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("load word lists")
		writeError(w, http.StatusServiceUnavailable, "load_failed")
		return
	}
	a, g := c.Stats()
	writeJSON(w, http.StatusOK, map[string]int{"answers": a, "allowed": g})
}

// ------------------------------ HISTORY ------------------------------------

func (s *Server) recordOutcome(r *http.Request, sess *game.Session) {
	if s.history == nil {
		return
	}
	o, ok := sess.Outcome()
	if !ok {
		return
	}
	if err := s.history.Record(r.Context(), history.FromOutcome(o)); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("game", o.GameID).Msg("record outcome")
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history_disabled")
		return
	}
	st, err := s.history.Stats(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("history stats")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history_disabled")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit > 100 {
		limit = 100
	}
	out, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("history recent")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// --------------------------- session tokens --------------------------------

// ctxSessionKey is the context key type for the caller's session.
type ctxSessionKey struct{}

type sessionCtx struct {
	sess  *game.Session
	token string
}

func sessionFrom(ctx context.Context) (sessionCtx, bool) {
	sc, ok := ctx.Value(ctxSessionKey{}).(sessionCtx)
	return sc, ok && sc.sess != nil
}

// withSession decorates requests with the caller's session if a valid token
// for a live session is present. It never rejects; handlers decide.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := s.bearerOrCookie(r); tok != "" {
			if sid, err := s.parseToken(tok); err == nil {
				if sess, err := s.store.Get(r.Context(), sid); err == nil {
					ctx := context.WithValue(r.Context(), ctxSessionKey{}, sessionCtx{sess: sess, token: tok})
					r = r.WithContext(ctx)
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

var errInvalidToken = errors.New("invalid session token")

// signToken creates an HS256 token naming the session.
func (s *Server) signToken(sid string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.opts.TokenTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sid,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.opts.JWTSecret))
	return ss, exp, err
}

// parseToken verifies tok and returns its session ID.
func (s *Server) parseToken(tok string) (string, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return "", errInvalidToken
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", errInvalidToken
	}
	return sid, nil
}

// setSessionCookie writes the session token cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.opts.SecureCookies {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or session cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.opts.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// loadErrorCode maps session load failures to API error codes.
func loadErrorCode(err error) string {
	switch {
	case errors.Is(err, words.ErrEmptyPool):
		return "empty_pool"
	case errors.Is(err, words.ErrLoad):
		return "load_failed"
	default:
		return "unavailable"
	}
}
