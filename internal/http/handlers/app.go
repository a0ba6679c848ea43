package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"jacksonjar/internal/jar"
	"jacksonjar/internal/middleware"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Service  *jar.Service
	Sessions *middleware.Sessions
	DB       Pinger
	BaseURL  string
	Secure   bool
	Logger   zerolog.Logger
	now      func() time.Time
}

func NewApp(svc *jar.Service, sessions *middleware.Sessions, db Pinger, baseURL string, secure bool, logger zerolog.Logger) *App {
	return &App{
		Service:  svc,
		Sessions: sessions,
		DB:       db,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Secure:   secure,
		Logger:   logger,
		now:      time.Now,
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, errorResponse{Error: errCode, Message: msg})
}

// log returns the request-scoped logger, falling back to the app logger.
func (a *App) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}

func (a *App) merchantIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "merchant_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (a *App) jarURL(id int64) string {
	return a.BaseURL + "/jar/" + strconv.FormatInt(id, 10)
}

const flashCookie = "jar_flash"

// Flash is a one-shot message shown on the next view.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// flash queues a message for the next view the visitor loads.
func (a *App) flash(w http.ResponseWriter, r *http.Request, category, msg string) {
	flashes := readFlashes(r)
	flashes = append(flashes, Flash{Category: category, Message: msg})
	raw, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   a.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlashes returns and clears any queued messages.
func (a *App) takeFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := readFlashes(r)
	if len(flashes) == 0 {
		return []Flash{}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return flashes
}

func readFlashes(r *http.Request) []Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}
