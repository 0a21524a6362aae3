package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"linkup/portal/internal/api"
	"linkup/portal/internal/auth"
	"linkup/portal/internal/config"
	"linkup/portal/internal/routes"
)

type SessionService interface {
	Login(ctx context.Context, email, password string) (auth.UserSummary, error)
	Register(ctx context.Context, req api.RegisterRequest) (string, error)
	Logout()
	CurrentUser() (auth.UserSummary, bool)
	Token() string
}

type Deps struct {
	Session         SessionService
	Routes          *routes.Table
	APIBaseURL      *url.URL
	FrontendDistDir string
	Logger          *slog.Logger
}

type Server struct {
	httpServer *http.Server
}

func New(cfg config.HTTPConfig, deps Deps) *Server {
	handler := NewHandler(deps)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      loggingMiddleware(deps.logger(), handler),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

func NewHandler(deps Deps) http.Handler {
	if deps.Routes == nil {
		deps.Routes = routes.DefaultTable()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	registerSessionHandlers(mux, deps)
	registerRouteHandlers(mux, deps)
	registerAPIProxy(mux, deps)
	registerNavigationHandler(mux, deps)

	return mux
}

func registerSessionHandlers(mux *http.ServeMux, deps Deps) {
	mux.Handle("/v1/session", sameOrigin(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if deps.Session == nil {
			writeError(w, http.StatusServiceUnavailable, "session service unavailable")
			return
		}
		user, ok := deps.Session.CurrentUser()
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"user": user,
			"home": routes.HomePath(user.Role),
		})
	}))

	handleSessionPost(mux, "/v1/session/login", func(w http.ResponseWriter, r *http.Request) {
		if deps.Session == nil {
			writeError(w, http.StatusServiceUnavailable, "session service unavailable")
			return
		}

		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := deps.Session.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, auth.ErrMissingCredentials) {
				status = http.StatusBadRequest
			}
			writeError(w, status, failureMessage(err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"user": user,
			"home": routes.HomePath(user.Role),
		})
	})

	handleSessionPost(mux, "/v1/session/register", func(w http.ResponseWriter, r *http.Request) {
		if deps.Session == nil {
			writeError(w, http.StatusServiceUnavailable, "session service unavailable")
			return
		}

		var req api.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		msg, err := deps.Session.Register(r.Context(), req)
		if err != nil {
			var verr *api.ValidationError
			if errors.As(err, &verr) {
				writeError(w, http.StatusBadRequest, verr.Message)
				return
			}
			writeError(w, http.StatusBadGateway, failureMessage(err))
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"message": msg})
	})

	handleSessionPost(mux, "/v1/session/logout", func(w http.ResponseWriter, r *http.Request) {
		if deps.Session == nil {
			writeError(w, http.StatusServiceUnavailable, "session service unavailable")
			return
		}
		deps.Session.Logout()
		w.WriteHeader(http.StatusNoContent)
	})
}

// handleSessionPost registers a state-changing session endpoint. Only
// same-origin JSON POSTs reach h, so a form or text/plain request from
// another site cannot log the gateway in or out.
func handleSessionPost(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, sameOrigin(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if !isJSON(r) {
			writeError(w, http.StatusUnsupportedMediaType, "content type must be application/json")
			return
		}
		h(w, r)
	}))
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// sameOrigin rejects browser requests issued by another site. Requests
// without Sec-Fetch-Site or Origin (the CLI, curl) pass through.
func sameOrigin(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !fromSameOrigin(r) {
			writeError(w, http.StatusForbidden, "cross-origin request rejected")
			return
		}
		h(w, r)
	}
}

func fromSameOrigin(r *http.Request) bool {
	switch r.Header.Get("Sec-Fetch-Site") {
	case "":
	case "same-origin", "none":
		return true
	default:
		return false
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func registerRouteHandlers(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("/v1/routes/decide", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		p := strings.TrimSpace(r.URL.Query().Get("path"))
		if p == "" {
			writeError(w, http.StatusBadRequest, "path is required")
			return
		}
		decision, route := deps.Routes.Decide(currentUser(deps.Session), p)
		resp := map[string]any{
			"path":     p,
			"decision": decision.String(),
		}
		if decision == routes.RedirectToLogin {
			resp["location"] = routes.LoginPath
		} else {
			resp["title"] = route.Title
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

// registerAPIProxy forwards same-origin /api/ requests to the platform with
// the session's bearer token. Any Authorization header sent by the browser
// is replaced.
func registerAPIProxy(mux *http.ServeMux, deps Deps) {
	if deps.APIBaseURL == nil {
		return
	}
	target := *deps.APIBaseURL
	log := deps.logger()
	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(&target)
			pr.SetXForwarded()
			pr.Out.Header.Del("Authorization")
			if deps.Session != nil {
				if tok := deps.Session.Token(); tok != "" {
					pr.Out.Header.Set("Authorization", "Bearer "+tok)
				}
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Warn("api proxy failed", "path", r.URL.Path, "error", err)
			writeError(w, http.StatusBadGateway, "api unreachable")
		},
	}
	mux.Handle("/api/", sameOrigin(proxy.ServeHTTP))
}

func registerNavigationHandler(mux *http.ServeMux, deps Deps) {
	distDir := strings.TrimSpace(deps.FrontendDistDir)
	indexPath := ""
	var fileServer http.Handler
	if distDir != "" {
		candidate := filepath.Join(distDir, "index.html")
		if _, err := os.Stat(candidate); err == nil {
			indexPath = candidate
			fileServer = http.FileServer(http.Dir(distDir))
		}
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if strings.HasPrefix(r.URL.Path, "/v1/") {
			http.NotFound(w, r)
			return
		}
		cleanPath := path.Clean("/" + r.URL.Path)

		// Static assets of the bundle are not views.
		if fileServer != nil && cleanPath != "/" && path.Ext(cleanPath) != "" {
			fullPath := filepath.Join(distDir, strings.TrimPrefix(cleanPath, "/"))
			if info, err := os.Stat(fullPath); err == nil && !info.IsDir() {
				fileServer.ServeHTTP(w, r)
				return
			}
		}

		decision, route := deps.Routes.Decide(currentUser(deps.Session), cleanPath)
		if decision == routes.RedirectToLogin {
			http.Redirect(w, r, routes.LoginPath, http.StatusFound)
			return
		}

		if indexPath != "" {
			http.ServeFile(w, r, indexPath)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"path":  cleanPath,
			"view":  route.Pattern,
			"title": route.Title,
		})
	})
}

func currentUser(s SessionService) *auth.UserSummary {
	if s == nil {
		return nil
	}
	u, ok := s.CurrentUser()
	if !ok {
		return nil
	}
	return &u
}

func failureMessage(err error) string {
	var aerr *auth.Error
	if errors.As(err, &aerr) {
		return aerr.Message
	}
	return api.MessageOr(err, "request failed")
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		r.Header.Set("X-Request-Id", reqID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"rid", reqID,
			"ip", clientIP(r),
			"elapsed", time.Since(start),
		)
	})
}

func clientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
