package clientapp

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/csrf"

	"github.com/phillip-england/hrmslite/internal/apiclient"
	"github.com/phillip-england/hrmslite/internal/config"
	"github.com/phillip-england/hrmslite/internal/hrms"
	"github.com/phillip-england/hrmslite/internal/middleware"
	"github.com/phillip-england/hrmslite/internal/notify"
	"github.com/phillip-england/hrmslite/internal/pages"
)

const (
	csrfFieldName  = "csrf_token"
	csrfCookieName = "hrms_csrf"
)

type Config struct {
	Addr         string
	APIBaseURL   string
	APITimeout   time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CSRFKey      []byte
	CSRFSecure   bool
	Telegram     config.TelegramConfig
}

// backend is everything the shell asks of the HRMS API. *apiclient.Client
// satisfies it.
type backend interface {
	pages.EmployeeAPI
	pages.AttendanceAPI
	pages.DashboardAPI
	GetEmployee(ctx context.Context, employeeID string) (*hrms.Employee, error)
	ListAttendance(ctx context.Context, filter hrms.AttendanceFilter) ([]hrms.AttendanceRecord, error)
	Health(ctx context.Context) error
}

type pageData struct {
	Title      string
	Active     string
	CSRFField  template.HTML
	Toasts     []notify.Notification
	Dashboard  *pages.DashboardView
	Employees  *pages.EmployeesView
	Attendance *pages.AttendanceView
}

//go:embed templates/layout.html templates/states.html templates/dashboard.html templates/employees.html templates/attendance.html assets/app.css
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"statusBadge": pages.StatusBadge,
	"displayDate": formatDateDisplay,
	"pathEscape":  url.PathEscape,
}

type server struct {
	api            backend
	audit          notify.Notifier
	now            func() time.Time
	dashboardTmpl  *template.Template
	employeesTmpl  *template.Template
	attendanceTmpl *template.Template
}

// ConfigFrom adapts the loaded settings to the server's Config.
func ConfigFrom(c *config.Config) Config {
	return Config{
		Addr:         c.Client.Addr,
		APIBaseURL:   c.API.BaseURL,
		APITimeout:   c.API.Timeout,
		ReadTimeout:  c.Client.ReadTimeout,
		WriteTimeout: c.Client.WriteTimeout,
		CSRFKey:      c.CSRF.Key,
		CSRFSecure:   c.CSRF.Secure,
		Telegram:     c.Telegram,
	}
}

// LoadConfig reads the optional YAML file at path plus the environment.
func LoadConfig(path string) (Config, error) {
	c, err := config.Load(path)
	if err != nil {
		return Config{}, err
	}
	return ConfigFrom(c), nil
}

func newServer(api backend, audit notify.Notifier, now func() time.Time) *server {
	if now == nil {
		now = time.Now
	}
	return &server{
		api:            api,
		audit:          audit,
		now:            now,
		dashboardTmpl:  parsePage("templates/dashboard.html"),
		employeesTmpl:  parsePage("templates/employees.html"),
		attendanceTmpl: parsePage("templates/attendance.html"),
	}
}

func parsePage(page string) *template.Template {
	return template.Must(template.New("layout.html").Funcs(templateFuncs).ParseFS(templatesFS, "templates/layout.html", "templates/states.html", page))
}

// NewAPIClient builds the backend client for cfg.
func NewAPIClient(cfg Config) *apiclient.Client {
	var opts []apiclient.Option
	if cfg.APITimeout > 0 {
		opts = append(opts, apiclient.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}))
	}
	return apiclient.New(cfg.APIBaseURL, opts...)
}

func Run(ctx context.Context, cfg Config) error {
	var audit notify.Notifier
	if cfg.Telegram.Enabled() {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			log.Printf("telegram audit disabled: %v", err)
		} else {
			go tg.Run(ctx)
			audit = tg
		}
	}

	s := newServer(NewAPIClient(cfg), audit, time.Now)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler(cfg),
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("client listening on http://localhost%s (api %s)", cfg.Addr, strings.TrimRight(cfg.APIBaseURL, "/"))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.dashboardPage)
	mux.HandleFunc("GET /employees", s.employeesPage)
	mux.HandleFunc("POST /employees", s.createEmployee)
	mux.HandleFunc("POST /employees/{id}/delete", s.deleteEmployee)
	mux.HandleFunc("GET /employees/export.xlsx", s.exportEmployees)
	mux.HandleFunc("POST /employees/import", s.importEmployees)
	mux.HandleFunc("GET /attendance", s.attendancePage)
	mux.HandleFunc("POST /attendance/mark", s.markAttendance)
	mux.HandleFunc("GET /attendance/export.xlsx", s.exportAttendance)
	mux.HandleFunc("GET /healthz", s.healthz)
	mux.HandleFunc("GET /assets/app.css", s.appCSSFile)
	return mux
}

func (s *server) handler(cfg Config) http.Handler {
	csp := strings.Join([]string{
		"default-src 'self'",
		"style-src 'self'",
		"img-src 'self' data:",
		"script-src 'self'",
		"connect-src 'self'",
		"form-action 'self'",
		"frame-ancestors 'none'",
	}, "; ")

	protect := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CSRFSecure),
		csrf.FieldName(csrfFieldName),
		csrf.CookieName(csrfCookieName),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailed)),
	)

	return middleware.Chain(
		s.routes(),
		middleware.RequestLog(nil),
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{ContentSecurityPolicy: csp}),
		// The CSRF check parses the form, so uploads are capped ahead of it.
		middleware.BodyLimit(http.MethodPost, "/employees/import", maxImportBytes, http.HandlerFunc(importTooLarge)),
		plaintextCSRF(cfg.CSRFSecure),
		protect,
	)
}

// plaintextCSRF marks requests as plain HTTP so the CSRF check skips its
// TLS-only Referer validation when the client is not served over https.
func plaintextCSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secure {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}

func csrfFailed(w http.ResponseWriter, r *http.Request) {
	log.Printf("csrf check failed for %s %s: %v", r.Method, r.URL.Path, csrf.FailureReason(r))
	http.Error(w, "This form has expired. Reload the page and try again.", http.StatusForbidden)
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "backend": "ok"}
	if err := s.api.Health(r.Context()); err != nil {
		status["backend"] = "unreachable"
		log.Printf("backend health check failed: %v", err)
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *server) appCSSFile(w http.ResponseWriter, r *http.Request) {
	data, err := templatesFS.ReadFile("assets/app.css")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "private, max-age=300")
	_, _ = w.Write(data)
}

// notifier fans a request's notifications out to its recorder and the audit
// sink, when one is configured.
func (s *server) notifier(rec *notify.Recorder) notify.Notifier {
	if s.audit == nil {
		return rec
	}
	return notify.Fanout{rec, s.audit}
}

func (s *server) render(w http.ResponseWriter, r *http.Request, status int, tmpl *template.Template, data pageData, rec *notify.Recorder) {
	data.CSRFField = csrf.TemplateField(r)
	data.Toasts = append(flashToasts(r.URL.Query()), rec.Notifications()...)
	if err := renderHTMLTemplate(w, status, tmpl, data); err != nil {
		http.Error(w, "template render failed", http.StatusInternalServerError)
		log.Printf("%s template render failed: %v", data.Active, err)
	}
}

// flashToasts turns ?message= and ?error= left by a redirect into toasts.
func flashToasts(q url.Values) []notify.Notification {
	var out []notify.Notification
	if msg := strings.TrimSpace(q.Get("message")); msg != "" {
		out = append(out, notify.Notification{Level: notify.LevelSuccess, Message: msg})
	}
	if msg := strings.TrimSpace(q.Get("error")); msg != "" {
		out = append(out, notify.Notification{Level: notify.LevelError, Message: msg})
	}
	return out
}

func renderHTMLTemplate(w http.ResponseWriter, status int, tmpl *template.Template, data pageData) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

func formatDateDisplay(value string) string {
	parsed, err := hrms.ParseDate(strings.TrimSpace(value))
	if err != nil {
		return value
	}
	return parsed.Format("Jan 2, 2006")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
