package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"equity-dashboard/config"
	"equity-dashboard/dashboard"
	"equity-dashboard/export"
	"equity-dashboard/internal/app"
	"equity-dashboard/models"
	"equity-dashboard/observability"
	"equity-dashboard/services"
	"equity-dashboard/templates"

	"github.com/go-chi/chi/v5"
)

// Handler handles HTTP API requests
type Handler struct {
	app *app.App
	cfg *config.Config
}

// NewHandler creates a new Handler
func NewHandler(application *app.App, cfg *config.Config) *Handler {
	return &Handler{app: application, cfg: cfg}
}

// HandleIndex serves the dashboard page. When the query names companies the
// dashboard is computed and rendered below the form.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	page := templates.Page{Options: h.app.DefaultOptions()}
	if res := h.app.Resolver(); res != nil {
		page.Companies = res.Companies()
	}

	if len(r.URL.Query()["company"]) > 0 {
		opts, err := ParseOptions(r, h.app.DefaultOptions())
		page.Options = opts
		if err != nil {
			page.Error = err.Error()
		} else if result, err := h.app.RunDashboard(r.Context(), opts); err != nil {
			page.Error = err.Error()
		} else {
			page.Result = result
		}
	}

	h.htmlResponse(w, templates.Index(page), r)
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":   "ok",
		"provider": h.app.Provider(),
	}

	db := h.app.DatabaseStatus(r.Context())
	status["services"] = map[string]string{"database": db}
	if db == app.DatabaseDisconnected {
		status["status"] = "degraded"
	}

	if res := h.app.Resolver(); res != nil && res.Len() > 0 {
		status["listing"] = map[string]int{"companies": res.Len()}
	} else {
		status["listing"] = map[string]int{"companies": 0}
		status["status"] = "degraded"
	}

	registry := services.GetGlobalRegistry()
	status["circuit_breakers"] = registry.Status()
	if open := registry.Open(); len(open) > 0 {
		status["status"] = "degraded"
		status["open_breakers"] = open
	}

	h.jsonResponse(w, status)
}

// HandleCompanies searches the company listing
func (h *Handler) HandleCompanies(w http.ResponseWriter, r *http.Request) {
	res := h.app.Resolver()
	if res == nil {
		h.jsonError(w, "Company listing not loaded", http.StatusServiceUnavailable)
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	limit := h.ParseLimitParam(r, 20)
	matches := res.Search(q, limit)

	h.jsonResponse(w, map[string]interface{}{
		"companies": matches,
		"count":     len(matches),
		"total":     res.Len(),
	})
}

// HandleResolve maps a company name to its ticker
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	company := strings.TrimSpace(r.URL.Query().Get("company"))
	if company == "" {
		h.jsonError(w, "Company is required", http.StatusBadRequest)
		return
	}

	res := h.app.Resolver()
	if res == nil {
		h.jsonError(w, "Company listing not loaded", http.StatusServiceUnavailable)
		return
	}

	ticker, err := res.Resolve(company)
	if err != nil {
		h.kindError(w, err)
		return
	}

	h.jsonResponse(w, services.Company{Name: company, Ticker: ticker})
}

// HandleDashboard computes the dashboard for every requested company. Per-company
// failures are reported inside the result, not as an HTTP error.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	opts, err := ParseOptions(r, h.app.DefaultOptions())
	if err != nil {
		if isHTMXRequest(r) {
			h.htmlError(w, err.Error(), r)
			return
		}
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.app.RunDashboard(r.Context(), opts)
	if err != nil {
		if isHTMXRequest(r) {
			h.htmlError(w, err.Error(), r)
			return
		}
		h.jsonError(w, err.Error(), statusFor(err))
		return
	}

	if isHTMXRequest(r) {
		h.htmlResponse(w, templates.Reports(result), r)
		return
	}

	if !queryBool(r, "include_series", false) {
		result = withoutSeries(result)
	}
	h.jsonResponse(w, result)
}

// HandleExport streams one company's indicator table as a CSV attachment
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	company := strings.TrimSpace(r.URL.Query().Get("company"))
	if company == "" {
		h.jsonError(w, "Company is required", http.StatusBadRequest)
		return
	}

	defaults := h.app.DefaultOptions()
	start, err := parseDateParam(r, "start", defaults.Start)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	end, err := parseDateParam(r, "end", defaults.End)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	analysis, err := h.app.Analyze(r.Context(), company, start, end)
	if err != nil {
		h.kindError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(company)))
	if err := export.WriteCSV(w, analysis.Series); err != nil {
		observability.Warn("csv export interrupted", "company", company, "error", err)
	}
}

// HandleGetRuns returns recent analysis runs
func (h *Handler) HandleGetRuns(w http.ResponseWriter, r *http.Request) {
	limit := h.ParseLimitParam(r, 50)
	company := strings.TrimSpace(r.URL.Query().Get("company"))

	runs, err := h.app.GetRuns(r.Context(), company, limit)
	if err != nil {
		h.jsonError(w, err.Error(), statusFor(err))
		return
	}

	h.jsonResponse(w, runs)
}

// HandleGetRun returns a single analysis run
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := h.app.GetRunByID(r.Context(), id)
	if err != nil {
		h.jsonError(w, err.Error(), statusFor(err))
		return
	}
	if run == nil {
		h.jsonError(w, "Run not found", http.StatusNotFound)
		return
	}

	h.jsonResponse(w, run)
}

// ParseOptions reads dashboard options from the query string. Absent fields
// take the value from defaults. A form submission (form=1) treats absent
// checkboxes as unchecked.
func ParseOptions(r *http.Request, defaults models.DashboardOptions) (models.DashboardOptions, error) {
	q := r.URL.Query()
	opts := defaults

	if companies := q["company"]; len(companies) > 0 {
		opts.Companies = make([]string, 0, len(companies))
		for _, c := range companies {
			if c = strings.TrimSpace(c); c != "" {
				opts.Companies = append(opts.Companies, c)
			}
		}
	}

	var err error
	if opts.Start, err = parseDateParam(r, "start", defaults.Start); err != nil {
		return opts, err
	}
	if opts.End, err = parseDateParam(r, "end", defaults.End); err != nil {
		return opts, err
	}

	form := q.Get("form") == "1"
	flag := func(name string, def bool) bool {
		if form {
			def = false
		}
		return queryBool(r, name, def)
	}
	opts.ShowClose = flag("show_close", defaults.ShowClose)
	opts.ShowMovingAverages = flag("show_moving_averages", defaults.ShowMovingAverages)
	opts.ShowBollingerBands = flag("show_bollinger_bands", defaults.ShowBollingerBands)
	opts.ShowRSI = flag("show_rsi", defaults.ShowRSI)
	opts.ShowVolatility = flag("show_volatility", defaults.ShowVolatility)

	return opts, opts.Validate()
}

func parseDateParam(r *http.Request, name string, def time.Time) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	t, err := time.Parse(models.DateLayout, v)
	if err != nil {
		return def, fmt.Errorf("invalid %s date %q (want YYYY-MM-DD)", name, v)
	}
	return t, nil
}

func queryBool(r *http.Request, name string, def bool) bool {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	if v == "on" {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// withoutSeries drops the full indicator tables; charts and summaries stay
func withoutSeries(res *dashboard.Result) *dashboard.Result {
	out := *res
	out.Reports = make([]dashboard.Report, len(res.Reports))
	for i, rep := range res.Reports {
		rep.Series = nil
		out.Reports[i] = rep
	}
	return &out
}

// statusFor maps an error to an HTTP status code
func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrNoDatabase):
		return http.StatusServiceUnavailable
	case errors.Is(err, app.ErrBusy):
		return http.StatusTooManyRequests
	case errors.Is(err, app.ErrTooManyCompanies), errors.Is(err, app.ErrInvalidID),
		errors.Is(err, models.ErrInvalidRange):
		return http.StatusBadRequest
	}

	switch models.KindOf(err) {
	case models.ErrorKindSymbolNotFound, models.ErrorKindDataUnavailable:
		return http.StatusNotFound
	case models.ErrorKindTimeout:
		return http.StatusGatewayTimeout
	case models.ErrorKindUpstream:
		if errors.Is(err, services.ErrServiceUnavailable) {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Helper functions

// isHTMXRequest checks if the request is from HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// templComponent matches the templ.Component interface
type templComponent interface {
	Render(ctx context.Context, w io.Writer) error
}

// htmlResponse renders a templ component as HTML
func (h *Handler) htmlResponse(w http.ResponseWriter, component templComponent, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	component.Render(r.Context(), w)
}

// htmlError renders an error state as HTML
func (h *Handler) htmlError(w http.ResponseWriter, message string, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.ErrorState(message).Render(r.Context(), w)
}

// ParseLimitParam parses the limit query parameter
func (h *Handler) ParseLimitParam(r *http.Request, defaultLimit int) int {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			return l
		}
	}
	return defaultLimit
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// kindError reports a pipeline error with its classification
func (h *Handler) kindError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(err))
	json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
		"kind":  string(models.KindOf(err)),
	})
}
