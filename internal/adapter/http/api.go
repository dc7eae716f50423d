package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/couchcryptid/water-quality-etl/internal/pipeline"
	"github.com/couchcryptid/water-quality-etl/internal/render"
	"github.com/couchcryptid/water-quality-etl/internal/table"
)

const maxLoadBody = 1 << 20

type loadRequest struct {
	Path       string   `json:"path"`
	Categories []string `json:"categories"`
}

type categoryInfo struct {
	Name       domain.Category  `json:"name"`
	Title      string           `json:"title"`
	MinColumns int              `json:"min_columns"`
	Verdicts   []domain.Verdict `json:"verdicts"`
	Strategy   domain.Strategy  `json:"strategy"`
}

type recordsResponse struct {
	Category domain.Category      `json:"category"`
	Count    int                  `json:"count"`
	Records  []domain.Measurement `json:"records"`
}

type recordResponse struct {
	Record  domain.Measurement `json:"record"`
	Details string             `json:"details"`
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoadBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	categories := make([]domain.Category, 0, len(req.Categories))
	for _, name := range req.Categories {
		p, err := domain.LookupProfile(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		categories = append(categories, p.Category)
	}

	report, err := s.svc.Reload(r.Context(), req.Path, categories)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	profiles := domain.Profiles()
	out := make([]categoryInfo, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, categoryInfo{
			Name:       p.Category,
			Title:      p.Title,
			MinColumns: p.MinColumns,
			Verdicts:   p.Rule.Verdicts(),
			Strategy:   p.Strategy,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Summary())
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	c, ok := s.category(w, r)
	if !ok {
		return
	}
	field, err := table.ParseField(r.URL.Query().Get("field"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.svc.Records(c, pipeline.Query{
		Text:  r.URL.Query().Get("q"),
		Field: field,
		Value: r.URL.Query().Get("value"),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if records == nil {
		records = []domain.Measurement{}
	}
	writeJSON(w, http.StatusOK, recordsResponse{Category: c, Count: len(records), Records: records})
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	c, ok := s.category(w, r)
	if !ok {
		return
	}
	m, details, err := s.svc.Record(c, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{Record: m, Details: details})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	c, ok := s.category(w, r)
	if !ok {
		return
	}
	opts, err := s.svc.Options(c)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	c, ok := s.category(w, r)
	if !ok {
		return
	}
	groups, err := s.svc.Groups(c)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	c, ok := s.category(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "png" {
		writeError(w, http.StatusBadRequest, "unsupported format "+strconv.Quote(format))
		return
	}
	chart, err := s.svc.Chart(c, r.PathValue("key"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if format != "png" {
		writeJSON(w, http.StatusOK, chart)
		return
	}

	var opts render.Options
	if v := r.URL.Query().Get("panel"); v != "" {
		if opts.Panel, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid panel "+strconv.Quote(v))
			return
		}
	}
	var buf bytes.Buffer
	if err := render.PNG(&buf, chart, opts); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// category resolves the {category} path value, writing a 404 when it names no category.
func (s *Server) category(w http.ResponseWriter, r *http.Request) (domain.Category, bool) {
	p, err := domain.LookupProfile(r.PathValue("category"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return p.Category, true
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownCategory):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pipeline.ErrNotLoaded),
		errors.Is(err, pipeline.ErrUnknownGroup),
		errors.Is(err, pipeline.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, render.ErrNoPanel):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, render.ErrNothingToPlot):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
