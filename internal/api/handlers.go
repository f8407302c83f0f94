package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/zipmap/internal/model"
	"github.com/sells-group/zipmap/internal/store"
)

// handleCreateJob accepts a multipart form with the spreadsheet under "file"
// and request settings as form fields, enqueues a job, and returns it.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, `missing "file" part`)
		return
	}
	defer file.Close()

	input, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "reading upload: "+err.Error())
		return
	}

	req, err := requestFromForm(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.store.CreateJob(r.Context(), header.Filename, input, req)
	if err != nil {
		s.log.Error("create job failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "creating job")
		return
	}

	s.log.Info("job created",
		zap.String("job_id", job.ID),
		zap.String("file", job.FileName),
		zap.Int("bytes", len(input)),
	)
	s.writeJSON(w, http.StatusAccepted, job)
}

// requestFromForm maps form fields onto a MapRequest. The palette is a
// comma-separated color list.
func requestFromForm(r *http.Request) (model.MapRequest, error) {
	req := model.MapRequest{
		KeyColumn:   r.FormValue("key_column"),
		ValueColumn: r.FormValue("value_column"),
		Title:       r.FormValue("title"),
		Geography:   model.Geography(r.FormValue("geography")),
	}

	if p := r.FormValue("palette"); p != "" {
		for _, c := range strings.Split(p, ",") {
			if c = strings.TrimSpace(c); c != "" {
				req.Palette = append(req.Palette, c)
			}
		}
	}

	if af := r.FormValue("auto_fill"); af != "" {
		v, err := strconv.ParseBool(af)
		if err != nil {
			return req, err
		}
		req.AutoFill = v
	}
	return req, nil
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.GetJob(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	filter := store.JobFilter{
		Status: model.JobStatus(r.URL.Query().Get("status")),
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			filter.Limit = n
		}
	}

	jobs, err := s.store.ListJobs(r.Context(), filter)
	if err != nil {
		s.log.Error("list jobs failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "listing jobs")
		return
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	s.writeJSON(w, http.StatusOK, jobs)
}

// handleMapPNG serves the rendered map. 404 until the job is done.
func (s *Server) handleMapPNG(w http.ResponseWriter, r *http.Request) {
	res := s.resultForDoneJob(w, r)
	if res == nil {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.PNG)
}

// handleReportCSV serves the unassigned-units report.
func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	res := s.resultForDoneJob(w, r)
	if res == nil {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="report.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.ReportCSV)
}

// resultForDoneJob fetches the artifacts for a finished job, writing the
// appropriate error response and returning nil when they are not available.
func (s *Server) resultForDoneJob(w http.ResponseWriter, r *http.Request) *store.Result {
	jobID := chi.URLParam(r, "jobID")

	job, err := s.store.GetJob(r.Context(), jobID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return nil
	}
	if job.Status != model.JobDone {
		s.writeError(w, http.StatusConflict, "job is "+string(job.Status))
		return nil
	}

	res, err := s.store.GetResult(r.Context(), jobID)
	if err != nil || res == nil {
		s.log.Error("result lookup failed", zap.String("job_id", jobID), zap.Error(err))
		s.writeError(w, http.StatusNotFound, "result not found")
		return nil
	}
	return res
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
