package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	sharedErrors "github.com/khanhnv2901/festguard/internal/shared/errors"
	"go.uber.org/zap"
)

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	URL string `json:"url"`
}

// AnalyzeResponse carries the stored id (empty when storage failed) and the result.
type AnalyzeResponse struct {
	ID     string           `json:"id,omitempty"`
	Stored bool             `json:"stored"`
	Result *analysis.Result `json:"result"`
}

type FeedbackRequest struct {
	Verdict string `json:"verdict"`
	Comment string `json:"comment"`
}

type AnalysisDetail struct {
	Analysis *analysis.Record    `json:"analysis"`
	Feedback []analysis.Feedback `json:"feedback"`
}

type StatsResponse struct {
	Overall analysis.Statistics       `json:"overall"`
	Daily   []analysis.DailyStatistic `json:"daily"`
}

var errAnalysesUnavailable = errors.New("analysis service not available")

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Analyses == nil {
		s.writeError(w, r, http.StatusNotFound, errAnalysesUnavailable)
		return
	}
	var req AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	id, result, err := s.cfg.Analyses.Analyze(r.Context(), req.URL)
	if result == nil {
		s.fail(w, r, err)
		return
	}
	if err != nil {
		// the verdict is still useful when it could not be stored
		s.requestLogger(r).Warn("analysis_not_stored", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, AnalyzeResponse{ID: id, Stored: id != "", Result: result})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Analyses == nil {
		s.writeError(w, r, http.StatusNotFound, errAnalysesUnavailable)
		return
	}
	records, err := s.cfg.Analyses.History(r.Context(), queryInt(r, "limit", s.cfg.HistoryLimit))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if records == nil {
		records = []analysis.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAnalysisByID(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Analyses == nil {
		s.writeError(w, r, http.StatusNotFound, errAnalysesUnavailable)
		return
	}
	record, feedback, err := s.cfg.Analyses.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if feedback == nil {
		feedback = []analysis.Feedback{}
	}
	writeJSON(w, http.StatusOK, AnalysisDetail{Analysis: record, Feedback: feedback})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Analyses == nil {
		s.writeError(w, r, http.StatusNotFound, errAnalysesUnavailable)
		return
	}
	var req FeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	fb, err := s.cfg.Analyses.RecordFeedback(r.Context(), chi.URLParam(r, "id"), req.Verdict, req.Comment)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fb)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Analyses == nil {
		s.writeError(w, r, http.StatusNotFound, errAnalysesUnavailable)
		return
	}
	overall, daily, err := s.cfg.Analyses.Stats(r.Context(), queryInt(r, "days", defaultStatsDays))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if daily == nil {
		daily = []analysis.DailyStatistic{}
	}
	writeJSON(w, http.StatusOK, StatsResponse{Overall: overall, Daily: daily})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Jobs == nil {
		s.writeError(w, r, http.StatusNotFound, errors.New("job service not available"))
		return
	}
	jobs, err := s.cfg.Jobs.ListJobs(r.Context(), queryInt(r, "limit", 25))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleStartJob(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Jobs == nil {
		s.writeError(w, r, http.StatusNotFound, errors.New("job service not available"))
		return
	}
	var req JobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	job, err := s.cfg.Jobs.StartJob(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Jobs == nil {
		s.writeError(w, r, http.StatusNotFound, errors.New("job service not available"))
		return
	}
	job, err := s.cfg.Jobs.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if job == nil {
		s.fail(w, r, sharedErrors.ErrJobNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// streamHeartbeat keeps idle job streams open through proxies.
const streamHeartbeat = 30 * time.Second

func (s *Server) handleJobStream(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Jobs == nil {
		s.writeError(w, r, http.StatusNotFound, errors.New("job service not available"))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, r, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}
	// the stream outlives the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	updates, unsubscribe := s.cfg.Jobs.Subscribe()
	defer unsubscribe()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case job, ok := <-updates:
			if !ok {
				return
			}
			payload, err := json.Marshal(job)
			if err != nil {
				s.requestLogger(r).Error("failed to marshal job", zap.Error(err))
				continue
			}
			if !s.writeStreamChunk(w, []byte("event: job\ndata: ")) ||
				!s.writeStreamChunk(w, payload) ||
				!s.writeStreamChunk(w, []byte("\n\n")) {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if !s.writeStreamChunk(w, []byte(": ping\n\n")) {
				return
			}
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	if q := r.URL.Query().Get(name); q != "" {
		if parsed, err := strconv.Atoi(q); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
