package api

import (
	"encoding/csv"
	"io"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/odbconv/pkg/codec"
	"github.com/ssargent/odbconv/pkg/convert"
	"github.com/ssargent/odbconv/pkg/storage"
	"github.com/ssargent/odbconv/pkg/tabular"
)

const defaultRunsLimit = 50

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleEncode godoc
//
//	@Summary		Encode CSV
//	@Description	Convert a transaction CSV into an ODB container
//	@Tags			convert
//	@Accept			text/csv
//	@Produce		octet-stream
//	@Param			body	body		string	true	"CSV with a header row"
//	@Success		200		{string}	byte
//	@Failure		400		{object}	APIResponse
//	@Failure		413		{object}	APIResponse
//	@Router			/encode [post]
//	@Security		ApiKeyAuth
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	out, sum, err := s.deps.Converter.EncodeBytes(requestSource(r), body)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	writeConverted(w, ContentTypeODB, out, sum)
}

// handleDecode godoc
//
//	@Summary		Decode ODB
//	@Description	Convert an ODB container into a transaction CSV
//	@Tags			convert
//	@Accept			octet-stream
//	@Produce		text/csv
//	@Param			body	body		[]byte	true	"ODB container"
//	@Success		200		{string}	string
//	@Failure		413		{object}	APIResponse
//	@Failure		422		{object}	APIResponse
//	@Router			/decode [post]
//	@Security		ApiKeyAuth
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	out, sum, err := s.deps.Converter.DecodeBytes(requestSource(r), body)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	writeConverted(w, ContentTypeCSV, out, sum)
}

// handleListRuns godoc
//
//	@Summary		List runs
//	@Description	List archived conversion runs, newest first
//	@Tags			runs
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number of runs"
//	@Success		200		{object}	APIResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Router			/runs [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.deps.Runs == nil {
		sendError(w, "Run archive is disabled", http.StatusNotFound)
		return
	}

	limit := defaultRunsLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 0 {
			sendError(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.deps.Runs.List(limit)
	if err != nil {
		sendError(w, "Failed to list runs: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []*storage.Run{}
	}

	sendSuccess(w, runs)
}

// handleGetRun godoc
//
//	@Summary		Get run
//	@Description	Get one archived conversion run with its issues
//	@Tags			runs
//	@Produce		json
//	@Param			id	path		string	true	"Run ID"
//	@Success		200	{object}	APIResponse
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Router			/runs/{id} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.deps.Runs == nil {
		sendError(w, "Run archive is disabled", http.StatusNotFound)
		return
	}

	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid run ID", http.StatusBadRequest)
		return
	}

	run, err := s.deps.Runs.Get(id)
	if errors.Is(err, storage.ErrRunNotFound) {
		sendError(w, "Run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		sendError(w, "Failed to get run: "+err.Error(), http.StatusInternalServerError)
		return
	}

	sendSuccess(w, run)
}

// readBody reads the whole capped request body, writing the error response
// itself when it fails.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func requestSource(r *http.Request) string {
	if name := r.URL.Query().Get("name"); name != "" {
		return name
	}
	return "http:" + middleware.GetReqID(r.Context())
}

func writeConverted(w http.ResponseWriter, contentType string, body []byte, sum *convert.Summary) {
	if sum.RunID != ksuid.Nil {
		w.Header().Set(HeaderRunID, sum.RunID.String())
	}
	w.Header().Set(HeaderRecordsKept, strconv.Itoa(sum.Report.Kept))
	w.Header().Set(HeaderRecordsDropped, strconv.Itoa(sum.Report.Dropped))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// statusFor maps a conversion error to an HTTP status
func statusFor(err error) int {
	var parseErr *csv.ParseError
	switch {
	case codec.IsFatal(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tabular.ErrMissingHeader),
		errors.Is(err, tabular.ErrMissingColumn),
		errors.Is(err, tabular.ErrInvalidUTF8),
		errors.As(err, &parseErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
