package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/osakka/axiosgen/pkg/config"
	cgerrors "github.com/osakka/axiosgen/pkg/errors"
	"github.com/osakka/axiosgen/pkg/generator"
	"github.com/osakka/axiosgen/pkg/writer"
)

// generateRequest is the body of POST /v1/generate
type generateRequest struct {
	Options  json.RawMessage `json:"options"`
	Document json.RawMessage `json:"document"`
}

type generateResponse struct {
	Result *generator.Result `json:"result"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Category  string `json:"category,omitempty"`
	Operation string `json:"operation,omitempty"`
	Message   string `json:"message"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, cgerrors.Wrap(err, cgerrors.CategoryValidation, "decode_request", "invalid JSON body"))
		return
	}
	if len(req.Document) == 0 {
		s.writeError(w, cgerrors.New(cgerrors.CategoryValidation, "decode_request", "document is required"))
		return
	}

	opts, err := requestOptions(req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}

	parsed, err := s.loader.LoadBytes(r.Context(), req.Document, "")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if parsed.Spec == nil {
		writeJSON(w, http.StatusUnprocessableEntity, parsed)
		return
	}

	result, err := s.generator.Render(r.Context(), parsed.Spec, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	result.Files = writer.New(s.logger, s.registry, writer.NewFormatter(opts)).Format(r.Context(), result.Files)
	result.Warnings = parsed.Warnings
	result.Errors = parsed.Errors

	writeJSON(w, http.StatusOK, generateResponse{Result: result})
}

// requestOptions overlays the request options on the defaults. Options that
// read local files or run commands are not accepted over the network.
func requestOptions(raw json.RawMessage) (*config.Options, error) {
	opts := config.DefaultOptions()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &opts); err != nil {
			return nil, cgerrors.Wrap(err, cgerrors.CategoryValidation, "decode_options", "invalid options")
		}
	}

	opts.RemoteURL = ""
	opts.SourceFile = ""
	opts.ExtendDefinitionFile = ""
	opts.FormatCommand = nil
	if opts.Formatter == config.FormatterCommand {
		opts.Formatter = config.FormatterBasic
	}
	if opts.OutputDir == "" {
		opts.OutputDir = config.DefaultOptions().OutputDir
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, cgerrors.Wrap(err, cgerrors.CategoryValidation, "read_request", "cannot read body"))
		return
	}

	result, err := s.loader.LoadBytes(r.Context(), body, "")
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.GetAllStats())
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		status = http.StatusRequestEntityTooLarge
	case cgerrors.IsUserError(err):
		status = http.StatusBadRequest
	}

	detail := errorDetail{Message: err.Error()}
	var cgErr *cgerrors.CodegenError
	if errors.As(err, &cgErr) {
		detail.Category = string(cgErr.Category)
		detail.Operation = cgErr.Operation
	}

	s.logger.Warn("request_failed",
		"status", status,
		"error", err)
	writeJSON(w, status, errorBody{Error: detail})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
