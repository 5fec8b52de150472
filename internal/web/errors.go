package web

// errors.go is the single funnel for error responses: the technical error
// is logged server-side with the request ID, and the client gets the
// translated operator-facing message from the catalog error map.

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/innserve/menuimport/internal/catalog"
	"github.com/innserve/menuimport/internal/logging"
)

// ErrorResponse is the JSON envelope for failed requests. Summary is set
// when an import failed after producing row-level detail (zero valid rows).
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Action  string                 `json:"action,omitempty"`
	Code    string                 `json:"code"`
	Summary *catalog.ImportSummary `json:"summary,omitempty"`
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	s.respondErrorSummary(w, r, err, statusCode, nil)
}

func (s *Server) respondErrorSummary(w http.ResponseWriter, r *http.Request, err error, statusCode int, summary *catalog.ImportSummary) {
	userMsg := catalog.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	respondJSON(w, statusCode, ErrorResponse{
		Error:   err.Error(),
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
		Summary: summary,
	})
}

func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
