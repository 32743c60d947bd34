package httpapi

import "net/http"

// handlePerfPipeline reports per-stage latency over the recent window, for
// quick inspection without a metrics stack.
func (s *Server) handlePerfPipeline(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.metrics.StageSnapshot())
}
