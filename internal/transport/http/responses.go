package httptransport

import (
	"encoding/json"
	"net/http"

	dErrors "acadreg/pkg/domain-errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError centralizes domain error translation to HTTP responses so all
// handlers share one JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	writeJSON(w, dErrors.ToHTTPStatus(code), map[string]string{
		"error": string(code),
	})
}
