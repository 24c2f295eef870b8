package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError writes the API error envelope {error, message}.
func writeError(w http.ResponseWriter, status int, errMsg, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]string{"error": errMsg}
	if message != "" {
		body["message"] = message
	}
	_ = json.NewEncoder(w).Encode(body)
}
