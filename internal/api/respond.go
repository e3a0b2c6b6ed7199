package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// respond writes the success envelope {"response": payload}.
func respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{"response": payload}); err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
	}
}

// respondErr writes the error envelope {"error": message}.
func respondErr(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}

// decode reads a JSON body into dst, rejecting unknown junk gracefully.
func decode(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
