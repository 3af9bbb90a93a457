package utils

import (
	"encoding/json"
	"log"
	"net/http"

	"homedish/apperr"
)

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, map[string]string{"message": msg})
}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("RespondWithJSON: encode failed: %v", err)
	}
}

// WriteError renders err with the status of its kind. Dependency failures are
// logged with their cause and reported without it.
func WriteError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindDependencyFailure {
		log.Printf("dependency failure: %v", err)
	}
	RespondWithJSON(w, kind.Status(), map[string]string{
		"message": apperr.PublicMessage(err),
		"error":   kind.String(),
	})
}
