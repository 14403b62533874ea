package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/bengalmatrimony/backend/internal/models"
)

func writeError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.NewErrorResponse(kind, message))
}
