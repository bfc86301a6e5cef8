package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"autoparts/internal/services/catalog"
)

// MyLogs lists the caller's audit entries; admins see everyone's with ?all=1.
func MyLogs(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := r.URL.Query().Get("all") == "1"
		logs, err := svc.Logs(r.Context(), all)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, logs)
	}
}
