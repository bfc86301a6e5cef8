package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"autoparts/internal/models"
	"autoparts/internal/services/identity"
)

func userID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, models.Invalid("id", "must be a UUID")
	}
	return id, nil
}

func ListUsers(svc *identity.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageFrom(r)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		res, err := svc.ListUsers(r.Context(), page)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

// CreateUser goes through registration; the caller is an admin here so any
// role may be requested.
func CreateUser(svc *identity.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return Register(svc, lg)
}

func UpdateUser(svc *identity.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userID(r)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		var patch identity.UserPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			respondError(w, r, lg, err)
			return
		}
		u, err := svc.UpdateUser(r.Context(), id, patch)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, u)
	}
}

func DeleteUser(svc *identity.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userID(r)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		if err := svc.DeleteUser(r.Context(), id); err != nil {
			respondError(w, r, lg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
