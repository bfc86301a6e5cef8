package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"autoparts/internal/models"
	"autoparts/internal/services/identity"
)

func Register(svc *identity.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req identity.Registration
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, r, lg, err)
			return
		}
		u, err := svc.Register(r.Context(), req)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusCreated, u)
	}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(svc *identity.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, r, lg, err)
			return
		}
		if req.Email == "" || req.Password == "" {
			respondError(w, r, lg, models.Invalid("email", "email and password are required"))
			return
		}
		pair, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, pair)
	}
}

type refreshReq struct {
	Refresh string `json:"refresh"`
}

func (req refreshReq) validate() error {
	if req.Refresh == "" {
		return models.Invalid("refresh", "is required")
	}
	return nil
}

func Refresh(svc *identity.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshReq
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, r, lg, err)
			return
		}
		if err := req.validate(); err != nil {
			respondError(w, r, lg, err)
			return
		}
		pair, err := svc.Refresh(r.Context(), req.Refresh)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, pair)
	}
}

func Logout(svc *identity.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshReq
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, r, lg, err)
			return
		}
		if err := req.validate(); err != nil {
			respondError(w, r, lg, err)
			return
		}
		if err := svc.Logout(r.Context(), req.Refresh); err != nil {
			respondError(w, r, lg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func Me(svc *identity.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.Me(r.Context())
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, u)
	}
}
