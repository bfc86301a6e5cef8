package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"autoparts/internal/models"
	"autoparts/internal/services/catalog"
)

func ListParts(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageFrom(r)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		f := models.PartFilter{Search: r.URL.Query().Get("search")}
		res, err := svc.ListParts(r.Context(), f, page)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

func GetPart(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		p, err := svc.Part(r.Context(), id)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}

func PartCarModels(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		cms, err := svc.PartCarModels(r.Context(), id)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, cms)
	}
}

func CreatePart(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p models.Part
		if err := decodeJSON(w, r, &p); err != nil {
			respondError(w, r, lg, err)
			return
		}
		if err := svc.CreatePart(r.Context(), &p); err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusCreated, p)
	}
}

func ReplacePart(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		var p models.Part
		if err := decodeJSON(w, r, &p); err != nil {
			respondError(w, r, lg, err)
			return
		}
		if err := svc.ReplacePart(r.Context(), id, &p); err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}

func PatchPart(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		var patch catalog.PartPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			respondError(w, r, lg, err)
			return
		}
		p, err := svc.PatchPart(r.Context(), id, patch)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}

func DeletePart(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		if err := svc.DeletePart(r.Context(), id); err != nil {
			respondError(w, r, lg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
