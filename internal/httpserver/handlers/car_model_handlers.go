package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"autoparts/internal/models"
	"autoparts/internal/services/catalog"
)

func carModelFilterFrom(r *http.Request) (models.CarModelFilter, error) {
	q := r.URL.Query()
	f := models.CarModelFilter{
		Name:         strings.TrimSpace(q.Get("name")),
		Manufacturer: strings.TrimSpace(q.Get("manufacturer")),
	}
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return f, models.Invalid("year", "must be an integer")
		}
		f.Year = &year
	}
	return f, nil
}

func ListCarModels(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageFrom(r)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		f, err := carModelFilterFrom(r)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		res, err := svc.ListCarModels(r.Context(), f, page)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

func GetCarModel(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		c, err := svc.CarModel(r.Context(), id)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, c)
	}
}

func CreateCarModel(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c models.CarModel
		if err := decodeJSON(w, r, &c); err != nil {
			respondError(w, r, lg, err)
			return
		}
		if err := svc.CreateCarModel(r.Context(), &c); err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusCreated, c)
	}
}

func ReplaceCarModel(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		var c models.CarModel
		if err := decodeJSON(w, r, &c); err != nil {
			respondError(w, r, lg, err)
			return
		}
		if err := svc.ReplaceCarModel(r.Context(), id, &c); err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, c)
	}
}

func PatchCarModel(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		var patch catalog.CarModelPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			respondError(w, r, lg, err)
			return
		}
		c, err := svc.PatchCarModel(r.Context(), id, patch)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, c)
	}
}

func DeleteCarModel(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		if err := svc.DeleteCarModel(r.Context(), id); err != nil {
			respondError(w, r, lg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
