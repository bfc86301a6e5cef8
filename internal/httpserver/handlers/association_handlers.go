package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"autoparts/internal/services/catalog"
)

type associateReq struct {
	PartIDs     []int64 `json:"part_ids"`
	CarModelIDs []int64 `json:"car_model_ids"`
}

// Associate answers 201 with the associations this call created, which is
// an empty list when every pair already existed.
func Associate(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req associateReq
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, r, lg, err)
			return
		}
		created, err := svc.Associate(r.Context(), req.PartIDs, req.CarModelIDs)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusCreated, created)
	}
}

func AssociationsByCarModel(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := queryID(r, "car_model_id")
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		rows, err := svc.FindByCarModel(r.Context(), id)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, rows)
	}
}

func AssociationsByPart(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := queryID(r, "part_id")
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		rows, err := svc.FindByPart(r.Context(), id)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, rows)
	}
}

func ListAssociations(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageFrom(r)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		res, err := svc.ListAssociations(r.Context(), page)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

type createAssociationReq struct {
	Part     int64 `json:"part"`
	CarModel int64 `json:"car_model"`
}

func CreateAssociation(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createAssociationReq
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, r, lg, err)
			return
		}
		a, err := svc.CreateAssociation(r.Context(), req.Part, req.CarModel)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusCreated, a)
	}
}

func GetAssociation(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		a, err := svc.Association(r.Context(), id)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, a)
	}
}

// UpdateAssociation rejects in-place edits. Associations are replaced by
// deleting and creating them.
func UpdateAssociation(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", "GET, DELETE")
	respondJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "associations cannot be modified; delete it and create a new one",
	})
}

func DeleteAssociation(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		if err := svc.DeleteAssociation(r.Context(), id); err != nil {
			respondError(w, r, lg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
