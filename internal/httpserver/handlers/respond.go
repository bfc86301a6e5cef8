package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"autoparts/internal/models"
	"autoparts/internal/util"
)

const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	util.WriteJSON(w, status, v)
}

// respondError maps err onto its status. Internal failures are logged with
// the request id and answered with a generic message.
func respondError(w http.ResponseWriter, r *http.Request, lg *zap.SugaredLogger, err error) {
	if util.StatusFor(err) == http.StatusInternalServerError {
		lg.Errorw("request failed",
			"method", r.Method, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()), "error", err)
	}
	util.WriteError(w, err)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return models.Invalid("body", "request body is required")
		}
		return models.Invalid("body", "malformed JSON: "+err.Error())
	}
	return nil
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.Invalid(name, "must be a positive integer")
	}
	return id, nil
}

// queryID reads a required positive integer query parameter.
func queryID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, models.Invalid(name, "query parameter is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, models.Invalid(name, "must be a positive integer")
	}
	return id, nil
}

// pageFrom reads page and page_size; absent values are left zero for the
// service to default.
func pageFrom(r *http.Request) (models.Page, error) {
	var p models.Page
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, models.Invalid("page", "must be a positive integer")
		}
		p.Number = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, models.Invalid("page_size", "must be a positive integer")
		}
		p.Size = n
	}
	return p, nil
}
