package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"article-admin/internal/article"

	"github.com/gorilla/mux"
)

// MaxBodyBytes caps request bodies; article content is inline HTML.
const MaxBodyBytes = 10 << 20

type Handler struct {
	repo   article.Repository
	logger *log.Logger
}

func NewHandler(repo article.Repository, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/articles", h.list).Methods(http.MethodGet)
	r.HandleFunc("/articles", h.create).Methods(http.MethodPost)
	r.HandleFunc("/articles/{id}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/articles/{id}", h.update).Methods(http.MethodPut)
	r.HandleFunc("/articles/{id}", h.delete).Methods(http.MethodDelete)
	r.HandleFunc("/articles/{id}/publish", h.publish).Methods(http.MethodPut)
}

type publishRequest struct {
	Published *bool `json:"published"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var f article.Fields
	if !h.decode(w, r, &f) {
		return
	}
	a, err := h.repo.Create(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	a, err := h.repo.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var p article.Patch
	if !h.decode(w, r, &p) {
		return
	}
	a, err := h.repo.Update(r.Context(), mux.Vars(r)["id"], p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	a, err := h.repo.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) publish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Published == nil {
		h.fail(w, r, &article.ValidationError{Field: "published", Reason: "is required"})
		return
	}
	a, err := h.repo.SetPublished(r.Context(), mux.Vars(r)["id"], *req.Published)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, article.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, article.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Printf("api: %s %s failed: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
