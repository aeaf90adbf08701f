package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"article-admin/internal/article"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, register func(r *mux.Router)) *Client {
	t.Helper()
	r := mux.NewRouter()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestCreateSendsFields(t *testing.T) {
	c := newServer(t, func(r *mux.Router) {
		r.HandleFunc("/articles", func(w http.ResponseWriter, r *http.Request) {
			var f article.Fields
			require.NoError(t, json.NewDecoder(r.Body).Decode(&f))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			writeJSON(w, http.StatusCreated, article.Article{ID: "a1", Fields: f})
		}).Methods(http.MethodPost)
	})

	f := article.Empty()
	f.Title = "A"
	f.Labels = []string{"x"}
	a, err := c.Create(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, f, a.Fields)
	assert.False(t, a.Published)
}

func TestUpdateSendsPatch(t *testing.T) {
	c := newServer(t, func(r *mux.Router) {
		r.HandleFunc("/articles/{id}", func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"title":"New"}`, string(body))
			writeJSON(w, http.StatusOK, article.Article{ID: mux.Vars(r)["id"]})
		}).Methods(http.MethodPut)
	})

	title := "New"
	a, err := c.Update(context.Background(), "a1", article.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "a1", a.ID)
}

func TestSetPublished(t *testing.T) {
	c := newServer(t, func(r *mux.Router) {
		r.HandleFunc("/articles/{id}/publish", func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"published":true}`, string(body))
			writeJSON(w, http.StatusOK, article.Article{ID: "a1", Published: true})
		}).Methods(http.MethodPut)
	})

	a, err := c.SetPublished(context.Background(), "a1", true)
	require.NoError(t, err)
	assert.True(t, a.Published)
}

func TestList(t *testing.T) {
	c := newServer(t, func(r *mux.Router) {
		r.HandleFunc("/articles", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, []article.Summary{{ID: "a", Title: "A", Published: true}})
		}).Methods(http.MethodGet)
	})

	items, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []article.Summary{{ID: "a", Title: "A", Published: true}}, items)
}

func TestErrorMapping(t *testing.T) {
	c := newServer(t, func(r *mux.Router) {
		r.HandleFunc("/articles/missing", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "article not found"})
		})
		r.HandleFunc("/articles/invalid", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		})
		r.HandleFunc("/articles/broken", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
	})
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, article.ErrNotFound)

	_, err = c.Delete(ctx, "invalid")
	assert.ErrorIs(t, err, article.ErrValidation)
	assert.Contains(t, err.Error(), "title is required")

	_, err = c.Get(ctx, "broken")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.Equal(t, "Bad Gateway", se.Message)
}
