package main

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/toolrank/internal/logging"
)

// Handlers never hand raw errors to render, but a stray one must not leak
// its message to the client.
// nolint
func init() {
	render.Respond = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		if err, ok := v.(error); ok {
			// We set a default error status response code if one hasn't been set.
			if _, ok := r.Context().Value(render.StatusCtxKey).(int); !ok {
				w.WriteHeader(http.StatusBadRequest)
			}

			logging.FromContext(r.Context()).Errorw("responding with raw error", "error", err)

			render.DefaultResponder(w, r, render.M{"status": "error"})

			return
		}

		render.DefaultResponder(w, r, v)
	}
}
