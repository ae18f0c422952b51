package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"pulse/pulse/errs"
	"pulse/pulse/middlewares"
)

// handleJSON wraps a handler returning a value or a taxonomy error,
// mapping the error onto the right HTTP status.
func handleJSON(handler func(r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := handler(r)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// currentUserID reads the id the auth middleware stored on the
// request context.
func currentUserID(r *http.Request) (int, bool) {
	id, ok := r.Context().Value(middlewares.UserIDKey).(int)
	return id, ok
}
