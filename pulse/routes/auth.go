package routes

import (
	"encoding/json"
	"fmt"
	"net/http"

	"pulse/pulse/controllers"
	"pulse/pulse/errs"
	"pulse/pulse/types"

	"github.com/go-chi/chi/v5"
)

func AuthRoutes(ctrl *controllers.AuthController) chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", handleJSON(func(r *http.Request) (any, error) {
		var req types.SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("bad request body: %w", errs.ErrValidation)
		}
		user, err := ctrl.Signup(r.Context(), req)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		}, nil
	}))

	r.Post("/login", handleJSON(func(r *http.Request) (any, error) {
		var req types.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("bad request body: %w", errs.ErrValidation)
		}
		token, user, err := ctrl.Login(r.Context(), req)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"token":    token,
			"user_id":  user.ID,
			"username": user.Username,
		}, nil
	}))

	return r
}
