package routes

import (
	"fmt"
	"net/http"
	"strconv"

	"pulse/pulse/config"
	"pulse/pulse/controllers"
	"pulse/pulse/errs"
	"pulse/pulse/middlewares"

	"github.com/go-chi/chi/v5"
)

const maxAvatarBytes = 5 << 20

func UserRoutes(ctrl *controllers.UserController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.AuthMiddleware(cfg))

	r.Get("/me", handleJSON(func(r *http.Request) (any, error) {
		id, ok := currentUserID(r)
		if !ok {
			return nil, errs.ErrForbidden
		}
		return ctrl.GetUser(r.Context(), id)
	}))

	r.Get("/", handleJSON(func(r *http.Request) (any, error) {
		return ctrl.GetAllUsers(r.Context())
	}))

	r.Get("/{user_id}", handleJSON(func(r *http.Request) (any, error) {
		id, err := strconv.Atoi(chi.URLParam(r, "user_id"))
		if err != nil {
			return nil, fmt.Errorf("bad user id: %w", errs.ErrValidation)
		}
		return ctrl.GetUser(r.Context(), id)
	}))

	r.Post("/me/avatar", handleJSON(func(r *http.Request) (any, error) {
		id, ok := currentUserID(r)
		if !ok {
			return nil, errs.ErrForbidden
		}
		if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
			return nil, fmt.Errorf("bad upload: %w", errs.ErrValidation)
		}
		file, header, err := r.FormFile("avatar")
		if err != nil {
			return nil, fmt.Errorf("missing avatar file: %w", errs.ErrValidation)
		}
		defer file.Close()

		url, err := ctrl.UploadAvatar(r.Context(), id, header.Filename,
			header.Header.Get("Content-Type"), file, header.Size)
		if err != nil {
			return nil, err
		}
		return map[string]string{"profile_picture": url}, nil
	}))

	return r
}
