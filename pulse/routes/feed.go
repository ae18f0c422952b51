package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"pulse/pulse/config"
	"pulse/pulse/controllers"
	"pulse/pulse/errs"
	"pulse/pulse/middlewares"
	"pulse/pulse/types"

	"github.com/go-chi/chi/v5"
)

func FeedRoutes(ctrl *controllers.FeedController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.AuthMiddleware(cfg))

	r.Get("/", handleJSON(func(r *http.Request) (any, error) {
		id, _ := currentUserID(r)
		posts, err := ctrl.GetFeed(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"posts": posts}, nil
	}))

	r.Post("/", handleJSON(func(r *http.Request) (any, error) {
		id, ok := currentUserID(r)
		if !ok {
			return nil, errs.ErrForbidden
		}
		var req types.CreatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("bad request body: %w", errs.ErrValidation)
		}
		return ctrl.CreatePost(r.Context(), id, req.Body, req.Link)
	}))

	r.Post("/{post_id}/like", handleJSON(func(r *http.Request) (any, error) {
		id, ok := currentUserID(r)
		if !ok {
			return nil, errs.ErrForbidden
		}
		postID, err := postIDParam(r)
		if err != nil {
			return nil, err
		}
		liked, count, err := ctrl.ToggleLike(r.Context(), id, postID)
		if err != nil {
			return nil, err
		}
		return types.LikeResponse{PostID: postID, Liked: liked, LikeCount: count}, nil
	}))

	r.Get("/{post_id}/comments", handleJSON(func(r *http.Request) (any, error) {
		postID, err := postIDParam(r)
		if err != nil {
			return nil, err
		}
		comments, err := ctrl.GetComments(r.Context(), postID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"comments": comments}, nil
	}))

	r.Post("/{post_id}/comments", handleJSON(func(r *http.Request) (any, error) {
		id, ok := currentUserID(r)
		if !ok {
			return nil, errs.ErrForbidden
		}
		postID, err := postIDParam(r)
		if err != nil {
			return nil, err
		}
		var req types.CreateCommentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("bad request body: %w", errs.ErrValidation)
		}
		return ctrl.AddComment(r.Context(), id, postID, req.Body)
	}))

	return r
}

func postIDParam(r *http.Request) (int, error) {
	postID, err := strconv.Atoi(chi.URLParam(r, "post_id"))
	if err != nil {
		return 0, fmt.Errorf("bad post id: %w", errs.ErrValidation)
	}
	return postID, nil
}
