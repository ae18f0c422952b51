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
	"pulse/pulse/realtime"
	"pulse/pulse/types"

	"github.com/go-chi/chi/v5"
)

func ChatRoutes(ctrl *controllers.ChatController, gateway *realtime.Gateway, cfg config.Config) chi.Router {
	r := chi.NewRouter()

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		// POST /chat/start : find-or-create the session with another user
		gr.Post("/start", handleJSON(func(r *http.Request) (any, error) {
			id, ok := currentUserID(r)
			if !ok {
				return nil, errs.ErrForbidden
			}
			var req types.StartChatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				return nil, fmt.Errorf("bad request body: %w", errs.ErrValidation)
			}
			session, err := ctrl.StartChat(r.Context(), id, req.UserID)
			if err != nil {
				return nil, err
			}
			return map[string]int{"chat_session_id": session.ID}, nil
		}))

		// GET /chat/session/{session_id}/messages : history, marks
		// the other side's messages read
		gr.Get("/session/{session_id}/messages", handleJSON(func(r *http.Request) (any, error) {
			id, ok := currentUserID(r)
			if !ok {
				return nil, errs.ErrForbidden
			}
			sessionID, err := strconv.Atoi(chi.URLParam(r, "session_id"))
			if err != nil {
				return nil, fmt.Errorf("bad session id: %w", errs.ErrValidation)
			}
			messages, err := ctrl.GetMessages(r.Context(), id, sessionID)
			if err != nil {
				return nil, err
			}
			return map[string]any{"messages": messages}, nil
		}))
	})

	// The gateway does its own token check during the handshake.
	r.HandleFunc("/ws", gateway.HandleWS)

	return r
}
