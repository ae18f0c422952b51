package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pulse/pulse/config"
	"pulse/pulse/controllers"
	"pulse/pulse/realtime"
	"pulse/pulse/sources/psql"
	"pulse/pulse/sources/psql/dao"
	"pulse/pulse/utils/logging"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// --- Helpers ---

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	logging.InitLogger()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := psql.Migrate(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	cfg := config.Config{JWTSecret: "route-test-secret"}

	userDAO := dao.NewUserDAO(db)
	chatDAO := dao.NewChatDAO(db)
	chatCtrl := controllers.NewChatController(chatDAO, userDAO)
	gateway := realtime.NewGateway(realtime.NewRegistry(), chatCtrl, userDAO, cfg)

	r := chi.NewRouter()
	r.Mount("/auth", AuthRoutes(controllers.NewAuthController(userDAO, cfg)))
	r.Mount("/chat", ChatRoutes(chatCtrl, gateway, cfg))
	r.Mount("/users", UserRoutes(controllers.NewUserController(userDAO, nil), cfg))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	raw, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp, decodeBody(t, resp)
}

func getJSON(t *testing.T, url, token string) (*http.Response, map[string]any) {
	t.Helper()
	req, _ := http.NewRequest("GET", url, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	json.NewDecoder(resp.Body).Decode(&out)
	return out
}

func signupAndLogin(t *testing.T, base, username string) (string, int) {
	t.Helper()
	resp, _ := postJSON(t, base+"/auth/signup", "", map[string]string{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "hunter22",
		"confirm_password": "hunter22",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signup %s: status %d", username, resp.StatusCode)
	}
	resp, body := postJSON(t, base+"/auth/login", "", map[string]string{
		"username": username,
		"password": "hunter22",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", username, resp.StatusCode)
	}
	token, _ := body["token"].(string)
	id, _ := body["user_id"].(float64)
	if token == "" || id == 0 {
		t.Fatalf("login %s: bad body %v", username, body)
	}
	return token, int(id)
}

// --- End-to-end over HTTP ---

func TestChatFlowOverHTTP(t *testing.T) {
	srv := setupServer(t)
	aliceToken, aliceID := signupAndLogin(t, srv.URL, "alice")
	bobToken, bobID := signupAndLogin(t, srv.URL, "bob")

	// alice starts the chat
	resp, body := postJSON(t, srv.URL+"/chat/start", aliceToken, map[string]int{"user_id": bobID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start chat: status %d", resp.StatusCode)
	}
	sessionID := int(body["chat_session_id"].(float64))
	if sessionID == 0 {
		t.Fatalf("no session id in %v", body)
	}

	// bob starting it the other way lands on the same session
	resp, body = postJSON(t, srv.URL+"/chat/start", bobToken, map[string]int{"user_id": aliceID})
	if resp.StatusCode != http.StatusOK || int(body["chat_session_id"].(float64)) != sessionID {
		t.Errorf("expected same session %d, got %v (status %d)", sessionID, body, resp.StatusCode)
	}

	// empty history is still an authorized 200
	resp, body = getJSON(t, fmt.Sprintf("%s/chat/session/%d/messages", srv.URL, sessionID), bobToken)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("history: status %d", resp.StatusCode)
	}
	if _, ok := body["messages"]; !ok {
		t.Errorf("history body missing messages key: %v", body)
	}
}

func TestChatStatusMapping(t *testing.T) {
	srv := setupServer(t)
	aliceToken, aliceID := signupAndLogin(t, srv.URL, "alice")
	_, bobID := signupAndLogin(t, srv.URL, "bob")
	carolToken, _ := signupAndLogin(t, srv.URL, "carol")

	// self chat -> 400
	resp, _ := postJSON(t, srv.URL+"/chat/start", aliceToken, map[string]int{"user_id": aliceID})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("self chat: expected 400, got %d", resp.StatusCode)
	}
	// unknown user -> 404
	resp, _ = postJSON(t, srv.URL+"/chat/start", aliceToken, map[string]int{"user_id": 9999})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown user: expected 404, got %d", resp.StatusCode)
	}
	// outsider history -> 403
	resp, body := postJSON(t, srv.URL+"/chat/start", aliceToken, map[string]int{"user_id": bobID})
	sessionID := int(body["chat_session_id"].(float64))
	resp, _ = getJSON(t, fmt.Sprintf("%s/chat/session/%d/messages", srv.URL, sessionID), carolToken)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("outsider history: expected 403, got %d", resp.StatusCode)
	}
	// no token -> 401
	resp, _ = postJSON(t, srv.URL+"/chat/start", "", map[string]int{"user_id": bobID})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous: expected 401, got %d", resp.StatusCode)
	}
}

func TestDuplicateSignupConflict(t *testing.T) {
	srv := setupServer(t)
	signupAndLogin(t, srv.URL, "alice")

	resp, _ := postJSON(t, srv.URL+"/auth/signup", "", map[string]string{
		"username":         "alice",
		"email":            "alice@example.com",
		"password":         "hunter22",
		"confirm_password": "hunter22",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate signup: expected 409, got %d", resp.StatusCode)
	}
}

func TestUsersMe(t *testing.T) {
	srv := setupServer(t)
	token, id := signupAndLogin(t, srv.URL, "alice")

	resp, body := getJSON(t, srv.URL+"/users/me", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("users/me: status %d", resp.StatusCode)
	}
	if int(body["id"].(float64)) != id || body["username"] != "alice" {
		t.Errorf("unexpected profile: %v", body)
	}
	if _, leaked := body["password_hash"]; leaked {
		t.Errorf("password hash leaked in profile response")
	}
}
