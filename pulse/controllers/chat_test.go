package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"pulse/pulse/errs"
	"pulse/pulse/sources/psql"
	"pulse/pulse/sources/psql/dao"
	"pulse/pulse/sources/psql/models"
	"pulse/pulse/utils/logging"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// --- Helpers ---

func openTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func createTestUser(t *testing.T, userDAO *dao.UserDAO, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	if err := userDAO.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func setupChatTest(t *testing.T) (*ChatController, *dao.ChatDAO, *models.User, *models.User) {
	t.Helper()
	db := openTestDB(t)
	userDAO := dao.NewUserDAO(db)
	chatDAO := dao.NewChatDAO(db)
	ctrl := NewChatController(chatDAO, userDAO)
	alice := createTestUser(t, userDAO, "alice")
	bob := createTestUser(t, userDAO, "bob")
	return ctrl, chatDAO, alice, bob
}

// --- Session resolution ---

func TestStartChatSymmetric(t *testing.T) {
	ctrl, _, alice, bob := setupChatTest(t)
	ctx := context.Background()

	s1, err := ctrl.StartChat(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("StartChat(alice, bob) failed: %v", err)
	}
	s2, err := ctrl.StartChat(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("StartChat(bob, alice) failed: %v", err)
	}
	if s1.ID != s2.ID {
		t.Errorf("expected one session for the pair, got %d and %d", s1.ID, s2.ID)
	}
}

func TestStartChatSelf(t *testing.T) {
	ctrl, _, alice, _ := setupChatTest(t)
	_, err := ctrl.StartChat(context.Background(), alice.ID, alice.ID)
	if !errors.Is(err, errs.ErrValidation) {
		t.Errorf("expected ErrValidation for self chat, got %v", err)
	}
}

func TestStartChatUnknownUser(t *testing.T) {
	ctrl, _, alice, _ := setupChatTest(t)
	_, err := ctrl.StartChat(context.Background(), alice.ID, 9999)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestCreateSessionConflictSurfacesDuplicate(t *testing.T) {
	_, chatDAO, alice, bob := setupChatTest(t)
	ctx := context.Background()

	if _, err := chatDAO.CreateSession(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := chatDAO.CreateSession(ctx, alice.ID, bob.ID)
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("expected gorm.ErrDuplicatedKey on second insert, got %v", err)
	}
}

// --- Message pipeline ---

func TestSendMessageEmptyText(t *testing.T) {
	ctrl, chatDAO, alice, bob := setupChatTest(t)
	ctx := context.Background()
	session, _ := ctrl.StartChat(ctx, alice.ID, bob.ID)

	for _, text := range []string{"", "   ", "\n\t "} {
		_, _, err := ctrl.SendMessage(ctx, alice.ID, session.ID, text)
		if !errors.Is(err, errs.ErrValidation) {
			t.Errorf("text %q: expected ErrValidation, got %v", text, err)
		}
	}
	messages, err := chatDAO.GetMessagesBySession(ctx, session.ID)
	if err != nil {
		t.Fatalf("load messages failed: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("rejected sends must persist nothing, found %d rows", len(messages))
	}
}

func TestSendMessageUnknownSession(t *testing.T) {
	ctrl, _, alice, _ := setupChatTest(t)
	_, _, err := ctrl.SendMessage(context.Background(), alice.ID, 424242, "hi")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSendMessageOutsiderForbidden(t *testing.T) {
	ctrl, _, alice, bob := setupChatTest(t)
	ctx := context.Background()
	db := ctrl.chatDAO.DB
	carol := createTestUser(t, dao.NewUserDAO(db), "carol")

	session, _ := ctrl.StartChat(ctx, alice.ID, bob.ID)
	_, _, err := ctrl.SendMessage(ctx, carol.ID, session.ID, "let me in")
	if !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-participant, got %v", err)
	}
}

func TestSendMessagePayload(t *testing.T) {
	ctrl, _, alice, bob := setupChatTest(t)
	ctx := context.Background()
	session, _ := ctrl.StartChat(ctx, alice.ID, bob.ID)

	payload, receiverID, err := ctrl.SendMessage(ctx, alice.ID, session.ID, "  hello bob  ")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if receiverID != bob.ID {
		t.Errorf("expected receiver %d, got %d", bob.ID, receiverID)
	}
	if payload.MessageText != "hello bob" {
		t.Errorf("expected trimmed text, got %q", payload.MessageText)
	}
	if payload.Username != "alice" || payload.SenderID != alice.ID {
		t.Errorf("payload carries wrong sender: %+v", payload)
	}
	if payload.ChatSessionID != session.ID || payload.ID == 0 {
		t.Errorf("payload carries wrong ids: %+v", payload)
	}
	if payload.CreatedAt == "" {
		t.Errorf("payload missing formatted timestamp")
	}
}

func TestSendMessageTouchesSession(t *testing.T) {
	ctrl, chatDAO, alice, bob := setupChatTest(t)
	ctx := context.Background()
	session, _ := ctrl.StartChat(ctx, alice.ID, bob.ID)
	before := session.UpdatedAt

	if _, _, err := ctrl.SendMessage(ctx, alice.ID, session.ID, "ping"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	after, err := chatDAO.GetSessionByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("reload session failed: %v", err)
	}
	if after.UpdatedAt.Before(before) {
		t.Errorf("session updated_at went backwards: %v -> %v", before, after.UpdatedAt)
	}
}

// --- History fetch ---

func TestHistoryOrderAndReadMarking(t *testing.T) {
	ctrl, chatDAO, alice, bob := setupChatTest(t)
	ctx := context.Background()
	session, _ := ctrl.StartChat(ctx, alice.ID, bob.ID)

	for _, text := range []string{"one", "two", "three"} {
		if _, _, err := ctrl.SendMessage(ctx, alice.ID, session.ID, text); err != nil {
			t.Fatalf("send %q failed: %v", text, err)
		}
	}
	if _, _, err := ctrl.SendMessage(ctx, bob.ID, session.ID, "four"); err != nil {
		t.Fatalf("send reply failed: %v", err)
	}

	history, err := ctrl.GetMessages(ctx, bob.ID, session.ID)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(history))
	}
	want := []string{"one", "two", "three", "four"}
	for i, m := range history {
		if m.MessageText != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], m.MessageText)
		}
	}
	for i := 1; i < len(history); i++ {
		if history[i].ID < history[i-1].ID {
			t.Errorf("history not ascending at position %d", i)
		}
	}

	// Bob's fetch marks alice's messages read; his own reply stays
	// unread until alice fetches.
	rows, _ := chatDAO.GetMessagesBySession(ctx, session.ID)
	for _, m := range rows {
		wantRead := m.SenderID == alice.ID
		if m.IsRead != wantRead {
			t.Errorf("message %q: is_read = %v, want %v", m.MessageText, m.IsRead, wantRead)
		}
	}

	// Second fetch is a no-op on read state.
	if _, err := ctrl.GetMessages(ctx, bob.ID, session.ID); err != nil {
		t.Fatalf("second GetMessages failed: %v", err)
	}
	rows, _ = chatDAO.GetMessagesBySession(ctx, session.ID)
	for _, m := range rows {
		wantRead := m.SenderID == alice.ID
		if m.IsRead != wantRead {
			t.Errorf("after refetch, message %q: is_read = %v, want %v", m.MessageText, m.IsRead, wantRead)
		}
	}
}

func TestHistoryForbiddenForOutsider(t *testing.T) {
	ctrl, _, alice, bob := setupChatTest(t)
	ctx := context.Background()
	carol := createTestUser(t, dao.NewUserDAO(ctrl.chatDAO.DB), "carol")

	session, _ := ctrl.StartChat(ctx, alice.ID, bob.ID)
	_, err := ctrl.GetMessages(ctx, carol.ID, session.ID)
	if !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

// Concrete walkthrough: alice starts a chat with bob, sends "hi", and
// bob's history fetch flips the read flag.
func TestAliceBobScenario(t *testing.T) {
	ctrl, chatDAO, alice, bob := setupChatTest(t)
	ctx := context.Background()

	session, err := ctrl.StartChat(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("start_chat failed: %v", err)
	}

	if _, _, err := ctrl.SendMessage(ctx, alice.ID, session.ID, "hi"); err != nil {
		t.Fatalf("send_message failed: %v", err)
	}
	rows, _ := chatDAO.GetMessagesBySession(ctx, session.ID)
	if len(rows) != 1 || rows[0].SenderID != alice.ID || rows[0].IsRead {
		t.Fatalf("expected one unread message from alice, got %+v", rows)
	}

	history, err := ctrl.GetMessages(ctx, bob.ID, session.ID)
	if err != nil {
		t.Fatalf("get_messages failed: %v", err)
	}
	if len(history) != 1 || history[0].MessageText != "hi" {
		t.Fatalf("expected one message %q, got %+v", "hi", history)
	}

	rows, _ = chatDAO.GetMessagesBySession(ctx, session.ID)
	if !rows[0].IsRead {
		t.Errorf("expected is_read flipped to true after bob's fetch")
	}
}
