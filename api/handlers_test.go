package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"chatapp/auth"
	"chatapp/moderation"
	"chatapp/realtime"
	"chatapp/repositories"
	"chatapp/services"
)

const testPassword = "Sup3r-Secret-Pass!"

type apiFixture struct {
	server *httptest.Server
	client *http.Client
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	authenticator := auth.NewAuthenticator("api_test_secret", time.Hour)

	chatRepo := repositories.NewChatRepository(db)
	messageRepo := repositories.NewMessageRepository(db, log)
	userRepo := repositories.NewUserRepository(db)

	chatService := services.NewChatService(chatRepo, log)
	messageService := services.NewMessageService(messageRepo)
	authService := services.NewAuthService(userRepo, authenticator)

	moderator, err := moderation.NewModerator(nil, '*')
	require.NoError(t, err)

	hub := realtime.NewHub(log)
	gateway := realtime.NewGateway(log, hub, messageService, authenticator, &moderator, false, 16)

	handlers := NewHandlers(log, chatService, messageService, authService)
	router := NewRouter(handlers, gateway, authenticator, nil)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &apiFixture{server: server, client: server.Client()}
}

// do issues a JSON request and decodes the response body into out when the
// caller provides one.
func (f *apiFixture) do(t *testing.T, method, path, token string, body any, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (f *apiFixture) register(t *testing.T, email string) string {
	t.Helper()
	var tokenResp TokenResponse
	resp := f.do(t, http.MethodPost, "/api/auth/register", "",
		RegisterRequest{Email: email, Password: testPassword}, &tokenResp)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, tokenResp.Token)
	return tokenResp.Token
}

func Test_Register_Then_Login(t *testing.T) {
	req := require.New(t)
	fixture := newAPIFixture(t)

	fixture.register(t, "alice@example.com")

	var tokenResp TokenResponse
	resp := fixture.do(t, http.MethodPost, "/api/auth/login", "",
		LoginRequest{Email: "alice@example.com", Password: testPassword}, &tokenResp)
	req.Equal(http.StatusOK, resp.StatusCode)
	req.NotEmpty(tokenResp.Token)
}

func Test_Login_Wrong_Password_Is_401(t *testing.T) {
	req := require.New(t)
	fixture := newAPIFixture(t)
	fixture.register(t, "alice@example.com")

	resp := fixture.do(t, http.MethodPost, "/api/auth/login", "",
		LoginRequest{Email: "alice@example.com", Password: "Wrong-Passw0rd-Here!"}, nil)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func Test_Chat_Routes_Require_Token(t *testing.T) {
	req := require.New(t)
	fixture := newAPIFixture(t)

	resp := fixture.do(t, http.MethodPost, "/api/chats/direct", "",
		CreateDirectChatRequest{User1: "alice", User2: "bob"}, nil)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func Test_Create_Direct_Chat_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	fixture := newAPIFixture(t)
	token := fixture.register(t, "alice@example.com")

	var first ChatResponse
	resp := fixture.do(t, http.MethodPost, "/api/chats/direct", token,
		CreateDirectChatRequest{User1: "alice", User2: "bob"}, &first)
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal("DIRECT", first.Type)
	req.Len(first.Participants, 2)

	// Same pair, reversed order, must resolve to the same chat.
	var second ChatResponse
	resp = fixture.do(t, http.MethodPost, "/api/chats/direct", token,
		CreateDirectChatRequest{User1: "bob", User2: "alice"}, &second)
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal(first.ID, second.ID)
}

func Test_Group_Chat_Membership_Flow(t *testing.T) {
	req := require.New(t)
	fixture := newAPIFixture(t)
	token := fixture.register(t, "alice@example.com")

	var chat ChatResponse
	resp := fixture.do(t, http.MethodPost, "/api/chats/group?creatorId=alice", token,
		CreateGroupChatRequest{Name: "planning"}, &chat)
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal("GROUP", chat.Type)
	req.Len(chat.Participants, 1)
	req.Equal("ADMIN", chat.Participants[0].Role)

	base := fmt.Sprintf("/api/chats/%s/participants", chat.ID)

	resp = fixture.do(t, http.MethodPost, base+"/bob", token, nil, nil)
	req.Equal(http.StatusNoContent, resp.StatusCode)

	// Adding the same member twice is a conflict.
	resp = fixture.do(t, http.MethodPost, base+"/bob", token, nil, nil)
	req.Equal(http.StatusConflict, resp.StatusCode)

	var fetched ChatResponse
	resp = fixture.do(t, http.MethodGet, "/api/chats/"+chat.ID, token, nil, &fetched)
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Len(fetched.Participants, 2)

	resp = fixture.do(t, http.MethodDelete, base+"/bob", token, nil, nil)
	req.Equal(http.StatusNoContent, resp.StatusCode)

	// Removing someone who already left is 404.
	resp = fixture.do(t, http.MethodDelete, base+"/bob", token, nil, nil)
	req.Equal(http.StatusNotFound, resp.StatusCode)
}

func Test_Add_Member_To_Direct_Chat_Is_403(t *testing.T) {
	req := require.New(t)
	fixture := newAPIFixture(t)
	token := fixture.register(t, "alice@example.com")

	var chat ChatResponse
	resp := fixture.do(t, http.MethodPost, "/api/chats/direct", token,
		CreateDirectChatRequest{User1: "alice", User2: "bob"}, &chat)
	req.Equal(http.StatusOK, resp.StatusCode)

	resp = fixture.do(t, http.MethodPost,
		fmt.Sprintf("/api/chats/%s/participants/carol", chat.ID), token, nil, nil)
	req.Equal(http.StatusForbidden, resp.StatusCode)
}

func Test_Unknown_Chat_Is_404(t *testing.T) {
	req := require.New(t)
	fixture := newAPIFixture(t)
	token := fixture.register(t, "alice@example.com")

	resp := fixture.do(t, http.MethodGet, "/api/chats/no-such-chat", token, nil, nil)
	req.Equal(http.StatusNotFound, resp.StatusCode)

	resp = fixture.do(t, http.MethodPost, "/api/chats/no-such-chat/participants/bob", token, nil, nil)
	req.Equal(http.StatusNotFound, resp.StatusCode)
}

func Test_List_User_Chats(t *testing.T) {
	req := require.New(t)
	fixture := newAPIFixture(t)
	token := fixture.register(t, "alice@example.com")

	resp := fixture.do(t, http.MethodPost, "/api/chats/direct", token,
		CreateDirectChatRequest{User1: "alice", User2: "bob"}, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	resp = fixture.do(t, http.MethodPost, "/api/chats/group?creatorId=alice", token,
		CreateGroupChatRequest{Name: "planning"}, nil)
	req.Equal(http.StatusOK, resp.StatusCode)

	var chats []ChatResponse
	resp = fixture.do(t, http.MethodGet, "/api/chats/user/alice", token, nil, &chats)
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Len(chats, 2)

	var none []ChatResponse
	resp = fixture.do(t, http.MethodGet, "/api/chats/user/nobody", token, nil, &none)
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Empty(none)
}

func Test_History_Of_Empty_Chat(t *testing.T) {
	req := require.New(t)
	fixture := newAPIFixture(t)
	token := fixture.register(t, "alice@example.com")

	var chat ChatResponse
	resp := fixture.do(t, http.MethodPost, "/api/chats/direct", token,
		CreateDirectChatRequest{User1: "alice", User2: "bob"}, &chat)
	req.Equal(http.StatusOK, resp.StatusCode)

	var messages []MessageResponse
	resp = fixture.do(t, http.MethodGet, "/api/chats/"+chat.ID+"/messages", token, nil, &messages)
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Empty(messages)
}

func Test_Duplicate_Registration_Is_400(t *testing.T) {
	req := require.New(t)
	fixture := newAPIFixture(t)
	fixture.register(t, "alice@example.com")

	resp := fixture.do(t, http.MethodPost, "/api/auth/register", "",
		RegisterRequest{Email: "alice@example.com", Password: testPassword}, nil)
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}
