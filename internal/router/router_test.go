package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"DrinkBuddy/internal/pkg"
	"DrinkBuddy/internal/repository/db"
	"DrinkBuddy/internal/service"

	"github.com/gin-gonic/gin"
)

type testServer struct {
	t *testing.T
	h http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.Open("sqlite", filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	signer := pkg.NewSigner("test-secret", time.Hour)
	r := InitRouter(Deps{
		DB:           gdb,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Auth:         service.NewAuthService(gdb, signer, nil),
		Users:        service.NewUserService(gdb, signer),
		Meetups:      service.NewMeetupService(gdb),
		Participants: service.NewParticipantService(gdb),
		Comments:     service.NewCommentService(gdb),
		Feed:         service.NewFeedService(gdb),
	})
	return &testServer{t: t, h: r}
}

func (s *testServer) do(method, path, token string, body any) (int, map[string]any) {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.h.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			s.t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w.Code, out
}

func (s *testServer) login(username string) (string, uint64) {
	s.t.Helper()
	code, _ := s.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": username, "password": "pw-" + username})
	if code != http.StatusCreated {
		s.t.Fatalf("register %s: %d", username, code)
	}
	code, body := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": "pw-" + username})
	if code != http.StatusOK {
		s.t.Fatalf("login %s: %d %v", username, code, body)
	}
	user := body["user"].(map[string]any)
	return body["token"].(string), uint64(user["id"].(float64))
}

func (s *testServer) createMeetup(token string, people any) uint64 {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/meetups", token, gin.H{
		"city": "Tokyo", "drink": "sake", "timeLabel": "Fri 19:00", "people": people, "text": "izakaya",
	})
	if code != http.StatusCreated {
		s.t.Fatalf("create meetup: %d %v", code, body)
	}
	return uint64(body["meetupId"].(float64))
}

func TestMeetupFlow(t *testing.T) {
	s := newTestServer(t)
	host, _ := s.login("host")
	alice, aliceID := s.login("alice")
	bob, _ := s.login("bob")
	carol, _ := s.login("carol")

	id := s.createMeetup(host, 2)
	base := fmt.Sprintf("/api/meetups/%d", id)

	code, _ := s.do(http.MethodPost, base+"/join", "", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("anonymous join = %d", code)
	}

	code, body := s.do(http.MethodPost, base+"/join", host, nil)
	if code != http.StatusForbidden || body["code"] != "host_cannot_join" {
		t.Fatalf("host join = %d %v", code, body)
	}

	code, body = s.do(http.MethodPost, base+"/join", alice, nil)
	if code != http.StatusCreated || body["joinedCount"] != float64(1) {
		t.Fatalf("alice join = %d %v", code, body)
	}
	code, body = s.do(http.MethodPost, base+"/join", alice, nil)
	if code != http.StatusOK || body["alreadyJoined"] != true || body["joinedCount"] != float64(1) {
		t.Fatalf("alice rejoin = %d %v", code, body)
	}
	if code, _ = s.do(http.MethodPost, base+"/join", bob, nil); code != http.StatusCreated {
		t.Fatalf("bob join = %d", code)
	}
	code, body = s.do(http.MethodPost, base+"/join", carol, nil)
	if code != http.StatusConflict || body["code"] != "meetup_full" {
		t.Fatalf("carol join = %d %v", code, body)
	}

	code, body = s.do(http.MethodGet, "/api/meetups", alice, nil)
	if code != http.StatusOK {
		t.Fatalf("list = %d", code)
	}

	code, body = s.do(http.MethodDelete, fmt.Sprintf("%s/participants/%d", base, aliceID), bob, nil)
	if code != http.StatusForbidden {
		t.Fatalf("kick by non host = %d %v", code, body)
	}
	code, body = s.do(http.MethodDelete, fmt.Sprintf("%s/participants/%d", base, aliceID), host, nil)
	if code != http.StatusOK || body["joinedCount"] != float64(1) || body["kickedUserId"] != float64(aliceID) {
		t.Fatalf("kick = %d %v", code, body)
	}
	code, _ = s.do(http.MethodDelete, fmt.Sprintf("%s/participants/%d", base, aliceID), host, nil)
	if code != http.StatusNotFound {
		t.Fatalf("kick again = %d", code)
	}

	code, body = s.do(http.MethodPost, base+"/close", alice, nil)
	if code != http.StatusForbidden {
		t.Fatalf("close by non host = %d", code)
	}
	code, body = s.do(http.MethodPost, base+"/close", host, nil)
	meetup, _ := body["meetup"].(map[string]any)
	if code != http.StatusOK || meetup["status"] != "closed" {
		t.Fatalf("close = %d %v", code, body)
	}
	code, body = s.do(http.MethodPost, base+"/cancel", host, nil)
	if code != http.StatusBadRequest || body["code"] != "meetup_not_open" {
		t.Fatalf("cancel closed = %d %v", code, body)
	}
	code, body = s.do(http.MethodPost, base+"/join", carol, nil)
	if code != http.StatusBadRequest || body["code"] != "meetup_closed" {
		t.Fatalf("join closed = %d %v", code, body)
	}
	code, body = s.do(http.MethodPost, base+"/leave", bob, nil)
	if code != http.StatusOK || body["joinedCount"] != float64(0) {
		t.Fatalf("leave closed = %d %v", code, body)
	}

	code, body = s.do(http.MethodGet, base, "", nil)
	view, _ := body["meetup"].(map[string]any)
	if code != http.StatusOK || view["status"] != "closed" || view["isJoined"] != false {
		t.Fatalf("get = %d %v", code, body)
	}
}

// 重复加入对客户端是成功：200 + alreadyJoined，不是 409；首次加入是 201
func TestRepeatJoinStatusContract(t *testing.T) {
	s := newTestServer(t)
	host, _ := s.login("host")
	alice, _ := s.login("alice")
	id := s.createMeetup(host, 1)
	path := fmt.Sprintf("/api/meetups/%d/join", id)

	code, body := s.do(http.MethodPost, path, alice, nil)
	if code != http.StatusCreated || body["ok"] != true || body["alreadyJoined"] != nil {
		t.Fatalf("first join = %d %v", code, body)
	}

	// 聚会已满，但成员检查在容量检查之前
	for i := 0; i < 2; i++ {
		code, body = s.do(http.MethodPost, path, alice, nil)
		if code != http.StatusOK {
			t.Fatalf("repeat join status = %d, want 200 (%v)", code, body)
		}
		if body["ok"] != true || body["alreadyJoined"] != true || body["joinedCount"] != float64(1) {
			t.Fatalf("repeat join body = %v", body)
		}
	}

	code, body = s.do(http.MethodGet, fmt.Sprintf("/api/meetups/%d/participants", id), "", nil)
	if list, _ := body["participants"].([]any); code != http.StatusOK || len(list) != 1 {
		t.Fatalf("participants = %d %v", code, body)
	}
}

func TestInvalidIDs(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.login("user")

	code, body := s.do(http.MethodPost, "/api/meetups/abc/join", token, nil)
	if code != http.StatusBadRequest || body["code"] != "invalid_id" {
		t.Fatalf("bad id = %d %v", code, body)
	}
	code, _ = s.do(http.MethodPost, "/api/meetups/999/join", token, nil)
	if code != http.StatusNotFound {
		t.Fatalf("missing meetup = %d", code)
	}
	code, _ = s.do(http.MethodPost, "/api/meetups/999/leave", token, nil)
	if code != http.StatusNotFound {
		t.Fatalf("leave missing = %d", code)
	}
}

func TestCommentRoutes(t *testing.T) {
	s := newTestServer(t)
	host, _ := s.login("host")
	alice, _ := s.login("alice")
	id := s.createMeetup(host, "3")

	code, body := s.do(http.MethodPost, "/api/comments", alice, gin.H{"meetupId": id, "content": "   "})
	if code != http.StatusBadRequest {
		t.Fatalf("empty comment = %d %v", code, body)
	}
	code, body = s.do(http.MethodPost, "/api/comments", alice, gin.H{"meetupId": id, "content": "hi"})
	if code != http.StatusCreated {
		t.Fatalf("create comment = %d %v", code, body)
	}
	comment := body["comment"].(map[string]any)
	commentPath := fmt.Sprintf("/api/comments/%d", uint64(comment["id"].(float64)))

	code, _ = s.do(http.MethodPatch, commentPath, host, gin.H{"content": "mine now"})
	if code != http.StatusForbidden {
		t.Fatalf("edit by host = %d", code)
	}
	code, body = s.do(http.MethodPatch, commentPath, alice, gin.H{"content": "hello"})
	edited := body["comment"].(map[string]any)
	if code != http.StatusOK || edited["content"] != "hello" {
		t.Fatalf("edit = %d %v", code, body)
	}

	code, body = s.do(http.MethodGet, fmt.Sprintf("/api/comments/meetup/%d", id), "", nil)
	list := body["comments"].([]any)
	if code != http.StatusOK || len(list) != 1 {
		t.Fatalf("list comments = %d %v", code, body)
	}

	code, _ = s.do(http.MethodDelete, commentPath, host, nil)
	if code != http.StatusForbidden {
		t.Fatalf("delete by host = %d", code)
	}
	code, body = s.do(http.MethodDelete, commentPath, alice, nil)
	if code != http.StatusOK || body["deletedId"] != comment["id"] {
		t.Fatalf("delete = %d %v", code, body)
	}
	code, _ = s.do(http.MethodDelete, commentPath, alice, nil)
	if code != http.StatusNotFound {
		t.Fatalf("delete again = %d", code)
	}
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)
	s.login("Dana")

	code, body := s.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "dana", "password": "x"})
	if code != http.StatusConflict || body["code"] != "username_taken" {
		t.Fatalf("duplicate register = %d %v", code, body)
	}
	code, _ = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "dana", "password": "nope"})
	if code != http.StatusUnauthorized {
		t.Fatalf("bad login = %d", code)
	}
	token, id := s.login("erin")
	code, body = s.do(http.MethodGet, "/api/auth/me", token, nil)
	me, _ := body["user"].(map[string]any)
	if code != http.StatusOK || me["username"] != "erin" || me["id"] != float64(id) {
		t.Fatalf("me = %d %v", code, body)
	}

	code, body = s.do(http.MethodGet, "/api/auth/me", "garbage", nil)
	if code != http.StatusUnauthorized || body["code"] != "invalid_token" {
		t.Fatalf("me with bad token = %d %v", code, body)
	}
	code, body = s.do(http.MethodGet, "/api/health", "", nil)
	if code != http.StatusOK || body["db"] != true {
		t.Fatalf("health = %d %v", code, body)
	}
}

func TestFeedIsJoinedForCaller(t *testing.T) {
	s := newTestServer(t)
	host, _ := s.login("host")
	alice, _ := s.login("alice")
	id := s.createMeetup(host, 4)
	if code, _ := s.do(http.MethodPost, fmt.Sprintf("/api/meetups/%d/join", id), alice, nil); code != http.StatusCreated {
		t.Fatalf("join = %d", code)
	}

	check := func(token string, want bool) {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/api/meetups", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		s.h.ServeHTTP(w, req)
		var list []service.MeetupView
		if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || list[0].IsJoined != want || list[0].JoinedCount != 1 {
			t.Fatalf("feed for %q = %+v", token, list)
		}
	}
	check(alice, true)
	check(host, false)
	check("", false)
	check("expired-or-garbage", false)
}
