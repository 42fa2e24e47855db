package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/playtube/backend/internal/models"
)

func newUserHandler(db *memDB, storage *fakeStorage, cleaner *fakeCleaner) UserHandler {
	return UserHandler{
		Users:   memUsers{db},
		Storage: storage,
		Cleaner: cleaner,
		NowFunc: func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestUserHandlerCurrentUser(t *testing.T) {
	db := newMemDB()
	handler := newUserHandler(db, newFakeStorage(), &fakeCleaner{})
	user := seedUser(t, db, "alice")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	rec := httptest.NewRecorder()
	handler.CurrentUser(rec, asUser(req, user))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var current models.User
	decodeData(t, decodeEnvelope(t, rec), &current)
	if current.ID != user.ID || current.Username != "alice" {
		t.Fatalf("unexpected user: %+v", current)
	}
}

func TestUserHandlerUpdateAccount(t *testing.T) {
	db := newMemDB()
	handler := newUserHandler(db, newFakeStorage(), &fakeCleaner{})
	user := seedUser(t, db, "alice")
	seedUser(t, db, "bob")

	t.Run("empty patch is rejected", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPatch, "/api/v1/users/update-account", updateAccountRequest{})
		rec := httptest.NewRecorder()
		handler.UpdateAccount(rec, asUser(req, user))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("invalid email is rejected", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPatch, "/api/v1/users/update-account", updateAccountRequest{Email: "not-an-email"})
		rec := httptest.NewRecorder()
		handler.UpdateAccount(rec, asUser(req, user))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("updates name and lowercases email", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPatch, "/api/v1/users/update-account", updateAccountRequest{
			FullName: "Alice Renamed",
			Email:    "Alice.New@Example.com",
		})
		rec := httptest.NewRecorder()
		handler.UpdateAccount(rec, asUser(req, user))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
		}

		updated := db.users[user.ID]
		if updated.FullName != "Alice Renamed" || updated.Email != "alice.new@example.com" {
			t.Fatalf("unexpected account state: %+v", updated)
		}
	})
}

func TestUserHandlerUpdateAvatar(t *testing.T) {
	db := newMemDB()
	storage := newFakeStorage()
	cleaner := &fakeCleaner{}
	handler := newUserHandler(db, storage, cleaner)
	user := seedUser(t, db, "alice")
	user.AvatarKey = "avatars/" + user.ID + "/old.png"
	db.users[user.ID] = user

	req := multipartRequest(t, http.MethodPatch, "/api/v1/users/avatar", nil, map[string]string{
		"avatar": "new-avatar.png",
	})
	rec := httptest.NewRecorder()
	handler.UpdateAvatar(rec, asUser(req, user))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	updated := db.users[user.ID]
	if updated.AvatarURL == user.AvatarURL {
		t.Fatal("expected avatar URL to change")
	}
	if updated.AvatarKey == user.AvatarKey || updated.AvatarKey == "" {
		t.Fatalf("expected avatar key to change, got %q", updated.AvatarKey)
	}
	for key := range storage.saved {
		if !strings.HasPrefix(key, "avatars/"+user.ID) {
			t.Fatalf("unexpected object key %q", key)
		}
	}
	if len(cleaner.keys) != 1 || cleaner.keys[0] != user.AvatarKey {
		t.Fatalf("expected previous avatar object queued for cleanup, got %v", cleaner.keys)
	}

	t.Run("missing file", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPatch, "/api/v1/users/avatar", nil, nil)
		rec := httptest.NewRecorder()
		handler.UpdateAvatar(rec, asUser(req, user))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})
}

func TestUserHandlerUpdateCoverImage(t *testing.T) {
	db := newMemDB()
	storage := newFakeStorage()
	handler := newUserHandler(db, storage, &fakeCleaner{})
	user := seedUser(t, db, "alice")

	req := multipartRequest(t, http.MethodPatch, "/api/v1/users/cover-image", nil, map[string]string{
		"coverImage": "banner.png",
	})
	rec := httptest.NewRecorder()
	handler.UpdateCoverImage(rec, asUser(req, user))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if db.users[user.ID].CoverURL == "" {
		t.Fatal("expected cover URL to be set")
	}
	for key := range storage.saved {
		if !strings.HasPrefix(key, "covers/"+user.ID) {
			t.Fatalf("unexpected object key %q", key)
		}
	}
}

func TestUserHandlerUpdateImageCleansUpOnFailure(t *testing.T) {
	db := newMemDB()
	storage := newFakeStorage()
	cleaner := &fakeCleaner{}
	handler := newUserHandler(db, storage, cleaner)

	// Not seeded, so the store update fails after the upload.
	ghost := models.User{ID: "gone", Username: "ghost"}

	req := multipartRequest(t, http.MethodPatch, "/api/v1/users/avatar", nil, map[string]string{
		"avatar": "orphan.png",
	})
	rec := httptest.NewRecorder()
	handler.UpdateAvatar(rec, asUser(req, ghost))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if len(cleaner.keys) != 1 {
		t.Fatalf("expected uploaded object queued for cleanup, got %v", cleaner.keys)
	}
}

func TestUserHandlerWatchHistory(t *testing.T) {
	db := newMemDB()
	handler := newUserHandler(db, newFakeStorage(), &fakeCleaner{})
	owner := seedUser(t, db, "alice")
	viewer := seedUser(t, db, "bob")
	video := seedVideo(t, db, owner.ID, "seen", true, time.Now().UTC())

	if err := (memUsers{db}).RecordWatch(t.Context(), viewer.ID, video.ID); err != nil {
		t.Fatalf("record watch: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/history", nil)
	rec := httptest.NewRecorder()
	handler.WatchHistory(rec, asUser(req, viewer))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var history []models.Video
	decodeData(t, decodeEnvelope(t, rec), &history)
	if len(history) != 1 || history[0].ID != video.ID {
		t.Fatalf("unexpected history: %+v", history)
	}
}
