package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/playtube/backend/internal/middleware"
	"github.com/playtube/backend/internal/models"
)

// testEnvelope mirrors the response envelope with raw data for per-test decoding.
type testEnvelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func decodeData(t *testing.T, env testEnvelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func asUser(req *http.Request, user models.User) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), user))
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return httptest.NewRequest(method, target, bytes.NewReader(body))
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file %s: %v", field, err)
		}
		if _, err := part.Write([]byte("file-content-" + filename)); err != nil {
			t.Fatalf("write form file %s: %v", field, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func seedUser(t *testing.T, db *memDB, username string) models.User {
	t.Helper()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     username + "@example.com",
		FullName:  "Test " + username,
		AvatarURL: "https://cdn.example.com/avatars/" + username + ".png",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	db.users[user.ID] = user
	return user
}

func seedVideo(t *testing.T, db *memDB, ownerID, title string, published bool, createdAt time.Time) models.Video {
	t.Helper()
	video := models.Video{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Title:        title,
		VideoURL:     "https://cdn.example.com/videos/" + title + ".mp4",
		VideoKey:     "videos/" + title + ".mp4",
		ThumbnailURL: "https://cdn.example.com/thumbnails/" + title + ".png",
		ThumbnailKey: "thumbnails/" + title + ".png",
		Published:    published,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	db.videos[video.ID] = video
	return video
}

func seedComment(t *testing.T, db *memDB, videoID, ownerID, content string, createdAt time.Time) models.Comment {
	t.Helper()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   ownerID,
		Content:   content,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	db.comments[comment.ID] = comment
	return comment
}

type fakeStorage struct {
	mu      sync.Mutex
	saved   map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: make(map[string][]byte)}
}

func (s *fakeStorage) Save(_ context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.saved[name] = data
	s.mu.Unlock()
	return fmt.Sprintf("https://cdn.example.com/%s", name), nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	s.deleted = append(s.deleted, key)
	s.mu.Unlock()
	return nil
}

type fakeCleaner struct {
	mu   sync.Mutex
	keys []string
}

func (c *fakeCleaner) Enqueue(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		if key != "" {
			c.keys = append(c.keys, key)
		}
	}
	return nil
}
