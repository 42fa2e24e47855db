package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/playtube/backend/internal/models"
)

func newTweetHandler(db *memDB) TweetHandler {
	return TweetHandler{
		Tweets:  memTweets{db},
		NowFunc: func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func seedTweet(t *testing.T, db *memDB, ownerID, content string, createdAt time.Time) models.Tweet {
	t.Helper()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Content:   content,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	db.tweets[tweet.ID] = tweet
	return tweet
}

func TestTweetHandlerCreate(t *testing.T) {
	db := newMemDB()
	handler := newTweetHandler(db)
	user := seedUser(t, db, "alice")

	req := jsonRequest(t, http.MethodPost, "/api/v1/tweets", tweetRequest{Content: "hello world"})
	rec := httptest.NewRecorder()

	handler.Create(rec, asUser(req, user))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}

	var created models.Tweet
	decodeData(t, decodeEnvelope(t, rec), &created)
	if created.Content != "hello world" || created.OwnerID != user.ID {
		t.Fatalf("unexpected tweet: %+v", created)
	}

	req = jsonRequest(t, http.MethodPost, "/api/v1/tweets", tweetRequest{Content: "  "})
	rec = httptest.NewRecorder()
	handler.Create(rec, asUser(req, user))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank content got %d", rec.Code)
	}
}

func TestTweetHandlerListForUser(t *testing.T) {
	db := newMemDB()
	handler := newTweetHandler(db)
	author := seedUser(t, db, "alice")
	viewer := seedUser(t, db, "bob")

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	seedTweet(t, db, author.ID, "older", base)
	newest := seedTweet(t, db, author.ID, "newer", base.Add(time.Hour))
	memLikes{db}.Toggle(t.Context(), models.LikeTarget{Kind: models.LikeTargetTweet, ID: newest.ID}, viewer.ID, viewer.Username)

	t.Run("lists newest first with likes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tweets/user/"+author.ID, nil)
		req.SetPathValue("userId", author.ID)
		rec := httptest.NewRecorder()

		handler.ListForUser(rec, asUser(req, viewer))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
		}

		var tweets []models.TweetView
		decodeData(t, decodeEnvelope(t, rec), &tweets)

		if len(tweets) != 2 || tweets[0].Content != "newer" {
			t.Fatalf("unexpected tweet list: %+v", tweets)
		}
		if tweets[0].LikesCount != 1 || !tweets[0].IsLiked {
			t.Fatalf("unexpected like annotation: %+v", tweets[0])
		}
		if tweets[0].OwnerDetails.Username != "alice" {
			t.Fatalf("unexpected owner details: %+v", tweets[0].OwnerDetails)
		}
	})

	t.Run("no tweets is 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tweets/user/"+viewer.ID, nil)
		req.SetPathValue("userId", viewer.ID)
		rec := httptest.NewRecorder()
		handler.ListForUser(rec, asUser(req, viewer))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 got %d", rec.Code)
		}
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tweets/user/nope", nil)
		req.SetPathValue("userId", "nope")
		rec := httptest.NewRecorder()
		handler.ListForUser(rec, asUser(req, viewer))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 got %d", rec.Code)
		}
	})
}

func TestTweetHandlerUpdate(t *testing.T) {
	db := newMemDB()
	handler := newTweetHandler(db)
	author := seedUser(t, db, "alice")
	stranger := seedUser(t, db, "bob")
	tweet := seedTweet(t, db, author.ID, "draft", time.Now().UTC())

	req := jsonRequest(t, http.MethodPatch, "/api/v1/tweets/"+tweet.ID, tweetRequest{Content: "hijack"})
	req.SetPathValue("tweetId", tweet.ID)
	rec := httptest.NewRecorder()
	handler.Update(rec, asUser(req, stranger))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}

	req = jsonRequest(t, http.MethodPatch, "/api/v1/tweets/"+tweet.ID, tweetRequest{Content: "final"})
	req.SetPathValue("tweetId", tweet.ID)
	rec = httptest.NewRecorder()
	handler.Update(rec, asUser(req, author))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if db.tweets[tweet.ID].Content != "final" {
		t.Fatalf("expected content update, got %q", db.tweets[tweet.ID].Content)
	}
}

func TestTweetHandlerDelete(t *testing.T) {
	db := newMemDB()
	handler := newTweetHandler(db)
	author := seedUser(t, db, "alice")
	stranger := seedUser(t, db, "bob")
	tweet := seedTweet(t, db, author.ID, "temporary", time.Now().UTC())
	memLikes{db}.Toggle(t.Context(), models.LikeTarget{Kind: models.LikeTargetTweet, ID: tweet.ID}, stranger.ID, stranger.Username)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tweets/"+tweet.ID, nil)
	req.SetPathValue("tweetId", tweet.ID)
	rec := httptest.NewRecorder()
	handler.Delete(rec, asUser(req, stranger))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/tweets/"+tweet.ID, nil)
	req.SetPathValue("tweetId", tweet.ID)
	rec = httptest.NewRecorder()
	handler.Delete(rec, asUser(req, author))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	if len(db.tweets) != 0 {
		t.Fatal("expected tweet to be removed")
	}
	if len(db.likes) != 0 {
		t.Fatal("expected tweet likes to be removed with it")
	}
}
