package handlers

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/repositories"
)

// memDB is the shared backing state for the in-memory stores. One instance
// per test keeps cross-entity behavior (cascades, projections) observable.
type memDB struct {
	mu sync.Mutex

	users     map[string]models.User
	videos    map[string]models.Video
	comments  map[string]models.Comment
	tweets    map[string]models.Tweet
	likes     map[string]models.Like
	subs      map[string]models.Subscription
	playlists map[string]models.Playlist
	members   map[string][]string
	watched   map[string][]string
}

func newMemDB() *memDB {
	return &memDB{
		users:     make(map[string]models.User),
		videos:    make(map[string]models.Video),
		comments:  make(map[string]models.Comment),
		tweets:    make(map[string]models.Tweet),
		likes:     make(map[string]models.Like),
		subs:      make(map[string]models.Subscription),
		playlists: make(map[string]models.Playlist),
		members:   make(map[string][]string),
		watched:   make(map[string][]string),
	}
}

func (db *memDB) likesFor(target models.LikeTarget) (count int64, likedBy map[string]bool) {
	likedBy = make(map[string]bool)
	for _, like := range db.likes {
		if like.Target == target {
			count++
			likedBy[like.LikedByID] = true
		}
	}
	return count, likedBy
}

func (db *memDB) subscriberCount(channelID string) int64 {
	var count int64
	for _, sub := range db.subs {
		if sub.ChannelID == channelID {
			count++
		}
	}
	return count
}

type memUsers struct{ db *memDB }

func (s memUsers) Create(_ context.Context, user models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.db.users[user.ID] = user
	return nil
}

func (s memUsers) FindByID(_ context.Context, id string) (models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	user, ok := s.db.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s memUsers) FindByLogin(_ context.Context, login string) (models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, user := range s.db.users {
		if user.Username == login || user.Email == login {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s memUsers) Update(_ context.Context, user models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.db.users[user.ID] = user
	return nil
}

func (s memUsers) RecordWatch(_ context.Context, userID, videoID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, id := range s.db.watched[userID] {
		if id == videoID {
			return nil
		}
	}
	s.db.watched[userID] = append(s.db.watched[userID], videoID)
	return nil
}

func (s memUsers) WatchHistory(_ context.Context, userID string) ([]models.Video, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var videos []models.Video
	for _, id := range s.db.watched[userID] {
		if video, ok := s.db.videos[id]; ok {
			videos = append(videos, video)
		}
	}
	return videos, nil
}

type memVideos struct{ db *memDB }

func (s memVideos) Create(_ context.Context, video models.Video) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[video.OwnerID]; !ok {
		return repositories.ErrNotFound
	}
	s.db.videos[video.ID] = video
	return nil
}

func (s memVideos) FindByID(_ context.Context, id string) (models.Video, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	video, ok := s.db.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s memVideos) List(_ context.Context, filter models.VideoFilter) ([]models.Video, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var videos []models.Video
	for _, video := range s.db.videos {
		if filter.OwnerID != "" && video.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Title != "" && !strings.Contains(strings.ToLower(video.Title), strings.ToLower(filter.Title)) {
			continue
		}
		if !video.Published && video.OwnerID != filter.ViewerID {
			continue
		}
		videos = append(videos, video)
	}

	sort.Slice(videos, func(i, j int) bool {
		if filter.SortDesc {
			return videos[i].CreatedAt.After(videos[j].CreatedAt)
		}
		return videos[i].CreatedAt.Before(videos[j].CreatedAt)
	})

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= len(videos) {
		return nil, nil
	}
	end := start + limit
	if end > len(videos) {
		end = len(videos)
	}
	return videos[start:end], nil
}

func (s memVideos) Update(_ context.Context, video models.Video) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	existing, ok := s.db.videos[video.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	existing.Title = video.Title
	existing.Description = video.Description
	existing.ThumbnailURL = video.ThumbnailURL
	existing.ThumbnailKey = video.ThumbnailKey
	existing.UpdatedAt = video.UpdatedAt
	s.db.videos[video.ID] = existing
	return nil
}

func (s memVideos) SetPublished(_ context.Context, id string, published bool) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	video, ok := s.db.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Published = published
	s.db.videos[id] = video
	return nil
}

func (s memVideos) IncrementViews(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	video, ok := s.db.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.db.videos[id] = video
	return nil
}

func (s memVideos) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.videos[id]; !ok {
		return repositories.ErrNotFound
	}

	for likeID, like := range s.db.likes {
		if like.Target.Kind == models.LikeTargetVideo && like.Target.ID == id {
			delete(s.db.likes, likeID)
		}
	}
	for commentID, comment := range s.db.comments {
		if comment.VideoID != id {
			continue
		}
		for likeID, like := range s.db.likes {
			if like.Target.Kind == models.LikeTargetComment && like.Target.ID == commentID {
				delete(s.db.likes, likeID)
			}
		}
		delete(s.db.comments, commentID)
	}
	for playlistID, videoIDs := range s.db.members {
		var kept []string
		for _, videoID := range videoIDs {
			if videoID != id {
				kept = append(kept, videoID)
			}
		}
		s.db.members[playlistID] = kept
	}
	for userID, videoIDs := range s.db.watched {
		var kept []string
		for _, videoID := range videoIDs {
			if videoID != id {
				kept = append(kept, videoID)
			}
		}
		s.db.watched[userID] = kept
	}

	delete(s.db.videos, id)
	return nil
}

func (s memVideos) Detail(_ context.Context, videoID, viewerID string) (models.VideoDetail, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	video, ok := s.db.videos[videoID]
	if !ok {
		return models.VideoDetail{}, repositories.ErrNotFound
	}
	owner := s.db.users[video.OwnerID]

	count, likedBy := s.db.likesFor(models.LikeTarget{Kind: models.LikeTargetVideo, ID: videoID})

	isSubscribed := false
	for _, sub := range s.db.subs {
		if sub.ChannelID == video.OwnerID && sub.SubscriberID == viewerID {
			isSubscribed = true
		}
	}

	return models.VideoDetail{
		Video:      video,
		LikesCount: count,
		IsLiked:    likedBy[viewerID],
		Owner: models.ChannelSummary{
			ID:               owner.ID,
			Username:         owner.Username,
			FullName:         owner.FullName,
			AvatarURL:        owner.AvatarURL,
			SubscribersCount: s.db.subscriberCount(video.OwnerID),
			IsSubscribed:     isSubscribed,
		},
	}, nil
}

func (s memVideos) ChannelStats(_ context.Context, ownerID string) (models.ChannelStats, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var stats models.ChannelStats
	for _, video := range s.db.videos {
		if video.OwnerID != ownerID {
			continue
		}
		stats.TotalVideos++
		stats.TotalViews += video.Views
		count, _ := s.db.likesFor(models.LikeTarget{Kind: models.LikeTargetVideo, ID: video.ID})
		stats.TotalLikes += count
	}
	return stats, nil
}

func (s memVideos) ChannelVideos(_ context.Context, ownerID string) ([]models.ChannelVideo, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var videos []models.ChannelVideo
	for _, video := range s.db.videos {
		if video.OwnerID != ownerID {
			continue
		}
		count, _ := s.db.likesFor(models.LikeTarget{Kind: models.LikeTargetVideo, ID: video.ID})
		videos = append(videos, models.ChannelVideo{Video: video, LikesCount: count})
	}
	sort.Slice(videos, func(i, j int) bool { return videos[i].CreatedAt.After(videos[j].CreatedAt) })
	return videos, nil
}

type memComments struct{ db *memDB }

func (s memComments) Create(_ context.Context, comment models.Comment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.videos[comment.VideoID]; !ok {
		return repositories.ErrNotFound
	}
	s.db.comments[comment.ID] = comment
	return nil
}

func (s memComments) FindByID(_ context.Context, id string) (models.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	comment, ok := s.db.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s memComments) Update(_ context.Context, comment models.Comment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.comments[comment.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.db.comments[comment.ID] = comment
	return nil
}

func (s memComments) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	for likeID, like := range s.db.likes {
		if like.Target.Kind == models.LikeTargetComment && like.Target.ID == id {
			delete(s.db.likes, likeID)
		}
	}
	delete(s.db.comments, id)
	return nil
}

func (s memComments) ListForVideo(_ context.Context, videoID, viewerID string, page, limit int) (models.CommentPage, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var matched []models.Comment
	for _, comment := range s.db.comments {
		if comment.VideoID == videoID {
			matched = append(matched, comment)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	result := models.CommentPage{Total: int64(len(matched))}

	start := (page - 1) * limit
	if start >= len(matched) {
		return result, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	for _, comment := range matched[start:end] {
		owner := s.db.users[comment.OwnerID]
		count, likedBy := s.db.likesFor(models.LikeTarget{Kind: models.LikeTargetComment, ID: comment.ID})
		result.Comments = append(result.Comments, models.CommentView{
			ID:         comment.ID,
			Content:    comment.Content,
			CreatedAt:  comment.CreatedAt,
			LikesCount: count,
			IsLiked:    likedBy[viewerID],
			Owner: models.UserSummary{
				Username:  owner.Username,
				FullName:  owner.FullName,
				AvatarURL: owner.AvatarURL,
			},
		})
	}

	return result, nil
}

type memTweets struct{ db *memDB }

func (s memTweets) Create(_ context.Context, tweet models.Tweet) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[tweet.OwnerID]; !ok {
		return repositories.ErrNotFound
	}
	s.db.tweets[tweet.ID] = tweet
	return nil
}

func (s memTweets) FindByID(_ context.Context, id string) (models.Tweet, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	tweet, ok := s.db.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (s memTweets) Update(_ context.Context, tweet models.Tweet) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.tweets[tweet.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.db.tweets[tweet.ID] = tweet
	return nil
}

func (s memTweets) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	for likeID, like := range s.db.likes {
		if like.Target.Kind == models.LikeTargetTweet && like.Target.ID == id {
			delete(s.db.likes, likeID)
		}
	}
	delete(s.db.tweets, id)
	return nil
}

func (s memTweets) ListForUser(_ context.Context, userID, viewerID string) ([]models.TweetView, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	owner, ok := s.db.users[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}

	var matched []models.Tweet
	for _, tweet := range s.db.tweets {
		if tweet.OwnerID == userID {
			matched = append(matched, tweet)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	var views []models.TweetView
	for _, tweet := range matched {
		count, likedBy := s.db.likesFor(models.LikeTarget{Kind: models.LikeTargetTweet, ID: tweet.ID})
		views = append(views, models.TweetView{
			ID:         tweet.ID,
			Content:    tweet.Content,
			CreatedAt:  tweet.CreatedAt,
			LikesCount: count,
			IsLiked:    likedBy[viewerID],
			OwnerDetails: models.UserSummary{
				Username:  owner.Username,
				AvatarURL: owner.AvatarURL,
			},
		})
	}

	return views, nil
}

type memLikes struct{ db *memDB }

func (s memLikes) Toggle(_ context.Context, target models.LikeTarget, likedByID, likedByUsername string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for likeID, like := range s.db.likes {
		if like.Target == target && like.LikedByID == likedByID {
			delete(s.db.likes, likeID)
			return false, nil
		}
	}

	id := uuid.NewString()
	s.db.likes[id] = models.Like{
		ID:              id,
		Target:          target,
		LikedByID:       likedByID,
		LikedByUsername: likedByUsername,
	}
	return true, nil
}

type memSubs struct{ db *memDB }

func (s memSubs) Toggle(_ context.Context, subscriberID, channelID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for subID, sub := range s.db.subs {
		if sub.SubscriberID == subscriberID && sub.ChannelID == channelID {
			delete(s.db.subs, subID)
			return false, nil
		}
	}

	id := uuid.NewString()
	s.db.subs[id] = models.Subscription{ID: id, SubscriberID: subscriberID, ChannelID: channelID}
	return true, nil
}

func (s memSubs) Subscribers(_ context.Context, channelID string) (models.SubscriberList, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var list models.SubscriberList
	for _, sub := range s.db.subs {
		if sub.ChannelID != channelID {
			continue
		}
		user := s.db.users[sub.SubscriberID]
		list.Subscribers = append(list.Subscribers, models.UserSummary{
			Username:  user.Username,
			FullName:  user.FullName,
			AvatarURL: user.AvatarURL,
		})
		list.Total++
	}
	return list, nil
}

func (s memSubs) Channels(_ context.Context, subscriberID string) (models.ChannelList, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var list models.ChannelList
	for _, sub := range s.db.subs {
		if sub.SubscriberID != subscriberID {
			continue
		}
		user := s.db.users[sub.ChannelID]
		list.Channels = append(list.Channels, models.UserSummary{
			Username:  user.Username,
			FullName:  user.FullName,
			AvatarURL: user.AvatarURL,
		})
		list.Total++
	}
	return list, nil
}

func (s memSubs) CountForChannel(_ context.Context, channelID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.subscriberCount(channelID), nil
}

type memPlaylists struct{ db *memDB }

func (s memPlaylists) Create(_ context.Context, playlist models.Playlist) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.playlists[playlist.ID] = playlist
	return nil
}

func (s memPlaylists) FindByID(_ context.Context, id string) (models.Playlist, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	playlist, ok := s.db.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	playlist.VideoIDs = append([]string(nil), s.db.members[id]...)
	return playlist, nil
}

func (s memPlaylists) Detail(_ context.Context, id string) (models.PlaylistDetail, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	playlist, ok := s.db.playlists[id]
	if !ok {
		return models.PlaylistDetail{}, repositories.ErrNotFound
	}
	playlist.VideoIDs = append([]string(nil), s.db.members[id]...)

	detail := models.PlaylistDetail{Playlist: playlist}
	for _, videoID := range playlist.VideoIDs {
		if video, ok := s.db.videos[videoID]; ok {
			detail.Videos = append(detail.Videos, video)
		}
	}
	return detail, nil
}

func (s memPlaylists) ListForUser(_ context.Context, ownerID string) ([]models.Playlist, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var playlists []models.Playlist
	for id, playlist := range s.db.playlists {
		if playlist.OwnerID == ownerID {
			playlist.VideoIDs = append([]string(nil), s.db.members[id]...)
			playlists = append(playlists, playlist)
		}
	}
	return playlists, nil
}

func (s memPlaylists) Update(_ context.Context, playlist models.Playlist) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.playlists[playlist.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.db.playlists[playlist.ID] = playlist
	return nil
}

func (s memPlaylists) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.db.playlists, id)
	delete(s.db.members, id)
	return nil
}

func (s memPlaylists) AddVideo(_ context.Context, playlistID, videoID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.playlists[playlistID]; !ok {
		return repositories.ErrNotFound
	}
	for _, id := range s.db.members[playlistID] {
		if id == videoID {
			return repositories.ErrConflict
		}
	}
	s.db.members[playlistID] = append(s.db.members[playlistID], videoID)
	return nil
}

func (s memPlaylists) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.playlists[playlistID]; !ok {
		return repositories.ErrNotFound
	}
	for i, id := range s.db.members[playlistID] {
		if id == videoID {
			s.db.members[playlistID] = append(s.db.members[playlistID][:i], s.db.members[playlistID][i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}
