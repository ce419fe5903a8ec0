package server

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MaxCommentsPerPost caps how many comments are kept for one document.
const MaxCommentsPerPost = 1000

// Comment is a stored reader comment. The author email is kept but never
// served.
type Comment struct {
	ID          string    `json:"id"`
	PostSlug    string    `json:"postSlug"`
	PostType    string    `json:"postType"`
	AuthorName  string    `json:"authorName"`
	AuthorEmail string    `json:"-"`
	Content     string    `json:"content"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CommentStore persists comments per document.
type CommentStore interface {
	Add(ctx context.Context, c Comment) error
	// List returns the comments of one document, newest first.
	List(ctx context.Context, postType, postSlug string) ([]Comment, error)
}

var (
	_ CommentStore = (*MemoryCommentStore)(nil)
	_ CommentStore = (*RedisCommentStore)(nil)
)

func commentKey(postType, postSlug string) string {
	return postType + ":" + postSlug
}

// MemoryCommentStore keeps comments for the life of the process.
type MemoryCommentStore struct {
	mu    sync.RWMutex
	posts map[string][]Comment
}

// NewMemoryCommentStore returns an empty store.
func NewMemoryCommentStore() *MemoryCommentStore {
	return &MemoryCommentStore{posts: make(map[string][]Comment)}
}

func (s *MemoryCommentStore) Add(_ context.Context, c Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := commentKey(c.PostType, c.PostSlug)
	list := append(s.posts[key], c)
	if len(list) > MaxCommentsPerPost {
		list = list[len(list)-MaxCommentsPerPost:]
	}
	s.posts[key] = list
	return nil
}

func (s *MemoryCommentStore) List(_ context.Context, postType, postSlug string) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]Comment{}, s.posts[commentKey(postType, postSlug)]...)
	slices.Reverse(out)
	return out, nil
}

// RedisCommentStore keeps one list per document, newest at the head.
type RedisCommentStore struct {
	client *redis.Client
	prefix string
}

// NewRedisCommentStore stores lists under prefix + "comments:".
func NewRedisCommentStore(client *redis.Client, prefix string) *RedisCommentStore {
	return &RedisCommentStore{client: client, prefix: prefix}
}

// commentRecord is the stored form; it keeps the email Comment hides.
type commentRecord struct {
	Comment
	AuthorEmail string `json:"authorEmail"`
}

func (s *RedisCommentStore) key(postType, postSlug string) string {
	return s.prefix + "comments:" + commentKey(postType, postSlug)
}

func (s *RedisCommentStore) Add(ctx context.Context, c Comment) error {
	data, err := json.Marshal(commentRecord{Comment: c, AuthorEmail: c.AuthorEmail})
	if err != nil {
		return fmt.Errorf("encoding comment: %w", err)
	}
	key := s.key(c.PostType, c.PostSlug)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, MaxCommentsPerPost-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("storing comment: %w", err)
	}
	return nil
}

func (s *RedisCommentStore) List(ctx context.Context, postType, postSlug string) ([]Comment, error) {
	raw, err := s.client.LRange(ctx, s.key(postType, postSlug), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	out := make([]Comment, 0, len(raw))
	for _, item := range raw {
		var rec commentRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decoding comment: %w", err)
		}
		rec.Comment.AuthorEmail = rec.AuthorEmail
		out = append(out, rec.Comment)
	}
	return out, nil
}
