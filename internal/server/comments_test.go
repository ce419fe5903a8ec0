package server

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// ---------------------------------------------------------------------------
// CommentStore implementations
// ---------------------------------------------------------------------------

func TestCommentStores(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) CommentStore{
		"memory": func(*testing.T) CommentStore { return NewMemoryCommentStore() },
		"redis": func(t *testing.T) CommentStore {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return NewRedisCommentStore(client, "folio:")
		},
	}

	for name, build := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store := build(t)

			for i, text := range []string{"one", "two", "three"} {
				c := Comment{ID: text, PostType: "post", PostSlug: "a", AuthorName: "Ada", AuthorEmail: "ada@example.com", Content: text, Status: "approved", CreatedAt: fixedNow.AddDate(0, 0, i)}
				if err := store.Add(ctx, c); err != nil {
					t.Fatalf("Add() error: %v", err)
				}
			}
			if err := store.Add(ctx, Comment{ID: "other", PostType: "project", PostSlug: "a"}); err != nil {
				t.Fatal(err)
			}

			got, err := store.List(ctx, "post", "a")
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			var ids []string
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			if !equalStrings(ids, []string{"three", "two", "one"}) {
				t.Errorf("ids = %v, want newest first", ids)
			}
			if got[0].AuthorEmail != "ada@example.com" || !got[0].CreatedAt.Equal(fixedNow.AddDate(0, 0, 2)) {
				t.Errorf("stored comment = %+v", got[0])
			}

			empty, err := store.List(ctx, "creative", "a")
			if err != nil || empty == nil || len(empty) != 0 {
				t.Errorf("List(empty) = %v, %v; want empty non-nil slice", empty, err)
			}
		})
	}
}

func TestRedisCommentStore_Trims(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisCommentStore(client, "")

	for i := 0; i < MaxCommentsPerPost+3; i++ {
		if err := store.Add(context.Background(), Comment{PostType: "post", PostSlug: "busy"}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := store.List(context.Background(), "post", "busy")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != MaxCommentsPerPost {
		t.Errorf("len = %d, want %d", len(got), MaxCommentsPerPost)
	}
}
