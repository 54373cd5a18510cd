package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quillboard/quillboard/internal/apperror"
	"github.com/quillboard/quillboard/internal/models"
)

func TestPostCreateAndListByAuthor(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@x.com", "pw123456")

	p, err := f.posts.Create(ctx, alice, "Hello", "First post body.")
	require.NoError(t, err)
	require.Equal(t, alice.ID, p.AuthorID)

	user, page, err := f.posts.ListByAuthor(ctx, "alice", 1)
	require.NoError(t, err)
	require.Equal(t, alice.ID, user.ID)
	require.Equal(t, 1, page.Count)
	require.Len(t, page.Posts, 1)
	require.Equal(t, "Hello", page.Posts[0].Title)
	require.Equal(t, "alice", page.Posts[0].Author)
}

func TestPostCreate_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@x.com", "pw123456")

	_, err := f.posts.Create(ctx, alice, "", "body")
	require.Equal(t, apperror.Validation, apperror.KindOf(err))
	require.Contains(t, apperror.FieldsOf(err), "title")

	_, err = f.posts.Create(ctx, alice, strings.Repeat("t", 101), "body")
	require.Equal(t, apperror.Validation, apperror.KindOf(err))
	require.Contains(t, apperror.FieldsOf(err), "title")

	_, err = f.posts.Create(ctx, alice, "Title", "")
	require.Equal(t, apperror.Validation, apperror.KindOf(err))
	require.Contains(t, apperror.FieldsOf(err), "body")

	_, err = f.posts.Create(ctx, models.User{}, "Title", "body")
	require.Equal(t, apperror.Unauthorized, apperror.KindOf(err))
}

func TestPostUpdateAndDelete_OwnerOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@x.com", "pw123456")
	bob := f.register(t, "bob", "bob@x.com", "pw123456")

	p, err := f.posts.Create(ctx, alice, "Hers", "original")
	require.NoError(t, err)

	_, err = f.posts.Update(ctx, bob, p.ID, "Mine now", "rewritten")
	require.Equal(t, apperror.Forbidden, apperror.KindOf(err))

	err = f.posts.Delete(ctx, bob, p.ID)
	require.Equal(t, apperror.Forbidden, apperror.KindOf(err))

	// untouched after the rejected writes
	got, err := f.posts.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Hers", got.Title)
	require.Equal(t, "original", got.Body)

	upd, err := f.posts.Update(ctx, alice, p.ID, "Still hers", "edited")
	require.NoError(t, err)
	require.Equal(t, "Still hers", upd.Title)

	require.NoError(t, f.posts.Delete(ctx, alice, p.ID))
	_, err = f.posts.Get(ctx, p.ID)
	require.Equal(t, apperror.NotFound, apperror.KindOf(err))
}

func TestPostUpdate_Missing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	alice := f.register(t, "alice", "alice@x.com", "pw123456")

	_, err := f.posts.Update(context.Background(), alice, 42, "T", "B")
	require.Equal(t, apperror.NotFound, apperror.KindOf(err))
	err = f.posts.Delete(context.Background(), alice, 42)
	require.Equal(t, apperror.NotFound, apperror.KindOf(err))
}

func TestPostPagination(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@x.com", "pw123456")

	for i := 1; i <= 12; i++ {
		_, err := f.posts.Create(ctx, alice, fmt.Sprintf("Post %02d", i), "body")
		require.NoError(t, err)
	}

	page, err := f.posts.ListAll(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 12, page.Count)
	require.Equal(t, 3, page.Pages())
	require.Len(t, page.Posts, PageSize)
	// newest first
	require.Equal(t, "Post 12", page.Posts[0].Title)
	require.Equal(t, "Post 08", page.Posts[4].Title)
	require.False(t, page.HasPrev())
	require.True(t, page.HasNext())

	page, err = f.posts.ListAll(ctx, 3)
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	require.Equal(t, "Post 02", page.Posts[0].Title)
	require.True(t, page.HasPrev())
	require.False(t, page.HasNext())

	// out of range page comes back empty, not an error
	page, err = f.posts.ListAll(ctx, 9)
	require.NoError(t, err)
	require.Empty(t, page.Posts)

	// page below 1 is clamped
	page, err = f.posts.ListAll(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 1, page.Number)
}

func TestListByAuthor_Scoping(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@x.com", "pw123456")
	bob := f.register(t, "bob", "bob@x.com", "pw123456")

	_, err := f.posts.Create(ctx, alice, "A1", "body")
	require.NoError(t, err)
	_, err = f.posts.Create(ctx, bob, "B1", "body")
	require.NoError(t, err)

	_, page, err := f.posts.ListByAuthor(ctx, "bob", 1)
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	require.Equal(t, "B1", page.Posts[0].Title)

	_, _, err = f.posts.ListByAuthor(ctx, "ghost", 1)
	require.Equal(t, apperror.NotFound, apperror.KindOf(err))

	all, err := f.posts.ListAll(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, all.Count)
}
