package repository

import (
	"context"
	"errors"
	"testing"

	"pulse/internal/models"
	"pulse/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Upsert(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{ExternalID: "idp|1", Username: "ada", Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, repo.Upsert(ctx, user))
	require.NotZero(t, user.ID)

	_, err := repo.UpdateProfile(ctx, user.ID, ProfileUpdate{Name: "Ada L.", Bio: "math"})
	require.NoError(t, err)

	again := &models.User{ExternalID: "idp|1", Username: "ada", Name: "Ada Lovelace", Email: "new@example.com"}
	require.NoError(t, repo.Upsert(ctx, again))
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "new@example.com", again.Email)
	assert.Equal(t, "math", again.Bio)
	assert.Equal(t, int64(1), testutil.Count(t, db, &models.User{}, ""))

	t.Run("username taken by another identity", func(t *testing.T) {
		err := repo.Upsert(ctx, &models.User{ExternalID: "idp|2", Username: "ada"})
		assert.Equal(t, models.CodeConflict, models.CodeOf(err))
	})
}

func TestUserRepository_Lookups(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db)

	got, err := repo.GetByExternalID(ctx, u.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.GetByUsername(ctx, u.Username)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))

	_, err = repo.UpdateProfile(ctx, 9999, ProfileUpdate{Name: "x"})
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
}

func TestUserRepository_CountsAndSuggestions(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	follows := NewFollowRepository(db)
	ctx := context.Background()

	me := testutil.CreateUser(t, db)
	followed := testutil.CreateUser(t, db)
	stranger := testutil.CreateUser(t, db)
	testutil.CreatePost(t, db, me)
	require.NoError(t, follows.Create(ctx, me.ID, followed.ID))
	require.NoError(t, follows.Create(ctx, stranger.ID, me.ID))

	counts, err := repo.Counts(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserCounts{Followers: 1, Following: 1, Posts: 1}, counts)

	suggestions, err := repo.Suggestions(ctx, me.ID, 10)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, stranger.ID, suggestions[0].ID)
	assert.Equal(t, stranger.Username, suggestions[0].Username)
}

func TestFollowRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()
	a := testutil.CreateUser(t, db)
	b := testutil.CreateUser(t, db)

	require.NoError(t, repo.Create(ctx, a.ID, b.ID))
	exists, err := repo.Exists(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Equal(t, models.CodeConflict, models.CodeOf(repo.Create(ctx, a.ID, b.ID)))
	assert.Equal(t, models.CodeInvalidArgument, models.CodeOf(repo.Create(ctx, a.ID, a.ID)))

	n, err := repo.Delete(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Delete(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLikeRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db)
	fan := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, author)

	require.NoError(t, repo.Create(ctx, fan.ID, post.ID))
	assert.Equal(t, models.CodeConflict, models.CodeOf(repo.Create(ctx, fan.ID, post.ID)))

	liked, err := repo.Exists(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	require.NoError(t, repo.Create(ctx, author.ID, post.ID))
	n, err := repo.DeleteByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestPostRepository_FeedOrderAndDetails(t *testing.T) {
	db := testutil.NewDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db)
	reader := testutil.CreateUser(t, db)

	first := &models.Post{AuthorID: author.ID, Content: "first"}
	second := &models.Post{AuthorID: author.ID, Content: "second"}
	require.NoError(t, repos.Posts.Create(ctx, first))
	require.NoError(t, repos.Posts.Create(ctx, second))
	require.NoError(t, repos.Comments.Create(ctx, &models.Comment{AuthorID: reader.ID, PostID: first.ID, Content: "one"}))
	require.NoError(t, repos.Comments.Create(ctx, &models.Comment{AuthorID: author.ID, PostID: first.ID, Content: "two"}))
	require.NoError(t, repos.Likes.Create(ctx, reader.ID, first.ID))

	feed, err := repos.Posts.ListFeed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, second.ID, feed[0].ID)
	assert.Equal(t, first.ID, feed[1].ID)

	view := models.NewPostView(feed[1])
	assert.Equal(t, author.Username, view.Author.Username)
	require.Len(t, view.Comments, 2)
	assert.Equal(t, "one", view.Comments[0].Content)
	assert.Equal(t, reader.Username, view.Comments[0].Author.Username)
	assert.Equal(t, []uint{reader.ID}, view.LikedBy)

	byReader, err := repos.Posts.ListByAuthor(ctx, reader.ID)
	require.NoError(t, err)
	assert.Empty(t, byReader)

	_, err = repos.Posts.GetByID(ctx, 9999)
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
	assert.Equal(t, models.CodeNotFound, models.CodeOf(repos.Posts.Delete(ctx, 9999)))
}

func TestNotificationRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db)
	fan := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, author)
	other := testutil.CreatePost(t, db, author)

	comment := &models.Comment{AuthorID: fan.ID, PostID: post.ID, Content: "hey"}
	require.NoError(t, repos.Comments.Create(ctx, comment))

	like := &models.Notification{Type: models.NotificationLike, UserID: author.ID, CreatorID: fan.ID, PostID: &post.ID}
	onComment := &models.Notification{Type: models.NotificationComment, UserID: author.ID, CreatorID: fan.ID, CommentID: &comment.ID}
	follow := &models.Notification{Type: models.NotificationFollow, UserID: author.ID, CreatorID: fan.ID}
	elsewhere := &models.Notification{Type: models.NotificationLike, UserID: author.ID, CreatorID: fan.ID, PostID: &other.ID}
	for _, n := range []*models.Notification{like, onComment, follow, elsewhere} {
		require.NoError(t, repos.Notifications.Create(ctx, n))
	}

	t.Run("self notification rejected by the store", func(t *testing.T) {
		err := repos.Notifications.Create(ctx, &models.Notification{Type: models.NotificationFollow, UserID: fan.ID, CreatorID: fan.ID})
		assert.Equal(t, models.CodeInvalidArgument, models.CodeOf(err))
	})

	listed, err := repos.Notifications.ListForRecipient(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, listed, 4)
	assert.Equal(t, elsewhere.ID, listed[0].ID)
	assert.Equal(t, fan.Username, listed[0].Creator.Username)
	require.NotNil(t, listed[2].Comment)
	assert.Equal(t, "hey", listed[2].Comment.Content)

	n, err := repos.Notifications.MarkRead(ctx, fan.ID, []uint{like.ID})
	require.NoError(t, err)
	assert.Zero(t, n, "a user cannot mark someone else's notifications")

	n, err = repos.Notifications.MarkRead(ctx, author.ID, []uint{like.ID, 424242})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repos.Notifications.DeleteForPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, int64(2), testutil.Count(t, db, &models.Notification{}, ""))
}

func TestTxRunner_RollsBackOnError(t *testing.T) {
	db := testutil.NewDB(t)
	runner := NewTxRunner(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db)
	fan := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, author)

	boom := models.NewForbiddenError("stop")
	err := runner.InTx(ctx, func(tx Repositories) error {
		if err := tx.Likes.Create(ctx, fan.ID, post.ID); err != nil {
			return err
		}
		return boom
	})
	assert.True(t, errors.Is(err, boom))
	assert.Zero(t, testutil.Count(t, db, &models.Like{}, ""))

	err = runner.InTx(ctx, func(tx Repositories) error {
		return tx.Likes.Create(ctx, fan.ID, post.ID)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), testutil.Count(t, db, &models.Like{}, "post_id = ?", post.ID))
}
