package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPostView(t *testing.T) {
	now := time.Now()
	author := User{ID: 1, Username: "ada", Name: "Ada", Image: "a.png", Email: "ada@example.com"}
	commenter := User{ID: 2, Username: "bob"}

	view := NewPostView(Post{
		ID:        10,
		AuthorID:  1,
		Author:    author,
		Content:   "hello",
		CreatedAt: now,
		Comments: []Comment{
			{ID: 1, Content: "first", AuthorID: 2, Author: commenter},
			{ID: 2, Content: "second", AuthorID: 1, Author: author},
		},
		Likes: []Like{{UserID: 2, PostID: 10}},
	})

	assert.Equal(t, uint(10), view.ID)
	assert.Equal(t, "ada", view.Author.Username)
	assert.Equal(t, PostCounts{Likes: 1, Comments: 2}, view.Counts)
	assert.Equal(t, []uint{2}, view.LikedBy)
	assert.Equal(t, "bob", view.Comments[0].Author.Username)
	assert.Equal(t, "second", view.Comments[1].Content)
}

func TestNewPostView_EmptyRelationsSerializeAsEmptyLists(t *testing.T) {
	view := NewPostView(Post{ID: 1})
	assert.NotNil(t, view.Comments)
	assert.NotNil(t, view.LikedBy)
	assert.Zero(t, view.Counts.Likes)
}

func TestNewNotificationView(t *testing.T) {
	postID := uint(3)
	commentID := uint(4)
	n := Notification{
		ID:        9,
		Type:      NotificationComment,
		UserID:    1,
		CreatorID: 2,
		PostID:    &postID,
		CommentID: &commentID,
		Creator:   User{ID: 2, Username: "bob"},
		Post:      &Post{ID: postID, Content: "post body"},
		Comment:   &Comment{ID: commentID, Content: "nice"},
	}

	view := NewNotificationView(n)
	assert.Equal(t, NotificationComment, view.Type)
	assert.Equal(t, "bob", view.Creator.Username)
	if assert.NotNil(t, view.Post) {
		assert.Equal(t, "post body", view.Post.Content)
	}
	if assert.NotNil(t, view.Comment) {
		assert.Equal(t, "nice", view.Comment.Content)
	}

	follow := NewNotificationView(Notification{ID: 1, Type: NotificationFollow, Creator: User{ID: 5}})
	assert.Nil(t, follow.Post)
	assert.Nil(t, follow.Comment)
}
