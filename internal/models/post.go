package models

import "time"

// Post is authored content. Deleting a post removes its likes, comments and
// the notifications pointing at either.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author"`
	Content   string    `gorm:"type:text" json:"content"`
	Image     string    `json:"image"`
	Comments  []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	Likes     []Like    `gorm:"foreignKey:PostID" json:"likes,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostCounts holds the derived like and comment counters of a post.
type PostCounts struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

// PostView is the feed projection of a post.
type PostView struct {
	ID        uint          `json:"id"`
	Content   string        `json:"content"`
	Image     string        `json:"image"`
	CreatedAt time.Time     `json:"created_at"`
	Author    UserSummary   `json:"author"`
	Comments  []CommentView `json:"comments"`
	LikedBy   []uint        `json:"liked_by"`
	Counts    PostCounts    `json:"counts"`
}

// NewPostView projects a post whose author, comments (with authors) and likes
// have been loaded.
func NewPostView(p Post) PostView {
	view := PostView{
		ID:        p.ID,
		Content:   p.Content,
		Image:     p.Image,
		CreatedAt: p.CreatedAt,
		Author:    p.Author.Summary(),
		Comments:  make([]CommentView, 0, len(p.Comments)),
		LikedBy:   make([]uint, 0, len(p.Likes)),
		Counts:    PostCounts{Likes: len(p.Likes), Comments: len(p.Comments)},
	}
	for _, c := range p.Comments {
		view.Comments = append(view.Comments, NewCommentView(c))
	}
	for _, l := range p.Likes {
		view.LikedBy = append(view.LikedBy, l.UserID)
	}
	return view
}
