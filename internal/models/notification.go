package models

import "time"

// NotificationType identifies what triggered a notification.
type NotificationType string

const (
	NotificationLike    NotificationType = "LIKE"
	NotificationComment NotificationType = "COMMENT"
	NotificationFollow  NotificationType = "FOLLOW"
)

// Notification is a record addressed to UserID about an action by CreatorID.
// It is never created when the two are the same user.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	Type      NotificationType `gorm:"type:varchar(16);not null;check:chk_notifications_type,type IN ('LIKE', 'COMMENT', 'FOLLOW')" json:"type"`
	UserID    uint             `gorm:"not null;index:idx_notifications_recipient_created;check:chk_notifications_not_self,user_id <> creator_id" json:"user_id"`
	CreatorID uint             `gorm:"not null" json:"creator_id"`
	PostID    *uint            `gorm:"index" json:"post_id,omitempty"`
	CommentID *uint            `gorm:"index;check:chk_notifications_comment_ref,type <> 'COMMENT' OR comment_id IS NOT NULL" json:"comment_id,omitempty"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time        `gorm:"index:idx_notifications_recipient_created" json:"created_at"`

	User    User     `gorm:"foreignKey:UserID" json:"-"`
	Creator User     `gorm:"foreignKey:CreatorID" json:"-"`
	Post    *Post    `gorm:"foreignKey:PostID" json:"-"`
	Comment *Comment `gorm:"foreignKey:CommentID" json:"-"`
}

// PostSummary is the post excerpt embedded in a notification.
type PostSummary struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
	Image   string `json:"image"`
}

// CommentSummary is the comment excerpt embedded in a notification.
type CommentSummary struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationView is the listing projection of a notification.
type NotificationView struct {
	ID        uint             `json:"id"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
	Creator   UserSummary      `json:"creator"`
	Post      *PostSummary     `json:"post,omitempty"`
	Comment   *CommentSummary  `json:"comment,omitempty"`
}

// NewNotificationView projects a notification with its relations loaded.
func NewNotificationView(n Notification) NotificationView {
	view := NotificationView{
		ID:        n.ID,
		Type:      n.Type,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
		Creator:   n.Creator.Summary(),
	}
	if n.Post != nil {
		view.Post = &PostSummary{ID: n.Post.ID, Content: n.Post.Content, Image: n.Post.Image}
	}
	if n.Comment != nil {
		view.Comment = &CommentSummary{ID: n.Comment.ID, Content: n.Comment.Content, CreatedAt: n.Comment.CreatedAt}
	}
	return view
}
