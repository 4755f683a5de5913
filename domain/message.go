package domain

import (
	"context"
	"time"
)

// MessageMaxLength is the maximum number of characters (runes) a message may have.
const MessageMaxLength = 140

// Message is a short text post owned by exactly one user. Messages are
// immutable once created, they can only be deleted by their owner.
type Message struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id" gorm:"notNull;index"`
	User   User   `json:"user"`
	Text   string `json:"text" gorm:"notNull"`

	Likes []Like `json:"likes" gorm:"foreignKey:MessageID"`

	// AuthLiked expresses whether the authed user likes this message.
	AuthLiked bool `json:"auth_liked" gorm:"-"`
	LikeCount int  `json:"like_count" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageService is a set of methods to manipulate and work with the Message model.
type MessageService interface {
	ByID(id int) (*Message, error)
	ByUserID(userID int) ([]Message, error)
	FeedByUserID(userID int) ([]Message, error)
	Create(ctx context.Context, message *Message) error
	Delete(ctx context.Context, message *Message, requestingUserID int) error
}
