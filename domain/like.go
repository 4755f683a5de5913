package domain

import (
	"context"
	"time"
)

// Like represents a many-to-many relationship between a User and a Message.
// A Like is created when a user decides to like a message. It's destroyed when
// a user decides to unlike a previously liked message, or when the message gets
// deleted. The (UserID, MessageID) pair is unique, a user likes a message once.
type Like struct {
	ID        int     `json:"id"`
	UserID    int     `json:"user_id" gorm:"notNull;index;uniqueIndex:idx_user_message"`
	MessageID int     `json:"message_id" gorm:"notNull;uniqueIndex:idx_user_message"`
	Message   Message `json:"message"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LikeService is a set of methods to manipulate and work with the Like model.
// Toggle is the single entry point for both liking and unliking - it flips the
// presence of the edge and reports the state it left behind.
type LikeService interface {
	Toggle(ctx context.Context, like *Like) (bool, error)
	IsLiked(userID, messageID int) bool
	ByUserID(userID int) ([]Like, error)
}
