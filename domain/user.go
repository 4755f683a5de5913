package domain

import (
	"context"
	"time"
)

// User represents a registered account. The Password field only carries
// plaintext input through the validation chain and is never persisted;
// PasswordHash is what gets stored, and it never leaves the server as json.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username" gorm:"notNull;uniqueIndex"`
	Email    string `json:"email" gorm:"notNull;uniqueIndex"`

	Password     string `json:"password,omitempty" gorm:"-"`
	PasswordHash string `json:"-" gorm:"notNull"`

	ImageURL       string `json:"image_url"`
	HeaderImageURL string `json:"header_image_url"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`

	Messages  []Message `json:"messages" gorm:"foreignKey:UserID"`
	Likes     []Like    `json:"likes" gorm:"foreignKey:UserID"`
	Followers []Follow  `json:"followers" gorm:"foreignKey:FollowedID"`
	Followeds []Follow  `json:"followeds" gorm:"foreignKey:FollowerID"`

	// AuthFollowing expresses whether the authed user follows this user,
	// so the client knows whether to render a follow or an unfollow button.
	AuthFollowing bool `json:"auth_following" gorm:"-"`

	FollowerCount int `json:"follower_count" gorm:"-"`
	FollowedCount int `json:"followed_count" gorm:"-"`
	MessageCount  int `json:"message_count" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	ByID(id int) (*User, error)
	ByUsername(username string) (*User, error)
	Search(term string) ([]User, error)
	Authenticate(username, password string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User, currentPassword string) error
	Delete(ctx context.Context, id int) error
	IsFollowing(userID, otherID int) bool
	IsFollowedBy(userID, otherID int) bool
	CountFollowers(userID int) (int, error)
	CountFolloweds(userID int) (int, error)
	CountMessages(userID int) (int, error)
}
