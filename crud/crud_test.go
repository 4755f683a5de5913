package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"warbler/domain"
)

const testPepper = "test-pepper"

// setupServices opens a fresh in-memory database, migrates the schema and
// returns the full set of crud services backed by it.
func setupServices(t *testing.T) *Services {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	err = db.AutoMigrate(domain.User{}, domain.Message{}, domain.Follow{}, domain.Like{})
	require.NoError(t, err)

	services, err := NewServices(db,
		WithUser(testPepper),
		WithMessage(),
		WithFollow(),
		WithLike(),
	)
	require.NoError(t, err)
	return services
}

// signupUser creates a user the way the signup operation does.
func signupUser(t *testing.T, s *Services, username, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		Username: username,
		Email:    email,
		Password: "password123",
	}
	require.NoError(t, s.User.Create(context.Background(), user))
	return user
}

// postMessage creates a message owned by the given user.
func postMessage(t *testing.T, s *Services, owner *domain.User, text string) *domain.Message {
	t.Helper()
	message := &domain.Message{
		UserID: owner.ID,
		Text:   text,
	}
	require.NoError(t, s.Message.Create(context.Background(), message))
	return message
}
