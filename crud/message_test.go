package crud

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/domain"
	"warbler/errs"
)

func TestMessageCreate(t *testing.T) {
	s := setupServices(t)
	u1 := signupUser(t, s, "u1", "u1@email.com")

	m1 := postMessage(t, s, u1, "Msg1")

	assert.NotZero(t, m1.ID)
	assert.Equal(t, u1.ID, m1.UserID)
	assert.Equal(t, "Msg1", m1.Text)
	assert.False(t, m1.CreatedAt.IsZero())

	found, err := s.Message.ByID(m1.ID)
	require.NoError(t, err)
	assert.Equal(t, u1.ID, found.UserID)
	assert.Contains(t, found.Text, "Msg1")
}

func TestMessageCreateTextLengthBounds(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	u1 := signupUser(t, s, "u1", "u1@email.com")

	// Empty text is rejected.
	err := s.Message.Create(ctx, &domain.Message{UserID: u1.ID, Text: ""})
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	// Whitespace-only text counts as empty, tabs and newlines included.
	for _, text := range []string{"   ", "\t\n ", "\n\n"} {
		err = s.Message.Create(ctx, &domain.Message{UserID: u1.ID, Text: text})
		require.Error(t, err)
		assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	}

	// Text at the maximum length is accepted.
	atMax := strings.Repeat("a", domain.MessageMaxLength)
	assert.NoError(t, s.Message.Create(ctx, &domain.Message{UserID: u1.ID, Text: atMax}))

	// One character over the maximum is rejected.
	overMax := strings.Repeat("a", domain.MessageMaxLength+1)
	err = s.Message.Create(ctx, &domain.Message{UserID: u1.ID, Text: overMax})
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestMessageCreateOwnerMustExist(t *testing.T) {
	s := setupServices(t)

	err := s.Message.Create(context.Background(), &domain.Message{UserID: 9999, Text: "orphan"})
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestMessageDeleteByOwner(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	u1 := signupUser(t, s, "u1", "u1@email.com")
	u2 := signupUser(t, s, "u2", "u2@email.com")
	m1 := postMessage(t, s, u1, "Msg1")

	// A like on the message goes with it.
	_, err := s.Like.Toggle(ctx, &domain.Like{UserID: u2.ID, MessageID: m1.ID})
	require.NoError(t, err)

	require.NoError(t, s.Message.Delete(ctx, &domain.Message{ID: m1.ID}, u1.ID))

	_, err = s.Message.ByID(m1.ID)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
	assert.False(t, s.Like.IsLiked(u2.ID, m1.ID))
}

func TestMessageDeleteByNonOwner(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	u1 := signupUser(t, s, "u1", "u1@email.com")
	u2 := signupUser(t, s, "u2", "u2@email.com")
	m1 := postMessage(t, s, u1, "Msg1")

	err := s.Message.Delete(ctx, &domain.Message{ID: m1.ID}, u2.ID)
	require.Error(t, err)
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))

	// The message is still there.
	_, err = s.Message.ByID(m1.ID)
	assert.NoError(t, err)
}

func TestMessageDeleteNotFound(t *testing.T) {
	s := setupServices(t)
	u1 := signupUser(t, s, "u1", "u1@email.com")

	err := s.Message.Delete(context.Background(), &domain.Message{ID: 9999}, u1.ID)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestMessageByUserID(t *testing.T) {
	s := setupServices(t)
	u1 := signupUser(t, s, "u1", "u1@email.com")
	u2 := signupUser(t, s, "u2", "u2@email.com")
	postMessage(t, s, u1, "Msg1")
	postMessage(t, s, u1, "Msg2")
	postMessage(t, s, u2, "Msg3")

	messages, err := s.Message.ByUserID(u1.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	for _, m := range messages {
		assert.Equal(t, u1.ID, m.UserID)
	}
}

func TestMessageFeed(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	u1 := signupUser(t, s, "u1", "u1@email.com")
	u2 := signupUser(t, s, "u2", "u2@email.com")
	u3 := signupUser(t, s, "u3", "u3@email.com")

	postMessage(t, s, u1, "from u1")
	postMessage(t, s, u2, "from u2")
	postMessage(t, s, u3, "from u3")

	require.NoError(t, s.Follow.Create(ctx, &domain.Follow{FollowerID: u1.ID, FollowedID: u2.ID}))

	// The feed holds u1's own messages and those of followed users,
	// but not the unfollowed u3's.
	feed, err := s.Message.FeedByUserID(u1.ID)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	texts := []string{feed[0].Text, feed[1].Text}
	assert.Contains(t, texts, "from u1")
	assert.Contains(t, texts, "from u2")
}
