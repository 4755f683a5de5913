package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/domain"
	"warbler/errs"
)

func TestUserCreate(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	user := &domain.User{
		Username: "u1",
		Email:    "u1@email.com",
		Password: "password123",
	}
	require.NoError(t, s.User.Create(ctx, user))

	assert.NotZero(t, user.ID)
	// The plaintext never survives the validation chain, and the stored
	// hash must not equal it.
	assert.Empty(t, user.Password)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "password123", user.PasswordHash)
	// Defaults get backfilled.
	assert.Equal(t, DefaultImageURL, user.ImageURL)
	assert.Equal(t, DefaultHeaderImageURL, user.HeaderImageURL)

	// A fresh user has no messages and no followers.
	found, err := s.User.ByID(user.ID)
	require.NoError(t, err)
	assert.Len(t, found.Messages, 0)
	assert.Len(t, found.Followers, 0)
}

func TestUserCreateHashesDiffer(t *testing.T) {
	s := setupServices(t)

	u1 := signupUser(t, s, "u1", "u1@email.com")
	u2 := signupUser(t, s, "u2", "u2@email.com")

	// Both users signed up with the same password, but bcrypt salts per
	// call, so the stored hashes must differ.
	assert.NotEqual(t, u1.PasswordHash, u2.PasswordHash)
}

func TestUserCreateUsernameTaken(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	signupUser(t, s, "u1", "u1@email.com")

	dup := &domain.User{Username: "u1", Email: "other@email.com", Password: "password123"}
	err := s.User.Create(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestUserCreateEmailTaken(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	signupUser(t, s, "u1", "u1@email.com")

	dup := &domain.User{Username: "other", Email: "u1@email.com", Password: "password123"}
	err := s.User.Create(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestUserCreateInvalidEmail(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	user := &domain.User{Username: "u1", Email: "invalidemail", Password: "password123"}
	err := s.User.Create(ctx, user)
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestUserCreateNormalizesEmail(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	user := &domain.User{Username: "u1", Email: " U1@Email.Com ", Password: "password123"}
	require.NoError(t, s.User.Create(ctx, user))
	assert.Equal(t, "u1@email.com", user.Email)
}

func TestUserAuthenticate(t *testing.T) {
	s := setupServices(t)
	u1 := signupUser(t, s, "u1", "u1@email.com")

	valid, err := s.User.Authenticate("u1", "password123")
	require.NoError(t, err)
	assert.Equal(t, u1.ID, valid.ID)
}

func TestUserAuthenticateFailuresIndistinguishable(t *testing.T) {
	s := setupServices(t)
	signupUser(t, s, "u1", "u1@email.com")

	wrongPw, errPw := s.User.Authenticate("u1", "invalid")
	unknownUser, errUser := s.User.Authenticate("invalid", "password123")

	assert.Nil(t, wrongPw)
	assert.Nil(t, unknownUser)
	require.Error(t, errPw)
	require.Error(t, errUser)
	// A wrong password and an unknown username must be observably identical,
	// the response must not reveal which half of the credential pair was wrong.
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(errPw))
	assert.Equal(t, errs.ErrorCode(errPw), errs.ErrorCode(errUser))
	assert.Equal(t, errs.ErrorMessage(errPw), errs.ErrorMessage(errUser))
}

func TestUserIsFollowing(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	u1 := signupUser(t, s, "u1", "u1@email.com")
	u2 := signupUser(t, s, "u2", "u2@email.com")

	require.NoError(t, s.Follow.Create(ctx, &domain.Follow{FollowerID: u1.ID, FollowedID: u2.ID}))

	// Following is directional.
	assert.True(t, s.User.IsFollowing(u1.ID, u2.ID))
	assert.False(t, s.User.IsFollowing(u2.ID, u1.ID))
}

func TestUserIsFollowedBy(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	u1 := signupUser(t, s, "u1", "u1@email.com")
	u2 := signupUser(t, s, "u2", "u2@email.com")

	require.NoError(t, s.Follow.Create(ctx, &domain.Follow{FollowerID: u2.ID, FollowedID: u1.ID}))

	assert.True(t, s.User.IsFollowedBy(u1.ID, u2.ID))
	assert.False(t, s.User.IsFollowedBy(u2.ID, u1.ID))
}

func TestUserUpdate(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	u1 := signupUser(t, s, "u1", "u1@email.com")

	upd := &domain.User{
		ID:       u1.ID,
		Username: "u1-renamed",
		Email:    "u1@email.com",
		Bio:      "hello",
		Location: "berlin",
	}
	require.NoError(t, s.User.Update(ctx, upd, "password123"))

	found, err := s.User.ByID(u1.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1-renamed", found.Username)
	assert.Equal(t, "hello", found.Bio)
	assert.Equal(t, "berlin", found.Location)

	// The password was not changed, the old one still authenticates.
	_, err = s.User.Authenticate("u1-renamed", "password123")
	assert.NoError(t, err)
}

func TestUserUpdateKeepsUnmentionedFields(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	u1 := signupUser(t, s, "u1", "u1@email.com")

	before, err := s.User.ByID(u1.ID)
	require.NoError(t, err)
	require.False(t, before.CreatedAt.IsZero())

	// The update mentions neither the image urls nor the creation timestamp.
	upd := &domain.User{
		ID:       u1.ID,
		Username: "u1",
		Email:    "u1@email.com",
		Bio:      "hello",
	}
	require.NoError(t, s.User.Update(ctx, upd, "password123"))

	found, err := s.User.ByID(u1.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", found.Bio)
	assert.Equal(t, DefaultImageURL, found.ImageURL)
	assert.Equal(t, DefaultHeaderImageURL, found.HeaderImageURL)
	assert.Equal(t, before.CreatedAt.Unix(), found.CreatedAt.Unix())
}

func TestUserUpdateWrongPassword(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	u1 := signupUser(t, s, "u1", "u1@email.com")

	upd := &domain.User{
		ID:       u1.ID,
		Username: "u1-renamed",
		Email:    "u1@email.com",
	}
	err := s.User.Update(ctx, upd, "wrong-password")
	require.Error(t, err)
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))

	// Nothing was mutated.
	found, err := s.User.ByID(u1.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", found.Username)
}

func TestUserUpdateNewPassword(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	u1 := signupUser(t, s, "u1", "u1@email.com")

	upd := &domain.User{
		ID:       u1.ID,
		Username: "u1",
		Email:    "u1@email.com",
		Password: "new-password",
	}
	require.NoError(t, s.User.Update(ctx, upd, "password123"))

	_, err := s.User.Authenticate("u1", "new-password")
	assert.NoError(t, err)
	_, err = s.User.Authenticate("u1", "password123")
	assert.Error(t, err)
}

func TestUserUpdateUsernameTaken(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	u1 := signupUser(t, s, "u1", "u1@email.com")
	signupUser(t, s, "u2", "u2@email.com")

	upd := &domain.User{
		ID:       u1.ID,
		Username: "u2",
		Email:    "u1@email.com",
	}
	err := s.User.Update(ctx, upd, "password123")
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestUserDeleteCascades(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	u1 := signupUser(t, s, "u1", "u1@email.com")
	u2 := signupUser(t, s, "u2", "u2@email.com")

	// u1 posts a message that u2 likes, and both follow each other.
	m1 := postMessage(t, s, u1, "Msg1")
	_, err := s.Like.Toggle(ctx, &domain.Like{UserID: u2.ID, MessageID: m1.ID})
	require.NoError(t, err)
	require.NoError(t, s.Follow.Create(ctx, &domain.Follow{FollowerID: u1.ID, FollowedID: u2.ID}))
	require.NoError(t, s.Follow.Create(ctx, &domain.Follow{FollowerID: u2.ID, FollowedID: u1.ID}))

	require.NoError(t, s.User.Delete(ctx, u1.ID))

	// The user is gone.
	_, err = s.User.ByID(u1.ID)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))

	// Their messages are gone.
	_, err = s.Message.ByID(m1.ID)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))

	// Likes referencing their messages are gone.
	likes, err := s.Like.ByUserID(u2.ID)
	require.NoError(t, err)
	assert.Len(t, likes, 0)

	// Follow edges in both directions are gone.
	assert.False(t, s.User.IsFollowing(u2.ID, u1.ID))
	assert.False(t, s.User.IsFollowedBy(u2.ID, u1.ID))

	// The surviving user is untouched.
	_, err = s.User.ByID(u2.ID)
	assert.NoError(t, err)
}

func TestUserDeleteNotFound(t *testing.T) {
	s := setupServices(t)
	err := s.User.Delete(context.Background(), 9999)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestUserSearch(t *testing.T) {
	s := setupServices(t)
	signupUser(t, s, "alice", "alice@email.com")
	signupUser(t, s, "bob", "bob@email.com")

	found, err := s.User.Search("ali")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "alice", found[0].Username)

	all, err := s.User.Search("")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUserCounts(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	u1 := signupUser(t, s, "u1", "u1@email.com")
	u2 := signupUser(t, s, "u2", "u2@email.com")
	u3 := signupUser(t, s, "u3", "u3@email.com")

	postMessage(t, s, u1, "Msg1")
	postMessage(t, s, u1, "Msg2")
	require.NoError(t, s.Follow.Create(ctx, &domain.Follow{FollowerID: u2.ID, FollowedID: u1.ID}))
	require.NoError(t, s.Follow.Create(ctx, &domain.Follow{FollowerID: u3.ID, FollowedID: u1.ID}))
	require.NoError(t, s.Follow.Create(ctx, &domain.Follow{FollowerID: u1.ID, FollowedID: u2.ID}))

	messages, err := s.User.CountMessages(u1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, messages)

	followers, err := s.User.CountFollowers(u1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, followers)

	followeds, err := s.User.CountFolloweds(u1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, followeds)
}
