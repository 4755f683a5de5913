package crud

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"warbler/domain"
	"warbler/errs"
)

// LikeService manages Likes.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeValidator
}

// likeValidator runs validations on incoming Like data.
// On success, it passes the data on to likeGorm.
// Otherwise, it returns the error of the validation that has failed.
type likeValidator struct {
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming Like data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeValidator{
			likeGorm{
				db: db,
			},
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// Toggle flips the presence of a Like edge. If the user doesn't like the
// message yet, the edge is created; if they already do, it is removed.
// It returns true if the edge exists after the call, false if it doesn't.
// Applying Toggle twice always returns the edge to its original state.
func (lv *likeValidator) Toggle(ctx context.Context, like *domain.Like) (bool, error) {
	err := runLikeValFns(like,
		lv.userIDValid,
		lv.likedMessageExists,
		lv.notOwnMessage)
	if err != nil {
		return false, err
	}

	return lv.likeGorm.Toggle(ctx, like)
}

// runLikeValFns runs any number of functions of type likeValFn on the passed in Like object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runLikeValFns(like *domain.Like, fns ...likeValFn) error {
	for _, fn := range fns {
		if err := fn(like); err != nil {
			return err
		}
	}
	return nil
}

// A likeValFn is any function that takes in a pointer to a domain.Like object and returns an error.
type likeValFn func(like *domain.Like) error

// likedMessageExists makes sure that the message to be liked actually exists.
func (lv *likeValidator) likedMessageExists(like *domain.Like) error {
	err := lv.db.First(&domain.Message{}, "id = ?", like.MessageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Errorf(errs.ENOTFOUND, "The liked message does not exist.")
		}
		return err
	}
	return nil
}

// notOwnMessage makes sure that a user is not trying to like their own message.
func (lv *likeValidator) notOwnMessage(like *domain.Like) error {
	var message domain.Message
	if err := lv.db.First(&message, "id = ?", like.MessageID).Error; err != nil {
		return err
	}
	if message.UserID == like.UserID {
		return errs.Errorf(errs.EUNAUTHORIZED, "You cannot like your own message.")
	}
	return nil
}

// userIDValid ensures that the userId is not empty.
func (lv *likeValidator) userIDValid(like *domain.Like) error {
	if like.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "Invalid user Id.")
	}
	return nil
}

// IsLiked takes a user ID and a message ID and returns a boolean expressing
// whether the given user likes the given message or not.
func (lg *likeGorm) IsLiked(userID, messageID int) bool {
	err := lg.db.First(&domain.Like{}, "user_id = ? AND message_id = ?", userID, messageID).Error
	return err == nil
}

// ByUserID retrieves all likes of a user, along with the Message belonging to each Like.
func (lg *likeGorm) ByUserID(userID int) ([]domain.Like, error) {
	var likes []domain.Like
	err := lg.db.
		Where("user_id = ?", userID).
		Preload("Message.User").
		Order("created_at desc").
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	return likes, nil
}

// Toggle flips the Like edge in a single transaction, so the existence
// check and the matching insert or delete can never interleave with a
// concurrent flip of the same edge. On a fresh like it eager-loads the
// message relation, so that the json response displays the full data of
// the liked message.
func (lg *likeGorm) Toggle(ctx context.Context, like *domain.Like) (bool, error) {
	var liked bool
	err := lg.db.Transaction(func(tx *gorm.DB) error {
		var existing domain.Like
		err := tx.First(&existing, "user_id = ? AND message_id = ?", like.UserID, like.MessageID).Error
		if err == nil {
			// Edge present, remove it (unlike).
			liked = false
			return tx.Delete(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		// Edge absent, create it (like).
		if err := tx.Create(like).Error; err != nil {
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if liked {
		if err := lg.db.Preload("Message").First(like).Error; err != nil {
			return liked, err
		}
	}
	return liked, nil
}
