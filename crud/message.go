package crud

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"warbler/domain"
	"warbler/errs"
)

// MessageService manages Messages.
// It implements the domain.MessageService interface.
type MessageService struct {
	messageValidator
}

// messageValidator runs validations on incoming Message data.
// On success, it passes the data on to messageGorm.
// Otherwise, it returns the error of the validation that has failed.
type messageValidator struct {
	messageGorm
}

// messageGorm runs CRUD operations on the database using incoming Message data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type messageGorm struct {
	db *gorm.DB
}

// NewMessageService returns an instance of MessageService.
func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{
		messageValidator{
			messageGorm{
				db: db,
			},
		},
	}
}

// Ensure the MessageService struct properly implements the domain.MessageService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.MessageService = &MessageService{}

// Create runs validations needed for creating new Message database records.
func (mv *messageValidator) Create(ctx context.Context, message *domain.Message) error {
	err := runMessageValFns(message,
		mv.userIDValid,
		mv.ownerExists,
		mv.contentMinLength,
		mv.contentMaxLength)
	if err != nil {
		return err
	}
	return mv.messageGorm.Create(ctx, message)
}

// Delete runs validations needed for deleting an existing Message record.
// Only the owner of a message may delete it, anyone else gets an
// unauthorized error and the record stays untouched.
func (mv *messageValidator) Delete(ctx context.Context, message *domain.Message, requestingUserID int) error {
	if err := runMessageValFns(message, mv.idValid); err != nil {
		return err
	}
	var stored domain.Message
	if err := mv.db.First(&stored, "id = ?", message.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Errorf(errs.ENOTFOUND, "The message does not exist.")
		}
		return err
	}
	if stored.UserID != requestingUserID {
		return errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to delete this message.")
	}
	return mv.messageGorm.Delete(ctx, &stored)
}

// runMessageValFns runs any number of functions of type messageValFn on the passed in Message object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runMessageValFns(message *domain.Message, fns ...messageValFn) error {
	for _, fn := range fns {
		if err := fn(message); err != nil {
			return err
		}
	}
	return nil
}

// A messageValFn is any function that takes in a pointer to a domain.Message object and returns an error.
type messageValFn func(message *domain.Message) error

// contentMinLength makes sure that the Message's text contains more than whitespace.
func (mv *messageValidator) contentMinLength(message *domain.Message) error {
	if strings.TrimSpace(message.Text) == "" {
		return errs.Errorf(errs.EINVALID, "Message text must not be empty.")
	}
	return nil
}

// contentMaxLength makes sure that the Message's text does not exceed the maximum length.
func (mv *messageValidator) contentMaxLength(message *domain.Message) error {
	if utf8.RuneCountInString(message.Text) > domain.MessageMaxLength {
		return errs.Errorf(errs.EINVALID, "Message text max length is %d characters.", domain.MessageMaxLength)
	}
	return nil
}

// idValid makes sure that the passed in ID of a Message to be deleted is greater than 0.
func (mv *messageValidator) idValid(message *domain.Message) error {
	if message.ID <= 0 {
		return errs.Errorf(errs.EINVALID, "Invalid message Id.")
	}
	return nil
}

// ownerExists makes sure that the user the Message belongs to actually exists.
func (mv *messageValidator) ownerExists(message *domain.Message) error {
	err := mv.db.First(&domain.User{}, "id = ?", message.UserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Errorf(errs.ENOTFOUND, "The message's owner does not exist.")
		}
		return err
	}
	return nil
}

// userIDValid ensures that the userId is not empty.
func (mv *messageValidator) userIDValid(message *domain.Message) error {
	if message.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "Invalid user Id.")
	}
	return nil
}

// ByID retrieves a single Message by ID, along with its owner and Likes.
func (mg *messageGorm) ByID(id int) (*domain.Message, error) {
	var message domain.Message
	err := mg.db.
		Preload("User").
		Preload("Likes").
		First(&message, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The message does not exist.")
		}
		return nil, err
	}
	return &message, nil
}

// ByUserID retrieves all messages of a user, newest first.
func (mg *messageGorm) ByUserID(userID int) ([]domain.Message, error) {
	var messages []domain.Message
	err := mg.db.
		Where("user_id = ?", userID).
		Preload("User").
		Order("created_at desc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// FeedByUserID retrieves the user's home timeline: their own messages and
// those of every user they follow, newest first, capped at 100.
func (mg *messageGorm) FeedByUserID(userID int) ([]domain.Message, error) {
	followedIDs := mg.db.Model(&domain.Follow{}).Select("followed_id").Where("follower_id = ?", userID)
	var messages []domain.Message
	err := mg.db.
		Where("user_id = ? OR user_id IN (?)", userID, followedIDs).
		Preload("User").
		Order("created_at desc").
		Limit(100).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Create stores the data from the Message object in a new database record.
// On success, it eager-loads the owning user, so that the json response
// displays the full data of the posted message.
func (mg *messageGorm) Create(ctx context.Context, message *domain.Message) error {
	if err := mg.db.Create(message).Error; err != nil {
		return err
	}
	return mg.db.Preload("User").First(message).Error
}

// Delete permanently deletes a Message record from the database,
// along with its associated Likes.
func (mg *messageGorm) Delete(ctx context.Context, message *domain.Message) error {
	return mg.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", message.ID).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Message{}, message.ID).Error
	})
}
