package crud

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"warbler/domain"
	"warbler/errs"
)

// FollowService manages Follows.
// It implements the domain.FollowService interface.
type FollowService struct {
	followValidator
}

// followValidator runs validations on incoming Follow data.
// On success, it passes the data on to followGorm.
// Otherwise, it returns the error of the validation that has failed.
type followValidator struct {
	followGorm
}

// followGorm runs CRUD operations on the database using incoming Follow data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type followGorm struct {
	db *gorm.DB
}

// NewFollowService returns an instance of FollowService.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		followValidator{
			followGorm{
				db: db,
			},
		},
	}
}

// Ensure the FollowService struct properly implements the domain.FollowService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.FollowService = &FollowService{}

// Create runs validations needed for creating new Follow database records.
func (fv *followValidator) Create(ctx context.Context, follow *domain.Follow) error {
	err := runFollowValFns(follow,
		fv.followedUserExists,
		fv.followedIsNotFollower,
		fv.notAlreadyFollowed)
	if err != nil {
		return err
	}
	return fv.followGorm.Create(ctx, follow)
}

// Delete runs validations needed for deleting existing Follow database records.
// Unfollowing a user who isn't followed is an error, not a no-op.
func (fv *followValidator) Delete(ctx context.Context, follow *domain.Follow) error {
	err := runFollowValFns(follow, fv.followExists)
	if err != nil {
		return err
	}
	return fv.followGorm.Delete(ctx, follow)
}

// runFollowValFns runs any number of functions of type followValFn on the passed in Follow object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runFollowValFns(follow *domain.Follow, fns ...followValFn) error {
	for _, fn := range fns {
		if err := fn(follow); err != nil {
			return err
		}
	}
	return nil
}

// A followValFn is any function that takes in a pointer to a domain.Follow object and returns an error.
type followValFn func(follow *domain.Follow) error

// followExists makes sure that the Follow record to be deleted actually exists.
// As a side effect it backfills the record's ID, so followGorm can delete by primary key.
func (fv *followValidator) followExists(follow *domain.Follow) error {
	err := fv.db.First(follow, "follower_id = ? AND followed_id = ?", follow.FollowerID, follow.FollowedID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Errorf(errs.ENOTFOUND, "You don't follow this user.")
		}
		return err
	}
	return nil
}

// followedIsNotFollower makes sure that a user is not trying to follow themselves.
func (fv *followValidator) followedIsNotFollower(follow *domain.Follow) error {
	if follow.FollowerID == follow.FollowedID {
		return errs.Errorf(errs.EINVALID, "You cannot follow yourself.")
	}
	return nil
}

// followedUserExists makes sure that the user to be followed actually exists.
func (fv *followValidator) followedUserExists(follow *domain.Follow) error {
	err := fv.db.First(&domain.User{}, "id = ?", follow.FollowedID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Errorf(errs.ENOTFOUND, "The user to be followed does not exist.")
		}
		return err
	}
	return nil
}

// notAlreadyFollowed makes sure that the user doesn't already follow the other user.
func (fv *followValidator) notAlreadyFollowed(follow *domain.Follow) error {
	err := fv.db.First(&domain.Follow{}, "follower_id = ? AND followed_id = ?", follow.FollowerID, follow.FollowedID).Error
	if err == nil {
		return errs.Errorf(errs.EINVALID, "You already follow this user.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// FollowersByUserID retrieves all follows pointing at the given user,
// along with the User record of each follower.
func (fg *followGorm) FollowersByUserID(userID int) ([]domain.Follow, error) {
	var follows []domain.Follow
	err := fg.db.
		Where("followed_id = ?", userID).
		Preload("Follower").
		Order("created_at desc").
		Find(&follows).Error
	if err != nil {
		return nil, err
	}
	return follows, nil
}

// FollowedsByUserID retrieves all follows created by the given user,
// along with the User record of each followed user.
func (fg *followGorm) FollowedsByUserID(userID int) ([]domain.Follow, error) {
	var follows []domain.Follow
	err := fg.db.
		Where("follower_id = ?", userID).
		Preload("Followed").
		Order("created_at desc").
		Find(&follows).Error
	if err != nil {
		return nil, err
	}
	return follows, nil
}

// Create stores the data from the Follow object in a new database record.
// On success, it eager-loads both sides of the edge, so that the json
// response displays the full data of the followed and the following user.
func (fg *followGorm) Create(ctx context.Context, follow *domain.Follow) error {
	err := fg.db.Create(follow).Error
	if err != nil {
		return err
	}
	return fg.db.Preload("Followed").Preload("Follower").First(follow).Error
}

// Delete permanently deletes the database record matching the data from the Follow object.
func (fg *followGorm) Delete(ctx context.Context, follow *domain.Follow) error {
	return fg.db.Delete(follow).Error
}
