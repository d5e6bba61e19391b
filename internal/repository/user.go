package repository

import (
	"context"
	"errors"
	"fmt"

	constant "github.com/SeakMengs/InstaPilot/internal/constant"
	"github.com/SeakMengs/InstaPilot/internal/model"
	"gorm.io/gorm"
)

type UserRepository struct {
	*baseRepository
}

func (ur UserRepository) GetById(ctx context.Context, tx *gorm.DB, userId string) (*model.User, error) {
	ur.logger.Debugf("Get user by id: %s \n", userId)

	db := ur.getDB(tx)
	var user model.User

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.User{}).Where(&model.User{BaseModel: model.BaseModel{ID: userId}}).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (ur UserRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.User, error) {
	ur.logger.Debugf("Get user by email: %s \n", email)

	db := ur.getDB(tx)
	var user model.User

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.User{}).Where(&model.User{Email: email}).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (ur *UserRepository) Create(ctx context.Context, tx *gorm.DB, newUser model.User) error {
	ur.logger.Debugf("Create user with email: %s \n", newUser.Email)

	db := ur.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.User{}).Create(&model.User{
		Email:      newUser.Email,
		FirstName:  newUser.FirstName,
		LastName:   newUser.LastName,
		ProfileURL: newUser.ProfileURL,
	}).Error; err != nil {
		return err
	}

	return nil
}

func (ur *UserRepository) CheckDupAndCreate(ctx context.Context, tx *gorm.DB, newUser model.User) error {
	ur.logger.Debugf("Check duplicate and create user with email: %s \n", newUser.Email)

	db := ur.getDB(tx)
	txErr := ur.withTx(db, func(tx2 *gorm.DB) error {
		existingUser, err := ur.GetByEmail(ctx, tx2, newUser.Email)
		if err != nil {
			// Not found is the happy path here
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if existingUser != nil {
			return fmt.Errorf("user with %s already exist", existingUser.Email)
		}

		if err := ur.Create(ctx, tx2, newUser); err != nil {
			return err
		}

		return nil
	})

	return txErr
}

// GetOrCreateByEmail returns the existing user for the email or creates one.
// Used by the oauth login flow to auto-provision users keyed by a synthetic
// email derived from the instagram account id.
// The second return reports whether a new user row was created.
func (ur *UserRepository) GetOrCreateByEmail(ctx context.Context, tx *gorm.DB, newUser model.User) (*model.User, bool, error) {
	ur.logger.Debugf("Get or create user with email: %s \n", newUser.Email)

	db := ur.getDB(tx)
	var user model.User

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	result := db.WithContext(ctx).Model(&model.User{}).Where(&model.User{Email: newUser.Email}).Attrs(model.User{
		Email:      newUser.Email,
		FirstName:  newUser.FirstName,
		LastName:   newUser.LastName,
		ProfileURL: newUser.ProfileURL,
	}).FirstOrCreate(&user)
	if result.Error != nil {
		return nil, false, result.Error
	}

	return &user, result.RowsAffected > 0, nil
}

// UpdateInstagramMirror denormalizes a few instagram profile fields onto the
// users row so the dashboard does not need a join for them.
func (ur *UserRepository) UpdateInstagramMirror(ctx context.Context, tx *gorm.DB, userId string, username string, profilePictureURL string) error {
	ur.logger.Debugf("Mirror instagram profile onto userId: %s \n", userId)

	db := ur.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.User{}).Where(&model.User{BaseModel: model.BaseModel{ID: userId}}).Updates(map[string]interface{}{
		"instagram_username": username,
		"profile_url":        profilePictureURL,
	}).Error; err != nil {
		return err
	}

	return nil
}
