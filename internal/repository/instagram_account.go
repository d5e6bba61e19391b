package repository

import (
	"context"
	"time"

	constant "github.com/SeakMengs/InstaPilot/internal/constant"
	"github.com/SeakMengs/InstaPilot/internal/instagram"
	"github.com/SeakMengs/InstaPilot/internal/model"
	"gorm.io/gorm"
)

type InstagramAccountRepository struct {
	*baseRepository
	user *UserRepository
}

// UpsertByUserAndAccountId creates or updates the row for the
// (user, instagram account) pair. The composite unique index makes this the
// only write path, so two near-simultaneous callbacks converge to one row.
func (iar InstagramAccountRepository) UpsertByUserAndAccountId(ctx context.Context, tx *gorm.DB, account model.InstagramAccount) (*model.InstagramAccount, error) {
	iar.logger.Debugf("Upsert instagram account %s for userId: %s \n", account.AccountID, account.UserID)

	db := iar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	// Assign with a map so zero values (e.g. media_count going back to 0)
	// still overwrite the previous snapshot.
	var row model.InstagramAccount
	if err := db.WithContext(ctx).Model(&model.InstagramAccount{}).Where(&model.InstagramAccount{
		UserID:    account.UserID,
		AccountID: account.AccountID,
	}).Assign(map[string]interface{}{
		"username":            account.Username,
		"name":                account.Name,
		"profile_picture_url": account.ProfilePictureURL,
		"account_type":        account.AccountType,
		"media_count":         account.MediaCount,
		"followers_count":     account.FollowersCount,
		"following_count":     account.FollowingCount,
		"website":             account.Website,
		"biography":           account.Biography,
		"access_token":        account.AccessToken,
		"token_type":          account.TokenType,
		"token_expires_at":    account.TokenExpiresAt,
	}).FirstOrCreate(&row).Error; err != nil {
		return nil, err
	}

	return &row, nil
}

// LinkAccount reconciles a freshly fetched instagram profile and long-lived
// token against the local store. The mirror of profile fields onto the users
// row is best effort and never fails the link.
func (iar InstagramAccountRepository) LinkAccount(ctx context.Context, tx *gorm.DB, userId string, profile *instagram.Profile, token *instagram.LongLivedToken) (*model.InstagramAccount, error) {
	iar.logger.Debugf("Link instagram account %s to userId: %s \n", profile.ID, userId)

	expiresAt := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)

	row, err := iar.UpsertByUserAndAccountId(ctx, tx, model.InstagramAccount{
		UserID:            userId,
		AccountID:         profile.ID,
		Username:          profile.Username,
		Name:              profile.Name,
		ProfilePictureURL: profile.ProfilePictureURL,
		AccountType:       profile.AccountType,
		MediaCount:        profile.MediaCount,
		FollowersCount:    profile.FollowersCount,
		FollowingCount:    profile.FollowsCount,
		Website:           profile.Website,
		Biography:         profile.Biography,
		AccessToken:       token.AccessToken,
		TokenType:         token.TokenType,
		TokenExpiresAt:    &expiresAt,
	})
	if err != nil {
		return nil, err
	}

	if err := iar.user.UpdateInstagramMirror(ctx, tx, userId, profile.Username, profile.ProfilePictureURL); err != nil {
		iar.logger.Warnf("Failed to mirror instagram profile onto userId %s: %v", userId, err)
	}

	return row, nil
}

func (iar InstagramAccountRepository) GetByUserId(ctx context.Context, tx *gorm.DB, userId string) ([]model.InstagramAccount, error) {
	iar.logger.Debugf("Get instagram accounts for userId: %s \n", userId)

	db := iar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var accounts []model.InstagramAccount
	if err := db.WithContext(ctx).Model(&model.InstagramAccount{}).Where(&model.InstagramAccount{UserID: userId}).Order("created_at asc").Find(&accounts).Error; err != nil {
		return nil, err
	}

	return accounts, nil
}

func (iar InstagramAccountRepository) GetByUserAndAccountId(ctx context.Context, tx *gorm.DB, userId string, accountId string) (*model.InstagramAccount, error) {
	iar.logger.Debugf("Get instagram account %s for userId: %s \n", accountId, userId)

	db := iar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var account model.InstagramAccount
	if err := db.WithContext(ctx).Model(&model.InstagramAccount{}).Where(&model.InstagramAccount{
		UserID:    userId,
		AccountID: accountId,
	}).First(&account).Error; err != nil {
		return nil, err
	}

	return &account, nil
}

// UpdateToken stores a refreshed long-lived token and its new expiry.
func (iar InstagramAccountRepository) UpdateToken(ctx context.Context, tx *gorm.DB, userId string, accountId string, token *instagram.LongLivedToken) error {
	iar.logger.Debugf("Update token of instagram account %s for userId: %s \n", accountId, userId)

	db := iar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	expiresAt := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)

	if err := db.WithContext(ctx).Model(&model.InstagramAccount{}).Where(&model.InstagramAccount{
		UserID:    userId,
		AccountID: accountId,
	}).Updates(map[string]interface{}{
		"access_token":     token.AccessToken,
		"token_type":       token.TokenType,
		"token_expires_at": expiresAt,
	}).Error; err != nil {
		return err
	}

	return nil
}

func (iar InstagramAccountRepository) DeleteByUserAndAccountId(ctx context.Context, tx *gorm.DB, userId string, accountId string) error {
	iar.logger.Debugf("Delete instagram account %s for userId: %s \n", accountId, userId)

	db := iar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Where(&model.InstagramAccount{
		UserID:    userId,
		AccountID: accountId,
	}).Delete(&model.InstagramAccount{}).Error; err != nil {
		return err
	}

	return nil
}
