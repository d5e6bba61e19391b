package model

import "time"

// InstagramAccount is the linked instagram business account snapshot for a
// user. At most one row exists per (user, instagram account) pair, enforced
// by the composite unique index and the upsert in the repository.
type InstagramAccount struct {
	BaseModel
	UserID    string `gorm:"type:text;not null;uniqueIndex:idx_user_instagram_account" json:"userId" form:"userId"`
	AccountID string `gorm:"type:text;not null;uniqueIndex:idx_user_instagram_account" json:"accountId" form:"accountId"`

	Username          string `gorm:"type:varchar(64);default:null" json:"username" form:"username"`
	Name              string `gorm:"type:varchar(255);default:null" json:"name" form:"name"`
	ProfilePictureURL string `gorm:"type:text;default:null" json:"profilePictureURL" form:"profilePictureURL"`
	AccountType       string `gorm:"type:varchar(50);default:null" json:"accountType" form:"accountType"`
	MediaCount        int    `gorm:"default:0" json:"mediaCount" form:"mediaCount"`
	FollowersCount    int    `gorm:"default:0" json:"followersCount" form:"followersCount"`
	FollowingCount    int    `gorm:"default:0" json:"followingCount" form:"followingCount"`
	Website           string `gorm:"type:text;default:null" json:"website" form:"website"`
	Biography         string `gorm:"type:text;default:null" json:"biography" form:"biography"`

	// Long-lived provider token. Never serialized to a client response.
	AccessToken    string     `gorm:"type:text;not null" json:"-" form:"-"`
	TokenType      string     `gorm:"type:varchar(50);default:null" json:"-" form:"-"`
	TokenExpiresAt *time.Time `json:"tokenExpiresAt" form:"tokenExpiresAt"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-" form:"-"`
}

func (ia InstagramAccount) TableName() string {
	return "instagram_accounts"
}
