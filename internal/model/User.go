package model

type User struct {
	BaseModel
	Email      string `gorm:"unique;not null;type:citext" json:"email" form:"email" binding:"required"`
	FirstName  string `gorm:"type:varchar(30);not null;" json:"firstName" form:"firstName" binding:"required"`
	LastName   string `gorm:"type:varchar(30);not null;" json:"lastName" form:"lastName" binding:"required"`
	ProfileURL string `gorm:"type:text;default:null" json:"profileURL" form:"profileURL"`

	// Denormalized from the linked instagram account so the dashboard can
	// show a handle without joining. Best effort, see InstagramAccountRepository.LinkAccount.
	InstagramUsername string `gorm:"type:varchar(64);default:null" json:"instagramUsername" form:"instagramUsername"`
}

func (u User) TableName() string {
	return "users"
}
