package entity

import "time"

// KeyToken is the per-user key record. Access tokens are verified with
// PublicKey, refresh tokens with PrivateKey. RefreshToken is the only refresh
// token currently accepted for the user.
type KeyToken struct {
	UserId       string    `json:"userId" gorm:"column:user_id;primaryKey;size:36"`
	PublicKey    string    `json:"-" gorm:"column:public_key;size:256"`
	PrivateKey   string    `json:"-" gorm:"column:private_key;size:256"`
	RefreshToken string    `json:"-" gorm:"column:refresh_token;type:text"`
	CreatedAt    time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

// TableName returns the table name for KeyToken
func (KeyToken) TableName() string {
	return "key_tokens"
}
