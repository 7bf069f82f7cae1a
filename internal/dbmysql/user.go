package dbmysql

import (
	"time"
)

type User struct {
	UserID       string     `gorm:"primaryKey;column:user_id;size:36" json:"userId"`
	Name         string     `gorm:"column:name;size:100;not null" json:"name"`
	Email        string     `gorm:"column:email;size:255;index" json:"email"`
	ProfileImage string     `gorm:"column:profile_image;size:512" json:"profileImage"`
	Role         string     `gorm:"column:role;size:20;default:'member'" json:"role"`
	LastActive   *time.Time `gorm:"column:last_active;index" json:"lastActive"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// ActiveWithin reports whether the user touched the app inside window.
func (u *User) ActiveWithin(now time.Time, window time.Duration) bool {
	if u.LastActive == nil {
		return false
	}
	return now.Sub(*u.LastActive) <= window
}
