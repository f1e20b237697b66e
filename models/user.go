package models

import (
	"time"
)

type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	Name               string    `gorm:"not null" json:"name"`
	Email              string    `gorm:"uniqueIndex;not null" json:"email"`
	Password           string    `json:"-"`
	PhoneNumber        string    `gorm:"index;type:varchar(15)" json:"phoneNumber"`
	Role               int       `gorm:"default:0;index" json:"role"`
	Status             int       `gorm:"default:1" json:"status"`
	Organization       string    `json:"organization"`
	Address            string    `json:"address"`
	City               string    `json:"city"`
	State              string    `json:"state"`
	GSTNumber          string    `gorm:"column:gst_number" json:"gstNumber"`
	Avatar             string    `json:"avatar"`
	IsVerified         bool      `gorm:"default:false" json:"isVerified"`
	GoogleID           string    `gorm:"index" json:"-"`
	EmailNotifications bool      `gorm:"default:true" json:"emailNotifications"`
	SMSNotifications   bool      `gorm:"column:sms_notifications;default:false" json:"smsNotifications"`
}

// Active reports whether the account may sign in.
func (u *User) Active() bool {
	return u.Status == 1
}
