package models

import "time"

type Review struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updatedAt"`
	InstrumentID uint        `gorm:"index;not null" json:"instrumentId"`
	Instrument   *Instrument `gorm:"foreignKey:InstrumentID" json:"-"`
	UserID       uint        `gorm:"index;not null" json:"userId"`
	User         *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BookingID    uint        `gorm:"uniqueIndex;not null" json:"bookingId"`
	Rating       int         `gorm:"not null" json:"rating"`
	Comment      string      `gorm:"type:text" json:"comment"`
}
