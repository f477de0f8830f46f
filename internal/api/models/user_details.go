package models

import "time"

// UserDetails is one entry of the sender directory, looked up by User
type UserDetails struct {
	ID           uint          `json:"id" gorm:"primaryKey" toml:"-"`
	User         string        `json:"user" gorm:"not null;index" toml:"user"`
	Email        string        `json:"email" gorm:"not null" toml:"email"`
	Password     string        `json:"-" gorm:"not null" toml:"password"`
	SenderName   string        `json:"senderName" toml:"sender_name"`
	EmailService EmailProvider `json:"emailService" gorm:"type:varchar(20);default:GMAIL" toml:"email_service"`
	CreatedAt    time.Time     `json:"createdAt" toml:"-"`
}

func (UserDetails) TableName() string {
	return "user_details"
}
