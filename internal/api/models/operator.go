package models

import (
	"time"

	"gorm.io/gorm"
)

type AppRole string

const (
	RoleOperator AppRole = "operator"
	RoleAdmin    AppRole = "admin"
)

// Operator is an API account allowed to dispatch requests and mail
type Operator struct {
	ID           uint           `gorm:"primaryKey"`
	Email        string         `gorm:"uniqueIndex;not null"`
	Password     string         `gorm:"not null;column:password"`
	FirstName    string         `gorm:"not null;column:first_name"`
	LastName     string         `gorm:"not null;column:last_name"`
	Role         AppRole        `gorm:"type:varchar(20);default:operator;column:role"`
	Active       bool           `gorm:"default:true;column:active"`
	RefreshToken string         `gorm:"type:text;column:refresh_token"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime;column:updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index;column:deleted_at"`
}

func (Operator) TableName() string {
	return "operators"
}
