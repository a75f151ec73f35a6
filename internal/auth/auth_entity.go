package auth

import (
	"time"
)

type User struct {
	ID         int64  `gorm:"primaryKey"`
	EmployeeID *int64 `gorm:"uniqueIndex"`
	Name       string `gorm:"type:varchar(255);not null"`
	Email      string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password   string `gorm:"type:varchar(255);not null"`
	Role       string `gorm:"type:varchar(50);not null;default:'EMPLOYEE'"`
	IsActive   bool   `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (User) TableName() string {
	return "users"
}
