package models

import (
	"errors"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Username  string    `gorm:"column:username;unique;not null;size:150"`
	Email     string    `gorm:"column:email;size:100;index"`
	FirstName string    `gorm:"column:first_name;size:50"`
	LastName  string    `gorm:"column:last_name;size:50"`
	Password  string    `gorm:"column:password;not null;size:100"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate хук для валидации перед созданием
func (u *User) BeforeCreate(tx *gorm.DB) error {
	// Длины колонок считаются в символах, а не в байтах
	n := utf8.RuneCountInString(u.Username)
	if n < 3 || n > 150 {
		return errors.New("username must be between 3 and 150 characters")
	}
	if utf8.RuneCountInString(u.Email) > 100 {
		return errors.New("email must be at most 100 characters")
	}
	if u.Password == "" {
		return errors.New("password hash is required")
	}
	return nil
}
