package gorm

import (
	"errors"

	"github.com/ichigozero/todokit/backend/usersvc"
	stdgorm "gorm.io/gorm"
)

type userRepository struct {
	db *stdgorm.DB
}

func NewUserRepository(db *stdgorm.DB) usersvc.UserRepository {
	return &userRepository{db}
}

func (u *userRepository) Find(username string) (usersvc.User, error) {
	var user usersvc.User
	result := u.db.Where("username = ?", username).First(&user)

	if errors.Is(result.Error, stdgorm.ErrRecordNotFound) {
		return usersvc.User{}, usersvc.ErrUserNotFound
	}
	return user, result.Error
}

func (u *userRepository) Create(user usersvc.User) (usersvc.User, error) {
	result := u.db.Create(&user)

	return user, result.Error
}
