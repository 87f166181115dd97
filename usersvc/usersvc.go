package usersvc

import "errors"

type User struct {
	Username     string `json:"username" gorm:"primaryKey"`
	PasswordHash string `json:"passwordHash"`
}

// UserRepository persists credential records. Create does not check
// uniqueness; that is the caller's responsibility.
type UserRepository interface {
	Find(username string) (User, error)
	Create(user User) (User, error)
}

var (
	ErrInvalidArgument = errors.New("username and password are required")
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already exists")
)
