package authservice

import (
	"context"

	"github.com/go-kit/kit/log"
	"github.com/ichigozero/todokit/backend/authsvc"
	"github.com/ichigozero/todokit/backend/usersvc"
	"golang.org/x/crypto/bcrypt"
)

// Service verifies a username/password pair against the credential
// store. Every failure mode collapses into ErrInvalidCredentials so
// callers cannot distinguish an unknown user from a wrong password.
type Service interface {
	Validate(ctx context.Context, username, password string) (string, error)
}

func New(users usersvc.UserRepository, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(users)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	users usersvc.UserRepository
}

func NewBasicService(users usersvc.UserRepository) Service {
	return &basicService{users: users}
}

func (s *basicService) Validate(_ context.Context, username, password string) (string, error) {
	if username == "" {
		return "", authsvc.ErrInvalidCredentials
	}

	user, err := s.users.Find(username)
	if err != nil {
		return "", authsvc.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", authsvc.ErrInvalidCredentials
	}

	return user.Username, nil
}
