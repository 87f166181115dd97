package userservice

import (
	"context"

	"github.com/go-kit/kit/log"
	"github.com/ichigozero/todokit/backend/authsvc"
	"github.com/ichigozero/todokit/backend/authsvc/pkg/authservice"
	"github.com/ichigozero/todokit/backend/usersvc"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Register(ctx context.Context, username, password string) (usersvc.User, error)
	Login(ctx context.Context, username, password string) (bool, error)
}

func New(users usersvc.UserRepository, validator authservice.Service, cost int, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(users, validator, cost)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	users     usersvc.UserRepository
	validator authservice.Service
	cost      int
}

// NewBasicService builds the user service. cost is the bcrypt hashing
// cost; pass bcrypt.DefaultCost outside of tests.
func NewBasicService(users usersvc.UserRepository, validator authservice.Service, cost int) Service {
	return basicService{users: users, validator: validator, cost: cost}
}

func (s basicService) Register(_ context.Context, username, password string) (usersvc.User, error) {
	if username == "" || password == "" {
		return usersvc.User{}, usersvc.ErrInvalidArgument
	}

	_, err := s.users.Find(username)
	if err == nil {
		return usersvc.User{}, usersvc.ErrUsernameTaken
	}
	if err != usersvc.ErrUserNotFound {
		return usersvc.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return usersvc.User{}, err
	}

	return s.users.Create(usersvc.User{Username: username, PasswordHash: string(hash)})
}

func (s basicService) Login(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, usersvc.ErrInvalidArgument
	}

	_, err := s.validator.Validate(ctx, username, password)
	if err == authsvc.ErrInvalidCredentials {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}
