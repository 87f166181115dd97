package file

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/ichigozero/todokit/backend/usersvc"
)

type userDocument struct {
	Users []usersvc.User `json:"users"`
}

type userRepository struct {
	mu   sync.Mutex
	path string
}

// NewUserRepository returns a UserRepository backed by a single JSON
// file, read in full before each operation and rewritten whole on
// Create.
func NewUserRepository(path string) usersvc.UserRepository {
	return &userRepository{path: path}
}

func (u *userRepository) load() (*userDocument, error) {
	doc := &userDocument{Users: []usersvc.User{}}

	data, err := os.ReadFile(u.path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	if doc.Users == nil {
		doc.Users = []usersvc.User{}
	}
	return doc, nil
}

func (u *userRepository) store(doc *userDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(u.path, data, 0600)
}

func (u *userRepository) Find(username string) (usersvc.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	doc, err := u.load()
	if err != nil {
		return usersvc.User{}, err
	}

	for _, user := range doc.Users {
		if user.Username == username {
			return user, nil
		}
	}
	return usersvc.User{}, usersvc.ErrUserNotFound
}

func (u *userRepository) Create(user usersvc.User) (usersvc.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	doc, err := u.load()
	if err != nil {
		return usersvc.User{}, err
	}

	doc.Users = append(doc.Users, user)
	if err := u.store(doc); err != nil {
		return usersvc.User{}, err
	}

	return user, nil
}
