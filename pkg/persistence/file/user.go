package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/persistence"
)

// UserRepository stores users as one JSON file per user, keyed by username.
type UserRepository struct {
	root string
}

func NewUserRepository(root string) *UserRepository {
	return &UserRepository{root: root}
}

func (ur *UserRepository) Users(ctx context.Context) ([]*models.User, error) {
	dir := path.Join(ur.root, "users")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []*models.User{}, nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list user files: %w", err)
	}

	users := make([]*models.User, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		username := file[:len(file)-5]

		user, err := ur.UserByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("failed to load user %s: %w", username, err)
		}

		users = append(users, user)
	}

	return users, nil
}

func (ur *UserRepository) SaveUser(_ context.Context, user *models.User) error {
	err := os.MkdirAll(path.Join(ur.root, "users"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create users directory: %w", err)
	}

	data, err := json.MarshalIndent(userDocument(user), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user %s: %w", user.Username, err)
	}

	filePath := path.Join(ur.root, "users", user.Username+".json")

	return os.WriteFile(filePath, data, 0600)
}

func (ur *UserRepository) UserByUsername(_ context.Context, username string) (*models.User, error) {
	filePath := filepath.Clean(path.Join(ur.root, "users", username+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to fetch user %s: %w", username, err)
	}

	var document storedUser

	err = json.Unmarshal(body, &document)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal user %s: %w", username, err)
	}

	return document.toModel(), nil
}

func (ur *UserRepository) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := ur.Users(ctx)
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		if user.Email == email {
			return user, nil
		}
	}

	return nil, persistence.ErrUserNotFound
}

// storedUser is the on-disk shape. The model hides the hash from JSON, so
// the repository keeps its own serialization.
type storedUser struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"hashed_password"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

func userDocument(user *models.User) storedUser {
	return storedUser{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		HashedPassword: user.HashedPassword,
		IsActive:       user.IsActive,
		CreatedAt:      user.CreatedAt,
	}
}

func (d storedUser) toModel() *models.User {
	return &models.User{
		ID:             d.ID,
		Username:       d.Username,
		Email:          d.Email,
		HashedPassword: d.HashedPassword,
		IsActive:       d.IsActive,
		CreatedAt:      d.CreatedAt,
	}
}
