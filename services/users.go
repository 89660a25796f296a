// Package services holds the user business rules: registration with unique
// email, update, listing, lookup and login.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"usuarios-service/auth"
	"usuarios-service/cache"
	"usuarios-service/models"
	"usuarios-service/repository"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	listCacheKey    = "usuarios:all"
	userCachePrefix = "usuario:"
	listCacheTTL    = 5 * time.Minute
	userCacheTTL    = 10 * time.Minute
)

// UserRepository is the persistence the service needs.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	Update(ctx context.Context, u *models.User) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
}

type UserService struct {
	repo       UserRepository
	cache      cache.Store
	tokens     *auth.TokenIssuer
	bcryptCost int
	now        func() time.Time

	// writes counts committed mutations. A read that raced a write does not
	// leave its result cached.
	writes atomic.Uint64
}

func NewUserService(repo UserRepository, store cache.Store, tokens *auth.TokenIssuer, bcryptCost int) *UserService {
	if store == nil {
		store = cache.Nop{}
	}
	return &UserService{
		repo:       repo,
		cache:      store,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// Register stores a new user with a hashed password.
func (s *UserService) Register(ctx context.Context, req models.UserRequest) (*models.User, error) {
	_, err := s.repo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	u, err := s.repo.Create(ctx, &models.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  hash,
		Photo:     req.Photo,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.invalidate(listCacheKey)
	return u, nil
}

// Update replaces name, email, password and photo of the user req.ID.
func (s *UserService) Update(ctx context.Context, req models.UserRequest) (*models.User, error) {
	current, err := s.repo.FindByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	owner, err := s.repo.FindByEmail(ctx, req.Email)
	switch {
	case err == nil && owner.ID != current.ID:
		return nil, ErrUserExists
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	current.Name = req.Name
	current.Email = req.Email
	current.Password = hash
	current.Photo = req.Photo
	current.UpdatedAt = s.now()

	u, err := s.repo.Update(ctx, current)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	s.invalidate(listCacheKey, userCacheKey(u.ID))
	return u, nil
}

// List returns all users, served from cache when possible.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	if cached, err := s.cache.Get(listCacheKey); err == nil {
		var users []models.User
		if err := json.Unmarshal(cached, &users); err == nil {
			return users, nil
		}
	}

	seen := s.writes.Load()
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	s.fill(listCacheKey, users, listCacheTTL, seen)
	return users, nil
}

// Get returns the user with id, served from cache when possible.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	key := userCacheKey(id)
	if cached, err := s.cache.Get(key); err == nil {
		var u models.User
		if err := json.Unmarshal(cached, &u); err == nil {
			return &u, nil
		}
	}

	seen := s.writes.Load()
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	s.fill(key, u, userCacheTTL, seen)
	return u, nil
}

// Authenticate checks email and password against the stored hash.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates and mints a bearer token.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	u, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.LoginResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Photo: u.Photo,
		Token: "Bearer " + token,
	}, nil
}

// EnsureUser registers req unless its email is already taken. It reports
// whether a user was created.
func (s *UserService) EnsureUser(ctx context.Context, req models.UserRequest) (bool, error) {
	_, err := s.Register(ctx, req)
	if errors.Is(err, ErrUserExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hash), nil
}

func userCacheKey(id int64) string {
	return userCachePrefix + strconv.FormatInt(id, 10)
}

func (s *UserService) invalidate(keys ...string) {
	s.writes.Add(1)
	s.cache.Invalidate(keys...)
}

// fill caches v under key unless a write was committed after seen was read.
// The check runs after Set so a write racing the Set still drops the entry.
func (s *UserService) fill(key string, v any, ttl time.Duration, seen uint64) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = s.cache.Set(key, data, ttl)
	if s.writes.Load() != seen {
		s.cache.Invalidate(key)
	}
}
