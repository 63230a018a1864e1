package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"DrinkBuddy/internal/model"
	"DrinkBuddy/internal/pkg"
	"DrinkBuddy/internal/repository/db"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const maxUsernameLen = 32

var ErrUsernameTooLong = newError(KindBadInput, "username_too_long", "username must be at most 32 characters")

type UserService struct {
	repo   *db.UserRepository
	signer *pkg.Signer
	cost   int
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

func NewUserService(gdb *gorm.DB, signer *pkg.Signer) *UserService {
	return &UserService{
		repo:   &db.UserRepository{DB: gdb},
		signer: signer,
		cost:   bcrypt.DefaultCost,
	}
}

// Register 用户名去空白后大小写不敏感唯一
func (s *UserService) Register(ctx context.Context, username, password string) (*model.User, error) {
	name := model.NormalizeUsername(username)
	if name == "" || password == "" {
		return nil, ErrCredentialsEmpty
	}
	if utf8.RuneCountInString(name) > maxUsernameLen {
		return nil, ErrUsernameTooLong
	}

	exists, err := s.repo.ExistsByUsername(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:      name,
		UsernameLower: model.UsernameKey(name),
		PasswordHash:  string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// 并发注册同名，唯一索引兜底
		if errors.Is(err, db.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login 用户不存在和密码错误返回同一个错误
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	name := model.NormalizeUsername(username)
	if name == "" || password == "" {
		return nil, ErrCredentialsEmpty
	}

	user, err := s.repo.FindByUsername(ctx, name)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.signer.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// Profile 当前用户的最新资料，账号已不存在时返回 NotFound
func (s *UserService) Profile(ctx context.Context, userID uint64) (*model.User, error) {
	if userID == 0 {
		return nil, ErrInvalidID
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
