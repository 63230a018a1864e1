package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"DrinkBuddy/internal/model"
	"DrinkBuddy/internal/pkg"
	"DrinkBuddy/internal/repository/db"

	"gorm.io/gorm"
)

// Identity 已认证的调用方
type Identity struct {
	ID        uint64
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

// RevocationStore token 黑名单，redis 实现见 repository/redis
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthService 校验 bearer token 并判断发起人身份
type AuthService struct {
	db      *gorm.DB
	signer  *pkg.Signer
	revoked RevocationStore
	now     func() time.Time
}

// NewAuthService revoked 可以为 nil，此时只做签名校验
func NewAuthService(gdb *gorm.DB, signer *pkg.Signer, revoked RevocationStore) *AuthService {
	return &AuthService{db: gdb, signer: signer, revoked: revoked, now: time.Now}
}

// Authenticate 校验 token，解析出 {id, username}
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	claims, err := s.signer.ParseAccess(token)
	if err != nil {
		if errors.Is(err, pkg.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if s.revoked != nil && claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}
	id := &Identity{
		ID:       claims.UserID,
		Username: claims.Username,
		TokenID:  claims.ID,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// AuthenticateOptional 读接口用：没带 token 或 token 无效都视为匿名，不报错
func (s *AuthService) AuthenticateOptional(ctx context.Context, token string) *Identity {
	if token == "" {
		return nil
	}
	id, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil
	}
	return id
}

// Logout 吊销当前 token；没有配置 redis 时 token 只能等自然过期
func (s *AuthService) Logout(ctx context.Context, id *Identity) error {
	if s.revoked == nil || id == nil || id.TokenID == "" {
		return nil
	}
	return s.revoked.Revoke(ctx, id.TokenID, id.ExpiresAt.Sub(s.now()))
}

// AssertHost 聚会不存在返回 NotFound，调用方不是发起人返回 Forbidden
func (s *AuthService) AssertHost(ctx context.Context, meetupID, callerID uint64) error {
	if meetupID == 0 {
		return ErrInvalidID
	}
	hostID, err := (&db.MeetupRepository{DB: s.db}).HostID(ctx, meetupID)
	if err != nil {
		if db.IsNotFound(err) {
			return ErrMeetupNotFound
		}
		return fmt.Errorf("load meetup %d: %w", meetupID, err)
	}
	if hostID != callerID {
		return ErrNotHost
	}
	return nil
}

// loadAsHost 事务内调用时 lock=true，对聚会行加锁
func loadAsHost(ctx context.Context, repo *db.MeetupRepository, meetupID, callerID uint64, lock bool) (*model.Meetup, error) {
	m, err := loadMeetup(ctx, repo, meetupID, lock)
	if err != nil {
		return nil, err
	}
	if !m.IsHost(callerID) {
		return nil, ErrNotHost
	}
	return m, nil
}

func loadMeetup(ctx context.Context, repo *db.MeetupRepository, meetupID uint64, lock bool) (*model.Meetup, error) {
	if meetupID == 0 {
		return nil, ErrInvalidID
	}
	var (
		m   *model.Meetup
		err error
	)
	if lock {
		m, err = repo.FindByIDForUpdate(ctx, meetupID)
	} else {
		m, err = repo.FindByID(ctx, meetupID)
	}
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrMeetupNotFound
		}
		return nil, fmt.Errorf("load meetup %d: %w", meetupID, err)
	}
	return m, nil
}
