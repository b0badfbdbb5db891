package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"accountbook/internal/auth"
	"accountbook/internal/cache"
	apperrors "accountbook/internal/errors"
	applog "accountbook/internal/log"
	"accountbook/internal/model"
	"accountbook/internal/repository"
)

const (
	bcryptCost        = 10
	minPasswordLength = 6
	maxPasswordBytes  = 72 // bcrypt input limit
	profileCacheTTL   = 5 * time.Minute
	profileKeyPrefix  = "user:profile:"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	validate        = validator.New()
)

// RegisterInput is the data needed to open an account.
type RegisterInput struct {
	Username string
	Password string
	Email    string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	User  *model.User
	Token string
}

// AuthService handles registration, login and token lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, userID uint) (*model.User, error)
	VerifyToken(ctx context.Context, claims *auth.Claims, userID uint) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	cache      cache.Store
	logger     *applog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, store cache.Store, logger *applog.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		cache:      store,
		logger:     logger.WithComponent(applog.ComponentAuth),
	}
}

func validateRegistration(in RegisterInput) error {
	if in.Username == "" || in.Password == "" || in.Email == "" {
		return apperrors.NewValidationError("用户名、密码和邮箱不能为空")
	}
	if !usernamePattern.MatchString(in.Username) {
		return apperrors.NewValidationError("用户名只能包含字母、数字和下划线，长度在3-20个字符")
	}
	if err := validate.Var(in.Email, "email"); err != nil {
		return apperrors.NewValidationError("邮箱格式不正确")
	}
	if len(in.Password) < minPasswordLength {
		return apperrors.NewValidationError("密码长度至少为%d个字符", minPasswordLength)
	}
	if len(in.Password) > maxPasswordBytes {
		return apperrors.NewValidationError("密码长度不能超过%d个字节", maxPasswordBytes)
	}
	return nil
}

// Register creates a user with a hashed password. Uniqueness is enforced by the
// database in a single insert; a collision is reported per column.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     in.Username,
		PasswordHash: string(hashedPassword),
		Email:        in.Email,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateError(ctx, in.Username)
		}
		s.logger.LogError(ctx, "register user", err, applog.OpCreate, nil)
		return nil, apperrors.NewPersistenceError("注册", err)
	}

	s.logger.InfoContext(ctx, "user registered", applog.FieldUserID, user.ID)
	return user, nil
}

// duplicateError works out which unique column collided.
func (s *authService) duplicateError(ctx context.Context, username string) error {
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return apperrors.NewValidationError("用户名已存在")
	}
	return apperrors.NewValidationError("邮箱已存在")
}

// Login verifies credentials and issues a bearer token.
func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("用户名和密码不能为空")
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.NewPersistenceError("登录", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	tokenID, token, err := s.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	if err := s.tokenStore.Record(ctx, tokenID, user.ID, s.jwtService.TTL()); err != nil {
		s.logger.LogError(ctx, "record token", err, applog.OpCreate, applog.NewFields().WithUser(user.ID))
	}

	return &LoginResult{User: user, Token: token}, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.NewValidationError("令牌不能为空")
	}
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return apperrors.ErrInvalidToken
	}
	if err := s.tokenStore.Revoke(ctx, claims.ID, s.jwtService.Remaining(claims)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Profile returns the public fields of a user, served from cache when possible.
func (s *authService) Profile(ctx context.Context, userID uint) (*model.User, error) {
	key := fmt.Sprintf("%s%d", profileKeyPrefix, userID)
	if cached, ok := cache.GetJSON[model.User](ctx, s.cache, key); ok {
		return &cached, nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.NewPersistenceError("获取用户信息", err)
	}

	_ = cache.SetJSON(ctx, s.cache, key, user, profileCacheTTL)
	return user, nil
}

// VerifyToken checks that parsed claims belong to userID and have not been revoked.
func (s *authService) VerifyToken(ctx context.Context, claims *auth.Claims, userID uint) error {
	if claims == nil || claims.UserID != userID {
		return apperrors.ErrInvalidToken
	}
	revoked, err := s.tokenStore.IsRevoked(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("check token: %w", err)
	}
	if revoked {
		return apperrors.ErrInvalidToken
	}
	return nil
}
