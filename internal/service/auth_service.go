package service

import (
	"context"
	"strings"
	"time"

	"printscrap/internal/apierror"
	"printscrap/internal/config"
	"printscrap/internal/dto"
	"printscrap/internal/model"
	"printscrap/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Token types carried in the "token_type" claim.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

const bcryptCost = 12

type AuthService interface {
	// Register creates a client account together with its trial subscription.
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	Me(ctx context.Context, userID uint) (*dto.UserResponse, error)

	ListTenants(ctx context.Context, search string, page dto.PageQuery) (*dto.Page[dto.UserResponse], error)
	SetActive(ctx context.Context, id uint, active bool) (*dto.UserResponse, error)
}

type authService struct {
	users    repository.UserRepository
	subs     SubscriptionService
	notifier *Notifier
	cfg      *config.Config
	now      func() time.Time
}

func NewAuthService(users repository.UserRepository, subs SubscriptionService, notifier *Notifier, cfg *config.Config) AuthService {
	return &authService{users: users, subs: subs, notifier: notifier, cfg: cfg, now: time.Now}
}

// HashPassword returns the bcrypt hash stored for a password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := contactValidator.Var(email, "required,email"); err != nil {
		return nil, apierror.Validation("email", "must be a valid email address")
	}
	if len(req.Password) < 8 {
		return nil, apierror.Validation("password", "must be at least 8 characters")
	}
	name, company := strings.TrimSpace(req.Name), strings.TrimSpace(req.CompanyName)
	if name == "" {
		return nil, apierror.Validation("name", "is required")
	}
	if company == "" {
		return nil, apierror.Validation("companyName", "is required")
	}
	phone, err := normalizePhone("phone", derefOr(req.Phone, ""), s.cfg.DefaultPhoneRegion)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, apierror.Storage("hash password", err)
	}

	user := &model.User{
		Name:         name,
		CompanyName:  company,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         model.RoleClient,
		Active:       true,
	}
	var sub *model.Subscription
	err = runTx(ctx, s.users.DB(), func(tx *gorm.DB) error {
		if err := s.users.CreateTx(tx, user); err != nil {
			return err
		}
		var err error
		sub, err = s.subs.StartTrialTx(tx, user.ID)
		return err
	})
	if err != nil {
		return nil, writeErr(err, "register user", "an account with this email already exists")
	}
	user.Subscription = sub

	s.notifier.Welcome(ctx, user, sub)
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.Unauthorized("invalid email or password")
		}
		return nil, apierror.Storage("load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierror.Unauthorized("invalid email or password")
	}
	if !user.Active {
		return nil, apierror.Forbidden("account is disabled")
	}
	return s.issueFresh(ctx, user.ID)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apierror.Unauthorized("refresh token invalid or expired")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["token_type"] != TokenRefresh {
		return nil, apierror.Unauthorized("not a refresh token")
	}
	// JSON numbers decode as float64.
	uid, ok := claims["user_id"].(float64)
	if !ok || uid <= 0 {
		return nil, apierror.Unauthorized("malformed token")
	}
	return s.issueFresh(ctx, uint(uid))
}

func (s *authService) Me(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user", userID)
	}
	resp := s.userResponse(user)
	return &resp, nil
}

// ── Admin ─────────────────────────────────────────────────────────────────────

func (s *authService) ListTenants(ctx context.Context, search string, page dto.PageQuery) (*dto.Page[dto.UserResponse], error) {
	page.Normalize()
	users, total, err := s.users.ListClients(ctx, strings.TrimSpace(search), page.Offset(), page.Limit)
	if err != nil {
		return nil, apierror.Storage("list tenants", err)
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, s.userResponse(&users[i]))
	}
	return &dto.Page[dto.UserResponse]{Data: out, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

// SetActive enables or disables a client account. Disabled clients cannot log
// in; tokens already issued stay valid until they expire.
func (s *authService) SetActive(ctx context.Context, id uint, active bool) (*dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "user", id)
	}
	if user.Role != model.RoleClient {
		return nil, apierror.Forbidden("only client accounts can be enabled or disabled")
	}
	if err := s.users.SetActive(ctx, id, active); err != nil {
		return nil, apierror.Storage("update user", err)
	}
	user.Active = active
	resp := s.userResponse(user)
	return &resp, nil
}

// ── Tokens ────────────────────────────────────────────────────────────────────

// issueFresh reloads the user so the response carries the current subscription.
func (s *authService) issueFresh(ctx context.Context, userID uint) (*dto.LoginResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.Unauthorized("user not found")
		}
		return nil, apierror.Storage("load user", err)
	}
	if !user.Active {
		return nil, apierror.Forbidden("account is disabled")
	}
	return s.issue(user)
}

func (s *authService) issue(user *model.User) (*dto.LoginResponse, error) {
	access, err := s.generateToken(user, TokenAccess, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, apierror.Storage("sign token", err)
	}
	refresh, err := s.generateToken(user, TokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, apierror.Storage("sign token", err)
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         s.userResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.User, tokenType string, duration time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id":    user.ID,
		"email":      user.Email,
		"role":       user.Role,
		"token_type": tokenType,
		"exp":        now.Add(duration).Unix(),
		"iat":        now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *authService) userResponse(u *model.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		CompanyName: u.CompanyName,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        u.Role,
		Active:      u.Active,
		CreatedAt:   formatTime(u.CreatedAt),
	}
	if u.Subscription != nil && u.Subscription.ID != 0 {
		sub := subscriptionToResponse(u.Subscription, s.now())
		resp.Subscription = &sub
	}
	return resp
}
