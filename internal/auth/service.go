package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kiran0823/tour-booking-backend/config"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidRole        = errors.New("role must be tourist or provider")
)

type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*User, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	GetUserByID(ctx context.Context, id uint) (*User, error)
}

type service struct {
	repo Repository
	cfg  *config.Config
}

func NewService(repo Repository, cfg *config.Config) Service {
	return &service{repo: repo, cfg: cfg}
}

// ===========================
// 🎯 Register
func (s *service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = RoleTourist
	}
	// Admins are seeded, never self-registered.
	if role != RoleTourist && role != RoleProvider {
		return nil, ErrInvalidRole
	}

	if _, err := s.repo.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		FullName:     req.FullName,
		Email:        strings.ToLower(req.Email),
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ===========================
// 🔑 Login
func (s *service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(time.Duration(s.cfg.JWTAccessTTLHours) * time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.JWTAccessSecret))
	if err != nil {
		return nil, err
	}

	return &LoginResponse{AccessToken: signed, User: *user}, nil
}

func (s *service) GetUserByID(ctx context.Context, id uint) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// SeedAdminUser creates the bootstrap admin account if no admin exists yet.
func SeedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&User{}).Where("role = ?", RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("ChangeMe123!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &User{
		FullName:     "Platform Admin",
		Email:        "admin@tourbooking.local",
		PasswordHash: string(hash),
		Role:         RoleAdmin,
		IsActive:     true,
	}
	return db.Create(admin).Error
}
