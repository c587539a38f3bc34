package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/stablefront/internal/logger"
	"github.com/stablefront/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 商户登录认证服务
type AuthService struct {
	merchantRepo repository.MerchantRepository
	secret       []byte
	expire       time.Duration
}

// NewAuthService 创建认证服务
func NewAuthService(merchantRepo repository.MerchantRepository, secret string, expire time.Duration) *AuthService {
	if expire <= 0 {
		expire = 24 * time.Hour
	}
	return &AuthService{
		merchantRepo: merchantRepo,
		secret:       []byte(secret),
		expire:       expire,
	}
}

// MerchantClaims 商户 JWT 声明
type MerchantClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Login 校验登录名与密码，签发 JWT
func (s *AuthService) Login(username, password string) (string, error) {
	merchant, err := s.merchantRepo.GetByUsername(username)
	if err != nil {
		return "", err
	}
	if merchant == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(merchant.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := MerchantClaims{
		Username: merchant.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(merchant.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expire)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}

	logger.Infow("merchant_login", "username", merchant.Username)
	return token, nil
}

// ParseToken 解析并校验 JWT
func (s *AuthService) ParseToken(tokenString string) (*MerchantClaims, error) {
	claims := &MerchantClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// MerchantID 从声明中取出商户 ID
func (c *MerchantClaims) MerchantID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
