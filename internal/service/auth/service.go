package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
)

var (
	// ErrInvalidCredentials неверный пароль оператора
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrInvalidToken токен не прошёл проверку
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrLoginDisabled хеш пароля оператора не настроен
	ErrLoginDisabled = errors.New("auth: operator login is not configured")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
}

// Claims содержимое JWT: sub = id пользователя, role = customer | operator
type Claims struct {
	Role string `json:"role"`
	jwt.StandardClaims
}

// TokenResponse выданный токен
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service выдача и проверка HS256-токенов
// Токены клиентов выпускает внешний сервис авторизации тем же секретом
type Service struct {
	secret       []byte
	passwordHash []byte
	ttl          time.Duration
	now          func() time.Time
	logger       Logger
}

func NewService(secret, adminPasswordHash string, ttl time.Duration, logger Logger) *Service {
	return &Service{
		secret:       []byte(secret),
		passwordHash: []byte(adminPasswordHash),
		ttl:          ttl,
		now:          time.Now,
		logger:       logger,
	}
}

// Login проверяет пароль оператора и выдаёт токен с ролью operator
func (s *Service) Login(password string) (*TokenResponse, error) {
	if len(s.passwordHash) == 0 {
		s.logger.Warn("Login: admin password hash is not configured")
		return nil, ErrLoginDisabled
	}

	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		s.logger.Warn("Login: operator login failed")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.Issue(domain.Principal{UserID: "operator", Role: domain.RoleOperator})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Login: operator token issued, expires at %s", expiresAt.Format(time.RFC3339))
	return &TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// Issue подписывает токен для principal
func (s *Service) Issue(p domain.Principal) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		Role: string(p.Role),
		StandardClaims: jwt.StandardClaims{
			Subject:   p.UserID,
			IssuedAt:  now.Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken проверяет подпись, срок действия и роль
func (s *Service) ParseToken(raw string) (domain.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return domain.Principal{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	role := domain.Role(claims.Role)
	switch role {
	case domain.RoleCustomer, domain.RoleOperator:
	default:
		return domain.Principal{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}

	return domain.Principal{UserID: claims.Subject, Role: role}, nil
}
