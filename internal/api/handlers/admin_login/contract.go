package admin_login

import (
	"github.com/waelosamahelmi/saroistavaloon/internal/service/auth"
)

type AuthService interface {
	Login(password string) (*auth.TokenResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
