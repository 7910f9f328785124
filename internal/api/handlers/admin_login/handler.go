package admin_login

import (
	"errors"
	"net/http"

	"github.com/waelosamahelmi/saroistavaloon/internal/api/handlers"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/auth"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidCredentials = "неверный пароль"
	msgLoginDisabled      = "вход оператора не настроен"
)

type Handler struct {
	service AuthService
	logger  Logger
}

func NewHandler(service AuthService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/login
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/login - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := handlers.Validate(&req); err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	token, err := h.service.Login(req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			h.logger.Warn("POST /admin/login - Invalid credentials")
			handlers.RespondUnauthorized(w, msgInvalidCredentials)

		case errors.Is(err, auth.ErrLoginDisabled):
			h.logger.Warn("POST /admin/login - Operator login is not configured")
			handlers.RespondForbidden(w, msgLoginDisabled)

		default:
			h.logger.Error("POST /admin/login - Failed to issue token: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/login - Operator token issued, expires_at=%s", token.ExpiresAt)
	handlers.RespondJSON(w, http.StatusOK, token)
}
