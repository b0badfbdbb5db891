package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"accountbook/internal/model"
	"accountbook/internal/service"
)

// UserHandler handles registration, login and profile endpoints.
type UserHandler struct {
	authService service.AuthService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(authService service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email" validate:"required"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LogoutRequest carries the token to revoke. It may also arrive as a bearer header.
type LogoutRequest struct {
	Token string `json:"token"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  uint   `json:"user_id"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
	Token   string      `json:"token"`
}

// MessageResponse is a bare confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// Register godoc
// @Summary Register a new user
// @Tags user
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 200 {object} RegisterResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /user/register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bind(c, &req, "用户名、密码和邮箱不能为空"); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, RegisterResponse{Message: "注册成功", UserID: user.ID})
}

// Login godoc
// @Summary Log in
// @Tags user
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /user/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req, "用户名和密码不能为空"); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, LoginResponse{Message: "登录成功", User: result.User, Token: result.Token})
}

// Logout godoc
// @Summary Revoke a token
// @Tags user
// @Accept json
// @Produce json
// @Param request body LogoutRequest false "Token to revoke"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /user/logout [post]
func (h *UserHandler) Logout(c echo.Context) error {
	var req LogoutRequest
	if err := bind(c, &req, "令牌不能为空"); err != nil {
		return err
	}
	if req.Token == "" {
		req.Token = strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	}

	if err := h.authService.Logout(c.Request().Context(), req.Token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "已退出登录"})
}

// Profile godoc
// @Summary Get the caller's profile
// @Tags user
// @Produce json
// @Param user_id query int true "User ID"
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	user, err := h.authService.Profile(c.Request().Context(), currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
