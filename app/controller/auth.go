package controller

import (
	"context"
	"net/http"
	"net/url"

	"github.com/vibast-solutions/ms-go-shop/app/dto"
	httpdto "github.com/vibast-solutions/ms-go-shop/app/dto/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type authService interface {
	Register(ctx context.Context, name, email, password string) (*dto.RegisterResult, error)
	ConfirmEmail(ctx context.Context, email, confirmToken string) error
	Login(ctx context.Context, email, password string) (*dto.TokenPair, error)
	ForgotPassword(ctx context.Context, email string) (*dto.ForgotPasswordResult, error)
	ResetPassword(ctx context.Context, email, newPassword, resetToken string) error
}

type accountNotifier interface {
	Confirmation(email, link string)
	PasswordReset(email, link string)
}

type AuthController struct {
	authService   authService
	notifier      accountNotifier
	publicBaseURL string
}

// NewAuthController builds email links from publicBaseURL, or from the
// request scheme and host when it is empty.
func NewAuthController(authService authService, notifier accountNotifier, publicBaseURL string) *AuthController {
	return &AuthController{
		authService:   authService,
		notifier:      notifier,
		publicBaseURL: publicBaseURL,
	}
}

func (c *AuthController) Register(ctx echo.Context) error {
	var req httpdto.RegisterRequest
	if err := bindRequest(ctx, &req); err != nil {
		return badRequest(ctx, err, "Register")
	}

	logrus.WithField("email", req.Email).Info("Register request received")
	result, err := c.authService.Register(ctx.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return respondError(ctx, err, logrus.Fields{"email": req.Email}, "Register")
	}

	if !result.User.IsEmailConfirmed {
		c.notifier.Confirmation(req.Email, c.link(ctx, "/api/auth/confirmemail", req.Email, result.ConfirmToken))
	}

	logrus.WithFields(logrus.Fields{
		"user_id": result.User.ID,
		"email":   result.User.Email,
	}).Info("User registered")

	message := "registration successful, please confirm your email"
	if result.User.IsEmailConfirmed {
		message = "registration successful"
	}
	return ctx.JSON(http.StatusCreated, httpdto.RegisterResponse{
		UserID:  result.User.ID,
		Email:   result.User.Email,
		Message: message,
	})
}

func (c *AuthController) ConfirmEmail(ctx echo.Context) error {
	var req httpdto.ConfirmEmailRequest
	if err := bindRequest(ctx, &req); err != nil {
		return badRequest(ctx, err, "Confirm email")
	}

	if err := c.authService.ConfirmEmail(ctx.Request().Context(), req.Email, req.Token); err != nil {
		return respondError(ctx, err, logrus.Fields{"email": req.Email}, "Confirm email")
	}

	logrus.WithField("email", req.Email).Info("Email confirmed")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: "email confirmed"})
}

func (c *AuthController) Login(ctx echo.Context) error {
	var req httpdto.LoginRequest
	if err := bindRequest(ctx, &req); err != nil {
		return badRequest(ctx, err, "Login")
	}

	logrus.WithField("email", req.Email).Info("Login request received")
	pair, err := c.authService.Login(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(ctx, err, logrus.Fields{"email": req.Email}, "Login")
	}

	logrus.WithField("user_id", pair.UserID).Info("Login successful")
	return ctx.JSON(http.StatusOK, newTokenResponse(pair))
}

func (c *AuthController) ForgotPassword(ctx echo.Context) error {
	req := httpdto.ForgotPasswordRequest{Email: ctx.QueryParam("email")}
	if err := ctx.Validate(&req); err != nil {
		return badRequest(ctx, err, "Forgot password")
	}

	logrus.WithField("email", req.Email).Info("Forgot password request received")
	result, err := c.authService.ForgotPassword(ctx.Request().Context(), req.Email)
	if err != nil {
		return respondError(ctx, err, logrus.Fields{"email": req.Email}, "Forgot password")
	}

	c.notifier.PasswordReset(req.Email, c.link(ctx, "/api/auth/resetpassword", req.Email, result.ResetToken))
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: "password reset email sent"})
}

// ResetPasswordForm is the target of the emailed link. It echoes the query
// back in the shape ResetPassword expects.
func (c *AuthController) ResetPasswordForm(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, httpdto.ResetPasswordFormResponse{
		Email:       ctx.QueryParam("email"),
		NewPassword: "",
		ResetToken:  ctx.QueryParam("token"),
	})
}

func (c *AuthController) ResetPassword(ctx echo.Context) error {
	var req httpdto.ResetPasswordRequest
	if err := bindRequest(ctx, &req); err != nil {
		return badRequest(ctx, err, "Reset password")
	}

	logrus.WithField("email", req.Email).Info("Reset password request received")
	if err := c.authService.ResetPassword(ctx.Request().Context(), req.Email, req.NewPassword, req.ResetToken); err != nil {
		return respondError(ctx, err, logrus.Fields{"email": req.Email}, "Reset password")
	}

	logrus.WithField("email", req.Email).Info("Password reset")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: "password has been reset"})
}

func (c *AuthController) link(ctx echo.Context, path, email, token string) string {
	base := c.publicBaseURL
	if base == "" {
		base = ctx.Scheme() + "://" + ctx.Request().Host
	}
	query := url.Values{}
	query.Set("email", email)
	query.Set("token", token)
	return base + path + "?" + query.Encode()
}

func newTokenResponse(pair *dto.TokenPair) httpdto.TokenResponse {
	return httpdto.TokenResponse{
		JWTToken:     pair.AccessToken,
		Expiration:   pair.ExpiresAt,
		RefreshToken: pair.RefreshToken,
		UserID:       pair.UserID,
	}
}
