package controller

import (
	"context"
	"net/http"

	"github.com/vibast-solutions/ms-go-shop/app/dto"
	httpdto "github.com/vibast-solutions/ms-go-shop/app/dto/http"
	"github.com/vibast-solutions/ms-go-shop/app/middleware"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type tokenService interface {
	Refresh(ctx context.Context, accessToken, refreshToken string) (*dto.TokenPair, error)
	Revoke(ctx context.Context, email string) error
}

type TokenController struct {
	tokenService tokenService
}

func NewTokenController(tokenService tokenService) *TokenController {
	return &TokenController{tokenService: tokenService}
}

func (c *TokenController) Refresh(ctx echo.Context) error {
	var req httpdto.RefreshTokenRequest
	if err := bindRequest(ctx, &req); err != nil {
		return badRequest(ctx, err, "Refresh token")
	}

	pair, err := c.tokenService.Refresh(ctx.Request().Context(), req.AccessToken, req.RefreshToken)
	if err != nil {
		return respondError(ctx, err, nil, "Refresh token")
	}

	logrus.WithField("user_id", pair.UserID).Info("Bearer token refreshed")
	return ctx.JSON(http.StatusOK, newTokenResponse(pair))
}

// Revoke clears the refresh token of the authenticated caller, identified by
// the name claim of the bearer token.
func (c *TokenController) Revoke(ctx echo.Context) error {
	email, _ := ctx.Get(middleware.UserEmailKey).(string)

	if err := c.tokenService.Revoke(ctx.Request().Context(), email); err != nil {
		return respondError(ctx, err, logrus.Fields{"email": email}, "Revoke")
	}

	logrus.WithField("email", email).Info("Refresh token revoked")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: "refresh token revoked"})
}
