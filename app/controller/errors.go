package controller

import (
	"errors"
	"net/http"

	httpdto "github.com/vibast-solutions/ms-go-shop/app/dto/http"
	"github.com/vibast-solutions/ms-go-shop/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindDuplicateEmail:
		return http.StatusConflict
	case service.KindInvalidCredentials, service.KindInvalidRefreshToken, service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindEmailNotConfirmed, service.KindForbidden:
		return http.StatusForbidden
	case service.KindAlreadyConfirmed, service.KindInvalidToken, service.KindResetExpired, service.KindInvalidInput:
		return http.StatusBadRequest
	case service.KindDependencyFailed:
		return http.StatusBadGateway
	case service.KindDependencyTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the JSON error for err. Business failures are logged at
// Warn with their kind, anything else at Error behind a generic message.
func respondError(ctx echo.Context, err error, fields logrus.Fields, action string) error {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) || svcErr.Kind == service.KindInternal {
		logrus.WithError(err).WithFields(fields).Error(action + " failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(fields).WithField("kind", svcErr.Kind.String()).Warn(action + " failed: " + svcErr.Message)
	return ctx.JSON(statusFor(svcErr.Kind), httpdto.ErrorResponse{Error: svcErr.Message})
}

var errInvalidBody = errors.New("invalid request body")

// bindRequest binds ctx into req and runs the registered validator.
func bindRequest(ctx echo.Context, req interface{}) error {
	if err := ctx.Bind(req); err != nil {
		logrus.WithError(err).Debug("Failed to bind request")
		return errInvalidBody
	}
	return ctx.Validate(req)
}

func badRequest(ctx echo.Context, err error, action string) error {
	logrus.WithError(err).Debug(action + " request rejected")
	return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
}
