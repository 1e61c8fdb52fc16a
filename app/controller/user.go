package controller

import (
	"context"
	"net/http"

	httpdto "github.com/vibast-solutions/ms-go-shop/app/dto/http"
	"github.com/vibast-solutions/ms-go-shop/app/entity"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type userService interface {
	GetAll(ctx context.Context) ([]*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	Create(ctx context.Context, name, email, password string) (*entity.User, error)
	Update(ctx context.Context, id, name string) (*entity.User, error)
	Delete(ctx context.Context, id, authorization string) error
}

type UserController struct {
	userService userService
}

func NewUserController(userService userService) *UserController {
	return &UserController{userService: userService}
}

func (c *UserController) GetAll(ctx echo.Context) error {
	users, err := c.userService.GetAll(ctx.Request().Context())
	if err != nil {
		return respondError(ctx, err, nil, "List users")
	}
	return ctx.JSON(http.StatusOK, httpdto.NewUserListResponse(users))
}

func (c *UserController) GetByID(ctx echo.Context) error {
	id := ctx.Param("id")
	user, err := c.userService.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return respondError(ctx, err, logrus.Fields{"user_id": id}, "Get user")
	}
	return ctx.JSON(http.StatusOK, httpdto.NewUserResponse(user))
}

func (c *UserController) Create(ctx echo.Context) error {
	var req httpdto.CreateUserRequest
	if err := bindRequest(ctx, &req); err != nil {
		return badRequest(ctx, err, "Create user")
	}

	user, err := c.userService.Create(ctx.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return respondError(ctx, err, logrus.Fields{"email": req.Email}, "Create user")
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"created_by": callerID(ctx),
	}).Info("User created")
	return ctx.JSON(http.StatusCreated, httpdto.NewUserResponse(user))
}

func (c *UserController) Update(ctx echo.Context) error {
	var req httpdto.UpdateUserRequest
	if err := bindRequest(ctx, &req); err != nil {
		return badRequest(ctx, err, "Update user")
	}

	user, err := c.userService.Update(ctx.Request().Context(), req.ID, req.Name)
	if err != nil {
		return respondError(ctx, err, logrus.Fields{"user_id": req.ID}, "Update user")
	}
	return ctx.JSON(http.StatusOK, httpdto.NewUserResponse(user))
}

// Delete forwards the caller's Authorization header to the product service
// so the cascade runs under the same identity.
func (c *UserController) Delete(ctx echo.Context) error {
	id := ctx.Param("id")
	authorization := ctx.Request().Header.Get(echo.HeaderAuthorization)

	logrus.WithField("user_id", id).Info("Delete user request received")
	if err := c.userService.Delete(ctx.Request().Context(), id, authorization); err != nil {
		return respondError(ctx, err, logrus.Fields{"user_id": id}, "Delete user")
	}

	logrus.WithField("user_id", id).Info("User deleted")
	return ctx.NoContent(http.StatusNoContent)
}
