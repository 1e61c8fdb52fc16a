package controller

import (
	"net/http"

	"github.com/vibast-solutions/ms-go-shop/app/catalog"
	httpdto "github.com/vibast-solutions/ms-go-shop/app/dto/http"
	"github.com/vibast-solutions/ms-go-shop/app/entity"
	"github.com/vibast-solutions/ms-go-shop/app/mediator"
	"github.com/vibast-solutions/ms-go-shop/app/middleware"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// ProductController translates HTTP requests into catalog requests and sends
// them through the mediator.
type ProductController struct {
	mediator *mediator.Mediator
}

func NewProductController(m *mediator.Mediator) *ProductController {
	return &ProductController{mediator: m}
}

func (c *ProductController) GetAll(ctx echo.Context) error {
	products, err := mediator.Send[catalog.GetAllProducts, []*entity.Product](
		ctx.Request().Context(), c.mediator, catalog.GetAllProducts{})
	if err != nil {
		return respondError(ctx, err, nil, "List products")
	}
	return ctx.JSON(http.StatusOK, products)
}

func (c *ProductController) GetFilteredSorted(ctx echo.Context) error {
	var req httpdto.FilterSortRequest
	if err := bindRequest(ctx, &req); err != nil {
		return badRequest(ctx, err, "Filter products")
	}

	products, err := mediator.Send[catalog.GetFilteredSortedProducts, []*entity.Product](
		ctx.Request().Context(), c.mediator, catalog.GetFilteredSortedProducts{
			Filters:  req.Filters,
			Sorts:    req.Sorts,
			Page:     req.Page,
			PageSize: req.PageSize,
		})
	if err != nil {
		return respondError(ctx, err, logrus.Fields{"filters": req.Filters, "sorts": req.Sorts}, "Filter products")
	}
	return ctx.JSON(http.StatusOK, products)
}

func (c *ProductController) GetByID(ctx echo.Context) error {
	id := ctx.Param("id")
	product, err := mediator.Send[catalog.GetProductByID, *entity.Product](
		ctx.Request().Context(), c.mediator, catalog.GetProductByID{ID: id})
	if err != nil {
		return respondError(ctx, err, logrus.Fields{"product_id": id}, "Get product")
	}
	return ctx.JSON(http.StatusOK, product)
}

func (c *ProductController) Create(ctx echo.Context) error {
	var req httpdto.CreateProductRequest
	if err := bindRequest(ctx, &req); err != nil {
		return badRequest(ctx, err, "Create product")
	}

	userID := callerID(ctx)
	product, err := mediator.Send[catalog.CreateProduct, *entity.Product](
		ctx.Request().Context(), c.mediator, catalog.CreateProduct{
			UserID:      userID,
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			IsAvailable: req.IsAvailable,
			CreatorID:   req.CreatorID,
		})
	if err != nil {
		return respondError(ctx, err, logrus.Fields{"user_id": userID}, "Create product")
	}
	return ctx.JSON(http.StatusCreated, product)
}

func (c *ProductController) Update(ctx echo.Context) error {
	var req httpdto.UpdateProductRequest
	if err := bindRequest(ctx, &req); err != nil {
		return badRequest(ctx, err, "Update product")
	}

	userID := callerID(ctx)
	product, err := mediator.Send[catalog.UpdateProduct, *entity.Product](
		ctx.Request().Context(), c.mediator, catalog.UpdateProduct{
			UserID:      userID,
			ID:          req.ID,
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			IsAvailable: req.IsAvailable,
		})
	if err != nil {
		return respondError(ctx, err, logrus.Fields{"user_id": userID, "product_id": req.ID}, "Update product")
	}
	return ctx.JSON(http.StatusOK, product)
}

func (c *ProductController) Delete(ctx echo.Context) error {
	id := ctx.Param("id")
	userID := callerID(ctx)

	_, err := mediator.Send[catalog.DeleteProduct, mediator.Unit](
		ctx.Request().Context(), c.mediator, catalog.DeleteProduct{UserID: userID, ID: id})
	if err != nil {
		return respondError(ctx, err, logrus.Fields{"user_id": userID, "product_id": id}, "Delete product")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// DeleteUserProducts serves the cascade call from the user service. A caller
// may only remove its own products.
func (c *ProductController) DeleteUserProducts(ctx echo.Context) error {
	target := ctx.QueryParam("userid")
	userID := callerID(ctx)
	if target == "" || target != userID {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"target":  target,
		}).Warn("Delete user products rejected: caller mismatch")
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	removed, err := mediator.Send[catalog.DeleteUserProducts, int64](
		ctx.Request().Context(), c.mediator, catalog.DeleteUserProducts{UserID: target})
	if err != nil {
		return respondError(ctx, err, logrus.Fields{"user_id": target}, "Delete user products")
	}
	return ctx.JSON(http.StatusOK, httpdto.DeleteUserProductsResponse{Removed: removed})
}

func callerID(ctx echo.Context) string {
	userID, _ := ctx.Get(middleware.UserIDKey).(string)
	return userID
}
