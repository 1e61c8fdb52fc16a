package catalog

import (
	"context"
	"time"

	"github.com/vibast-solutions/ms-go-shop/app/entity"
	"github.com/vibast-solutions/ms-go-shop/app/filter"
	"github.com/vibast-solutions/ms-go-shop/app/mediator"
	"github.com/vibast-solutions/ms-go-shop/app/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type productRepository interface {
	FindAll(ctx context.Context) ([]*entity.Product, error)
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	FindFiltered(ctx context.Context, q *filter.Query) ([]*entity.Product, error)
	Create(ctx context.Context, product *entity.Product) error
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
	DeleteByCreator(ctx context.Context, creatorID string) (int64, error)
}

// Schema lists the product properties clients may filter and sort on.
var Schema = filter.NewSchema(
	filter.Property{Name: "Price", Column: "price", Kind: filter.KindNumber, CanFilter: true, CanSort: true},
	filter.Property{Name: "CreationDate", Column: "created_at", Kind: filter.KindTime, CanFilter: true, CanSort: true},
	filter.Property{Name: "IsAvailable", Column: "is_available", Kind: filter.KindBool, CanFilter: true},
	filter.Property{Name: "CreatorId", Column: "creator_id", Kind: filter.KindUUID, CanFilter: true},
	filter.Property{Name: "Name", Column: "name", Kind: filter.KindString, CanSort: true},
)

type Handlers struct {
	repo productRepository
	now  func() time.Time
}

func NewHandlers(repo productRepository) *Handlers {
	return &Handlers{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Register binds every product request to its handler on m.
func (h *Handlers) Register(m *mediator.Mediator) error {
	registrations := []func() error{
		func() error {
			return mediator.Register[GetAllProducts, []*entity.Product](m, mediator.HandlerFunc[GetAllProducts, []*entity.Product](h.GetAll))
		},
		func() error {
			return mediator.Register[GetProductByID, *entity.Product](m, mediator.HandlerFunc[GetProductByID, *entity.Product](h.GetByID))
		},
		func() error {
			return mediator.Register[GetFilteredSortedProducts, []*entity.Product](m, mediator.HandlerFunc[GetFilteredSortedProducts, []*entity.Product](h.GetFilteredSorted))
		},
		func() error {
			return mediator.Register[CreateProduct, *entity.Product](m, mediator.HandlerFunc[CreateProduct, *entity.Product](h.Create))
		},
		func() error {
			return mediator.Register[UpdateProduct, *entity.Product](m, mediator.HandlerFunc[UpdateProduct, *entity.Product](h.Update))
		},
		func() error {
			return mediator.Register[DeleteProduct, mediator.Unit](m, mediator.HandlerFunc[DeleteProduct, mediator.Unit](h.Delete))
		},
		func() error {
			return mediator.Register[DeleteUserProducts, int64](m, mediator.HandlerFunc[DeleteUserProducts, int64](h.DeleteUserProducts))
		},
	}

	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handlers) GetAll(ctx context.Context, _ GetAllProducts) ([]*entity.Product, error) {
	return h.repo.FindAll(ctx)
}

func (h *Handlers) GetByID(ctx context.Context, req GetProductByID) (*entity.Product, error) {
	product, err := h.repo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, service.ErrProductNotFound
	}
	return product, nil
}

func (h *Handlers) GetFilteredSorted(ctx context.Context, req GetFilteredSortedProducts) ([]*entity.Product, error) {
	q, err := Schema.Parse(req.Filters, req.Sorts, req.Page, req.PageSize)
	if err != nil {
		return nil, service.NewError(service.KindInvalidInput, err.Error())
	}
	return h.repo.FindFiltered(ctx, q)
}

func (h *Handlers) Create(ctx context.Context, req CreateProduct) (*entity.Product, error) {
	if req.UserID == "" || req.UserID != req.CreatorID {
		return nil, service.ErrForbidden
	}

	product := &entity.Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsAvailable: req.IsAvailable,
		CreatorID:   req.CreatorID,
		CreatedAt:   h.now(),
	}
	if err := h.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"creator_id": product.CreatorID,
	}).Info("Product created")

	return product, nil
}

func (h *Handlers) Update(ctx context.Context, req UpdateProduct) (*entity.Product, error) {
	product, err := h.ownedProduct(ctx, req.ID, req.UserID)
	if err != nil {
		return nil, err
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.IsAvailable = req.IsAvailable

	if err := h.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (h *Handlers) Delete(ctx context.Context, req DeleteProduct) (mediator.Unit, error) {
	if _, err := h.ownedProduct(ctx, req.ID, req.UserID); err != nil {
		return mediator.Unit{}, err
	}
	if err := h.repo.Delete(ctx, req.ID); err != nil {
		return mediator.Unit{}, err
	}
	return mediator.Unit{}, nil
}

// DeleteUserProducts removes everything created by the user. Callers check
// that the requester is that user.
func (h *Handlers) DeleteUserProducts(ctx context.Context, req DeleteUserProducts) (int64, error) {
	removed, err := h.repo.DeleteByCreator(ctx, req.UserID)
	if err != nil {
		return 0, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": req.UserID,
		"removed": removed,
	}).Info("User products deleted")

	return removed, nil
}

func (h *Handlers) ownedProduct(ctx context.Context, id, userID string) (*entity.Product, error) {
	product, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, service.ErrProductNotFound
	}
	if product.CreatorID != userID {
		return nil, service.ErrForbidden
	}
	return product, nil
}
