package service

import (
	"context"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-shop/app/client"
	"github.com/vibast-solutions/ms-go-shop/app/entity"
	"github.com/vibast-solutions/ms-go-shop/app/repository"
	"github.com/vibast-solutions/ms-go-shop/app/security"
	"github.com/vibast-solutions/ms-go-shop/config"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type userRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindAll(ctx context.Context) ([]*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id string) error
}

type productCascader interface {
	DeleteUserProducts(ctx context.Context, userID, authorization string) client.CascadeResult
}

type UserService struct {
	userRepo userRepository
	products productCascader
	policy   config.CascadePolicy
}

func NewUserService(userRepo userRepository, products productCascader, policy config.CascadePolicy) *UserService {
	return &UserService{
		userRepo: userRepo,
		products: products,
		policy:   policy,
	}
}

func (s *UserService) GetAll(ctx context.Context) ([]*entity.User, error) {
	return s.userRepo.FindAll(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Create adds an account on behalf of an operator. It skips the email
// confirmation step.
func (s *UserService) Create(ctx context.Context, name, email, password string) (*entity.User, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, salt, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		ID:               uuid.New().String(),
		Name:             name,
		Email:            email,
		IsEmailConfirmed: true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	user.SetPassword(hash, salt)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id, name string) (*entity.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = name
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the user's products through the product service, then the
// user. With the abort policy a failed cascade leaves the user in place.
func (s *UserService) Delete(ctx context.Context, id, authorization string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	result := s.products.DeleteUserProducts(ctx, id, authorization)
	if result.Outcome != client.OutcomeSucceeded {
		entry := logrus.WithFields(logrus.Fields{
			"user_id": id,
			"outcome": result.Outcome.String(),
			"status":  result.StatusCode,
			"policy":  string(s.policy),
		}).WithError(result.Err)

		if s.policy != config.CascadeProceed {
			entry.Warn("Cascade delete failed, keeping user")
			if result.Outcome == client.OutcomeTimedOut {
				return ErrCascadeTimeout
			}
			return ErrCascadeFailed
		}
		entry.Warn("Cascade delete failed, deleting user anyway")
	}

	return s.userRepo.Delete(ctx, id)
}
