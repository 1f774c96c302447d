package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ataurwd/vps-backend-server/internal/logger"
	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
	"github.com/ataurwd/vps-backend-server/internal/validation"
)

type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, status, sellerEmail string, limit, offset int) ([]models.Product, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// ProductService covers listing creation, moderation and catalog reads.
type ProductService struct {
	products ProductStore
	accounts AccountStore
}

func NewProductService(products ProductStore, accounts AccountStore) *ProductService {
	return &ProductService{products: products, accounts: accounts}
}

// CreateListing puts a new product up for moderation. The seller spends
// one listing credit; listings start pending until an admin approves.
func (s *ProductService) CreateListing(ctx context.Context, sellerEmail, name string, description *string, price int64, photoID *uuid.UUID) (*models.Product, error) {
	if !validation.ProductName(name) {
		return nil, apperror.BadRequest("invalid product name")
	}
	if !validation.Amount(price) {
		return nil, apperror.BadRequest("price must be positive")
	}

	account, err := s.accounts.GetByEmail(ctx, sellerEmail)
	if err != nil {
		return nil, err
	}
	if account.Role != models.RoleSeller && account.Role != models.RoleAdmin {
		return nil, apperror.ErrNotSeller
	}

	p := &models.Product{
		SellerEmail: sellerEmail,
		Name:        name,
		Description: description,
		Price:       price,
		Status:      models.ProductStatusPending,
		PhotoID:     photoID,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{"product_id": p.ID, "seller": sellerEmail}).Info("listing created")
	return p, nil
}

// Moderate approves or rejects a pending listing. Admin only.
func (s *ProductService) Moderate(ctx context.Context, actorRole, productID string, approve bool) (*models.Product, error) {
	if actorRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Status != models.ProductStatusPending {
		return nil, apperror.Conflict("product is not pending moderation")
	}

	status := models.ProductStatusRejected
	if approve {
		status = models.ProductStatusActive
	}
	if err := s.products.UpdateStatus(ctx, productID, status); err != nil {
		return nil, err
	}
	return s.products.GetByID(ctx, productID)
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.products.GetByID(ctx, id)
}

// ListActive is the public storefront view.
func (s *ProductService) ListActive(ctx context.Context, limit, offset int) ([]models.Product, error) {
	return s.products.List(ctx, models.ProductStatusActive, "", limit, offset)
}

// ListBySeller shows a seller all of their listings regardless of
// status.
func (s *ProductService) ListBySeller(ctx context.Context, sellerEmail string, limit, offset int) ([]models.Product, error) {
	return s.products.List(ctx, "", sellerEmail, limit, offset)
}

// ListByStatus is the admin moderation queue.
func (s *ProductService) ListByStatus(ctx context.Context, actorRole, status string, limit, offset int) ([]models.Product, error) {
	if actorRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	return s.products.List(ctx, status, "", limit, offset)
}
