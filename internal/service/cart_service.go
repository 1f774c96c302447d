package service

import (
	"context"

	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
)

type CartStore interface {
	Add(ctx context.Context, item *models.CartItem) error
	List(ctx context.Context, buyerEmail string) ([]models.CartItem, error)
	Remove(ctx context.Context, buyerEmail, productID string) error
	Clear(ctx context.Context, buyerEmail string) error
}

type CartService struct {
	cart     CartStore
	products ProductStore
}

func NewCartService(cart CartStore, products ProductStore) *CartService {
	return &CartService{cart: cart, products: products}
}

// Add puts an active product in the cart. Sellers cannot cart their own
// listings.
func (s *CartService) Add(ctx context.Context, buyerEmail, productID string) (*models.CartItem, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Status != models.ProductStatusActive {
		return nil, apperror.ErrProductUnavailable
	}
	if p.SellerEmail == buyerEmail {
		return nil, apperror.BadRequest("cannot buy your own product")
	}

	item := &models.CartItem{
		BuyerEmail:  buyerEmail,
		ProductID:   p.ID,
		ProductName: p.Name,
		SellerEmail: p.SellerEmail,
		Price:       p.Price,
	}
	if err := s.cart.Add(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CartService) List(ctx context.Context, buyerEmail string) ([]models.CartItem, int64, error) {
	items, err := s.cart.List(ctx, buyerEmail)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	for _, it := range items {
		total += it.Price
	}
	return items, total, nil
}

func (s *CartService) Remove(ctx context.Context, buyerEmail, productID string) error {
	return s.cart.Remove(ctx, buyerEmail, productID)
}

func (s *CartService) Clear(ctx context.Context, buyerEmail string) error {
	return s.cart.Clear(ctx, buyerEmail)
}
