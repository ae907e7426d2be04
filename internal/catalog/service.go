package catalog

import (
	"context"
	"errors"

	"github.com/asaskevich/EventBus"
	"github.com/bjo163/warungpos/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TopicProductUpdated is published whenever a product row changes (CRUD or
// stock movement). Subscribers receive the product ID.
const TopicProductUpdated = "catalog.product.updated"

// Service exposes the storefront catalog: the filtered product grid and the
// category list, with change notifications on the event bus.
type Service struct {
	repo Repository
	bus  EventBus.Bus
}

func NewService(repo Repository, bus EventBus.Bus) *Service {
	return &Service{repo: repo, bus: bus}
}

// Products returns the visible product subset for the given filter state.
func (s *Service) Products(ctx context.Context, categoryID int64, search string) ([]domain.Product, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(products, categoryID, search), nil
}

// Product returns the live product row, nil when it does not exist. Used to
// reconcile draft snapshots at commit time.
func (s *Service) Product(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Categories returns the category list.
func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

// NotifyProductUpdated pushes a catalog change to subscribers. Open drafts
// keep their snapshot; the change is reconciled at commit.
func (s *Service) NotifyProductUpdated(productID int64) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(TopicProductUpdated, productID)
	zap.L().Debug("catalog update published", zap.Int64("product_id", productID))
}
