package services

import (
	"context"
	"fmt"

	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/models"
	"github.com/jayansh1208/marketly/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CatalogService struct {
	products ProductRepository
	logger   *zap.Logger
}

func NewCatalogService(products ProductRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{products: products, logger: logger.Named("catalog")}
}

func applyInput(p *models.Product, in models.ProductInput) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = *in.Price
	p.Category = in.Category
	p.Stock = *in.Stock
	p.Images = append([]string{}, in.Images...)
	p.Rating = in.Rating
	p.NumReviews = in.NumReviews
}

func (s *CatalogService) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	product := &models.Product{}
	applyInput(product, in)
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info("product created", zap.String("product_id", product.ID.Hex()), zap.String("name", product.Name))
	return product, nil
}

func (s *CatalogService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Product", id)
	}
	return product, nil
}

func (s *CatalogService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, apperror.NewValidation("category", "Please select a valid category")
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, apperror.NewValidation("minPrice", "Minimum price cannot exceed maximum price")
	}
	switch filter.Sort {
	case models.SortLatest, models.SortPriceAsc, models.SortPriceDesc:
	default:
		filter.Sort = models.SortLatest
	}
	return s.products.List(ctx, filter)
}

func (s *CatalogService) Update(ctx context.Context, id primitive.ObjectID, in models.ProductInput) (*models.Product, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Product", id)
	}
	applyInput(product, in)
	if err := s.products.Update(ctx, product); err != nil {
		return nil, notFound(err, "Product", id)
	}

	s.logger.Info("product updated", zap.String("product_id", id.Hex()))
	return product, nil
}

func (s *CatalogService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return notFound(err, "Product", id)
	}
	s.logger.Info("product deleted", zap.String("product_id", id.Hex()))
	return nil
}
