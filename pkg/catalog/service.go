// Package catalog is the product store: plain CRUD plus field validation.
// It has no business logic beyond required fields and a positive price;
// order pricing snapshots happen in the orders package.
package catalog

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"mercadito-backend/pkg/apierr"
	"mercadito-backend/pkg/models"
)

type Store interface {
	List(ctx context.Context, category string) ([]models.Product, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Insert(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

type ProductInput struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
}

func (in *ProductInput) validate() error {
	switch {
	case in.Name == "":
		return apierr.Validation("name is required")
	case in.Price <= 0:
		return apierr.Validation("price must be greater than zero")
	case in.Description == "":
		return apierr.Validation("description is required")
	case in.Image == "":
		return apierr.Validation("image is required")
	case in.Category == "":
		return apierr.Validation("category is required")
	}
	return nil
}

func (s *Service) List(ctx context.Context, category string) ([]models.Product, error) {
	return s.store.List(ctx, category)
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	product := &models.Product{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		Image:       in.Image,
		Category:    in.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("product created", zap.String("productId", product.ID.Hex()), zap.String("name", product.Name))
	return product, nil
}

// Update applies only the provided fields; empty strings and a zero price
// mean "leave unchanged".
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, in ProductInput) (*models.Product, error) {
	fields := bson.M{}
	if in.Name != "" {
		fields["name"] = in.Name
	}
	if in.Price != 0 {
		if in.Price < 0 {
			return nil, apierr.Validation("price must be greater than zero")
		}
		fields["price"] = in.Price
	}
	if in.Description != "" {
		fields["description"] = in.Description
	}
	if in.Image != "" {
		fields["image"] = in.Image
	}
	if in.Category != "" {
		fields["category"] = in.Category
	}
	if len(fields) == 0 {
		return nil, apierr.Validation("no fields to update")
	}
	return s.store.Update(ctx, id, fields)
}

// Delete removes the product. Historical orders keep their snapshotted
// name and price; nothing cascades.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.String("productId", id.Hex()))
	return nil
}
