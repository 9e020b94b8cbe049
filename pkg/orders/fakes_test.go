package orders

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"mercadito-backend/pkg/apierr"
	"mercadito-backend/pkg/models"
)

// fakeStore keeps orders in memory and mirrors the Mongo repository
// contract, including the atomic fields+history update.
type fakeStore struct {
	orders map[primitive.ObjectID]*models.Order
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: map[primitive.ObjectID]*models.Order{}}
}

func (f *fakeStore) Insert(_ context.Context, order *models.Order) error {
	order.ID = primitive.NewObjectID()
	clone := *order
	f.orders[order.ID] = &clone
	return nil
}

func (f *fakeStore) Get(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, apierr.NotFound("order not found")
	}
	clone := *order
	return &clone, nil
}

func (f *fakeStore) ListByCustomer(_ context.Context, customerID primitive.ObjectID) ([]models.Order, error) {
	var result []models.Order
	for _, order := range f.orders {
		if order.CustomerID == customerID {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]models.Order, error) {
	result := []models.Order{}
	for _, order := range f.orders {
		result = append(result, *order)
	}
	return result, nil
}

func (f *fakeStore) Update(_ context.Context, id primitive.ObjectID, fields bson.M, entry models.HistoryEntry) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, apierr.NotFound("order not found")
	}
	for key, value := range fields {
		switch key {
		case "lineItems":
			order.LineItems = value.([]models.LineItem)
		case "total":
			order.Total = value.(float64)
		case "status":
			order.Status = value.(string)
		case "estimatedDeliveryDate":
			d := value.(time.Time)
			order.EstimatedDeliveryDate = &d
		case "shippingDate":
			d := value.(time.Time)
			order.ShippingDate = &d
		case "referenceNumber":
			order.ReferenceNumber = value.(string)
		case "shippingInfo":
			order.ShippingInfo = value.(models.ShippingInfo)
		}
	}
	order.History = append(order.History, entry)
	clone := *order
	return &clone, nil
}

func (f *fakeStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.orders[id]; !ok {
		return apierr.NotFound("order not found")
	}
	delete(f.orders, id)
	return nil
}

// fakeCatalog resolves only the products it was seeded with.
type fakeCatalog struct {
	products map[primitive.ObjectID]models.Product
}

func newFakeCatalog(products ...models.Product) *fakeCatalog {
	byID := map[primitive.ObjectID]models.Product{}
	for _, p := range products {
		byID[p.ID] = p
	}
	return &fakeCatalog{products: byID}
}

func (f *fakeCatalog) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	var result []models.Product
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := f.products[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakeCatalog) remove(id primitive.ObjectID) {
	delete(f.products, id)
}

type fakeCustomers struct {
	users map[primitive.ObjectID]*models.User
}

func (f *fakeCustomers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apierr.NotFound("user not found")
	}
	return user, nil
}

func newTestService(store *fakeStore, catalog *fakeCatalog, opts ...func(*Service)) *Service {
	svc := NewService(store, catalog, &fakeCustomers{users: map[primitive.ObjectID]*models.User{}}, nil, zap.NewNop(), false, time.Minute)
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func withTransitions() func(*Service) {
	return func(s *Service) { s.enforceTransitions = true }
}

func withCustomers(users map[primitive.ObjectID]*models.User) func(*Service) {
	return func(s *Service) { s.customers = &fakeCustomers{users: users} }
}

func withCache(cache Cache) func(*Service) {
	return func(s *Service) { s.cache = cache }
}
