// Package orders implements the order lifecycle: snapshot-priced creation,
// ownership-checked edits, administrative status updates, hard deletes and
// the sales-summary aggregation. Orders carry an append-only history trail;
// every mutation appends exactly one entry.
package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"mercadito-backend/pkg/apierr"
	"mercadito-backend/pkg/models"
)

// Store is the order persistence port. Update must apply the field changes
// and the history entry as a single atomic document write.
type Store interface {
	Insert(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M, entry models.HistoryEntry) (*models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Catalog resolves product references at creation and edit time.
type Catalog interface {
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
}

// Customers provides the name join for the administrative listing.
type Customers interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Cache is optional; a nil Cache disables summary caching entirely.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type Service struct {
	store     Store
	catalog   Catalog
	customers Customers
	cache     Cache
	logger    *zap.Logger

	enforceTransitions bool
	summaryTTL         time.Duration
}

func NewService(store Store, catalog Catalog, customers Customers, cache Cache, logger *zap.Logger, enforceTransitions bool, summaryTTL time.Duration) *Service {
	return &Service{
		store:              store,
		catalog:            catalog,
		customers:          customers,
		cache:              cache,
		logger:             logger,
		enforceTransitions: enforceTransitions,
		summaryTTL:         summaryTTL,
	}
}

type LineItemRequest struct {
	ProductID primitive.ObjectID `json:"productId"`
	Quantity  int                `json:"quantity"`
}

// ShippingPatch carries partial shipping info; nil fields are left alone.
type ShippingPatch struct {
	Address      *string `json:"address"`
	Reference    *string `json:"reference"`
	Observations *string `json:"observations"`
}

type CreateRequest struct {
	CustomerID            primitive.ObjectID `json:"customerId"`
	Items                 []LineItemRequest  `json:"products"`
	ShippingInfo          *ShippingPatch     `json:"shippingInfo"`
	Status                string             `json:"status"`
	EstimatedDeliveryDate *time.Time         `json:"estimatedDeliveryDate"`
	ReferenceNumber       string             `json:"referenceNumber"`
}

type EditPatch struct {
	Items                 []LineItemRequest `json:"products"`
	Status                *string           `json:"status"`
	EstimatedDeliveryDate *time.Time        `json:"estimatedDeliveryDate"`
	ShippingInfo          *ShippingPatch    `json:"shippingInfo"`
	ReferenceNumber       *string           `json:"referenceNumber"`
}

// shippingPlaceholder fills absent shipping fields so the document is always
// fully populated.
const shippingPlaceholder = "N/A"

// CreateOrder validates and resolves every requested product in one batch,
// snapshots current catalog names and prices into the line items, computes
// the total and persists the order with its first history entry. The product
// check is all-or-nothing: a single unknown id fails the whole request and
// nothing is written.
func (s *Service) CreateOrder(ctx context.Context, req CreateRequest) (*models.Order, error) {
	if req.CustomerID.IsZero() {
		return nil, apierr.Validation("customerId is required")
	}

	items, total, err := s.resolveLineItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.StatusPending
	}
	if !models.ValidStatus(status) {
		return nil, apierr.Validation(fmt.Sprintf("invalid status %q", status))
	}

	reference := req.ReferenceNumber
	if reference == "" {
		reference = newReferenceNumber()
	}

	shipping := models.ShippingInfo{
		Address:      shippingPlaceholder,
		Reference:    shippingPlaceholder,
		Observations: shippingPlaceholder,
	}
	mergeShipping(&shipping, req.ShippingInfo)

	now := time.Now()
	order := &models.Order{
		CustomerID:            req.CustomerID,
		LineItems:             items,
		Total:                 total,
		Status:                status,
		ShippingInfo:          shipping,
		ReferenceNumber:       reference,
		EstimatedDeliveryDate: req.EstimatedDeliveryDate,
		History: []models.HistoryEntry{
			{Status: status, Date: now, Note: "order created"},
		},
		CreatedAt: now,
	}

	if err := s.store.Insert(ctx, order); err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx)
	s.logger.Info("order created",
		zap.String("orderId", order.ID.Hex()),
		zap.String("reference", order.ReferenceNumber),
		zap.Float64("total", order.Total),
	)
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Order, error) {
	return s.store.ListByCustomer(ctx, customerID)
}

// AdminOrder is an order decorated with the customer's display name. The
// join is computed per request and never stored.
type AdminOrder struct {
	models.Order
	CustomerName    string `json:"customerName"`
	CustomerSurname string `json:"customerSurname"`
}

func (s *Service) ListAll(ctx context.Context) ([]AdminOrder, error) {
	orders, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	names := map[primitive.ObjectID]*models.User{}
	result := make([]AdminOrder, 0, len(orders))
	for _, order := range orders {
		user, seen := names[order.CustomerID]
		if !seen {
			user, err = s.customers.GetByID(ctx, order.CustomerID)
			if err != nil && !apierr.IsNotFound(err) {
				return nil, err
			}
			names[order.CustomerID] = user
		}
		entry := AdminOrder{Order: order}
		if user != nil {
			entry.CustomerName = user.Name
			entry.CustomerSurname = user.Surname
		}
		result = append(result, entry)
	}
	return result, nil
}

// EditOrder applies a customer-initiated patch. Only the order's owner may
// edit; line items, when present, are re-resolved against the catalog
// exactly as on create and the total recomputed. Absent patch fields are
// left untouched. Exactly one history entry is appended no matter how many
// fields changed.
func (s *Service) EditOrder(ctx context.Context, orderID, callerID primitive.ObjectID, patch EditPatch) (*models.Order, error) {
	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != callerID {
		return nil, apierr.Forbidden("you can only edit your own orders")
	}

	fields := bson.M{}

	if patch.Items != nil {
		items, total, err := s.resolveLineItems(ctx, patch.Items)
		if err != nil {
			return nil, err
		}
		fields["lineItems"] = items
		fields["total"] = total
	}

	status := order.Status
	if patch.Status != nil {
		if !models.ValidStatus(*patch.Status) {
			return nil, apierr.Validation(fmt.Sprintf("invalid status %q", *patch.Status))
		}
		if err := s.checkTransition(order.Status, *patch.Status); err != nil {
			return nil, err
		}
		status = *patch.Status
		fields["status"] = status
	}

	if patch.EstimatedDeliveryDate != nil {
		fields["estimatedDeliveryDate"] = *patch.EstimatedDeliveryDate
	}
	if patch.ReferenceNumber != nil {
		if *patch.ReferenceNumber == "" {
			return nil, apierr.Validation("referenceNumber cannot be empty")
		}
		fields["referenceNumber"] = *patch.ReferenceNumber
	}
	if patch.ShippingInfo != nil {
		shipping := order.ShippingInfo
		mergeShipping(&shipping, patch.ShippingInfo)
		fields["shippingInfo"] = shipping
	}

	entry := models.HistoryEntry{Status: status, Date: time.Now(), Note: "customer edit"}
	updated, err := s.store.Update(ctx, orderID, fields, entry)
	if err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx)
	s.logger.Info("order edited", zap.String("orderId", orderID.Hex()), zap.String("status", updated.Status))
	return updated, nil
}

// UpdateStatus is the administrative status/date update. There is no
// ownership check. A history entry is appended for every status change, the
// same as any other mutation path.
func (s *Service) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, newStatus string, estimatedDeliveryDate *time.Time) (*models.Order, error) {
	if !models.ValidStatus(newStatus) {
		return nil, apierr.Validation(fmt.Sprintf("invalid status %q", newStatus))
	}

	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(order.Status, newStatus); err != nil {
		return nil, err
	}

	fields := bson.M{"status": newStatus}
	if estimatedDeliveryDate != nil {
		fields["estimatedDeliveryDate"] = *estimatedDeliveryDate
	}
	if newStatus == models.StatusEnRoute && order.ShippingDate == nil {
		fields["shippingDate"] = time.Now()
	}

	entry := models.HistoryEntry{Status: newStatus, Date: time.Now(), Note: "status update"}
	updated, err := s.store.Update(ctx, orderID, fields, entry)
	if err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx)
	s.logger.Info("order status updated",
		zap.String("orderId", orderID.Hex()),
		zap.String("from", order.Status),
		zap.String("to", newStatus),
	)
	return updated, nil
}

// DeleteOrder is a hard, irreversible removal.
func (s *Service) DeleteOrder(ctx context.Context, orderID primitive.ObjectID) error {
	if err := s.store.Delete(ctx, orderID); err != nil {
		return err
	}
	s.invalidateSummary(ctx)
	s.logger.Info("order deleted", zap.String("orderId", orderID.Hex()))
	return nil
}

// resolveLineItems batch-resolves every product reference and snapshots the
// catalog's current name and price. Prices are never taken from the caller.
func (s *Service) resolveLineItems(ctx context.Context, reqs []LineItemRequest) ([]models.LineItem, float64, error) {
	if len(reqs) == 0 {
		return nil, 0, apierr.Validation("order must contain at least one product")
	}

	ids := make([]primitive.ObjectID, 0, len(reqs))
	for _, item := range reqs {
		if item.ProductID.IsZero() {
			return nil, 0, apierr.Validation("productId is required for every item")
		}
		if item.Quantity < 1 {
			return nil, 0, apierr.Validation("quantity must be a positive integer")
		}
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var missing []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id.Hex())
		}
	}
	if len(missing) > 0 {
		return nil, 0, apierr.Validation("products not found: " + strings.Join(missing, ", "))
	}

	items := make([]models.LineItem, 0, len(reqs))
	var total float64
	for _, req := range reqs {
		product := byID[req.ProductID]
		lineTotal := product.Price * float64(req.Quantity)
		items = append(items, models.LineItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    req.Quantity,
			LineTotal:   lineTotal,
		})
		total += lineTotal
	}
	return items, total, nil
}

func (s *Service) checkTransition(from, to string) error {
	if !s.enforceTransitions {
		return nil
	}
	if !TransitionAllowed(from, to) {
		return apierr.Validation(fmt.Sprintf("status cannot move from %q to %q", from, to))
	}
	return nil
}

func mergeShipping(dst *models.ShippingInfo, patch *ShippingPatch) {
	if patch == nil {
		return
	}
	if patch.Address != nil {
		dst.Address = *patch.Address
	}
	if patch.Reference != nil {
		dst.Reference = *patch.Reference
	}
	if patch.Observations != nil {
		dst.Observations = *patch.Observations
	}
}

// newReferenceNumber builds the human-facing order identifier from random
// bits rather than the clock, so concurrent creates in the same instant
// cannot collide. The unique index on the collection backstops it.
func newReferenceNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(raw[:12])
}
