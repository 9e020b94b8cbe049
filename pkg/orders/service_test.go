package orders

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"mercadito-backend/pkg/apierr"
	"mercadito-backend/pkg/models"
)

func seedProduct(name string, price float64) models.Product {
	return models.Product{
		ID:    primitive.NewObjectID(),
		Name:  name,
		Price: price,
		Image: "/img/" + strings.ToLower(name) + ".png",
	}
}

func strPtr(s string) *string { return &s }

func TestCreateOrderSnapshotsPricesAndTotals(t *testing.T) {
	widget := seedProduct("Widget", 10)
	gadget := seedProduct("Gadget", 2.5)
	store := newFakeStore()
	svc := newTestService(store, newFakeCatalog(widget, gadget))

	order, err := svc.CreateOrder(context.Background(), CreateRequest{
		CustomerID: primitive.NewObjectID(),
		Items: []LineItemRequest{
			{ProductID: widget.ID, Quantity: 3},
			{ProductID: gadget.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 35.0, order.Total)
	assert.Equal(t, models.StatusPending, order.Status)
	require.Len(t, order.LineItems, 2)
	assert.Equal(t, "Widget", order.LineItems[0].ProductName)
	assert.Equal(t, 10.0, order.LineItems[0].UnitPrice)
	assert.Equal(t, 30.0, order.LineItems[0].LineTotal)

	require.Len(t, order.History, 1)
	assert.Equal(t, models.StatusPending, order.History[0].Status)

	// total always equals the sum of the snapshotted line totals
	var sum float64
	for _, item := range order.LineItems {
		sum += item.UnitPrice * float64(item.Quantity)
	}
	assert.Equal(t, sum, order.Total)
}

func TestCreateOrderDefaults(t *testing.T) {
	widget := seedProduct("Widget", 10)
	svc := newTestService(newFakeStore(), newFakeCatalog(widget))

	order, err := svc.CreateOrder(context.Background(), CreateRequest{
		CustomerID: primitive.NewObjectID(),
		Items:      []LineItemRequest{{ProductID: widget.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// shipping info is always populated, never silently omitted
	assert.Equal(t, "N/A", order.ShippingInfo.Address)
	assert.Equal(t, "N/A", order.ShippingInfo.Reference)
	assert.Equal(t, "N/A", order.ShippingInfo.Observations)
	assert.True(t, strings.HasPrefix(order.ReferenceNumber, "ORD-"))
	assert.False(t, order.CreatedAt.IsZero())
}

func TestCreateOrderMissingProductIsAllOrNothing(t *testing.T) {
	widget := seedProduct("Widget", 10)
	missing := primitive.NewObjectID()
	store := newFakeStore()
	svc := newTestService(store, newFakeCatalog(widget))

	_, err := svc.CreateOrder(context.Background(), CreateRequest{
		CustomerID: primitive.NewObjectID(),
		Items: []LineItemRequest{
			{ProductID: widget.ID, Quantity: 1},
			{ProductID: missing, Quantity: 2},
		},
	})
	require.Error(t, err)
	assert.True(t, apierr.IsValidation(err))
	assert.Contains(t, err.Error(), missing.Hex())
	assert.Empty(t, store.orders, "no partial order may be persisted")
}

func TestCreateOrderValidation(t *testing.T) {
	widget := seedProduct("Widget", 10)
	svc := newTestService(newFakeStore(), newFakeCatalog(widget))
	customer := primitive.NewObjectID()

	cases := []struct {
		name string
		req  CreateRequest
	}{
		{"no items", CreateRequest{CustomerID: customer}},
		{"zero quantity", CreateRequest{CustomerID: customer, Items: []LineItemRequest{{ProductID: widget.ID, Quantity: 0}}}},
		{"negative quantity", CreateRequest{CustomerID: customer, Items: []LineItemRequest{{ProductID: widget.ID, Quantity: -2}}}},
		{"missing customer", CreateRequest{Items: []LineItemRequest{{ProductID: widget.ID, Quantity: 1}}}},
		{"bad status", CreateRequest{CustomerID: customer, Status: "shipped", Items: []LineItemRequest{{ProductID: widget.ID, Quantity: 1}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrder(context.Background(), tc.req)
			assert.True(t, apierr.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestEditOrderOwnershipCheck(t *testing.T) {
	widget := seedProduct("Widget", 10)
	store := newFakeStore()
	svc := newTestService(store, newFakeCatalog(widget))
	owner := primitive.NewObjectID()

	order, err := svc.CreateOrder(context.Background(), CreateRequest{
		CustomerID: owner,
		Items:      []LineItemRequest{{ProductID: widget.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	stranger := primitive.NewObjectID()
	_, err = svc.EditOrder(context.Background(), order.ID, stranger, EditPatch{Status: strPtr(models.StatusCancelled)})
	require.Error(t, err)
	assert.True(t, apierr.IsForbidden(err))

	// the order must be left untouched
	unchanged, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, unchanged.Status)
	assert.Len(t, unchanged.History, 1)
}

func TestEditOrderAppliesPatchAndAppendsOneHistoryEntry(t *testing.T) {
	widget := seedProduct("Widget", 10)
	gadget := seedProduct("Gadget", 4)
	store := newFakeStore()
	svc := newTestService(store, newFakeCatalog(widget, gadget))
	owner := primitive.NewObjectID()

	order, err := svc.CreateOrder(context.Background(), CreateRequest{
		CustomerID: owner,
		Items:      []LineItemRequest{{ProductID: widget.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	originalReference := order.ReferenceNumber

	address := "Main St 1"
	updated, err := svc.EditOrder(context.Background(), order.ID, owner, EditPatch{
		Items:        []LineItemRequest{{ProductID: gadget.ID, Quantity: 5}},
		Status:       strPtr(models.StatusConfirmed),
		ShippingInfo: &ShippingPatch{Address: &address},
	})
	require.NoError(t, err)

	assert.Equal(t, 20.0, updated.Total)
	require.Len(t, updated.LineItems, 1)
	assert.Equal(t, "Gadget", updated.LineItems[0].ProductName)
	assert.Equal(t, models.StatusConfirmed, updated.Status)

	// shallow merge: address changed, the other shipping fields kept
	assert.Equal(t, "Main St 1", updated.ShippingInfo.Address)
	assert.Equal(t, "N/A", updated.ShippingInfo.Reference)

	// absent fields are never nulled
	assert.Equal(t, originalReference, updated.ReferenceNumber)

	require.Len(t, updated.History, 2)
	last := updated.History[len(updated.History)-1]
	assert.Equal(t, models.StatusConfirmed, last.Status)
	assert.Equal(t, "customer edit", last.Note)
}

func TestEditOrderUnknownProductLeavesOrderIntact(t *testing.T) {
	widget := seedProduct("Widget", 10)
	store := newFakeStore()
	svc := newTestService(store, newFakeCatalog(widget))
	owner := primitive.NewObjectID()

	order, err := svc.CreateOrder(context.Background(), CreateRequest{
		CustomerID: owner,
		Items:      []LineItemRequest{{ProductID: widget.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	_, err = svc.EditOrder(context.Background(), order.ID, owner, EditPatch{
		Items: []LineItemRequest{{ProductID: primitive.NewObjectID(), Quantity: 1}},
	})
	assert.True(t, apierr.IsValidation(err))

	unchanged, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, unchanged.Total)
	assert.Len(t, unchanged.History, 1)
}

func TestUpdateStatus(t *testing.T) {
	widget := seedProduct("Widget", 10)
	store := newFakeStore()
	svc := newTestService(store, newFakeCatalog(widget))

	order, err := svc.CreateOrder(context.Background(), CreateRequest{
		CustomerID: primitive.NewObjectID(),
		Items:      []LineItemRequest{{ProductID: widget.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID, "unknown", nil)
	assert.True(t, apierr.IsValidation(err))

	updated, err := svc.UpdateStatus(context.Background(), order.ID, models.StatusEnRoute, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusEnRoute, updated.Status)
	require.NotNil(t, updated.ShippingDate)
	require.Len(t, updated.History, 2)
	assert.Equal(t, "status update", updated.History[1].Note)
}

func TestUpdateStatusEnforcedTransitions(t *testing.T) {
	widget := seedProduct("Widget", 10)
	store := newFakeStore()
	svc := newTestService(store, newFakeCatalog(widget), withTransitions())

	order, err := svc.CreateOrder(context.Background(), CreateRequest{
		CustomerID: primitive.NewObjectID(),
		Items:      []LineItemRequest{{ProductID: widget.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID, models.StatusCompleted, nil)
	require.NoError(t, err)

	// completed is terminal when enforcement is on
	_, err = svc.UpdateStatus(context.Background(), order.ID, models.StatusPending, nil)
	require.Error(t, err)
	assert.True(t, apierr.IsValidation(err))
}

func TestDeleteOrder(t *testing.T) {
	widget := seedProduct("Widget", 10)
	store := newFakeStore()
	svc := newTestService(store, newFakeCatalog(widget))

	order, err := svc.CreateOrder(context.Background(), CreateRequest{
		CustomerID: primitive.NewObjectID(),
		Items:      []LineItemRequest{{ProductID: widget.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(context.Background(), order.ID))

	_, err = svc.GetOrder(context.Background(), order.ID)
	assert.True(t, apierr.IsNotFound(err))

	err = svc.DeleteOrder(context.Background(), order.ID)
	assert.True(t, apierr.IsNotFound(err))
}

// Full lifecycle: create, customer edit, delete.
func TestOrderLifecycleScenario(t *testing.T) {
	widget := seedProduct("Widget", 10)
	store := newFakeStore()
	svc := newTestService(store, newFakeCatalog(widget))
	customer := primitive.NewObjectID()

	order, err := svc.CreateOrder(context.Background(), CreateRequest{
		CustomerID: customer,
		Items:      []LineItemRequest{{ProductID: widget.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, 30.0, order.Total)
	assert.Equal(t, models.StatusPending, order.Status)
	require.Len(t, order.History, 1)

	edited, err := svc.EditOrder(context.Background(), order.ID, customer, EditPatch{Status: strPtr(models.StatusConfirmed)})
	require.NoError(t, err)
	require.Len(t, edited.History, 2)
	assert.Equal(t, models.StatusConfirmed, edited.History[1].Status)

	require.NoError(t, svc.DeleteOrder(context.Background(), order.ID))
	_, err = svc.GetOrder(context.Background(), order.ID)
	assert.True(t, apierr.IsNotFound(err))
}

func TestListAllJoinsCustomerNames(t *testing.T) {
	widget := seedProduct("Widget", 10)
	store := newFakeStore()
	customer := primitive.NewObjectID()
	svc := newTestService(store, newFakeCatalog(widget), withCustomers(map[primitive.ObjectID]*models.User{
		customer: {ID: customer, Name: "Ana", Surname: "Quispe"},
	}))

	_, err := svc.CreateOrder(context.Background(), CreateRequest{
		CustomerID: customer,
		Items:      []LineItemRequest{{ProductID: widget.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// a second order for an account that no longer exists
	_, err = svc.CreateOrder(context.Background(), CreateRequest{
		CustomerID: primitive.NewObjectID(),
		Items:      []LineItemRequest{{ProductID: widget.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	list, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	byCustomer := map[primitive.ObjectID]AdminOrder{}
	for _, entry := range list {
		byCustomer[entry.CustomerID] = entry
	}
	assert.Equal(t, "Ana", byCustomer[customer].CustomerName)
	assert.Equal(t, "Quispe", byCustomer[customer].CustomerSurname)
}

func TestReferenceNumbersAreUniquePerCall(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		ref := newReferenceNumber()
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}
