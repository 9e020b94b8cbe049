package orders

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"mercadito-backend/pkg/models"
)

const summaryCacheKey = "orders:summary"

// ProductSales is the merged per-product record of the summary. Name and
// revenue come from the snapshotted line items, so the numbers reflect what
// was actually sold even for products since removed from the catalog. The
// image is joined best-effort from the live catalog for display and stays
// empty for deleted products.
type ProductSales struct {
	ProductID    primitive.ObjectID `json:"productId"`
	Name         string             `json:"name"`
	Image        string             `json:"image,omitempty"`
	QuantitySold int                `json:"quantitySold"`
	Revenue      float64            `json:"revenue"`
}

type OrderStamp struct {
	ID              primitive.ObjectID `json:"id"`
	ReferenceNumber string             `json:"referenceNumber"`
	Total           float64            `json:"total"`
	CreatedAt       string             `json:"createdAt"`
}

type StatusGroup struct {
	Status string       `json:"status"`
	Orders []OrderStamp `json:"orders"`
}

// MonthBucket aggregates orders by calendar year-month of creation.
type MonthBucket struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	Orders    int     `json:"orders"`
	UnitsSold int     `json:"unitsSold"`
	Revenue   float64 `json:"revenue"`
}

type Summary struct {
	TotalOrders       int            `json:"totalOrders"`
	TotalProductsSold int            `json:"totalProductsSold"`
	TotalRevenue      float64        `json:"totalRevenue"`
	Products          []ProductSales `json:"products"`
	ByStatus          []StatusGroup  `json:"byStatus"`
	Monthly           []MonthBucket  `json:"monthly"`
}

// SalesSummary aggregates all orders in one read-only pass. An empty store
// yields zeroed totals and empty lists, never an error. The result is cached
// in Redis when a cache is configured; every order mutation drops the key.
func (s *Service) SalesSummary(ctx context.Context) (*Summary, error) {
	if s.cache != nil {
		var cached Summary
		if err := s.cache.GetJSON(ctx, summaryCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	allOrders, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := s.buildSummary(ctx, allOrders)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, summaryCacheKey, summary, s.summaryTTL); err != nil {
			s.logger.Warn("failed to cache sales summary", zap.Error(err))
		}
	}
	return summary, nil
}

func (s *Service) buildSummary(ctx context.Context, allOrders []models.Order) *Summary {
	summary := &Summary{
		TotalOrders: len(allOrders),
		Products:    []ProductSales{},
		ByStatus:    []StatusGroup{},
		Monthly:     []MonthBucket{},
	}

	perProduct := map[primitive.ObjectID]*ProductSales{}
	perStatus := map[string][]OrderStamp{}
	perMonth := map[[2]int]*MonthBucket{}

	for _, order := range allOrders {
		var orderUnits int
		for _, item := range order.LineItems {
			summary.TotalProductsSold += item.Quantity
			summary.TotalRevenue += item.UnitPrice * float64(item.Quantity)
			orderUnits += item.Quantity

			sales, ok := perProduct[item.ProductID]
			if !ok {
				sales = &ProductSales{ProductID: item.ProductID, Name: item.ProductName}
				perProduct[item.ProductID] = sales
			}
			sales.QuantitySold += item.Quantity
			sales.Revenue += item.UnitPrice * float64(item.Quantity)
		}

		perStatus[order.Status] = append(perStatus[order.Status], OrderStamp{
			ID:              order.ID,
			ReferenceNumber: order.ReferenceNumber,
			Total:           order.Total,
			CreatedAt:       order.CreatedAt.UTC().Format(time.RFC3339),
		})

		key := [2]int{order.CreatedAt.Year(), int(order.CreatedAt.Month())}
		bucket, ok := perMonth[key]
		if !ok {
			bucket = &MonthBucket{Year: key[0], Month: key[1]}
			perMonth[key] = bucket
		}
		bucket.Orders++
		bucket.UnitsSold += orderUnits
		bucket.Revenue += order.Total
	}

	s.attachImages(ctx, perProduct)

	for _, sales := range perProduct {
		summary.Products = append(summary.Products, *sales)
	}
	sort.Slice(summary.Products, func(i, j int) bool {
		if summary.Products[i].QuantitySold != summary.Products[j].QuantitySold {
			return summary.Products[i].QuantitySold > summary.Products[j].QuantitySold
		}
		return summary.Products[i].ProductID.Hex() < summary.Products[j].ProductID.Hex()
	})

	for _, status := range []string{
		models.StatusPending,
		models.StatusConfirmed,
		models.StatusEnRoute,
		models.StatusCompleted,
		models.StatusCancelled,
	} {
		group := StatusGroup{Status: status, Orders: perStatus[status]}
		if group.Orders == nil {
			group.Orders = []OrderStamp{}
		}
		summary.ByStatus = append(summary.ByStatus, group)
	}

	for _, bucket := range perMonth {
		summary.Monthly = append(summary.Monthly, *bucket)
	}
	sort.Slice(summary.Monthly, func(i, j int) bool {
		if summary.Monthly[i].Year != summary.Monthly[j].Year {
			return summary.Monthly[i].Year < summary.Monthly[j].Year
		}
		return summary.Monthly[i].Month < summary.Monthly[j].Month
	})

	return summary
}

// attachImages decorates the per-product records with current catalog images.
// Missing products are ignored: quantities, names and revenue never depend
// on the live catalog.
func (s *Service) attachImages(ctx context.Context, perProduct map[primitive.ObjectID]*ProductSales) {
	if len(perProduct) == 0 {
		return
	}
	ids := make([]primitive.ObjectID, 0, len(perProduct))
	for id := range perProduct {
		ids = append(ids, id)
	}
	products, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to join product images for summary", zap.Error(err))
		return
	}
	for _, product := range products {
		if sales, ok := perProduct[product.ID]; ok {
			sales.Image = product.Image
		}
	}
}

func (s *Service) invalidateSummary(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, summaryCacheKey); err != nil {
		s.logger.Warn("failed to invalidate summary cache", zap.Error(err))
	}
}
