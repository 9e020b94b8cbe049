package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mercadito-backend/pkg/apierr"
	"mercadito-backend/pkg/models"
)

type OrderRepo struct {
	coll *mongo.Collection
}

func (r *OrderRepo) Insert(ctx context.Context, order *models.Order) error {
	res, err := r.coll.InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) {
		return apierr.Conflict("reference number already in use")
	}
	if err != nil {
		return err
	}
	order.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierr.NotFound("order not found")
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Order, error) {
	return r.list(ctx, bson.M{"customerId": customerID})
}

func (r *OrderRepo) ListAll(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, bson.M{})
}

func (r *OrderRepo) list(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Update applies the field changes and the accompanying history entry as one
// document write, so no observer ever sees a mutated order without its audit
// record. History is $push-only; entries are never rewritten.
func (r *OrderRepo) Update(ctx context.Context, id primitive.ObjectID, fields bson.M, entry models.HistoryEntry) (*models.Order, error) {
	update := bson.M{
		"$push": bson.M{"history": entry},
	}
	if len(fields) > 0 {
		update["$set"] = fields
	}
	var order models.Order
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierr.NotFound("order not found")
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, apierr.Conflict("reference number already in use")
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apierr.NotFound("order not found")
	}
	return nil
}
