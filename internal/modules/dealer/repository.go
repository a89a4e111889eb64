package dealer

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding dealer documents.
const CollectionName = "dealers"

// Repository defines the persistence contract for dealers.
type Repository interface {
	Insert(ctx context.Context, d *Dealer) error
	FindAll(ctx context.Context) ([]*Dealer, error)
	FindByDealerID(ctx context.Context, dealerID string) (*Dealer, error)
	Replace(ctx context.Context, d *Dealer) error
	Delete(ctx context.Context, dealerID string) error
}

type mongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a Repository over db's dealers collection and
// makes sure the unique dealerId index exists.
func NewMongoRepository(ctx context.Context, db *mongo.Database) (Repository, error) {
	coll := db.Collection(CollectionName)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "dealerId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("dealerId_unique"),
	})
	if err != nil {
		return nil, err
	}
	return &mongoRepository{coll: coll}, nil
}

func (r *mongoRepository) Insert(ctx context.Context, d *Dealer) error {
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrExists.WithCause(err)
		}
		return err
	}
	return nil
}

func (r *mongoRepository) FindAll(ctx context.Context) ([]*Dealer, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	dealers := []*Dealer{}
	if err := cur.All(ctx, &dealers); err != nil {
		return nil, err
	}
	return dealers, nil
}

func (r *mongoRepository) FindByDealerID(ctx context.Context, dealerID string) (*Dealer, error) {
	var d Dealer
	err := r.coll.FindOne(ctx, bson.D{{Key: "dealerId", Value: dealerID}}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &d, nil
}

func (r *mongoRepository) Replace(ctx context.Context, d *Dealer) error {
	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "dealerId", Value: d.DealerID}}, d)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) Delete(ctx context.Context, dealerID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "dealerId", Value: dealerID}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
