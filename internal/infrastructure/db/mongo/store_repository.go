package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront/ecommerce-api/internal/core/domain"
	"github.com/storefront/ecommerce-api/internal/core/ports"
)

const collectionStores = "stores"

type StoreRepository struct {
	col *mongo.Collection
}

func NewStoreRepository(db *mongo.Database) *StoreRepository {
	return &StoreRepository{col: db.Collection(collectionStores)}
}

type storeDoc struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	ProductName        string             `bson:"productName"`
	ProductDescription string             `bson:"productDescription"`
	ProductPrice       float64            `bson:"productPrice"`
	Image              string             `bson:"image,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt"`
}

func (d *storeDoc) toDomain() *domain.StoreItem {
	return &domain.StoreItem{
		ID:                 d.ID.Hex(),
		ProductName:        d.ProductName,
		ProductDescription: d.ProductDescription,
		ProductPrice:       d.ProductPrice,
		Image:              d.Image,
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
	}
}

// patchToSet converts a partial update into a $set document.
func patchToSet(p ports.StoreItemPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.ProductName != nil {
		set["productName"] = *p.ProductName
	}
	if p.ProductDescription != nil {
		set["productDescription"] = *p.ProductDescription
	}
	if p.ProductPrice != nil {
		set["productPrice"] = *p.ProductPrice
	}
	return set
}

// Create inserts a new store item document.
func (r *StoreRepository) Create(ctx context.Context, item *domain.StoreItem) (*domain.StoreItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := storeDoc{
		ID:                 primitive.NewObjectID(),
		ProductName:        item.ProductName,
		ProductDescription: item.ProductDescription,
		ProductPrice:       item.ProductPrice,
		Image:              item.Image,
		CreatedAt:          item.CreatedAt,
		UpdatedAt:          item.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, &domain.StorageError{Op: "insert store item", Err: err}
	}
	return doc.toDomain(), nil
}

// FindByID retrieves a store item. Malformed ids are reported as not found.
func (r *StoreRepository) FindByID(ctx context.Context, id string) (*domain.StoreItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrStoreItemNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d storeDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStoreItemNotFound
		}
		return nil, &domain.StorageError{Op: "find store item", Err: err}
	}
	return d.toDomain(), nil
}

func (r *StoreRepository) List(ctx context.Context) ([]*domain.StoreItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, &domain.StorageError{Op: "find store items", Err: err}
	}
	defer cursor.Close(ctx)

	var docs []storeDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &domain.StorageError{Op: "decode store items", Err: err}
	}

	items := make([]*domain.StoreItem, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].toDomain())
	}
	return items, nil
}

// Update applies the patch and returns the document after the change.
func (r *StoreRepository) Update(ctx context.Context, id string, patch ports.StoreItemPatch) (*domain.StoreItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrStoreItemNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": patchToSet(patch, time.Now().UTC())}

	var d storeDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStoreItemNotFound
		}
		return nil, &domain.StorageError{Op: "update store item", Err: err}
	}
	return d.toDomain(), nil
}

// Delete removes the item and returns it as it was.
func (r *StoreRepository) Delete(ctx context.Context, id string) (*domain.StoreItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrStoreItemNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d storeDoc
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStoreItemNotFound
		}
		return nil, &domain.StorageError{Op: "delete store item", Err: err}
	}
	return d.toDomain(), nil
}

// EnsureIndexes creates necessary indexes on the stores collection.
func (r *StoreRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "productName", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
