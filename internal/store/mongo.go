package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"product-catalog-manager/internal/domain"
)

// productDocument is the stored shape of a product.
type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Price       float64            `bson:"price"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
}

func (d productDocument) toDomain() *domain.Product {
	return &domain.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Price:       d.Price,
		Description: d.Description,
		Category:    d.Category,
	}
}

// MongoStore implements the ProductStorer interface on a MongoDB collection.
// Identifiers are ObjectID hex strings.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a MongoStore over an existing collection handle.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// ConnectMongo dials uri and returns a store bound to database/collection.
func ConnectMongo(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: ConnectMongo failed to connect: %w", err)
	}
	return NewMongoStore(client.Database(database).Collection(collection)), nil
}

func (s *MongoStore) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	doc := productDocument{
		ID:          primitive.NewObjectID(),
		Name:        product.Name,
		Price:       product.Price,
		Description: product.Description,
		Category:    product.Category,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("store: CreateProduct failed to insert document: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *MongoStore) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var doc productDocument
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: GetProductByID failed to decode document: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *MongoStore) ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, error) {
	opts := options.Find()
	if params.SortByPrice {
		opts.SetSort(bson.D{{Key: "price", Value: 1}})
	}

	cursor, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("store: ListProducts failed to query products: %w", err)
	}
	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("store: ListProducts failed to decode documents: %w", err)
	}

	products := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, *d.toDomain())
	}
	return products, nil
}

func (s *MongoStore) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	if patch.IsEmpty() {
		return s.GetProductByID(ctx, id)
	}

	set := bson.D{}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *patch.Price})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	if patch.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *patch.Category})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc productDocument
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: UpdateProduct failed to update document: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *MongoStore) DeleteProduct(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("store: DeleteProduct failed to delete document: %w", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

func (s *MongoStore) Close() error {
	log.Println("INFO: Disconnecting from MongoDB...")
	if err := s.coll.Database().Client().Disconnect(context.Background()); err != nil {
		log.Printf("ERROR: Failed to disconnect from MongoDB: %v", err)
		return err
	}
	log.Println("INFO: MongoDB client disconnected successfully.")
	return nil
}
