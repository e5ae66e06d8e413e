package catalog

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type restaurantDoc struct {
	ID        string    `bson:"_id"`
	VendorID  string    `bson:"vendor"`
	Name      string    `bson:"name"`
	Location  string    `bson:"location"`
	Timings   string    `bson:"timings,omitempty"`
	Cuisine   string    `bson:"cuisine,omitempty"`
	Rating    float64   `bson:"rating"`
	Image     string    `bson:"image,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d restaurantDoc) model() Restaurant {
	return Restaurant{
		ID: d.ID, VendorID: d.VendorID, Name: d.Name, Location: d.Location, Timings: d.Timings,
		Cuisine: d.Cuisine, Rating: d.Rating, Image: d.Image, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

type recipeDoc struct {
	ID           string               `bson:"_id"`
	VendorID     string               `bson:"vendor"`
	RestaurantID string               `bson:"restaurant,omitempty"`
	Name         string               `bson:"name"`
	Description  string               `bson:"description,omitempty"`
	Price        primitive.Decimal128 `bson:"price"`
	Category     string               `bson:"category"`
	Image        string               `bson:"image"`
	Ingredients  []string             `bson:"ingredients"`
	PrepTime     string               `bson:"preparationTime"`
	Available    bool                 `bson:"isAvailable"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

func newRecipeDoc(rc *Recipe) (recipeDoc, error) {
	price, err := primitive.ParseDecimal128(rc.Price.String())
	if err != nil {
		return recipeDoc{}, err
	}
	return recipeDoc{
		ID: rc.ID, VendorID: rc.VendorID, RestaurantID: rc.RestaurantID, Name: rc.Name,
		Description: rc.Description, Price: price, Category: string(rc.Category), Image: rc.Image,
		Ingredients: rc.Ingredients, PrepTime: rc.PrepTime, Available: rc.Available,
		CreatedAt: rc.CreatedAt, UpdatedAt: rc.UpdatedAt,
	}, nil
}

func (d recipeDoc) model() (Recipe, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return Recipe{}, err
	}
	ingredients := d.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	return Recipe{
		ID: d.ID, VendorID: d.VendorID, RestaurantID: d.RestaurantID, Name: d.Name,
		Description: d.Description, Price: price, Category: Category(d.Category), Image: d.Image,
		Ingredients: ingredients, PrepTime: d.PrepTime, Available: d.Available,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}, nil
}

// MongoRepo keeps restaurants and recipes in two collections of db.
type MongoRepo struct {
	restaurants *mongo.Collection
	recipes     *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		restaurants: db.Collection("restaurants"),
		recipes:     db.Collection("recipes"),
	}
}

// EnsureIndexes creates the lookup indexes; it is safe to call on every start.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	if _, err := r.restaurants.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "vendor", Value: 1}},
	}); err != nil {
		return err
	}
	_, err := r.recipes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "restaurant", Value: 1}}},
		{Keys: bson.D{{Key: "vendor", Value: 1}}},
	})
	return err
}

func (r *MongoRepo) CreateRestaurant(ctx context.Context, rs *Restaurant) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	rs.CreatedAt, rs.UpdatedAt = now, now
	_, err := r.restaurants.InsertOne(ctx, restaurantDoc{
		ID: rs.ID, VendorID: rs.VendorID, Name: rs.Name, Location: rs.Location, Timings: rs.Timings,
		Cuisine: rs.Cuisine, Rating: rs.Rating, Image: rs.Image, CreatedAt: now, UpdatedAt: now,
	})
	return err
}

func (r *MongoRepo) GetRestaurant(ctx context.Context, id string) (*Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var d restaurantDoc
	err := r.restaurants.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rs := d.model()
	return &rs, nil
}

func (r *MongoRepo) ListRestaurantsByVendor(ctx context.Context, vendorID string) ([]Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.findRestaurants(ctx, bson.M{"vendor": vendorID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (r *MongoRepo) ListRestaurants(ctx context.Context, q Query) ([]Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = q.normalized()
	filter := bson.M{}
	if q.Q != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Q), Options: "i"}
		filter["$or"] = bson.A{bson.M{"name": re}, bson.M{"cuisine": re}}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(q.Limit)).
		SetSkip(int64(q.Offset))
	return r.findRestaurants(ctx, filter, opts)
}

func (r *MongoRepo) UpdateRestaurant(ctx context.Context, rs *Restaurant) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rs.UpdatedAt = time.Now().UTC()
	res, err := r.restaurants.UpdateOne(ctx, bson.M{"_id": rs.ID}, bson.M{"$set": bson.M{
		"name":      rs.Name,
		"location":  rs.Location,
		"timings":   rs.Timings,
		"cuisine":   rs.Cuisine,
		"rating":    rs.Rating,
		"image":     rs.Image,
		"updatedAt": rs.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRestaurant removes attached recipes first so a failure in between
// leaves the restaurant in place and the call can be retried.
func (r *MongoRepo) DeleteRestaurant(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.recipes.DeleteMany(ctx, bson.M{"restaurant": id}); err != nil {
		return false, err
	}
	res, err := r.restaurants.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRepo) findRestaurants(ctx context.Context, filter any, opts *options.FindOptions) ([]Restaurant, error) {
	cur, err := r.restaurants.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []restaurantDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Restaurant, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *MongoRepo) CreateRecipe(ctx context.Context, rc *Recipe) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	rc.CreatedAt, rc.UpdatedAt = now, now
	doc, err := newRecipeDoc(rc)
	if err != nil {
		return err
	}
	_, err = r.recipes.InsertOne(ctx, doc)
	return err
}

func (r *MongoRepo) GetRecipe(ctx context.Context, id string) (*Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var d recipeDoc
	err := r.recipes.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rc, err := d.model()
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *MongoRepo) ListRecipes(ctx context.Context, q Query) ([]Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = q.normalized()
	filter := bson.M{"isAvailable": true}
	if q.Q != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Q), Options: "i"}
		filter["$or"] = bson.A{bson.M{"name": re}, bson.M{"category": re}}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(q.Limit)).
		SetSkip(int64(q.Offset))
	return r.findRecipes(ctx, filter, opts)
}

func (r *MongoRepo) ListRecipesByVendor(ctx context.Context, vendorID string) ([]Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.findRecipes(ctx, bson.M{"vendor": vendorID}, menuOrder())
}

func (r *MongoRepo) ListRecipesByRestaurant(ctx context.Context, restaurantID string) ([]Recipe, error) {
	rs, err := r.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"restaurant": restaurantID},
		bson.M{"vendor": rs.VendorID, "restaurant": bson.M{"$exists": false}},
	}}
	return r.findRecipes(ctx, filter, menuOrder())
}

func menuOrder() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
}

func (r *MongoRepo) findRecipes(ctx context.Context, filter any, opts *options.FindOptions) ([]Recipe, error) {
	cur, err := r.recipes.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []recipeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Recipe, 0, len(docs))
	for _, d := range docs {
		rc, err := d.model()
		if err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, nil
}

func (r *MongoRepo) UpdateRecipe(ctx context.Context, rc *Recipe) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	price, err := primitive.ParseDecimal128(rc.Price.String())
	if err != nil {
		return err
	}
	rc.UpdatedAt = time.Now().UTC()
	res, err := r.recipes.UpdateOne(ctx, bson.M{"_id": rc.ID}, bson.M{"$set": bson.M{
		"name":            rc.Name,
		"description":     rc.Description,
		"price":           price,
		"category":        string(rc.Category),
		"image":           rc.Image,
		"ingredients":     rc.Ingredients,
		"preparationTime": rc.PrepTime,
		"isAvailable":     rc.Available,
		"updatedAt":       rc.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) DeleteRecipe(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.recipes.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
