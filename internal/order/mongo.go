package order

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type itemDoc struct {
	RecipeID  string               `bson:"recipe"`
	Name      string               `bson:"name"`
	Image     string               `bson:"image,omitempty"`
	Category  string               `bson:"category,omitempty"`
	Quantity  int                  `bson:"quantity"`
	UnitPrice primitive.Decimal128 `bson:"price"`
}

// orderDoc is the stored shape: the whole order, lines included, is one
// document so a single write is the atomicity boundary.
type orderDoc struct {
	ID                  string               `bson:"_id"`
	OrderNumber         string               `bson:"orderNumber"`
	Seq                 int64                `bson:"seq"`
	Customer            Customer             `bson:"customer"`
	Restaurant          Restaurant           `bson:"restaurant"`
	VendorID            string               `bson:"vendor"`
	Items               []itemDoc            `bson:"items"`
	TotalPrice          primitive.Decimal128 `bson:"totalPrice"`
	DeliveryAddress     string               `bson:"deliveryAddress"`
	PaymentMethod       string               `bson:"paymentMethod"`
	Status              string               `bson:"status"`
	Reason              string               `bson:"rejectionReason,omitempty"`
	SpecialInstructions string               `bson:"specialInstructions,omitempty"`
	History             []StatusChange       `bson:"statusHistory"`
	CreatedAt           time.Time            `bson:"createdAt"`
	UpdatedAt           time.Time            `bson:"updatedAt"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}

func newOrderDoc(o *Order) (*orderDoc, error) {
	total, err := toDecimal128(o.TotalPrice)
	if err != nil {
		return nil, err
	}
	items := make([]itemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		p, err := toDecimal128(it.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, itemDoc{
			RecipeID: it.RecipeID, Name: it.Name, Image: it.Image, Category: it.Category,
			Quantity: it.Quantity, UnitPrice: p,
		})
	}
	return &orderDoc{
		ID: o.ID, OrderNumber: o.OrderNumber, Seq: o.Seq, Customer: o.Customer, Restaurant: o.Restaurant,
		VendorID: o.VendorID, Items: items, TotalPrice: total, DeliveryAddress: o.DeliveryAddress,
		PaymentMethod: string(o.PaymentMethod), Status: string(o.Status), Reason: o.Reason,
		SpecialInstructions: o.SpecialInstructions, History: o.History,
		CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt,
	}, nil
}

func (d *orderDoc) model() (*Order, error) {
	total, err := fromDecimal128(d.TotalPrice)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(d.Items))
	for _, it := range d.Items {
		p, err := fromDecimal128(it.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{
			RecipeID: it.RecipeID, Name: it.Name, Image: it.Image, Category: it.Category,
			Quantity: it.Quantity, UnitPrice: p,
		})
	}
	history := d.History
	if history == nil {
		history = []StatusChange{}
	}
	return &Order{
		ID: d.ID, OrderNumber: d.OrderNumber, Seq: d.Seq, Customer: d.Customer, Restaurant: d.Restaurant,
		VendorID: d.VendorID, Items: items, TotalPrice: total, DeliveryAddress: d.DeliveryAddress,
		PaymentMethod: PaymentMethod(d.PaymentMethod), Status: Status(d.Status), Reason: d.Reason,
		SpecialInstructions: d.SpecialInstructions, History: history,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}, nil
}

type MongoRepo struct{ col *mongo.Collection }

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{col: db.Collection("orders")}
}

// EnsureIndexes mirrors the SQL schema: unique order number plus the
// customer, restaurant, status and recency indexes.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "customer.id", Value: 1}}},
		{Keys: bson.D{{Key: "restaurant.id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return err
}

func (r *MongoRepo) Create(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc, err := newOrderDoc(o)
	if err != nil {
		return err
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateNumber
		}
		return err
	}
	return nil
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var d orderDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d.model()
}

func (r *MongoRepo) ListByCustomer(ctx context.Context, customerID string, p Page) ([]Order, error) {
	return r.find(ctx, bson.M{"customer.id": customerID}, p)
}

func (r *MongoRepo) ListByRestaurants(ctx context.Context, restaurantIDs []string, p Page) ([]Order, error) {
	if len(restaurantIDs) == 0 {
		return []Order{}, nil
	}
	return r.find(ctx, bson.M{"restaurant.id": bson.M{"$in": restaurantIDs}}, p)
}

func (r *MongoRepo) find(ctx context.Context, filter bson.M, p Page) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetSkip(int64(p.Offset))
	if p.Limit > 0 {
		opts.SetLimit(int64(p.Limit))
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(docs))
	for i := range docs {
		o, err := docs[i].model()
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, nil
}

func (r *MongoRepo) UpdateStatus(ctx context.Context, id string, from Status, ch StatusChange) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"status": string(ch.To), "updatedAt": ch.At}
	if ch.To.Failed() {
		set["rejectionReason"] = ch.Reason
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": string(from)},
		bson.M{"$set": set, "$push": bson.M{"statusHistory": ch}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoRepo) MaxSeq(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var d struct {
		Seq int64 `bson:"seq"`
	}
	err := r.col.FindOne(ctx, bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}}).SetProjection(bson.M{"seq": 1}),
	).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	return d.Seq, err
}
