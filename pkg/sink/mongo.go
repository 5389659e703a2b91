package sink

import (
	"cmp"
	"context"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/part"
)

// MongoOptions configures [NewMongo].
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Mongo upserts parts into a collection. Documents are keyed by supplier
// and SKU, so importing a part twice replaces the earlier record.
type Mongo struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
	owned   bool
}

// NewMongo connects to opts.URI and verifies the connection.
func NewMongo(ctx context.Context, opts MongoOptions) (*Mongo, error) {
	if opts.Database == "" {
		opts.Database = "partimport"
	}
	if opts.Collection == "" {
		opts.Collection = "parts"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI).SetTimeout(opts.Timeout))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSink, err, "connect mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeSink, err, "ping mongodb")
	}
	s := NewMongoFromCollection(client.Database(opts.Database).Collection(opts.Collection), opts.Timeout)
	s.owned = true
	return s, nil
}

// NewMongoFromCollection writes to an existing collection. Close does not
// disconnect its client.
func NewMongoFromCollection(coll *mongo.Collection, timeout time.Duration) *Mongo {
	return &Mongo{client: coll.Database().Client(), coll: coll, timeout: timeout}
}

// Write upserts p.
func (s *Mongo) Write(ctx context.Context, p *part.Resolved) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	filter := bson.D{{Key: "supplier", Value: p.Supplier}, {Key: "sku", Value: p.SKU}}
	_, err := s.coll.ReplaceOne(ctx, filter, document(p), options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeSink, err, "upsert %s", p.Key())
	}
	return nil
}

// Close disconnects the client opened by [NewMongo].
func (s *Mongo) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// partDocument is the stored form of a part. Decimal and UUID fields are
// stored as strings so the collection stays readable from other tools.
type partDocument struct {
	ImportID          string                       `bson:"import_id"`
	Supplier          string                       `bson:"supplier"`
	SKU               string                       `bson:"sku"`
	MPN               string                       `bson:"mpn"`
	Manufacturer      string                       `bson:"manufacturer"`
	Description       string                       `bson:"description,omitempty"`
	SupplierLink      string                       `bson:"supplier_link,omitempty"`
	ManufacturerLink  string                       `bson:"manufacturer_link,omitempty"`
	ImageURL          string                       `bson:"image_url,omitempty"`
	DatasheetURL      string                       `bson:"datasheet_url,omitempty"`
	Packaging         string                       `bson:"packaging,omitempty"`
	QuantityAvailable int                          `bson:"quantity_available"`
	Currency          string                       `bson:"currency,omitempty"`
	PriceBreaks       []priceBreakDocument         `bson:"price_breaks,omitempty"`
	CategoryPath      []string                     `bson:"category_path"`
	Parameters        map[string]parameterDocument `bson:"parameters"`
	Unassigned        []string                     `bson:"unassigned,omitempty"`
	Warnings          []string                     `bson:"warnings,omitempty"`
	UpdatedAt         time.Time                    `bson:"updated_at"`
}

type priceBreakDocument struct {
	Quantity int    `bson:"quantity"`
	Price    string `bson:"price"`
}

type parameterDocument struct {
	Text      string `bson:"text"`
	Raw       string `bson:"raw"`
	Magnitude string `bson:"magnitude,omitempty"`
	Unit      string `bson:"unit,omitempty"`
}

func document(p *part.Resolved) partDocument {
	doc := partDocument{
		ImportID:          p.ImportID.String(),
		Supplier:          p.Supplier,
		SKU:               p.SKU,
		MPN:               p.MPN,
		Manufacturer:      p.Manufacturer,
		Description:       p.Description,
		SupplierLink:      p.SupplierLink,
		ManufacturerLink:  p.ManufacturerLink,
		ImageURL:          p.ImageURL,
		DatasheetURL:      p.DatasheetURL,
		Packaging:         p.Packaging,
		QuantityAvailable: p.QuantityAvailable,
		Currency:          p.Currency,
		CategoryPath:      p.CategoryPath,
		Parameters:        make(map[string]parameterDocument, len(p.Parameters)),
		Unassigned:        p.Unassigned,
		Warnings:          p.Warnings,
		UpdatedAt:         time.Now().UTC(),
	}
	for qty, price := range p.PriceBreaks {
		doc.PriceBreaks = append(doc.PriceBreaks, priceBreakDocument{Quantity: qty, Price: price.String()})
	}
	slices.SortFunc(doc.PriceBreaks, func(a, b priceBreakDocument) int {
		return cmp.Compare(a.Quantity, b.Quantity)
	})
	for name, v := range p.Parameters {
		pd := parameterDocument{Text: v.Text, Raw: v.Raw, Unit: v.Unit}
		if v.Magnitude != nil {
			pd.Magnitude = v.Magnitude.String()
		}
		doc.Parameters[name] = pd
	}
	return doc
}
