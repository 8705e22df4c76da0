package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
	"github.com/vsinha/stocktransfer/pkg/domain/repositories"
)

const (
	transfersCollection = "transfers"
	countersCollection  = "transfer_counters"
)

// TransferRepository implements repositories.TransferRepository for MongoDB.
type TransferRepository struct {
	client *mongo.Client
	dbName string
	now    func() time.Time
}

var _ repositories.TransferRepository = (*TransferRepository)(nil)

// NewTransferRepository connects to MongoDB and ensures the transfer indexes.
func NewTransferRepository(ctx context.Context, uri string, dbName string) (*TransferRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &TransferRepository{client: client, dbName: dbName, now: time.Now}
	if err := r.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return r, nil
}

func (r *TransferRepository) transfers() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(transfersCollection)
}

func (r *TransferRepository) counters() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(countersCollection)
}

func (r *TransferRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.transfers().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "idempotency_key", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$type": "string"}}),
		},
		{
			Keys:    bson.D{{Key: "transfer_no", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "requisition_id", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create transfer indexes: %w", err)
	}
	return nil
}

// SaveTransfer numbers and inserts a transfer as one document.
func (r *TransferRepository) SaveTransfer(ctx context.Context, doc *entities.TransferDocument) (*entities.TransferDocument, error) {
	if doc.IdempotencyKey != "" {
		stored, err := r.findByKey(ctx, doc.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if stored != nil {
			return stored, entities.ErrDuplicateSubmission
		}
	}

	saved := *doc
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	now := r.now().UTC().Truncate(time.Millisecond)
	saved.CreatedAt = now
	saved.UpdatedAt = now

	seq, err := r.nextSequence(ctx, entities.TransferNoPrefix(now))
	if err != nil {
		return nil, err
	}
	saved.TransferNo = entities.FormatTransferNo(now, seq)

	if _, err := r.transfers().InsertOne(ctx, toRecord(&saved)); err != nil {
		if mongo.IsDuplicateKeyError(err) && saved.IdempotencyKey != "" {
			// Lost a race with an identical submission.
			if stored, findErr := r.findByKey(ctx, saved.IdempotencyKey); findErr == nil && stored != nil {
				return stored, entities.ErrDuplicateSubmission
			}
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %v", entities.ErrDuplicateSubmission, err)
		}
		return nil, fmt.Errorf("failed to insert transfer: %w", err)
	}

	return &saved, nil
}

// GetTransfer loads one transfer by ID.
func (r *TransferRepository) GetTransfer(ctx context.Context, id string) (*entities.TransferDocument, error) {
	var rec transferRecord
	err := r.transfers().FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("transfer %s: %w", id, entities.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transfer %s: %w", id, err)
	}
	return rec.toDocument()
}

// TransferredRequisitionIDs lists requisitions with at least one transfer.
func (r *TransferRepository) TransferredRequisitionIDs(ctx context.Context) (map[string]struct{}, error) {
	values, err := r.transfers().Distinct(ctx, "requisition_id", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query transferred requisitions: %w", err)
	}

	ids := make(map[string]struct{}, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

// Close closes the MongoDB connection.
func (r *TransferRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *TransferRepository) findByKey(ctx context.Context, key string) (*entities.TransferDocument, error) {
	var rec transferRecord
	err := r.transfers().FindOne(ctx, bson.M{"idempotency_key": key}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	return rec.toDocument()
}

// nextSequence atomically increments the per-day transfer counter
func (r *TransferRepository) nextSequence(ctx context.Context, prefix string) (int, error) {
	var counter struct {
		Seq int `bson:"seq"`
	}
	err := r.counters().FindOneAndUpdate(ctx,
		bson.M{"_id": prefix},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to number transfer: %w", err)
	}
	return counter.Seq, nil
}
