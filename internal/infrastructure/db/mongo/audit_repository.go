package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vicentemv/user-management-api/internal/core/domain"
)

const collectionAudits = "audits"

// AuditRepository implements ports.AuditRepository on MongoDB. The
// collection is append-only: this type exposes no update or delete.
//
// subject_id and changed_by are stored as plain strings, not ObjectID
// references, so entries outlive the accounts they describe.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAudits)}
}

type mongoAudit struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	SubjectID     string             `bson:"subject_id"`
	ActorID       string             `bson:"changed_by"`
	ActorUsername string             `bson:"changed_by_username,omitempty"`
	ActorEmail    string             `bson:"changed_by_email,omitempty"`
	Kind          string             `bson:"change_type"`
	Changes       bson.M             `bson:"changes"`
	CreatedAt     time.Time          `bson:"created_at"`
}

func (ma *mongoAudit) toDomain() *domain.AuditEntry {
	return &domain.AuditEntry{
		ID:            ma.ID.Hex(),
		SubjectID:     ma.SubjectID,
		ActorID:       ma.ActorID,
		ActorUsername: ma.ActorUsername,
		ActorEmail:    ma.ActorEmail,
		Kind:          domain.ChangeKind(ma.Kind),
		Changes:       map[string]any(ma.Changes),
		CreatedAt:     ma.CreatedAt,
	}
}

func (r *AuditRepository) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoAudit{
		SubjectID:     entry.SubjectID,
		ActorID:       entry.ActorID,
		ActorUsername: entry.ActorUsername,
		ActorEmail:    entry.ActorEmail,
		Kind:          string(entry.Kind),
		Changes:       bson.M(entry.Changes),
		CreatedAt:     entry.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	entry.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *AuditRepository) ListAll(ctx context.Context) ([]*domain.AuditEntry, error) {
	return r.list(ctx, bson.M{})
}

func (r *AuditRepository) ListBySubject(ctx context.Context, subjectID string) ([]*domain.AuditEntry, error) {
	// Subjects are account ids; reject malformed ones before querying so
	// the caller can distinguish "bad id" from "no history".
	if _, err := primitive.ObjectIDFromHex(subjectID); err != nil {
		return nil, domain.ErrInvalidID
	}
	return r.list(ctx, bson.M{"subject_id": subjectID})
}

// EnsureIndexes creates the query indexes for the audit trail.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "subject_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *AuditRepository) list(ctx context.Context, filter bson.M) ([]*domain.AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer cur.Close(ctx)

	entries := make([]*domain.AuditEntry, 0)
	for cur.Next(ctx) {
		var ma mongoAudit
		if err := cur.Decode(&ma); err != nil {
			return nil, fmt.Errorf("decode audit entry: %w", err)
		}
		entries = append(entries, ma.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
