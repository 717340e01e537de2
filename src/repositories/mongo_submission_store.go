package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"welfare-committee-backend/src/models"
)

const submissionsCollection = "submissions"

// submissionDocument is the stored shape: children are embedded, so one
// write covers the whole submission.
type submissionDocument struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty"`
	models.SubmissionFields `bson:",inline"`
	Children                []models.Child `bson:"children"`
}

func (d submissionDocument) toModel() models.Submission {
	children := d.Children
	if children == nil {
		children = []models.Child{}
	}
	return models.Submission{
		ID:               d.ID.Hex(),
		SubmissionFields: d.SubmissionFields,
		Children:         children,
	}
}

type MongoSubmissionStore struct {
	coll *mongo.Collection
}

func NewMongoSubmissionStore(db *mongo.Database) *MongoSubmissionStore {
	return &MongoSubmissionStore{coll: db.Collection(submissionsCollection)}
}

// EnsureIndexes is idempotent: creating an existing index is a no-op.
func (s *MongoSubmissionStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "submissionDate", Value: -1}}},
		{Keys: bson.D{{Key: "employeeCode", Value: 1}}},
	})
	if err != nil {
		return mongoErr("ensure submission indexes", err)
	}
	return nil
}

func (s *MongoSubmissionStore) Name() string { return "mongo" }

func (s *MongoSubmissionStore) CreateOrUpdate(ctx context.Context, sub *models.Submission) (string, error) {
	doc := submissionDocument{SubmissionFields: sub.SubmissionFields, Children: sub.Children}
	if doc.Children == nil {
		doc.Children = []models.Child{}
	}
	now := time.Now().UTC()
	doc.UpdatedAt = now

	if sub.ID == "" {
		doc.ID = primitive.NewObjectID()
		if doc.SubmissionDate.IsZero() {
			doc.SubmissionDate = now
		}
		if _, err := s.coll.InsertOne(ctx, doc); err != nil {
			return "", mongoErr("insert submission", err)
		}
	} else {
		oid, err := primitive.ObjectIDFromHex(sub.ID)
		if err != nil {
			return "", ErrNotFound
		}
		doc.ID = oid

		// submissionDate is set once at creation; carry the stored value over
		var existing struct {
			SubmissionDate time.Time `bson:"submissionDate"`
		}
		err = s.coll.FindOne(ctx, bson.M{"_id": oid},
			options.FindOne().SetProjection(bson.M{"submissionDate": 1})).Decode(&existing)
		if err != nil {
			return "", mongoErr("load submission", err)
		}
		doc.SubmissionDate = existing.SubmissionDate

		res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
		if err != nil {
			return "", mongoErr("replace submission", err)
		}
		if res.MatchedCount == 0 {
			return "", ErrNotFound
		}
	}

	sub.ID = doc.ID.Hex()
	sub.SubmissionDate = doc.SubmissionDate
	sub.UpdatedAt = doc.UpdatedAt
	return sub.ID, nil
}

func (s *MongoSubmissionStore) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc submissionDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoErr("get submission", err)
	}
	sub := doc.toModel()
	return &sub, nil
}

func (s *MongoSubmissionStore) ListAll(ctx context.Context, opts ListOptions) ([]models.Submission, error) {
	cursor, err := s.coll.Find(ctx, listFilter(opts), options.Find().SetSort(listSort(opts.Sort)))
	if err != nil {
		return nil, mongoErr("list submissions", err)
	}
	defer cursor.Close(ctx)

	var docs []submissionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mongoErr("list submissions", err)
	}
	subs := make([]models.Submission, 0, len(docs))
	for _, d := range docs {
		subs = append(subs, d.toModel())
	}
	return subs, nil
}

func (s *MongoSubmissionStore) Count(ctx context.Context) (CountSummary, error) {
	var summary CountSummary
	var err error
	if summary.Total, err = s.coll.CountDocuments(ctx, bson.M{}); err != nil {
		return summary, mongoErr("count submissions", err)
	}
	if summary.Male, err = s.coll.CountDocuments(ctx, bson.M{"gender": models.Male}); err != nil {
		return summary, mongoErr("count submissions", err)
	}
	if summary.Female, err = s.coll.CountDocuments(ctx, bson.M{"gender": models.Female}); err != nil {
		return summary, mongoErr("count submissions", err)
	}
	return summary, nil
}

func (s *MongoSubmissionStore) Close(ctx context.Context) error {
	return s.coll.Database().Client().Disconnect(ctx)
}

func listFilter(opts ListOptions) bson.M {
	filter := bson.M{}
	if term := strings.TrimSpace(opts.Search); term != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"employeeCode": re},
			bson.M{"designation": re},
			bson.M{"officialEmail": re},
		}
	}
	if opts.Gender != "" {
		filter["gender"] = opts.Gender
	}
	return filter
}

func listSort(order SortOrder) bson.D {
	switch order {
	case SortOldest:
		return bson.D{{Key: "submissionDate", Value: 1}, {Key: "_id", Value: 1}}
	case SortName:
		return bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}
	}
	return bson.D{{Key: "submissionDate", Value: -1}, {Key: "_id", Value: -1}}
}

// mongoErr maps driver errors onto the store's error kinds.
func mongoErr(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsTimeout(err), mongo.IsNetworkError(err),
		errors.Is(err, mongo.ErrClientDisconnected),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
