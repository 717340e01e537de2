package repositories

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"welfare-committee-backend/src/models"
)

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ---------- relational ----------

type adminRow struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
}

func (adminRow) TableName() string { return "admins" }

type SQLAdminStore struct {
	db *gorm.DB
}

// NewSQLAdminStore shares the handle of the submission store; its table is
// created by SQLSubmissionStore.Migrate.
func NewSQLAdminStore(db *gorm.DB) *SQLAdminStore {
	return &SQLAdminStore{db: db}
}

func (s *SQLAdminStore) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var row adminRow
	err := s.db.WithContext(ctx).Where("username = ?", normalizeUsername(username)).First(&row).Error
	if err != nil {
		return nil, sqlErr("find admin", err)
	}
	return &models.Admin{
		ID:           strconv.FormatUint(uint64(row.ID), 10),
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
	}, nil
}

func (s *SQLAdminStore) Upsert(ctx context.Context, admin *models.Admin) error {
	row := adminRow{
		Username:     normalizeUsername(admin.Username),
		PasswordHash: admin.PasswordHash,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash"}),
	}).Create(&row).Error
	if err != nil {
		return sqlErr("upsert admin", err)
	}
	return nil
}

// ---------- document ----------

const adminsCollection = "admins"

type adminDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"passwordHash"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

type MongoAdminStore struct {
	coll *mongo.Collection
}

func NewMongoAdminStore(db *mongo.Database) *MongoAdminStore {
	return &MongoAdminStore{coll: db.Collection(adminsCollection)}
}

func (s *MongoAdminStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return mongoErr("ensure admin indexes", err)
	}
	return nil
}

func (s *MongoAdminStore) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var doc adminDocument
	err := s.coll.FindOne(ctx, bson.M{"username": normalizeUsername(username)}).Decode(&doc)
	if err != nil {
		return nil, mongoErr("find admin", err)
	}
	return &models.Admin{
		ID:           doc.ID.Hex(),
		Username:     doc.Username,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

func (s *MongoAdminStore) Upsert(ctx context.Context, admin *models.Admin) error {
	username := normalizeUsername(admin.Username)
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{
			"$set":         bson.M{"passwordHash": admin.PasswordHash},
			"$setOnInsert": bson.M{"createdAt": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return mongoErr("upsert admin", err)
	}
	return nil
}
