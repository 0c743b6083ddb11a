package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hostelhub/hostel-system/internal/core/domain"
)

const collectionOccupants = "users"

// OccupantRepository backs both the profile store (room pointer) and the
// auth store (signup/login) — they are the same user collection in the
// hostel database.
type OccupantRepository struct {
	col *mongo.Collection
}

func NewOccupantRepository(db *mongo.Database) *OccupantRepository {
	return &OccupantRepository{col: db.Collection(collectionOccupants)}
}

type occupantDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	FullName     string             `bson:"full_name"`
	Email        string             `bson:"email"`
	Phone        string             `bson:"phone"`
	SapID        string             `bson:"sap_id"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	Room         string             `bson:"room,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d *occupantDoc) toDomain() *domain.Occupant {
	return &domain.Occupant{
		ID:           d.ID.Hex(),
		FullName:     d.FullName,
		Email:        d.Email,
		Phone:        d.Phone,
		SapID:        d.SapID,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		RoomID:       d.Room,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (r *OccupantRepository) FindByID(ctx context.Context, id string) (*domain.Occupant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrOccupantNotFound
	}

	var doc occupantDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOccupantNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// SetRoom updates the occupant's room pointer. Called only inside the
// reassignment transaction.
func (r *OccupantRepository) SetRoom(ctx context.Context, occupantID, roomID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(occupantID)
	if err != nil {
		return domain.ErrOccupantNotFound
	}

	update := bson.M{"$set": bson.M{"room": roomID, "updated_at": time.Now().UTC()}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrOccupantNotFound
	}
	return nil
}

func (r *OccupantRepository) Create(ctx context.Context, o *domain.Occupant) (*domain.Occupant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := occupantDoc{
		FullName:     o.FullName,
		Email:        o.Email,
		Phone:        o.Phone,
		SapID:        o.SapID,
		PasswordHash: o.PasswordHash,
		Role:         o.Role,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert occupant: %w", err)
	}

	created := *o
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *OccupantRepository) FindByEmail(ctx context.Context, email string) (*domain.Occupant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc occupantDoc
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOccupantNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *OccupantRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"phone": phone},
	}})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// EnsureIndexes creates the unique identity indexes on the users collection.
func (r *OccupantRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
