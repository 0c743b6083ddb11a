package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hostelhub/hostel-system/internal/core/domain"
	"github.com/hostelhub/hostel-system/internal/core/ports"
)

const collectionRooms = "rooms"

type RoomRepository struct {
	col *mongo.Collection
}

func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{col: db.Collection(collectionRooms)}
}

type roomDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Block     string             `bson:"block,omitempty"`
	Capacity  int                `bson:"capacity"`
	Occupants []string           `bson:"occupants"`
	Status    domain.RoomStatus  `bson:"status"`
}

func (d *roomDoc) toDomain() *domain.Room {
	occupants := d.Occupants
	if occupants == nil {
		occupants = []string{}
	}
	return &domain.Room{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Block:     d.Block,
		Capacity:  d.Capacity,
		Occupants: occupants,
		Status:    d.Status,
	}
}

func (r *RoomRepository) FindByID(ctx context.Context, id string) (*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRoomNotFound
	}

	var doc roomDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *RoomRepository) List(ctx context.Context, filter ports.RoomFilter) ([]*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	cursor, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rooms := []*domain.Room{}
	for cursor.Next(ctx) {
		var doc roomDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		rooms = append(rooms, doc.toDomain())
	}
	return rooms, cursor.Err()
}

// statusStage recomputes the derived status from the (already updated)
// occupant set, inside the same atomic update.
var statusStage = bson.D{{Key: "$set", Value: bson.M{
	"status": bson.M{"$cond": bson.A{
		bson.M{"$lt": bson.A{bson.M{"$size": "$occupants"}, "$capacity"}},
		domain.RoomAvailable,
		domain.RoomFull,
	}},
}}}

// AddOccupant adds the occupant to the room's set and recomputes the status
// in one guarded UpdateOne. The filter re-checks capacity at write time, so
// two racers for the last seat cannot both match. It still matches when the
// occupant is already present, so a retry or inconsistent prior state
// degrades to a no-op instead of a false "full".
func (r *RoomRepository) AddOccupant(ctx context.Context, roomID, occupantID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return domain.ErrRoomNotFound
	}

	filter := bson.M{
		"_id": oid,
		"$or": bson.A{
			bson.M{"occupants": occupantID},
			bson.M{"$expr": bson.M{"$lt": bson.A{bson.M{"$size": "$occupants"}, "$capacity"}}},
		},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"occupants": bson.M{"$setUnion": bson.A{"$occupants", bson.A{occupantID}}},
		}}},
		statusStage,
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Room missing or at capacity; re-read to tell the two apart.
		if _, err := r.FindByID(ctx, roomID); err != nil {
			return err
		}
		return domain.ErrRoomFull
	}
	return nil
}

// RemoveOccupant drops the occupant from the room's set and recomputes the
// status. Removing from a missing room or an absent occupant is a no-op.
func (r *RoomRepository) RemoveOccupant(ctx context.Context, roomID, occupantID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return nil
	}

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"occupants": bson.M{"$setDifference": bson.A{"$occupants", bson.A{occupantID}}},
		}}},
		statusStage,
	}

	_, err = r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

// EnsureIndexes creates lookup indexes on the rooms collection.
func (r *RoomRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "occupants", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
