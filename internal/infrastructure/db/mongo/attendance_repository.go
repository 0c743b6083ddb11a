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
)

const collectionAttendance = "attendance"

type AttendanceRepository struct {
	col *mongo.Collection
}

func NewAttendanceRepository(db *mongo.Database) *AttendanceRepository {
	return &AttendanceRepository{col: db.Collection(collectionAttendance)}
}

type attendanceDoc struct {
	ID         primitive.ObjectID      `bson:"_id,omitempty"`
	Student    string                  `bson:"student"`
	Date       time.Time               `bson:"date"`
	Day        string                  `bson:"day"`
	VerifiedBy string                  `bson:"verified_by"`
	Status     domain.AttendanceStatus `bson:"status"`
	CreatedAt  time.Time               `bson:"created_at"`
}

func (d *attendanceDoc) toDomain() *domain.AttendanceRecord {
	return &domain.AttendanceRecord{
		ID:         d.ID.Hex(),
		OccupantID: d.Student,
		Date:       d.Date,
		Day:        d.Day,
		VerifiedBy: d.VerifiedBy,
		Status:     d.Status,
		CreatedAt:  d.CreatedAt,
	}
}

// FindForDay returns the occupant's record for the given calendar day, or
// nil when none exists.
func (r *AttendanceRepository) FindForDay(ctx context.Context, occupantID, day string) (*domain.AttendanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc attendanceDoc
	err := r.col.FindOne(ctx, bson.M{"student": occupantID, "day": day}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// Insert writes one attendance record. The unique (student, day) index
// rejects a second record for the same day; that violation surfaces as
// domain.ErrDuplicateAttendance so the service can resolve the race.
func (r *AttendanceRepository) Insert(ctx context.Context, rec *domain.AttendanceRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := attendanceDoc{
		Student:    rec.OccupantID,
		Date:       rec.Date,
		Day:        rec.Day,
		VerifiedBy: rec.VerifiedBy,
		Status:     rec.Status,
		CreatedAt:  rec.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateAttendance
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		rec.ID = oid.Hex()
	}
	return nil
}

// ListByOccupant returns all records for the occupant, newest first.
func (r *AttendanceRepository) ListByOccupant(ctx context.Context, occupantID string) ([]*domain.AttendanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx,
		bson.M{"student": occupantID},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []*domain.AttendanceRecord{}
	for cursor.Next(ctx) {
		var doc attendanceDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		records = append(records, doc.toDomain())
	}
	return records, cursor.Err()
}

// EnsureIndexes creates the unique (student, day) index — the storage-level
// backstop for the one-record-per-day invariant.
func (r *AttendanceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "student", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "student", Value: 1}, {Key: "date", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
