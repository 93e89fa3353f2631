package repository

import (
	"codelive/internal/model"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicateCode is returned when a join code collides on insert
var ErrDuplicateCode = errors.New("join code already exists")

// SessionRepo is the persistent store for live sessions. Mutations touch
// only the subfield they own (broadcast slot, one scratchpad entry, the
// participant array), so concurrent writers to the same session never
// overwrite each other's cell.
type SessionRepo interface {
	Create(ctx context.Context, session *model.Session) error
	GetByCode(ctx context.Context, code string) (*model.Session, error)
	SetBroadcast(ctx context.Context, code string, snap *model.Snapshot) (bool, error)
	SetScratchpad(ctx context.Context, code, studentID string, snap *model.Snapshot) (bool, error)
	UpsertParticipant(ctx context.Context, code string, p model.Participant) (*model.Session, error)
	RemoveParticipant(ctx context.Context, code, userID string) error
	Deactivate(ctx context.Context, code string, endedAt time.Time) (bool, error)
	ListActiveStartedBefore(ctx context.Context, cutoff time.Time) ([]*model.Session, error)
}

type sessionRepo struct {
	collection *mongo.Collection
}

// NewSessionRepo creates a MongoDB-backed session repo
func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{
		collection: db.Collection("sessions"),
	}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	// Join code is the _id, so Mongo enforces uniqueness
	_, err := r.collection.InsertOne(ctx, session)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateCode
	}
	return err
}

func (r *sessionRepo) GetByCode(ctx context.Context, code string) (*model.Session, error) {
	var session model.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": code}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Session not found
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) SetBroadcast(ctx context.Context, code string, snap *model.Snapshot) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": code},
		bson.M{"$set": bson.M{"broadcast": snap}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *sessionRepo) SetScratchpad(ctx context.Context, code, studentID string, snap *model.Snapshot) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": code},
		bson.M{"$set": bson.M{"scratchpads." + studentID: snap}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *sessionRepo) UpsertParticipant(ctx context.Context, code string, p model.Participant) (*model.Session, error) {
	// Refresh lastSeenAt if the user is already on the roster
	refresh := func() (bool, error) {
		res, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": code, "participants.userId": p.UserID},
			bson.M{"$set": bson.M{
				"participants.$.lastSeenAt": p.LastSeenAt,
				"participants.$.name":       p.Name,
			}},
		)
		if err != nil {
			return false, err
		}
		return res.MatchedCount > 0, nil
	}

	refreshed, err := refresh()
	if err != nil {
		return nil, err
	}
	if !refreshed {
		// Not on the roster yet, append. The $ne guard makes the push
		// conditional on the user still being absent, so two concurrent
		// joins cannot both append: the loser matches nothing.
		res, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": code, "participants.userId": bson.M{"$ne": p.UserID}},
			bson.M{"$push": bson.M{"participants": p}},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			// Either a concurrent join got there first or the session is
			// gone; a second refresh tells the two apart
			refreshed, err = refresh()
			if err != nil {
				return nil, err
			}
			if !refreshed {
				return nil, nil // Session not found
			}
		}
	}

	return r.GetByCode(ctx, code)
}

func (r *sessionRepo) RemoveParticipant(ctx context.Context, code, userID string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": code},
		bson.M{"$pull": bson.M{"participants": bson.M{"userId": userID}}},
	)
	return err
}

func (r *sessionRepo) Deactivate(ctx context.Context, code string, endedAt time.Time) (bool, error) {
	// Filter on isActive so deactivating twice is a no-op and the caller
	// can tell whether this call made the transition
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": code, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "endedAt": endedAt}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *sessionRepo) ListActiveStartedBefore(ctx context.Context, cutoff time.Time) ([]*model.Session, error) {
	// Age is measured from startedAt, falling back to createdAt when no
	// start time was recorded, the same base the expiry predicate uses
	var zero time.Time
	cursor, err := r.collection.Find(ctx, bson.M{
		"isActive": true,
		"$or": []bson.M{
			{"startedAt": bson.M{"$gt": zero, "$lt": cutoff}},
			{"startedAt": zero, "createdAt": bson.M{"$lt": cutoff}},
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
