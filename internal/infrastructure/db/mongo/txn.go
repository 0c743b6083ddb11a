package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// SessionRunner implements ports.TxnRunner on top of MongoDB sessions. The
// callback's ctx is a session context, so every repository call made with it
// joins the same multi-document transaction: all writes commit together or
// none do.
//
// Snapshot read concern plus majority write concern give the serializable
// behaviour the reassignment path requires; the driver transparently retries
// transient write conflicts between competing transactions.
type SessionRunner struct {
	client *mongo.Client
}

func NewSessionRunner(client *mongo.Client) *SessionRunner {
	return &SessionRunner{client: client}
}

func (r *SessionRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, opts)
	return err
}
