package store

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/kisanmate-backend/internal/errs"
	"github.com/GregMSThompson/kisanmate-backend/internal/models"
	"github.com/GregMSThompson/kisanmate-backend/pkg/logger"
)

type transactionStore struct {
	client *firestore.Client
}

func NewTransactionStore(client *firestore.Client) *transactionStore {
	return &transactionStore{client: client}
}

func (s *transactionStore) txCollection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("transactions")
}

func (s *transactionStore) ordered(uid string) firestore.Query {
	return s.txCollection(uid).OrderBy("timestamp", firestore.Desc)
}

func (s *transactionStore) Add(ctx context.Context, uid string, tx *models.Transaction) error {
	_, err := s.txCollection(uid).Doc(tx.ID).Create(ctx, tx)
	if err != nil {
		return errs.NewDatabaseError("create", "failed to save transaction", err)
	}
	return nil
}

// List returns every transaction for uid, newest first.
func (s *transactionStore) List(ctx context.Context, uid string) ([]models.Transaction, error) {
	iter := s.ordered(uid).Documents(ctx)
	defer iter.Stop()

	var out []models.Transaction
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to list transactions", err)
		}
		tx, err := decodeTransaction(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// Watch opens a snapshot listener on the user's transactions and sends the
// full ordered list on every change. Both channels close when ctx is done or
// the listener fails; a failure is sent on the error channel first.
func (s *transactionStore) Watch(ctx context.Context, uid string) (<-chan []models.Transaction, <-chan error) {
	txCh := make(chan []models.Transaction)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		defer close(txCh)

		log := logger.FromContext(ctx)
		snaps := s.ordered(uid).Snapshots(ctx)
		defer snaps.Stop()

		for {
			snap, err := snaps.Next()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
					log.Debug("transaction listener stopped")
					return
				}
				errCh <- errs.NewDatabaseError("watch", "transaction listener failed", err)
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				errCh <- errs.NewDatabaseError("watch", "failed to read transaction snapshot", err)
				return
			}
			txs := make([]models.Transaction, 0, len(docs))
			for _, doc := range docs {
				tx, err := decodeTransaction(doc)
				if err != nil {
					errCh <- err
					return
				}
				txs = append(txs, tx)
			}

			select {
			case txCh <- txs:
			case <-ctx.Done():
				return
			}
		}
	}()

	return txCh, errCh
}

// Documents written by the mobile app through Add() carry an empty id field,
// so the document ID is authoritative.
func decodeTransaction(doc *firestore.DocumentSnapshot) (models.Transaction, error) {
	var tx models.Transaction
	if err := doc.DataTo(&tx); err != nil {
		return tx, errs.NewDatabaseError("read", "failed to parse transaction data", err)
	}
	tx.ID = doc.Ref.ID
	return tx, nil
}
