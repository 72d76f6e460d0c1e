package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/kisanmate-backend/internal/dto"
	"github.com/GregMSThompson/kisanmate-backend/internal/errs"
	"github.com/GregMSThompson/kisanmate-backend/internal/models"
	"github.com/GregMSThompson/kisanmate-backend/pkg/logger"
)

type transactionStore interface {
	Add(ctx context.Context, uid string, tx *models.Transaction) error
	List(ctx context.Context, uid string) ([]models.Transaction, error)
	Watch(ctx context.Context, uid string) (<-chan []models.Transaction, <-chan error)
}

type transactionService struct {
	txs   transactionStore
	now   func() time.Time
	newID func() string
}

func NewTransactionService(txs transactionStore) *transactionService {
	return &transactionService{
		txs:   txs,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *transactionService) Add(ctx context.Context, uid string, req dto.CreateTransactionRequest) (*models.Transaction, error) {
	tx, err := s.build(req)
	if err != nil {
		return nil, err
	}

	log, ctx := logger.With(ctx, "transaction_id", tx.ID)
	if err := s.txs.Add(ctx, uid, tx); err != nil {
		log.Error("failed to add transaction", "error", err)
		return nil, err
	}

	log.Info("transaction added", "type", tx.Type, "amount", tx.Amount)
	return tx, nil
}

func (s *transactionService) build(req dto.CreateTransactionRequest) (*models.Transaction, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errs.NewValidationError("title is required")
	}
	if req.Amount == nil {
		return nil, errs.NewValidationError("amount is required")
	}
	if *req.Amount < 0 {
		return nil, errs.NewValidationError("amount must not be negative")
	}

	txType := req.Type
	if txType == "" {
		txType = models.TransactionExpense
	}
	if !txType.Valid() {
		return nil, errs.NewValidationError("type must be income or expense")
	}

	ts := req.Timestamp
	if ts < 0 {
		return nil, errs.NewValidationError("timestamp must not be negative")
	}
	if ts == 0 {
		ts = s.now().UnixMilli()
	}

	return &models.Transaction{
		ID:        s.newID(),
		Title:     title,
		Amount:    *req.Amount,
		Type:      txType,
		Timestamp: ts,
	}, nil
}

// List returns the user's transactions, newest first.
func (s *transactionService) List(ctx context.Context, uid string) ([]models.Transaction, error) {
	txs, err := s.txs.List(ctx, uid)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	return txs, nil
}

func (s *transactionService) Watch(ctx context.Context, uid string) (<-chan []models.Transaction, <-chan error) {
	return s.txs.Watch(ctx, uid)
}
