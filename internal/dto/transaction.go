package dto

import "github.com/GregMSThompson/kisanmate-backend/internal/models"

type CreateTransactionRequest struct {
	Title     string                 `json:"title"`
	Amount    *int64                 `json:"amount"`
	Type      models.TransactionType `json:"type"`
	Timestamp int64                  `json:"timestamp,omitempty"`
}
