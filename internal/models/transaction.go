package models

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Transaction is an immutable ledger entry stored at
// users/{uid}/transactions/{id}.
type Transaction struct {
	ID        string          `firestore:"id" json:"id"`
	Title     string          `firestore:"title" json:"title"`
	Amount    int64           `firestore:"amount" json:"amount"` // whole rupees, >= 0
	Type      TransactionType `firestore:"type" json:"type"`
	Timestamp int64           `firestore:"timestamp" json:"timestamp"` // epoch ms
}
