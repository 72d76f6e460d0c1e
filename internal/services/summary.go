package services

import (
	"sort"
	"time"

	"github.com/GregMSThompson/kisanmate-backend/internal/dto"
	"github.com/GregMSThompson/kisanmate-backend/internal/models"
)

const (
	defaultFarmerName = "Farmer"
	recentCount       = 4
)

// Summarize sums amounts by type; Net is income minus expense.
func Summarize(txs []models.Transaction) dto.Summary {
	var sum dto.Summary
	for _, tx := range txs {
		switch tx.Type {
		case models.TransactionIncome:
			sum.Income += tx.Amount
		case models.TransactionExpense:
			sum.Expense += tx.Amount
		}
	}
	sum.Net = sum.Income - sum.Expense
	return sum
}

// NewestFirst returns a copy ordered by timestamp, latest first.
func NewestFirst(txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// InMonth keeps transactions whose timestamp falls in month/year at loc.
func InMonth(txs []models.Transaction, month time.Month, year int, loc *time.Location) []models.Transaction {
	var out []models.Transaction
	for _, tx := range txs {
		t := time.UnixMilli(tx.Timestamp).In(loc)
		if t.Month() == month && t.Year() == year {
			out = append(out, tx)
		}
	}
	return out
}

// ExpenseBreakdown groups expenses by title, largest first. Share is the
// fraction of total expense, 0 when there is none.
func ExpenseBreakdown(txs []models.Transaction) []dto.BreakdownItem {
	items := map[string]*dto.BreakdownItem{}
	var total int64
	for _, tx := range txs {
		if tx.Type != models.TransactionExpense {
			continue
		}
		item, ok := items[tx.Title]
		if !ok {
			item = &dto.BreakdownItem{Title: tx.Title}
			items[tx.Title] = item
		}
		item.Amount += tx.Amount
		item.Count++
		total += tx.Amount
	}

	out := make([]dto.BreakdownItem, 0, len(items))
	for _, item := range items {
		if total > 0 {
			item.Share = float64(item.Amount) / float64(total)
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Title < out[j].Title
	})
	return out
}

func BuildDashboard(name string, txs []models.Transaction) dto.DashboardView {
	if name == "" {
		name = defaultFarmerName
	}
	sorted := NewestFirst(txs)
	if len(sorted) > recentCount {
		sorted = sorted[:recentCount]
	}
	return dto.DashboardView{
		Name:    name,
		Summary: Summarize(txs),
		Recent:  sorted,
	}
}

func BuildReport(txs []models.Transaction, month time.Month, year int, loc *time.Location) dto.ReportView {
	monthTxs := InMonth(txs, month, year, loc)
	return dto.ReportView{
		Month:     int(month),
		Year:      year,
		Summary:   Summarize(monthTxs),
		Breakdown: ExpenseBreakdown(monthTxs),
	}
}

func BuildLedger(txs []models.Transaction) dto.LedgerView {
	return dto.LedgerView{
		Summary:      Summarize(txs),
		Transactions: NewestFirst(txs),
	}
}
