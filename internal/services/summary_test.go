package services

import (
	"testing"
	"time"

	"github.com/GregMSThompson/kisanmate-backend/internal/models"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func ms(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 12, 0, 0, 0, ist).UnixMilli()
}

func income(title string, amount int64, ts int64) models.Transaction {
	return models.Transaction{ID: title, Title: title, Amount: amount, Type: models.TransactionIncome, Timestamp: ts}
}

func expense(title string, amount int64, ts int64) models.Transaction {
	return models.Transaction{ID: title, Title: title, Amount: amount, Type: models.TransactionExpense, Timestamp: ts}
}

func TestSummarize(t *testing.T) {
	got := Summarize([]models.Transaction{
		income("Wheat sale", 12000, 1),
		income("Milk", 800, 2),
		expense("Fertilizer", 3500, 3),
		expense("Diesel", 1200, 4),
		{Title: "unknown type", Amount: 999, Type: "gift"},
	})

	if got.Income != 12800 || got.Expense != 4700 || got.Net != 8100 {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

func TestSummarizeNegativeNet(t *testing.T) {
	got := Summarize([]models.Transaction{
		income("Milk", 100, 1),
		expense("Seeds", 250, 2),
	})
	if got.Net != -150 {
		t.Fatalf("net = %d, want -150", got.Net)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	if got.Income != 0 || got.Expense != 0 || got.Net != 0 {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

func TestNewestFirstDoesNotMutateInput(t *testing.T) {
	in := []models.Transaction{income("a", 1, 10), income("b", 1, 30), income("c", 1, 20)}
	got := NewestFirst(in)

	if got[0].Title != "b" || got[1].Title != "c" || got[2].Title != "a" {
		t.Fatalf("unexpected order: %v", got)
	}
	if in[0].Title != "a" {
		t.Fatalf("input reordered")
	}
}

func TestInMonthUsesLocation(t *testing.T) {
	// 31 Jan 20:00 UTC is already 1 Feb in India.
	lateJanUTC := time.Date(2025, time.January, 31, 20, 0, 0, 0, time.UTC).UnixMilli()
	txs := []models.Transaction{
		expense("Seeds", 100, lateJanUTC),
		expense("Diesel", 50, ms(2025, time.January, 10)),
		expense("Old", 75, ms(2024, time.February, 10)),
	}

	feb := InMonth(txs, time.February, 2025, ist)
	if len(feb) != 1 || feb[0].Title != "Seeds" {
		t.Fatalf("February IST = %v", feb)
	}
	janUTC := InMonth(txs, time.January, 2025, time.UTC)
	if len(janUTC) != 2 {
		t.Fatalf("January UTC = %v", janUTC)
	}
}

func TestExpenseBreakdown(t *testing.T) {
	got := ExpenseBreakdown([]models.Transaction{
		expense("Fertilizer", 300, 1),
		expense("Diesel", 100, 2),
		expense("Fertilizer", 200, 3),
		expense("Seeds", 100, 4),
		income("Wheat sale", 5000, 5),
	})

	if len(got) != 3 {
		t.Fatalf("items = %d, want 3", len(got))
	}
	if got[0].Title != "Fertilizer" || got[0].Amount != 500 || got[0].Count != 2 {
		t.Fatalf("first item = %+v", got[0])
	}
	// equal amounts are ordered by title
	if got[1].Title != "Diesel" || got[2].Title != "Seeds" {
		t.Fatalf("tie order = %s, %s", got[1].Title, got[2].Title)
	}
	if got[0].Share != 500.0/700.0 {
		t.Fatalf("share = %v", got[0].Share)
	}
}

func TestExpenseBreakdownZeroTotal(t *testing.T) {
	got := ExpenseBreakdown([]models.Transaction{expense("Free manure", 0, 1)})
	if len(got) != 1 || got[0].Share != 0 {
		t.Fatalf("unexpected breakdown: %+v", got)
	}
}

func TestBuildDashboard(t *testing.T) {
	txs := []models.Transaction{
		income("a", 10, 1), income("b", 10, 2), income("c", 10, 3),
		expense("d", 5, 4), expense("e", 5, 5),
	}

	got := BuildDashboard("", txs)

	if got.Name != "Farmer" {
		t.Fatalf("name = %q", got.Name)
	}
	if len(got.Recent) != 4 || got.Recent[0].Title != "e" || got.Recent[3].Title != "b" {
		t.Fatalf("recent = %v", got.Recent)
	}
	if got.Summary.Income != 30 || got.Summary.Expense != 10 || got.Summary.Net != 20 {
		t.Fatalf("summary = %+v", got.Summary)
	}
}

func TestBuildReport(t *testing.T) {
	txs := []models.Transaction{
		income("Wheat sale", 9000, ms(2025, time.March, 3)),
		expense("Fertilizer", 2000, ms(2025, time.March, 5)),
		expense("Fertilizer", 1000, ms(2025, time.April, 5)),
	}

	got := BuildReport(txs, time.March, 2025, ist)

	if got.Month != 3 || got.Year != 2025 {
		t.Fatalf("period = %d/%d", got.Month, got.Year)
	}
	if got.Summary.Income != 9000 || got.Summary.Expense != 2000 || got.Summary.Net != 7000 {
		t.Fatalf("summary = %+v", got.Summary)
	}
	if len(got.Breakdown) != 1 || got.Breakdown[0].Share != 1 {
		t.Fatalf("breakdown = %+v", got.Breakdown)
	}
}

func TestBuildLedger(t *testing.T) {
	got := BuildLedger([]models.Transaction{expense("x", 10, 1), income("y", 30, 2)})
	if got.Transactions[0].Title != "y" || got.Summary.Net != 20 {
		t.Fatalf("unexpected ledger: %+v", got)
	}
}
