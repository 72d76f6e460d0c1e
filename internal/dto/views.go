package dto

import "github.com/GregMSThompson/kisanmate-backend/internal/models"

type Summary struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Net     int64 `json:"net"`
}

type DashboardView struct {
	Name    string               `json:"name"`
	Summary Summary              `json:"summary"`
	Recent  []models.Transaction `json:"recent"`
}

// ReportQuery selects a calendar month; nil fields mean "current".
type ReportQuery struct {
	Month *int
	Year  *int
}

type ReportView struct {
	Month     int             `json:"month"`
	Year      int             `json:"year"`
	Summary   Summary         `json:"summary"`
	Breakdown []BreakdownItem `json:"breakdown"`
}

// BreakdownItem is the expense total for one title within a report month.
type BreakdownItem struct {
	Title  string  `json:"title"`
	Amount int64   `json:"amount"`
	Count  int     `json:"count"`
	Share  float64 `json:"share"`
}

type LedgerView struct {
	Summary      Summary              `json:"summary"`
	Transactions []models.Transaction `json:"transactions"`
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}
