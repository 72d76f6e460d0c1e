package handlers

import (
	"log/slog"

	"github.com/GregMSThompson/kisanmate-backend/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	AuthSvc         authService
	TransactionSvc  transactionService
	ViewSvc         viewService
	UserSvc         userService
}
