package services

import (
	"context"
	"errors"
	"time"

	"github.com/GregMSThompson/kisanmate-backend/internal/dto"
	"github.com/GregMSThompson/kisanmate-backend/internal/errs"
	"github.com/GregMSThompson/kisanmate-backend/internal/models"
	"github.com/GregMSThompson/kisanmate-backend/pkg/helpers"
	"github.com/GregMSThompson/kisanmate-backend/pkg/logger"
)

type viewUserStore interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

type viewTxStore interface {
	List(ctx context.Context, uid string) ([]models.Transaction, error)
	Watch(ctx context.Context, uid string) (<-chan []models.Transaction, <-chan error)
}

type viewService struct {
	users viewUserStore
	txs   viewTxStore
	loc   *time.Location
	now   func() time.Time
}

func NewViewService(users viewUserStore, txs viewTxStore, loc *time.Location) *viewService {
	if loc == nil {
		loc = time.UTC
	}
	return &viewService{
		users: users,
		txs:   txs,
		loc:   loc,
		now:   time.Now,
	}
}

// Session reports what the splash screen should do for the caller. An empty
// uid means no valid ID token was presented.
func (s *viewService) Session(ctx context.Context, uid string) (dto.SessionState, error) {
	state := dto.SessionState{
		Progress:   100,
		StatusText: "Ready",
		IsFinished: true,
		Screen:     models.ScreenAuth,
	}
	if uid == "" {
		return state, nil
	}
	state.IsUserLoggedIn = true

	_, err := s.users.GetUser(ctx, uid)
	var notFound *errs.NotFoundError
	switch {
	case err == nil:
		state.HasProfile = true
		state.Screen = models.ScreenMain
	case errors.As(err, &notFound):
		// signed in but signup never finished
	default:
		return dto.SessionState{}, err
	}
	return state, nil
}

func (s *viewService) Dashboard(ctx context.Context, uid string) (dto.DashboardView, error) {
	name, err := s.greetingName(ctx, uid)
	if err != nil {
		return dto.DashboardView{}, err
	}
	txs, err := s.txs.List(ctx, uid)
	if err != nil {
		return dto.DashboardView{}, err
	}
	return BuildDashboard(name, txs), nil
}

func (s *viewService) Report(ctx context.Context, uid string, q dto.ReportQuery) (dto.ReportView, error) {
	month, year, err := s.resolveMonth(q)
	if err != nil {
		return dto.ReportView{}, err
	}
	txs, err := s.txs.List(ctx, uid)
	if err != nil {
		return dto.ReportView{}, err
	}
	return BuildReport(txs, month, year, s.loc), nil
}

func (s *viewService) Ledger(ctx context.Context, uid string) (dto.LedgerView, error) {
	txs, err := s.txs.List(ctx, uid)
	if err != nil {
		return dto.LedgerView{}, err
	}
	return BuildLedger(txs), nil
}

// WatchView re-renders the view for tab on every snapshot of the user's
// transactions and hands it to emit. It returns nil once ctx is cancelled.
func (s *viewService) WatchView(ctx context.Context, uid string, tab models.Tab, q dto.ReportQuery, emit func(any) error) error {
	var render func([]models.Transaction) any

	switch tab {
	case models.TabHome:
		name, err := s.greetingName(ctx, uid)
		if err != nil {
			return err
		}
		render = func(txs []models.Transaction) any { return BuildDashboard(name, txs) }
	case models.TabReports:
		month, year, err := s.resolveMonth(q)
		if err != nil {
			return err
		}
		render = func(txs []models.Transaction) any { return BuildReport(txs, month, year, s.loc) }
	case models.TabKhata:
		render = func(txs []models.Transaction) any { return BuildLedger(txs) }
	default:
		return errs.NewValidationError("view must be home, reports or khata")
	}

	log := logger.FromContext(ctx)
	log.Info("live view opened", "view", tab)

	// stops the listener when emit fails before ctx ends
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	txCh, errCh := s.txs.Watch(ctx, uid)
	err := streamSnapshots(txCh, errCh, func(txs []models.Transaction) error {
		return emit(render(txs))
	})

	log.Info("live view closed", "view", tab)
	return err
}

func (s *viewService) greetingName(ctx context.Context, uid string) (string, error) {
	user, err := s.users.GetUser(ctx, uid)
	if err != nil {
		var notFound *errs.NotFoundError
		if errors.As(err, &notFound) {
			return defaultFarmerName, nil
		}
		return "", err
	}
	return user.Name, nil
}

func (s *viewService) resolveMonth(q dto.ReportQuery) (time.Month, int, error) {
	now := s.now().In(s.loc)
	month := helpers.ValueOr(q.Month, int(now.Month()))
	year := helpers.ValueOr(q.Year, now.Year())

	if month < 1 || month > 12 {
		return 0, 0, errs.NewValidationError("month must be between 1 and 12")
	}
	if year < 1970 || year > 9999 {
		return 0, 0, errs.NewValidationError("year is out of range")
	}
	return time.Month(month), year, nil
}

func streamSnapshots(txCh <-chan []models.Transaction, errCh <-chan error, handle func([]models.Transaction) error) error {
	for txCh != nil || errCh != nil {
		select {
		case txs, ok := <-txCh:
			if !ok {
				txCh = nil
				continue
			}
			if err := handle(txs); err != nil {
				return err
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
