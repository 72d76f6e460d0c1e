package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/bxcodec/faker/v3"

	"github.com/GregMSThompson/kisanmate-backend/internal/bootstrap"
	"github.com/GregMSThompson/kisanmate-backend/internal/config"
	"github.com/GregMSThompson/kisanmate-backend/internal/dto"
	"github.com/GregMSThompson/kisanmate-backend/internal/errs"
	"github.com/GregMSThompson/kisanmate-backend/internal/models"
	"github.com/GregMSThompson/kisanmate-backend/internal/services"
	"github.com/GregMSThompson/kisanmate-backend/internal/store"
	"github.com/GregMSThompson/kisanmate-backend/pkg/helpers"
	"github.com/GregMSThompson/kisanmate-backend/pkg/logger"
)

var (
	expenseTitles = []string{"Seeds", "Fertilizer", "Diesel", "Labour", "Pesticide", "Tractor rent", "Irrigation"}
	incomeTitles  = []string{"Wheat sale", "Rice sale", "Milk", "Vegetables", "Sugarcane sale"}
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

// seed writes a demo profile and ledger for one uid. Point
// FIRESTORE_EMULATOR_HOST at an emulator to keep it off real data.
func main() {
	uid := flag.String("uid", "", "user id to seed (required)")
	count := flag.Int("n", 40, "number of transactions")
	days := flag.Int("days", 90, "spread transactions over this many past days")
	flag.Parse()

	if *uid == "" || *count < 0 {
		fmt.Fprintln(os.Stderr, "seed: -uid is required and -n must not be negative")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	log := bs.Log.With("uid", *uid)
	ctx := logger.ToContext(context.Background(), log)

	ustore := store.NewUserStore(bs.Firestore)
	txserv := services.NewTransactionService(store.NewTransactionStore(bs.Firestore))

	err = ustore.CreateUser(ctx, &models.User{
		UID:       *uid,
		Name:      faker.Name(),
		Phone:     randomPhone(),
		CreatedAt: time.Now().UnixMilli(),
	})
	if _, exists := err.(*errs.AlreadyExistsError); exists {
		log.Info("profile already present, keeping it")
		err = nil
	}
	exitOnError("failed to create profile", err, log)

	now := time.Now()
	for i := 0; i < *count; i++ {
		_, err := txserv.Add(ctx, *uid, randomTransaction(now, *days))
		exitOnError("failed to add transaction", err, log)
	}

	log.Info("seed complete", "transactions", *count)
}

func randomTransaction(now time.Time, days int) dto.CreateTransactionRequest {
	age := time.Duration(rand.IntN(max(days, 1)*24)) * time.Hour
	req := dto.CreateTransactionRequest{Timestamp: now.Add(-age).UnixMilli()}

	if rand.IntN(3) == 0 {
		req.Type = models.TransactionIncome
		req.Title = incomeTitles[rand.IntN(len(incomeTitles))]
		req.Amount = helpers.Ptr(int64(2000 + rand.IntN(20000)))
	} else {
		req.Type = models.TransactionExpense
		req.Title = expenseTitles[rand.IntN(len(expenseTitles))]
		req.Amount = helpers.Ptr(int64(100 + rand.IntN(5000)))
	}

	// an occasional free-text entry, as typed on the phone
	if w := faker.Word(); w != "" && rand.IntN(5) == 0 {
		req.Title = strings.ToUpper(w[:1]) + w[1:]
	}
	return req
}

func randomPhone() string {
	var b strings.Builder
	b.WriteByte(byte('6' + rand.IntN(4)))
	for i := 0; i < 9; i++ {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}
