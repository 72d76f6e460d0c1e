package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/firestore"
	kms "cloud.google.com/go/kms/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/kisanmate-backend/internal/config"
	"github.com/GregMSThompson/kisanmate-backend/internal/store"
	"github.com/GregMSThompson/kisanmate-backend/pkg/logger"
)

type Bootstrap struct {
	Log           *slog.Logger
	Firestore     *firestore.Client
	Firebase      *auth.Client
	KMS           *kms.KeyManagementClient
	SecretManager *secretmanager.Client
	SMSAPIKey     string
}

// Run builds the shared clients. KMS and Secret Manager are only dialled
// when the config names a key or secret, so local runs against the
// emulators need neither.
func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	bs.Firebase, err = InitFirebase(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}

	if cfg.KMSKeyName != "" {
		bs.KMS, err = kms.NewKeyManagementClient(applicationCtx)
		if err != nil {
			return bs, err
		}
	}

	bs.SMSAPIKey = cfg.SMSAPIKey
	if cfg.SMSAPIKeySecret != "" {
		bs.SecretManager, err = secretmanager.NewClient(applicationCtx)
		if err != nil {
			return bs, err
		}
		bs.SMSAPIKey, err = store.NewSecretStore(bs.SecretManager).Access(applicationCtx, cfg.SMSAPIKeySecret)
		if err != nil {
			return bs, err
		}
	}

	return bs, nil
}

func (bs *Bootstrap) Close() error {
	var errList []error
	if bs.Firestore != nil {
		errList = append(errList, bs.Firestore.Close())
	}
	if bs.KMS != nil {
		errList = append(errList, bs.KMS.Close())
	}
	if bs.SecretManager != nil {
		errList = append(errList, bs.SecretManager.Close())
	}
	return errors.Join(errList...)
}
