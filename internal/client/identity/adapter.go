package identityclient

import (
	"context"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/kisanmate-backend/internal/errs"
)

const serviceName = "firebase-auth"

// Adapter wraps the Firebase Admin auth client for the phone sign-in flow.
type Adapter struct {
	client *auth.Client
}

func NewAdapter(client *auth.Client) *Adapter {
	return &Adapter{client: client}
}

// FindOrCreateByPhone returns the Firebase uid for an E.164 phone number,
// creating the account when none exists yet.
func (a *Adapter) FindOrCreateByPhone(ctx context.Context, phone string) (string, bool, error) {
	u, err := a.client.GetUserByPhoneNumber(ctx, phone)
	if err == nil {
		return u.UID, false, nil
	}
	if !auth.IsUserNotFound(err) {
		return "", false, errs.NewExternalServiceError(serviceName, "failed to look up user", true, err)
	}

	u, err = a.client.CreateUser(ctx, (&auth.UserToCreate{}).PhoneNumber(phone))
	if err != nil {
		if auth.IsPhoneNumberAlreadyExists(err) {
			// lost a race with a concurrent verification of the same number
			u, err = a.client.GetUserByPhoneNumber(ctx, phone)
			if err == nil {
				return u.UID, false, nil
			}
		}
		return "", false, errs.NewExternalServiceError(serviceName, "failed to create user", false, err)
	}
	return u.UID, true, nil
}

// CustomToken mints a token the client exchanges for a Firebase session.
func (a *Adapter) CustomToken(ctx context.Context, uid string) (string, error) {
	token, err := a.client.CustomToken(ctx, uid)
	if err != nil {
		return "", errs.NewExternalServiceError(serviceName, "failed to mint custom token", false, err)
	}
	return token, nil
}

// RevokeSessions invalidates every refresh token issued to uid.
func (a *Adapter) RevokeSessions(ctx context.Context, uid string) error {
	if err := a.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return errs.NewExternalServiceError(serviceName, "failed to revoke sessions", true, err)
	}
	return nil
}
