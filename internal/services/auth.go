package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/GregMSThompson/kisanmate-backend/internal/dto"
	"github.com/GregMSThompson/kisanmate-backend/internal/errs"
	"github.com/GregMSThompson/kisanmate-backend/internal/models"
	"github.com/GregMSThompson/kisanmate-backend/pkg/logger"
)

const (
	msgInvalidOTP      = "Invalid OTP"
	msgSignupRequired  = "Please create account first"
	msgTooManyAttempts = "Too many attempts, request a new OTP"
	msgOTPExpired      = "OTP expired, request a new one"
	msgSendFailed      = "Could not send OTP, try again"
	msgVerifyFailed    = "Verification failed, try again"
	msgInProgress      = "Verification already in progress, try again"
)

type authSessionStore interface {
	Create(ctx context.Context, session *models.VerificationSession) error
	Mutate(ctx context.Context, sessionID string, fn func(*models.VerificationSession) error) (*models.VerificationSession, error)
	Update(ctx context.Context, session *models.VerificationSession) error
	ReserveSend(ctx context.Context, key string, now time.Time, window time.Duration) error
}

type authUserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

type identityProvider interface {
	FindOrCreateByPhone(ctx context.Context, phone string) (string, bool, error)
	CustomToken(ctx context.Context, uid string) (string, error)
	RevokeSessions(ctx context.Context, uid string) error
}

type smsSender interface {
	Send(ctx context.Context, msg dto.SMSMessage) error
}

type cipher interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

type AuthConfig struct {
	CountryCode string
	OTPTTL      time.Duration
	MaxAttempts int
	// ResendInterval is the minimum gap between codes sent to one phone.
	// Zero disables the check.
	ResendInterval time.Duration
}

type authService struct {
	sessions authSessionStore
	users    authUserStore
	identity identityProvider
	sms      smsSender
	cipher   cipher
	cfg      AuthConfig

	now      func() time.Time
	newCode  func() (string, error)
	hashCost int
}

func NewAuthService(sessions authSessionStore, users authUserStore, identity identityProvider, sms smsSender, cipher cipher, cfg AuthConfig) *authService {
	return &authService{
		sessions: sessions,
		users:    users,
		identity: identity,
		sms:      sms,
		cipher:   cipher,
		cfg:      cfg,
		now:      time.Now,
		newCode:  randomCode,
		hashCost: bcrypt.DefaultCost,
	}
}

// RequestOTP validates the phone number, stores a new verification session
// and texts the code to the user.
func (s *authService) RequestOTP(ctx context.Context, req dto.RequestOTPRequest) (dto.RequestOTPResponse, error) {
	phone := DigitsOnly(req.Phone)
	if err := ValidatePhone(phone); err != nil {
		return dto.RequestOTPResponse{}, err
	}
	mode, err := parseMode(req.Mode)
	if err != nil {
		return dto.RequestOTPResponse{}, err
	}

	if s.cfg.ResendInterval > 0 {
		if err := s.sessions.ReserveSend(ctx, phoneKey(s.cfg.CountryCode+phone), s.now(), s.cfg.ResendInterval); err != nil {
			return dto.RequestOTPResponse{}, err
		}
	}

	code, err := s.newCode()
	if err != nil {
		return dto.RequestOTPResponse{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.hashCost)
	if err != nil {
		return dto.RequestOTPResponse{}, err
	}
	phoneCipher, err := s.cipher.Encrypt(ctx, phone)
	if err != nil {
		return dto.RequestOTPResponse{}, err
	}

	now := s.now()
	session := &models.VerificationSession{
		SessionID:   uuid.New().String(),
		PhoneCipher: phoneCipher,
		CodeHash:    string(hash),
		Mode:        mode,
		Name:        strings.TrimSpace(req.Name),
		Status:      models.AuthOTPRequested,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.cfg.OTPTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return dto.RequestOTPResponse{}, err
	}

	log, ctx := logger.With(ctx, "session_id", session.SessionID)

	if err := s.sms.Send(ctx, dto.SMSMessage{
		To:   s.cfg.CountryCode + phone,
		Body: otpMessage(code, s.cfg.OTPTTL),
	}); err != nil {
		log.Error("failed to send otp", "error", err)
		s.fail(ctx, session, models.AuthIdle, msgSendFailed)
		return dto.RequestOTPResponse{}, err
	}

	log.Info("otp requested", "mode", mode)
	return dto.RequestOTPResponse{
		SessionID: session.SessionID,
		Status:    session.Status,
		Mode:      session.Mode,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// VerifyOTP checks the code and signs the user in. A verified phone without
// a profile needs a name; without one the session goes back to
// otp_requested in signup mode so the client can resubmit.
func (s *authService) VerifyOTP(ctx context.Context, req dto.VerifyOTPRequest) (dto.VerifyOTPResponse, error) {
	if req.SessionID == "" {
		return dto.VerifyOTPResponse{}, errs.NewValidationError("sessionId is required")
	}
	code := DigitsOnly(req.Code)
	if err := ValidateOTP(code); err != nil {
		return dto.VerifyOTPResponse{}, err
	}

	log, ctx := logger.With(ctx, "session_id", req.SessionID)

	// The code is checked and counted inside the session transaction. A match
	// moves the session to verifying, which keeps every other request out.
	var matched bool
	session, err := s.sessions.Mutate(ctx, req.SessionID, func(vs *models.VerificationSession) error {
		if err := s.checkUsable(vs); err != nil {
			return err
		}
		matched = bcrypt.CompareHashAndPassword([]byte(vs.CodeHash), []byte(code)) == nil
		if matched {
			vs.Status = models.AuthVerifying
			vs.Error = ""
			return nil
		}
		vs.Attempts++
		vs.Status = models.AuthOTPRequested
		vs.Error = msgInvalidOTP
		if vs.Attempts >= s.cfg.MaxAttempts {
			vs.Error = msgTooManyAttempts
		}
		return nil
	})
	if err != nil {
		return dto.VerifyOTPResponse{}, err
	}

	if !matched {
		log.Warn("otp rejected", "attempts", session.Attempts)
		if session.Attempts >= s.cfg.MaxAttempts {
			return dto.VerifyOTPResponse{}, errs.NewTooManyAttemptsError(msgTooManyAttempts)
		}
		return dto.VerifyOTPResponse{}, errs.NewAuthenticationError(msgInvalidOTP)
	}

	phone, err := s.cipher.Decrypt(ctx, session.PhoneCipher)
	if err != nil {
		s.fail(ctx, session, models.AuthOTPRequested, msgVerifyFailed)
		return dto.VerifyOTPResponse{}, err
	}

	uid, created, err := s.identity.FindOrCreateByPhone(ctx, s.cfg.CountryCode+phone)
	if err != nil {
		s.fail(ctx, session, models.AuthOTPRequested, msgVerifyFailed)
		return dto.VerifyOTPResponse{}, err
	}
	session.UID = uid
	log, ctx = logger.With(ctx, "uid", uid)
	if created {
		log.Info("identity created for phone")
	}

	isNewUser, err := s.ensureProfile(ctx, session, uid, phone, req.Name)
	if err != nil {
		return dto.VerifyOTPResponse{}, err
	}

	token, err := s.identity.CustomToken(ctx, uid)
	if err != nil {
		s.fail(ctx, session, models.AuthOTPRequested, msgVerifyFailed)
		return dto.VerifyOTPResponse{}, err
	}

	session.Status = models.AuthAuthenticated
	session.Error = ""
	if err := s.sessions.Update(ctx, session); err != nil {
		return dto.VerifyOTPResponse{}, err
	}

	log.Info("user authenticated", "new_user", isNewUser)
	return dto.VerifyOTPResponse{
		Token:     token,
		UID:       uid,
		IsNewUser: isNewUser,
		Status:    session.Status,
	}, nil
}

// ensureProfile implements the signup/login branch and reports whether a
// profile was created.
func (s *authService) ensureProfile(ctx context.Context, session *models.VerificationSession, uid, phone, reqName string) (bool, error) {
	_, err := s.users.GetUser(ctx, uid)
	if err == nil {
		return false, nil
	}
	var notFound *errs.NotFoundError
	if !errors.As(err, &notFound) {
		s.fail(ctx, session, models.AuthOTPRequested, msgVerifyFailed)
		return false, err
	}

	name := strings.TrimSpace(reqName)
	if name == "" {
		name = session.Name
	}
	if name == "" {
		session.Mode = models.AuthModeSignup
		s.fail(ctx, session, models.AuthOTPRequested, msgSignupRequired)
		return false, errs.NewSignupRequiredError(msgSignupRequired)
	}

	err = s.users.CreateUser(ctx, &models.User{
		UID:       uid,
		Name:      name,
		Phone:     phone,
		CreatedAt: s.now().UnixMilli(),
	})
	var exists *errs.AlreadyExistsError
	switch {
	case err == nil:
		session.Name = name
		return true, nil
	case errors.As(err, &exists):
		// created by a concurrent verification; treat as login
		return false, nil
	default:
		s.fail(ctx, session, models.AuthOTPRequested, msgVerifyFailed)
		return false, err
	}
}

// ToggleMode flips a pending session between signup and login.
func (s *authService) ToggleMode(ctx context.Context, sessionID string) (dto.ToggleModeResponse, error) {
	if sessionID == "" {
		return dto.ToggleModeResponse{}, errs.NewValidationError("sessionId is required")
	}
	session, err := s.sessions.Mutate(ctx, sessionID, func(vs *models.VerificationSession) error {
		switch vs.Status {
		case models.AuthAuthenticated:
			return errs.NewValidationError("session already authenticated")
		case models.AuthVerifying:
			return errs.NewValidationError(msgInProgress)
		}
		if vs.Mode == models.AuthModeSignup {
			vs.Mode = models.AuthModeLogin
		} else {
			vs.Mode = models.AuthModeSignup
		}
		vs.Error = ""
		return nil
	})
	if err != nil {
		return dto.ToggleModeResponse{}, err
	}

	return dto.ToggleModeResponse{
		SessionID: session.SessionID,
		Mode:      session.Mode,
		Status:    session.Status,
	}, nil
}

func (s *authService) Logout(ctx context.Context, uid string) error {
	if err := s.identity.RevokeSessions(ctx, uid); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("user signed out")
	return nil
}

func (s *authService) checkUsable(session *models.VerificationSession) error {
	switch {
	case session.Status == models.AuthIdle:
		return errs.NewValidationError("no OTP was sent for this session, request a new one")
	case session.Status == models.AuthAuthenticated:
		return errs.NewExpiredError("OTP already used, request a new one")
	case session.Status == models.AuthVerifying:
		return errs.NewValidationError(msgInProgress)
	case !s.now().Before(session.ExpiresAt):
		return errs.NewExpiredError(msgOTPExpired)
	case session.Attempts >= s.cfg.MaxAttempts:
		return errs.NewTooManyAttemptsError(msgTooManyAttempts)
	}
	return nil
}

// fail records a user-facing message on the session and moves it back to
// the given input state. The caller returns the underlying error, so
// a failed write here is only logged.
func (s *authService) fail(ctx context.Context, session *models.VerificationSession, status models.AuthStatus, message string) {
	session.Status = status
	session.Error = message
	if err := s.sessions.Update(ctx, session); err != nil {
		logger.FromContext(ctx).Error("failed to record verification error", "error", err)
	}
}

func parseMode(mode models.AuthMode) (models.AuthMode, error) {
	switch mode {
	case "":
		return models.AuthModeSignup, nil
	case models.AuthModeSignup, models.AuthModeLogin:
		return mode, nil
	default:
		return "", errs.NewValidationError("mode must be signup or login")
	}
}

func otpMessage(code string, ttl time.Duration) string {
	return fmt.Sprintf("%s is your KisanMate verification code. It expires in %d minutes.", code, int(ttl.Minutes()))
}

// phoneKey names the throttle document for a phone without storing the
// number itself.
func phoneKey(phone string) string {
	sum := sha256.Sum256([]byte(phone))
	return hex.EncodeToString(sum[:])
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
