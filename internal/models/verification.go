package models

import "time"

// AuthStatus is the state of a phone verification session.
type AuthStatus string

const (
	AuthIdle          AuthStatus = "idle"
	AuthOTPRequested  AuthStatus = "otp_requested"
	AuthVerifying     AuthStatus = "verifying"
	AuthAuthenticated AuthStatus = "authenticated"
)

type AuthMode string

const (
	AuthModeSignup AuthMode = "signup"
	AuthModeLogin  AuthMode = "login"
)

// VerificationSession tracks one OTP exchange. ExpiresAt doubles as the
// Firestore TTL field.
type VerificationSession struct {
	SessionID   string     `firestore:"sessionId" json:"sessionId"`
	PhoneCipher string     `firestore:"phoneCipher" json:"-"`
	CodeHash    string     `firestore:"codeHash" json:"-"`
	Mode        AuthMode   `firestore:"mode" json:"mode"`
	Name        string     `firestore:"name,omitempty" json:"name,omitempty"`
	Status      AuthStatus `firestore:"status" json:"status"`
	Attempts    int        `firestore:"attempts" json:"attempts"`
	Error       string     `firestore:"error,omitempty" json:"error,omitempty"`
	UID         string     `firestore:"uid,omitempty" json:"uid,omitempty"`
	CreatedAt   time.Time  `firestore:"createdAt" json:"createdAt"`
	ExpiresAt   time.Time  `firestore:"expiresAt" json:"expiresAt"`
}

// OTPThrottle blocks repeat sends to one phone until ExpiresAt, which is
// also its TTL field. The document id is a hash of the phone number.
type OTPThrottle struct {
	RequestedAt time.Time `firestore:"requestedAt"`
	ExpiresAt   time.Time `firestore:"expiresAt"`
}
