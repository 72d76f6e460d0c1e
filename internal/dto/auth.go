package dto

import (
	"time"

	"github.com/GregMSThompson/kisanmate-backend/internal/models"
)

type RequestOTPRequest struct {
	Phone string          `json:"phone"`
	Mode  models.AuthMode `json:"mode,omitempty"`
	Name  string          `json:"name,omitempty"`
}

type RequestOTPResponse struct {
	SessionID string            `json:"sessionId"`
	Status    models.AuthStatus `json:"status"`
	Mode      models.AuthMode   `json:"mode"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

type VerifyOTPRequest struct {
	SessionID string `json:"sessionId"`
	Code      string `json:"code"`
	Name      string `json:"name,omitempty"`
}

type VerifyOTPResponse struct {
	Token     string            `json:"token"`
	UID       string            `json:"uid"`
	IsNewUser bool              `json:"isNewUser"`
	Status    models.AuthStatus `json:"status"`
}

type ToggleModeRequest struct {
	SessionID string `json:"sessionId"`
}

type ToggleModeResponse struct {
	SessionID string            `json:"sessionId"`
	Mode      models.AuthMode   `json:"mode"`
	Status    models.AuthStatus `json:"status"`
}

// SessionState is what the splash screen needs to decide where to go next.
type SessionState struct {
	Progress       int           `json:"progress"`
	StatusText     string        `json:"statusText"`
	IsFinished     bool          `json:"isFinished"`
	IsUserLoggedIn bool          `json:"isUserLoggedIn"`
	HasProfile     bool          `json:"hasProfile"`
	Screen         models.Screen `json:"screen"`
}

// SMSMessage is one outbound text for the SMS gateway.
type SMSMessage struct {
	To   string `json:"to"`
	Body string `json:"body"`
}
