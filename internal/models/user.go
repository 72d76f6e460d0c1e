package models

// User is the profile document stored at users/{uid}. Times are epoch
// milliseconds to stay compatible with documents written by the mobile app.
type User struct {
	UID       string `firestore:"-" json:"uid"`
	Name      string `firestore:"name" json:"name"`
	Phone     string `firestore:"phone" json:"phone"`
	CreatedAt int64  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt int64  `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
