package models

// Screen is the top-level place the client should show.
type Screen string

const (
	ScreenSplash Screen = "splash"
	ScreenAuth   Screen = "auth"
	ScreenMain   Screen = "main"
)

// Tab is a bottom-navigation destination inside ScreenMain.
type Tab string

const (
	TabHome    Tab = "home"
	TabReports Tab = "reports"
	TabKhata   Tab = "khata"
	TabProfile Tab = "profile"
)
