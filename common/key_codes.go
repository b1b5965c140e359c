package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// The browser window translates KeyboardEvent.key into the same values.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyN     = 78 // N key (ASCII)
	KeyP     = 80 // P key (ASCII)
	KeyR     = 82 // R key (ASCII)
	KeySpace = 32 // Spacebar (ASCII)

	Key1 = 49 // 1 key (ASCII)
	Key2 = 50 // 2 key (ASCII)
	Key3 = 51 // 3 key (ASCII)
	Key4 = 52 // 4 key (ASCII)
	Key5 = 53 // 5 key (ASCII)
	Key6 = 54 // 6 key (ASCII)
	Key7 = 55 // 7 key (ASCII)
	Key8 = 56 // 8 key (ASCII)
	Key9 = 57 // 9 key (ASCII)
)

// Additional non-printable keys
const (
	KeyEsc   = 256 // Escape key (GLFW)
	KeyRight = 262 // Right arrow (GLFW)
	KeyLeft  = 263 // Left arrow (GLFW)
)
