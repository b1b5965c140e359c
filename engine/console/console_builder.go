package console

// ConsoleBuilderOption is a functional option applied to a console during construction via NewConsole.
type ConsoleBuilderOption func(*console)

// WithProfileToggle enables the "profile on|off" command, calling toggle with the requested state.
//
// Parameters:
//   - toggle: receives true for "on" and false for "off"
//
// Returns:
//   - ConsoleBuilderOption: a function that applies the profile toggle option to a console
func WithProfileToggle(toggle func(bool)) ConsoleBuilderOption {
	return func(c *console) {
		c.profileToggle = toggle
	}
}
