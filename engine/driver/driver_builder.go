package driver

// DriverBuilderOption is a functional option applied to a driver during construction via NewDriver.
type DriverBuilderOption func(*driver)

// WithStateHook registers a function called on every frame state change.
// It runs on the rendering goroutine with the driver locked and must not call back into the driver.
//
// Parameters:
//   - hook: receives the previous and the new state
//
// Returns:
//   - DriverBuilderOption: a function that applies the state hook option to a driver
func WithStateHook(hook func(from, to FrameState)) DriverBuilderOption {
	return func(d *driver) {
		d.stateHook = hook
	}
}
