package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSizeLimits bounds interactive resizing. Zero leaves a bound open.
//
// Parameters:
//   - minWidth: minimum width in pixels
//   - minHeight: minimum height in pixels
//   - maxWidth: maximum width in pixels
//   - maxHeight: maximum height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth = minWidth
		w.minHeight = minHeight
		w.maxWidth = maxWidth
		w.maxHeight = maxHeight
	}
}

// WithWidth sets the initial window width.
//
// Parameters:
//   - width: initial width in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
	}
}

// WithHeight sets the initial window height.
//
// Parameters:
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.height = height
	}
}

// WithFullscreen opens the window fullscreen on the primary monitor. Ignored in the browser,
// where the canvas always covers the viewport.
//
// Parameters:
//   - fullscreen: true for a fullscreen window
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithFullscreen(fullscreen bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.fullscreen = fullscreen
	}
}
