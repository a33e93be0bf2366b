package ports

// Logger is the console surface the pipeline reports progress through.
// Implementations own formatting, colors, and spinner animation; the
// pipeline only emits messages.
type Logger interface {
	Log(msg string)
	Warn(msg string)
	StartSpinner(msg string)
	UpdateSpinner(msg string)
	StopSpinner(msg string)
	StopSpinnerFail(msg string)
}
