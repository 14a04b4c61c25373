package app

// StopReason is logged when the host shuts down.
type StopReason string

const (
	StopDrained    StopReason = "drained"
	StopSignal     StopReason = "signal"
	StopFatalError StopReason = "fatal_error"
	StopAppStop    StopReason = "app_stop"
)
