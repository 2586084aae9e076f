package port

// NotificationSink receives formatted notification messages from wallet
// monitors. Emit is fire-and-forget; the monitor expects no acknowledgment.
// Implementations must be safe for concurrent use, the sink is shared across
// all wallet monitors.
type NotificationSink interface {
	Emit(text string)
}
