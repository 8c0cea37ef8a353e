package notifier

// Notifier posts formatted event messages to a delivery channel.
type Notifier interface {
	// Notify posts the messages in order. Delivery is best-effort: a
	// returned error means at least one message was not delivered, but
	// earlier messages may already be out.
	Notify(messages []string) error
}
