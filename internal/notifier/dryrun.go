package notifier

import (
	"fmt"
	"io"
	"os"
)

// DryRunNotifier prints what would be posted without delivering anything.
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to stdout.
func NewDryRunNotifier() *DryRunNotifier {
	return &DryRunNotifier{out: os.Stdout}
}

// Notify prints the messages that would be posted.
func (n *DryRunNotifier) Notify(messages []string) error {
	for i, msg := range messages {
		fmt.Fprintf(n.out, "--- Notification %d/%d ---\n", i+1, len(messages))
		fmt.Fprintln(n.out, msg)
		fmt.Fprintln(n.out)
	}
	return nil
}
