package collaborator

import (
	"context"
	"fmt"
	"log"
	"time"
)

// ConsoleNotifier prints customer notifications instead of sending email or
// SMS. A false result from any Notify method is a hard failure for the
// calling transition.
type ConsoleNotifier struct {
	// Failing forces every notification to report failure.
	Failing bool
}

func NewConsoleNotifier() *ConsoleNotifier {
	log.Println("Initialized Console Notification Collaborator (Placeholder)")
	return &ConsoleNotifier{}
}

func (n *ConsoleNotifier) NotifyApproval(ctx context.Context, returnID string) bool {
	return n.send(ctx, "approval", returnID)
}

func (n *ConsoleNotifier) NotifyRejection(ctx context.Context, returnID string) bool {
	return n.send(ctx, "rejection", returnID)
}

func (n *ConsoleNotifier) NotifyCompletion(ctx context.Context, returnID string) bool {
	return n.send(ctx, "completion", returnID)
}

func (n *ConsoleNotifier) send(ctx context.Context, kind, returnID string) bool {
	if n.Failing {
		return false
	}
	select {
	case <-time.After(50 * time.Millisecond):
		fmt.Printf("\n--- NOTIFICATION (CONSOLE) ---\n")
		fmt.Printf("Kind: %s\nReturn: %s\n", kind, returnID)
		fmt.Printf("--- END NOTIFICATION ---\n")
		return true
	case <-ctx.Done():
		log.Printf("NOTIFICATION (CANCELLED): kind=[%s] return=[%s]", kind, returnID)
		return false
	}
}
