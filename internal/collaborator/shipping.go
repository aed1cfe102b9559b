package collaborator

import (
	"context"
	"fmt"
	"log"
	"time"
)

// ConsoleShipping is a stand-in carrier client that prints what a real
// integration would send. It honours context cancellation the way a real
// HTTP client would.
type ConsoleShipping struct {
	// Fee charged per return pickup, in minor currency units.
	Fee int
	// Down simulates carrier unavailability.
	Down bool
}

func NewConsoleShipping() *ConsoleShipping {
	log.Println("Initialized Console Shipping Collaborator (Placeholder)")
	return &ConsoleShipping{Fee: 30000}
}

func (s *ConsoleShipping) IsAvailable(ctx context.Context) bool {
	return !s.Down
}

func (s *ConsoleShipping) CreateReturnShipment(ctx context.Context, returnID string) (string, int, error) {
	select {
	case <-time.After(50 * time.Millisecond):
		code := fmt.Sprintf("GHN-%s", returnID[:8])
		fmt.Printf("\n--- SHIPPING (CONSOLE) ---\n")
		fmt.Printf("CreateReturnShipment: return=%s carrier_code=%s fee=%d\n", returnID, code, s.Fee)
		fmt.Printf("--- END SHIPPING ---\n")
		return code, s.Fee, nil
	case <-ctx.Done():
		log.Printf("SHIPPING (CANCELLED): return=[%s]", returnID)
		return "", 0, ctx.Err()
	}
}

func (s *ConsoleShipping) CancelShipment(ctx context.Context, carrierOrderCode string) bool {
	select {
	case <-time.After(50 * time.Millisecond):
		fmt.Printf("\n--- SHIPPING (CONSOLE) ---\n")
		fmt.Printf("CancelShipment: carrier_code=%s\n", carrierOrderCode)
		fmt.Printf("--- END SHIPPING ---\n")
		return true
	case <-ctx.Done():
		log.Printf("SHIPPING CANCEL (CANCELLED): carrier_code=[%s]", carrierOrderCode)
		return false
	}
}
