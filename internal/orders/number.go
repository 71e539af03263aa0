package orders

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const orderNumberMax = 1000000

// generateOrderNumber produces a receipt-friendly number like
// ORD-20250901-048213. The six-digit suffix is random; callers retry on the
// rare unique-index collision.
func generateOrderNumber(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(orderNumberMax))
	if err != nil {
		return "", fmt.Errorf("generating order number suffix: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%06d", now.Format("20060102"), n.Int64()), nil
}
