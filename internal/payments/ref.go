package payments

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const refSuffixMax = 10000

// generateTransactionRef produces a reference like TXN-1756713600123-4821.
// The random suffix disambiguates payments landing in the same millisecond;
// callers retry on the rare unique-index collision.
func generateTransactionRef(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(refSuffixMax))
	if err != nil {
		return "", fmt.Errorf("generating transaction ref suffix: %w", err)
	}
	return fmt.Sprintf("TXN-%d-%04d", now.UnixMilli(), n.Int64()), nil
}
