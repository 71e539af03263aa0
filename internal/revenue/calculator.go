package revenue

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
)

// Shares is the rupiah breakdown of one gross amount. Each share is rounded
// half-up independently, so the three shares may drift from the gross by a
// rupiah or two; settlements report the drift rather than force-balancing it.
type Shares struct {
	TenantShare   int64 `json:"tenant_share"`
	OperatorShare int64 `json:"operator_share"`
	PlatformShare int64 `json:"platform_share"`
}

// Sum returns the total of the three shares.
func (s Shares) Sum() int64 {
	return s.TenantShare + s.OperatorShare + s.PlatformShare
}

// Drift returns gross minus the summed shares.
func (s Shares) Drift(gross int64) int64 {
	return gross - s.Sum()
}

var hundred = decimal.NewFromInt(100)

// Split divides gross revenue by the three percentages, rounding each share
// half-up to whole rupiah. The gross must be positive.
func Split(gross int64, tenantPct, operatorPct, platformPct float64) (Shares, error) {
	if gross <= 0 {
		return Shares{}, pkgerrors.New(pkgerrors.CodeValidation, "gross amount must be positive")
	}
	total := decimal.NewFromInt(gross)
	return Shares{
		TenantShare:   applyPercent(total, tenantPct),
		OperatorShare: applyPercent(total, operatorPct),
		PlatformShare: applyPercent(total, platformPct),
	}, nil
}

func applyPercent(total decimal.Decimal, pct float64) int64 {
	share := total.Mul(decimal.NewFromFloat(pct)).Div(hundred)
	// Round performs half away from zero, which is half-up for the
	// non-negative amounts handled here.
	return share.Round(0).IntPart()
}
