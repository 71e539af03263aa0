package revenue

import (
	"context"
	"testing"

	"github.com/sajikita/foodcourt-backend/internal/settings"
	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
)

func TestSplitDefaultPercentages(t *testing.T) {
	shares, err := Split(100000, 97, 2, 1)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	if shares.TenantShare != 97000 {
		t.Fatalf("expected tenant share 97000, got %d", shares.TenantShare)
	}
	if shares.OperatorShare != 2000 {
		t.Fatalf("expected operator share 2000, got %d", shares.OperatorShare)
	}
	if shares.PlatformShare != 1000 {
		t.Fatalf("expected platform share 1000, got %d", shares.PlatformShare)
	}
	if shares.Drift(100000) != 0 {
		t.Fatalf("expected zero drift, got %d", shares.Drift(100000))
	}
}

func TestSplitRoundsHalfUp(t *testing.T) {
	// 150 * 0.97 = 145.5 rounds up to 146; 150 * 0.01 = 1.5 rounds up to 2.
	shares, err := Split(150, 97, 2, 1)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	if shares.TenantShare != 146 {
		t.Fatalf("expected tenant share 146, got %d", shares.TenantShare)
	}
	if shares.OperatorShare != 3 {
		t.Fatalf("expected operator share 3, got %d", shares.OperatorShare)
	}
	if shares.PlatformShare != 2 {
		t.Fatalf("expected platform share 2, got %d", shares.PlatformShare)
	}
}

func TestSplitPreservesRoundingDrift(t *testing.T) {
	// Each share rounds up independently, overshooting the gross by one.
	shares, err := Split(100, 33.5, 33.5, 33)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	if shares.TenantShare != 34 || shares.OperatorShare != 34 || shares.PlatformShare != 33 {
		t.Fatalf("unexpected shares %+v", shares)
	}
	if drift := shares.Drift(100); drift != -1 {
		t.Fatalf("expected drift -1, got %d", drift)
	}
}

func TestSplitRejectsNonPositiveGross(t *testing.T) {
	for _, gross := range []int64{0, -5000} {
		_, err := Split(gross, 97, 2, 1)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("gross %d: expected validation error, got %v", gross, err)
		}
	}
}

type stubSplitProvider struct {
	split settings.SplitPercentages
	err   error
}

func (s stubSplitProvider) GetSplitPercentages(ctx context.Context) (settings.SplitPercentages, error) {
	return s.split, s.err
}

func TestServiceSplitAmount(t *testing.T) {
	svc, err := NewService(stubSplitProvider{
		split: settings.SplitPercentages{TenantShare: 97, OperatorShare: 2, PlatformShare: 1},
	})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	breakdown, err := svc.SplitAmount(context.Background(), 25000)
	if err != nil {
		t.Fatalf("split amount: %v", err)
	}
	if breakdown.Shares.TenantShare != 24250 {
		t.Fatalf("expected tenant share 24250, got %d", breakdown.Shares.TenantShare)
	}
	if breakdown.Shares.OperatorShare != 500 {
		t.Fatalf("expected operator share 500, got %d", breakdown.Shares.OperatorShare)
	}
	if breakdown.Shares.PlatformShare != 250 {
		t.Fatalf("expected platform share 250, got %d", breakdown.Shares.PlatformShare)
	}
}
