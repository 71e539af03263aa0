package revenue

import (
	"context"
	"fmt"

	"github.com/sajikita/foodcourt-backend/internal/settings"
)

type splitProvider interface {
	GetSplitPercentages(ctx context.Context) (settings.SplitPercentages, error)
}

// Breakdown pairs the configured percentages with the computed shares.
type Breakdown struct {
	Gross       int64                     `json:"gross"`
	Percentages settings.SplitPercentages `json:"percentages"`
	Shares      Shares                    `json:"shares"`
}

// Service computes revenue splits using the currently configured percentages.
type Service interface {
	SplitAmount(ctx context.Context, gross int64) (Breakdown, error)
}

type service struct {
	settings splitProvider
}

// NewService builds a revenue service on top of the settings provider.
func NewService(settings splitProvider) (Service, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings provider required")
	}
	return &service{settings: settings}, nil
}

func (s *service) SplitAmount(ctx context.Context, gross int64) (Breakdown, error) {
	split, err := s.settings.GetSplitPercentages(ctx)
	if err != nil {
		return Breakdown{}, err
	}
	shares, err := Split(gross, split.TenantShare, split.OperatorShare, split.PlatformShare)
	if err != nil {
		return Breakdown{}, err
	}
	return Breakdown{
		Gross:       gross,
		Percentages: split,
		Shares:      shares,
	}, nil
}
