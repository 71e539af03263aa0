package settlements

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajikita/foodcourt-backend/internal/revenue"
	"github.com/sajikita/foodcourt-backend/internal/settings"
	dbpkg "github.com/sajikita/foodcourt-backend/pkg/db"
	"github.com/sajikita/foodcourt-backend/pkg/db/models"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
	"github.com/sajikita/foodcourt-backend/pkg/metrics"
	"github.com/sajikita/foodcourt-backend/pkg/outbox"
	"github.com/sajikita/foodcourt-backend/pkg/pagination"
)

// defaultPageSize is the settlement list page size; payout reviews scan a
// month at a time, so it is larger than the global default.
const defaultPageSize = 50

const periodLayout = "2006-01"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent)
	EmitOnce(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent)
}

type splitProvider interface {
	GetSplitPercentages(ctx context.Context) (settings.SplitPercentages, error)
}

// Service defines monthly settlement operations.
type Service interface {
	Initiate(ctx context.Context, input InitiateInput) ([]models.Settlement, error)
	Process(ctx context.Context, input ProcessInput) (*models.Settlement, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Settlement, error)
	List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Settlement, int64, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	events  eventEmitter
	splits  splitProvider
	metrics *metrics.POSMetrics
	now     func() time.Time
}

// NewService builds a settlements service with the required dependencies.
func NewService(repo Repository, tx txRunner, events eventEmitter, splits splitProvider, posMetrics *metrics.POSMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settlements repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if splits == nil {
		return nil, fmt.Errorf("split provider required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		events:  events,
		splits:  splits,
		metrics: posMetrics,
		now:     time.Now,
	}, nil
}

// Initiate opens settlement rows for every tenant with successful payments
// in the period. Re-running skips tenants already settled for that month, so
// a partial failure can simply be retried.
func (s *service) Initiate(ctx context.Context, input InitiateInput) ([]models.Settlement, error) {
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	periodStart, err := time.Parse(periodLayout, input.Period)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "period must use the YYYY-MM form")
	}
	periodEnd := periodStart.AddDate(0, 1, 0)

	globalSplit, err := s.splits.GetSplitPercentages(ctx)
	if err != nil {
		return nil, err
	}

	var created []models.Settlement
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		revenues, err := repo.RevenueByTenant(ctx, periodStart, periodEnd)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate period revenue")
		}
		if input.TenantID != nil {
			filtered := revenues[:0]
			for _, row := range revenues {
				if row.TenantID == *input.TenantID {
					filtered = append(filtered, row)
				}
			}
			revenues = filtered
		}
		if len(revenues) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no successful payments in the period")
		}

		ids := make([]uuid.UUID, 0, len(revenues))
		for _, row := range revenues {
			ids = append(ids, row.TenantID)
		}
		tenants, err := repo.FindTenants(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenants")
		}
		overrides := make(map[uuid.UUID]models.Tenant, len(tenants))
		for _, tenant := range tenants {
			overrides[tenant.ID] = tenant
		}

		for _, row := range revenues {
			if _, err := repo.FindByTenantAndPeriod(ctx, row.TenantID, input.Period); err == nil {
				continue
			} else if err != gorm.ErrRecordNotFound {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing settlement")
			}

			split := tenantSplit(overrides[row.TenantID], globalSplit)
			shares, err := revenue.Split(row.TotalRevenue, split.TenantShare, split.OperatorShare, split.PlatformShare)
			if err != nil {
				return err
			}
			if shares.TenantShare <= 0 {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("tenant %s share is not positive", row.TenantID))
			}

			settlement, err := repo.Create(ctx, &models.Settlement{
				TenantID:      row.TenantID,
				Period:        input.Period,
				TotalRevenue:  row.TotalRevenue,
				OrderCount:    row.OrderCount,
				TenantShare:   shares.TenantShare,
				OperatorShare: shares.OperatorShare,
				PlatformShare: shares.PlatformShare,
				Status:        enums.SettlementStatusPending,
				BankAccount:   input.BankAccount,
			})
			if err != nil {
				// A concurrent initiate won the unique tenant+period index.
				if dbpkg.IsUniqueViolation(err, "idx_settlements_tenant_period") {
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create settlement")
			}

			s.events.EmitOnce(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventSettlementCreated,
				AggregateType: enums.AggregateSettlement,
				AggregateID:   settlement.ID,
				Version:       1,
				Actor:         buildActor(input.Actor),
				Data: CreatedEvent{
					SettlementID: settlement.ID,
					TenantID:     settlement.TenantID,
					Period:       settlement.Period,
					TotalRevenue: settlement.TotalRevenue,
					OrderCount:   settlement.OrderCount,
					TenantShare:  settlement.TenantShare,
				},
			})
			created = append(created, *settlement)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Process marks a pending settlement as paid out. The guarded update makes
// the payout happen exactly once.
func (s *service) Process(ctx context.Context, input ProcessInput) (*models.Settlement, error) {
	if input.SettlementID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settlement id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var processed *models.Settlement
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		settlement, err := repo.FindByID(ctx, input.SettlementID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "settlement not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settlement")
		}
		if settlement.Status == enums.SettlementStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "settlement already processed")
		}

		now := s.now()
		updates := map[string]any{
			"status":     enums.SettlementStatusCompleted,
			"settled_at": now,
		}
		if input.TransferID != nil {
			updates["transfer_id"] = *input.TransferID
		}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
		}
		applied, err := repo.UpdateStatusFrom(ctx, settlement.ID, enums.SettlementStatusPending, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark settlement paid")
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "settlement already processed")
		}

		s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSettlementPaid,
			AggregateType: enums.AggregateSettlement,
			AggregateID:   settlement.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: PaidEvent{
				SettlementID: settlement.ID,
				TenantID:     settlement.TenantID,
				Period:       settlement.Period,
				TenantShare:  settlement.TenantShare,
			},
		})

		settlement.Status = enums.SettlementStatusCompleted
		settlement.SettledAt = &now
		if input.TransferID != nil {
			settlement.TransferID = input.TransferID
		}
		if input.Notes != nil {
			settlement.Notes = input.Notes
		}
		processed = settlement
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncSettlementProcessed()
	return processed, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Settlement, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settlement id required")
	}
	settlement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "settlement not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settlement")
	}
	return settlement, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Settlement, int64, error) {
	params.Limit = pagination.ClampLimit(params.Limit, defaultPageSize)
	params.Offset = max(params.Offset, 0)

	rows, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settlements")
	}
	return rows, total, nil
}

// tenantSplit applies a tenant's percentage overrides when the full set is
// configured; a partial override falls back to the global split.
func tenantSplit(tenant models.Tenant, global settings.SplitPercentages) settings.SplitPercentages {
	if tenant.SharePercent != nil && tenant.OperatorPercent != nil && tenant.PlatformPercent != nil {
		return settings.SplitPercentages{
			TenantShare:   *tenant.SharePercent,
			OperatorShare: *tenant.OperatorPercent,
			PlatformShare: *tenant.PlatformPercent,
		}
	}
	return global
}

func buildActor(actor Actor) *outbox.ActorRef {
	if actor.UserID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{
		UserID: actor.UserID,
		Role:   actor.Role,
	}
}
