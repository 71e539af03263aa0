package qrcodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajikita/foodcourt-backend/pkg/db/models"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
	"github.com/sajikita/foodcourt-backend/pkg/metrics"
	"github.com/sajikita/foodcourt-backend/pkg/outbox"
)

// Fallback when the setting is missing or invalid: 24 hours.
const defaultExpiryMinutes = 1440

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent)
}

type settingsProvider interface {
	GetNumber(ctx context.Context, key string) (float64, error)
}

// Service defines pickup token operations.
type Service interface {
	Generate(ctx context.Context, input GenerateInput) (*models.QRCode, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.QRCode, error)
	GetByToken(ctx context.Context, token string) (*models.QRCode, error)
	Validate(ctx context.Context, token string) (*models.QRCode, error)
	Scan(ctx context.Context, input ScanInput) (*models.QRCode, error)
	Deactivate(ctx context.Context, orderID uuid.UUID) error
}

type service struct {
	repo      Repository
	tx        txRunner
	events    eventEmitter
	settings  settingsProvider
	baseURL   string
	expiryKey string
	metrics   *metrics.POSMetrics
	now       func() time.Time
}

// NewService builds a qrcodes service with the required dependencies.
func NewService(repo Repository, tx txRunner, events eventEmitter, settings settingsProvider, baseURL, expiryKey string, posMetrics *metrics.POSMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("qrcodes repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings provider required")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("qr base url required")
	}
	if expiryKey == "" {
		return nil, fmt.Errorf("qr expiry setting key required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		events:    events,
		settings:  settings,
		baseURL:   strings.TrimRight(baseURL, "/"),
		expiryKey: expiryKey,
		metrics:   posMetrics,
		now:       time.Now,
	}, nil
}

// Generate issues a pickup token for an order. Repeated calls return the
// existing active token; expired or deactivated tokens are reissued in place.
func (s *service) Generate(ctx context.Context, input GenerateInput) (*models.QRCode, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var code *models.QRCode
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindOrderByID(ctx, input.OrderID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		now := s.now()
		existing, err := repo.FindByOrderID(ctx, input.OrderID)
		if err != nil && err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pickup token")
		}
		if existing != nil && existing.Status == enums.QRStatusActive && now.Before(existing.ExpiresAt) {
			code = existing
			return nil
		}

		token, err := generateToken()
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate token")
		}
		expiresAt := now.Add(s.expiryWindow(ctx))
		url := fmt.Sprintf("%s/pickup/%s", s.baseURL, token)

		if existing != nil {
			// One token row per order; a stale token is reissued in place.
			updates := map[string]any{
				"token":      token,
				"url":        url,
				"status":     enums.QRStatusActive,
				"expires_at": expiresAt,
				"scan_count": 0,
				"scanned_at": nil,
				"scanned_by": nil,
			}
			if err := repo.Update(ctx, existing.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reissue pickup token")
			}
			existing.Token = token
			existing.URL = url
			existing.Status = enums.QRStatusActive
			existing.ExpiresAt = expiresAt
			existing.ScanCount = 0
			existing.ScannedAt = nil
			existing.ScannedBy = nil
			code = existing
			return nil
		}

		created, err := repo.Create(ctx, &models.QRCode{
			OrderID:   input.OrderID,
			Token:     token,
			Status:    enums.QRStatusActive,
			URL:       url,
			ExpiresAt: expiresAt,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create pickup token")
		}
		code = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return code, nil
}

func (s *service) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.QRCode, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	code, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pickup token not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pickup token")
	}
	if err := s.checkExpiry(ctx, code); err != nil {
		return nil, err
	}
	return code, nil
}

func (s *service) GetByToken(ctx context.Context, token string) (*models.QRCode, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token required")
	}
	code, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pickup token not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pickup token")
	}
	if err := s.checkExpiry(ctx, code); err != nil {
		return nil, err
	}
	return code, nil
}

// checkExpiry applies lazy expiry to a loaded token. An overdue active token
// is flipped to expired on first sight, so reads never hand out a token that
// can no longer be scanned.
func (s *service) checkExpiry(ctx context.Context, code *models.QRCode) error {
	if code.Status == enums.QRStatusActive && s.now().After(code.ExpiresAt) {
		s.expireLazily(ctx, code)
	}
	if code.Status == enums.QRStatusExpired {
		return pkgerrors.New(pkgerrors.CodeGone, "pickup token expired")
	}
	return nil
}

// Validate checks a token without consuming it. Expiry is applied lazily:
// an overdue active token is flipped to expired on first sight.
func (s *service) Validate(ctx context.Context, token string) (*models.QRCode, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token required")
	}

	code, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pickup token not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pickup token")
	}

	switch code.Status {
	case enums.QRStatusScanned:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "pickup token already used")
	case enums.QRStatusInactive:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "pickup token deactivated")
	case enums.QRStatusExpired:
		return nil, pkgerrors.New(pkgerrors.CodeGone, "pickup token expired")
	}

	if s.now().After(code.ExpiresAt) {
		s.expireLazily(ctx, code)
		return nil, pkgerrors.New(pkgerrors.CodeGone, "pickup token expired")
	}
	return code, nil
}

// Scan consumes a token. The guarded active-to-scanned update makes two
// simultaneous scans resolve to one success and one duplicate.
func (s *service) Scan(ctx context.Context, input ScanInput) (*models.QRCode, error) {
	if strings.TrimSpace(input.Token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token required")
	}

	var scanned *models.QRCode
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		code, err := repo.FindByToken(ctx, input.Token)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				s.metrics.IncQRScan(ScanResultNotFound)
				return pkgerrors.New(pkgerrors.CodeNotFound, "pickup token not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pickup token")
		}

		// Rejection audits go through the base repo so the rollback of this
		// transaction does not erase them.
		now := s.now()
		switch {
		case code.Status == enums.QRStatusScanned:
			s.audit(ctx, s.repo, code.ID, ScanResultDuplicate, input)
			s.metrics.IncQRScan(ScanResultDuplicate)
			return pkgerrors.New(pkgerrors.CodeStateConflict, "pickup token already used")
		case code.Status == enums.QRStatusInactive:
			s.audit(ctx, s.repo, code.ID, ScanResultInactive, input)
			s.metrics.IncQRScan(ScanResultInactive)
			return pkgerrors.New(pkgerrors.CodeStateConflict, "pickup token deactivated")
		case code.Status == enums.QRStatusExpired, now.After(code.ExpiresAt):
			if code.Status == enums.QRStatusActive {
				s.expireLazily(ctx, code)
			}
			s.audit(ctx, s.repo, code.ID, ScanResultExpired, input)
			s.metrics.IncQRScan(ScanResultExpired)
			return pkgerrors.New(pkgerrors.CodeGone, "pickup token expired")
		}

		updates := map[string]any{
			"status":     enums.QRStatusScanned,
			"scan_count": gorm.Expr("scan_count + 1"),
			"scanned_at": now,
		}
		if input.Actor.UserID != uuid.Nil {
			updates["scanned_by"] = input.Actor.UserID
		}
		if input.CheckoutCounterID != nil {
			updates["checkout_counter_id"] = *input.CheckoutCounterID
		}
		applied, err := repo.UpdateFrom(ctx, code.ID, enums.QRStatusActive, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark token scanned")
		}
		if !applied {
			s.audit(ctx, s.repo, code.ID, ScanResultDuplicate, input)
			s.metrics.IncQRScan(ScanResultDuplicate)
			return pkgerrors.New(pkgerrors.CodeStateConflict, "pickup token already used")
		}

		s.audit(ctx, repo, code.ID, ScanResultSuccess, input)
		s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQRScanned,
			AggregateType: enums.AggregateQRCode,
			AggregateID:   code.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: ScannedEvent{
				QRCodeID:  code.ID,
				OrderID:   code.OrderID,
				ScannedAt: now,
			},
		})

		code.Status = enums.QRStatusScanned
		code.ScanCount++
		code.ScannedAt = &now
		if input.Actor.UserID != uuid.Nil {
			scannedBy := input.Actor.UserID
			code.ScannedBy = &scannedBy
		}
		if input.CheckoutCounterID != nil {
			code.CheckoutCounterID = input.CheckoutCounterID
		}
		scanned = code
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncQRScan(ScanResultSuccess)
	return scanned, nil
}

// Deactivate retires an order's active token, typically on cancellation.
// A missing or already-retired token is not an error.
func (s *service) Deactivate(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	code, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pickup token")
	}
	if code.Status != enums.QRStatusActive {
		return nil
	}
	if _, err := s.repo.UpdateFrom(ctx, code.ID, enums.QRStatusActive, map[string]any{
		"status": enums.QRStatusInactive,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate pickup token")
	}
	return nil
}

func (s *service) expiryWindow(ctx context.Context) time.Duration {
	minutes, err := s.settings.GetNumber(ctx, s.expiryKey)
	if err != nil || minutes <= 0 {
		minutes = defaultExpiryMinutes
	}
	return time.Duration(minutes * float64(time.Minute))
}

// expireLazily flips an overdue token to expired. The guarded update means a
// concurrent scan that already consumed it wins.
func (s *service) expireLazily(ctx context.Context, code *models.QRCode) {
	_, _ = s.repo.UpdateFrom(ctx, code.ID, enums.QRStatusActive, map[string]any{
		"status": enums.QRStatusExpired,
	})
	code.Status = enums.QRStatusExpired
}

// audit writes the scan trail row; failures never block the scan itself.
func (s *service) audit(ctx context.Context, repo Repository, codeID uuid.UUID, result string, input ScanInput) {
	_ = repo.CreateScanEvent(ctx, &models.ScanEvent{
		QRCodeID:  codeID,
		Result:    result,
		ScannedBy: input.ScannedBy,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
	})
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
