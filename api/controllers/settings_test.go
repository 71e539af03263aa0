package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sajikita/foodcourt-backend/internal/revenue"
	"github.com/sajikita/foodcourt-backend/internal/settings"
	"github.com/sajikita/foodcourt-backend/pkg/db/models"
	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
)

type stubSettingsService struct {
	setting   *models.Setting
	settings  []models.Setting
	split     settings.SplitPercentages
	updated   settings.SplitPercentages
	getErr    error
	updateErr error
}

func (s *stubSettingsService) Get(_ context.Context, _ string) (*models.Setting, error) {
	return s.setting, s.getErr
}

func (s *stubSettingsService) GetString(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (s *stubSettingsService) GetNumber(_ context.Context, _ string) (float64, error) {
	return 0, nil
}

func (s *stubSettingsService) GetBool(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (s *stubSettingsService) GetJSON(_ context.Context, _ string, _ any) error {
	return nil
}

func (s *stubSettingsService) List(_ context.Context) ([]models.Setting, error) {
	return s.settings, nil
}

func (s *stubSettingsService) Update(_ context.Context, key, value string) (*models.Setting, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &models.Setting{Key: key, Value: value}, nil
}

func (s *stubSettingsService) GetSplitPercentages(_ context.Context) (settings.SplitPercentages, error) {
	return s.split, s.getErr
}

func (s *stubSettingsService) UpdateSplitPercentages(_ context.Context, split settings.SplitPercentages) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = split
	return nil
}

func (s *stubSettingsService) InvalidateCache() {}

type stubRevenueService struct {
	breakdown revenue.Breakdown
	err       error
	gross     int64
}

func (s *stubRevenueService) SplitAmount(_ context.Context, gross int64) (revenue.Breakdown, error) {
	s.gross = gross
	return s.breakdown, s.err
}

func TestSettingGetSplit(t *testing.T) {
	svc := &stubSettingsService{split: settings.SplitPercentages{TenantShare: 97, OperatorShare: 2, PlatformShare: 1}}
	handler := SettingGetSplit(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings/split", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data settings.SplitPercentages `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TenantShare != 97 {
		t.Fatalf("unexpected split: %+v", envelope.Data)
	}
}

func TestSettingUpdateSplitForwardsPercentages(t *testing.T) {
	svc := &stubSettingsService{}
	handler := SettingUpdateSplit(svc, nil)

	payload := []byte(`{"tenant_share": 95, "operator_share": 3, "platform_share": 2}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/split", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.updated.TenantShare != 95 || svc.updated.OperatorShare != 3 || svc.updated.PlatformShare != 2 {
		t.Fatalf("service received %+v", svc.updated)
	}
}

func TestSettingUpdateSplitMapsValidationError(t *testing.T) {
	svc := &stubSettingsService{updateErr: pkgerrors.New(pkgerrors.CodeValidation, "split percentages must sum to 100")}
	handler := SettingUpdateSplit(svc, nil)

	payload := []byte(`{"tenant_share": 90, "operator_share": 3, "platform_share": 2}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/split", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestSettingPreviewSplit(t *testing.T) {
	svc := &stubRevenueService{breakdown: revenue.Breakdown{
		Gross:       100000,
		Percentages: settings.SplitPercentages{TenantShare: 97, OperatorShare: 2, PlatformShare: 1},
		Shares:      revenue.Shares{TenantShare: 97000, OperatorShare: 2000, PlatformShare: 1000},
	}}
	handler := SettingPreviewSplit(svc, nil)

	payload := []byte(`{"amount": 100000}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/settings/split/preview", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gross != 100000 {
		t.Fatalf("service received gross %d", svc.gross)
	}
	var envelope struct {
		Data revenue.Breakdown `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Shares.TenantShare != 97000 {
		t.Fatalf("unexpected breakdown: %+v", envelope.Data)
	}
}

func TestSettingPreviewSplitRejectsNonPositiveAmount(t *testing.T) {
	handler := SettingPreviewSplit(&stubRevenueService{}, nil)

	payload := []byte(`{"amount": 0}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/settings/split/preview", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestSettingGetRequiresKey(t *testing.T) {
	handler := SettingGet(&stubSettingsService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings/", nil)
	req = withRouteParam(req, "key", "")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
