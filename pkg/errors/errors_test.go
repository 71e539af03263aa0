package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:    http.StatusBadRequest,
		CodeNotFound:      http.StatusNotFound,
		CodeTransition:    http.StatusBadRequest,
		CodeStateConflict: http.StatusBadRequest,
		CodeInsufficient:  http.StatusBadRequest,
		CodeGone:          http.StatusGone,
		CodeUnauthorized:  http.StatusUnauthorized,
		CodeForbidden:     http.StatusForbidden,
		CodeInternal:      http.StatusInternalServerError,
		CodeDependency:    http.StatusServiceUnavailable,
	}
	for code, status := range cases {
		meta := MetadataFor(code)
		if meta.HTTPStatus != status {
			t.Fatalf("code %s: expected status %d got %d", code, status, meta.HTTPStatus)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("BOGUS"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(CodeDependency, cause, "load order")
	if err.Unwrap() != cause {
		t.Fatal("expected cause preserved")
	}
	if err.Error() != "DEPENDENCY_ERROR: load order" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}

func TestAsUnwrapsThroughChain(t *testing.T) {
	inner := New(CodeGone, "qr code expired")
	outer := fmt.Errorf("handling scan: %w", inner)
	typed := As(outer)
	if typed == nil || typed.Code() != CodeGone {
		t.Fatalf("expected gone error got %v", typed)
	}
}

func TestDumpWalksWrapChain(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Wrap(CodeDependency, cause, "load order")

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected 2 chain links, got %v", dump.Chain)
	}
	if dump.PGCode != "" {
		t.Fatalf("expected no pg diagnostics, got %q", dump.PGCode)
	}
}

func TestDumpExtractsPGDiagnostics(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "idx_settlements_tenant_period",
		TableName:      "settlements",
		Message:        "duplicate key value violates unique constraint",
	}
	err := Wrap(CodeDependency, fmt.Errorf("create settlement: %w", pgErr), "initiate")

	dump := Dump(err)
	if dump.PGCode != "23505" {
		t.Fatalf("expected pg code 23505, got %q", dump.PGCode)
	}
	if dump.PGConstraint != "idx_settlements_tenant_period" || dump.PGTable != "settlements" {
		t.Fatalf("unexpected pg diagnostics %+v", dump)
	}
}

func TestDumpNilError(t *testing.T) {
	if dump := Dump(nil); dump.TopMessage != "" || dump.Chain != nil {
		t.Fatalf("expected zero dump, got %+v", dump)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeInsufficient, "payment amount insufficient").
		WithDetails(map[string]any{"required": 85000, "paid": 50000})
	details, ok := err.Details().(map[string]any)
	if !ok || details["required"] != 85000 {
		t.Fatalf("unexpected details %v", err.Details())
	}
}
