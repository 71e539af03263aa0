package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "zero falls back to default", limit: 0, want: DefaultLimit},
		{name: "negative falls back to default", limit: -5, want: DefaultLimit},
		{name: "within range passes through", limit: 40, want: 40},
		{name: "above max is capped", limit: 500, want: MaxLimit},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeLimit(tc.limit); got != tc.want {
				t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.limit, got, tc.want)
			}
		})
	}
}

func TestClampLimit_CustomFallback(t *testing.T) {
	if got := ClampLimit(0, 50); got != 50 {
		t.Fatalf("ClampLimit(0, 50) = %d, want 50", got)
	}
	if got := ClampLimit(120, 50); got != MaxLimit {
		t.Fatalf("ClampLimit(120, 50) = %d, want %d", got, MaxLimit)
	}
}

func TestParamsNormalize(t *testing.T) {
	p := Params{Limit: -1, Offset: -10}.Normalize()
	if p.Limit != DefaultLimit {
		t.Fatalf("expected default limit, got %d", p.Limit)
	}
	if p.Offset != 0 {
		t.Fatalf("expected offset clamped to 0, got %d", p.Offset)
	}
}
