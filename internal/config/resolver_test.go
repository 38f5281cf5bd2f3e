package config

import (
	"testing"

	"github.com/turngate/turngate/internal/domain"
)

func entry(id string) EndpointEntry {
	return EndpointEntry{ID: id}
}

func TestResolveDisabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  *EndpointsConfig
	}{
		{
			name: "nil config",
			cfg:  nil,
		},
		{
			name: "not enabled",
			cfg:  &EndpointsConfig{Enabled: false, Entries: []EndpointEntry{entry("a")}},
		},
		{
			name: "enabled with no entries",
			cfg:  &EndpointsConfig{Enabled: true},
		},
		{
			name: "enabled with only blank ids",
			cfg:  &EndpointsConfig{Enabled: true, Entries: []EndpointEntry{entry(""), entry("   ")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if snap := Resolve(tt.cfg); snap != nil {
				t.Errorf("Resolve() = %+v, want nil", snap)
			}
		})
	}
}

func TestResolveEntries(t *testing.T) {
	cfg := &EndpointsConfig{
		Enabled: true,
		Entries: []EndpointEntry{
			{
				ID:             "  support  ",
				Instructions:   "Be helpful.",
				Mode:           "async",
				Model:          "fast-1",
				Thinking:       "low",
				TimeoutSeconds: 120,
			},
			entry(""),
			{ID: "sales"},
		},
	}

	snap := Resolve(cfg)
	if snap == nil {
		t.Fatal("Resolve() = nil, want snapshot")
	}
	if got := snap.EndpointCount(); got != 2 {
		t.Fatalf("EndpointCount() = %d, want 2 (blank id skipped)", got)
	}

	support, ok := snap.Lookup("support")
	if !ok {
		t.Fatal("Lookup(support) missing, id must be trimmed")
	}
	if support.Mode != domain.ModeAsync {
		t.Errorf("support.Mode = %s, want async", support.Mode)
	}
	if support.Instructions != "Be helpful." || support.Model != "fast-1" ||
		support.Thinking != "low" || support.TimeoutSeconds != 120 {
		t.Errorf("support definition not carried over: %+v", support)
	}

	sales, ok := snap.Lookup("sales")
	if !ok {
		t.Fatal("Lookup(sales) missing")
	}
	if sales.Mode != domain.ModeSync {
		t.Errorf("sales.Mode = %s, want sync default", sales.Mode)
	}
}

func TestResolveTokens(t *testing.T) {
	cfg := &EndpointsConfig{
		Enabled: true,
		Entries: []EndpointEntry{
			{
				ID: "support",
				Tokens: []TokenEntry{
					{Value: " tok-a ", Label: "alpha"},
					{Value: "", Label: "ignored"},
					{Value: "   ", Label: "ignored"},
					{Value: "tok-b"},
					{Value: "tok-a", Label: "alpha2"},
				},
			},
		},
	}

	snap := Resolve(cfg)
	if snap == nil {
		t.Fatal("Resolve() = nil")
	}
	def, _ := snap.Lookup("support")

	if len(def.Tokens) != 2 {
		t.Fatalf("len(Tokens) = %d, want 2 (empties skipped, dup merged)", len(def.Tokens))
	}
	// Later duplicate values overwrite earlier labels.
	if got := def.Tokens["tok-a"]; got != "alpha2" {
		t.Errorf("Tokens[tok-a] = %q, want alpha2 (last write wins)", got)
	}
	// Empty label defaults to the literal "unnamed".
	if got := def.Tokens["tok-b"]; got != domain.DefaultTokenLabel {
		t.Errorf("Tokens[tok-b] = %q, want %q", got, domain.DefaultTokenLabel)
	}
}

func TestResolveBasePath(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty defaults", "", "/endpoints"},
		{"whitespace defaults", "   ", "/endpoints"},
		{"bare root defaults", "/", "/endpoints"},
		{"slashes only default", "///", "/endpoints"},
		{"spaced root defaults", " / ", "/endpoints"},
		{"missing leading slash added", "hooks", "/hooks"},
		{"trailing slash stripped", "/hooks/", "/hooks"},
		{"repeated trailing slashes stripped", "/hooks///", "/hooks"},
		{"nested path kept", "/api/dispatch", "/api/dispatch"},
		{"already normalized", "/endpoints", "/endpoints"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &EndpointsConfig{
				Enabled:  true,
				BasePath: tt.raw,
				Entries:  []EndpointEntry{entry("a")},
			}
			snap := Resolve(cfg)
			if snap == nil {
				t.Fatal("Resolve() = nil")
			}
			if snap.BasePath != tt.want {
				t.Errorf("BasePath = %q, want %q", snap.BasePath, tt.want)
			}
		})
	}
}

func TestResolveRateLimit(t *testing.T) {
	tests := []struct {
		name string
		raw  *RateLimitConfig
		want *domain.RateLimit
	}{
		{
			name: "absent disables",
			raw:  nil,
			want: nil,
		},
		{
			// Present but all-zero disables; this is intentionally not the
			// same as one field defaulting when the other is set.
			name: "present but both fields zero disables",
			raw:  &RateLimitConfig{},
			want: nil,
		},
		{
			name: "both fields set",
			raw:  &RateLimitConfig{MaxRequests: 10, WindowSeconds: 30},
			want: &domain.RateLimit{MaxRequests: 10, WindowSeconds: 30},
		},
		{
			name: "missing window defaults to 60",
			raw:  &RateLimitConfig{MaxRequests: 10},
			want: &domain.RateLimit{MaxRequests: 10, WindowSeconds: 60},
		},
		{
			name: "missing max defaults to 60",
			raw:  &RateLimitConfig{WindowSeconds: 30},
			want: &domain.RateLimit{MaxRequests: 60, WindowSeconds: 30},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &EndpointsConfig{
				Enabled:   true,
				RateLimit: tt.raw,
				Entries:   []EndpointEntry{entry("a")},
			}
			snap := Resolve(cfg)
			if snap == nil {
				t.Fatal("Resolve() = nil")
			}
			got := snap.RateLimit
			if tt.want == nil {
				if got != nil {
					t.Errorf("RateLimit = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("RateLimit = nil, want %+v", tt.want)
			}
			if got.MaxRequests != tt.want.MaxRequests || got.WindowSeconds != tt.want.WindowSeconds {
				t.Errorf("RateLimit = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveSnapshotsIndependent(t *testing.T) {
	cfg := &EndpointsConfig{
		Enabled: true,
		Entries: []EndpointEntry{{ID: "a", Tokens: []TokenEntry{{Value: "t", Label: "l"}}}},
	}

	first := Resolve(cfg)
	second := Resolve(cfg)
	if first == second {
		t.Fatal("Resolve() returned the same snapshot twice")
	}

	firstDef, _ := first.Lookup("a")
	firstDef.Tokens["mutated"] = "x"
	secondDef, _ := second.Lookup("a")
	if _, leaked := secondDef.Tokens["mutated"]; leaked {
		t.Error("snapshots share token state, want fresh allocations per resolve")
	}
}
