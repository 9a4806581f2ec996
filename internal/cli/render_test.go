package cli

import (
	"strings"
	"testing"

	"github.com/Jayasuryanarayana/BudgetBox/internal/budget"
	"github.com/Jayasuryanarayana/BudgetBox/internal/status"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{3000, "$3000.00"},
		{12.5, "$12.50"},
		{-250, "$-250.00"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatusColorMapping(t *testing.T) {
	if statusColor(status.Synced) != ColorGreen {
		t.Error("synced should render green")
	}
	if statusColor(status.Offline) != ColorOrange {
		t.Error("offline should render orange")
	}
	if statusColor(status.SyncPending) != ColorYellow {
		t.Error("sync-pending should render yellow")
	}
	if statusColor(status.LocalOnly) != ColorBlue {
		t.Error("local-only should render blue")
	}
}

func TestRenderSummaryContents(t *testing.T) {
	rec := budget.DefaultRecord(100)
	rec.Income = 3000
	rec.Expenses.Food = 500

	out := RenderSummary(rec, status.LocalOnly)

	for _, want := range []string{
		"Income", "$3000.00",
		"Food", "$500.00",
		"Total expenses",
		"Remaining", "$2500.00",
		"local-only",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderStatusIncludesDescription(t *testing.T) {
	out := RenderStatus(status.Offline)
	if !strings.Contains(out, "offline") {
		t.Errorf("missing label: %q", out)
	}
	if !strings.Contains(out, status.Offline.Description()) {
		t.Errorf("missing description: %q", out)
	}
}
