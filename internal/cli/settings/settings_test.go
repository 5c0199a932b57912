package settings

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/dayprompt/internal/cli"
	"github.com/julianstephens/dayprompt/internal/models"
	"github.com/julianstephens/dayprompt/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	out := &bytes.Buffer{}
	return &cli.Context{Store: store, Out: out}, out
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestSettingsCmd_List(t *testing.T) {
	ctx, out := setupTestDB(t)
	if err := (&SettingsCmd{List: true}).Run(ctx); err != nil {
		t.Fatalf("settings list failed: %v", err)
	}
	for _, want := range []string{"10:00-22:00", "10 min", models.DefaultSettings().PromptText} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output %q missing %q", out.String(), want)
		}
	}
}

func TestSettingsCmd_Update(t *testing.T) {
	ctx, _ := setupTestDB(t)
	cmd := &SettingsCmd{
		StartHour:            intPtr(8),
		EndHour:              intPtr(20),
		WindowMinutes:        intPtr(30),
		HorizonDays:          intPtr(4),
		Timezone:             strPtr("UTC"),
		NotificationsEnabled: boolPtr(false),
		PromptText:           strPtr("Anything worth remembering?"),
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	got, err := ctx.Store.GetSettings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := models.Settings{
		StartHour:            8,
		EndHour:              20,
		WindowMinutes:        30,
		HorizonDays:          4,
		Timezone:             "UTC",
		NotificationsEnabled: false,
		PromptText:           "Anything worth remembering?",
	}
	if got != want {
		t.Errorf("settings = %+v, want %+v", got, want)
	}

	engine, err := ctx.Engine(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if engine.Config().WindowDuration.Minutes() != 30 {
		t.Errorf("engine window = %v, want 30m", engine.Config().WindowDuration)
	}
}

func TestSettingsCmd_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		cmd  SettingsCmd
	}{
		{"end before start", SettingsCmd{StartHour: intPtr(20), EndHour: intPtr(9)}},
		{"zero window", SettingsCmd{WindowMinutes: intPtr(0)}},
		{"zero horizon", SettingsCmd{HorizonDays: intPtr(0)}},
		{"unknown timezone", SettingsCmd{Timezone: strPtr("Mars/Olympus")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := setupTestDB(t)
			if err := tt.cmd.Run(ctx); err == nil {
				t.Error("expected validation error")
			}
			got, _ := ctx.Store.GetSettings(context.Background())
			if got != models.DefaultSettings() {
				t.Errorf("settings changed despite error: %+v", got)
			}
		})
	}
}

func TestSettingsCmd_NoChanges(t *testing.T) {
	ctx, out := setupTestDB(t)
	if err := (&SettingsCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No changes specified") {
		t.Errorf("output = %q", out.String())
	}
}
