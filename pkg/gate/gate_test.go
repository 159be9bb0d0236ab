package gate

import (
	"log/slog"
	"testing"
	"time"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wellFormedBundle() models.Bundle {
	return models.Bundle{
		ID:        "b1",
		Type:      models.BundleFeature,
		CreatedAt: time.Unix(0, 0),
		Files: []models.FileEntry{
			{Path: "src/widget.ts", Action: models.ActionCreate, Content: "export function widget() { return 1; }"},
		},
		Tests: []models.TestEntry{
			{Path: "src/widget.test.ts", SourceFile: "src/widget.ts", Content: "test('widget', () => {});"},
		},
	}
}

func TestGateRunPassesForWellFormedBundle(t *testing.T) {
	g := New(80, nil)
	summary := g.Run(wellFormedBundle(), nil)
	assert.True(t, summary.Passed)
	assert.Len(t, summary.Checks, 6)
	assert.Empty(t, summary.Blockers)
}

func TestGateRunEmitsStartCompleteAndSummaryEvents(t *testing.T) {
	g := New(80, nil)
	var events []models.EventType
	g.Run(wellFormedBundle(), func(eventType models.EventType, data map[string]any) {
		events = append(events, eventType)
	})

	// 6 checks * (start + complete) + 1 summary.
	require.Len(t, events, 13)
	assert.Equal(t, models.EventValidationSummary, events[len(events)-1])
	for i := 0; i < 6; i++ {
		assert.Equal(t, models.EventValidationCheckStart, events[i*2])
		assert.Equal(t, models.EventValidationCheckComplete, events[i*2+1])
	}
}

func TestGateRunFailsOnSyntaxBlocker(t *testing.T) {
	b := wellFormedBundle()
	b.Files[0].Content = "export function widget() { return 1;"
	g := New(80, nil)
	summary := g.Run(b, nil)
	assert.False(t, summary.Passed)
	require.NotEmpty(t, summary.Blockers)
	assert.Equal(t, "SyntaxCheck", summary.Blockers[0].Name)
}

func TestGateRunFailsOnNonReversibleMigration(t *testing.T) {
	b := wellFormedBundle()
	b.Migrations = []models.MigrationEntry{{
		ID:         "m1",
		SQLForward: "CREATE TABLE widgets (id INT);",
		SQLReverse: "",
	}}
	g := New(80, nil)
	summary := g.Run(b, nil)
	assert.False(t, summary.Passed)
	names := make([]string, len(summary.Blockers))
	for i, bl := range summary.Blockers {
		names[i] = bl.Name
	}
	assert.Contains(t, names, "MigrationReversibilityCheck")
}

func TestGateRunTreatsWarningsAsNonBlocking(t *testing.T) {
	b := wellFormedBundle()
	b.Files[0].Content += "\neval(userInput);"
	g := New(80, nil)
	summary := g.Run(b, nil)
	assert.True(t, summary.Passed)
	require.NotEmpty(t, summary.Warnings)
	assert.Equal(t, "SecurityCheck", summary.Warnings[0].Name)
}

func TestGateNewHonorsSkipChecks(t *testing.T) {
	g := New(80, []string{"TestCoverageCheck", "SecurityCheck"})
	b := wellFormedBundle()
	b.Tests = nil
	summary := g.Run(b, nil)
	for _, r := range summary.Checks {
		assert.NotEqual(t, "TestCoverageCheck", r.Name)
		assert.NotEqual(t, "SecurityCheck", r.Name)
	}
	assert.Len(t, summary.Checks, 4)
}

type panickyCheck struct{}

func (panickyCheck) Name() string           { return "PanickyCheck" }
func (panickyCheck) Level() Level           { return LevelWarning }
func (panickyCheck) Run(models.Bundle) CheckResult { panic("boom") }

func TestGateRunOneRecoversPanicAsBlocker(t *testing.T) {
	g := &Gate{checks: []Check{panickyCheck{}}, log: slog.Default()}
	summary := g.Run(wellFormedBundle(), nil)
	assert.False(t, summary.Passed)
	require.Len(t, summary.Blockers, 1)
	assert.Equal(t, "PanickyCheck", summary.Blockers[0].Name)
	assert.Equal(t, LevelBlocker, summary.Blockers[0].Level)
}
