package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangang-labs/aptsync/internal/core/domain"
	"github.com/hangang-labs/aptsync/internal/core/ports/driving"
)

// mockOrchestrator records calls and returns scripted reports.
type mockOrchestrator struct {
	ingested []domain.Dataset
	allCalls int
	report   *driving.IngestReport
	err      error
}

func (m *mockOrchestrator) Ingest(_ context.Context, d domain.Dataset) (*driving.IngestReport, error) {
	m.ingested = append(m.ingested, d)
	if m.err != nil {
		return nil, m.err
	}
	r := *m.report
	r.Dataset = d
	return &r, nil
}

func (m *mockOrchestrator) IngestAll(ctx context.Context) ([]*driving.IngestReport, error) {
	m.allCalls++
	if m.err != nil {
		return nil, m.err
	}
	var reports []*driving.IngestReport
	for _, d := range domain.AllDatasets() {
		r := *m.report
		r.Dataset = d
		reports = append(reports, r2p(r))
	}
	return reports, nil
}

func r2p(r driving.IngestReport) *driving.IngestReport { return &r }

func withMockOrchestrator(t *testing.T, m *mockOrchestrator) *bytes.Buffer {
	t.Helper()
	old := orchestrator
	orchestrator = m
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	t.Cleanup(func() {
		orchestrator = old
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		flagAll = false
		flagMode = ""
		flagResumePage = 0
		flagForceAnchorID = 0
	})
	return buf
}

func sampleReport() *driving.IngestReport {
	return &driving.IngestReport{
		RunID: "run-1",
		Plan: domain.IngestionPlan{
			StartPage: 1, EndPage: 2, AnchorPage: 2, AnchorFound: true,
			Reason: "stored anchor 42 on page 2",
		},
		PagesFetched: 2,
		RowsUpserted: 1500,
		RowsSkipped:  3,
		Commits:      1,
	}
}

func TestIngestCommandSingleDataset(t *testing.T) {
	m := &mockOrchestrator{report: sampleReport()}
	buf := withMockOrchestrator(t, m)

	rootCmd.SetArgs([]string{"ingest", "sale"})
	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, []domain.Dataset{domain.DatasetSale}, m.ingested)
	assert.Contains(t, buf.String(), "sale: pages 1-2")
	assert.Contains(t, buf.String(), "1500 rows upserted, 3 skipped")
}

func TestIngestCommandUnknownDataset(t *testing.T) {
	m := &mockOrchestrator{report: sampleReport()}
	withMockOrchestrator(t, m)

	rootCmd.SetArgs([]string{"ingest", "parking"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedDataset)
	assert.Empty(t, m.ingested)
}

func TestIngestCommandAll(t *testing.T) {
	m := &mockOrchestrator{report: sampleReport()}
	buf := withMockOrchestrator(t, m)

	rootCmd.SetArgs([]string{"ingest", "--all"})
	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, 1, m.allCalls)
	assert.Contains(t, buf.String(), "sale:")
	assert.Contains(t, buf.String(), "rent:")
	assert.Contains(t, buf.String(), "aptinfo:")
}

func TestIngestCommandNoArgsIngestsAll(t *testing.T) {
	m := &mockOrchestrator{report: sampleReport()}
	withMockOrchestrator(t, m)

	rootCmd.SetArgs([]string{"ingest"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, 1, m.allCalls)
}

func TestIngestCommandFailure(t *testing.T) {
	m := &mockOrchestrator{err: errors.New("upstream down")}
	withMockOrchestrator(t, m)

	rootCmd.SetArgs([]string{"ingest", "rent"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestIngestCommandEmptyPlanMessage(t *testing.T) {
	m := &mockOrchestrator{report: &driving.IngestReport{
		Plan: domain.IngestionPlan{Reason: "dataset is empty"},
	}}
	buf := withMockOrchestrator(t, m)

	rootCmd.SetArgs([]string{"ingest", "aptinfo"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "nothing to pull (dataset is empty)")
}

func TestFlagOverridesApply(t *testing.T) {
	inner := stubProvider{}
	p := flagOverrides{inner: inner}

	flagMode = "full"
	flagResumePage = 7
	flagForceAnchorID = 123
	t.Cleanup(func() {
		flagMode = ""
		flagResumePage = 0
		flagForceAnchorID = 0
	})

	s, err := p.SettingsFor(domain.DatasetSale)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeFull, s.Mode)
	assert.Equal(t, 7, s.ResumePage)
	assert.Equal(t, int64(123), s.ForcedAnchorID)
}

type stubProvider struct{}

func (stubProvider) SettingsFor(d domain.Dataset) (domain.IngestSettings, error) {
	s := domain.DefaultIngestSettings(d)
	s.APIKey = "k"
	return s, nil
}

func (stubProvider) Datasets() []domain.Dataset { return domain.AllDatasets() }
