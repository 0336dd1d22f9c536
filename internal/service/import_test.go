package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/payouts/internal/metrics"
	"github.com/mmynk/payouts/internal/models"
)

// setupImportSession creates a session with groups, mixed kinds and colors.
func setupImportSession(t *testing.T) *Session {
	t.Helper()

	s := NewSession(WithImportBatchPrefix(func() string { return "imp" }))
	staff := s.AddGroup()
	s.UpdateGroup(staff.ID, models.GroupUpdate{Name: ptr("Staff"), Color: ptr("#111111")})
	contractors := s.AddGroup()
	s.ToggleExpanded(contractors.ID)

	_, err := s.AddRecipients(2, staff.ID)
	require.NoError(t, err)
	_, err = s.AddRecipients(1, contractors.ID)
	require.NoError(t, err)
	_, err = s.AddRecipients(1, "")
	require.NoError(t, err)

	s.UpdateRecipient("1", models.RecipientUpdate{Name: ptr("Alice"), Kind: ptr(models.KindFixedAmount), Value: ptr(250.0), Color: ptr("#ABCDEF")})
	s.UpdateRecipient("2", models.RecipientUpdate{Name: ptr("Bob"), Kind: ptr(models.KindPercentage), Value: ptr(20.0)})
	s.UpdateRecipient("3", models.RecipientUpdate{Name: ptr("Carol"), Value: ptr(2.5)})
	s.UpdateRecipient("4", models.RecipientUpdate{Name: ptr("Dan, Jr"), Value: ptr(7.5)})
	s.SetTotalAmount(1250)
	return s
}

func TestExportImportRoundTrip(t *testing.T) {
	src := setupImportSession(t)
	_, err := src.AddRecipients(2, "")
	require.NoError(t, err)
	src.UpdateRecipient("5", models.RecipientUpdate{Name: ptr("<b></b>")})
	src.UpdateRecipient("6", models.RecipientUpdate{Name: ptr("  Padded  ")})
	require.Empty(t, src.Recipients()[4].Name)
	text := src.Export()

	dst := NewSession(WithImportBatchPrefix(func() string { return "imp" }))
	p, err := dst.ProposeImport(context.Background(), strings.NewReader(text))
	require.NoError(t, err)

	// Nothing changes until the proposal is applied.
	assert.Empty(t, dst.Recipients())
	assert.Zero(t, dst.TotalAmount())

	require.NoError(t, dst.ApplyImport(p))

	assert.Equal(t, src.TotalAmount(), dst.TotalAmount())
	assert.Equal(t, src.Groups(), dst.Groups())

	want, got := src.Recipients(), dst.Recipients()
	require.Len(t, got, len(want), "every exported recipient comes back")
	for i := range want {
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].Kind, got[i].Kind)
		assert.Equal(t, want[i].Value, got[i].Value)
		assert.Equal(t, want[i].GroupID, got[i].GroupID)
		assert.Equal(t, want[i].ResolvedColor(), got[i].ResolvedColor())
		assert.InDelta(t, want[i].Payout, got[i].Payout, 1e-9)
		assert.NotEqual(t, want[i].ID, got[i].ID)
		assert.True(t, strings.HasPrefix(got[i].ID, "imp-"), got[i].ID)
	}
}

func TestExportTo(t *testing.T) {
	s := setupImportSession(t)

	var buf bytes.Buffer
	require.NoError(t, s.ExportTo(&buf))
	assert.Equal(t, s.Export(), buf.String())
	assert.Contains(t, buf.String(), `"__TOTAL_PAYOUT__",,"1250.00",,`)
}

func TestApplyImport_ReplacesState(t *testing.T) {
	s := setupImportSession(t)
	s.ToggleSelection("1")

	csv := "Name,Type,Value,GroupID\nX,share,1,g9\nY,share,3,\n"
	p, err := s.ProposeImport(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.NoError(t, s.ApplyImport(p))

	// No total in the file: the current total is kept.
	assert.Equal(t, 1250.0, s.TotalAmount())
	// No group section: groups are cleared along with references to them.
	assert.Empty(t, s.Groups())
	assert.Empty(t, s.Selection())

	all := s.Recipients()
	require.Len(t, all, 2)
	assert.Empty(t, all[0].GroupID)
	assert.InDelta(t, 312.5, all[0].Payout, 1e-9)
	assert.InDelta(t, 937.5, all[1].Payout, 1e-9)

	// Session-issued ids keep counting and never collide with imported ones.
	_, err = s.AddRecipients(1, "")
	require.NoError(t, err)
	assert.Equal(t, "5", s.Recipients()[2].ID)
}

func TestApplyImport_IgnoresFilePayouts(t *testing.T) {
	s := NewSession()
	csv := "Name,Type,Value,Payout ($)\nA,share,1,999.99\n__TOTAL_PAYOUT__,,100,,\n"

	p, err := s.ProposeImport(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.NoError(t, s.ApplyImport(p))

	assert.Equal(t, 100.0, s.TotalAmount())
	assert.Equal(t, 100.0, s.Recipients()[0].Payout)
}

func TestProposeImport_Errors(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	require.NoError(t, err)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		reader  func() *strings.Reader
		wantErr error
	}{
		{
			name:    "missing name column",
			ctx:     context.Background(),
			reader:  func() *strings.Reader { return strings.NewReader("A,B,C\n1,2,3\n") },
			wantErr: models.ErrImportFormat,
		},
		{
			name:    "over the file size limit",
			ctx:     context.Background(),
			reader:  func() *strings.Reader { return strings.NewReader(strings.Repeat("x", MaxImportBytes+1)) },
			wantErr: models.ErrImportFormat,
		},
		{
			name:    "over the content limit",
			ctx:     context.Background(),
			reader:  func() *strings.Reader { return strings.NewReader("Name,Type,Value\n" + strings.Repeat("x", 1<<20)) },
			wantErr: models.ErrImportFormat,
		},
		{
			name:    "canceled context",
			ctx:     canceled,
			reader:  func() *strings.Reader { return strings.NewReader("Name,Type,Value\nA,share,1\n") },
			wantErr: context.Canceled,
		},
		{
			name:    "canceled context is a read failure",
			ctx:     canceled,
			reader:  func() *strings.Reader { return strings.NewReader("Name,Type,Value\nA,share,1\n") },
			wantErr: models.ErrImportIO,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(WithMetrics(rec))
			_, _ = s.AddRecipients(1, "")

			p, err := s.ProposeImport(tt.ctx, tt.reader())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, p)
			assert.Len(t, s.Recipients(), 1, "a rejected import must not touch the session")
		})
	}

	assert.Equal(t, 5.0, counterValue(t, reg, "payouts_imports_total"))
}

func TestProposeImport_ReadFailure(t *testing.T) {
	s := NewSession()

	p, err := s.ProposeImport(context.Background(), iotest.ErrReader(errors.New("disk gone")))
	assert.ErrorIs(t, err, models.ErrImportIO)
	assert.Nil(t, p)

	_, err = s.ProposeImport(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestApplyImport_NilProposal(t *testing.T) {
	s := setupImportSession(t)
	before := s.Snapshot()

	err := s.ApplyImport(nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Equal(t, before, s.Snapshot())
}
