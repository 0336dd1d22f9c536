package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mmynk/payouts/internal/csvcodec"
	"github.com/mmynk/payouts/internal/metrics"
	"github.com/mmynk/payouts/internal/models"
	"github.com/mmynk/payouts/pkg/display"
)

// MaxImportBytes is the largest file ProposeImport will read.
const MaxImportBytes = 2 << 20

// ImportProposal is a parsed import waiting for ApplyImport. Proposing
// changes nothing in the session.
type ImportProposal struct {
	csvcodec.Result
}

// Export renders the current snapshot as CSV.
func (s *Session) Export() string {
	return csvcodec.Serialize(s.Snapshot())
}

// ExportTo writes the current snapshot as CSV to w.
func (s *Session) ExportTo(w io.Writer) error {
	return csvcodec.Encode(w, s.Snapshot())
}

// ProposeImport reads and parses a CSV file. Read failures wrap
// models.ErrImportIO; structural problems wrap models.ErrImportFormat.
// A canceled ctx aborts the read; the error wraps both models.ErrImportIO
// and ctx.Err().
func (s *Session) ProposeImport(ctx context.Context, r io.Reader) (*ImportProposal, error) {
	p, err := s.proposeImport(ctx, r)
	if err != nil {
		s.metrics.Import(metrics.ImportRejected)
		slog.Warn("Import rejected", "error", err)
		return nil, err
	}

	slog.Info("Import parsed",
		"recipients", len(p.Recipients),
		"groups", len(p.Groups),
		"ignored", p.Ignored,
		"has_total", p.TotalAmount != nil,
	)
	return p, nil
}

func (s *Session) proposeImport(ctx context.Context, r io.Reader) (*ImportProposal, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reader", models.ErrInvalidInput)
	}

	data, err := io.ReadAll(io.LimitReader(&ctxReader{ctx: ctx, r: r}, MaxImportBytes+1))
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrImportIO, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", models.ErrImportIO, err)
	}
	if len(data) > MaxImportBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", models.ErrImportFormat, MaxImportBytes)
	}

	res, err := s.decoder.Decode(string(data))
	if err != nil {
		return nil, err
	}
	return &ImportProposal{Result: *res}, nil
}

// ApplyImport replaces recipients, groups and, when the file carried one, the
// total amount with the proposal in one step. Payouts are recomputed; file
// payouts are never used.
func (s *Session) ApplyImport(p *ImportProposal) error {
	if p == nil {
		return fmt.Errorf("%w: nil import proposal", models.ErrInvalidInput)
	}

	droppedGroups := s.groups.Replace(p.Groups)
	droppedRecipients := s.recipients.Replace(p.Recipients)
	if p.TotalAmount != nil {
		s.total = models.Clamp(*p.TotalAmount, 0, models.MaxTotalAmount)
	}
	s.clearDanglingGroups()
	s.recompute()

	s.metrics.Dropped("group", droppedGroups)
	s.metrics.Dropped("recipient", droppedRecipients)
	s.metrics.Import(metrics.ImportApplied)

	slog.Info("Import applied",
		"recipients", s.recipients.Len(),
		"groups", len(s.groups.All()),
		"dropped", droppedGroups+droppedRecipients,
		"total_amount", display.Currency(s.total),
		"distributed", display.Percent(s.dist.PayoutSum(), s.total),
	)
	return nil
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
