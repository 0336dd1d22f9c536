package csvcodec

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mmynk/payouts/internal/models"
	"github.com/mmynk/payouts/internal/validate"
)

// MaxContentBytes is the hard limit on the text handed to Deserialize.
const MaxContentBytes = 1 << 20

// Result is a parsed import. Nothing in it has been applied to a store.
type Result struct {
	Recipients []models.Recipient

	// Groups is nil when the file has no group section.
	Groups []models.Group

	// TotalAmount is nil when the file has no __TOTAL_PAYOUT__ row.
	TotalAmount *float64

	// Ignored counts recipient rows past models.MaxRecipients.
	Ignored int
}

// Decoder parses CSV text into a Result.
type Decoder struct {
	idPrefix func() string
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithIDPrefix sets the generator for the per-import ID prefix.
func WithIDPrefix(fn func() string) Option {
	return func(d *Decoder) {
		if fn != nil {
			d.idPrefix = fn
		}
	}
}

// NewDecoder creates a Decoder. By default every Decode call uses a fresh
// "import-xxxxxxxx" prefix.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{idPrefix: batchPrefix}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func batchPrefix() string {
	return "import-" + uuid.NewString()[:8]
}

// Deserialize parses text with a default Decoder.
func Deserialize(text string) (*Result, error) {
	return NewDecoder().Decode(text)
}

// columns holds header positions; -1 means absent.
type columns struct {
	name, kind, value, color, groupID int
}

// Decode parses text. Structural problems return an error wrapping
// models.ErrImportFormat; bad cells fall back to defaults instead.
func (d *Decoder) Decode(text string) (*Result, error) {
	if len(text) > MaxContentBytes {
		return nil, fmt.Errorf("%w: content is %d bytes, limit is %d", models.ErrImportFormat, len(text), MaxContentBytes)
	}
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", models.ErrImportFormat)
	}
	text = strings.TrimPrefix(text, "\uFEFF")

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrImportFormat, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: need a header row and at least one data row", models.ErrImportFormat)
	}

	cols, err := parseHeader(records[0])
	if err != nil {
		return nil, err
	}

	prefix := d.idPrefix()
	res := &Result{}
	inGroups := false

	for i, row := range records[1:] {
		rowIndex := i + 1
		first := cell(row, 0)

		if inGroups || first == groupMarker {
			inGroups = true
			if res.Groups == nil {
				res.Groups = []models.Group{}
			}
			if isGroupHeader(row) {
				continue
			}
			if g, ok := parseGroup(row); ok {
				res.Groups = append(res.Groups, g)
			}
			continue
		}

		name := cell(row, cols.name)
		if name == totalMarker || first == totalMarker {
			if total, ok := parseTotal(row, cols); ok {
				res.TotalAmount = &total
			}
			continue
		}
		if strings.EqualFold(name, "total") || isBlank(row) {
			continue
		}

		if len(res.Recipients) >= models.MaxRecipients {
			res.Ignored++
			continue
		}
		res.Recipients = append(res.Recipients, parseRecipient(row, cols, fmt.Sprintf("%s-%d", prefix, rowIndex)))
	}

	if res.Ignored > 0 {
		slog.Warn("Import row limit reached",
			"max", models.MaxRecipients,
			"ignored", res.Ignored,
		)
	}

	return res, nil
}

func parseHeader(row []string) (columns, error) {
	if len(row) < 3 {
		return columns{}, fmt.Errorf("%w: header has %d columns, need at least 3", models.ErrImportFormat, len(row))
	}

	index := make(map[string]int, len(row))
	for i, h := range row {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}
	lookup := func(keys ...string) int {
		for _, k := range keys {
			if i, ok := index[k]; ok {
				return i
			}
		}
		return -1
	}

	cols := columns{
		name:    lookup("name"),
		kind:    lookup("type"),
		value:   lookup("value"),
		color:   lookup("color"),
		groupID: lookup("groupid", "group_id", "group id"),
	}
	if cols.name < 0 {
		return columns{}, fmt.Errorf("%w: missing name column", models.ErrImportFormat)
	}
	return cols, nil
}

func parseRecipient(row []string, cols columns, id string) models.Recipient {
	kind, ok := models.ParseKind(cell(row, cols.kind))
	if !ok {
		kind = models.KindShare
	}

	value, err := strconv.ParseFloat(cell(row, cols.value), 64)
	if err != nil || math.IsNaN(value) {
		value = 1
	}

	color := cell(row, cols.color)
	if !validate.Color(color) {
		color = ""
	}

	return models.Recipient{
		ID:      id,
		Name:    models.EscapeHTML(rawCell(row, cols.name)),
		Kind:    kind,
		Value:   models.Clamp(value, 0, kind.MaxValue()),
		Color:   color,
		GroupID: cell(row, cols.groupID),
	}
}

// parseTotal reads the total from the value column, or the third cell when
// the header has no value column.
func parseTotal(row []string, cols columns) (float64, bool) {
	idx := cols.value
	if idx < 0 {
		idx = 2
	}
	total, err := strconv.ParseFloat(cell(row, idx), 64)
	if err != nil || math.IsNaN(total) {
		return 0, false
	}
	return models.Clamp(total, 0, models.MaxTotalAmount), true
}

func isGroupHeader(row []string) bool {
	return strings.EqualFold(cell(row, 1), "id") && strings.EqualFold(cell(row, 2), "name")
}

func parseGroup(row []string) (models.Group, bool) {
	id := cell(row, 1)
	if id == "" {
		return models.Group{}, false
	}
	color := cell(row, 3)
	if !validate.Color(color) {
		color = ""
	}
	return models.Group{
		ID:       id,
		Name:     models.EscapeHTML(cell(row, 2)),
		Color:    color,
		Expanded: cell(row, 4) == "true",
	}, true
}

// cell returns the trimmed value at i, or "" when the row is short.
func cell(row []string, i int) string {
	return strings.TrimSpace(rawCell(row, i))
}

// rawCell returns the value at i as written. Names keep their whitespace.
func rawCell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlank(row []string) bool {
	for i := range row {
		if cell(row, i) != "" {
			return false
		}
	}
	return true
}
