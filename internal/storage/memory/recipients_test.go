package memory

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/payouts/internal/models"
)

func ptr[T any](v T) *T { return &v }

func names(rs []models.Recipient) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func TestRecipientStore(t *testing.T) {
	t.Run("Add creates share recipients with default names", func(t *testing.T) {
		store := NewRecipientStore()

		n, err := store.Add(3, "")
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		all := store.All()
		require.Len(t, all, 3)
		assert.Equal(t, []string{"Recipient 1", "Recipient 2", "Recipient 3"}, names(all))
		for _, r := range all {
			assert.Equal(t, models.KindShare, r.Kind)
			assert.Equal(t, 1.0, r.Value)
			assert.Empty(t, r.GroupID)
		}

		n, err = store.Add(2, "group-1")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		all = store.All()
		assert.Equal(t, "Recipient 4", all[3].Name)
		assert.Equal(t, "group-1", all[4].GroupID)
	})

	t.Run("Add ignores non-positive counts", func(t *testing.T) {
		store := NewRecipientStore()
		n, err := store.Add(0, "")
		require.NoError(t, err)
		assert.Zero(t, n)
		n, err = store.Add(-4, "")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("Add clamps to 100 per call", func(t *testing.T) {
		store := NewRecipientStore()
		n, err := store.Add(250, "")
		assert.ErrorIs(t, err, models.ErrCapacityExceeded)
		assert.Equal(t, models.MaxAddPerCall, n)
		assert.Equal(t, models.MaxAddPerCall, store.Len())
	})

	t.Run("Add never exceeds 1000 live recipients", func(t *testing.T) {
		store := NewRecipientStore()
		for range 9 {
			_, err := store.Add(100, "")
			require.NoError(t, err)
		}
		_, err := store.Add(50, "")
		require.NoError(t, err)

		n, err := store.Add(100, "")
		assert.ErrorIs(t, err, models.ErrCapacityExceeded)
		assert.Equal(t, 50, n)
		assert.Equal(t, models.MaxRecipients, store.Len())

		n, err = store.Add(1, "")
		assert.ErrorIs(t, err, models.ErrCapacityExceeded)
		assert.Zero(t, n)
		assert.Equal(t, models.MaxRecipients, store.Len())
	})

	t.Run("IDs are never reissued after removal", func(t *testing.T) {
		store := NewRecipientStore()
		_, _ = store.Add(3, "")
		store.Remove("3")
		store.Remove("2")

		_, _ = store.Add(1, "")
		all := store.All()
		require.Len(t, all, 2)
		assert.Equal(t, "4", all[1].ID)
		assert.Equal(t, "Recipient 2", all[1].Name)
	})

	t.Run("Clear resets the ID counter", func(t *testing.T) {
		store := NewRecipientStore()
		_, _ = store.Add(5, "")
		store.ToggleSelection("1")
		store.Clear()

		assert.Zero(t, store.Len())
		assert.Empty(t, store.Selection())

		_, _ = store.Add(1, "")
		assert.Equal(t, "1", store.All()[0].ID)
	})

	t.Run("Remove drops the recipient from the selection", func(t *testing.T) {
		store := NewRecipientStore()
		_, _ = store.Add(3, "")
		store.ToggleSelection("1")
		store.ToggleSelection("2")

		store.Remove("1")
		store.Remove("unknown")

		assert.Equal(t, []string{"2"}, store.Selection())
		assert.Equal(t, 2, store.Len())
	})

	t.Run("Update sanitizes fields", func(t *testing.T) {
		store := NewRecipientStore()
		_, _ = store.Add(1, "")

		store.Update("1", models.RecipientUpdate{
			Name:  ptr("<b>Alice</b>"),
			Kind:  ptr(models.KindFixedAmount),
			Value: ptr(math.NaN()),
			Color: ptr("#112233"),
		})

		r, ok := store.Get("1")
		require.True(t, ok)
		assert.Equal(t, "Alice", r.Name)
		assert.True(t, r.IsFixed())
		assert.Equal(t, 0.0, r.Value)
		assert.Equal(t, "#112233", r.Color)

		store.Update("1", models.RecipientUpdate{Value: ptr(-5.0), Color: ptr("not-a-color"), Kind: ptr(models.Kind("bogus"))})
		r, _ = store.Get("1")
		assert.Equal(t, 0.0, r.Value)
		assert.Equal(t, "#112233", r.Color)
		assert.Equal(t, models.KindFixedAmount, r.Kind)

		store.Update("1", models.RecipientUpdate{Color: ptr(""), Name: ptr("")})
		r, _ = store.Get("1")
		assert.Empty(t, r.Color)
		assert.Empty(t, r.Name)
	})

	t.Run("Update on a multi-selected id applies to the whole selection", func(t *testing.T) {
		store := NewRecipientStore()
		_, _ = store.Add(4, "")
		store.ToggleSelection("1")
		store.ToggleSelection("3")
		store.ToggleSelection("4")

		store.Update("3", models.RecipientUpdate{Value: ptr(7.0)})

		for _, r := range store.All() {
			if r.ID == "2" {
				assert.Equal(t, 1.0, r.Value, "unselected recipient changed")
				continue
			}
			assert.Equal(t, 7.0, r.Value, "recipient %s", r.ID)
		}
	})

	t.Run("Update on an unselected id applies only to it", func(t *testing.T) {
		store := NewRecipientStore()
		_, _ = store.Add(3, "")
		store.ToggleSelection("1")
		store.ToggleSelection("2")

		store.Update("3", models.RecipientUpdate{Value: ptr(9.0)})

		values := map[string]float64{}
		for _, r := range store.All() {
			values[r.ID] = r.Value
		}
		assert.Equal(t, map[string]float64{"1": 1, "2": 1, "3": 9}, values)
	})

	t.Run("Update with a single selected id is not a bulk edit", func(t *testing.T) {
		store := NewRecipientStore()
		_, _ = store.Add(2, "")
		store.ToggleSelection("1")

		store.Update("1", models.RecipientUpdate{Value: ptr(4.0)})

		r, _ := store.Get("2")
		assert.Equal(t, 1.0, r.Value)
	})

	t.Run("ToggleSelection ignores unknown ids", func(t *testing.T) {
		store := NewRecipientStore()
		_, _ = store.Add(1, "")
		store.ToggleSelection("nope")
		store.ToggleSelection("1")
		assert.Equal(t, []string{"1"}, store.Selection())
		store.ToggleSelection("1")
		assert.Empty(t, store.Selection())
	})

	t.Run("MoveToGroup and Ungroup", func(t *testing.T) {
		store := NewRecipientStore()
		_, _ = store.Add(3, "")
		store.MoveToGroup("1", "group-1")
		store.MoveToGroup("2", "group-1")
		store.MoveToGroup("3", "group-2")

		store.Ungroup("group-1")

		all := store.All()
		require.Len(t, all, 3)
		assert.Empty(t, all[0].GroupID)
		assert.Empty(t, all[1].GroupID)
		assert.Equal(t, "group-2", all[2].GroupID)
	})

	t.Run("Reorder moves within a scope only", func(t *testing.T) {
		store := NewRecipientStore()
		_, _ = store.Add(5, "")
		store.MoveToGroup("2", "g")
		store.MoveToGroup("4", "g")

		// Ungrouped scope is [1 3 5]; move "1" to the end.
		store.Reorder("", 0, 2)

		ids := make([]string, 0, 5)
		for _, r := range store.All() {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []string{"3", "2", "5", "4", "1"}, ids)

		// Group scope is [2 4]; swap them.
		store.Reorder("g", 1, 0)
		ids = ids[:0]
		for _, r := range store.All() {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []string{"3", "4", "5", "2", "1"}, ids)
	})

	t.Run("Reorder out of bounds is a no-op", func(t *testing.T) {
		store := NewRecipientStore()
		_, _ = store.Add(3, "")
		before := store.All()

		store.Reorder("", -1, 1)
		store.Reorder("", 0, 3)
		store.Reorder("missing", 0, 0)

		assert.Equal(t, before, store.All())
	})

	t.Run("Replace filters and normalizes records", func(t *testing.T) {
		store := NewRecipientStore()
		store.ToggleSelection("x")
		dropped := store.Replace([]models.Recipient{
			{ID: "10", Name: "<i>A</i>", Value: -1, Payout: 99},
			{ID: "", Name: "bad"},
			{ID: "import-x-1", Name: "B", Kind: models.KindPercentage, Value: 5},
		})

		assert.Equal(t, 1, dropped)
		all := store.All()
		require.Len(t, all, 2)
		assert.Equal(t, "A", all[0].Name)
		assert.Equal(t, 0.0, all[0].Value)
		assert.Equal(t, 0.0, all[0].Payout)
		assert.Equal(t, models.KindShare, all[0].Kind)
		assert.Equal(t, models.KindPercentage, all[1].Kind)

		// The counter moves past numeric IDs it was handed.
		_, _ = store.Add(1, "")
		assert.Equal(t, "11", store.All()[2].ID)
	})

	t.Run("Replace caps at the recipient limit", func(t *testing.T) {
		store := NewRecipientStore()
		recs := make([]models.Recipient, models.MaxRecipients+5)
		for i := range recs {
			recs[i] = models.Recipient{ID: fmt.Sprintf("r-%d", i)}
		}
		dropped := store.Replace(recs)
		assert.Equal(t, 5, dropped)
		assert.Equal(t, models.MaxRecipients, store.Len())
	})

	t.Run("SetPayouts writes by id", func(t *testing.T) {
		store := NewRecipientStore()
		_, _ = store.Add(2, "")
		store.SetPayouts(map[string]float64{"1": 12.5})

		all := store.All()
		assert.Equal(t, 12.5, all[0].Payout)
		assert.Equal(t, 0.0, all[1].Payout)
	})

	t.Run("All returns a copy", func(t *testing.T) {
		store := NewRecipientStore()
		_, _ = store.Add(1, "")
		all := store.All()
		all[0].Name = "changed"
		r, _ := store.Get("1")
		assert.Equal(t, "Recipient 1", r.Name)
	})
}
