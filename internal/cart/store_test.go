package cart

import (
	"sync"
	"testing"

	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLine(id int64, price string) domain.CartLine {
	return domain.CartLine{
		ProductID: id,
		Title:     "product",
		UnitPrice: decimal.RequireFromString(price),
	}
}

func TestStore_Add_NewLine(t *testing.T) {
	s := NewStore()
	s.Add(newLine(1, "10.00"), 2)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(1), lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestStore_Add_AccumulatesAndClamps(t *testing.T) {
	s := NewStore()
	s.Add(newLine(1, "10.00"), 8)
	s.Add(newLine(1, "10.00"), 5)

	line, ok := s.Line(1)
	require.True(t, ok)
	assert.Equal(t, 10, line.Quantity)
	assert.Equal(t, 1, s.Len())
}

func TestStore_Add_ClampsInsertQuantity(t *testing.T) {
	s := NewStore()
	s.Add(newLine(1, "1"), 0)
	s.Add(newLine(2, "1"), 50)

	l1, _ := s.Line(1)
	l2, _ := s.Line(2)
	assert.Equal(t, 1, l1.Quantity)
	assert.Equal(t, 10, l2.Quantity)
}

func TestStore_Add_KeepsFirstPriceSnapshot(t *testing.T) {
	s := NewStore()
	s.Add(newLine(1, "10.00"), 1)
	s.Add(newLine(1, "12.00"), 1)

	line, _ := s.Line(1)
	assert.True(t, decimal.RequireFromString("10.00").Equal(line.UnitPrice))
	assert.Equal(t, 2, line.Quantity)
}

func TestStore_Add_PreservesInsertionOrder(t *testing.T) {
	s := NewStore()
	s.Add(newLine(3, "1"), 1)
	s.Add(newLine(1, "1"), 1)
	s.Add(newLine(2, "1"), 1)
	s.Add(newLine(3, "1"), 1)

	lines := s.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, []int64{3, 1, 2}, []int64{lines[0].ProductID, lines[1].ProductID, lines[2].ProductID})
}

func TestStore_SetQuantity(t *testing.T) {
	s := NewStore()
	s.Add(newLine(1, "1"), 3)

	s.SetQuantity(1, 7)
	line, _ := s.Line(1)
	assert.Equal(t, 7, line.Quantity)

	s.SetQuantity(1, 0)
	line, _ = s.Line(1)
	assert.Equal(t, 1, line.Quantity)

	s.SetQuantity(1, 11)
	line, _ = s.Line(1)
	assert.Equal(t, 10, line.Quantity)
}

func TestStore_SetQuantity_AbsentIsNoop(t *testing.T) {
	s := NewStore()
	s.SetQuantity(42, 3)
	assert.True(t, s.IsEmpty())
}

func TestStore_Remove(t *testing.T) {
	s := NewStore()
	s.Add(newLine(1, "1"), 1)
	s.Add(newLine(2, "1"), 1)

	s.Remove(1)
	s.Remove(99)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].ProductID)
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.Add(newLine(1, "1"), 1)
	s.Clear()

	assert.True(t, s.IsEmpty())
	assert.True(t, decimal.Zero.Equal(s.Subtotal()))
}

func TestStore_Subtotal(t *testing.T) {
	s := NewStore()
	s.Add(newLine(1, "109.95"), 2)
	s.Add(newLine(2, "22.30"), 1)

	assert.True(t, decimal.RequireFromString("242.20").Equal(s.Subtotal()))
	assert.Equal(t, 3, s.Count())
}

func TestStore_Lines_ReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Add(newLine(1, "1"), 1)

	lines := s.Lines()
	lines[0].Quantity = 9

	line, _ := s.Line(1)
	assert.Equal(t, 1, line.Quantity)
}

func TestStore_ConcurrentAdds(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s.Add(newLine(id%5, "1"), 1)
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, 5, s.Len())
	for _, l := range s.Lines() {
		assert.Equal(t, 10, l.Quantity)
	}
}

func TestStore_Add_NeverLowersQuantity(t *testing.T) {
	s := NewStore()
	s.Add(newLine(1, "1"), 5)

	s.Add(newLine(1, "1"), -3)
	line, _ := s.Line(1)
	assert.Equal(t, 6, line.Quantity)

	s.Add(newLine(1, "1"), 0)
	line, _ = s.Line(1)
	assert.Equal(t, 7, line.Quantity)
}

func TestStore_Subtotal_IndependentOfInsertionOrder(t *testing.T) {
	type item struct {
		id    int64
		price string
		qty   int
	}
	items := []item{{1, "109.95", 2}, {2, "22.30", 1}, {3, "0.99", 7}}

	tests := []struct {
		name  string
		order []int
	}{
		{"forward", []int{0, 1, 2}},
		{"reverse", []int{2, 1, 0}},
		{"mixed", []int{1, 2, 0}},
	}

	want := decimal.RequireFromString("249.13")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			for _, i := range tt.order {
				s.Add(newLine(items[i].id, items[i].price), items[i].qty)
			}
			assert.True(t, want.Equal(s.Subtotal()), "got %s", s.Subtotal())
		})
	}
}

func TestStore_Add_SplitEqualsCombined(t *testing.T) {
	tests := []struct {
		name   string
		q1, q2 int
	}{
		{"small", 1, 2},
		{"reaches max", 4, 6},
		{"over max", 7, 8},
		{"both max", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split := NewStore()
			split.Add(newLine(1, "2.50"), tt.q1)
			split.Add(newLine(1, "2.50"), tt.q2)

			combined := NewStore()
			combined.Add(newLine(1, "2.50"), tt.q1+tt.q2)

			assert.Equal(t, combined.Lines(), split.Lines())
			assert.True(t, combined.Subtotal().Equal(split.Subtotal()))
		})
	}
}

func TestStore_Settle(t *testing.T) {
	s := NewStore()
	s.Add(newLine(1, "1"), 2)
	s.Add(newLine(2, "1"), 1)
	ordered := s.Lines()

	s.SetQuantity(1, 5)
	s.Add(newLine(3, "1"), 1)

	s.Settle(ordered)

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].ProductID)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, int64(3), lines[1].ProductID)
}

func TestStore_Settle_EmptiesWhenUnchanged(t *testing.T) {
	s := NewStore()
	s.Add(newLine(1, "1"), 2)
	s.Add(newLine(2, "1"), 1)

	s.Settle(s.Lines())

	assert.True(t, s.IsEmpty())
}
