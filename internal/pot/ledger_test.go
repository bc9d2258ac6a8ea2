package pot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPot(l *Ledger, owner string, mian, fan int) Pot {
	return l.CreatePot(CreatePotParams{
		Position: "教学楼",
		Time:     "12:00",
		Taste:    "辣",
		Owner:    owner,
		Mian:     mian,
		Fan:      fan,
	})
}

func TestLedger_CreateJoinFinish(t *testing.T) {
	l := NewLedger()

	pot := newTestPot(l, "A", 1, 0)
	assert.Equal(t, 1, pot.ID)
	assert.Equal(t, []Eater{{Name: "A", Mian: 1, Fan: 0}}, pot.Eaters)

	pot, err := l.Join(ByID(1), "B", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []Eater{{Name: "A", Mian: 1}, {Name: "B", Fan: 1}}, pot.Eaters)

	finished, err := l.Finish(ByID(1))
	require.NoError(t, err)
	assert.Equal(t, 1, finished.ID)
	assert.Len(t, finished.Eaters, 2)

	assert.Empty(t, l.Pots)
	assert.Equal(t, []EaterStats{
		{Name: "A", Mian: 1, Fan: 0, EatCount: 1, PotCount: 1},
		{Name: "B", Mian: 0, Fan: 1, EatCount: 1, PotCount: 0},
	}, l.Stats)
}

func TestLedger_IDsNeverReused(t *testing.T) {
	l := NewLedger()
	first := newTestPot(l, "A", 1, 0)
	_, err := l.Finish(ByID(first.ID))
	require.NoError(t, err)

	second := newTestPot(l, "A", 1, 0)
	assert.Greater(t, second.ID, first.ID)
	assert.Equal(t, 2, l.Counter)

	l.Clear()
	third := newTestPot(l, "B", 0, 1)
	assert.Equal(t, 3, third.ID)
}

func TestLedger_CreatePotCopiesNote(t *testing.T) {
	l := NewLedger()
	note := "带伞"
	pot := l.CreatePot(CreatePotParams{Owner: "A", Note: &note})
	note = "改了"

	require.NotNil(t, pot.Note)
	assert.Equal(t, "带伞", *pot.Note)
	assert.Equal(t, "带伞", *l.Pots[0].Note)
}

func TestLedger_SelectorResolution(t *testing.T) {
	l := NewLedger()
	newTestPot(l, "A", 1, 0)
	newTestPot(l, "B", 1, 0)
	newTestPot(l, "C", 1, 0)

	p, ok := l.Find(ByIndex(1))
	require.True(t, ok)
	assert.Equal(t, 2, p.ID)

	p, ok = l.Find(ByID(3))
	require.True(t, ok)
	assert.Equal(t, "C", p.Eaters[0].Name)

	// ID 优先于索引
	id, index := 1, 2
	p, ok = l.Find(Selector{ID: &id, Index: &index})
	require.True(t, ok)
	assert.Equal(t, 1, p.ID)

	// ID 不存在时不会退回到索引
	id = 42
	_, ok = l.Find(Selector{ID: &id, Index: &index})
	assert.False(t, ok)

	_, ok = l.Find(Selector{})
	assert.False(t, ok)
	_, ok = l.Find(ByIndex(3))
	assert.False(t, ok)
	_, ok = l.Find(ByIndex(-1))
	assert.False(t, ok)
}

func TestLedger_JoinErrorsLeaveStateUntouched(t *testing.T) {
	l := NewLedger()
	newTestPot(l, "A", 1, 0)
	before := l.Clone()

	_, err := l.Join(ByID(1), "A", 2, 2)
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	_, err = l.Join(ByID(9), "B", 0, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, before, l)
}

func TestLedger_LeaveIsIdempotent(t *testing.T) {
	l := NewLedger()
	newTestPot(l, "A", 1, 0)
	_, err := l.Join(ByIndex(0), "B", 0, 1)
	require.NoError(t, err)

	pot, err := l.Leave(ByIndex(0), "B")
	require.NoError(t, err)
	assert.Equal(t, []Eater{{Name: "A", Mian: 1}}, pot.Eaters)

	pot, err = l.Leave(ByIndex(0), "B")
	require.NoError(t, err)
	assert.Equal(t, []Eater{{Name: "A", Mian: 1}}, pot.Eaters)

	_, err = l.Leave(ByIndex(5), "B")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedger_LeaveOwnerKeepsPotCount(t *testing.T) {
	l := NewLedger()
	newTestPot(l, "A", 1, 0)

	pot, err := l.Leave(ByID(1), "A")
	require.NoError(t, err)
	assert.Empty(t, pot.Eaters)

	_, err = l.Finish(ByID(1))
	require.NoError(t, err)
	assert.Equal(t, []EaterStats{{Name: "A", PotCount: 1}}, l.Stats)
}

func TestLedger_Edit(t *testing.T) {
	l := NewLedger()
	note := "备注"
	l.CreatePot(CreatePotParams{Position: "食堂", Time: "11:30", Taste: "不辣", Owner: "A", Note: &note})

	taste := "微辣"
	pot, err := l.Edit(ByID(1), EditParams{Taste: &taste})
	require.NoError(t, err)
	assert.Equal(t, "食堂", pot.Position)
	assert.Equal(t, "11:30", pot.Time)
	assert.Equal(t, "微辣", pot.Taste)
	require.NotNil(t, pot.Note)
	assert.Equal(t, "备注", *pot.Note)

	pot, err = l.Edit(ByID(1), EditParams{Note: ClearNote()})
	require.NoError(t, err)
	assert.Nil(t, pot.Note)

	pot, err = l.Edit(ByID(1), EditParams{Note: KeepNote()})
	require.NoError(t, err)
	assert.Nil(t, pot.Note)

	pot, err = l.Edit(ByID(1), EditParams{Note: SetNote("新备注")})
	require.NoError(t, err)
	require.NotNil(t, pot.Note)
	assert.Equal(t, "新备注", *pot.Note)

	_, err = l.Edit(ByID(2), EditParams{Taste: &taste})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedger_EditReturnsCopy(t *testing.T) {
	l := NewLedger()
	l.CreatePot(CreatePotParams{Owner: "A", Note: nil})

	pot, err := l.Edit(ByID(1), EditParams{Note: SetNote("x")})
	require.NoError(t, err)
	*pot.Note = "y"
	pot.Eaters[0].Name = "Z"

	assert.Equal(t, "x", *l.Pots[0].Note)
	assert.Equal(t, "A", l.Pots[0].Eaters[0].Name)
}

func TestLedger_EditDemand(t *testing.T) {
	l := NewLedger()
	newTestPot(l, "A", 1, 0)

	fan := 2
	pot, err := l.EditDemand(ByID(1), "A", nil, &fan)
	require.NoError(t, err)
	assert.Equal(t, Eater{Name: "A", Mian: 1, Fan: 2}, pot.Eaters[0])

	mian := 0
	pot, err = l.EditDemand(ByID(1), "A", &mian, nil)
	require.NoError(t, err)
	assert.Equal(t, Eater{Name: "A", Mian: 0, Fan: 2}, pot.Eaters[0])

	_, err = l.EditDemand(ByID(1), "B", &mian, nil)
	assert.ErrorIs(t, err, ErrNotInPot)

	_, err = l.EditDemand(ByID(7), "A", &mian, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedger_FinishNotFound(t *testing.T) {
	l := NewLedger()
	newTestPot(l, "A", 1, 0)
	before := l.Clone()

	_, err := l.Finish(ByID(2))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, l)
}

func TestLedger_FinishByIndexShiftsRemaining(t *testing.T) {
	l := NewLedger()
	newTestPot(l, "A", 1, 0)
	newTestPot(l, "B", 1, 0)
	newTestPot(l, "C", 1, 0)

	_, err := l.Finish(ByIndex(1))
	require.NoError(t, err)
	require.Len(t, l.Pots, 2)
	assert.Equal(t, 1, l.Pots[0].ID)
	assert.Equal(t, 3, l.Pots[1].ID)
}

func TestLedger_ClearFoldsEveryPot(t *testing.T) {
	l := NewLedger()
	newTestPot(l, "A", 1, 0)
	newTestPot(l, "B", 0, 1)
	_, err := l.Join(ByID(2), "A", 2, 0)
	require.NoError(t, err)

	cleared := l.Clear()
	require.Len(t, cleared, 2)
	assert.Equal(t, 1, cleared[0].ID)
	assert.Equal(t, 2, cleared[1].ID)

	assert.Empty(t, l.Pots)
	assert.Equal(t, []EaterStats{
		{Name: "A", Mian: 3, Fan: 0, EatCount: 2, PotCount: 1},
		{Name: "B", Mian: 0, Fan: 1, EatCount: 1, PotCount: 1},
	}, l.Stats)

	assert.Empty(t, l.Clear())
}

func TestLedger_StatsEntryPerName(t *testing.T) {
	l := NewLedger()
	for i := 0; i < 3; i++ {
		newTestPot(l, "A", 1, 1)
		_, err := l.Finish(ByIndex(0))
		require.NoError(t, err)
	}
	require.Len(t, l.Stats, 1)
	assert.Equal(t, EaterStats{Name: "A", Mian: 3, Fan: 3, EatCount: 3, PotCount: 3}, l.Stats[0])
	assert.InDelta(t, 1.0, l.Stats[0].AvgMian(), 1e-9)
	assert.InDelta(t, 0.0, EaterStats{Name: "B"}.AvgFan(), 1e-9)
}

func TestTopStats(t *testing.T) {
	stats := []EaterStats{
		{Name: "A", EatCount: 1},
		{Name: "B", EatCount: 3},
		{Name: "C", EatCount: 1},
		{Name: "D", EatCount: 2},
	}

	all := TopStats(stats, nil)
	names := func(s []EaterStats) []string {
		out := make([]string, 0, len(s))
		for _, e := range s {
			out = append(out, e.Name)
		}
		return out
	}
	assert.Equal(t, []string{"B", "D", "A", "C"}, names(all))
	// 原切片不被重排
	assert.Equal(t, "A", stats[0].Name)

	top := 2
	assert.Equal(t, []string{"B", "D"}, names(TopStats(stats, &top)))

	top = 0
	assert.Empty(t, TopStats(stats, &top))

	top = 10
	assert.Len(t, TopStats(stats, &top), 4)
}
