package closedlist_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gregoryjjb/carousel/closedlist"
)

func requireRing[T comparable](t *testing.T, l *closedlist.ClosedList[T]) {
	t.Helper()
	require.NoError(t, closedlist.CheckRing(l))
}

// requireView checks current, previous and next in one go.
func requireView[T comparable](t *testing.T, l *closedlist.ClosedList[T], prev, cur, next T) {
	t.Helper()

	v, err := l.Current()
	require.NoError(t, err)
	assert.Equal(t, cur, v, "current")

	v, err = l.Previous()
	require.NoError(t, err)
	assert.Equal(t, prev, v, "previous")

	v, err = l.Next()
	require.NoError(t, err)
	assert.Equal(t, next, v, "next")
}

func headCounter[T comparable](l *closedlist.ClosedList[T]) *int {
	var n int
	l.OnHeadReached(func(T) { n++ })
	return &n
}

func TestEmpty(t *testing.T) {
	lists := map[string]*closedlist.ClosedList[string]{
		"new":        closedlist.New[string](),
		"zero value": {},
		"nil slice":  closedlist.FromSlice[string](nil),
	}

	for name, l := range lists {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 0, l.Len())
			assert.Equal(t, -1, l.Position())

			_, err := l.Head()
			assert.ErrorIs(t, err, closedlist.ErrEmpty)
			_, err = l.Current()
			assert.ErrorIs(t, err, closedlist.ErrEmpty)
			_, err = l.Previous()
			assert.ErrorIs(t, err, closedlist.ErrEmpty)
			_, err = l.Next()
			assert.ErrorIs(t, err, closedlist.ErrEmpty)

			_, err = l.MoveNext(1)
			assert.ErrorIs(t, err, closedlist.ErrEmpty)
			_, err = l.MoveNext(7)
			assert.ErrorIs(t, err, closedlist.ErrEmpty)
			_, err = l.MoveBack(1)
			assert.ErrorIs(t, err, closedlist.ErrEmpty)
			_, err = l.Step()
			assert.ErrorIs(t, err, closedlist.ErrEmpty)
			_, err = l.StepBack()
			assert.ErrorIs(t, err, closedlist.ErrEmpty)

			requireRing(t, l)
		})
	}
}

func TestSingleElement(t *testing.T) {
	l := closedlist.New("only")
	requireRing(t, l)
	requireView(t, l, "only", "only", "only")

	reached := headCounter(l)
	laps, err := l.MoveNext(3)
	require.NoError(t, err)
	assert.Equal(t, 3, laps)
	assert.Equal(t, 3, *reached)
}

func TestNew(t *testing.T) {
	l := closedlist.New("a", "b", "c")
	requireRing(t, l)

	assert.Equal(t, 3, l.Len())
	head, err := l.Head()
	require.NoError(t, err)
	assert.Equal(t, "a", head)
	requireView(t, l, "c", "a", "b")
	assert.Equal(t, []string{"a", "b", "c"}, l.Values())
	assert.Equal(t, "[a b c]", l.String())
}

func TestFromSliceDoesNotAlias(t *testing.T) {
	values := []int{1, 2, 3}
	l := closedlist.FromSlice(values)
	values[0] = 100

	cur, err := l.Current()
	require.NoError(t, err)
	assert.Equal(t, 1, cur)
}

func TestMove(t *testing.T) {
	t.Run("next default step", func(t *testing.T) {
		l := closedlist.New("a", "b", "c")
		_, err := l.Step()
		require.NoError(t, err)
		requireView(t, l, "a", "b", "c")
	})

	t.Run("back default step", func(t *testing.T) {
		l := closedlist.New("a", "b", "c")
		_, err := l.StepBack()
		require.NoError(t, err)
		requireView(t, l, "b", "c", "a")
	})

	t.Run("next inside ring", func(t *testing.T) {
		l := closedlist.New("a", "b", "c")
		_, err := l.MoveNext(2)
		require.NoError(t, err)
		requireView(t, l, "b", "c", "a")
	})

	tests := []struct {
		name    string
		forward bool
		step    int
		prev    int
		cur     int
		next    int
		laps    int
	}{
		{"next full lap", true, 4, 4, 1, 2, 1},
		{"next lap and one", true, 5, 1, 2, 3, 1},
		{"next two laps", true, 8, 4, 1, 2, 2},
		{"back full lap", false, 4, 4, 1, 2, 1},
		{"back lap and one", false, 5, 3, 4, 1, 1},
		{"back two laps", false, 8, 4, 1, 2, 2},
		{"back one", false, 1, 3, 4, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := closedlist.New(1, 2, 3, 4)
			reached := headCounter(l)

			var laps int
			var err error
			if tt.forward {
				laps, err = l.MoveNext(tt.step)
			} else {
				laps, err = l.MoveBack(tt.step)
			}
			require.NoError(t, err)

			requireView(t, l, tt.prev, tt.cur, tt.next)
			assert.Equal(t, tt.laps, laps)
			assert.Equal(t, tt.laps, *reached)
		})
	}
}

func TestMoveInvalidStep(t *testing.T) {
	for _, step := range []int{0, -1, -10} {
		t.Run(fmt.Sprint(step), func(t *testing.T) {
			l := closedlist.New("a", "b")

			_, err := l.MoveNext(step)
			assert.ErrorIs(t, err, closedlist.ErrInvalidStep)
			_, err = l.MoveBack(step)
			assert.ErrorIs(t, err, closedlist.ErrInvalidStep)

			cur, err := l.Current()
			require.NoError(t, err)
			assert.Equal(t, "a", cur)
		})
	}

	t.Run("checked before emptiness", func(t *testing.T) {
		l := closedlist.New[string]()
		_, err := l.MoveNext(0)
		assert.ErrorIs(t, err, closedlist.ErrInvalidStep)
	})
}

func TestMoveRoundTrip(t *testing.T) {
	for size := 1; size <= 5; size++ {
		for start := 0; start < size; start++ {
			for k := 1; k <= 3*size+1; k++ {
				values := make([]int, size)
				for i := range values {
					values[i] = i
				}
				l := closedlist.FromSlice(values)
				if start > 0 {
					_, err := l.MoveNext(start)
					require.NoError(t, err)
				}

				_, err := l.MoveNext(k)
				require.NoError(t, err)
				_, err = l.MoveBack(k)
				require.NoError(t, err)

				cur, err := l.Current()
				require.NoError(t, err)
				require.Equal(t, start, cur, "size=%d start=%d k=%d", size, start, k)
			}
		}
	}
}

func TestHeadCrossings(t *testing.T) {
	for size := 1; size <= 5; size++ {
		for offset := 0; offset < size; offset++ {
			for step := 1; step <= 3*size; step++ {
				values := make([]int, size)
				for i := range values {
					values[i] = i
				}

				l := closedlist.FromSlice(values)
				if offset > 0 {
					_, err := l.MoveNext(offset)
					require.NoError(t, err)
				}

				forward, err := l.MoveNext(step)
				require.NoError(t, err)
				require.Equal(t, (offset+step)/size, forward,
					"forward size=%d offset=%d step=%d", size, offset, step)

				cur, err := l.Current()
				require.NoError(t, err)
				require.Equal(t, (offset+step)%size, cur)
			}
		}
	}
}

func TestHeadReachedValue(t *testing.T) {
	l := closedlist.New("a", "b", "c")
	var heads []string
	l.OnHeadReached(func(head string) { heads = append(heads, head) })

	_, err := l.MoveNext(7)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a"}, heads)
}

func TestListeners(t *testing.T) {
	l := closedlist.New(1, 2)

	var calls []string
	first := l.OnHeadReached(func(int) { calls = append(calls, "first") })
	l.OnHeadReached(func(int) { calls = append(calls, "second") })

	_, err := l.MoveNext(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)

	assert.True(t, l.RemoveListener(first))
	assert.False(t, l.RemoveListener(first))

	calls = nil
	_, err = l.MoveNext(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, calls)

	t.Run("removed during notify", func(t *testing.T) {
		l := closedlist.New(1)
		var id closedlist.ListenerID
		n := 0
		id = l.OnHeadReached(func(int) {
			n++
			l.RemoveListener(id)
		})
		other := headCounter(l)

		_, err := l.MoveNext(3)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, 3, *other)
	})

	t.Run("clears during move", func(t *testing.T) {
		l := closedlist.New(1, 2)
		l.OnHeadReached(func(int) { l.Clear() })

		crossings, err := l.MoveNext(5)
		require.NoError(t, err)
		assert.Equal(t, 1, crossings)
		assert.Equal(t, 0, l.Len())
		requireRing(t, l)

		_, err = l.Current()
		assert.ErrorIs(t, err, closedlist.ErrEmpty)
		_, err = l.MoveNext(1)
		assert.ErrorIs(t, err, closedlist.ErrEmpty)
	})

	t.Run("removes last node during move back", func(t *testing.T) {
		l := closedlist.New("only")
		l.OnHeadReached(func(string) { l.Remove("only") })

		crossings, err := l.MoveBack(3)
		require.NoError(t, err)
		assert.Equal(t, 1, crossings)
		assert.Equal(t, 0, l.Len())
		requireRing(t, l)
	})

	t.Run("removes a member during move", func(t *testing.T) {
		l := closedlist.New(1, 2, 3)
		removed := false
		l.OnHeadReached(func(int) {
			if !removed {
				removed = true
				l.Remove(2)
			}
		})

		crossings, err := l.MoveNext(4)
		require.NoError(t, err)
		assert.Equal(t, 1, crossings)
		requireRing(t, l)
		assert.Equal(t, []int{1, 3}, l.Values())
		requireView(t, l, 1, 3, 1)
	})
}

func TestAdd(t *testing.T) {
	t.Run("to empty", func(t *testing.T) {
		l := closedlist.New[string]()
		l.Add("a")
		requireRing(t, l)

		head, err := l.Head()
		require.NoError(t, err)
		assert.Equal(t, "a", head)
		requireView(t, l, "a", "a", "a")
	})

	t.Run("appends before head", func(t *testing.T) {
		l := closedlist.New("a", "b")
		_, err := l.Step()
		require.NoError(t, err)

		l.Add("c")
		requireRing(t, l)

		assert.Equal(t, 3, l.Len())
		assert.Equal(t, 2, l.IndexOf("c"))
		requireView(t, l, "a", "b", "c")

		head, err := l.Head()
		require.NoError(t, err)
		assert.Equal(t, "a", head)

		_, err = l.StepBack()
		require.NoError(t, err)
		_, err = l.StepBack()
		require.NoError(t, err)
		cur, err := l.Current()
		require.NoError(t, err)
		assert.Equal(t, "c", cur)
	})

	t.Run("zero value", func(t *testing.T) {
		var l closedlist.ClosedList[int]
		for i := 0; i < 5; i++ {
			l.Add(i)
			requireRing(t, &l)
		}
		assert.Equal(t, []int{0, 1, 2, 3, 4}, l.Values())
	})
}

func TestInsert(t *testing.T) {
	t.Run("at zero becomes head", func(t *testing.T) {
		l := closedlist.New("a", "b", "c")
		require.NoError(t, l.Insert(0, "x"))
		requireRing(t, l)

		head, err := l.Head()
		require.NoError(t, err)
		assert.Equal(t, "x", head)
		assert.Equal(t, []string{"x", "a", "b", "c"}, l.Values())

		requireView(t, l, "x", "a", "b")
		_, err = l.MoveBack(1)
		require.NoError(t, err)
		cur, err := l.Current()
		require.NoError(t, err)
		assert.Equal(t, "x", cur)
	})

	t.Run("in middle", func(t *testing.T) {
		l := closedlist.New("a", "b", "c")
		require.NoError(t, l.Insert(2, "x"))
		requireRing(t, l)
		assert.Equal(t, []string{"a", "b", "x", "c"}, l.Values())

		_, err := l.MoveNext(2)
		require.NoError(t, err)
		requireView(t, l, "b", "x", "c")
	})

	t.Run("at end", func(t *testing.T) {
		l := closedlist.New("a", "b", "c")
		require.NoError(t, l.Insert(3, "x"))
		requireRing(t, l)
		assert.Equal(t, []string{"a", "b", "c", "x"}, l.Values())
		requireView(t, l, "x", "a", "b")
	})

	t.Run("into empty", func(t *testing.T) {
		l := closedlist.New[string]()
		require.NoError(t, l.Insert(0, "x"))
		requireRing(t, l)
		requireView(t, l, "x", "x", "x")
	})

	t.Run("out of range", func(t *testing.T) {
		l := closedlist.New("a", "b")
		assert.ErrorIs(t, l.Insert(-1, "x"), closedlist.ErrIndexOutOfRange)
		assert.ErrorIs(t, l.Insert(3, "x"), closedlist.ErrIndexOutOfRange)
		assert.Equal(t, 2, l.Len())
		requireRing(t, l)

		empty := closedlist.New[string]()
		assert.ErrorIs(t, empty.Insert(1, "x"), closedlist.ErrIndexOutOfRange)
	})

	t.Run("cursor keeps its node", func(t *testing.T) {
		l := closedlist.New("a", "b", "c")
		_, err := l.Step()
		require.NoError(t, err)
		assert.Equal(t, 1, l.Position())

		require.NoError(t, l.Insert(1, "x"))
		cur, err := l.Current()
		require.NoError(t, err)
		assert.Equal(t, "b", cur)
		assert.Equal(t, 2, l.Position())

		require.NoError(t, l.Insert(3, "y"))
		assert.Equal(t, 2, l.Position())
		requireView(t, l, "x", "b", "y")
	})
}

func TestRemove(t *testing.T) {
	t.Run("head and current", func(t *testing.T) {
		l := closedlist.New("a", "b", "c")
		assert.True(t, l.Remove("a"))
		requireRing(t, l)

		assert.Equal(t, 2, l.Len())
		assert.False(t, l.Contains("a"))

		head, err := l.Head()
		require.NoError(t, err)
		assert.Equal(t, "b", head)
		requireView(t, l, "c", "b", "c")
	})

	t.Run("current only", func(t *testing.T) {
		l := closedlist.New("a", "b", "c")
		_, err := l.Step()
		require.NoError(t, err)

		assert.True(t, l.Remove("b"))
		requireRing(t, l)
		requireView(t, l, "a", "c", "a")
	})

	t.Run("other node", func(t *testing.T) {
		l := closedlist.New("a", "b", "c")
		assert.True(t, l.Remove("c"))
		requireRing(t, l)
		requireView(t, l, "b", "a", "b")
	})

	t.Run("missing", func(t *testing.T) {
		l := closedlist.New("a", "b")
		assert.False(t, l.Remove("z"))
		assert.Equal(t, 2, l.Len())
	})

	t.Run("last node", func(t *testing.T) {
		l := closedlist.New("a")
		assert.True(t, l.Remove("a"))
		requireRing(t, l)
		assert.Equal(t, 0, l.Len())

		_, err := l.Head()
		assert.ErrorIs(t, err, closedlist.ErrEmpty)
		_, err = l.Current()
		assert.ErrorIs(t, err, closedlist.ErrEmpty)
	})

	t.Run("first duplicate", func(t *testing.T) {
		l := closedlist.New("a", "b", "a")
		assert.True(t, l.Remove("a"))
		requireRing(t, l)
		assert.Equal(t, []string{"b", "a"}, l.Values())
	})
}

func TestRemoveAt(t *testing.T) {
	t.Run("removes first node with the same value", func(t *testing.T) {
		l := closedlist.New("a", "b", "a")
		_, err := l.MoveNext(2)
		require.NoError(t, err)

		require.NoError(t, l.RemoveAt(2))
		requireRing(t, l)
		assert.Equal(t, []string{"b", "a"}, l.Values())

		head, err := l.Head()
		require.NoError(t, err)
		assert.Equal(t, "b", head)

		// The cursor was on the second "a", which survives
		requireView(t, l, "b", "a", "b")
		assert.Equal(t, 1, l.Position())
	})

	t.Run("out of range", func(t *testing.T) {
		l := closedlist.New("a")
		assert.ErrorIs(t, l.RemoveAt(1), closedlist.ErrIndexOutOfRange)
		assert.ErrorIs(t, l.RemoveAt(-1), closedlist.ErrIndexOutOfRange)
		assert.ErrorIs(t, closedlist.New[string]().RemoveAt(0), closedlist.ErrIndexOutOfRange)
	})
}

func TestClear(t *testing.T) {
	l := closedlist.New(1, 2, 3)
	reached := headCounter(l)
	l.Clear()
	requireRing(t, l)

	assert.Equal(t, 0, l.Len())
	_, err := l.Head()
	assert.ErrorIs(t, err, closedlist.ErrEmpty)

	l.Add(9)
	_, err = l.Step()
	require.NoError(t, err)
	assert.Equal(t, 1, *reached, "listeners survive Clear")
}

func TestContainsIndexOf(t *testing.T) {
	l := closedlist.New("a", "b", "c", "b")
	assert.True(t, l.Contains("c"))
	assert.False(t, l.Contains("z"))
	assert.Equal(t, 1, l.IndexOf("b"))
	assert.Equal(t, -1, l.IndexOf("z"))
}

func TestUnsupported(t *testing.T) {
	l := closedlist.New(1, 2, 3)
	_, err := l.Get(0)
	assert.ErrorIs(t, err, closedlist.ErrUnsupported)
	assert.ErrorIs(t, l.Set(0, 5), closedlist.ErrUnsupported)
}

// TestMutationSequence churns a list and checks the ring after every step,
// including slot reuse from the free list.
func TestMutationSequence(t *testing.T) {
	l := closedlist.New[int]()
	for i := 0; i < 20; i++ {
		switch i % 4 {
		case 0, 1:
			l.Add(i)
		case 2:
			require.NoError(t, l.Insert(l.Len()/2, i))
		case 3:
			require.NoError(t, l.RemoveAt(0))
		}
		requireRing(t, l)

		_, err := l.MoveNext(i%3 + 1)
		require.NoError(t, err)
		requireRing(t, l)
	}

	for l.Len() > 0 {
		cur, err := l.Current()
		require.NoError(t, err)
		require.True(t, l.Remove(cur))
		requireRing(t, l)
	}
}
