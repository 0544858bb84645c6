package statenet_test

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/statenet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sumNetwork is the introductory example: result = val1 + val2.
type sumNetwork struct {
	val1, val2, result statenet.NodeID
	net                statenet.Network
}

func newSumNetwork(t *testing.T, opts ...statenet.Option) sumNetwork {
	t.Helper()
	var s sumNetwork
	var err error
	b := statenet.NewBuilder(opts...)
	s.val1, err = b.AddInput(1, statenet.WithName("val1"))
	require.NoError(t, err)
	s.val2, err = b.AddInput(2, statenet.WithName("val2"))
	require.NoError(t, err)
	s.result, err = b.AddCalculation(statenet.Sum[int](), []statenet.NodeID{s.val1, s.val2},
		statenet.WithName("result"))
	require.NoError(t, err)
	s.net, err = b.Build()
	require.NoError(t, err)
	return s
}

func mustChange(t *testing.T, n statenet.Network, id statenet.NodeID, v statenet.Value) statenet.Network {
	t.Helper()
	changed, err := n.ChangeValue(id, v)
	require.NoError(t, err)
	return changed
}

func mustValue(t *testing.T, n statenet.Network, id statenet.NodeID) statenet.Value {
	t.Helper()
	v, err := n.Value(id)
	require.NoError(t, err)
	return v
}

func TestIntroductoryExample(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "statenet")
	defer teardown()
	//
	s := newSumNetwork(t)
	assert.Equal(t, 3, mustValue(t, s.net, s.result))

	staged := mustChange(t, s.net, s.val1, 2)
	assert.False(t, staged.IsConsistent(), "changes are detected")

	reverted := mustChange(t, staged, s.val1, 1)
	assert.True(t, reverted.IsConsistent(), "reverted changes are detected")

	next, changed, err := mustChange(t, s.net, s.val1, 2).Commit()
	require.NoError(t, err)
	assert.True(t, next.IsConsistent())
	assert.Equal(t, statenet.NodeSet{s.val1, s.result}, changed)
	assert.Equal(t, 4, mustValue(t, next, s.result))
	// the original network is untouched
	assert.Equal(t, 3, mustValue(t, s.net, s.result))
	assert.Equal(t, 1, mustValue(t, s.net, s.val1))
}

func TestValueReturnsStagedValueForInputsOnly(t *testing.T) {
	s := newSumNetwork(t)
	staged := mustChange(t, s.net, s.val2, 10)
	assert.Equal(t, 10, mustValue(t, staged, s.val2))
	assert.Equal(t, 3, mustValue(t, staged, s.result), "calculations are not recomputed before commit")
	base, err := staged.Baseline(s.val2)
	require.NoError(t, err)
	assert.Equal(t, 2, base)
	v, ok := staged.Staged(s.val2).Get()
	assert.True(t, ok)
	assert.Equal(t, 10, v)
	assert.True(t, staged.Staged(s.val1).IsNothing())
	assert.True(t, s.net.Staged(s.val2).IsNothing())
}

func TestConsistencyRequiresEveryStagedInputToMatch(t *testing.T) {
	s := newSumNetwork(t)
	n := mustChange(t, s.net, s.val1, 7)
	n = mustChange(t, n, s.val2, 8)
	n = mustChange(t, n, s.val1, 1)
	assert.False(t, n.IsConsistent(), "val2 still differs")
	assert.Equal(t, statenet.NodeSet{s.val2}, n.Pending())
	n = mustChange(t, n, s.val2, 2)
	assert.True(t, n.IsConsistent())
	assert.Empty(t, n.Pending())
}

func TestCommitOfConsistentNetworkClearsOverlay(t *testing.T) {
	s := newSumNetwork(t)
	n := mustChange(t, s.net, s.val1, 1) // same as baseline
	next, changed, err := n.Commit()
	require.NoError(t, err)
	assert.Empty(t, changed)
	assert.True(t, next.Staged(s.val1).IsNothing(), "staged-but-unchanged values are discarded")
	assert.Equal(t, s.net.Dump(), next.Dump())
}

func TestChangeValueErrors(t *testing.T) {
	s := newSumNetwork(t)
	_, err := s.net.ChangeValue(s.result, 5)
	assert.ErrorIs(t, err, statenet.ErrNotInputNode)

	other := newSumNetwork(t)
	_, err = s.net.ChangeValue(other.val1, 5)
	assert.ErrorIs(t, err, statenet.ErrUnknownNode, "IDs of other builders are unknown")
	_, err = s.net.Value(other.result)
	assert.ErrorIs(t, err, statenet.ErrUnknownNode)
	_, err = s.net.Value(statenet.NodeID{})
	assert.ErrorIs(t, err, statenet.ErrUnknownNode)

	var zero statenet.Network
	_, err = zero.Value(s.val1)
	assert.ErrorIs(t, err, statenet.ErrUnknownNode)
	assert.True(t, zero.IsConsistent())
	_, changed, err := zero.Commit()
	assert.NoError(t, err)
	assert.Empty(t, changed)
}

func TestBuilderErrors(t *testing.T) {
	b := statenet.NewBuilder()
	other := statenet.NewBuilder()
	a, err := b.AddInput(1)
	require.NoError(t, err)
	foreign, err := other.AddInput(1)
	require.NoError(t, err)

	_, err = b.AddCalculation(statenet.Sum[int](), []statenet.NodeID{a, foreign})
	assert.ErrorIs(t, err, statenet.ErrUnknownNode)
	_, err = b.AddCalculation(statenet.Sum[int](), []statenet.NodeID{{}})
	assert.ErrorIs(t, err, statenet.ErrUnknownNode)
	_, err = b.AddCalculation(nil, []statenet.NodeID{a})
	assert.ErrorIs(t, err, statenet.ErrInvalidCalculation)
	_, err = b.AddCalculation(statenet.Sum[int](), []statenet.NodeID{a},
		statenet.WithValidator(statenet.Clamp(0, 1)))
	assert.ErrorIs(t, err, statenet.ErrInvalidCalculation)

	_, err = b.AddInput(2, statenet.WithName("x"))
	require.NoError(t, err)
	_, err = b.AddInput(3, statenet.WithName("x"))
	assert.ErrorIs(t, err, statenet.ErrDuplicateName)

	n, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 2, n.Len(), "failed additions leave no trace")

	_, err = b.Build()
	assert.ErrorIs(t, err, statenet.ErrBuilderFinalized)
	_, err = b.AddInput(1)
	assert.ErrorIs(t, err, statenet.ErrBuilderFinalized)
	_, err = b.AddCalculation(statenet.Sum[int](), []statenet.NodeID{a})
	assert.ErrorIs(t, err, statenet.ErrBuilderFinalized)
}

func TestBuildFailsOnCalculationError(t *testing.T) {
	b := statenet.NewBuilder()
	a, _ := b.AddInput("not a number")
	c, err := b.AddCalculation(statenet.Sum[int](), []statenet.NodeID{a}, statenet.WithName("sum"))
	require.NoError(t, err)
	_, err = b.Build()
	var calcErr *statenet.CalculationError
	require.ErrorAs(t, err, &calcErr)
	assert.Equal(t, c, calcErr.Node)
	assert.Equal(t, "sum", calcErr.Name)
	assert.ErrorIs(t, err, statenet.ErrTypeMismatch)
	_, err = b.Build()
	assert.ErrorIs(t, err, statenet.ErrBuilderFinalized)
}

func TestFailedCommitLeavesNetworkUnchanged(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "statenet")
	defer teardown()
	//
	b := statenet.NewBuilder()
	a, _ := b.AddInput(1, statenet.WithName("a"))
	double, _ := b.AddCalculation(statenet.Unary(func(x int) int { return 2 * x }),
		[]statenet.NodeID{a}, statenet.WithName("double"))
	guarded, _ := b.AddCalculation(func(inputs []statenet.Value) (statenet.Value, error) {
		if inputs[0].(int) > 10 {
			return nil, errors.New("out of range")
		}
		return inputs[0], nil
	}, []statenet.NodeID{double}, statenet.WithName("guarded"))
	n, err := b.Build()
	require.NoError(t, err)

	staged := mustChange(t, n, a, 6)
	result, changed, err := staged.Commit()
	var calcErr *statenet.CalculationError
	require.ErrorAs(t, err, &calcErr)
	assert.Equal(t, guarded, calcErr.Node)
	assert.Nil(t, changed)
	assert.Equal(t, 6, mustValue(t, result, a), "overlay survives a failed commit")
	assert.Equal(t, 2, mustValue(t, result, double), "no partial baseline update")
	assert.False(t, result.IsConsistent())
	assert.Equal(t, 6, mustValue(t, staged, a))
	assert.Equal(t, 2, mustValue(t, staged, double))
	assert.False(t, staged.IsConsistent())
}

func TestPanickingCalculationBecomesCalculationError(t *testing.T) {
	b := statenet.NewBuilder()
	a, _ := b.AddInput(1)
	c, _ := b.AddCalculation(func(inputs []statenet.Value) (statenet.Value, error) {
		return 10 / inputs[0].(int), nil
	}, []statenet.NodeID{a})
	n, err := b.Build()
	require.NoError(t, err)
	_, _, err = mustChange(t, n, a, 0).Commit()
	var calcErr *statenet.CalculationError
	require.ErrorAs(t, err, &calcErr)
	assert.Equal(t, c, calcErr.Node)
	assert.ErrorIs(t, err, statenet.ErrCalculationPanic)
}

func TestChangedSetExcludesUnchangedCalculations(t *testing.T) {
	b := statenet.NewBuilder()
	a, _ := b.AddInput(1)
	positive, _ := b.AddCalculation(statenet.Unary(func(x int) bool { return x > 0 }), []statenet.NodeID{a})
	label, _ := b.AddCalculation(statenet.Unary(func(p bool) string {
		if p {
			return "positive"
		}
		return "not positive"
	}), []statenet.NodeID{positive})
	n, err := b.Build()
	require.NoError(t, err)

	next, changed, err := mustChange(t, n, a, 2).Commit()
	require.NoError(t, err)
	assert.Equal(t, statenet.NodeSet{a}, changed)
	next, changed, err = mustChange(t, next, a, -2).Commit()
	require.NoError(t, err)
	assert.Equal(t, statenet.NodeSet{a, positive, label}, changed)
	assert.Equal(t, "not positive", mustValue(t, next, label))
}

func TestCommitRecomputesAffectedNodesOnly(t *testing.T) {
	calls := make(map[string]int)
	counting := func(name string) statenet.Func {
		return func(inputs []statenet.Value) (statenet.Value, error) {
			calls[name]++
			var sum int
			for _, v := range inputs {
				sum += v.(int)
			}
			return sum, nil
		}
	}
	b := statenet.NewBuilder()
	a, _ := b.AddInput(1)
	x, _ := b.AddInput(10)
	left, _ := b.AddCalculation(counting("left"), []statenet.NodeID{a})
	right, _ := b.AddCalculation(counting("right"), []statenet.NodeID{a, a})
	diamond, _ := b.AddCalculation(counting("diamond"), []statenet.NodeID{left, right})
	other, _ := b.AddCalculation(counting("other"), []statenet.NodeID{x})
	n, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"left": 1, "right": 1, "diamond": 1, "other": 1}, calls)

	next, changed, err := mustChange(t, n, a, 2).Commit()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"left": 2, "right": 2, "diamond": 2, "other": 1}, calls)
	assert.Equal(t, statenet.NodeSet{a, left, right, diamond}, changed)
	assert.Equal(t, 6, mustValue(t, next, diamond))
	assert.Equal(t, 10, mustValue(t, next, other))
	deps, err := next.Dependents(a)
	require.NoError(t, err)
	assert.Equal(t, statenet.NodeSet{left, right}, deps)
}

func TestChangedSetMatchesBaselineDifference(t *testing.T) {
	b := statenet.NewBuilder(statenet.StoreDegree(1), statenet.OverlayDegree(2))
	var inputs []statenet.NodeID
	for i := 0; i < 12; i++ {
		id, err := b.AddInput(i)
		require.NoError(t, err)
		inputs = append(inputs, id)
	}
	all := append([]statenet.NodeID{}, inputs...)
	for i := 0; i < 20; i++ {
		deps := []statenet.NodeID{all[(i*7)%len(all)], all[(i*3+1)%len(all)]}
		id, err := b.AddCalculation(statenet.Lambda(func(in []statenet.Value) statenet.Value {
			return (in[0].(int) + in[1].(int)) % 5
		}), deps)
		require.NoError(t, err)
		all = append(all, id)
	}
	n, err := b.Build()
	require.NoError(t, err)
	for round := 0; round < 10; round++ {
		staged := n
		for k := 0; k < 3; k++ {
			staged = mustChange(t, staged, inputs[(round*5+k*7)%len(inputs)], round*k+k)
		}
		next, changed, err := staged.Commit()
		require.NoError(t, err)
		var expected statenet.NodeSet
		for _, id := range n.Nodes() {
			before, _ := n.Baseline(id)
			after, _ := next.Baseline(id)
			if before != after {
				expected = append(expected, id)
			}
		}
		require.Equal(t, expected, changed, "round %d", round)
		n = next
	}
}

func TestBranchesAreIsolated(t *testing.T) {
	s := newSumNetwork(t)
	a := mustChange(t, s.net, s.val1, 10)
	b := mustChange(t, s.net, s.val2, 20)
	committedA, _, err := a.Commit()
	require.NoError(t, err)
	assert.Equal(t, 12, mustValue(t, committedA, s.result))
	assert.Equal(t, 1, mustValue(t, b, s.val1))
	assert.Equal(t, 20, mustValue(t, b, s.val2))
	assert.Equal(t, 3, mustValue(t, b, s.result))
	assert.Equal(t, 3, mustValue(t, s.net, s.result))
	committedB, _, err := b.Commit()
	require.NoError(t, err)
	assert.Equal(t, 21, mustValue(t, committedB, s.result))
	assert.Equal(t, 12, mustValue(t, committedA, s.result))
}

func TestStagingOrderDoesNotMatter(t *testing.T) {
	s := newSumNetwork(t)
	xy, _, err := mustChange(t, mustChange(t, s.net, s.val1, 5), s.val2, 6).Commit()
	require.NoError(t, err)
	yx, _, err := mustChange(t, mustChange(t, s.net, s.val2, 6), s.val1, 5).Commit()
	require.NoError(t, err)
	assert.Equal(t, xy.Dump(), yx.Dump())
	assert.Equal(t, 11, mustValue(t, xy, s.result))
}

func TestDeterminism(t *testing.T) {
	run := func() ([]map[string]statenet.Value, [][]string) {
		s := newSumNetwork(t)
		var dumps []map[string]statenet.Value
		var changes [][]string
		n := s.net
		for i, v := range []int{4, 4, 9, 1} {
			n = mustChange(t, n, s.val1, v)
			n = mustChange(t, n, s.val2, i)
			next, changed, err := n.Commit()
			require.NoError(t, err)
			var names []string
			for _, id := range changed {
				name, _ := next.Name(id)
				names = append(names, name)
			}
			dumps = append(dumps, next.Dump())
			changes = append(changes, names)
			n = next
		}
		return dumps, changes
	}
	d1, c1 := run()
	d2, c2 := run()
	assert.Equal(t, d1, d2)
	assert.Equal(t, c1, c2)
}

func TestConcurrentBranches(t *testing.T) {
	s := newSumNetwork(t)
	var wg sync.WaitGroup
	results := make([]int, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			staged, err := s.net.ChangeValue(s.val1, i)
			if err != nil {
				return
			}
			next, _, err := staged.Commit()
			if err != nil {
				return
			}
			v, _ := next.Value(s.result)
			results[i] = v.(int)
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		assert.Equal(t, i+2, r)
	}
	assert.Equal(t, 3, mustValue(t, s.net, s.result))
}

func TestValidatorCoercesStagedValues(t *testing.T) {
	b := statenet.NewBuilder()
	v, _ := b.AddInput(2, statenet.WithValidator(statenet.Clamp(1, 5)))
	n, err := b.Build()
	require.NoError(t, err)
	staged := mustChange(t, n, v, 6)
	assert.Equal(t, 5, mustValue(t, staged, v))
	next, _, err := staged.Commit()
	require.NoError(t, err)
	assert.Equal(t, 5, mustValue(t, next, v))

	_, err = n.ChangeValue(v, "six")
	assert.ErrorIs(t, err, statenet.ErrInvalidValue)
	assert.ErrorIs(t, err, statenet.ErrTypeMismatch)
}

func TestCustomEquality(t *testing.T) {
	near := func(a, b statenet.Value) bool {
		return math.Abs(a.(float64)-b.(float64)) < 0.01
	}
	b := statenet.NewBuilder()
	f, _ := b.AddInput(1.0, statenet.WithEquality(near))
	g, _ := b.AddCalculation(statenet.Unary(func(x float64) float64 { return x * 3 }), []statenet.NodeID{f},
		statenet.WithEquality(near))
	n, err := b.Build()
	require.NoError(t, err)
	staged := mustChange(t, n, f, 1.005)
	assert.True(t, staged.IsConsistent())
	next, changed, err := staged.Commit()
	require.NoError(t, err)
	assert.Empty(t, changed)
	assert.Equal(t, 1.0, mustValue(t, next, f))

	next, changed, err = mustChange(t, n, f, 1.02).Commit()
	require.NoError(t, err)
	assert.Equal(t, statenet.NodeSet{f, g}, changed)
	assert.InDelta(t, 3.06, mustValue(t, next, g), 1e-9)
}

func TestTypedHelpers(t *testing.T) {
	b := statenet.NewBuilder()
	x, _ := b.AddInput(3.0)
	k, _ := b.AddInput(2)
	s, _ := b.AddInput("×")
	product, _ := b.AddCalculation(statenet.Product[float64](), []statenet.NodeID{x, x})
	scaled, _ := b.AddCalculation(statenet.Binary(func(a float64, k int) float64 { return a * float64(k) }),
		[]statenet.NodeID{product, k})
	label, _ := b.AddCalculation(statenet.Ternary(func(a float64, sep string, k int) string {
		return fmt.Sprint(a) + sep + fmt.Sprint(k)
	}), []statenet.NodeID{x, s, k})
	n, err := b.Build()
	require.NoError(t, err)

	v, err := statenet.ValueOf[float64](n, scaled)
	require.NoError(t, err)
	assert.Equal(t, 18.0, v)
	str, err := statenet.ValueOf[string](n, label)
	require.NoError(t, err)
	assert.Equal(t, "3×2", str)
	_, err = statenet.ValueOf[int](n, product)
	assert.ErrorIs(t, err, statenet.ErrTypeMismatch)

	_, _, err = mustChange(t, n, k, "two").Commit()
	assert.ErrorIs(t, err, statenet.ErrTypeMismatch)
}

func TestTopologyIntrospection(t *testing.T) {
	s := newSumNetwork(t)
	kind, err := s.net.Kind(s.result)
	require.NoError(t, err)
	assert.Equal(t, statenet.CalculationNode, kind)
	kind, _ = s.net.Kind(s.val1)
	assert.Equal(t, statenet.InputNode, kind)
	id, ok := s.net.Lookup("val2")
	assert.True(t, ok)
	assert.Equal(t, s.val2, id)
	_, ok = s.net.Lookup("nope")
	assert.False(t, ok)
	deps, err := s.net.Dependencies(s.result)
	require.NoError(t, err)
	assert.Equal(t, []statenet.NodeID{s.val1, s.val2}, deps)
	assert.Equal(t, statenet.NodeSet{s.val1, s.val2, s.result}, s.net.Nodes())
	assert.True(t, s.val1.Less(s.val2))
	assert.True(t, s.net.Nodes().Contains(s.result))
	assert.True(t, s.net.SameTopology(mustChange(t, s.net, s.val1, 9)))
	assert.False(t, s.net.SameTopology(newSumNetwork(t).net))

	b := statenet.NewBuilder()
	anon, _ := b.AddInput(0)
	n, _ := b.Build()
	name, err := n.Name(anon)
	require.NoError(t, err)
	assert.Len(t, name, 36, "unnamed nodes get a UUID")
}

func TestDumps(t *testing.T) {
	s := newSumNetwork(t)
	assert.Equal(t, "Network(val1: 1, val2: 2, result: 3)", s.net.String())
	staged := mustChange(t, s.net, s.val1, 2)
	assert.Equal(t, "Network(val1: 2, val2: 2, result: 3 | changes=val1)", staged.String())
	assert.Equal(t, map[string]statenet.Value{"val1": 2, "val2": 2, "result": 3}, staged.Dump())

	printed := staged.Print()
	assert.Contains(t, printed, "val1 = 2 (staged)")
	assert.Contains(t, printed, "result = 3")

	var buf bytes.Buffer
	require.NoError(t, staged.WriteYAML(&buf))
	assert.Contains(t, buf.String(), "values:")
	assert.Contains(t, buf.String(), "val1: 2")
	assert.Contains(t, buf.String(), "pending:")
}

func TestDiscard(t *testing.T) {
	s := newSumNetwork(t)
	staged := mustChange(t, s.net, s.val1, 50)
	discarded := staged.Discard()
	assert.True(t, discarded.IsConsistent())
	assert.Equal(t, 1, mustValue(t, discarded, s.val1))
	assert.Equal(t, 50, mustValue(t, staged, s.val1))
}
