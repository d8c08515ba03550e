package lineage_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"haccptrace/internal/lineage"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodeKeys(g *lineage.Graph) []lineage.Key {
	var out []lineage.Key
	for _, n := range g.Nodes() {
		out = append(out, n.Key)
	}
	return out
}

func TestLoader_ForwardLoadsDescendants(t *testing.T) {
	sc := newScenario()
	g, err := lineage.NewLoader(sc.src).Load(context.Background(), sc.l1, lineage.Forward)
	require.NoError(t, err)

	assert.Equal(t, []lineage.Key{sc.l1, sc.l2, sc.pkg1, sc.inv1}, nodeKeys(g))
	assert.Equal(t, 3, g.EdgeCount())
	assert.False(t, g.Truncated())
	assert.Empty(t, g.Dangling())
}

func TestLoader_BackwardKeepsUpstreamOrientation(t *testing.T) {
	sc := newScenario()
	g, err := lineage.NewLoader(sc.src).Load(context.Background(), sc.inv1, lineage.Backward)
	require.NoError(t, err)

	assert.Equal(t, 4, g.Len())
	out := g.Out(sc.l1)
	require.Len(t, out, 1)
	assert.Equal(t, sc.l2, out[0].To)
	assert.Equal(t, lineage.EdgeComposition, out[0].Kind)
}

func TestLoader_BothDoesNotPullSiblings(t *testing.T) {
	sc := newScenario()
	sibling := sc.src.add(outgoing("L3", "10"))
	sc.src.link(sc.l1, sibling, lineage.EdgeComposition)

	g, err := lineage.NewLoader(sc.src).Load(context.Background(), sc.l2, lineage.Both)
	require.NoError(t, err)

	assert.True(t, g.Has(sc.l1))
	assert.True(t, g.Has(sc.inv1))
	assert.False(t, g.Has(sibling))
}

func TestLoader_UnknownSeed(t *testing.T) {
	sc := newScenario()
	_, err := lineage.NewLoader(sc.src).Load(context.Background(), key(lineage.KindSale), lineage.Forward)
	assert.ErrorIs(t, err, lineage.ErrNotFound)
}

func TestLoader_RejectsPartySeed(t *testing.T) {
	sc := newScenario()
	_, err := lineage.NewLoader(sc.src).Load(context.Background(), key(lineage.KindCustomer), lineage.Forward)
	assert.ErrorIs(t, err, lineage.ErrInvalidArgument)
}

func TestLoader_UpstreamFailure(t *testing.T) {
	sc := newScenario()
	sc.src.failOn[sc.l2] = errBoom

	_, err := lineage.NewLoader(sc.src).Load(context.Background(), sc.l1, lineage.Forward)
	assert.ErrorIs(t, err, lineage.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, errBoom)
}

func TestLoader_CancellationIsNotAnOutage(t *testing.T) {
	sc := newScenario()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := lineage.NewLoader(sc.src).Load(ctx, sc.l1, lineage.Forward)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, lineage.ErrUpstreamUnavailable)
}

func TestLoader_HopLimit(t *testing.T) {
	sc := newScenario()

	g, err := lineage.NewLoader(sc.src, lineage.WithMaxHops(1)).Load(context.Background(), sc.l1, lineage.Forward)
	require.NoError(t, err)
	assert.Equal(t, []lineage.Key{sc.l1, sc.l2}, nodeKeys(g))
	assert.True(t, g.Truncated())

	g, err = lineage.NewLoader(sc.src, lineage.WithMaxHops(4)).Load(context.Background(), sc.l1, lineage.Forward)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Len())
	assert.False(t, g.Truncated())
}

func TestLoader_HopLimitEqualToChainLength(t *testing.T) {
	sc := newScenario()

	// L1 -> L2 -> PKG1 -> INV-001 is three edges long; the sale has no children.
	g, err := lineage.NewLoader(sc.src, lineage.WithMaxHops(3)).Load(context.Background(), sc.l1, lineage.Forward)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Len())
	assert.Equal(t, 3, g.EdgeCount())
	assert.False(t, g.Truncated())
	assert.True(t, g.Expanded(sc.inv1, lineage.Forward))
	assert.Empty(t, lineage.Validate(g))

	// one hop short still leaves PKG1 with an unloaded sale
	g, err = lineage.NewLoader(sc.src, lineage.WithMaxHops(2)).Load(context.Background(), sc.l1, lineage.Forward)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())
	assert.True(t, g.Truncated())
	assert.False(t, g.Expanded(sc.pkg1, lineage.Forward))
}

func TestLoader_DanglingReference(t *testing.T) {
	src := newMemSource()
	s := sale("INV-404", "2024-03-10")
	gone := key(lineage.KindPackage)
	s.Refs = []lineage.Key{gone}
	src.add(s)

	g, err := lineage.NewLoader(src).Load(context.Background(), s.Key, lineage.Backward)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, []lineage.DanglingRef{{From: s.Key, Ref: gone}}, g.Dangling())
}

func TestLoader_CycleTerminates(t *testing.T) {
	src := newMemSource()
	a := src.add(outgoing("A", "1"))
	b := src.add(outgoing("B", "1"))
	c := src.add(outgoing("C", "1"))
	src.link(a, b, lineage.EdgeComposition)
	src.link(b, c, lineage.EdgeComposition)
	src.link(c, a, lineage.EdgeComposition)

	g, err := lineage.NewLoader(src).Load(context.Background(), a, lineage.Both)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 3, g.EdgeCount())
}

// wide builds one incoming lot feeding n outgoing lots, each packed once.
func wide(n int) (*memSource, lineage.Key) {
	src := newMemSource()
	root := src.add(incoming("ROOT", "1000"))
	for i := 0; i < n; i++ {
		lot := src.add(outgoing(fmt.Sprintf("OUT-%02d", i), "1"))
		src.link(root, lot, lineage.EdgeComposition)
		p := src.add(pkg(fmt.Sprintf("PKG-%02d", i)))
		src.link(lot, p, lineage.EdgePackaging)
	}
	return src, root
}

func TestLoader_FanOutIsBoundedAndDeterministic(t *testing.T) {
	src, root := wide(20)
	src.delay = time.Millisecond

	serial, err := lineage.NewLoader(src, lineage.WithFanOut(1)).Load(context.Background(), root, lineage.Forward)
	require.NoError(t, err)
	assert.Equal(t, 1, src.maxSeen)

	src.maxSeen = 0
	parallel, err := lineage.NewLoader(src, lineage.WithFanOut(4)).Load(context.Background(), root, lineage.Forward)
	require.NoError(t, err)
	assert.LessOrEqual(t, src.maxSeen, 4)

	if diff := cmp.Diff(nodeKeys(serial), nodeKeys(parallel)); diff != "" {
		t.Errorf("node order differs between fan-out settings (-serial +parallel):\n%s", diff)
	}
	assert.Equal(t, 41, parallel.Len())
}
