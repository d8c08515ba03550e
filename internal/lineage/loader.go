package lineage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Link is one neighbour returned by a Source lookup.
type Link struct {
	Node     Node
	Kind     EdgeKind
	Quantity *decimal.Decimal
	// Missing is set when the stored foreign key named Node.Key but no such row
	// exists. Only Node.Key is meaningful then.
	Missing bool
}

// Source answers the per-hop lookups the Loader needs. Implementations must
// return links in a stable order for unchanged data.
type Source interface {
	// Node fetches a single node. It returns (nil, nil) when the row is absent.
	Node(ctx context.Context, key Key) (*Node, error)
	// Children returns the nodes derived from n.
	Children(ctx context.Context, n *Node) ([]Link, error)
	// Parents returns the nodes n was derived from, resolving n.Refs.
	Parents(ctx context.Context, n *Node) ([]Link, error)
}

const defaultFanOut = 4

// Loader materializes the part of the genealogy graph a single query needs.
type Loader struct {
	src     Source
	maxHops int
	fanOut  int
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithMaxHops bounds how many hops from the seed are expanded. Zero or a
// negative value means unbounded.
func WithMaxHops(n int) LoaderOption {
	return func(l *Loader) { l.maxHops = n }
}

// WithFanOut sets how many lookups of one BFS level may run concurrently.
func WithFanOut(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.fanOut = n
		}
	}
}

// NewLoader builds a Loader reading from src.
func NewLoader(src Source, opts ...LoaderOption) *Loader {
	l := &Loader{src: src, fanOut: defaultFanOut}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load builds a graph around seed. Forward pulls descendants, Backward pulls
// ancestors, Both runs a forward then a backward pass from the seed into the
// same graph; neither pass turns around, so siblings are never loaded.
func (l *Loader) Load(ctx context.Context, seed Key, dir Direction) (*Graph, error) {
	if !seed.Kind.IsNode() {
		return nil, fmt.Errorf("%w: %s is not a traceable node", ErrInvalidArgument, seed.Kind)
	}
	if dir&Both == 0 {
		return nil, fmt.Errorf("%w: direction %d", ErrInvalidArgument, dir)
	}

	root, err := l.src.Node(ctx, seed)
	if err != nil {
		return nil, upstream(seed, err)
	}
	if root == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, seed)
	}

	g := NewGraph()
	g.AddNode(*root)
	for _, d := range []Direction{Forward, Backward} {
		if dir&d == 0 {
			continue
		}
		if err := l.expand(ctx, g, seed, d); err != nil {
			return nil, err
		}
	}

	log.Debug().
		Str("seed", seed.String()).
		Str("direction", dir.String()).
		Int("nodes", g.Len()).
		Int("edges", g.EdgeCount()).
		Bool("truncated", g.Truncated()).
		Msg("lineage: graph loaded")
	return g, nil
}

// expand runs one breadth-first pass in a single direction.
func (l *Loader) expand(ctx context.Context, g *Graph, seed Key, dir Direction) error {
	visited := map[Key]bool{seed: true}
	frontier := []Key{seed}

	for hop := 0; len(frontier) > 0; hop++ {
		if l.maxHops > 0 && hop >= l.maxHops {
			return l.probeBeyond(ctx, g, frontier, dir)
		}

		links, err := l.fetchLevel(ctx, g, frontier, dir)
		if err != nil {
			return err
		}

		// Merge in frontier order so the graph does not depend on which lookup
		// finished first.
		var next []Key
		for i, from := range frontier {
			for _, lk := range links[i] {
				if lk.Missing {
					g.AddDangling(from, lk.Node.Key)
					continue
				}
				g.AddNode(lk.Node)
				up, down := from, lk.Node.Key
				if dir == Backward {
					up, down = lk.Node.Key, from
				}
				if err := g.AddEdge(up, down, lk.Kind, lk.Quantity); err != nil {
					return err
				}
				if !visited[lk.Node.Key] {
					visited[lk.Node.Key] = true
					next = append(next, lk.Node.Key)
				}
			}
			g.MarkExpanded(from, dir)
		}
		frontier = next
	}
	return nil
}

// probeBeyond runs the lookups of the level past the hop bound without
// merging them. The graph is truncated only if some frontier node still has
// neighbours; nodes without any count as fully expanded.
func (l *Loader) probeBeyond(ctx context.Context, g *Graph, frontier []Key, dir Direction) error {
	links, err := l.fetchLevel(ctx, g, frontier, dir)
	if err != nil {
		return err
	}
	for i, from := range frontier {
		if len(links[i]) > 0 {
			g.markTruncated()
			continue
		}
		g.MarkExpanded(from, dir)
	}
	return nil
}

// fetchLevel looks up the neighbours of every frontier key, concurrently up to
// the fan-out limit. links[i] belongs to frontier[i].
func (l *Loader) fetchLevel(ctx context.Context, g *Graph, frontier []Key, dir Direction) ([][]Link, error) {
	links := make([][]Link, len(frontier))
	nodes := make([]*Node, len(frontier))
	for i, k := range frontier {
		n, _ := g.Node(k)
		// Copy so lookups never observe merges made by the loop above.
		cp := *n
		cp.Refs = append([]Key(nil), n.Refs...)
		nodes[i] = &cp
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(l.fanOut)
	for i := range frontier {
		i := i
		eg.Go(func() error {
			var (
				res []Link
				err error
			)
			if dir == Backward {
				res, err = l.src.Parents(egCtx, nodes[i])
			} else {
				res, err = l.src.Children(egCtx, nodes[i])
			}
			if err != nil {
				return upstream(frontier[i], err)
			}
			links[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return links, nil
}

// upstream wraps a Source failure. Cancellation by the caller is passed
// through unchanged so it is not reported as an outage.
func upstream(key Key, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: loading %s: %w", ErrUpstreamUnavailable, key, err)
}
