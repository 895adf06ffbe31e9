package graph

import (
	"bufio"
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pagerank-analysis/pkg/errors"
	"github.com/pagerank-analysis/pkg/parallel"
	"github.com/pagerank-analysis/pkg/ringbuf"
	"github.com/pagerank-analysis/pkg/utils"
)

// Options configures graph ingestion.
type Options struct {
	// Workers is the size of the parser and sorter pools. Clamped to the
	// node count; zero means 3.
	Workers int

	// BufferSize is the ring capacity in ints for the edge pipeline and the
	// duplicate back-channel. Zero means ringbuf.DefaultSize.
	BufferSize int

	// InListCap is the initial capacity of each in-list. Zero means
	// DefaultInListCap.
	InListCap int

	// Logger receives debug diagnostics. Nil disables logging.
	Logger utils.Logger

	// Timer, when set, records the read and sort phases.
	Timer *utils.Timer
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = 3
	}
	if o.BufferSize < 2 {
		o.BufferSize = ringbuf.DefaultSize
	}
	if o.BufferSize%2 != 0 {
		o.BufferSize++
	}
	if o.InListCap < 1 {
		o.InListCap = DefaultInListCap
	}
	if o.Logger == nil {
		o.Logger = utils.NopLogger()
	}
	return o
}

// ParseFile parses the Matrix-Market file at path.
func ParseFile(ctx context.Context, path string, opts Options) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeIOError, "open "+path, err)
	}
	defer f.Close()

	g, err := Parse(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Parse reads a Matrix-Market coordinate stream and returns the canonical
// graph: in-lists sorted and deduplicated, out-degrees reconciled, dead-end
// nodes enumerated.
//
// Malformed input is fatal and reported with its line number. Self-loops,
// out-of-range endpoints and duplicate edges are dropped silently, adjusting
// the edge total.
func Parse(ctx context.Context, r io.Reader, opts Options) (*Graph, error) {
	opts = opts.withDefaults()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNum := 0

	// Comment lines are only valid before the header.
	header := ""
	for sc.Scan() {
		lineNum++
		line := sc.Text()
		if strings.HasPrefix(line, "%") {
			continue
		}
		header = line
		break
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.CodeIOError, "read input", err)
	}
	if header == "" {
		return nil, errors.New(errors.CodeParseError, "missing header line")
	}

	nodes, declared, err := parseHeader(header, lineNum)
	if err != nil {
		return nil, err
	}

	g := newGraph(nodes, declared, opts.InListCap)
	part := parallel.NewPartition(nodes, opts.Workers)

	opts.Logger.Debug("parsing graph: %d nodes, %d declared edges, %d workers",
		nodes, declared, part.Workers())

	if opts.Timer != nil {
		opts.Timer.StartPhase("read")
	}

	// One ring per worker: edges are sharded by destination interval, so a
	// worker is the only writer of every in-list it touches.
	rings := make([]*ringbuf.Ring, part.Workers())
	for i := range rings {
		rings[i] = ringbuf.New(opts.BufferSize, 2)
	}

	var eg errgroup.Group
	for w := 0; w < part.Workers(); w++ {
		ring := rings[w]
		eg.Go(func() error {
			rec := make([]int, 2)
			for {
				ring.Get(rec)
				if ringbuf.IsSentinel(rec) {
					return nil
				}
				g.pushIn(rec[1], rec[0])
			}
		})
	}

	var parseErr error
	for sc.Scan() {
		lineNum++

		if lineNum%8192 == 0 {
			select {
			case <-ctx.Done():
				parseErr = errors.Wrap(errors.CodeIOError, "read input", ctx.Err())
			default:
			}
			if parseErr != nil {
				break
			}
		}

		ori, dest, ok := parseEdge(sc.Text())
		if !ok {
			parseErr = errors.Newf(errors.CodeParseError, "malformed edge at line %d", lineNum)
			break
		}

		// Self-loops and out-of-range endpoints do not count.
		if ori == dest || ori < 1 || dest < 1 || ori > nodes || dest > nodes {
			g.Edges--
			continue
		}

		g.Out[ori-1]++
		rings[part.Owner(dest-1)].Put(ori-1, dest-1)
	}
	if parseErr == nil {
		if err := sc.Err(); err != nil {
			parseErr = errors.Wrap(errors.CodeIOError, "read input", err)
		}
	}

	for _, ring := range rings {
		ring.PutSentinel()
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if parseErr != nil {
		return nil, parseErr
	}

	if opts.Timer != nil {
		opts.Timer.StopPhase("read")
		opts.Timer.StartPhase("sort")
	}

	g.sortDedup(part, opts.BufferSize)
	g.buildDeadList()

	if opts.Timer != nil {
		opts.Timer.StopPhase("sort")
	}

	opts.Logger.Debug("parsed graph: %d valid edges, %d dead-end nodes",
		g.Edges, len(g.Dead))

	return g, nil
}

// parseHeader parses the first significant line: "rows cols entries".
// Rows must equal columns and be at least one.
func parseHeader(line string, lineNum int) (nodes, edges int, err error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return 0, 0, errors.Newf(errors.CodeParseError, "bad header at line %d: want three integers", lineNum)
	}

	vals := make([]int, 3)
	for i, f := range fields {
		v, convErr := strconv.Atoi(f)
		if convErr != nil {
			return 0, 0, errors.Newf(errors.CodeParseError, "bad header at line %d: %q is not an integer", lineNum, f)
		}
		vals[i] = v
	}

	rows, cols, entries := vals[0], vals[1], vals[2]
	if rows != cols {
		return 0, 0, errors.Newf(errors.CodeParseError, "bad header at line %d: rows (%d) != columns (%d)", lineNum, rows, cols)
	}
	if rows < 1 {
		return 0, 0, errors.Newf(errors.CodeParseError, "bad header at line %d: need at least one node", lineNum)
	}
	if entries < 0 {
		return 0, 0, errors.Newf(errors.CodeParseError, "bad header at line %d: negative edge count", lineNum)
	}

	return rows, entries, nil
}

// parseEdge parses an edge line, which must hold exactly two integers.
func parseEdge(line string) (ori, dest int, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, false
	}

	ori, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, false
	}
	dest, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, false
	}
	return ori, dest, true
}
