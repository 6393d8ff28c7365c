package dbss

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marmos91/dbss/internal/bus"
	"github.com/marmos91/dbss/internal/dc"
	"github.com/marmos91/dbss/internal/logger"
)

// busClient is the subset of *bus.Client the Server needs, narrowed so the
// dispatch loop can be driven against a fake in tests (internal/bus/busfake).
type busClient interface {
	bus.Sender
	Recv() (*bus.DatagramIterator, error)
	Subscribe(self bus.Channel, min, max uint32, timeout time.Duration) error
	Close() error
}

// AdminCommandKind names an operation Run executes on the dispatch loop
// goroutine on behalf of an external caller (internal/adminapi), so
// Registry's "touched only from the dispatch loop" invariant (§5) holds
// even though the request originates on an HTTP handler's goroutine.
type AdminCommandKind int

const (
	AdminSnapshot AdminCommandKind = iota
	AdminForceEvict
)

// AdminCommand is sent on Server.Admin and answered on Result. Result
// must be buffered by at least one so Run never blocks delivering it.
type AdminCommand struct {
	Kind   AdminCommandKind
	DOID   uint32
	Result chan<- AdminResult
}

// AdminResult is the outcome of one AdminCommand.
type AdminResult struct {
	Snapshot Snapshot
	Evicted  bool
	Err      error
}

// Server binds a Dispatcher to a live bus connection and runs the §4.1
// Range Subscriber startup handshake followed by the §5 single-threaded
// receive-dispatch loop.
type Server struct {
	client *Dispatcher
	bus    busClient

	selfChannel        bus.Channel
	rangeMin, rangeMax uint32
	subscribeTimeout   time.Duration

	// Admin carries operator requests (from internal/adminapi) into the
	// dispatch loop. It is unbuffered and drained only by Run, so a send
	// blocks until the loop reaches its next select iteration.
	Admin chan AdminCommand

	// SchemaReload carries freshly parsed schemas from a dc.Watcher into
	// the dispatch loop, so the classifier swap (like Admin access)
	// happens on the single goroutine that also dispatches messages.
	SchemaReload chan *dc.Schema
}

// NewServer wires a Dispatcher to a bus connection. The dispatcher must
// already have been constructed with matching selfChannel/rangeMin/rangeMax.
func NewServer(d *Dispatcher, client busClient, selfChannel bus.Channel, rangeMin, rangeMax uint32, subscribeTimeout time.Duration) *Server {
	return &Server{
		client:           d,
		bus:              client,
		selfChannel:      selfChannel,
		rangeMin:         rangeMin,
		rangeMax:         rangeMax,
		subscribeTimeout: subscribeTimeout,
		Admin:            make(chan AdminCommand),
		SchemaReload:     make(chan *dc.Schema),
	}
}

// Run subscribes to the configured channel/range and then services two
// sources of work on a single goroutine: inbound bus datagrams and
// admin commands from internal/adminapi. bus.Recv blocks, so it runs on
// its own goroutine feeding a channel; the select below multiplexes
// that channel against Admin, so a mutating admin command (force-evict)
// runs between dispatched messages instead of racing the dispatch loop
// for direct access to the registry.
func (s *Server) Run(ctx context.Context) error {
	if err := s.bus.Subscribe(s.selfChannel, s.rangeMin, s.rangeMax, s.subscribeTimeout); err != nil {
		return fmt.Errorf("dbss: range subscribe: %w", err)
	}
	logger.Info("subscribed to bus", logger.Channel(uint64(s.selfChannel)))

	datagrams := make(chan *bus.DatagramIterator)
	recvErrs := make(chan error, 1)
	go func() {
		for {
			it, err := s.bus.Recv()
			if err != nil {
				recvErrs <- err
				return
			}
			select {
			case datagrams <- it:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-recvErrs:
			if errors.Is(err, context.Canceled) {
				return err
			}
			return fmt.Errorf("dbss: recv: %w", err)

		case it := <-datagrams:
			if err := s.client.Dispatch(it); err != nil {
				return fmt.Errorf("dbss: dispatch: %w", err)
			}

		case cmd := <-s.Admin:
			s.handleAdmin(cmd)

		case schema := <-s.SchemaReload:
			s.client.SetClassifier(dc.NewClassifier(schema))
			logger.Info("DC schema reloaded")
		}
	}
}

func (s *Server) handleAdmin(cmd AdminCommand) {
	switch cmd.Kind {
	case AdminSnapshot:
		cmd.Result <- AdminResult{Snapshot: s.client.Snapshot()}
	case AdminForceEvict:
		evicted, err := s.client.ForceEvict(cmd.DOID)
		if err != nil {
			logger.Warn("admin force-evict send failed", logger.DOID(cmd.DOID), logger.Err(err))
		}
		cmd.Result <- AdminResult{Evicted: evicted, Err: err}
	default:
		cmd.Result <- AdminResult{Err: fmt.Errorf("dbss: unknown admin command kind %d", cmd.Kind)}
	}
}
