package dbss

import (
	"github.com/marmos91/dbss/internal/bus"
	"github.com/marmos91/dbss/internal/dberr"
	"github.com/marmos91/dbss/internal/dc"
	"github.com/marmos91/dbss/internal/logger"
	"github.com/marmos91/dbss/pkg/metrics"
)

// handlerFunc processes one inbound datagram already positioned at its
// payload. It returns an error only for conditions worth surfacing to the
// operator (§7.5); domain-level drops are logged internally and return nil.
type handlerFunc func(d *Dispatcher, it *bus.DatagramIterator) error

// Dispatcher is the single-threaded message processor described in §5: it
// owns the Registry, the Field Classifier, the outbound bus connection,
// and the global context counter, and maps each supported MessageType to
// its handler via a dispatch table built the way the teacher's NFS
// procedure table is (internal/protocol/nfs/dispatch.go), just keyed by
// bus.MessageType instead of an NFSv3 procedure number.
type Dispatcher struct {
	registry   *Registry
	classifier *dc.Classifier
	counter    *ContextCounter
	fields     *fieldWaiterTable

	sender      bus.Sender
	selfChannel bus.Channel
	dbChannel   bus.Channel

	rangeMin, rangeMax uint32

	metrics metrics.DBSSMetrics
}

// NewDispatcher builds a dispatcher bound to a loaded DC schema, the
// configured DOID range (§4.1), and the outbound bus sender.
func NewDispatcher(classifier *dc.Classifier, sender bus.Sender, selfChannel, dbChannel bus.Channel, rangeMin, rangeMax uint32) *Dispatcher {
	return &Dispatcher{
		registry:    NewRegistry(),
		classifier:  classifier,
		counter:     NewContextCounter(),
		fields:      newFieldWaiterTable(),
		sender:      sender,
		selfChannel: selfChannel,
		dbChannel:   dbChannel,
		rangeMin:    rangeMin,
		rangeMax:    rangeMax,
	}
}

// SetMetrics attaches a metrics sink. Passing nil (the zero value) keeps
// every recording call a no-op, so this is optional.
func (d *Dispatcher) SetMetrics(m metrics.DBSSMetrics) {
	d.metrics = m
}

// SetClassifier swaps in a freshly loaded schema's classifier. Per §4.4
// the classifier is read-only within a request, so a bare field
// assignment is safe as long as the swap itself happens on the dispatch
// loop goroutine — callers reach this exclusively through Server's
// schema-reload channel (rangesubscriber.go), never directly.
func (d *Dispatcher) SetClassifier(c *dc.Classifier) {
	d.classifier = c
}

var dispatchTable = map[bus.MessageType]handlerFunc{
	bus.MsgDBSSObjectActivateWithDefaults:              (*Dispatcher).handleActivateWithDefaults,
	bus.MsgDBSSObjectActivateWithDefaultsOther:         (*Dispatcher).handleActivateWithDefaultsOther,
	bus.MsgStateServerObjectGetAll:                     (*Dispatcher).handleGetAll,
	bus.MsgStateServerObjectGetField:                   (*Dispatcher).handleGetField,
	bus.MsgStateServerObjectGetFields:                  (*Dispatcher).handleGetFields,
	bus.MsgStateServerObjectSetField:                   (*Dispatcher).handleSetField,
	bus.MsgStateServerObjectSetFields:                  (*Dispatcher).handleSetFields,
	bus.MsgStateServerObjectDeleteRam:                  (*Dispatcher).handleDeleteRam,
	bus.MsgDBSSObjectDeleteDisk:                        (*Dispatcher).handleDeleteDisk,
	bus.MsgDBServerObjectGetAllResp:                    (*Dispatcher).handleDBGetAllResp,
	bus.MsgDBServerObjectGetFieldResp:                  (*Dispatcher).handleDBGetFieldResp,
	bus.MsgDBServerObjectGetFieldsResp:                 (*Dispatcher).handleDBGetFieldsResp,
}

// InRange reports whether doid falls in the subscribed range (§4.1).
func (d *Dispatcher) InRange(doid uint32) bool {
	return doid >= d.rangeMin && doid <= d.rangeMax
}

// Dispatch routes one already-parsed inbound datagram. Per §4.2/§7,
// unknown message types, malformed payloads and failed bus sends (§7.5,
// already logged by send) are logged and discarded, never fatal, so
// Dispatch returns nil.
func (d *Dispatcher) Dispatch(it *bus.DatagramIterator) error {
	msgType := it.MessageType()
	handler, ok := dispatchTable[msgType]
	if !ok {
		logger.Debug("dropping unsupported message type", logger.MessageType(msgType.String()))
		return nil
	}

	if err := handler(d, it); err != nil {
		var de *dberr.DispatchError
		if !isDispatchError(err, &de) {
			// Only payload decoding returns a plain error.
			de = dberr.NewMalformedMessageError(err.Error())
		}
		logger.Warn("dispatch error", logger.MessageType(msgType.String()), logger.Err(err))
		metrics.RecordDispatchError(d.metrics, de.Code.String())
	}
	return nil
}

func isDispatchError(err error, target **dberr.DispatchError) bool {
	de, ok := err.(*dberr.DispatchError)
	if ok {
		*target = de
	}
	return ok
}

// send is the single choke point for outbound datagrams, so bus-send
// failures (§7.5) are logged uniformly without aborting dispatch.
func (d *Dispatcher) send(dg *bus.Datagram) error {
	if err := d.sender.Send(dg, 0); err != nil {
		logger.Error("bus send failed", logger.MessageType(dg.MessageType().String()), logger.Err(err))
		return dberr.NewBusSendFailedError(0, err)
	}
	return nil
}

// nextContext allocates a context unique across both the pending-fetch
// table and the in-flight field-forwarding table (§9).
func (d *Dispatcher) nextContext() uint32 {
	return d.counter.Next(func(c uint32) bool {
		return d.registry.IsContextLive(c) || d.fields.isLive(c)
	})
}
