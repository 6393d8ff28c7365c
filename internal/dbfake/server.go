package dbfake

import (
	"fmt"

	"github.com/marmos91/dbss/internal/bus"
	"github.com/marmos91/dbss/internal/dbproto"
	"github.com/marmos91/dbss/internal/logger"
)

// Server answers the database-facing half of the protocol
// (internal/dbproto's dbserver.go request/response pairs) against a Store,
// playing the role spec.md assigns to the external Database Server.
// Nothing outside this package uses it; its own tests (server_test.go)
// round-trip requests through it.
type Server struct {
	store  *Store
	sender bus.Sender
	self   bus.Channel
}

// NewServer binds a Store to a bus connection under the given channel.
func NewServer(store *Store, sender bus.Sender, self bus.Channel) *Server {
	return &Server{store: store, sender: sender, self: self}
}

type fakeHandlerFunc func(s *Server, it *bus.DatagramIterator) error

var fakeDispatchTable = map[bus.MessageType]fakeHandlerFunc{
	bus.MsgDBServerObjectGetAll:     (*Server).handleGetAll,
	bus.MsgDBServerObjectGetField:   (*Server).handleGetField,
	bus.MsgDBServerObjectGetFields:  (*Server).handleGetFields,
	bus.MsgDBServerObjectSetField:   (*Server).handleSetField,
	bus.MsgDBServerObjectSetFields:  (*Server).handleSetFields,
	bus.MsgDBServerObjectDelete:     (*Server).handleDelete,
}

// Dispatch routes one inbound datagram to its handler, logging and
// dropping anything unrecognized rather than treating it as fatal.
func (s *Server) Dispatch(it *bus.DatagramIterator) error {
	msgType := it.MessageType()
	handler, ok := fakeDispatchTable[msgType]
	if !ok {
		logger.Debug("dbfake: dropping unsupported message type", logger.MessageType(msgType.String()))
		return nil
	}
	if err := handler(s, it); err != nil {
		return fmt.Errorf("dbfake: dispatching %s: %w", msgType, err)
	}
	return nil
}

func (s *Server) send(dg *bus.Datagram) error {
	return s.sender.Send(dg, 0)
}

func (s *Server) handleGetAll(it *bus.DatagramIterator) error {
	req, err := dbproto.ParseDBGetAll(it)
	if err != nil {
		return err
	}
	row, found, err := s.store.Get(req.DOID)
	if err != nil {
		return err
	}
	if !found {
		return s.send(dbproto.BuildDBGetAllFailureResp(it.Sender(), s.self, req.Context))
	}
	fields, err := row.Fields()
	if err != nil {
		return err
	}
	return s.send(dbproto.BuildDBGetAllSuccessResp(it.Sender(), s.self, req.Context, row.Class, fieldValues(fields)))
}

func (s *Server) handleGetField(it *bus.DatagramIterator) error {
	req, err := dbproto.ParseDBGetField(it)
	if err != nil {
		return err
	}
	row, found, err := s.store.Get(req.DOID)
	if err != nil {
		return err
	}
	if !found {
		return s.send(dbproto.BuildDBGetFieldFailureResp(it.Sender(), s.self, req.Context))
	}
	fields, err := row.Fields()
	if err != nil {
		return err
	}
	return s.send(dbproto.BuildDBGetFieldSuccessResp(it.Sender(), s.self, req.Context,
		dbproto.FieldValue{ID: req.FieldID, Data: fields[req.FieldID]}))
}

func (s *Server) handleGetFields(it *bus.DatagramIterator) error {
	req, err := dbproto.ParseDBGetFields(it)
	if err != nil {
		return err
	}
	row, found, err := s.store.Get(req.DOID)
	if err != nil {
		return err
	}
	if !found {
		return s.send(dbproto.BuildDBGetFieldsFailureResp(it.Sender(), s.self, req.Context))
	}
	fields, err := row.Fields()
	if err != nil {
		return err
	}
	values := make([]dbproto.FieldValue, 0, len(req.FieldIDs))
	for _, id := range req.FieldIDs {
		values = append(values, dbproto.FieldValue{ID: id, Data: fields[id]})
	}
	return s.send(dbproto.BuildDBGetFieldsSuccessResp(it.Sender(), s.self, req.Context, values))
}

func (s *Server) handleSetField(it *bus.DatagramIterator) error {
	req, err := dbproto.ParseDBSetField(it)
	if err != nil {
		return err
	}
	return s.mutate(req.DOID, func(fields map[uint16][]byte) {
		fields[req.Field.ID] = req.Field.Data
	})
}

func (s *Server) handleSetFields(it *bus.DatagramIterator) error {
	req, err := dbproto.ParseDBSetFields(it)
	if err != nil {
		return err
	}
	return s.mutate(req.DOID, func(fields map[uint16][]byte) {
		for _, f := range req.Fields {
			fields[f.ID] = f.Data
		}
	})
}

func (s *Server) handleDelete(it *bus.DatagramIterator) error {
	req, err := dbproto.ParseDBDelete(it)
	if err != nil {
		return err
	}
	return s.store.Delete(req.DOID)
}

// mutate applies fn to the row's existing field set and upserts the
// result. DB_SET_FIELD(S) is fire-and-forget, so an unknown doid quietly
// creates a class-0 row rather than erroring — matching the teacher's
// tolerant upsert style for settings it doesn't strictly need to validate.
func (s *Server) mutate(doid uint32, fn func(map[uint16][]byte)) error {
	row, found, err := s.store.Get(doid)
	if err != nil {
		return err
	}
	if !found {
		row = &ObjectRow{DOID: doid}
	}
	fields, err := row.Fields()
	if err != nil {
		return err
	}
	fn(fields)
	if err := row.SetFields(fields); err != nil {
		return err
	}
	return s.store.Upsert(row)
}

func fieldValues(fields map[uint16][]byte) []dbproto.FieldValue {
	values := make([]dbproto.FieldValue, 0, len(fields))
	for id, data := range fields {
		values = append(values, dbproto.FieldValue{ID: id, Data: data})
	}
	return values
}
