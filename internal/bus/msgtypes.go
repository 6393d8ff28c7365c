package bus

// MessageType identifies a bus message's payload shape. Numeric values are
// an external ecosystem contract normally fixed by the message director's
// own message-type registry; that registry file was not part of the
// retrieved reference material, so the values below are this
// implementation's own internally-consistent assignment rather than a
// verbatim reproduction of the upstream numbering. Symbol names mirror
// those observed in the reference test suite.
type MessageType uint16

const (
	// Control messages, issued by the Range Subscriber at startup.
	MsgControlAddChannel MessageType = iota + 9000
	MsgControlRemoveChannel
	MsgControlAddRange
	MsgControlRemoveRange

	// State-server-facing messages, received from or sent to the bus at large.
	MsgDBSSObjectActivateWithDefaults
	MsgDBSSObjectActivateWithDefaultsOther
	MsgStateServerObjectGetAll
	MsgStateServerObjectGetAllResp
	MsgStateServerObjectGetField
	MsgStateServerObjectGetFieldResp
	MsgStateServerObjectGetFields
	MsgStateServerObjectGetFieldsResp
	MsgStateServerObjectSetField
	MsgStateServerObjectSetFields
	MsgStateServerObjectDeleteRam
	MsgDBSSObjectDeleteDisk
	MsgStateServerObjectEnterLocationWithRequired
	MsgStateServerObjectEnterLocationWithRequiredOther

	// Database-facing messages, exchanged with the configured database channel.
	MsgDBServerObjectGetAll
	MsgDBServerObjectGetAllResp
	MsgDBServerObjectGetField
	MsgDBServerObjectGetFieldResp
	MsgDBServerObjectGetFields
	MsgDBServerObjectGetFieldsResp
	MsgDBServerObjectSetField
	MsgDBServerObjectSetFields
	MsgDBServerObjectDelete
)

var messageTypeNames = map[MessageType]string{
	MsgControlAddChannel:                              "CONTROL_ADD_CHANNEL",
	MsgControlRemoveChannel:                            "CONTROL_REMOVE_CHANNEL",
	MsgControlAddRange:                                 "CONTROL_ADD_RANGE",
	MsgControlRemoveRange:                              "CONTROL_REMOVE_RANGE",
	MsgDBSSObjectActivateWithDefaults:                  "DBSS_OBJECT_ACTIVATE_WITH_DEFAULTS",
	MsgDBSSObjectActivateWithDefaultsOther:             "DBSS_OBJECT_ACTIVATE_WITH_DEFAULTS_OTHER",
	MsgStateServerObjectGetAll:                         "STATESERVER_OBJECT_GET_ALL",
	MsgStateServerObjectGetAllResp:                     "STATESERVER_OBJECT_GET_ALL_RESP",
	MsgStateServerObjectGetField:                       "STATESERVER_OBJECT_GET_FIELD",
	MsgStateServerObjectGetFieldResp:                   "STATESERVER_OBJECT_GET_FIELD_RESP",
	MsgStateServerObjectGetFields:                      "STATESERVER_OBJECT_GET_FIELDS",
	MsgStateServerObjectGetFieldsResp:                  "STATESERVER_OBJECT_GET_FIELDS_RESP",
	MsgStateServerObjectSetField:                       "STATESERVER_OBJECT_SET_FIELD",
	MsgStateServerObjectSetFields:                      "STATESERVER_OBJECT_SET_FIELDS",
	MsgStateServerObjectDeleteRam:                      "STATESERVER_OBJECT_DELETE_RAM",
	MsgDBSSObjectDeleteDisk:                            "DBSS_OBJECT_DELETE_DISK",
	MsgStateServerObjectEnterLocationWithRequired:      "STATESERVER_OBJECT_ENTER_LOCATION_WITH_REQUIRED",
	MsgStateServerObjectEnterLocationWithRequiredOther: "STATESERVER_OBJECT_ENTER_LOCATION_WITH_REQUIRED_OTHER",
	MsgDBServerObjectGetAll:                            "DBSERVER_OBJECT_GET_ALL",
	MsgDBServerObjectGetAllResp:                        "DBSERVER_OBJECT_GET_ALL_RESP",
	MsgDBServerObjectGetField:                          "DBSERVER_OBJECT_GET_FIELD",
	MsgDBServerObjectGetFieldResp:                      "DBSERVER_OBJECT_GET_FIELD_RESP",
	MsgDBServerObjectGetFields:                         "DBSERVER_OBJECT_GET_FIELDS",
	MsgDBServerObjectGetFieldsResp:                     "DBSERVER_OBJECT_GET_FIELDS_RESP",
	MsgDBServerObjectSetField:                          "DBSERVER_OBJECT_SET_FIELD",
	MsgDBServerObjectSetFields:                         "DBSERVER_OBJECT_SET_FIELDS",
	MsgDBServerObjectDelete:                            "DBSERVER_OBJECT_DELETE",
}

// String implements fmt.Stringer for log output.
func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// DBStatus is the single-byte status code on database response messages.
type DBStatus uint8

const (
	DBStatusSuccess DBStatus = 0
	DBStatusFailure DBStatus = 1
)

func (s DBStatus) String() string {
	if s == DBStatusSuccess {
		return "SUCCESS"
	}
	return "FAILURE"
}
