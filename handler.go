package autoshare

import (
	"encoding/json"
)

// Handler is a core engine that can process a few specific messages
// This could represent "create a group", or "distribute a payment"
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler to verify the validity of a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer is a subset of Handler to execute a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator wraps a Handler to provide common functionality
// like authentication, or logging, to many Handlers
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry is an interface to register your handler,
// the setup side of a Router
type Registry interface {
	Handle(path string, h Handler)
}

// Options are the app options
// Each extension can look up it's key and parse the json as desired
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	return json.Unmarshal(msg, obj)
}

// Initializer implementations are used to initialize
// extensions from genesis file contents
type Initializer interface {
	FromGenesis(Options, KVStore) error
}

// CheckResult captures any non-error results of a Check call
type CheckResult struct {
	// Log is human-readable informational string
	Log string
}

// DeliverResult captures any non-error results of a Deliver call
type DeliverResult struct {
	// Data is a machine-parseable return value, like the id of a new
	// record
	Data []byte
	// Log is human-readable informational string
	Log string
	// Events are published once the call is committed.
	Events []Event
}

// Event is a notification about a state change. Events of failed calls are
// never published.
type Event struct {
	// Kind names the state change, for example group_created.
	Kind string `json:"kind"`
	// Topics are the identities the event is about, in a human readable
	// form. Indexers use them for lookups.
	Topics []string `json:"topics"`
	// Payload is the event body. It must be JSON serializable.
	Payload interface{} `json:"payload"`
}

// NewEvent returns an event of given kind.
func NewEvent(kind string, payload interface{}, topics ...string) Event {
	return Event{Kind: kind, Topics: topics, Payload: payload}
}

// EventSink receives the events of every committed call. Publishing is fire
// and forget, a sink must not fail the call that emitted the events.
type EventSink interface {
	Publish(ctx Context, events []Event)
}
