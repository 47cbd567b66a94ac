package app

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
)

var isRoute = regexp.MustCompile(`^[a-zA-Z0-9_/]+$`).MatchString

// Router dispatches a transaction to the handler registered for the path of
// its message.
type Router struct {
	routes map[string]autoshare.Handler
}

var _ autoshare.Registry = (*Router)(nil)
var _ autoshare.Handler = (*Router)(nil)

// NewRouter returns a router without any routes.
func NewRouter() *Router {
	return &Router{routes: make(map[string]autoshare.Handler)}
}

// Handle registers h for path. It panics on an invalid or an already taken
// path, both are programming errors.
func (r *Router) Handle(path string, h autoshare.Handler) {
	if !isRoute(path) {
		panic(fmt.Sprintf("invalid route %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("route %q already registered", path))
	}
	r.routes[path] = h
}

// Handler returns the handler registered for path. For an unknown path a
// handler that always fails with ErrNoSuchPath is returned.
func (r *Router) Handler(path string) autoshare.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return noSuchPathHandler(path)
}

// Paths returns all registered paths in lexicographical order.
func (r *Router) Paths() []string {
	paths := make([]string, 0, len(r.routes))
	for p := range r.routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Check dispatches to the Check of the registered handler.
func (r *Router) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	path, err := msgPath(tx)
	if err != nil {
		return nil, err
	}
	return r.Handler(path).Check(ctx, db, tx)
}

// Deliver dispatches to the Deliver of the registered handler.
func (r *Router) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	path, err := msgPath(tx)
	if err != nil {
		return nil, err
	}
	return r.Handler(path).Deliver(ctx, db, tx)
}

func msgPath(tx autoshare.Tx) (string, error) {
	if tx == nil {
		return "", errors.Wrap(errors.ErrInput, "missing transaction")
	}
	msg, err := tx.GetMsg()
	if err != nil {
		return "", errors.Wrap(err, "cannot get transaction message")
	}
	if msg == nil {
		return "", errors.Wrap(errors.ErrMsg, "empty message")
	}
	return msg.Path(), nil
}

type noSuchPathHandler string

func (path noSuchPathHandler) Check(autoshare.Context, autoshare.KVStore, autoshare.Tx) (*autoshare.CheckResult, error) {
	return nil, errors.Wrap(ErrNoSuchPath, string(path))
}

func (path noSuchPathHandler) Deliver(autoshare.Context, autoshare.KVStore, autoshare.Tx) (*autoshare.DeliverResult, error) {
	return nil, errors.Wrap(ErrNoSuchPath, string(path))
}
