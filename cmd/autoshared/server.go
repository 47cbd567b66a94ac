package main

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/app"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/indexer"
	"github.com/iov-one/autoshare/x/admin"
	"github.com/iov-one/autoshare/x/auth"
	"github.com/iov-one/autoshare/x/cash"
	"github.com/iov-one/autoshare/x/distribution"
	"github.com/iov-one/autoshare/x/group"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	maxTxSize         = 64 << 10
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// Server exposes the ledger over HTTP. Reads use the last committed state.
type Server struct {
	ledger  *app.Ledger
	decoder *app.TxDecoder
	bank    cash.Controller
	index   *indexer.Indexer
	logger  log.Logger
	debug   bool
	now     func() time.Time
	router  chi.Router
}

// NewServer builds the HTTP API. The index is optional, without it the
// events endpoint is not served.
func NewServer(
	ledger *app.Ledger,
	application *Application,
	index *indexer.Indexer,
	gatherer prometheus.Gatherer,
	logger log.Logger,
	debug bool,
) *Server {
	s := &Server{
		ledger:  ledger,
		decoder: application.Decoder,
		bank:    application.Bank,
		index:   index,
		logger:  logger.With("module", "http"),
		debug:   debug,
		now:     time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/status", s.handleStatus)
	r.Post("/tx", s.handleTx)
	r.Post("/tx/check", s.handleCheckTx)

	r.Route("/groups", func(r chi.Router) {
		r.Get("/", s.handleGroups)
		r.Get("/{id}", s.handleGroup)
		r.Get("/{id}/members", s.handleMembers)
		r.Get("/{id}/members/{addr}", s.handleIsMember)
		r.Get("/{id}/payments", s.handleGroupPayments)
		r.Get("/{id}/distributions", s.handleGroupDistributions)
	})
	r.Get("/creators/{addr}/groups", s.handleCreatorGroups)
	r.Get("/users/{addr}/payments", s.handleUserPayments)
	r.Get("/members/{addr}/distributions", s.handleMemberDistributions)
	r.Get("/accounts/{addr}/sequence", s.handleSequence)
	r.Get("/accounts/{addr}/balance/{ticker}", s.handleBalance)

	r.Get("/admin", s.handleAdmin)
	r.Get("/tokens", s.handleTokens)
	r.Get("/tokens/{ticker}/balance", s.handleContractBalance)

	if index != nil {
		r.Get("/events", s.handleEvents)
	}
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	latest := s.ledger.LatestCommit()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"chain_id": s.ledger.ChainID(),
		"height":   latest.Version,
		"hash":     latest.Hash,
	})
}

func (s *Server) readTx(w http.ResponseWriter, r *http.Request) (*app.Tx, error) {
	raw, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxTxSize))
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return s.decoder.Decode(raw)
}

// handleTx delivers the transaction in its own block.
func (s *Server) handleTx(w http.ResponseWriter, r *http.Request) {
	tx, err := s.readTx(w, r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	res, id, err := s.ledger.Apply(tx, s.now())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"height": id.Version,
		"hash":   id.Hash,
		"data":   res.Data,
		"log":    res.Log,
		"events": res.Events,
	})
}

func (s *Server) handleCheckTx(w http.ResponseWriter, r *http.Request) {
	tx, err := s.readTx(w, r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	res, err := s.ledger.Check(tx)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"log": res.Log})
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := group.All(s.ledger.ReadStore())
	s.respond(w, groups, err)
}

func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	id, err := group.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	g, err := group.Get(s.ledger.ReadStore(), id)
	s.respond(w, g, err)
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	id, err := group.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	members, err := group.Members(s.ledger.ReadStore(), id)
	s.respond(w, members, err)
}

func (s *Server) handleIsMember(w http.ResponseWriter, r *http.Request) {
	id, err := group.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	addr, err := autoshare.ParseAddress(chi.URLParam(r, "addr"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	ok, err := group.IsMember(s.ledger.ReadStore(), id, addr)
	s.respond(w, map[string]bool{"member": ok}, err)
}

func (s *Server) handleGroupPayments(w http.ResponseWriter, r *http.Request) {
	id, err := group.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	payments, err := group.PaymentsByGroup(s.ledger.ReadStore(), id)
	s.respond(w, payments, err)
}

func (s *Server) handleGroupDistributions(w http.ResponseWriter, r *http.Request) {
	id, err := group.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	records, err := distribution.ByGroup(s.ledger.ReadStore(), id)
	s.respond(w, records, err)
}

func (s *Server) handleCreatorGroups(w http.ResponseWriter, r *http.Request) {
	addr, err := autoshare.ParseAddress(chi.URLParam(r, "addr"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	groups, err := group.ByCreator(s.ledger.ReadStore(), addr)
	s.respond(w, groups, err)
}

func (s *Server) handleUserPayments(w http.ResponseWriter, r *http.Request) {
	addr, err := autoshare.ParseAddress(chi.URLParam(r, "addr"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	payments, err := group.PaymentsByUser(s.ledger.ReadStore(), addr)
	s.respond(w, payments, err)
}

func (s *Server) handleMemberDistributions(w http.ResponseWriter, r *http.Request) {
	addr, err := autoshare.ParseAddress(chi.URLParam(r, "addr"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	records, err := distribution.ByMember(s.ledger.ReadStore(), addr)
	s.respond(w, records, err)
}

func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	addr, err := autoshare.ParseAddress(chi.URLParam(r, "addr"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	seq, err := auth.NextSequence(s.ledger.ReadStore(), addr)
	s.respond(w, map[string]int64{"sequence": seq}, err)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := autoshare.ParseAddress(chi.URLParam(r, "addr"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	balance, err := s.bank.Balance(s.ledger.ReadStore(), addr, chi.URLParam(r, "ticker"))
	s.respond(w, balance, err)
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	db := s.ledger.ReadStore()
	addr, err := admin.Admin(db)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	paused, err := admin.IsPaused(db)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	fee, err := admin.UsageFee(db)
	s.respond(w, map[string]interface{}{
		"admin":     addr,
		"paused":    paused,
		"usage_fee": fee,
	}, err)
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := admin.SupportedTokens(s.ledger.ReadStore())
	s.respond(w, tokens, err)
}

func (s *Server) handleContractBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := admin.ContractBalance(s.ledger.ReadStore(), s.bank, chi.URLParam(r, "ticker"))
	s.respond(w, balance, err)
}

// handleEvents serves the latest indexed events. Supported query
// parameters are kind, topic and limit.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxEventLimit {
			s.writeErr(w, errors.Wrapf(errors.ErrInput, "limit must be between 1 and %d", maxEventLimit))
			return
		}
		limit = n
	}
	var (
		records []indexer.Record
		err     error
	)
	if topic := r.URL.Query().Get("topic"); topic != "" {
		records, err = s.index.ByTopic(r.Context(), topic, limit)
	} else {
		records, err = s.index.Recent(r.Context(), r.URL.Query().Get("kind"), limit)
	}
	s.respond(w, records, err)
}

func (s *Server) respond(w http.ResponseWriter, payload interface{}, err error) {
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	code, msg := errors.Info(err, s.debug)
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, map[string]interface{}{
		"code":  code,
		"error": msg,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("cannot write response", "err", err)
	}
}

func httpStatus(err error) int {
	switch {
	case errors.ErrNotFound.Is(err):
		return http.StatusNotFound
	case errors.ErrUnauthorized.Is(err),
		auth.ErrMissingSignature.Is(err),
		auth.ErrInvalidSignature.Is(err):
		return http.StatusUnauthorized
	case auth.ErrInvalidSequence.Is(err),
		errors.ErrDuplicate.Is(err):
		return http.StatusConflict
	case errors.ErrPanic.Is(err),
		errors.ErrDatabase.Is(err),
		errors.ErrHuman.Is(err):
		return http.StatusInternalServerError
	}
	if code, _ := errors.Info(err, false); code == 1 {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}
