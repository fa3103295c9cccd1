// Package handler serves the neutral command surface over RESP.
//
// It works by mimicking redis, listening for packets over TCP that
// complies with REdis Serialization Protocol (RESP), and then parsing
// each command and dispatching it through the vendor-neutral command
// interfaces: the set group rides the synchronous driver, the
// sorted-set group the clustered one.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/redcon"

	"github.com/rebridge-io/rebridge"
)

// Handler provide set of methods to handle incoming connection.
type Handler interface {
	Handle(conn redcon.Conn, cmd redcon.Command)
	Accept(conn redcon.Conn) bool
	Closed(conn redcon.Conn, err error)

	HealthCheck(w http.ResponseWriter, req *http.Request)
}

// Pinger checks that a backing driver can reach its server.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Run creates a new Listener with specified address on TCP network.
// The Listener will then use a Handler to process incoming connection.
func Run(addr string, handler Handler) error {
	return redcon.ListenAndServe(addr, handler.Handle, handler.Accept, handler.Closed)
}

// NewServer returns a new instance of *redcon.Server, using Handler as its
// connection processor. The difference with Run() function is that the server instance
// is not listening to any address yet, making it useful when you want configure the server
// before running it.
func NewServer(addr string, handler Handler) *redcon.Server {
	return redcon.NewServer(addr, handler.Handle, handler.Accept, handler.Closed)
}

// RunInstrumentation creates and run a HTTP server which provides a couple of endpoints:
// - /health to check server and backing driver health
// - /metrics to provide instrumentation metrics
func RunInstrumentation(addr string, handler Handler, errSignal chan error) error {
	if err := view.Register(views...); err != nil {
		return err
	}

	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: "rebridge",
	})
	if err != nil {
		return err
	}

	view.RegisterExporter(pe)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", pe)
		mux.Handle("/health", http.HandlerFunc(handler.HealthCheck))
		if err := http.ListenAndServe(addr, mux); err != nil {
			errSignal <- err
		}
	}()

	return nil
}

// Config holds the settings of the RESP façade itself; the backing
// drivers carry their own.
type Config struct {
	Password string
}

// Backends groups the neutral command implementations the façade
// dispatches to.
type Backends struct {
	Sets  rebridge.SetCommands
	ZSets rebridge.ZSetCommands

	// SyncPinger and AsyncPinger back the health endpoint; either may
	// be nil when the corresponding driver is not wired.
	SyncPinger  Pinger
	AsyncPinger Pinger
}

// commandHandler is an implementation of Handler
type commandHandler struct {
	backends          Backends
	password          string
	authenticatedAddr map[string]bool
	sync.Mutex
}

var (
	noAuthCmd  = []string{"AUTH", "QUIT"}
	errAuthMsg = "NOAUTH Authentication required."
)

// New returns a Handler dispatching RESP commands through the given
// backends.
func New(config Config, backends Backends) Handler {
	return &commandHandler{
		backends:          backends,
		password:          config.Password,
		authenticatedAddr: make(map[string]bool),
	}
}

func (h *commandHandler) Handle(conn redcon.Conn, cmd redcon.Command) {
	startTime := time.Now()
	reqCtx, err := tag.New(context.Background())
	if err != nil {
		log.Warnf("Failed to initialize instrumentation: %v", err)
	}
	defer stats.Record(reqCtx, reqLatencyMs.M(sinceInMs(startTime)))

	log.Trace(logCmd(cmd.Args))

	command := strings.ToUpper(string(cmd.Args[0]))
	if !h.authorizedConn(conn, command) {
		conn.WriteError(errAuthMsg)
		return
	}

	switch command {
	case "PING":
		conn.WriteString("PONG")

	case "QUIT":
		conn.WriteString("OK")
		conn.Close()

	case "AUTH":
		h.handleAuth(conn, cmd.Args)

	default:
		h.dispatch(reqCtx, conn, command, cmd.Args[1:])
	}
}

func (h *commandHandler) Accept(conn redcon.Conn) bool {
	log.Tracef("Accepting connection from %s", conn.RemoteAddr())
	return true
}

func (h *commandHandler) Closed(conn redcon.Conn, err error) {
	log.Tracef("Connection from %s has been closed", conn.RemoteAddr())

	h.Lock()
	h.authenticatedAddr[conn.RemoteAddr()] = false
	h.Unlock()
}

func (h *commandHandler) HealthCheck(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	syncErr := ping(ctx, h.backends.SyncPinger)
	asyncErr := ping(ctx, h.backends.AsyncPinger)

	var status int
	if syncErr != nil || asyncErr != nil {
		status = http.StatusInternalServerError
	} else {
		status = http.StatusOK
	}

	buildDriverReport := func(err error) map[string]string {
		report := make(map[string]string)
		if err != nil {
			report["status"] = "Error"
			report["error"] = err.Error()
		} else {
			report["status"] = "OK"
		}

		return report
	}

	body := map[string]map[string]string{
		"syncDriver":  buildDriverReport(syncErr),
		"asyncDriver": buildDriverReport(asyncErr),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error(err)
	}
}

func ping(ctx context.Context, p Pinger) error {
	if p == nil {
		return nil
	}
	return p.Ping(ctx)
}

func (h *commandHandler) handleAuth(conn redcon.Conn, args [][]byte) {
	if len(args) != 2 {
		conn.WriteError("ERR wrong number of arguments for 'auth' command")
		return
	}

	if h.password == "" {
		conn.WriteError("ERR Client sent AUTH, but no password is set")
		return
	}

	var authenticated bool
	pass := string(args[1])
	if pass == h.password {
		authenticated = true
		conn.WriteString("OK")
	} else {
		conn.WriteError("ERR invalid password")
	}

	h.Lock()
	h.authenticatedAddr[conn.RemoteAddr()] = authenticated
	h.Unlock()
}

func (h *commandHandler) authorizedConn(conn redcon.Conn, cmd string) bool {
	if h.password == "" {
		return true
	}
	for _, allowedCmd := range noAuthCmd {
		if cmd == allowedCmd {
			return true
		}
	}
	return h.authenticatedAddr[conn.RemoteAddr()]
}

func logCmd(cmdArgs [][]byte) []string {
	cmd := make([]string, len(cmdArgs))
	for i, arg := range cmdArgs {
		cmd[i] = string(arg)
	}
	return cmd
}

// writeReplyError maps a neutral error back onto the RESP surface.
func writeReplyError(conn redcon.Conn, err error) {
	switch e := err.(type) {
	case *rebridge.CrossSlotError:
		conn.WriteError("CROSSSLOT Keys in request don't hash to the same slot")
	case *rebridge.ArgError:
		conn.WriteError("ERR " + e.Reason)
	case *rebridge.CommandError:
		conn.WriteError("ERR " + e.Err.Error())
	default:
		if err == rebridge.ErrNil {
			conn.WriteNull()
			return
		}
		conn.WriteError("ERR " + err.Error())
	}
}

func wrongArity(conn redcon.Conn, command string) {
	conn.WriteError("ERR wrong number of arguments for '" + strings.ToLower(command) + "' command")
}

func writeMembers(conn redcon.Conn, members [][]byte) {
	conn.WriteArray(len(members))
	for _, m := range members {
		conn.WriteBulk(m)
	}
}

func writeTuples(conn redcon.Conn, tuples []rebridge.Tuple) {
	conn.WriteArray(len(tuples) * 2)
	for _, t := range tuples {
		conn.WriteBulk(t.Member)
		conn.WriteBulkString(formatScore(t.Score))
	}
}

func writeBool(conn redcon.Conn, v bool) {
	if v {
		conn.WriteInt(1)
	} else {
		conn.WriteInt(0)
	}
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func parseCount(arg []byte) (int64, error) {
	return strconv.ParseInt(string(arg), 10, 64)
}

// parseScoreBound turns the RESP form of a score boundary back into the
// neutral Bound: -inf/+inf unbounded, "(" prefix exclusive.
func parseScoreBound(arg []byte) rebridge.Bound {
	switch {
	case bytes.EqualFold(arg, []byte("-inf")), bytes.EqualFold(arg, []byte("+inf")):
		return rebridge.Unbounded()
	case len(arg) > 0 && arg[0] == '(':
		return rebridge.Excl(arg[1:])
	default:
		return rebridge.Incl(arg)
	}
}

// parseLexBound does the same for lex boundaries: "-"/"+" unbounded,
// "[" inclusive, "(" exclusive.
func parseLexBound(arg []byte) rebridge.Bound {
	switch {
	case bytes.Equal(arg, []byte("-")), bytes.Equal(arg, []byte("+")):
		return rebridge.Unbounded()
	case len(arg) > 0 && arg[0] == '(':
		return rebridge.Excl(arg[1:])
	case len(arg) > 0 && arg[0] == '[':
		return rebridge.Incl(arg[1:])
	default:
		return rebridge.Incl(arg)
	}
}
