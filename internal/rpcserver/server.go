// Package rpcserver implements the JSON-RPC Server component (spec §4.5):
// a line-delimited stdio dispatch loop over the Tool Executor, writing
// every call to the ledger and encrypting sensitive fields when a key is
// configured.
package rpcserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/boshu2/vigilo/internal/crypto"
	"github.com/boshu2/vigilo/internal/event"
	"github.com/boshu2/vigilo/internal/executor"
	"github.com/boshu2/vigilo/internal/ledger"
	"github.com/boshu2/vigilo/internal/vcs"
)

const protocolVersion = "2024-11-05"
const internalErrorCode = -32603

// Server runs the stdio JSON-RPC dispatch loop against a single Tool
// Executor instance, writing every call to a ledger.
type Server struct {
	Exec      *executor.Executor
	Store     *ledger.Store
	Key       *crypto.Key // nil disables field encryption
	ServerTag string      // "native" — the event.Server label
	Tag       string      // spec §4.5: config Tag, falling back to git branch
	SessionID string
	Timeout   time.Duration
	StartDir  string // fallback directory when a call has no path/cwd

	mu       sync.Mutex
	counters counters
}

type counters struct {
	total, reads, writes, execs, errors int
	wallTime                            time.Duration
}

// New constructs a Server with a freshly generated session id.
func New(exec *executor.Executor, store *ledger.Store, key *crypto.Key, serverTag, startDir string, timeout time.Duration) *Server {
	return &Server{
		Exec:      exec,
		Store:     store,
		Key:       key,
		ServerTag: serverTag,
		SessionID: uuid.NewString(),
		Timeout:   timeout,
		StartDir:  startDir,
	}
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcError struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

// Run reads newline-delimited JSON-RPC requests from in and writes
// responses to out until in is exhausted or ctx is cancelled. Blank lines
// and lines that fail to parse are dropped silently (spec §4.5/§7).
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	w := bufio.NewWriter(out)

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Bytes()
		if len(bytesTrim(line)) == 0 {
			continue
		}
		var req rpcRequest
		if err := json.Unmarshal(line, &req); err != nil {
			continue
		}
		resp, emit := s.dispatch(ctx, req)
		if !emit {
			continue
		}
		respBytes, err := json.Marshal(resp)
		if err != nil {
			continue
		}
		w.Write(respBytes)
		w.WriteByte('\n')
		w.Flush()
	}
	s.logSummary()
	return scanner.Err()
}

func bytesTrim(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && isSpaceByte(b[start]) {
		start++
	}
	for end > start && isSpaceByte(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// dispatch routes one request to its handler. The second return reports
// whether a response line should be emitted at all (unknown methods emit
// nothing, per spec §4.5).
func (s *Server) dispatch(ctx context.Context, req rpcRequest) (rpcResponse, bool) {
	switch req.Method {
	case "initialize":
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]any{"name": "vigilo", "version": "0.1.0"},
		}}, true
	case "ping":
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{}}, true
	case "tools/list":
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{"tools": toolSchemas()}}, true
	case "tools/call":
		return s.handleToolsCall(ctx, req), true
	default:
		return rpcResponse{}, false
	}
}

type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (s *Server) handleToolsCall(ctx context.Context, req rpcRequest) rpcResponse {
	var params toolCallParams
	if len(req.Params) > 0 {
		_ = json.Unmarshal(req.Params, &params)
	}
	if params.Arguments == nil {
		params.Arguments = map[string]any{}
	}

	var priorContent string
	hadPrior := false
	if params.Name == "write_file" {
		if path, ok := params.Arguments["path"].(string); ok {
			if data, err := os.ReadFile(path); err == nil {
				priorContent, hadPrior = string(data), true
			}
		}
	}

	result := s.Exec.RunWithTimeout(ctx, params.Name, params.Arguments, s.Timeout)
	risk := event.ClassifyRisk(params.Name)

	var resp rpcResponse
	resp.JSONRPC = "2.0"
	resp.ID = req.ID
	if result.Err != nil {
		resp.Error = &rpcError{Code: internalErrorCode, Message: result.Err.Error()}
	} else {
		resp.Result = map[string]any{
			"content": []map[string]any{{"type": "text", "text": result.Output}},
		}
	}

	dir := effectiveDir(params.Arguments, s.StartDir)
	proj := vcs.Probe(dir)

	diff := ""
	if params.Name == "write_file" && result.Err == nil {
		if !hadPrior {
			diff = event.NewFileSentinel
		} else if content, ok := params.Arguments["content"].(string); ok {
			if d, changed := event.UnifiedDiff(priorContent, content); changed {
				diff = d
			}
		}
	}

	s.recordAndAppend(params.Name, params.Arguments, result, risk, proj, diff)
	return resp
}

// effectiveDir resolves the tool's working directory: arguments.path, then
// arguments.cwd, then the session's initial directory (spec §4.5 step 6).
func effectiveDir(args map[string]any, fallback string) string {
	if p, ok := args["path"].(string); ok && p != "" {
		return p
	}
	if c, ok := args["cwd"].(string); ok && c != "" {
		return c
	}
	return fallback
}

func (s *Server) recordAndAppend(tool string, args map[string]any, result executor.Result, risk event.Risk, proj vcs.Info, diff string) {
	s.mu.Lock()
	s.counters.total++
	switch risk {
	case event.RiskRead:
		s.counters.reads++
	case event.RiskWrite:
		s.counters.writes++
	case event.RiskExec:
		s.counters.execs++
	}
	if result.Err != nil {
		s.counters.errors++
	}
	s.counters.wallTime += result.Duration
	s.mu.Unlock()

	var outcome event.Outcome
	if result.Err != nil {
		outcome = event.Err(internalErrorCode, result.Err.Error())
	} else {
		resultJSON, err := s.encodeResult(result.Output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[vigilo] encrypting result: %v\n", err)
			return
		}
		outcome = event.Outcome{Status: "ok", Result: resultJSON}
	}

	argsJSON, err := s.encodeArguments(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[vigilo] encrypting arguments: %v\n", err)
		return
	}

	encDiff := diff
	if diff != "" && diff != event.NewFileSentinel && s.Key != nil {
		encDiff, err = crypto.Encrypt(s.Key, diff)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[vigilo] encrypting diff: %v\n", err)
			return
		}
	}

	e := &event.Event{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		SessionID:  s.SessionID,
		Server:     s.ServerTag,
		Tool:       tool,
		Arguments:  argsJSON,
		Outcome:    outcome,
		DurationUs: uint64(result.Duration.Microseconds()),
		Risk:       risk,
		Project: event.Project{
			Root:   proj.Root,
			Name:   proj.Name,
			Branch: proj.Branch,
			Commit: proj.Commit,
			Dirty:  proj.Dirty,
		},
		Tag:      s.Tag,
		Diff:     encDiff,
		TimedOut: result.TimedOut,
	}

	if err := s.Store.Append(e); err != nil {
		fmt.Fprintf(os.Stderr, "[vigilo] ledger append failed: %v\n", err)
	}
}

// encodeArguments marshals the call arguments, encrypting the whole
// serialized object as a single field when a key is configured (spec
// §4.2 envelope policy: arguments, ok.result, and diff are each
// individually encrypted).
func (s *Server) encodeArguments(args map[string]any) (json.RawMessage, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	if s.Key == nil {
		return raw, nil
	}
	enc, err := crypto.Encrypt(s.Key, string(raw))
	if err != nil {
		return nil, err
	}
	return json.Marshal(enc)
}

func (s *Server) encodeResult(output string) (json.RawMessage, error) {
	if s.Key == nil {
		return json.Marshal(output)
	}
	enc, err := crypto.Encrypt(s.Key, output)
	if err != nil {
		return nil, err
	}
	return json.Marshal(enc)
}

// logSummary writes the per-session counters to stderr on exit (spec
// §4.5: "Counters are maintained per session ... and emitted to stderr
// on exit").
func (s *Server) logSummary() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[vigilo] session %s: %d calls (%d read, %d write, %d exec, %d errors) in %s\n",
		s.SessionID, s.counters.total, s.counters.reads, s.counters.writes, s.counters.execs,
		s.counters.errors, s.counters.wallTime)
}
