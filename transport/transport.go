// Package transport owns the adapter child process and the framed DAP
// byte stream over its stdio (spec.md §4.1, §5, §6.2). Framing itself
// (Content-Length header, exact-length body) is go-dap's
// ReadProtocolMessage/WriteProtocolMessage — the same codec every DAP
// implementation in the retrieved pack builds on. What this package adds is
// the poll/read-once split spec.md §4.1 requires, the adapter process
// lifecycle, and out-of-band stderr logging (§6.2).
package transport

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	dap "github.com/google/go-dap"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/kory-oss/dap-core/internal/dlog"
)

// ErrProtocolFraming wraps any error surfaced while parsing a frame: a
// missing Content-Length header, a short body, or malformed JSON. Per
// spec.md §4.1 this is the adapter violating the wire contract.
var ErrProtocolFraming = errors.New("transport: protocol framing error")

// ErrClosed names the torn-down state of a transport (the adapter died or
// Close was called). ReadOne and Write do not return it: after Close they
// report the underlying read or write error instead.
var ErrClosed = errors.New("transport: closed")

// Transport owns one adapter child process's stdio.
type Transport struct {
	cmd *exec.Cmd
	w   *bufio.Writer
	wmu sync.Mutex

	messages chan dap.Message
	errs     chan error

	pending    dap.Message
	hasPending bool

	log *slog.Logger

	closeOnce sync.Once
	closed    chan struct{}

	eg     *errgroup.Group
	egOnce sync.Once
}

// Spawn launches argv[0] with argv[1:] as arguments and cwd as its working
// directory, wiring its stdio as pipes (spec.md §6.2: "No environment
// modifications beyond what the launch config supplies" — Spawn never
// touches cmd.Env). Stderr lines are logged out-of-band at Warn level.
func Spawn(ctx context.Context, argv []string, cwd string, log *slog.Logger) (*Transport, error) {
	if len(argv) == 0 {
		return nil, errors.New("transport: empty adapter argv")
	}
	log = dlog.Or(log)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = cwd

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "transport: stdin pipe")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "transport: stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrap(err, "transport: stderr pipe")
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "transport: spawn adapter")
	}

	t := &Transport{
		cmd:      cmd,
		w:        bufio.NewWriter(stdin),
		messages: make(chan dap.Message, 16),
		errs:     make(chan error, 1),
		log:      log,
		closed:   make(chan struct{}),
	}

	eg, _ := errgroup.WithContext(ctx)
	t.eg = eg
	eg.Go(func() error { return t.readLoop(stdout) })
	eg.Go(func() error { return t.stderrLoop(stderr) })

	return t, nil
}

func (t *Transport) readLoop(stdout io.Reader) error {
	r := bufio.NewReader(stdout)
	for {
		msg, err := dap.ReadProtocolMessage(r)
		if err != nil {
			if err == io.EOF {
				t.errs <- io.EOF
				return nil
			}
			t.errs <- errors.Wrap(ErrProtocolFraming, err.Error())
			return nil
		}
		select {
		case t.messages <- msg:
		case <-t.closed:
			return nil
		}
	}
}

func (t *Transport) stderrLoop(stderr io.Reader) error {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		t.log.Warn("adapter stderr", slog.String("line", scanner.Text()))
	}
	return nil
}

// Poll reports whether a full frame is available within timeout, without
// consuming it — a subsequent ReadOne returns that same frame immediately.
// This is the non-blocking half of spec.md §5's "non-blocking poll plus a
// blocking read-once after poll indicates readiness".
func (t *Transport) Poll(timeout time.Duration) (bool, error) {
	if t.hasPending {
		return true, nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case msg, ok := <-t.messages:
		if !ok {
			return false, t.drainErr()
		}
		t.pending = msg
		t.hasPending = true
		return true, nil
	case err := <-t.errs:
		return false, t.classify(err)
	case <-timer.C:
		return false, nil
	}
}

// ReadOne reads exactly one frame, blocking if necessary. If Poll already
// reported readiness, the buffered frame is returned immediately.
func (t *Transport) ReadOne() (dap.Message, error) {
	if t.hasPending {
		t.hasPending = false
		msg := t.pending
		t.pending = nil
		return msg, nil
	}
	select {
	case msg, ok := <-t.messages:
		if !ok {
			return nil, t.drainErr()
		}
		return msg, nil
	case err := <-t.errs:
		return nil, t.classify(err)
	}
}

func (t *Transport) classify(err error) error {
	if err == io.EOF {
		return io.EOF
	}
	return err
}

func (t *Transport) drainErr() error {
	select {
	case err := <-t.errs:
		return t.classify(err)
	default:
		return io.EOF
	}
}

// Write serializes msg and writes a complete frame. A write failure
// (commonly a broken pipe once the adapter has exited) is returned either
// as the flush reported it or wrapped with pkg/errors; both forms keep the
// cause reachable with errors.Is against a syscall error.
func (t *Transport) Write(msg dap.Message) error {
	t.wmu.Lock()
	defer t.wmu.Unlock()
	if err := dap.WriteProtocolMessage(t.w, msg); err != nil {
		return errors.Wrap(err, "transport: write frame")
	}
	return t.w.Flush()
}

// Close terminates the adapter child process and releases the reader
// goroutines. Safe to call more than once.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closed)
		if t.cmd != nil && t.cmd.Process != nil {
			if killErr := t.cmd.Process.Kill(); killErr != nil {
				t.log.Debug("adapter process kill failed (likely already exited)", slog.Any("err", killErr))
			}
			_ = t.cmd.Wait()
		}
		err = t.eg.Wait()
	})
	return err
}

// Stdio is a convenience used by tests to assemble a Transport over an
// in-memory pipe pair instead of a real child process.
func Stdio(ctx context.Context, in io.Reader, out io.Writer, log *slog.Logger) *Transport {
	log = dlog.Or(log)
	t := &Transport{
		w:        bufio.NewWriter(out),
		messages: make(chan dap.Message, 16),
		errs:     make(chan error, 1),
		log:      log,
		closed:   make(chan struct{}),
	}
	eg, _ := errgroup.WithContext(ctx)
	t.eg = eg
	eg.Go(func() error { return t.readLoop(in) })
	// Closing the reader on Close unblocks readLoop, so Close can wait for it.
	if rc, ok := in.(io.Closer); ok {
		go func() {
			<-t.closed
			_ = rc.Close()
		}()
	}
	return t
}
