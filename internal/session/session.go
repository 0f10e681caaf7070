package session

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"planetwars-server/internal/galaxy"
	"planetwars-server/internal/player"
	"planetwars-server/internal/protocol"
	"planetwars-server/internal/shared/errors"
)

const (
	maxLineBytes = 1 << 20

	// outboxTurns is how many encoded turns may wait for an agent that has
	// stopped reading before it is disconnected
	outboxTurns = 8
)

// Session owns the two streams of one agent. A reader goroutine turns
// the agent's output into lines; Collect consumes them one turn at a
// time. A writer goroutine drains the outbox into the agent's input so a
// stuck agent never blocks the caller. Collect and SendTurn must not run
// concurrently with each other.
type Session struct {
	PlayerID galaxy.PlayerID
	Name     string

	cmd   *exec.Cmd
	stdin io.WriteCloser

	outbox      chan []byte
	writeErr    error
	writeFailed chan struct{}

	lines   chan string
	readErr error
	closed  chan struct{}
	once    sync.Once

	disconnected bool
	// owed counts terminators still expected from turns that were forfeited
	owed int

	logger *slog.Logger
}

// Start launches the agent command and attaches a session to its pipes.
// The agent's stderr is passed through to ours.
func Start(ctx context.Context, id galaxy.PlayerID, name string, command []string, logger *slog.Logger) (*Session, error) {
	if len(command) == 0 {
		return nil, errors.Validationf("player %d has no command", id)
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.WrapInternal("failed to open agent stdin", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.WrapInternal("failed to open agent stdout", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.WrapInternal(fmt.Sprintf("failed to start agent %q", command[0]), err)
	}

	s := New(id, name, stdout, stdin, logger)
	s.cmd = cmd
	s.logger.Info("Agent started", "pid", cmd.Process.Pid, "command", command)

	return s, nil
}

// New attaches a session to an already connected pair of streams
func New(id galaxy.PlayerID, name string, r io.Reader, w io.WriteCloser, logger *slog.Logger) *Session {
	s := &Session{
		PlayerID:    id,
		Name:        name,
		stdin:       w,
		outbox:      make(chan []byte, outboxTurns),
		writeFailed: make(chan struct{}),
		lines:       make(chan string, 64),
		closed:      make(chan struct{}),
		logger:      logger.With("component", "session", "player_id", id, "player", name),
	}
	go s.readLoop(r)
	go s.writeLoop()
	return s
}

func (s *Session) writeLoop() {
	for {
		select {
		case <-s.closed:
			return
		case turn := <-s.outbox:
			if _, err := s.stdin.Write(turn); err != nil {
				s.writeErr = err
				close(s.writeFailed)
				return
			}
		}
	}
}

func (s *Session) readLoop(r io.Reader) {
	defer close(s.lines)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for scanner.Scan() {
		select {
		case s.lines <- scanner.Text():
		case <-s.closed:
			return
		}
	}
	s.readErr = scanner.Err()
}

func (s *Session) Disconnected() bool {
	return s.disconnected
}

// SendTurn queues the galaxy for the agent and returns without waiting
// for the write. A failed earlier write, or an outbox still full of
// unread turns, disconnects the session.
func (s *Session) SendTurn(planets []*galaxy.Planet, message *int) error {
	if s.disconnected {
		return errors.SessionDisconnected("session already disconnected", nil)
	}

	select {
	case <-s.writeFailed:
		s.disconnected = true
		return errors.SessionDisconnected("failed to write turn", s.writeErr)
	default:
	}

	var buf bytes.Buffer
	if err := protocol.WriteTurn(bufio.NewWriter(&buf), planets, message, s.PlayerID); err != nil {
		return errors.WrapInternal("failed to encode turn", err)
	}

	select {
	case s.outbox <- buf.Bytes():
		return nil
	default:
		s.disconnected = true
		s.logger.Warn("Agent is not reading its input", "queued_turns", outboxTurns)
		return errors.SessionDisconnected(fmt.Sprintf("agent left %d turns unread", outboxTurns), nil)
	}
}

// Collect reads lines until the agent terminates its response. Malformed
// lines are skipped. When ctx ends first the partial response is thrown
// away and the terminator of that turn will be discarded later.
func (s *Session) Collect(ctx context.Context) (*player.Response, error) {
	if s.disconnected {
		return player.NewResponse(), errors.SessionDisconnected("session already disconnected", nil)
	}

	resp := player.NewResponse()
	for {
		select {
		case <-ctx.Done():
			s.owed++
			return player.NewResponse(), ctx.Err()

		case line, ok := <-s.lines:
			if !ok {
				s.disconnected = true
				err := s.readErr
				if err == nil {
					err = io.EOF
				}
				return player.NewResponse(), errors.SessionDisconnected("agent output closed", err)
			}

			parsed, err := protocol.ParseAgentLine(line)
			if err != nil {
				s.logger.Debug("Skipping malformed line", "line", line, "error", err)
				continue
			}

			if s.owed > 0 {
				if parsed.Kind == protocol.KindTerminator {
					s.owed--
					s.logger.Debug("Discarded late response", "still_owed", s.owed)
				}
				continue
			}

			resp.Add(parsed)
			if resp.Finished {
				return resp, nil
			}
		}
	}
}

// Close releases the streams and kills the agent process if there is one
func (s *Session) Close() error {
	var closeErr error
	s.once.Do(func() {
		close(s.closed)
		if err := s.stdin.Close(); err != nil {
			closeErr = err
		}
		if s.cmd == nil || s.cmd.Process == nil {
			return
		}
		if err := s.cmd.Process.Kill(); err != nil && err != os.ErrProcessDone {
			s.logger.Warn("Failed to kill agent", "error", err)
		}
		// Wait reports the kill signal as an error; only the reaping matters here
		_ = s.cmd.Wait()
	})
	return closeErr
}
