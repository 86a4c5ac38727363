package recorder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Zuo-Peng/sensor-logger/internal/index"
	"github.com/Zuo-Peng/sensor-logger/internal/parse"
)

// errorBackoff is the pause after a failed read before reading again.
var errorBackoff = 100 * time.Millisecond

// Catalog receives session lifecycle events. *index.DB implements it.
type Catalog interface {
	BeginSession(s index.SessionRow) error
	EndSession(dataRoot, sessionKey string, rows int, endedAt time.Time, status string) error
}

type Options struct {
	DataRoot string // collected_data
	Movement string // base name and sub directory
	Header   string
	Sentinel string
	Retries  int // collision re-rolls per session

	// ReadTimeout is the connection's read timeout. A timeout reported much
	// sooner than this means the device is gone, and reading backs off.
	ReadTimeout time.Duration

	Echo    io.Writer // data rows are echoed here; nil discards
	Log     zerolog.Logger
	Catalog Catalog         // optional
	Intn    func(n int) int // optional, for file ids
}

// Recorder owns the connection and the active session file. It is not safe
// for concurrent use.
type Recorder struct {
	conn  io.Reader
	opts  Options
	namer Namer
	log   zerolog.Logger
	runID string

	br       *bufio.Reader
	pending  []byte
	sessions int
	idle     bool // warned about a silent device
}

func New(conn io.Reader, opts Options) *Recorder {
	if opts.Echo == nil {
		opts.Echo = io.Discard
	}
	runID := uuid.NewString()
	return &Recorder{
		conn: conn,
		opts: opts,
		namer: Namer{
			Dir:     movementDir(opts),
			Base:    opts.Movement,
			Retries: opts.Retries,
			Intn:    opts.Intn,
		},
		log:   opts.Log.With().Str("run_id", runID).Logger(),
		runID: runID,
		br:    bufio.NewReader(conn),
	}
}

func movementDir(opts Options) string {
	return filepath.Join(opts.DataRoot, opts.Movement)
}

func (r *Recorder) RunID() string {
	return r.runID
}

// Sessions is the number of session files opened so far.
func (r *Recorder) Sessions() int {
	return r.sessions
}

// Opener opens the connection to the device.
type Opener func() (io.ReadCloser, error)

// Start opens the connection, records until ctx is cancelled or a fatal
// error occurs, and closes the connection exactly once on the way out.
// Nothing is written to disk when the connection cannot be opened.
func Start(ctx context.Context, open Opener, opts Options) (err error) {
	conn, err := open()
	if err != nil {
		return fmt.Errorf("open serial port: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			opts.Log.Warn().Err(cerr).Msg("close serial port")
			return
		}
		opts.Log.Info().Msg("Serial port closed.")
	}()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("recorder panic: %v", p)
		}
	}()

	return New(conn, opts).Run(ctx)
}

// Run rotates through sessions until ctx is cancelled or a fatal error
// occurs. It returns ctx.Err() on cancellation.
func (r *Recorder) Run(ctx context.Context) error {
	if err := os.MkdirAll(r.namer.Dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		sess, err := r.openSession()
		if err != nil {
			return err
		}

		err = r.consume(ctx, sess)
		status := index.StatusComplete
		if err != nil {
			status = index.StatusInterrupted
		}
		r.closeSession(sess, status)
		if err != nil {
			return err
		}
	}
}

func (r *Recorder) openSession() (*Session, error) {
	path, id := r.namer.Next()
	sess, err := createSession(path, id, r.opts.Header)
	if err != nil {
		return nil, err
	}
	sess.Key = parse.SessionKey(r.opts.DataRoot, path)
	r.sessions++

	r.log.Info().
		Str("file", path).
		Int("file_counter", r.sessions).
		Msgf("Saving serial data to %s. Press Ctrl+C to stop.", path)

	if r.opts.Catalog != nil {
		err := r.opts.Catalog.BeginSession(index.SessionRow{
			DataRoot:   r.catalogRoot(),
			SessionKey: sess.Key,
			Movement:   r.opts.Movement,
			FileID:     id,
			FilePath:   path,
			RunID:      r.runID,
			StartedAt:  index.FormatTime(sess.StartedAt),
		})
		if err != nil {
			r.log.Warn().Err(err).Msg("catalog")
		}
	}
	return sess, nil
}

func (r *Recorder) closeSession(sess *Session, status string) {
	if err := sess.Close(); err != nil {
		r.log.Error().Err(err).Str("file", sess.Path).Msg("close session file")
	}
	r.log.Info().Str("file", sess.Path).Int("rows", sess.Rows()).Str("status", status).Msg("File Closed")

	if r.opts.Catalog != nil {
		if err := r.opts.Catalog.EndSession(r.catalogRoot(), sess.Key, sess.Rows(), time.Now(), status); err != nil {
			r.log.Warn().Err(err).Msg("catalog")
		}
	}
}

// catalogRoot is the data root the way the indexer stores it.
func (r *Recorder) catalogRoot() string {
	return filepath.Clean(r.opts.DataRoot)
}

// consume reads lines into sess. It returns nil when the sentinel arrives.
func (r *Recorder) consume(ctx context.Context, sess *Session) error {
	for {
		start := time.Now()
		raw, err := r.readLine()
		switch {
		case err == nil:
			r.idle = false
			if r.handleLine(sess, raw) {
				return nil
			}
		case isTimeout(err):
			if r.opts.ReadTimeout > 0 && time.Since(start) < r.opts.ReadTimeout/2 {
				if !r.idle {
					r.log.Warn().Msg("Serial port returns no data without waiting; is the device connected?")
					r.idle = true
				}
				sleep(ctx, errorBackoff)
			}
		case errors.Is(err, os.ErrClosed):
			return fmt.Errorf("read serial: %w", err)
		default:
			r.log.Error().Err(err).Msg("Error reading serial data")
			sleep(ctx, errorBackoff)
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// handleLine writes a data row and reports whether raw ended the session.
func (r *Recorder) handleLine(sess *Session, raw []byte) bool {
	if !utf8.Valid(raw) {
		r.log.Error().Err(errInvalidUTF8).Msg("Error reading serial data")
		return false
	}

	line := strings.TrimSpace(string(raw))
	if strings.Contains(line, r.opts.Sentinel) {
		return true
	}
	if line == "" {
		return false
	}

	fmt.Fprintln(r.opts.Echo, line)
	if err := sess.Append(line); err != nil {
		r.log.Error().Err(err).Msg("Error writing serial data")
	}
	return false
}

var errInvalidUTF8 = errors.New("decode line: invalid UTF-8")

// readLine returns the next newline-terminated line. A line that spans
// read timeouts is kept and completed by later calls.
func (r *Recorder) readLine() ([]byte, error) {
	chunk, err := r.br.ReadBytes('\n')
	r.pending = append(r.pending, chunk...)
	if err != nil {
		if !isTimeout(err) {
			r.pending = r.pending[:0]
		}
		return nil, err
	}

	line := r.pending
	r.pending = nil
	return line, nil
}

// isTimeout reports whether err only means the read timeout expired with
// no complete line available.
func isTimeout(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrNoProgress)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
