package serialport

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/tarm/serial"
)

type Config struct {
	Name        string
	Baud        int
	ReadTimeout time.Duration
}

// Port is the connection to the sensing device. Close may be called any
// number of times; the device is released on the first call only.
type Port struct {
	name string
	rwc  io.ReadWriteCloser

	closeOnce sync.Once
	closeErr  error
}

// Open opens the device with the given parameters.
func Open(cfg Config) (*Port, error) {
	p, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Name,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Name, err)
	}
	return Wrap(cfg.Name, p), nil
}

// Wrap turns any stream into a Port with once-only close semantics.
func Wrap(name string, rwc io.ReadWriteCloser) *Port {
	return &Port{name: name, rwc: rwc}
}

func (p *Port) Name() string {
	return p.name
}

// Read blocks until data arrives or the read timeout expires. A timeout
// surfaces as (0, io.EOF) on POSIX systems.
func (p *Port) Read(b []byte) (int, error) {
	return p.rwc.Read(b)
}

func (p *Port) Write(b []byte) (int, error) {
	return p.rwc.Write(b)
}

func (p *Port) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.rwc.Close()
	})
	return p.closeErr
}

// Exists reports whether a device node is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
