package packet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/teslashibe/smartcam/internal/log"
	"github.com/teslashibe/smartcam/pkg/debug"
	"github.com/teslashibe/smartcam/pkg/tracking"
	"github.com/teslashibe/smartcam/pkg/zone"
)

// Source returns the zone state and occupancy a record is built from
type Source func() (*zone.Store, tracking.Occupancy)

// Stats counts sends since the sender was created
type Stats struct {
	Sent       uint64    `json:"sent"`
	Failed     uint64    `json:"failed"`
	LastRecord string    `json:"last_record"`
	LastError  string    `json:"last_error,omitempty"`
	LastSent   time.Time `json:"last_sent"`
}

// Sender periodically composes the record and hands it to a transport.
// A failed send is counted and logged; it never stops the loop.
type Sender struct {
	source   Source
	interval time.Duration

	mu        sync.Mutex
	transport Transport
	device    string
	enabled   bool
	stats     Stats

	// OnSend is called after every send attempt, outside the lock
	OnSend func(record string, err error)
}

// NewSender creates a disabled sender with no transport
func NewSender(source Source, device string, interval time.Duration) *Sender {
	return &Sender{
		source:   source,
		device:   device,
		interval: interval,
	}
}

// SetTransport replaces the transport, closing the previous one
func (s *Sender) SetTransport(t Transport) {
	s.mu.Lock()
	old := s.transport
	s.transport = t
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	if t != nil {
		log.Info("packet destination", "transport", t.String())
	}
}

// Destination describes the current transport, or "" when none is set
func (s *Sender) Destination() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return ""
	}
	return s.transport.String()
}

// SetDevice sets the record's device field
func (s *Sender) SetDevice(device string) {
	s.mu.Lock()
	s.device = device
	s.mu.Unlock()
}

// Device returns the record's device field
func (s *Sender) Device() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device
}

// Enable turns periodic sending on or off
func (s *Sender) Enable(on bool) {
	s.mu.Lock()
	s.enabled = on
	s.mu.Unlock()
	log.Info("packet sending", "enabled", on)
}

// Enabled reports whether periodic sending is on
func (s *Sender) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Stats returns a copy of the send counters
func (s *Sender) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Record composes the current record without sending it
func (s *Sender) Record() string {
	store, occ := s.source()
	return Compose(s.Device(), store, occ)
}

// SendOnce composes and sends one record
func (s *Sender) SendOnce() (string, error) {
	record := s.Record()

	s.mu.Lock()
	t := s.transport
	s.mu.Unlock()

	var err error
	if t == nil {
		err = ErrNoDestination
	} else if sendErr := t.Send([]byte(record)); sendErr != nil {
		err = fmt.Errorf("send to %s: %w", t, sendErr)
	}

	s.mu.Lock()
	s.stats.LastRecord = record
	if err != nil {
		s.stats.Failed++
		s.stats.LastError = err.Error()
	} else {
		s.stats.Sent++
		s.stats.LastError = ""
		s.stats.LastSent = time.Now()
	}
	callback := s.OnSend
	s.mu.Unlock()

	if callback != nil {
		callback(record, err)
	}
	if err == nil {
		debug.FrameLog("packet sent: %s\n", record)
	}
	return record, err
}

// Run sends a record every interval while enabled, until ctx is done
func (s *Sender) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.Enabled() {
				continue
			}
			if _, err := s.SendOnce(); err != nil {
				failures++
				// Log the first failure and every 50th after
				if failures%50 == 1 {
					log.Warn("packet send failed", "error", err, "consecutive", failures)
				}
				continue
			}
			failures = 0
		}
	}
}

// Close closes the transport
func (s *Sender) Close() error {
	s.mu.Lock()
	t := s.transport
	s.transport = nil
	s.mu.Unlock()
	if t == nil {
		return nil
	}
	return t.Close()
}
