package packet

import (
	"fmt"
	"net"
	"sync"

	"go.bug.st/serial"
)

// Transport delivers one record per call
type Transport interface {
	Send(record []byte) error
	Close() error
	String() string
}

// UDP sends each record as one datagram to a fixed address
type UDP struct {
	conn    *net.UDPConn
	address string

	mu     sync.Mutex
	closed bool
}

// DialUDP creates a UDP transport that sends records to ip:port
func DialUDP(ip string, port int) (*UDP, error) {
	address := net.JoinHostPort(ip, fmt.Sprint(port))
	udpAddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve packet address: %w", err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to create packet connection: %w", err)
	}

	return &UDP{conn: conn, address: address}, nil
}

// Send writes record as a single datagram
func (u *UDP) Send(record []byte) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrTransportClosed
	}
	_, err := u.conn.Write(record)
	return err
}

// Close closes the UDP connection
func (u *UDP) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return nil
	}
	u.closed = true
	return u.conn.Close()
}

func (u *UDP) String() string {
	return "udp://" + u.address
}

// Serial writes records to a serial port, 8N1
type Serial struct {
	port serial.Port
	path string

	mu     sync.Mutex
	closed bool
}

// OpenSerial opens path at the given baud rate
func OpenSerial(path string, baud int) (*Serial, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}

	return &Serial{port: port, path: path}, nil
}

// Send writes record followed by a newline
func (s *Serial) Send(record []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrTransportClosed
	}
	line := make([]byte, 0, len(record)+1)
	line = append(append(line, record...), '\n')
	_, err := s.port.Write(line)
	return err
}

// Close closes the serial port
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.port.Close()
}

func (s *Serial) String() string {
	return "serial://" + s.path
}
