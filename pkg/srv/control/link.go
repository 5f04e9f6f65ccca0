/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package control

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	deviceifc "jinr.ru/greenlab/go-polhemus/pkg/device/ifc"
	"jinr.ru/greenlab/go-polhemus/pkg/layers"
	"jinr.ru/greenlab/go-polhemus/pkg/log"
	"jinr.ru/greenlab/go-polhemus/pkg/metrics"
	"jinr.ru/greenlab/go-polhemus/pkg/srv"
)

// Link is the byte stream to one tracker, usually a TCP bridge to its serial port.
// Answers are matched to pending commands by command code, so only one
// command per code can be in flight.
type Link struct {
	name         string
	address      string
	maxFrameSize uint32
	timeout      time.Duration
	metrics      *metrics.Metrics

	mu      sync.Mutex
	conn    io.ReadWriteCloser
	pending map[layers.CommandCode]chan layers.FrameView
	rxCount uint32

	writeMu sync.Mutex
}

var _ deviceifc.Link = &Link{}

func NewLink(name, address string, maxFrameSize uint32, timeout time.Duration, m *metrics.Metrics) *Link {
	return &Link{
		name:         name,
		address:      address,
		maxFrameSize: maxFrameSize,
		timeout:      timeout,
		metrics:      m,
		pending:      make(map[layers.CommandCode]chan layers.FrameView),
	}
}

// Connect dials the device address
func (l *Link) Connect(ctx context.Context) error {
	log.Info("Connecting to device: %s address: %s", l.name, l.address)
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", l.address)
	if err != nil {
		return err
	}
	l.Attach(conn)
	return nil
}

// Attach makes the link use conn, the previous connection is not closed
func (l *Link) Attach(conn io.ReadWriteCloser) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conn = conn
}

func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.conn = nil
	return err
}

// ReadLoop reads frames from the connection and puts them to the input queue
// until the connection fails or ctx is done
func (l *Link) ReadLoop(ctx context.Context, out chan<- srv.InPacket) error {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()
	if conn == nil {
		return srv.ErrNotConnected{Device: l.name}
	}
	for {
		data, err := layers.ReadFrame(conn, l.maxFrameSize)
		if err != nil {
			return err
		}
		select {
		case out <- srv.NewInPacket(data, l.name):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Exchange sends the command and waits for the command frame with the same code
func (l *Link) Exchange(ctx context.Context, frame *layers.CommandFrame) (layers.FrameView, error) {
	cmd := frame.Command
	l.mu.Lock()
	conn := l.conn
	if conn == nil {
		l.mu.Unlock()
		return layers.FrameView{}, srv.ErrNotConnected{Device: l.name}
	}
	if _, busy := l.pending[cmd]; busy {
		l.mu.Unlock()
		return layers.FrameView{}, srv.ErrExchangeBusy{Device: l.name, Command: cmd.String()}
	}
	ch := make(chan layers.FrameView, 1)
	l.pending[cmd] = ch
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.pending, cmd)
		l.mu.Unlock()
	}()

	l.writeMu.Lock()
	_, err := conn.Write(frame.Bytes())
	l.writeMu.Unlock()
	if err != nil {
		l.metrics.CommandResults.WithLabelValues(l.name, metrics.ResultError).Inc()
		return layers.FrameView{}, err
	}
	l.metrics.CommandsSent.WithLabelValues(l.name, cmd.String()).Inc()

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()
	select {
	case resp := <-ch:
		result := metrics.ResultOk
		if resp.IsNak() {
			result = metrics.ResultError
		}
		l.metrics.CommandResults.WithLabelValues(l.name, result).Inc()
		return resp, nil
	case <-timer.C:
		l.metrics.CommandResults.WithLabelValues(l.name, metrics.ResultError).Inc()
		return layers.FrameView{}, srv.ErrTimeout{Device: l.name, Command: cmd.String()}
	case <-ctx.Done():
		return layers.FrameView{}, ctx.Err()
	}
}

// Deliver hands a received command frame to the pending exchange, if any
// Received numbers a frame read from this link
func (l *Link) Received(data []byte, ts time.Time) *layers.FrameInfo {
	l.mu.Lock()
	l.rxCount++
	rx := l.rxCount
	l.mu.Unlock()
	return layers.NewFrameInfo(data, rx, ts)
}

// Deliver hands a command frame to the pending exchange with the same command code.
// The waiter gets its own copy of the frame bytes.
func (l *Link) Deliver(info *layers.FrameInfo) bool {
	l.mu.Lock()
	ch, ok := l.pending[info.Command()]
	l.mu.Unlock()
	if !ok {
		return false
	}
	owned := info.DeepCopy(make([]byte, len(info.Data())))
	select {
	case ch <- owned.FrameView:
		return true
	default:
		return false
	}
}
