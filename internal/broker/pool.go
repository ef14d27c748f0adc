package broker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/netascode/nac-test-go/internal/model"
)

// deviceSlot owns one device's transport and cache, plus the lock that
// serializes every operation against it.
type deviceSlot struct {
	mu        sync.Mutex
	conn      *model.BrokerConnection
	transport Transport
}

// pool owns every deviceSlot, keyed by device id, created lazily on first
// exec.
type pool struct {
	mu    sync.Mutex
	slots map[string]*deviceSlot
}

func newPool() *pool {
	return &pool{slots: make(map[string]*deviceSlot)}
}

func (p *pool) slotFor(deviceID string) *deviceSlot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.slots[deviceID]
	if !ok {
		s = &deviceSlot{conn: model.NewBrokerConnection(deviceID, "")}
		p.slots[deviceID] = s
	}
	return s
}

// closeAll tears down every open transport, used at broker shutdown.
func (p *pool) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.slots {
		s.mu.Lock()
		if s.transport != nil {
			_ = s.transport.Close()
			s.transport = nil
		}
		s.mu.Unlock()
	}
}

func (s *deviceSlot) markUsed() {
	s.conn.LastUsed = time.Now()
}

// withTransport ensures a healthy transport exists for the device, opening
// one via factory if needed, and hands it to fn while holding the slot's
// lock - serializing every operation against the device.
func (s *deviceSlot) withTransport(ctx context.Context, deviceID string, entry map[string]interface{}, factory TransportFactory, stats *Statistics) (Transport, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opened := false
	if s.transport != nil && !s.transport.Healthy(ctx) {
		_ = s.transport.Close()
		s.transport = nil
	}
	if s.transport == nil {
		t, err := factory(ctx, deviceID, entry)
		if err != nil {
			return nil, false, err
		}
		s.transport = t
		opened = true
	}
	if opened {
		atomic.AddInt64(&stats.ConnectionMisses, 1)
	} else {
		atomic.AddInt64(&stats.ConnectionHits, 1)
	}
	s.markUsed()
	return s.transport, opened, nil
}
