package i2c

import (
	"fmt"
	"strings"
	"sync"
)

type MockTx struct {
	Addr uint16
	W    []byte
}

func (t MockTx) String() string { return fmt.Sprintf("%02x:%x", t.Addr, t.W) }

// MockBus records write transactions. FailAfter>0 makes Tx number FailAfter (1-based)
// and all later ones return Err.
type MockBus struct {
	mu        sync.Mutex
	txs       []MockTx
	closed    bool
	Err       error
	FailAfter int
}

func NewMockBus() *MockBus { return &MockBus{} }

func (m *MockBus) Tx(addr uint16, w, r []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("mock i2c closed")
	}
	if m.Err != nil && (m.FailAfter == 0 || len(m.txs)+1 >= m.FailAfter) {
		return m.Err
	}
	m.txs = append(m.txs, MockTx{Addr: addr, W: append([]byte(nil), w...)})
	for i := range r {
		r[i] = 0
	}
	return nil
}

func (m *MockBus) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *MockBus) Txs() []MockTx {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockTx(nil), m.txs...)
}

// TxsTo returns writes to one address.
func (m *MockBus) TxsTo(addr uint16) []MockTx {
	all := m.Txs()
	out := make([]MockTx, 0, len(all))
	for _, t := range all {
		if t.Addr == addr {
			out = append(out, t)
		}
	}
	return out
}

func (m *MockBus) Reset() {
	m.mu.Lock()
	m.txs = nil
	m.mu.Unlock()
}

func (m *MockBus) String() string {
	all := m.Txs()
	ss := make([]string, len(all))
	for i, t := range all {
		ss[i] = t.String()
	}
	return strings.Join(ss, " ")
}

func (m *MockBus) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
