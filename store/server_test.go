package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- NetworkSession ---

type MockNetworkSession struct {
	mock.Mock

	mu     sync.Mutex
	frames []Frame
}

func (m *MockNetworkSession) Close(reason string) {
	m.Called(reason)
}

func (m *MockNetworkSession) Write(data []byte) error {
	frame := Frame{}
	if err := json.Unmarshal(data, &frame); err == nil {
		m.mu.Lock()
		m.frames = append(m.frames, frame)
		m.mu.Unlock()
	}
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockNetworkSession) Read() ([]byte, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockNetworkSession) Ping() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockNetworkSession) Frames() []Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Frame{}, m.frames...)
}

func opJSON(t *testing.T, op OpMessage) []byte {
	t.Helper()
	data, err := json.Marshal(op)
	require.NoError(t, err)
	return data
}

func TestSyncSessionAppliesOpsAndStreamsSnapshots(t *testing.T) {
	engine := startEngine(t)
	ctx := context.Background()

	conn, err := engine.Connect(ctx, "ABCD")
	require.NoError(t, err)

	socket := &MockNetworkSession{}
	socket.On("Write", mock.Anything).Return(nil)
	socket.On("Close", mock.Anything).Return()

	socket.On("Read").Return(opJSON(t, OpMessage{
		Op:   OpSet,
		Path: "",
		Value: map[string]any{
			"gameState": "lobby",
			"round":     1,
		},
	}), nil).Once()
	socket.On("Read").Return(opJSON(t, OpMessage{
		Op:    OpPush,
		Path:  "chatMessages",
		Value: map[string]any{"player": "Alice", "message": "hi"},
	}), nil).Once()
	socket.On("Read").Run(func(mock.Arguments) {
		// hold the socket open long enough for the write pump to flush
		time.Sleep(200 * time.Millisecond)
	}).Return(nil, errors.New("gone")).Once()

	session := newSyncSession("ABCD", conn, socket)
	go session.writePump()
	session.readPump()

	assert.Eventually(t, func() bool {
		var sawDoc, sawKey bool
		for _, frame := range socket.Frames() {
			if frame.Type == FrameSnapshot && frame.Doc != nil && frame.Doc["gameState"] == "lobby" {
				sawDoc = true
			}
			if frame.Type == FramePushed && frame.Key != "" {
				sawKey = true
			}
		}
		return sawDoc && sawKey
	}, time.Second*2, 10*time.Millisecond)

	// socket drop severed the store connection
	watcher, err := engine.Subscribe(ctx, "watcher", "ABCD")
	require.NoError(t, err)
	snap := waitSnapshot(t, watcher.C())
	assert.NotNil(t, snap.Doc, "document survives the writer's disconnect")
}

func TestSyncSessionRateLimitsOps(t *testing.T) {
	engine := startEngine(t)
	ctx := context.Background()

	conn, err := engine.Connect(ctx, "RATE")
	require.NoError(t, err)

	socket := &MockNetworkSession{}
	socket.On("Write", mock.Anything).Return(nil)
	socket.On("Close", mock.Anything).Return()

	for i := 0; i < 10; i++ {
		socket.On("Read").Return(opJSON(t, OpMessage{
			Op:    OpSet,
			Path:  "round",
			Value: i,
		}), nil).Once()
	}
	socket.On("Read").Run(func(mock.Arguments) {
		time.Sleep(200 * time.Millisecond)
	}).Return(nil, errors.New("gone")).Once()

	session := newSyncSession("RATE", conn, socket)
	go session.writePump()
	session.readPump()

	assert.Eventually(t, func() bool {
		for _, frame := range socket.Frames() {
			if frame.Type == FrameError && frame.Error == "rate-limited" {
				return true
			}
		}
		return false
	}, time.Second*2, 10*time.Millisecond)
}

func TestSyncSessionRejectsMalformedOps(t *testing.T) {
	engine := startEngine(t)
	ctx := context.Background()

	conn, err := engine.Connect(ctx, "BADP")
	require.NoError(t, err)

	socket := &MockNetworkSession{}
	socket.On("Write", mock.Anything).Return(nil)
	socket.On("Close", mock.Anything).Return()
	socket.On("Read").Return([]byte("{not json"), nil).Once()
	socket.On("Read").Return(opJSON(t, OpMessage{Op: "frobnicate"}), nil).Once()
	socket.On("Read").Run(func(mock.Arguments) {
		time.Sleep(200 * time.Millisecond)
	}).Return(nil, errors.New("gone")).Once()

	session := newSyncSession("BADP", conn, socket)
	go session.writePump()
	session.readPump()

	assert.Eventually(t, func() bool {
		var badOp, unknownOp bool
		for _, frame := range socket.Frames() {
			if frame.Type == FrameError && frame.Error == "bad-op" {
				badOp = true
			}
			if frame.Type == FrameError && frame.Error == "unknown-op" {
				unknownOp = true
			}
		}
		return badOp && unknownOp
	}, time.Second*2, 10*time.Millisecond)
}
