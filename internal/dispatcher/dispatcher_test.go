package dispatcher

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger implements Logger for testing
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) { l.add("DEBUG", msg, keysAndValues) }
func (l *testLogger) Info(msg string, keysAndValues ...any)  { l.add("INFO", msg, keysAndValues) }
func (l *testLogger) Error(msg string, keysAndValues ...any) { l.add("ERROR", msg, keysAndValues) }

func (l *testLogger) add(level, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("%s: %s %v", level, msg, kv))
}

func (l *testLogger) contains(s string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages {
		if strings.Contains(m, s) {
			return true
		}
	}
	return false
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *testLogger) {
	t.Helper()
	logger := &testLogger{}
	d, err := New(logger)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d, logger
}

func TestDispatcher_SyncHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var got Event
	d.Register(":CLICK:", func(e Event) (any, error) {
		got = e
		return "result", nil
	})

	result, err := d.Dispatch(Event{Command: ":CLICK:", Args: []string{"10,20"}})
	require.NoError(t, err)
	assert.Equal(t, "result", result)
	assert.Equal(t, []string{"10,20"}, got.Args)
	assert.False(t, got.Timestamp.IsZero(), "dispatch stamps events")
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Dispatch(Event{Command: ":NOPE:"})
	assert.EqualError(t, err, "unknown command: :NOPE:")
}

func TestDispatcher_BufferedHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var count atomic.Int32
	d.Register(":EXPORT:PNG:", func(e Event) (any, error) {
		count.Add(1)
		return nil, nil
	}, Buffered(10))

	for i := 0; i < 5; i++ {
		result, err := d.Dispatch(Event{Command: ":EXPORT:PNG:"})
		require.NoError(t, err)
		assert.Equal(t, "queued", result)
	}

	d.Close()
	assert.Equal(t, int32(5), count.Load())
}

func TestDispatcher_BufferedDropsWhenFull(t *testing.T) {
	d, _ := newTestDispatcher(t)

	release := make(chan struct{})
	d.Register(":SLOW:", func(e Event) (any, error) {
		<-release
		return nil, nil
	}, Buffered(1))

	// First fills the worker, second fills the queue; eventually one is dropped.
	var dropped bool
	for i := 0; i < 5 && !dropped; i++ {
		if _, err := d.Dispatch(Event{Command: ":SLOW:"}); err != nil {
			assert.EqualError(t, err, "queue full: :SLOW:")
			dropped = true
		}
	}
	close(release)
	assert.True(t, dropped)
}

func TestDispatcher_BufferedBlocking(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var count atomic.Int32
	d.Register(":BLOCK:", func(e Event) (any, error) {
		time.Sleep(time.Millisecond)
		count.Add(1)
		return nil, nil
	}, Buffered(1), Blocking())

	for i := 0; i < 4; i++ {
		_, err := d.Dispatch(Event{Command: ":BLOCK:"})
		require.NoError(t, err)
	}

	d.Close()
	assert.Equal(t, int32(4), count.Load(), "blocking queues never drop")
}

func TestDispatcher_ClosedRejectsQueued(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.Register(":Q:", func(e Event) (any, error) { return nil, nil }, Buffered(1))

	d.Close()
	d.Close()

	_, err := d.Dispatch(Event{Command: ":Q:"})
	assert.Error(t, err)
}

func TestDispatcher_QueuedErrorsAreLogged(t *testing.T) {
	d, logger := newTestDispatcher(t)
	d.Register(":FAIL:", func(e Event) (any, error) {
		return nil, errors.New("disk full")
	}, Buffered(1))

	_, err := d.Dispatch(Event{Command: ":FAIL:"})
	require.NoError(t, err)
	d.Close()

	assert.True(t, logger.contains("disk full"))
}

func TestDispatcher_LoggedHandler(t *testing.T) {
	d, logger := newTestDispatcher(t)
	d.Register(":LOGGED:", func(e Event) (any, error) { return "ok", nil }, Logged())

	_, err := d.Dispatch(Event{Command: ":LOGGED:", Args: []string{"a", "b"}})
	require.NoError(t, err)

	assert.True(t, logger.contains("DEBUG: handling event"))
	assert.True(t, logger.contains("DEBUG: event complete"))
}

func TestDispatcher_LoggedHandlerError(t *testing.T) {
	d, logger := newTestDispatcher(t)
	d.Register(":LOGGED:", func(e Event) (any, error) {
		return nil, errors.New("boom")
	}, Logged())

	_, err := d.Dispatch(Event{Command: ":LOGGED:"})
	require.Error(t, err)
	assert.True(t, logger.contains("ERROR: event failed"))
}

func TestDispatcher_HasHandlerAndCommands(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.Register(":ZOOM:IN:", func(e Event) (any, error) { return nil, nil })
	d.Register(":CLEAR:", func(e Event) (any, error) { return nil, nil })

	assert.True(t, d.HasHandler(":CLEAR:"))
	assert.False(t, d.HasHandler(":SAVE:"))
	assert.Equal(t, []string{":CLEAR:", ":ZOOM:IN:"}, d.Commands())
}
