package domain

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	registry := NewSessionRegistry(discardLogger())
	conn, _ := newTestConnection("u1", "alice")

	registry.Register(conn)

	found, exists := registry.Lookup("u1")
	require.True(t, exists)
	assert.Equal(t, conn.InstanceID, found.InstanceID)
	assert.Equal(t, 1, registry.Count())
}

func TestRegistrySupersessionClosesPrevious(t *testing.T) {
	registry := NewSessionRegistry(discardLogger())
	first, firstTransport := newTestConnection("u1", "alice")
	second, secondTransport := newTestConnection("u1", "alice")

	registry.Register(first)
	registry.Register(second)

	found, exists := registry.Lookup("u1")
	require.True(t, exists)
	assert.Equal(t, second.InstanceID, found.InstanceID)
	assert.True(t, firstTransport.Closed(), "superseded connection must observe a close")
	assert.False(t, secondTransport.Closed())
	assert.Equal(t, 1, registry.Count())
}

func TestRegistryStaleUnregisterIsNoOp(t *testing.T) {
	registry := NewSessionRegistry(discardLogger())
	first, _ := newTestConnection("u1", "alice")
	second, _ := newTestConnection("u1", "alice")

	registry.Register(first)
	registry.Register(second)

	// The superseded session's cleanup must not delete the newer entry.
	registry.Unregister("u1", first.InstanceID)
	found, exists := registry.Lookup("u1")
	require.True(t, exists)
	assert.Equal(t, second.InstanceID, found.InstanceID)

	registry.Unregister("u1", second.InstanceID)
	_, exists = registry.Lookup("u1")
	assert.False(t, exists)
}

func TestRegistryUnregisterUnknownUserIsNoOp(t *testing.T) {
	registry := NewSessionRegistry(discardLogger())
	registry.Unregister("nobody", "deadbeef")
	assert.Equal(t, 0, registry.Count())
}

func TestRegistryConcurrentRegistrationsKeepSingleSession(t *testing.T) {
	registry := NewSessionRegistry(discardLogger())

	const goroutines = 32
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			conn, _ := newTestConnection("u1", fmt.Sprintf("alice-%d", n))
			registry.Register(conn)
		}(i)
	}
	wg.Wait()

	_, exists := registry.Lookup("u1")
	assert.True(t, exists)
	assert.Equal(t, 1, registry.Count())
}
