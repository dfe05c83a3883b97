package socketio_types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionsMap(t *testing.T) {
	s := NewSocketServer()
	s.AddConnection("a", &Connection{UserID: 1})
	s.AddConnection("b", &Connection{UserID: 1})
	s.AddConnection("c", &Connection{UserID: 0})

	assert.Equal(t, 3, s.Count())
	assert.Equal(t, 2, s.UserConnections(1))

	removed, ok := s.RemoveConnection("a")
	assert.True(t, ok)
	assert.Equal(t, uint(1), removed.UserID)
	_, ok = s.RemoveConnection("a")
	assert.False(t, ok)
	assert.Equal(t, 1, s.UserConnections(1))
}
