package socketio_types

import (
	"Recit/services/subscriptions"
	"sync"

	"github.com/zishang520/socket.io/v2/socket"
)

// Connection is one connected client and the subscriptions it holds.
type Connection struct {
	Socket  *socket.Socket
	UserID  uint
	Session *subscriptions.Session
}

// SocketServer is a struct that contains the socket.io server and a map of socket connections.
// It is used to handle socket.io connections.
type SocketServer struct {
	Sio_server *socket.Server
	// Map to track socket id -> connection
	Connections map[string]*Connection
	mutex       sync.RWMutex
}

func NewSocketServer() *SocketServer {
	return &SocketServer{
		Connections: make(map[string]*Connection),
	}
}

// Add methods to manage connections
func (s *SocketServer) AddConnection(id string, conn *Connection) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.Connections[id] = conn
}

// RemoveConnection drops the connection and returns it, so the caller can
// close its session.
func (s *SocketServer) RemoveConnection(id string) (*Connection, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	conn, exists := s.Connections[id]
	delete(s.Connections, id)
	return conn, exists
}

// UserConnections counts the open connections of a user.
func (s *SocketServer) UserConnections(userID uint) int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	n := 0
	for _, conn := range s.Connections {
		if conn.UserID == userID {
			n++
		}
	}
	return n
}

func (s *SocketServer) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.Connections)
}
