package handlers

import (
	"Recit/services/subscriptions"
	socketio_types "Recit/services/socket_io/types"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// Emitter is the part of a socket the handlers write to.
type Emitter interface {
	Emit(event string, args ...any) error
}

func handleRequest(client Emitter, session *subscriptions.Session, kind, reply string) func(args ...interface{}) {
	return func(args ...interface{}) {
		ack := ackOf(args)
		respond := func(event string, body gin.H) {
			if ack != nil {
				ack(body)
				return
			}
			client.Emit(event, body)
		}

		req, err := decodeArgs(args)
		var id string
		if err == nil {
			req.Type = kind
			id, err = session.Apply(req)
		}
		if err != nil {
			log.Printf("[SOCKET-ERROR] %s from user %d failed: %v", kind, session.UserID(), err)
			respond("error", errorBody(err))
			return
		}
		respond(reply, gin.H{"id": id})
	}
}

// HandleSubscribe opens a subscription, {stream, variables} -> {id}
func HandleSubscribe(client Emitter, session *subscriptions.Session) func(args ...interface{}) {
	return handleRequest(client, session, subscriptions.RequestSubscribe, "subscribed")
}

// HandleUpdateSubscription swaps the variables of a subscription, {id, variables}
func HandleUpdateSubscription(client Emitter, session *subscriptions.Session) func(args ...interface{}) {
	return handleRequest(client, session, subscriptions.RequestUpdate, "subscription_updated")
}

// HandleUnsubscribe closes a subscription, {id}
func HandleUnsubscribe(client Emitter, session *subscriptions.Session) func(args ...interface{}) {
	return handleRequest(client, session, subscriptions.RequestUnsubscribe, "unsubscribed")
}

// Function to handle socket.io client disconnections.
// NOTE: every subscription of the connection goes with it
func HandleDisconnecting(id socket.SocketId, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		conn, exists := sio.RemoveConnection(string(id))
		if !exists {
			return
		}
		subs := conn.Session.Count()
		conn.Session.Close()
		log.Printf("[DISCONNECT] Socket %s of user %d closed %d subscriptions", id, conn.UserID, subs)
	}
}

// Sink emits every delivery under its topic name.
func Sink(client Emitter) subscriptions.Sink {
	return func(d subscriptions.Delivery) {
		if err := client.Emit(string(d.Topic), d); err != nil {
			log.Printf("[SOCKET-ERROR] Could not emit %s: %v", d.Topic, err)
		}
	}
}
