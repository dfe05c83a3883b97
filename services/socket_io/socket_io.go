package socket_io

import (
	"Recit/services/socket_io/handlers"
	socketio_types "Recit/services/socket_io/types"
	"Recit/services/subscriptions"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	eiolog "github.com/zishang520/engine.io/v2/log"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type MySocketServer socketio_types.SocketServer

func (sio *MySocketServer) Start(router *gin.Engine, manager *subscriptions.Manager, tokens TokenVerifier, debug bool) {
	eiolog.DEBUG = debug
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	// KEY: inicializar el map, sino panikea
	sio.Connections = make(map[string]*socketio_types.Connection)

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		// Anonymous clients may still follow public streams
		userID, err := VerifyUserConnection(client.Handshake().Auth, tokens)
		if err != nil {
			log.Printf("[SOCKET-ERROR] Rejected connection %s: %v", client.Id(), err)
			client.Emit("error", gin.H{
				"error": "Authentication failed: invalid JWT. Remember to set it on the 'authorization' field and with the 'Bearer ' prefix.",
			})
			client.Disconnect(true)
			return
		}

		session := manager.NewSession(userID, handlers.Sink(client))
		connections := (*socketio_types.SocketServer)(sio)
		connections.AddConnection(string(client.Id()), &socketio_types.Connection{
			Socket:  client,
			UserID:  userID,
			Session: session,
		})
		log.Printf("[CONNECT] Socket %s connected, user %d (%d of theirs, %d total)",
			client.Id(), userID, connections.UserConnections(userID), connections.Count())

		client.On("subscribe", handlers.HandleSubscribe(client, session))

		client.On("update_subscription", handlers.HandleUpdateSubscription(client, session))

		client.On("unsubscribe", handlers.HandleUnsubscribe(client, session))

		// NOTE: will remove sio connection from map
		client.On("disconnecting", handlers.HandleDisconnecting(client.Id(), (*socketio_types.SocketServer)(sio)))
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	log.Println("Socket server started")
}

// Close disconnects every client; their sessions are closed by the
// disconnecting handler.
func (sio *MySocketServer) Close() {
	if sio.Sio_server != nil {
		sio.Sio_server.Close(nil)
	}
}
