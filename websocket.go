package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
)

const websocketBuffer = 32

// createWebsocketHandler streams every rotation event to the client as a
// JSON text message until either side goes away.
func createWebsocketHandler(rotation *Rotation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			http.Error(w, fmt.Sprintf("websocket upgrade failed: %s", err), http.StatusInternalServerError)
			return
		}
		defer c.Close(websocket.StatusInternalError, "unexpected close")

		unsub, ch := rotation.Subscribe(websocketBuffer)
		defer unsub()

		// Clients never send anything; CloseRead cancels ctx when they hang up.
		ctx := c.CloseRead(r.Context())

		for {
			select {
			case <-ctx.Done():
				log.Debug().Msg("Websocket client went away")
				return
			case ev, ok := <-ch:
				if !ok {
					c.Close(websocket.StatusGoingAway, "server shutting down")
					return
				}

				js, err := json.Marshal(ev)
				if err != nil {
					log.Err(err).Msg("Failed to marshal event payload for websocket")
					continue
				}

				if err := writeTimeout(ctx, 5*time.Second, c, js); err != nil {
					log.Debug().Err(err).Msg("Websocket write failed")
					return
				}
			}
		}
	}
}

func writeTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return c.Write(ctx, websocket.MessageText, msg)
}
