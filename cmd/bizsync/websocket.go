package main

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// handleStatusFeed streams status snapshots over a websocket. The client
// gets the current status on connect and a fresh snapshot on every
// change after that.
func (s *Server) handleStatusFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // local control API, no cross-origin concern
		})
		if err != nil {
			s.logger.WithError(err).Warn("Failed to accept websocket connection")
			return
		}
		defer conn.Close(websocket.StatusInternalError, "feed closed")

		// CloseRead cancels the context when the client goes away.
		ctx := conn.CloseRead(r.Context())

		updates, unsubscribe := s.status.Subscribe()
		defer unsubscribe()

		if err := wsjson.Write(ctx, conn, s.status.Current()); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case status, ok := <-updates:
				if !ok {
					conn.Close(websocket.StatusNormalClosure, "")
					return
				}
				if err := wsjson.Write(ctx, conn, status); err != nil {
					return
				}
			}
		}
	}
}
