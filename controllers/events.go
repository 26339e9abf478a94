// controllers/events.go - Change notification stream
package controllers

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"compliance-dashboard-api/services"
)

// StreamChangeEvents pushes change notifications to a surface over
// SSE. Each event is an invalidation hint; the surface re-fetches the
// matrix rather than applying deltas, so duplicated or dropped events
// only cost an extra or a deferred refresh.
// GET /api/v1/events
func StreamChangeEvents(c *gin.Context) {
	id, events := services.SubscribeChanges()
	defer services.UnsubscribeChanges(id)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("change", event)
			return true
		case <-heartbeat.C:
			// comment line keeps proxies from closing the stream
			fmt.Fprint(w, ": ping\n\n")
			return true
		}
	})
}
