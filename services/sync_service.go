// services/sync_service.go - Cross-surface change notification
//
// Every mutation of the record store or the type catalog publishes a
// ChangeEvent. Consumers (grid, detail panel, viewer dialog) treat an
// event as an invalidation hint and re-fetch; events never carry
// deltas. Delivery is at-least-once and unordered - duplicates are
// fine because re-fetches are idempotent reads.
package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"compliance-dashboard-api/config"
	"compliance-dashboard-api/models"
)

const syncChannel = "compliance:changed"

// ChangeEvent announces that something in the named entity changed.
// Owner fields are zero for catalog-level events.
type ChangeEvent struct {
	Entity         string `json:"entity"` // document_record, document_type, document_folder
	OwnerType      string `json:"owner_type,omitempty"`
	OwnerID        int    `json:"owner_id,omitempty"`
	DocumentTypeID int    `json:"document_type_id,omitempty"`
}

var (
	subscriberMu sync.Mutex
	subscribers  = make(map[int]chan ChangeEvent)
	nextSubID    int
)

// SubscribeChanges registers a consumer. The channel is buffered; a
// consumer that falls behind loses events and must rely on its next
// full re-fetch, which is the contract anyway.
func SubscribeChanges() (int, <-chan ChangeEvent) {
	subscriberMu.Lock()
	defer subscriberMu.Unlock()

	nextSubID++
	id := nextSubID
	ch := make(chan ChangeEvent, 16)
	subscribers[id] = ch
	return id, ch
}

// UnsubscribeChanges removes a consumer and closes its channel.
func UnsubscribeChanges(id int) {
	subscriberMu.Lock()
	defer subscriberMu.Unlock()

	if ch, ok := subscribers[id]; ok {
		delete(subscribers, id)
		close(ch)
	}
}

func notifyLocal(event ChangeEvent) {
	subscriberMu.Lock()
	defer subscriberMu.Unlock()

	for id, ch := range subscribers {
		select {
		case ch <- event:
		default:
			log.Printf("sync: subscriber %d is slow, dropping event", id)
		}
	}
}

// PublishChange invalidates cached matrices, notifies in-process
// subscribers and broadcasts to the other API instances over redis.
// The publisher also receives its own redis echo; subscribers may
// therefore see the same event twice.
func PublishChange(ctx context.Context, event ChangeEvent) {
	if event.OwnerType != "" {
		bumpMatrixVersion(ctx, event.OwnerType)
	} else {
		// catalog change touches every matrix
		for _, ownerType := range models.ValidOwnerTypes() {
			bumpMatrixVersion(ctx, ownerType)
		}
	}

	notifyLocal(event)

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("sync: failed to encode change event: %v", err)
		return
	}
	if err := config.PublishRedis(ctx, syncChannel, payload); err != nil {
		log.Printf("sync: failed to publish change event: %v", err)
	}
}

// StartSyncListener fans redis-published events from other instances
// out to this instance's subscribers. Returns immediately when redis
// is not configured.
func StartSyncListener(ctx context.Context) {
	pubsub := config.SubscribeRedis(ctx, syncChannel)
	if pubsub == nil {
		return
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("sync: ignoring malformed change event: %v", err)
					continue
				}
				notifyLocal(event)
			}
		}
	}()
}
