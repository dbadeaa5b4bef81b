package realtime

import (
	"context"
	"strconv"
	"sync"

	"ripple/internal/models"
	"ripple/internal/observability"
)

// RoomKind selects the join/leave event pair for a room.
type RoomKind string

const (
	RoomPost RoomKind = "post"
	RoomChat RoomKind = "chat"
)

func (k RoomKind) joinEvent() string {
	if k == RoomChat {
		return EventJoinChat
	}
	return EventJoinPost
}

func (k RoomKind) leaveEvent() string {
	if k == RoomChat {
		return EventLeaveChat
	}
	return EventLeavePost
}

// Emitter is the slice of Manager the tracker needs.
type Emitter interface {
	Emit(event string, payload interface{}) error
}

// RoomTracker pairs join/leave emits with view mount/unmount. Membership
// is at-most-once best effort: a join attempted while disconnected is
// skipped, not queued, and its unmount then skips the leave so every
// lifecycle stays balanced. Concurrent viewers of the same room are
// independent; the tracker never deduplicates across mounts.
type RoomTracker struct {
	conn    Emitter
	logger  *observability.ConnLogger
	mu      sync.Mutex
	metrics *observability.RoomMetrics
}

// NewRoomTracker creates a tracker bound to the given connection.
func NewRoomTracker(conn Emitter) *RoomTracker {
	return &RoomTracker{
		conn:    conn,
		logger:  observability.NewConnLogger("rooms"),
		metrics: observability.NewRoomMetrics(),
	}
}

// Mount announces the view for the given room and returns its unmount
// function. The unmount is idempotent.
func (t *RoomTracker) Mount(kind RoomKind, roomID uint) func() {
	joined := false
	if err := t.conn.Emit(kind.joinEvent(), RoomPayload{RoomID: roomID}); err != nil {
		if models.HasCode(err, models.CodeNotConnected) {
			t.logger.LogWarn(context.Background(), "join skipped, not connected",
				map[string]interface{}{"kind": string(kind), "room_id": roomID})
		} else {
			t.logger.LogError(context.Background(), err, "join")
		}
	} else {
		joined = true
		t.mu.Lock()
		t.metrics.IncrementRoom(roomKey(kind, roomID))
		t.mu.Unlock()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if !joined {
				return
			}
			t.mu.Lock()
			t.metrics.DecrementRoom(roomKey(kind, roomID))
			t.mu.Unlock()
			if err := t.conn.Emit(kind.leaveEvent(), RoomPayload{RoomID: roomID}); err != nil {
				t.logger.LogError(context.Background(), err, "leave")
			}
		})
	}
}

// ActiveMounts returns the number of live mounts for the room.
func (t *RoomTracker) ActiveMounts(kind RoomKind, roomID uint) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.metrics.GetRoomCount(roomKey(kind, roomID))
}

func roomKey(kind RoomKind, roomID uint) string {
	return string(kind) + ":" + strconv.FormatUint(uint64(roomID), 10)
}
