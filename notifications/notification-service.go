package notifications

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskflow-project/taskflow-service/logging"
)

// EventCallback receives published events. A panicking or failing callback
// must never fail the originating business operation, so Publish recovers
// around every invocation.
type EventCallback func(Event)

// NotificationService is the in-process event bus plus a per-recipient
// inbox. Failures here are deliberately swallowed: notification delivery is
// fire-and-forget by contract.
type NotificationService struct {
	mu          sync.RWMutex
	eventLog    []Event
	inbox       map[string][]*Notification
	subscribers map[EventType][]EventCallback
}

func NewNotificationService() *NotificationService {
	return &NotificationService{
		inbox:       make(map[string][]*Notification),
		subscribers: make(map[EventType][]EventCallback),
	}
}

// Publish appends the event to the log and invokes the subscribers for its
// type. Callbacks run outside the lock.
func (ns *NotificationService) Publish(event Event) {
	ns.mu.Lock()
	ns.eventLog = append(ns.eventLog, event)
	callbacks := make([]EventCallback, len(ns.subscribers[event.EventType]))
	copy(callbacks, ns.subscribers[event.EventType])
	ns.mu.Unlock()

	for _, cb := range callbacks {
		ns.safeInvoke(cb, event)
	}
}

func (ns *NotificationService) safeInvoke(cb EventCallback, event Event) {
	defer func() {
		if r := recover(); r != nil {
			logging.Logger.Warnf("Event ID: SUBSCRIBER_PANIC, Description: Subscriber for %s panicked: %v", event.EventType, r)
		}
	}()
	cb(event)
}

func (ns *NotificationService) Subscribe(eventType EventType, callback EventCallback) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.subscribers[eventType] = append(ns.subscribers[eventType], callback)
}

// Send delivers a notification into the recipient's inbox.
func (ns *NotificationService) Send(recipientID string, event Event, message string) *Notification {
	notif := &Notification{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		Event:       event,
		Message:     message,
		CreatedAt:   time.Now().UTC(),
	}
	ns.mu.Lock()
	ns.inbox[recipientID] = append(ns.inbox[recipientID], notif)
	ns.mu.Unlock()
	return notif
}

// GetNotifications lists a recipient's inbox, newest first, capped at limit.
func (ns *NotificationService) GetNotifications(memberID string, unreadOnly bool, limit int) []*Notification {
	ns.mu.RLock()
	notifs := make([]*Notification, 0, len(ns.inbox[memberID]))
	for _, n := range ns.inbox[memberID] {
		if unreadOnly && n.IsRead {
			continue
		}
		notifs = append(notifs, n)
	}
	ns.mu.RUnlock()

	sort.Slice(notifs, func(i, j int) bool {
		return notifs[i].CreatedAt.After(notifs[j].CreatedAt)
	})
	if limit > 0 && len(notifs) > limit {
		notifs = notifs[:limit]
	}
	return notifs
}

// MarkRead marks one notification read; it reports whether it was found.
func (ns *NotificationService) MarkRead(memberID, notificationID string) bool {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	for _, n := range ns.inbox[memberID] {
		if n.ID == notificationID {
			n.IsRead = true
			return true
		}
	}
	return false
}

// MarkAllRead marks every unread notification read and returns the count.
func (ns *NotificationService) MarkAllRead(memberID string) int {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	count := 0
	for _, n := range ns.inbox[memberID] {
		if !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count
}

func (ns *NotificationService) UnreadCount(memberID string) int {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	count := 0
	for _, n := range ns.inbox[memberID] {
		if !n.IsRead {
			count++
		}
	}
	return count
}

func (ns *NotificationService) ClearInbox(memberID string) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.inbox[memberID] = nil
}

// GetEventLog filters the published events by type, actor and time, newest
// first, capped at limit.
func (ns *NotificationService) GetEventLog(eventType EventType, actorID string, since *time.Time, limit int) []Event {
	ns.mu.RLock()
	events := make([]Event, 0, len(ns.eventLog))
	for _, e := range ns.eventLog {
		if eventType != "" && e.EventType != eventType {
			continue
		}
		if actorID != "" && e.ActorID != actorID {
			continue
		}
		if since != nil && e.OccurredAt.Before(*since) {
			continue
		}
		events = append(events, e)
	}
	ns.mu.RUnlock()

	sort.Slice(events, func(i, j int) bool {
		return events[i].OccurredAt.After(events[j].OccurredAt)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events
}
