package notifications

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishInvokesSubscribers(t *testing.T) {
	ns := NewNotificationService()

	var received []Event
	ns.Subscribe(EventTaskCreated, func(e Event) {
		received = append(received, e)
	})

	ns.Publish(NewEvent(EventTaskCreated, map[string]any{"taskId": "t1"}, "m1"))
	ns.Publish(NewEvent(EventTaskDeleted, nil, "m1"))

	require.Len(t, received, 1)
	assert.Equal(t, EventTaskCreated, received[0].EventType)
	assert.Equal(t, "t1", received[0].Payload["taskId"])
}

func TestPublishSurvivesPanickingSubscriber(t *testing.T) {
	ns := NewNotificationService()

	called := false
	ns.Subscribe(EventTaskCreated, func(Event) { panic("boom") })
	ns.Subscribe(EventTaskCreated, func(Event) { called = true })

	assert.NotPanics(t, func() {
		ns.Publish(NewEvent(EventTaskCreated, nil, "m1"))
	})
	assert.True(t, called)
	assert.Len(t, ns.GetEventLog("", "", nil, 0), 1)
}

func TestInboxNewestFirstWithLimit(t *testing.T) {
	ns := NewNotificationService()
	event := NewEvent(EventTaskAssigned, nil, "m1")

	for i := 0; i < 3; i++ {
		ns.Send("alice", event, "msg")
		time.Sleep(2 * time.Millisecond)
	}
	last := ns.Send("alice", event, "latest")

	notifs := ns.GetNotifications("alice", false, 2)
	require.Len(t, notifs, 2)
	assert.Equal(t, last.ID, notifs[0].ID)
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	ns := NewNotificationService()
	event := NewEvent(EventMention, nil, "m1")

	first := ns.Send("alice", event, "one")
	ns.Send("alice", event, "two")

	assert.Equal(t, 2, ns.UnreadCount("alice"))
	assert.True(t, ns.MarkRead("alice", first.ID))
	assert.False(t, ns.MarkRead("alice", "missing"))
	assert.Equal(t, 1, ns.UnreadCount("alice"))

	unread := ns.GetNotifications("alice", true, 0)
	require.Len(t, unread, 1)
	assert.Equal(t, "two", unread[0].Message)
}

func TestMarkAllRead(t *testing.T) {
	ns := NewNotificationService()
	event := NewEvent(EventMention, nil, "m1")

	ns.Send("alice", event, "one")
	ns.Send("alice", event, "two")
	ns.Send("bob", event, "other")

	assert.Equal(t, 2, ns.MarkAllRead("alice"))
	assert.Equal(t, 0, ns.MarkAllRead("alice"))
	assert.Equal(t, 0, ns.UnreadCount("alice"))
	assert.Equal(t, 1, ns.UnreadCount("bob"))
}

func TestClearInbox(t *testing.T) {
	ns := NewNotificationService()

	ns.Send("alice", NewEvent(EventMention, nil, "m1"), "one")
	ns.ClearInbox("alice")
	assert.Empty(t, ns.GetNotifications("alice", false, 0))
}

func TestGetEventLogFilters(t *testing.T) {
	ns := NewNotificationService()

	ns.Publish(NewEvent(EventTaskCreated, nil, "alice"))
	ns.Publish(NewEvent(EventTaskCompleted, nil, "alice"))
	ns.Publish(NewEvent(EventTaskCreated, nil, "bob"))

	assert.Len(t, ns.GetEventLog("", "", nil, 0), 3)
	assert.Len(t, ns.GetEventLog(EventTaskCreated, "", nil, 0), 2)
	assert.Len(t, ns.GetEventLog(EventTaskCreated, "alice", nil, 0), 1)
	assert.Len(t, ns.GetEventLog("", "", nil, 2), 2)

	future := time.Now().UTC().Add(time.Hour)
	assert.Empty(t, ns.GetEventLog("", "", &future, 0))
}
