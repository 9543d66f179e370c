package service

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNotificationFeed_NewestFirst(t *testing.T) {
	feed := NewNotificationFeed()
	userID := uuid.New()

	feed.Push(userID, "primero")
	feed.Push(userID, "segundo")
	feed.Push(userID, "tercero")

	got := feed.List(userID, false)
	if len(got) != 3 {
		t.Fatalf("feed has %d entries, want 3", len(got))
	}
	if got[0].Text != "tercero" || got[2].Text != "primero" {
		t.Errorf("feed order = [%s, %s, %s], want newest first", got[0].Text, got[1].Text, got[2].Text)
	}
}

func TestNotificationFeed_CapEvictsOldest(t *testing.T) {
	feed := NewNotificationFeed()
	userID := uuid.New()

	for i := 0; i < MaxNotifications+10; i++ {
		feed.Push(userID, fmt.Sprintf("mensaje %d", i))
	}

	got := feed.List(userID, false)
	if len(got) != MaxNotifications {
		t.Fatalf("feed has %d entries, want cap %d", len(got), MaxNotifications)
	}
	if got[0].Text != fmt.Sprintf("mensaje %d", MaxNotifications+9) {
		t.Errorf("newest entry = %q, want the last pushed", got[0].Text)
	}
	if got[len(got)-1].Text != "mensaje 10" {
		t.Errorf("oldest surviving entry = %q, want %q", got[len(got)-1].Text, "mensaje 10")
	}
}

func TestNotificationFeed_ListMarksRead(t *testing.T) {
	feed := NewNotificationFeed()
	userID := uuid.New()

	feed.Push(userID, "a")
	feed.Push(userID, "b")

	if got := feed.UnreadCount(userID); got != 2 {
		t.Fatalf("unread = %d, want 2", got)
	}

	// Peeking without markRead leaves the badge alone.
	feed.List(userID, false)
	if got := feed.UnreadCount(userID); got != 2 {
		t.Errorf("unread after peek = %d, want 2", got)
	}

	// Opening the drawer marks everything read in bulk.
	feed.List(userID, true)
	if got := feed.UnreadCount(userID); got != 0 {
		t.Errorf("unread after open = %d, want 0", got)
	}

	// New entries start unread again.
	feed.Push(userID, "c")
	if got := feed.UnreadCount(userID); got != 1 {
		t.Errorf("unread after new push = %d, want 1", got)
	}
}

func TestNotificationFeed_PerUserIsolation(t *testing.T) {
	feed := NewNotificationFeed()
	alice := uuid.New()
	bob := uuid.New()

	feed.Push(alice, "solo para alice")

	if got := feed.List(bob, false); len(got) != 0 {
		t.Errorf("bob sees %d notifications, want 0", len(got))
	}
	if got := feed.UnreadCount(bob); got != 0 {
		t.Errorf("bob unread = %d, want 0", got)
	}
}

func TestProperty_FeedNeverExceedsCap(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("feed length is min(pushes, cap)", prop.ForAll(
		func(pushes int) bool {
			feed := NewNotificationFeed()
			userID := uuid.New()

			for i := 0; i < pushes; i++ {
				feed.Push(userID, fmt.Sprintf("n%d", i))
			}

			want := pushes
			if want > MaxNotifications {
				want = MaxNotifications
			}
			return len(feed.List(userID, false)) == want
		},
		gen.IntRange(0, 200),
	))

	properties.TestingRun(t)
}
