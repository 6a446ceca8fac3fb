package events

import (
	"testing"

	"github.com/vidyasagar/wikisurf/internal/zero"
)

func TestTopicDeliversInOrder(t *testing.T) {
	t.Parallel()

	var topic Topic[string]
	var got []string
	topic.Subscribe(func(s string) { got = append(got, "a:"+s) })
	topic.Subscribe(func(s string) { got = append(got, "b:"+s) })

	topic.Publish("dark")

	if len(got) != 2 || got[0] != "a:dark" || got[1] != "b:dark" {
		t.Errorf("delivered %v", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	t.Parallel()

	var topic Topic[int]
	var a, b int
	unsubA := topic.Subscribe(func(n int) { a += n })
	topic.Subscribe(func(n int) { b += n })

	unsubA()
	unsubA()
	topic.Publish(2)

	if a != 0 || b != 2 {
		t.Errorf("a = %d, b = %d", a, b)
	}
	if topic.Len() != 1 {
		t.Errorf("Len() = %d, want 1", topic.Len())
	}
}

func TestUnsubscribeDuringPublish(t *testing.T) {
	t.Parallel()

	var topic Topic[int]
	calls := 0
	var unsub func()
	unsub = topic.Subscribe(func(int) {
		calls++
		unsub()
	})

	topic.Publish(1)
	topic.Publish(1)

	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}
}

func TestBusZeroTopic(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var got zero.Notice
	release := bus.Zero.Subscribe(func(n zero.Notice) { got = n })
	defer release()

	bus.Zero.Publish(zero.Notice{Kind: zero.NoticeCharged})
	if got.Kind != zero.NoticeCharged {
		t.Errorf("notice = %+v", got)
	}
}
