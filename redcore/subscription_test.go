package redcore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gomodule/redcore/internal/state"
)

func TestSubscriptionsApplyAckTracksChannelsAndPatterns(t *testing.T) {
	s := newSubscriptions()
	s.applyAck(state.Subscribe, "news")
	s.applyAck(state.PSubscribe, "news.*")

	channels, patterns := s.snapshot()
	assert.ElementsMatch(t, []string{"news"}, channels)
	assert.ElementsMatch(t, []string{"news.*"}, patterns)

	s.applyAck(state.Unsubscribe, "news")
	channels, _ = s.snapshot()
	assert.Empty(t, channels)
}

func TestSubscriptionsDispatchRoutesMessagesToListener(t *testing.T) {
	s := newSubscriptions()
	var got []Message
	s.setListener(func(m Message) { got = append(got, m) })

	s.dispatch(state.Message, []string{"news"}, []byte("hello"))
	s.dispatch(state.PMessage, []string{"news.*", "news.sports"}, []byte("score"))

	assert.Equal(t, []Message{
		{Channel: "news", Data: []byte("hello")},
		{Pattern: "news.*", Channel: "news.sports", Data: []byte("score")},
	}, got)
}

func TestSubscriptionsDispatchNoopWithoutListener(t *testing.T) {
	s := newSubscriptions()
	s.dispatch(state.Message, []string{"news"}, []byte("hello"))
}

func TestSubscriptionsCount(t *testing.T) {
	s := newSubscriptions()
	s.applyAck(state.Subscribe, "a")
	s.applyAck(state.Subscribe, "b")
	s.applyAck(state.PSubscribe, "c.*")

	channels, patterns := s.count()
	assert.Equal(t, 2, channels)
	assert.Equal(t, 1, patterns)
}
