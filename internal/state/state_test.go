package state

import "testing"

func TestClassifyPush(t *testing.T) {
	cases := map[string]PushKind{
		"message":      Message,
		"PMESSAGE":     PMessage,
		"subscribe":    Subscribe,
		"psubscribe":   PSubscribe,
		"unsubscribe":  Unsubscribe,
		"PUnsubscribe": PUnsubscribe,
		"GET":          NotPush,
	}
	for in, want := range cases {
		if got := ClassifyPush(in); got != want {
			t.Errorf("ClassifyPush(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestModeUpdate(t *testing.T) {
	var m Mode
	if m.IsPubSub() {
		t.Fatal("fresh mode must not be pubsub")
	}
	m = m.Update("GET")
	if m.IsPubSub() {
		t.Fatal("GET must not flip pubsub mode")
	}
	m = m.Update("SUBSCRIBE")
	if !m.IsPubSub() {
		t.Fatal("SUBSCRIBE must flip pubsub mode")
	}
}

func TestIsSubscribeAck(t *testing.T) {
	for _, k := range []PushKind{Subscribe, PSubscribe, Unsubscribe, PUnsubscribe} {
		if !k.IsSubscribeAck() {
			t.Errorf("%v should be a subscribe ack", k)
		}
	}
	if Message.IsSubscribeAck() {
		t.Fatal("message must not be a subscribe ack")
	}
}
