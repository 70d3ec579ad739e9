package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusPublishDeliversToSubscribers(t *testing.T) {
	bus := NewBus[string]()
	var received []string
	bus.Subscribe(func(s string) { received = append(received, s) })

	bus.Publish("hello")
	assert.Equal(t, []string{"hello"}, received)
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus[int]()
	var count int
	unsubscribe := bus.Subscribe(func(int) { count++ })

	bus.Publish(1)
	unsubscribe()
	bus.Publish(2)

	assert.Equal(t, 1, count)
}
