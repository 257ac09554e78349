package broker

import (
	"context"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestKafkaMessage(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := kafkaMessage("dish-1", []byte(`{"event_type":"dish.created"}`), at)

	assert.Equal(t, []byte("dish-1"), msg.Key)
	assert.JSONEq(t, `{"event_type":"dish.created"}`, string(msg.Value))
	assert.Equal(t, at, msg.Time)
	assert.Empty(t, msg.Topic, "the writer owns the topic")
}

func TestRabbitPublishing(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	pub := rabbitPublishing("cat-1", []byte(`{}`), at)

	assert.Equal(t, amqp.Persistent, pub.DeliveryMode)
	assert.Equal(t, "application/json", pub.ContentType)
	assert.Equal(t, "cat-1", pub.Headers["x-key"])
	assert.Equal(t, []byte(`{}`), pub.Body)
	assert.Equal(t, at, pub.Timestamp)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), "k", []byte("v")))
	assert.NoError(t, p.Close())
}
