package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"

	"resume-builder/core"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	mu        sync.Mutex
	published []amqp.Publishing
	exchanges []string
	fail      error
	closed    bool
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	c.exchanges = append(c.exchanges, exchange)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func TestPublisher_PublishesInOrder(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "resume.events")

	p.Publish("u1", &core.Document{Personal: core.Personal{Name: "first"}})
	p.Publish("u1", &core.Document{Personal: core.Personal{Name: "second"}})
	require.NoError(t, p.Close())

	require.Len(t, ch.published, 2)
	assert.Equal(t, []string{"resume.events", "resume.events"}, ch.exchanges)
	assert.True(t, ch.closed)

	var ev Event
	require.NoError(t, json.Unmarshal(ch.published[1].Body, &ev))
	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, "second", ev.Document.Personal.Name)
	assert.False(t, ev.OccurredAt.IsZero())
	assert.Equal(t, "application/json", ch.published[1].ContentType)
}

func TestPublisher_FailuresAreAbsorbed(t *testing.T) {
	ch := &fakeChannel{fail: errors.New("broker gone")}
	p := newPublisher(ch, "resume.events")

	p.Publish("u1", &core.Document{})
	assert.NoError(t, p.Close())
	assert.Empty(t, ch.published)
}

func TestPublisher_CloseIsIdempotent(t *testing.T) {
	p := newPublisher(&fakeChannel{}, "resume.events")
	require.NoError(t, p.Close())
	assert.NoError(t, p.Close())
}

func TestDial_Integration(t *testing.T) {
	url := os.Getenv("TEST_AMQP_URL")
	if url == "" {
		t.Skip("TEST_AMQP_URL not set")
	}
	p, err := Dial(url, "resume.events.test")
	require.NoError(t, err)
	p.Publish("u1", &core.Document{})
	assert.NoError(t, p.Close())
}
