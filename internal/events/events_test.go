package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "accountbook/internal/log"
)

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(bool) error {
	f.acked = true
	return nil
}

func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func TestDecode(t *testing.T) {
	body, err := json.Marshal(New(TransactionDeleted, 5, 9))
	require.NoError(t, err)

	event, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, TransactionDeleted, event.Event)
	assert.Equal(t, uint(5), event.TransactionID)
	assert.Equal(t, uint(9), event.UserID)
	assert.False(t, event.At.IsZero())

	_, err = Decode([]byte(`{"event":"account.closed"}`))
	assert.Error(t, err)
	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	body, _ := json.Marshal(New(TransactionCreated, 1, 2))

	t.Run("ack on success", func(t *testing.T) {
		ack := &fakeAck{}
		var got Event
		dispatch(ctx, applog.Nop(), body, ack, func(_ context.Context, e Event) error {
			got = e
			return nil
		})
		assert.True(t, ack.acked)
		assert.Equal(t, TransactionCreated, got.Event)
	})

	t.Run("requeue on handler failure", func(t *testing.T) {
		ack := &fakeAck{}
		dispatch(ctx, applog.Nop(), body, ack, func(context.Context, Event) error {
			return errors.New("disk full")
		})
		assert.True(t, ack.nacked)
		assert.True(t, ack.requeued)
	})

	t.Run("drop malformed", func(t *testing.T) {
		ack := &fakeAck{}
		called := false
		dispatch(ctx, applog.Nop(), []byte("{"), ack, func(context.Context, Event) error {
			called = true
			return nil
		})
		assert.False(t, called)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeued)
	})
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Publish(context.Background(), New(TransactionUpdated, 1, 1)))
}
