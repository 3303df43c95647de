package eventbus

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/staff-console/pkg/logging"
)

type args struct {
	data any
}

func bufferedLogger(level logrus.Level) (*logrus.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(buf)
	log.SetLevel(level)
	return log, buf
}

func TestPublisher_Publish(t *testing.T) {
	type other struct{}
	log, buf := bufferedLogger(logrus.WarnLevel)
	publisher := NewEventPublisher(log)
	publisher.Subscribe(func(e *args) {
		t.Error("should not be called")
	})
	publisher.Publish(&other{})

	require.Contains(t, buf.String(), "eventbus.Publish: no matching subscribers")
}

func TestPublisher_Subscribe(t *testing.T) {
	publisher := NewEventPublisher(logging.ConsoleLogger(logrus.WarnLevel))
	var data any
	publisher.Subscribe(func(e *args) {
		data = e.data
	})
	publisher.Publish(&args{data: "test"})
	require.Equal(t, "test", data)
}

func TestPublisher_Unsubscribe(t *testing.T) {
	publisher := NewEventPublisher(nil)
	calls := 0
	unsubscribe := publisher.Subscribe(func(e *args) { calls++ })
	publisher.Subscribe(func(e *args) {})
	require.Equal(t, 2, publisher.SubscribersCount())

	unsubscribe()
	unsubscribe()
	publisher.Publish(&args{})

	require.Equal(t, 1, publisher.SubscribersCount())
	require.Zero(t, calls)
}

func TestMatchSignature(t *testing.T) {
	type args2 struct{}
	require.True(t, MatchSignature(func(e *args) {}, []any{&args{}}))
	require.False(t, MatchSignature(func(e *args) {}, []any{&args2{}}))
	require.False(t, MatchSignature(func(e *args) {}, []any{}))
	require.False(t, MatchSignature(func(e *args) {}, []any{&args{}, &args{}}))
	require.True(t, MatchSignature(func(ctx context.Context) {}, []any{context.Background()}))
	require.True(t, MatchSignature(func(e *args) {}, []any{nil}))
	require.False(t, MatchSignature("not a func", []any{}))
}

func TestPublisher_PanicRecovery(t *testing.T) {
	t.Run("other handlers still run", func(t *testing.T) {
		log, buf := bufferedLogger(logrus.ErrorLevel)
		publisher := NewEventPublisher(log)
		called := 0
		publisher.Subscribe(func(e *args) { called++ })
		publisher.Subscribe(func(e *args) { panic("intentional panic for testing") })
		publisher.Subscribe(func(e *args) { called++ })

		publisher.Publish(&args{data: "test"})

		require.Equal(t, 2, called)
		require.Contains(t, buf.String(), "panicked")
		require.Contains(t, buf.String(), "intentional panic for testing")
	})

	t.Run("warns when every handler panics", func(t *testing.T) {
		log, buf := bufferedLogger(logrus.WarnLevel)
		publisher := NewEventPublisher(log)
		publisher.Subscribe(func(e *args) { panic("always") })

		publisher.Publish(&args{})

		require.Contains(t, buf.String(), "no matching subscribers")
	})
}

func TestPublisher_PublishE(t *testing.T) {
	t.Run("no subscribers", func(t *testing.T) {
		err := NewEventPublisher(nil).PublishE(&args{})
		require.ErrorIs(t, err, ErrNoSubscribers)
	})

	t.Run("joins handler errors", func(t *testing.T) {
		publisher := NewEventPublisher(nil)
		err1 := errors.New("err1")
		err2 := errors.New("err2")
		publisher.Subscribe(func(e *args) error { return err1 })
		publisher.Subscribe(func(e *args) error { return err2 })

		err := publisher.PublishE(&args{})
		require.ErrorIs(t, err, err1)
		require.ErrorIs(t, err, err2)
	})

	t.Run("panic surfaces as error", func(t *testing.T) {
		publisher := NewEventPublisher(nil)
		called := false
		publisher.Subscribe(func(e *args) error { panic("boom") })
		publisher.Subscribe(func(e *args) error { called = true; return nil })

		require.Error(t, publisher.PublishE(&args{}))
		require.True(t, called)
	})

	t.Run("invalid return signature", func(t *testing.T) {
		publisher := NewEventPublisher(nil)
		publisher.Subscribe(func(e *args) int { return 1 })
		require.ErrorIs(t, publisher.PublishE(&args{}), ErrInvalidHandlerReturn)
	})
}
