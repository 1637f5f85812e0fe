package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMessages = Messages{
	Pending: "Working...",
	Success: "Done",
	Error:   WithPrefix("Failed"),
}

func TestPromiseSuccess(t *testing.T) {
	rec := NewRecorder()
	ran := false

	err := Promise(context.Background(), rec, testMessages, func(ctx context.Context) error {
		// pending must already be visible when the operation starts
		require.Len(t, rec.Events(), 1)
		assert.Equal(t, LevelLoading, rec.Events()[0].Level)
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, []Event{
		{Level: LevelLoading, Message: "Working...", Replaced: -1},
		{Level: LevelSuccess, Message: "Done", Replaced: 0},
	}, rec.Events())
}

func TestPromiseError(t *testing.T) {
	rec := NewRecorder()
	boom := errors.New("template malformed")

	err := Promise(context.Background(), rec, testMessages, func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []Event{
		{Level: LevelLoading, Message: "Working...", Replaced: -1},
		{Level: LevelError, Message: "Failed: template malformed", Replaced: 0},
	}, rec.Events())
}

func TestPromiseRecoversPanic(t *testing.T) {
	rec := NewRecorder()

	err := Promise(context.Background(), rec, testMessages, func(ctx context.Context) error {
		panic("generator exploded")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "generator exploded")
	assert.Equal(t, 1, rec.Count(LevelLoading))
	assert.Equal(t, 1, rec.Count(LevelError))
	assert.Equal(t, 0, rec.Count(LevelSuccess))
}

func TestPromiseDefaultErrorMessage(t *testing.T) {
	rec := NewRecorder()

	_ = Promise(context.Background(), rec, Messages{Pending: "p", Success: "s"}, func(ctx context.Context) error {
		return errors.New("plain")
	})

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "plain", events[1].Message)
}

func TestLogSinkSatisfiesSink(t *testing.T) {
	var s Sink = LogSink{Prefix: "test "}
	s.Info("info")
	p := s.Loading("loading")
	p.Success("ok")
}

func TestGuard(t *testing.T) {
	boom := errors.New("pool closed")

	assert.NoError(t, Guard(context.Background(), func(ctx context.Context) error { return nil }))
	assert.ErrorIs(t, Guard(context.Background(), func(ctx context.Context) error { return boom }), boom)

	var err error
	require.NotPanics(t, func() {
		err = Guard(context.Background(), func(ctx context.Context) error { panic("pool closed") })
	})
	require.Error(t, err)
	assert.Equal(t, "internal error: pool closed", err.Error())
}
