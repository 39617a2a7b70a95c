package panel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_Transitions(t *testing.T) {
	b := NewBoard()
	assert.Equal(t, StatusIdle, b.Get(Admin).Status)

	b.SetLoading(Admin)
	assert.Equal(t, StatusLoading, b.Get(Admin).Status)

	b.SetContent(Admin, "x")
	assert.Equal(t, State{Status: StatusContent, Content: "x"}, b.Get(Admin))

	b.SetEmpty(Nature)
	assert.Equal(t, "Ingen verneområder i nærheten", b.Get(Nature).Message)

	b.SetError(Hydro, "")
	assert.Equal(t, DefaultErrorMessage, b.Get(Hydro).Message)

	snap := b.Snapshot()
	assert.Len(t, snap, len(All))
	assert.Equal(t, StatusError, snap[Hydro].Status)
}

func TestBoard_WaitSettled(t *testing.T) {
	b := NewBoard()
	for _, id := range All {
		b.SetLoading(id)
	}

	done := make(chan error, 1)
	go func() { done <- b.WaitSettled(context.Background()) }()

	for _, id := range All[:len(All)-1] {
		b.SetEmpty(id)
	}
	select {
	case <-done:
		t.Fatal("WaitSettled returned while a panel was still loading")
	case <-time.After(20 * time.Millisecond):
	}

	b.SetError(All[len(All)-1], "boom")
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("WaitSettled did not return")
	}
}

func TestBoard_WaitSettledContext(t *testing.T) {
	b := NewBoard()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, b.WaitSettled(ctx), context.DeadlineExceeded)
}

func TestChannelSinkAndMulti(t *testing.T) {
	ch := NewChannelSink(8)
	board := NewBoard()
	sink := Multi{board, ch}

	sink.SetLoading(Sun)
	sink.SetContent(Sun, 42)
	sink.SetError(Weather, "Forecast request failed: HTTP 500")
	sink.SetEmpty(Business)

	want := []Event{
		{Panel: Sun, State: State{Status: StatusLoading}},
		{Panel: Sun, State: State{Status: StatusContent, Content: 42}},
		{Panel: Weather, State: State{Status: StatusError, Message: "Forecast request failed: HTTP 500"}},
		{Panel: Business, State: State{Status: StatusEmpty, Message: "Ingen registrerte virksomheter"}},
	}
	for _, w := range want {
		assert.Equal(t, w, <-ch.Events())
	}
	assert.Equal(t, 42, board.Get(Sun).Content)
}

func TestIDNames(t *testing.T) {
	assert.Equal(t, "placenames", PlaceNames.String())
	assert.Equal(t, "Næringsliv", Business.Title())
	assert.Equal(t, "unknown", ID(99).String())
	assert.True(t, StatusEmpty.Settled())
	assert.False(t, StatusLoading.Settled())
	assert.Equal(t, "content", StatusContent.String())
}
