package coordbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSendAndReceiveFIFO(t *testing.T) {
	b := New[int]("test", 4)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		require.NoError(t, b.Send(ctx, i))
	}
	for i := 0; i < 4; i++ {
		require.Equal(t, i, <-b.C())
	}
}

func TestSendDropsOnContextDeadline(t *testing.T) {
	b := New[int]("test", 1)
	require.NoError(t, b.Send(context.Background(), 1)) // fills the single slot

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := b.Send(ctx, 2)
	require.Error(t, err)
}

func TestCloseUnblocksPendingSend(t *testing.T) {
	b := New[int]("test", 1)
	require.NoError(t, b.Send(context.Background(), 1))

	done := make(chan error, 1)
	go func() {
		done <- b.Send(context.Background(), 2)
	}()
	time.Sleep(5 * time.Millisecond)
	b.Close()
	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("Send did not unblock after Close")
	}
}
