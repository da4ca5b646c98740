package order

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"pending", "confirmed", "packed", "dispatched", "delivered", "cancelled"} {
		st, err := ParseStatus(raw)
		require.NoError(t, err)
		require.Equal(t, Status(raw), st)
	}

	for _, raw := range []string{"", "shipped", "out_for_delivery", "PENDING", "done"} {
		_, err := ParseStatus(raw)
		require.ErrorIs(t, err, ErrUnknownStatus, "input %q", raw)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusConfirmed, StatusPacked, true},
		{StatusPacked, StatusDispatched, true},
		{StatusDispatched, StatusDelivered, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusPacked, StatusCancelled, true},
		{StatusDispatched, StatusCancelled, true},

		{StatusPending, StatusPacked, false},
		{StatusPending, StatusDelivered, false},
		{StatusConfirmed, StatusDispatched, false},
		{StatusPacked, StatusDelivered, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusConfirmed, StatusPending, false},
		{StatusConfirmed, StatusConfirmed, false},
	}
	for _, c := range cases {
		require.Equal(t, c.ok, c.from.CanTransition(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestTerminal(t *testing.T) {
	require.True(t, StatusDelivered.Terminal())
	require.True(t, StatusCancelled.Terminal())
	for _, st := range []Status{StatusPending, StatusConfirmed, StatusPacked, StatusDispatched} {
		require.False(t, st.Terminal(), "%s", st)
	}
}
