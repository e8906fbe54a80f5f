package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		event   Event
		want    Status
		illegal bool
	}{
		{name: "created pay", from: StatusCreated, event: EventPay, want: StatusPaid},
		{name: "created cancel", from: StatusCreated, event: EventCancel, want: StatusCanceled},
		{name: "created ship", from: StatusCreated, event: EventShip, illegal: true},
		{name: "paid ship", from: StatusPaid, event: EventShip, want: StatusShipped},
		{name: "paid cancel", from: StatusPaid, event: EventCancel, want: StatusCanceled},
		{name: "paid deliver", from: StatusPaid, event: EventDeliver, illegal: true},
		{name: "shipped deliver", from: StatusShipped, event: EventDeliver, want: StatusDelivered},
		{name: "shipped cancel", from: StatusShipped, event: EventCancel, illegal: true},
		{name: "delivered is terminal", from: StatusDelivered, event: EventPay, illegal: true},
		{name: "canceled is terminal", from: StatusCanceled, event: EventPay, illegal: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.from, tt.event)
			if tt.illegal {
				var terr *TransitionError
				require.ErrorAs(t, err, &terr)
				assert.Equal(t, tt.from, terr.From)
				assert.Equal(t, tt.event, terr.Event)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusCreated.Terminal())
	assert.False(t, StatusPaid.Terminal())
	assert.False(t, StatusShipped.Terminal())
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCanceled.Terminal())
}

func TestParseEvent(t *testing.T) {
	for _, valid := range []string{"pay", "ship", "deliver", "cancel"} {
		e, err := ParseEvent(valid)
		require.NoError(t, err)
		assert.Equal(t, Event(valid), e)
	}

	_, err := ParseEvent("refund")
	assert.Error(t, err)

	_, err = ParseEvent("")
	assert.Error(t, err)
}

func TestPaymentCapture(t *testing.T) {
	next, err := PaymentPending.Capture(true)
	require.NoError(t, err)
	assert.Equal(t, PaymentCompleted, next)

	next, err = PaymentPending.Capture(false)
	require.NoError(t, err)
	assert.Equal(t, PaymentFailed, next)

	_, err = PaymentCompleted.Capture(true)
	assert.Error(t, err)

	_, err = PaymentFailed.Capture(false)
	assert.Error(t, err)
}
