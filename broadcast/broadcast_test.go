package broadcast

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sig-0/exchbot/storage/types"
)

type sendDelegate func(context.Context, int64, string) error

type mockSender struct {
	sendFn sendDelegate
}

func (m *mockSender) Send(ctx context.Context, userID int64, message string) error {
	if m.sendFn != nil {
		return m.sendFn(ctx, userID, message)
	}

	return nil
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Parallel()

	t.Run("no recipients", func(t *testing.T) {
		t.Parallel()

		d := NewDispatcher(&mockSender{})

		report := d.Dispatch(context.Background(), "hello", nil)

		assert.Zero(t, report.Delivered)
		assert.Zero(t, report.Failed)
	})

	t.Run("all delivered", func(t *testing.T) {
		t.Parallel()

		var delivered []int64

		sender := &mockSender{
			sendFn: func(_ context.Context, userID int64, message string) error {
				assert.Equal(t, "rates updated", message)

				delivered = append(delivered, userID)

				return nil
			},
		}

		var (
			d = NewDispatcher(sender)

			recipients = []types.User{
				{ID: 1},
				{ID: 2},
				{ID: 3},
			}
		)

		report := d.Dispatch(context.Background(), "rates updated", recipients)

		assert.Equal(t, 3, report.Delivered)
		assert.Zero(t, report.Failed)

		assert.Equal(t, []int64{1, 2, 3}, delivered)
	})

	t.Run("failure isolated per recipient", func(t *testing.T) {
		t.Parallel()

		var delivered []int64

		sender := &mockSender{
			sendFn: func(_ context.Context, userID int64, _ string) error {
				if userID == 2 {
					return errors.New("blocked by user")
				}

				delivered = append(delivered, userID)

				return nil
			},
		}

		var (
			d = NewDispatcher(sender)

			recipients = []types.User{
				{ID: 1},
				{ID: 2},
				{ID: 3},
			}
		)

		report := d.Dispatch(context.Background(), "hello", recipients)

		assert.Equal(t, 2, report.Delivered)
		assert.Equal(t, 1, report.Failed)

		// Recipients after the failing one still get the message
		assert.Equal(t, []int64{1, 3}, delivered)
	})
}
