package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/abgdnv/storefront/internal/analytics"
	"github.com/stretchr/testify/mock"
)

type mockAckableMsg struct {
	mock.Mock
}

func (m *mockAckableMsg) Data() []byte {
	args := m.Called()
	return args.Get(0).([]byte)
}

func (m *mockAckableMsg) Subject() string {
	return analytics.ProductChangedSubject
}

func (m *mockAckableMsg) Ack() error {
	args := m.Called()
	return args.Error(0)
}

func (m *mockAckableMsg) Term() error {
	args := m.Called()
	return args.Error(0)
}

type mockWarmer struct {
	mock.Mock
}

func (m *mockWarmer) Warm(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func Test_handleMessage(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	validPayload, _ := json.Marshal(analytics.NewProductChanged(analytics.ProductUpdated, "4", time.Now()))

	testCases := []struct {
		name       string
		newMockMsg func() *mockAckableMsg
		warmErr    error
		wantWarm   bool
	}{
		{
			name: "valid message",
			newMockMsg: func() *mockAckableMsg {
				msg := new(mockAckableMsg)
				msg.On("Data").Return(validPayload).Times(1)
				msg.On("Ack").Return(nil).Times(1)
				return msg
			},
			wantWarm: true,
		},
		{
			name: "warm failure still acks",
			newMockMsg: func() *mockAckableMsg {
				msg := new(mockAckableMsg)
				msg.On("Data").Return(validPayload).Times(1)
				msg.On("Ack").Return(nil).Times(1)
				return msg
			},
			warmErr:  errors.New("catalog unavailable"),
			wantWarm: true,
		},
		{
			name: "invalid message",
			newMockMsg: func() *mockAckableMsg {
				msg := new(mockAckableMsg)
				msg.On("Data").Return([]byte("invalid data")).Times(1)
				msg.On("Term").Return(nil).Times(1)
				return msg
			},
		},
		{
			name: "message without product id",
			newMockMsg: func() *mockAckableMsg {
				msg := new(mockAckableMsg)
				msg.On("Data").Return([]byte(`{"action":"updated"}`)).Times(1)
				msg.On("Term").Return(nil).Times(1)
				return msg
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mockMsg := tc.newMockMsg()
			warmer := new(mockWarmer)
			if tc.wantWarm {
				warmer.On("Warm", mock.Anything).Return(tc.warmErr).Times(1)
			}

			// when
			handleMessage(context.Background(), mockMsg, warmer, logger)

			// then
			mockMsg.AssertExpectations(t)
			warmer.AssertExpectations(t)
		})
	}
}
