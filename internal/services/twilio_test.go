package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Ananth-NQI/orderbot/internal/config"
)

type stubMessageCreator struct {
	params *twilioApi.CreateMessageParams
	resp   *twilioApi.ApiV2010Message
	err    error
	calls  int
}

func (s *stubMessageCreator) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	s.calls++
	s.params = params
	return s.resp, s.err
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func TestWhatsAppAddress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "whatsapp:+573001112233", WhatsAppAddress("+573001112233"))
	assert.Equal(t, "whatsapp:+573001112233", WhatsAppAddress("whatsapp:+573001112233"))
	assert.Equal(t, "+573001112233", StripWhatsAppPrefix("whatsapp:+573001112233"))
	assert.Equal(t, "+573001112233", StripWhatsAppPrefix("+573001112233"))
	assert.Equal(t, "+57300", StripWhatsAppPrefix(WhatsAppAddress("+57300")))
}

func TestTwilioService_Send(t *testing.T) {
	t.Parallel()

	stub := &stubMessageCreator{resp: &twilioApi.ApiV2010Message{Sid: strPtr("SM1")}}
	svc := newTwilioService(stub, "+14155238886")

	require.NoError(t, svc.Send(context.Background(), "+573001112233", "hola"))
	require.NotNil(t, stub.params)
	assert.Equal(t, "whatsapp:+14155238886", *stub.params.From)
	assert.Equal(t, "whatsapp:+573001112233", *stub.params.To)
	assert.Equal(t, "hola", *stub.params.Body)
}

func TestTwilioService_SendErrors(t *testing.T) {
	t.Parallel()

	apiErr := errors.New("status 401: authenticate")

	tests := []struct {
		name    string
		resp    *twilioApi.ApiV2010Message
		err     error
		wantErr string
	}{
		{"api error", nil, apiErr, "twilio create message"},
		{"error code", &twilioApi.ApiV2010Message{ErrorCode: intPtr(63016), ErrorMessage: strPtr("outside window")}, nil, "twilio error 63016: outside window"},
		{"error code without message", &twilioApi.ApiV2010Message{ErrorCode: intPtr(30003)}, nil, "twilio error 30003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTwilioService(&stubMessageCreator{resp: tt.resp, err: tt.err}, "whatsapp:+14155238886")
			err := svc.Send(context.Background(), "+57300", "hola")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}

	ok := &twilioApi.ApiV2010Message{ErrorCode: intPtr(0)}
	assert.NoError(t, newTwilioService(&stubMessageCreator{resp: ok}, "+1").Send(context.Background(), "+57300", "hola"))
}

func TestTwilioService_SendCanceled(t *testing.T) {
	t.Parallel()

	stub := &stubMessageCreator{}
	svc := newTwilioService(stub, "+14155238886")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, svc.Send(ctx, "+57300", "hola"), context.Canceled)
	assert.Zero(t, stub.calls)
}

func TestNewTwilioService_RequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewTwilioService(config.TwilioConfig{AccountSID: "AC1", AuthToken: "tok"})
	assert.Error(t, err)

	svc, err := NewTwilioService(config.TwilioConfig{AccountSID: "AC1", AuthToken: "tok", WhatsAppFrom: "+14155238886"})
	require.NoError(t, err)
	assert.Equal(t, "whatsapp:+14155238886", svc.from)
}
