package sendgrid

import (
	"context"
	"errors"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassohq/lasso/pkg/connection"
	"github.com/lassohq/lasso/pkg/lassoerrors"
)

type fakeSendClient struct {
	resp     *rest.Response
	err      error
	lastMail *mail.SGMailV3
}

func (f *fakeSendClient) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.lastMail = email
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func newTestHook(t *testing.T, conn *connection.Connection) *Hook {
	t.Helper()
	connection.Clear()
	t.Cleanup(connection.Clear)

	require.NoError(t, connection.Register(conn))
	h, err := NewHook(conn.ID)
	require.NoError(t, err)
	return h
}

func TestSendEmail(t *testing.T) {
	h := newTestHook(t, &connection.Connection{
		ID:       "sendgrid_default",
		Type:     ConnType,
		Password: "SG.key",
	})

	fake := &fakeSendClient{resp: &rest.Response{StatusCode: 202}}
	h.client = fake

	resp, err := h.SendEmail(context.Background(), Email{
		From:      "alerts@example.com",
		FromName:  "Alerts",
		To:        "oncall@example.com",
		Subject:   "disk almost full",
		PlainText: "87% used",
	})
	require.NoError(t, err)
	assert.Equal(t, 202, resp.StatusCode)

	require.NotNil(t, fake.lastMail)
	assert.Equal(t, "alerts@example.com", fake.lastMail.From.Address)
	assert.Equal(t, "Alerts", fake.lastMail.From.Name)
	assert.Equal(t, "disk almost full", fake.lastMail.Subject)
	require.Len(t, fake.lastMail.Personalizations, 1)
	require.Len(t, fake.lastMail.Personalizations[0].To, 1)
	assert.Equal(t, "oncall@example.com", fake.lastMail.Personalizations[0].To[0].Address)
}

func TestSendEmailFromFallsBackToLogin(t *testing.T) {
	h := newTestHook(t, &connection.Connection{
		ID:       "sendgrid_default",
		Type:     ConnType,
		Login:    "noreply@example.com",
		Password: "SG.key",
	})
	fake := &fakeSendClient{resp: &rest.Response{StatusCode: 202}}
	h.client = fake

	_, err := h.SendEmail(context.Background(), Email{To: "a@example.com", Subject: "s"})
	require.NoError(t, err)
	assert.Equal(t, "noreply@example.com", fake.lastMail.From.Address)
}

func TestSendEmailValidation(t *testing.T) {
	h := newTestHook(t, &connection.Connection{
		ID:       "sendgrid_default",
		Type:     ConnType,
		Password: "SG.key",
	})
	h.client = &fakeSendClient{resp: &rest.Response{StatusCode: 202}}

	_, err := h.SendEmail(context.Background(), Email{Subject: "no addresses"})
	require.Error(t, err)
	assert.True(t, lassoerrors.IsType(err, lassoerrors.ErrorTypeValidation))
}

func TestSendEmailRejectedStatus(t *testing.T) {
	h := newTestHook(t, &connection.Connection{
		ID:       "sendgrid_default",
		Type:     ConnType,
		Password: "SG.key",
	})
	h.client = &fakeSendClient{resp: &rest.Response{StatusCode: 401, Body: "unauthorized"}}

	resp, err := h.SendEmail(context.Background(), Email{
		From: "a@example.com",
		To:   "b@example.com",
	})
	require.Error(t, err)
	assert.True(t, lassoerrors.IsType(err, lassoerrors.ErrorTypeRemoteExecution))
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestSendEmailTransportError(t *testing.T) {
	h := newTestHook(t, &connection.Connection{
		ID:       "sendgrid_default",
		Type:     ConnType,
		Password: "SG.key",
	})

	sendErr := errors.New("tls handshake failed")
	h.client = &fakeSendClient{err: sendErr}

	_, err := h.SendEmail(context.Background(), Email{From: "a@x.com", To: "b@x.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sendErr)
}

func TestRunDecodesJSONPayload(t *testing.T) {
	h := newTestHook(t, &connection.Connection{
		ID:       "sendgrid_default",
		Type:     ConnType,
		Password: "SG.key",
	})
	fake := &fakeSendClient{resp: &rest.Response{StatusCode: 202}}
	h.client = fake

	payload := `{"from":"a@example.com","to":"b@example.com","subject":"hello","plain_text":"hi"}`
	_, err := h.Run(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "hello", fake.lastMail.Subject)

	_, err = h.Run(context.Background(), "not json")
	require.Error(t, err)
	assert.True(t, lassoerrors.IsType(err, lassoerrors.ErrorTypeValidation))
}

func TestMissingAPIKey(t *testing.T) {
	h := newTestHook(t, &connection.Connection{
		ID:   "sendgrid_default",
		Type: ConnType,
	})

	_, err := h.SendEmail(context.Background(), Email{From: "a@x.com", To: "b@x.com"})
	require.Error(t, err)
	assert.True(t, lassoerrors.IsType(err, lassoerrors.ErrorTypeConfig))
}

func TestCloseIsIdempotent(t *testing.T) {
	h := newTestHook(t, &connection.Connection{
		ID:       "sendgrid_default",
		Type:     ConnType,
		Password: "SG.key",
	})
	h.client = &fakeSendClient{resp: &rest.Response{StatusCode: 202}}

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	_, err := h.SendEmail(context.Background(), Email{From: "a@x.com", To: "b@x.com"})
	require.Error(t, err)
	assert.True(t, lassoerrors.IsType(err, lassoerrors.ErrorTypeClosed))
}
