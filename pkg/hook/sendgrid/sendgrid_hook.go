// Package sendgrid provides a hook for sending transactional email through
// the SendGrid v3 API. The API key comes from the connection record's
// password field.
package sendgrid

import (
	"context"

	gojson "github.com/goccy/go-json"
	"github.com/sendgrid/rest"
	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/lassohq/lasso/pkg/hook/base"
	"github.com/lassohq/lasso/pkg/lassoerrors"
	"github.com/lassohq/lasso/pkg/metrics"
)

const (
	// ConnType is the connection type served by this hook
	ConnType = "sendgrid"
	// DefaultConnID is the default connection id
	DefaultConnID = "sendgrid_default"
)

// Email is a single outbound message. From falls back to the connection's
// login when empty.
type Email struct {
	From      string `json:"from"`
	FromName  string `json:"from_name,omitempty"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	PlainText string `json:"plain_text,omitempty"`
	HTML      string `json:"html,omitempty"`
}

// sendClient is the slice of the sendgrid client the hook uses. Tests swap
// in a fake.
type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Hook sends mail through SendGrid behind the Lasso connector contract.
type Hook struct {
	*base.BaseHook

	client sendClient
}

// NewHook resolves the named connection record and returns a sendgrid hook.
func NewHook(connID string) (*Hook, error) {
	b, err := base.NewBaseHook(ConnType, connID)
	if err != nil {
		return nil, err
	}
	return &Hook{BaseHook: b}, nil
}

func (h *Hook) getClient() (sendClient, error) {
	if err := h.CheckUsable(); err != nil {
		return nil, err
	}
	if h.client != nil {
		return h.client, nil
	}

	conn := h.Connection()
	if conn.Password == "" {
		return nil, lassoerrors.New(lassoerrors.ErrorTypeConfig, "sendgrid connection has no API key").
			WithDetail("conn_id", h.ConnID())
	}

	h.GetLogger().Info("sendgrid client created")
	h.GetMetrics().HandleOpened()

	h.client = sg.NewSendClient(conn.Password)
	return h.client, nil
}

// SendEmail delivers one message. The response status is checked; SendGrid
// answers 2xx on acceptance.
func (h *Hook) SendEmail(ctx context.Context, email Email) (*rest.Response, error) {
	client, err := h.getClient()
	if err != nil {
		return nil, err
	}

	from := email.From
	if from == "" {
		from = h.Connection().Login
	}
	if from == "" || email.To == "" {
		return nil, lassoerrors.New(lassoerrors.ErrorTypeValidation, "email requires from and to addresses")
	}

	msg := mail.NewSingleEmail(
		mail.NewEmail(email.FromName, from),
		email.Subject,
		mail.NewEmail("", email.To),
		email.PlainText,
		email.HTML,
	)

	h.GetLogger().Info("sending email",
		zap.String("to", email.To),
		zap.String("subject", email.Subject))
	timer := metrics.NewTimer("send_email")

	resp, err := client.SendWithContext(ctx, msg)
	h.GetMetrics().ObserveCommand("send_email", timer.Stop(), err)
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "sendgrid send failed").
			WithDetail("to", email.To)
	}
	if resp.StatusCode >= 300 {
		return resp, lassoerrors.New(lassoerrors.ErrorTypeRemoteExecution, "sendgrid rejected the message").
			WithDetail("status_code", resp.StatusCode).
			WithDetail("body", resp.Body)
	}

	h.GetLogger().Debug("email accepted", zap.Int("status_code", resp.StatusCode))
	return resp, nil
}

// Run adapts SendEmail to the Runner contract: the command is a JSON-encoded
// Email.
func (h *Hook) Run(ctx context.Context, command string) (interface{}, error) {
	var email Email
	if err := gojson.Unmarshal([]byte(command), &email); err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeValidation, "command is not a valid email payload")
	}
	return h.SendEmail(ctx, email)
}

// Close releases the client. Safe to call more than once.
func (h *Hook) Close() error {
	return h.CloseOnce(func() error {
		if h.client != nil {
			h.client = nil
			h.GetMetrics().HandleClosed()
		}
		return nil
	})
}
