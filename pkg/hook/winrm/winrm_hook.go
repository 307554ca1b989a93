// Package winrm provides a hook for Windows Remote Management. It wraps
// masterzen/winrm; commands run on the remote host and their stdout, stderr,
// and exit status come back as the client reports them.
package winrm

import (
	"bytes"
	"context"
	"time"

	gowinrm "github.com/masterzen/winrm"
	"go.uber.org/zap"

	"github.com/lassohq/lasso/pkg/hook/base"
	"github.com/lassohq/lasso/pkg/lassoerrors"
	"github.com/lassohq/lasso/pkg/metrics"
)

const (
	// ConnType is the connection type served by this hook
	ConnType = "winrm"
	// DefaultConnID is the default connection id
	DefaultConnID = "winrm_default"
	// DefaultPort is used when the connection record carries no port
	DefaultPort = 5985
)

// CommandResult carries what the remote command produced.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Hook wraps the winrm client behind the Lasso connector contract. The client
// is created lazily on first use and reused until Close.
type Hook struct {
	*base.BaseHook

	client *gowinrm.Client
}

// NewHook resolves the named connection record and returns a winrm hook.
func NewHook(connID string) (*Hook, error) {
	b, err := base.NewBaseHook(ConnType, connID)
	if err != nil {
		return nil, err
	}
	return &Hook{BaseHook: b}, nil
}

// getClient builds the winrm client on first use and memoizes it.
func (h *Hook) getClient() (*gowinrm.Client, error) {
	if err := h.CheckUsable(); err != nil {
		return nil, err
	}
	if h.client != nil {
		return h.client, nil
	}

	conn := h.Connection()
	useHTTPS := conn.ExtraBool("use_https", false)
	insecure := conn.ExtraBool("insecure", true)
	timeout := time.Duration(conn.ExtraInt("timeout_seconds", 60)) * time.Second

	endpoint := gowinrm.NewEndpoint(
		conn.Host,
		conn.PortOrDefault(DefaultPort),
		useHTTPS,
		insecure,
		nil, // CA cert
		nil, // client cert
		nil, // client key
		timeout,
	)

	client, err := gowinrm.NewClient(endpoint, conn.Login, conn.Password)
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeConnection, "failed to create winrm client").
			WithDetail("host", conn.Host)
	}

	h.GetLogger().Info("winrm client created",
		zap.String("host", conn.Host),
		zap.Int("port", conn.PortOrDefault(DefaultPort)),
		zap.Bool("https", useHTTPS))
	h.GetMetrics().HandleOpened()

	h.client = client
	return h.client, nil
}

// RunCommand executes a command on the remote host and returns its output
// and exit status. A non-zero exit status is not an error; the caller decides
// what it means.
func (h *Hook) RunCommand(ctx context.Context, command string) (*CommandResult, error) {
	client, err := h.getClient()
	if err != nil {
		return nil, err
	}

	h.GetLogger().Info("running remote command", zap.String("command", command))
	timer := metrics.NewTimer("run_command")

	var stdout, stderr bytes.Buffer
	exitCode, err := client.RunWithContext(ctx, command, &stdout, &stderr)
	h.GetMetrics().ObserveCommand("run_command", timer.Stop(), err)
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "remote command failed").
			WithDetail("command", command)
	}

	h.GetLogger().Debug("remote command finished", zap.Int("exit_code", exitCode))

	return &CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}, nil
}

// Run adapts RunCommand to the Runner contract.
func (h *Hook) Run(ctx context.Context, command string) (interface{}, error) {
	return h.RunCommand(ctx, command)
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
