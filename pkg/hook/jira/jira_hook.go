// Package jira provides a hook for Atlassian Jira. It wraps
// andygrunwald/go-jira; calls forward to the client and results come back as
// the client returns them.
package jira

import (
	"context"
	"fmt"

	gojira "github.com/andygrunwald/go-jira"
	"go.uber.org/zap"

	"github.com/lassohq/lasso/pkg/hook/base"
	"github.com/lassohq/lasso/pkg/lassoerrors"
	"github.com/lassohq/lasso/pkg/metrics"
)

const (
	// ConnType is the connection type served by this hook
	ConnType = "jira"
	// DefaultConnID is the default connection id
	DefaultConnID = "jira_default"
)

// Hook wraps the go-jira client behind the Lasso connector contract. The
// client is created lazily on first use and reused until Close.
type Hook struct {
	*base.BaseHook

	client *gojira.Client
}

// NewHook resolves the named connection record and returns a jira hook.
func NewHook(connID string) (*Hook, error) {
	b, err := base.NewBaseHook(ConnType, connID)
	if err != nil {
		return nil, err
	}
	return &Hook{BaseHook: b}, nil
}

// baseURL builds the Jira server URL from the connection record. The schema
// field holds the protocol, defaulting to https.
func (h *Hook) baseURL() string {
	conn := h.Connection()
	protocol := conn.Schema
	if protocol == "" {
		protocol = "https"
	}
	if conn.Port > 0 {
		return fmt.Sprintf("%s://%s:%d", protocol, conn.Host, conn.Port)
	}
	return fmt.Sprintf("%s://%s", protocol, conn.Host)
}

// getClient builds the Jira client on first use and memoizes it.
func (h *Hook) getClient() (*gojira.Client, error) {
	if err := h.CheckUsable(); err != nil {
		return nil, err
	}
	if h.client != nil {
		return h.client, nil
	}

	conn := h.Connection()
	transport := gojira.BasicAuthTransport{
		Username: conn.Login,
		Password: conn.Password,
	}

	client, err := gojira.NewClient(transport.Client(), h.baseURL())
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeConnection, "failed to create jira client").
			WithDetail("url", h.baseURL())
	}

	h.GetLogger().Info("jira client created", zap.String("url", h.baseURL()))
	h.GetMetrics().HandleOpened()

	h.client = client
	return h.client, nil
}

// Run submits a JQL search and returns the client's issues unmodified.
func (h *Hook) Run(ctx context.Context, jql string) (interface{}, error) {
	client, err := h.getClient()
	if err != nil {
		return nil, err
	}

	h.GetLogger().Info("searching issues", zap.String("jql", jql))
	timer := metrics.NewTimer("search")

	issues, _, err := client.Issue.SearchWithContext(ctx, jql, nil)
	h.GetMetrics().ObserveCommand("search", timer.Stop(), err)
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "jql search failed").
			WithDetail("jql", jql)
	}

	return issues, nil
}

// GetIssue fetches a single issue by key.
func (h *Hook) GetIssue(ctx context.Context, key string) (*gojira.Issue, error) {
	client, err := h.getClient()
	if err != nil {
		return nil, err
	}

	timer := metrics.NewTimer("get_issue")
	issue, _, err := client.Issue.GetWithContext(ctx, key, nil)
	h.GetMetrics().ObserveCommand("get_issue", timer.Stop(), err)
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "failed to get issue").
			WithDetail("key", key)
	}

	return issue, nil
}

// CreateIssue creates an issue and returns it as the client returned it.
func (h *Hook) CreateIssue(ctx context.Context, issue *gojira.Issue) (*gojira.Issue, error) {
	client, err := h.getClient()
	if err != nil {
		return nil, err
	}

	timer := metrics.NewTimer("create_issue")
	created, _, err := client.Issue.CreateWithContext(ctx, issue)
	h.GetMetrics().ObserveCommand("create_issue", timer.Stop(), err)
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "failed to create issue")
	}

	h.GetLogger().Info("issue created", zap.String("key", created.Key))
	return created, nil
}

// AddComment adds a comment to an issue.
func (h *Hook) AddComment(ctx context.Context, issueID, body string) (*gojira.Comment, error) {
	client, err := h.getClient()
	if err != nil {
		return nil, err
	}

	timer := metrics.NewTimer("add_comment")
	comment, _, err := client.Issue.AddCommentWithContext(ctx, issueID, &gojira.Comment{Body: body})
	h.GetMetrics().ObserveCommand("add_comment", timer.Stop(), err)
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "failed to add comment").
			WithDetail("issue", issueID)
	}

	return comment, nil
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
