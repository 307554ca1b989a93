package jira

import (
	"github.com/lassohq/lasso/pkg/hook"
	"github.com/lassohq/lasso/pkg/hook/registry"
	"github.com/lassohq/lasso/pkg/provider"
)

func init() {
	registry.Register(ConnType, func(connID string) (hook.Hook, error) {
		return NewHook(connID)
	})

	provider.Register(&provider.Info{
		PackageName: "lasso-providers-jira",
		Name:        "Atlassian Jira",
		Description: "Atlassian Jira issue tracking",
		Versions:    []string{"1.2.1", "1.2.0", "1.1.0", "1.0.0"},
		Hooks:       []string{"github.com/lassohq/lasso/pkg/hook/jira"},
		ConnectionTypes: []provider.ConnectionType{
			{Hook: "jira.Hook", Type: ConnType},
		},
		Dependencies: []string{"github.com/andygrunwald/go-jira"},
	})
}
