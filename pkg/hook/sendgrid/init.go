package sendgrid

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
		PackageName: "lasso-providers-sendgrid",
		Name:        "SendGrid",
		Description: "Transactional email via the SendGrid v3 API",
		Versions:    []string{"1.0.1", "1.0.0"},
		Hooks:       []string{"github.com/lassohq/lasso/pkg/hook/sendgrid"},
		ConnectionTypes: []provider.ConnectionType{
			{Hook: "sendgrid.Hook", Type: ConnType},
		},
		Dependencies: []string{"github.com/sendgrid/sendgrid-go"},
	})
}
