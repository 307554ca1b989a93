package http

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
		PackageName: "lasso-providers-http",
		Name:        "Hypertext Transfer Protocol (HTTP)",
		Description: "Plain HTTP endpoints",
		Versions:    []string{"1.4.0", "1.3.0", "1.2.0", "1.1.0", "1.0.0"},
		Hooks:       []string{"github.com/lassohq/lasso/pkg/hook/http"},
		ConnectionTypes: []provider.ConnectionType{
			{Hook: "http.Hook", Type: ConnType},
		},
		Dependencies: []string{"github.com/go-resty/resty/v2"},
	})
}
