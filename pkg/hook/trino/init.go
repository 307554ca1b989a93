package trino

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
		PackageName: "lasso-providers-trino",
		Name:        "Trino",
		Description: "Distributed SQL query engine for big data",
		Versions:    []string{"1.2.0", "1.1.0", "1.0.0"},
		Hooks:       []string{"github.com/lassohq/lasso/pkg/hook/trino"},
		ConnectionTypes: []provider.ConnectionType{
			{Hook: "trino.Hook", Type: ConnType},
		},
		Dependencies: []string{"github.com/trinodb/trino-go-client"},
	})
}
