package gremlin

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
		PackageName: "lasso-providers-gremlin",
		Name:        "Apache TinkerPop Gremlin",
		Description: "Graph traversal over websockets via the Gremlin protocol, including Azure Cosmos DB's Gremlin API",
		Versions:    []string{"1.1.0", "1.0.0"},
		Hooks:       []string{"github.com/lassohq/lasso/pkg/hook/gremlin"},
		ConnectionTypes: []provider.ConnectionType{
			{Hook: "gremlin.Hook", Type: ConnType},
		},
		Dependencies: []string{"github.com/apache/tinkerpop/gremlin-go/v3"},
	})
}
