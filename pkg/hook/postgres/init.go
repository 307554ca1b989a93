package postgres

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
		PackageName: "lasso-providers-postgres",
		Name:        "PostgreSQL",
		Description: "PostgreSQL relational database",
		Versions:    []string{"1.1.0", "1.0.0"},
		Hooks:       []string{"github.com/lassohq/lasso/pkg/hook/postgres"},
		ConnectionTypes: []provider.ConnectionType{
			{Hook: "postgres.Hook", Type: ConnType},
		},
		Dependencies: []string{"github.com/jackc/pgx/v5"},
	})
}
