package mysql

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
		PackageName: "lasso-providers-mysql",
		Name:        "MySQL",
		Description: "MySQL relational database",
		Versions:    []string{"1.3.0", "1.2.0", "1.1.0", "1.0.0"},
		Hooks:       []string{"github.com/lassohq/lasso/pkg/hook/mysql"},
		Transfers:   []string{"github.com/lassohq/lasso/pkg/transfer"},
		ConnectionTypes: []provider.ConnectionType{
			{Hook: "mysql.Hook", Type: ConnType},
		},
		Dependencies: []string{"github.com/go-sql-driver/mysql"},
	})
}
