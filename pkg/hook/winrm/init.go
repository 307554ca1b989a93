package winrm

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
		PackageName: "lasso-providers-winrm",
		Name:        "Windows Remote Management (WinRM)",
		Description: "Remote command execution on Windows hosts",
		Versions:    []string{"1.1.0", "1.0.0"},
		Hooks:       []string{"github.com/lassohq/lasso/pkg/hook/winrm"},
		ConnectionTypes: []provider.ConnectionType{
			{Hook: "winrm.Hook", Type: ConnType},
		},
		Dependencies: []string{"github.com/masterzen/winrm"},
	})
}
