// Package lasso provides uniform hooks over external systems: databases,
// HTTP APIs, issue trackers, graph stores, mail services, and remote hosts,
// all behind a single connector contract.
//
// A hook wraps exactly one system's native client library. It resolves its
// connection record by id, builds its client handle lazily on first use,
// memoizes it for the hook's lifetime, and releases it on Close. Commands
// pass through to the client unmodified and results come back unmodified;
// retries, scheduling, and alerting belong to the host runtime that invokes
// the hook.
//
// # Quick Start
//
// Register a connection record and run a command through its hook:
//
//	import (
//	    "context"
//	    "github.com/lassohq/lasso/pkg/connection"
//	    "github.com/lassohq/lasso/pkg/hook/registry"
//	    "github.com/lassohq/lasso/pkg/hook"
//
//	    _ "github.com/lassohq/lasso/pkg/hook/trino"
//	)
//
//	connection.Register(&connection.Connection{
//	    ID:     "trino_default",
//	    Type:   "trino",
//	    Host:   "warehouse.internal",
//	    Schema: "default",
//	})
//
//	h, err := registry.Create("trino_default")
//	if err != nil {
//	    // handle error
//	}
//	defer h.Close()
//
//	rows, err := h.(hook.RecordsFetcher).GetRecords(context.Background(), "SELECT 1")
//
// Connection records can also come from LASSO_CONN_<ID> environment
// variables in URI form, or from a YAML connections file loaded with
// connection.LoadFile.
//
// # Packages
//
//   - pkg/hook: the connector contract and the per-system hook packages
//   - pkg/connection: connection records and resolution
//   - pkg/provider: provider descriptors for plugin discovery
//   - pkg/transfer: data movement actions between hooks
//   - cmd/lasso: the command-line interface
package lasso
