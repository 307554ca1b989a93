package connection

import (
	"os"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lassohq/lasso/pkg/lassoerrors"
	"github.com/lassohq/lasso/pkg/logger"
)

// Resolver resolves named connection records. Lookup order:
//  1. records registered programmatically with Register
//  2. the LASSO_CONN_<ID> environment variable (URI form)
//  3. the connections file loaded with LoadFile, if any
type Resolver struct {
	registered map[string]*Connection
	fromFile   map[string]*Connection
	mu         sync.RWMutex
	logger     *zap.Logger
}

// Global resolver instance
var globalResolver = NewResolver()

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{
		registered: make(map[string]*Connection),
		fromFile:   make(map[string]*Connection),
		logger:     logger.Get().With(zap.String("component", "connection_resolver")),
	}
}

// Register adds a record to the resolver. Registering an id twice replaces
// the earlier record.
func (r *Resolver) Register(conn *Connection) error {
	if conn == nil || conn.ID == "" {
		return lassoerrors.New(lassoerrors.ErrorTypeConfig, "connection id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.registered[conn.ID] = conn.Clone()
	r.logger.Debug("connection registered", zap.String("conn_id", conn.ID), zap.String("type", conn.Type))
	return nil
}

// fileConnection is the connections-file shape of a record. A record is given
// either as a URI or as explicit fields.
type fileConnection struct {
	URI      string            `mapstructure:"uri"`
	Type     string            `mapstructure:"type"`
	Host     string            `mapstructure:"host"`
	Port     int               `mapstructure:"port"`
	Schema   string            `mapstructure:"schema"`
	Login    string            `mapstructure:"login"`
	Password string            `mapstructure:"password"`
	Extra    map[string]string `mapstructure:"extra"`
}

// LoadFile loads connection records from a YAML file keyed by connection id:
//
//	connections:
//	  gremlin_default:
//	    uri: ws://localhost:8182/gremlin
//	  mysql_default:
//	    type: mysql
//	    host: db.internal
//	    login: app
//	    password: ${MYSQL_PASSWORD}
func (r *Resolver) LoadFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return lassoerrors.Wrap(err, lassoerrors.ErrorTypeConfig, "failed to read connections file")
	}

	var file struct {
		Connections map[string]fileConnection `mapstructure:"connections"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return lassoerrors.Wrap(err, lassoerrors.ErrorTypeConfig, "failed to parse connections file")
	}

	loaded := make(map[string]*Connection, len(file.Connections))
	for id, fc := range file.Connections {
		conn, err := fc.toConnection(id)
		if err != nil {
			return err
		}
		loaded[id] = conn
	}

	r.mu.Lock()
	for id, conn := range loaded {
		r.fromFile[id] = conn
	}
	r.mu.Unlock()

	r.logger.Info("connections file loaded", zap.String("path", path), zap.Int("connections", len(loaded)))
	return nil
}

func (fc fileConnection) toConnection(id string) (*Connection, error) {
	if fc.URI != "" {
		return ParseURI(id, os.ExpandEnv(fc.URI))
	}
	if fc.Type == "" {
		return nil, lassoerrors.Newf(lassoerrors.ErrorTypeConfig, "connection %s needs a uri or a type", id)
	}
	extra := make(map[string]string, len(fc.Extra))
	for k, val := range fc.Extra {
		extra[k] = os.ExpandEnv(val)
	}
	return &Connection{
		ID:       id,
		Type:     fc.Type,
		Host:     os.ExpandEnv(fc.Host),
		Port:     fc.Port,
		Schema:   os.ExpandEnv(fc.Schema),
		Login:    os.ExpandEnv(fc.Login),
		Password: os.ExpandEnv(fc.Password),
		Extra:    extra,
	}, nil
}

// Resolve returns the record for the given id, or an ErrorTypeNotFound error
// when no source knows it.
func (r *Resolver) Resolve(id string) (*Connection, error) {
	if id == "" {
		return nil, lassoerrors.New(lassoerrors.ErrorTypeConfig, "connection id is required")
	}

	r.mu.RLock()
	conn, ok := r.registered[id]
	r.mu.RUnlock()
	if ok {
		return conn.Clone(), nil
	}

	if uri := os.Getenv(EnvVar(id)); uri != "" {
		return ParseURI(id, uri)
	}

	r.mu.RLock()
	conn, ok = r.fromFile[id]
	r.mu.RUnlock()
	if ok {
		return conn.Clone(), nil
	}

	return nil, lassoerrors.Newf(lassoerrors.ErrorTypeNotFound, "connection %s is not defined", id)
}

// Clear removes all registered and file-loaded records (mainly for testing).
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered = make(map[string]*Connection)
	r.fromFile = make(map[string]*Connection)
}

// Global resolver functions

// Register adds a record to the global resolver.
func Register(conn *Connection) error {
	return globalResolver.Register(conn)
}

// LoadFile loads connection records into the global resolver.
func LoadFile(path string) error {
	return globalResolver.LoadFile(path)
}

// Resolve resolves a record from the global resolver.
func Resolve(id string) (*Connection, error) {
	return globalResolver.Resolve(id)
}

// Clear resets the global resolver (mainly for testing).
func Clear() {
	globalResolver.Clear()
}

// GetResolver returns the global resolver instance.
func GetResolver() *Resolver {
	return globalResolver
}
