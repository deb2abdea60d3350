// internal/mssql/connector.go
package mssql

import (
	"database/sql"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
)

// Connector opens a database handle for a single template execution.
// The executor opens a fresh handle per call and closes it on every exit
// path; implementations must not hand out shared state.
type Connector interface {
	Open() (*sql.DB, error)
}

type driverConnector struct {
	driverName string
	dsn        string
}

// NewConnector returns a Connector that dials SQL Server with the given
// connection string (sqlserver:// URL or ADO form).
func NewConnector(dsn string) Connector {
	return &driverConnector{driverName: "sqlserver", dsn: dsn}
}

func (c *driverConnector) Open() (*sql.DB, error) {
	return sql.Open(c.driverName, c.dsn)
}

// ConnectorFunc adapts a function to the Connector interface.
// Tests use this to hand the executor a sqlmock-backed handle.
type ConnectorFunc func() (*sql.DB, error)

func (f ConnectorFunc) Open() (*sql.DB, error) {
	return f()
}
