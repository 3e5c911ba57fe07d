// Package all enables every built-in storage backend. Import it for its side
// effects:
//
//	import _ "rxclaims/internal/storage/all"
//
// after which storage.New accepts the kinds "postgres" (alias "postgresql"),
// "mssql" (alias "sqlserver") and "sqlite".
package all

import (
	_ "rxclaims/internal/storage/mssql"
	_ "rxclaims/internal/storage/postgres"
	_ "rxclaims/internal/storage/sqlite"
)
