// Package storage opens the shared SQLite database and applies embedded
// schema migrations.
//
// Every store (projects, profiles, history) shares one *sql.DB opened here.
// Migrations are plain SQL files under migrations/, applied in lexical order
// and recorded in a schema_migrations table.
package storage
