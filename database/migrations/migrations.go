// Package migrations registers the identity service's schema migrations.
// Import it for side effects wherever a migration.Runner is used.
package migrations
