package setup

import "errors"

// ErrMigrationsPending is returned when the operator declines to apply pending migrations.
var ErrMigrationsPending = errors.New("database migrations are pending")
