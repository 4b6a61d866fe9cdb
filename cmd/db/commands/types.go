package commands

import (
	"errors"

	"github.com/agorahq/agora/internal/database"
	"github.com/agorahq/agora/internal/setup/config"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

var (
	ErrNameRequired   = errors.New("NAME argument required")
	ErrUserIDRequired = errors.New("USER_ID argument required")
	ErrInvalidUserID  = errors.New("USER_ID must be a positive integer")
	ErrScoreDrift     = errors.New("cached scores disagree with stored votes")
)

// CLIDependencies holds the common dependencies needed by CLI commands.
type CLIDependencies struct {
	Config   *config.Config
	DB       database.Client
	Services *database.Service
	Migrator *migrate.Migrator
	Logger   *zap.Logger
}
