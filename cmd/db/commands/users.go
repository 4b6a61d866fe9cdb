package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/rest/middleware/auth"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// UserCommands returns commands for provisioning users and API tokens.
func UserCommands(deps *CLIDependencies) []*cli.Command {
	return []*cli.Command{
		{
			Name:      "create-user",
			Usage:     "Create a user",
			ArgsUsage: "NAME",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "admin",
					Usage: "Grant administrator rights",
				},
			},
			Action: handleCreateUser(deps),
		},
		{
			Name:      "token",
			Usage:     "Issue a bearer token for an existing user",
			ArgsUsage: "USER_ID",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:  "ttl",
					Usage: "Token lifetime",
					Value: 24 * time.Hour,
				},
			},
			Action: handleToken(deps),
		},
	}
}

// handleCreateUser handles the 'create-user' command.
func handleCreateUser(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 1 {
			return ErrNameRequired
		}

		user := &types.User{
			Name:    c.Args().First(),
			IsAdmin: c.Bool("admin"),
		}
		if err := deps.DB.Model().User().CreateUser(ctx, user); err != nil {
			return err
		}

		deps.Logger.Info("Created user",
			zap.Int64("id", user.ID),
			zap.String("name", user.Name),
			zap.Bool("admin", user.IsAdmin),
		)

		return nil
	}
}

// handleToken handles the 'token' command. The admin role follows the
// stored user record.
func handleToken(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		userID, err := parseUserID(c)
		if err != nil {
			return err
		}

		user, err := deps.DB.Model().User().GetUserByID(ctx, userID)
		if err != nil {
			return err
		}

		issuer := auth.New(&deps.Config.API.Auth, deps.Logger)

		token, err := issuer.Issue(auth.Identity{UserID: user.ID, Admin: user.IsAdmin}, c.Duration("ttl"))
		if err != nil {
			return err
		}

		fmt.Fprintln(c.Root().Writer, token)

		return nil
	}
}

func parseUserID(c *cli.Command) (int64, error) {
	if c.Args().Len() != 1 {
		return 0, ErrUserIDRequired
	}

	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUserID, c.Args().First())
	}

	return id, nil
}
