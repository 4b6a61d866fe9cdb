package commands

import (
	"context"

	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// MaintenanceCommands returns commands that inspect or repair derived data.
func MaintenanceCommands(deps *CLIDependencies) []*cli.Command {
	return []*cli.Command{
		{
			Name:   "check-scores",
			Usage:  "Report questions and answers whose cached score disagrees with their votes",
			Action: handleCheckScores(deps),
		},
		{
			Name:      "recalculate-badges",
			Usage:     "Recompute badge progress for a user and award anything newly earned",
			ArgsUsage: "USER_ID",
			Action:    handleRecalculateBadges(deps),
		},
	}
}

// handleCheckScores handles the 'check-scores' command.
func handleCheckScores(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		var total int

		for _, kind := range []enum.TargetKind{enum.TargetKindQuestion, enum.TargetKindAnswer} {
			drifts, err := deps.DB.Model().Vote().FindScoreDrift(ctx, kind)
			if err != nil {
				return err
			}

			for _, d := range drifts {
				deps.Logger.Warn("Score drift",
					zap.String("kind", kind.String()),
					zap.Int64("id", d.ID),
					zap.Int("score", d.Score),
					zap.Int("tally", d.Tally),
				)
			}

			total += len(drifts)
		}

		if total > 0 {
			return ErrScoreDrift
		}

		deps.Logger.Info("All cached scores match stored votes")

		return nil
	}
}

// handleRecalculateBadges handles the 'recalculate-badges' command.
func handleRecalculateBadges(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		userID, err := parseUserID(c)
		if err != nil {
			return err
		}

		progress, err := deps.Services.Badge().RecalculateAll(ctx, userID)
		if err != nil {
			return err
		}

		for _, p := range progress {
			deps.Logger.Info("Badge progress",
				zap.String("badge", p.Name),
				zap.Int("current", p.Current),
				zap.Int("target", p.Target),
				zap.Bool("earned", p.Earned),
			)
		}

		return nil
	}
}
