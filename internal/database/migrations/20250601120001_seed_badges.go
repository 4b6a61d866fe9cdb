package migrations

import (
	"context"
	"fmt"

	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/uptrace/bun"
)

// DefaultBadges is the catalog installed with a fresh database.
var DefaultBadges = []types.Badge{ //nolint:gochecknoglobals // -
	{
		Name: "Student", Description: "Asked a question with a positive score",
		Criteria: enum.BadgeCriteriaQuestionsWithPositiveScore, TargetCount: 1, ReputationBonus: 10, IsActive: true,
	},
	{
		Name: "Teacher", Description: "Wrote an answer scored 3 or more",
		Criteria: enum.BadgeCriteriaAnswersWithScoreAtLeast3, TargetCount: 1, ReputationBonus: 15, IsActive: true,
	},
	{
		Name: "Editor", Description: "Edited a question or answer",
		Criteria: enum.BadgeCriteriaEditedPosts, TargetCount: 1, ReputationBonus: 5, IsActive: true,
	},
	{
		Name: "Curious", Description: "Asked 5 questions",
		Criteria: enum.BadgeCriteriaQuestionsAsked, TargetCount: 5, ReputationBonus: 10, IsActive: true,
	},
	{
		Name: "Helper", Description: "Posted 10 answers",
		Criteria: enum.BadgeCriteriaAnswersPosted, TargetCount: 10, ReputationBonus: 20, IsActive: true,
	},
	{
		Name: "Scholar", Description: "Had an answer accepted",
		Criteria: enum.BadgeCriteriaAcceptedAnswers, TargetCount: 1, ReputationBonus: 15, IsActive: true,
	},
	{
		Name: "Commentator", Description: "Left 10 comments",
		Criteria: enum.BadgeCriteriaCommentsPosted, TargetCount: 10, ReputationBonus: 5, IsActive: true,
	},
	{
		Name: "Supporter", Description: "Cast 10 votes",
		Criteria: enum.BadgeCriteriaVotesCast, TargetCount: 10, ReputationBonus: 5, IsActive: true,
	},
	{
		Name: "Established", Description: "Reached 1000 reputation",
		Criteria: enum.BadgeCriteriaReputationReached, TargetCount: 1000, ReputationBonus: 0, IsActive: true,
	},
}

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		badges := make([]types.Badge, len(DefaultBadges))
		copy(badges, DefaultBadges)

		_, err := db.NewInsert().
			Model(&badges).
			On("CONFLICT (name) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed badges: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		names := make([]string, 0, len(DefaultBadges))
		for _, b := range DefaultBadges {
			names = append(names, b.Name)
		}

		_, err := db.NewDelete().
			Model((*types.Badge)(nil)).
			Where("name IN (?)", bun.In(names)).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to remove seeded badges: %w", err)
		}
		return nil
	})
}
