package migrations

import (
	"context"
	"fmt"

	"github.com/agorahq/agora/internal/database/types"
	"github.com/uptrace/bun"
)

func init() { //nolint:funlen
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		tables := []struct {
			model       any
			foreignKeys []string
		}{
			{(*types.User)(nil), nil},
			{(*types.Question)(nil), []string{
				`("owner_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
			}},
			{(*types.Answer)(nil), []string{
				`("question_id") REFERENCES "questions" ("id") ON DELETE CASCADE`,
				`("owner_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
			}},
			{(*types.Comment)(nil), []string{
				`("owner_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
			}},
			{(*types.Favorite)(nil), []string{
				`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
				`("question_id") REFERENCES "questions" ("id") ON DELETE CASCADE`,
			}},
			{(*types.Vote)(nil), []string{
				`("voter_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
			}},
			{(*types.ReputationHistory)(nil), []string{
				`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
			}},
			{(*types.Badge)(nil), nil},
			{(*types.BadgeAssignment)(nil), []string{
				`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
				`("badge_id") REFERENCES "badges" ("id") ON DELETE CASCADE`,
			}},
			{(*types.Notification)(nil), []string{
				`("recipient_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
			}},
		}

		for _, table := range tables {
			query := db.NewCreateTable().
				Model(table.model).
				IfNotExists()
			for _, fk := range table.foreignKeys {
				query = query.ForeignKey(fk)
			}

			if _, err := query.Exec(ctx); err != nil {
				return fmt.Errorf("failed to create table %T: %w", table.model, err)
			}
		}

		indexes := []struct {
			model   any
			name    string
			columns []string
		}{
			{(*types.Question)(nil), "idx_questions_owner", []string{"owner_id"}},
			{(*types.Answer)(nil), "idx_answers_question", []string{"question_id"}},
			{(*types.Answer)(nil), "idx_answers_owner", []string{"owner_id"}},
			{(*types.Comment)(nil), "idx_comments_target", []string{"target_kind", "target_id"}},
			{(*types.Comment)(nil), "idx_comments_owner", []string{"owner_id"}},
			{(*types.Vote)(nil), "idx_votes_target", []string{"target_kind", "target_id"}},
			{(*types.ReputationHistory)(nil), "idx_reputation_histories_user", []string{"user_id", "id"}},
			{(*types.Notification)(nil), "idx_notifications_recipient_read", []string{"recipient_id", "is_read"}},
			{(*types.Notification)(nil), "idx_notifications_recipient_type", []string{"recipient_id", "type", "id"}},
		}

		for _, idx := range indexes {
			_, err := db.NewCreateIndex().
				Model(idx.model).
				Index(idx.name).
				Column(idx.columns...).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create index %s: %w", idx.name, err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.Notification)(nil),
			(*types.BadgeAssignment)(nil),
			(*types.Badge)(nil),
			(*types.ReputationHistory)(nil),
			(*types.Vote)(nil),
			(*types.Favorite)(nil),
			(*types.Comment)(nil),
			(*types.Answer)(nil),
			(*types.Question)(nil),
			(*types.User)(nil),
		}

		for _, model := range models {
			if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop table %T: %w", model, err)
			}
		}

		return nil
	})
}
