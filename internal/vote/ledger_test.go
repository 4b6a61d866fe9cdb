package vote_test

import (
	"testing"

	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/agorahq/agora/internal/vote"
	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		current   enum.VoteDirection
		requested enum.VoteRequest
		applied   bool
		delta     int
		next      enum.VoteDirection
	}{
		{"none to up", enum.VoteDirectionNone, enum.VoteRequestUp, true, 1, enum.VoteDirectionUp},
		{"none to down", enum.VoteDirectionNone, enum.VoteRequestDown, true, -1, enum.VoteDirectionDown},
		{"up again", enum.VoteDirectionUp, enum.VoteRequestUp, false, 0, enum.VoteDirectionUp},
		{"down again", enum.VoteDirectionDown, enum.VoteRequestDown, false, 0, enum.VoteDirectionDown},
		{"flip to down", enum.VoteDirectionUp, enum.VoteRequestDown, true, -2, enum.VoteDirectionDown},
		{"flip to up", enum.VoteDirectionDown, enum.VoteRequestUp, true, 2, enum.VoteDirectionUp},
		{"remove up", enum.VoteDirectionUp, enum.VoteRequestRemove, true, -1, enum.VoteDirectionNone},
		{"remove down", enum.VoteDirectionDown, enum.VoteRequestRemove, true, 1, enum.VoteDirectionNone},
		{"remove nothing", enum.VoteDirectionNone, enum.VoteRequestRemove, false, 0, enum.VoteDirectionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := vote.Decide(tt.current, tt.requested)
			assert.Equal(t, tt.applied, got.Applied)
			assert.Equal(t, tt.delta, got.ScoreDelta)
			assert.Equal(t, tt.current, got.Previous)
			assert.Equal(t, tt.next, got.Current)
		})
	}
}

func TestReputationCredit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		kind      enum.TargetKind
		current   enum.VoteDirection
		requested enum.VoteRequest
		ok        bool
		amount    int
		reason    enum.ReputationReason
	}{
		{
			"question upvote", enum.TargetKindQuestion, enum.VoteDirectionNone, enum.VoteRequestUp,
			true, 10, enum.ReputationReasonQuestionUpvoted,
		},
		{
			"answer downvote", enum.TargetKindAnswer, enum.VoteDirectionNone, enum.VoteRequestDown,
			true, -2, enum.ReputationReasonAnswerDownvoted,
		},
		{
			"flip up to down", enum.TargetKindQuestion, enum.VoteDirectionUp, enum.VoteRequestDown,
			true, -12, enum.ReputationReasonQuestionDownvoted,
		},
		{
			"flip down to up", enum.TargetKindAnswer, enum.VoteDirectionDown, enum.VoteRequestUp,
			true, 12, enum.ReputationReasonAnswerUpvoted,
		},
		{
			"remove upvote", enum.TargetKindQuestion, enum.VoteDirectionUp, enum.VoteRequestRemove,
			true, -10, enum.ReputationReasonVoteRemoved,
		},
		{
			"remove downvote", enum.TargetKindQuestion, enum.VoteDirectionDown, enum.VoteRequestRemove,
			true, 2, enum.ReputationReasonVoteRemoved,
		},
		{
			"no-op", enum.TargetKindQuestion, enum.VoteDirectionUp, enum.VoteRequestUp,
			false, 0, 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			credit, ok := vote.ReputationCredit(tt.kind, vote.Decide(tt.current, tt.requested))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.amount, credit.Amount)
				assert.Equal(t, tt.reason, credit.Reason)
			}
		})
	}
}

func TestToggleSymmetry(t *testing.T) {
	t.Parallel()

	for _, kind := range []enum.TargetKind{enum.TargetKindQuestion, enum.TargetKindAnswer} {
		up := vote.Decide(enum.VoteDirectionNone, enum.VoteRequestUp)
		remove := vote.Decide(up.Current, enum.VoteRequestRemove)

		upCredit, _ := vote.ReputationCredit(kind, up)
		removeCredit, _ := vote.ReputationCredit(kind, remove)

		assert.Zero(t, up.ScoreDelta+remove.ScoreDelta, kind.String())
		assert.Zero(t, upCredit.Amount+removeCredit.Amount, kind.String())
	}
}
