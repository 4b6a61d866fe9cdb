package enum

import "fmt"

// BadgeCriteria selects the counter a badge measures progress against.
type BadgeCriteria int

const (
	// BadgeCriteriaQuestionsWithPositiveScore counts the user's questions with score > 0.
	BadgeCriteriaQuestionsWithPositiveScore BadgeCriteria = iota
	// BadgeCriteriaAnswersWithScoreAtLeast3 counts the user's answers with score >= 3.
	BadgeCriteriaAnswersWithScoreAtLeast3
	// BadgeCriteriaEditedPosts counts questions and answers the user has edited.
	BadgeCriteriaEditedPosts
	BadgeCriteriaQuestionsAsked
	BadgeCriteriaAnswersPosted
	BadgeCriteriaAcceptedAnswers
	BadgeCriteriaCommentsPosted
	BadgeCriteriaVotesCast
	// BadgeCriteriaReputationReached compares against the cached reputation total.
	BadgeCriteriaReputationReached
)

// String returns the snake_case name of the criteria.
func (c BadgeCriteria) String() string {
	switch c {
	case BadgeCriteriaQuestionsWithPositiveScore:
		return "questions_with_positive_score"
	case BadgeCriteriaAnswersWithScoreAtLeast3:
		return "answers_with_score_at_least_3"
	case BadgeCriteriaEditedPosts:
		return "edited_posts"
	case BadgeCriteriaQuestionsAsked:
		return "questions_asked"
	case BadgeCriteriaAnswersPosted:
		return "answers_posted"
	case BadgeCriteriaAcceptedAnswers:
		return "accepted_answers"
	case BadgeCriteriaCommentsPosted:
		return "comments_posted"
	case BadgeCriteriaVotesCast:
		return "votes_cast"
	case BadgeCriteriaReputationReached:
		return "reputation_reached"
	}
	return fmt.Sprintf("BadgeCriteria(%d)", int(c))
}
