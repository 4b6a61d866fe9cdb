package enum

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownValue is returned when parsing a string that does not name an enum value.
var ErrUnknownValue = errors.New("unknown enum value")

// TargetKind represents the type of content that can receive votes.
type TargetKind int

const (
	TargetKindQuestion TargetKind = iota
	TargetKindAnswer
)

// String returns the lowercase wire name of the target kind.
func (k TargetKind) String() string {
	switch k {
	case TargetKindQuestion:
		return "question"
	case TargetKindAnswer:
		return "answer"
	}
	return fmt.Sprintf("TargetKind(%d)", int(k))
}

// IsValid reports whether the kind is one of the declared values.
func (k TargetKind) IsValid() bool {
	switch k {
	case TargetKindQuestion, TargetKindAnswer:
		return true
	}
	return false
}

// ParseTargetKind converts a wire name into a TargetKind.
func ParseTargetKind(s string) (TargetKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "question":
		return TargetKindQuestion, nil
	case "answer":
		return TargetKindAnswer, nil
	}
	return 0, fmt.Errorf("%w: target kind %q", ErrUnknownValue, s)
}

// VoteDirection is the polarity of a stored vote. The numeric value
// doubles as the per-vote score contribution.
type VoteDirection int

const (
	VoteDirectionDown VoteDirection = -1
	VoteDirectionNone VoteDirection = 0
	VoteDirectionUp   VoteDirection = 1
)

// String returns the lowercase name of the direction.
func (d VoteDirection) String() string {
	switch d {
	case VoteDirectionUp:
		return "up"
	case VoteDirectionDown:
		return "down"
	case VoteDirectionNone:
		return "none"
	}
	return fmt.Sprintf("VoteDirection(%d)", int(d))
}

// VoteRequest is what a voter asks for when casting a vote.
type VoteRequest int

const (
	VoteRequestUp VoteRequest = iota
	VoteRequestDown
	VoteRequestRemove
)

// String returns the lowercase wire name of the request.
func (r VoteRequest) String() string {
	switch r {
	case VoteRequestUp:
		return "up"
	case VoteRequestDown:
		return "down"
	case VoteRequestRemove:
		return "remove"
	}
	return fmt.Sprintf("VoteRequest(%d)", int(r))
}

// ParseVoteRequest converts a wire name into a VoteRequest.
func ParseVoteRequest(s string) (VoteRequest, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return VoteRequestUp, nil
	case "down":
		return VoteRequestDown, nil
	case "remove":
		return VoteRequestRemove, nil
	}
	return 0, fmt.Errorf("%w: vote type %q", ErrUnknownValue, s)
}
