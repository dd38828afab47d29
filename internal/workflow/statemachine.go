package workflow

import (
	"loan-service/internal/models"
)

type transitionTable[S ~string] map[S][]S

func (t transitionTable[S]) allows(from, to S) bool {
	for _, target := range t[from] {
		if target == to {
			return true
		}
	}
	return false
}

// withdrawalTransitions lists, per state, the states an admin may move a
// withdrawal request into.
var withdrawalTransitions = transitionTable[models.WithdrawalStatus]{
	models.WithdrawalPending: {
		models.WithdrawalApproved,
		models.WithdrawalRejected,
	},
	models.WithdrawalApproved: {
		models.WithdrawalCompleted,
	},
}

var meetingTransitions = transitionTable[models.MeetingStatus]{
	models.MeetingPending: {
		models.MeetingScheduled,
		models.MeetingCancelled,
	},
	models.MeetingScheduled: {
		models.MeetingConfirmed,
		models.MeetingCancelled,
	},
	models.MeetingConfirmed: {
		models.MeetingCompleted,
	},
}

// CanTransitionWithdrawal returns true if from -> to is an edge of the
// withdrawal graph.
func CanTransitionWithdrawal(from, to models.WithdrawalStatus) bool {
	return withdrawalTransitions.allows(from, to)
}

// CanTransitionMeeting returns true if from -> to is an edge of the meeting
// graph.
func CanTransitionMeeting(from, to models.MeetingStatus) bool {
	return meetingTransitions.allows(from, to)
}

func ValidateWithdrawalTransition(from, to models.WithdrawalStatus) error {
	if from.IsTerminal() {
		return &TransitionError{Entity: "withdrawal", From: string(from), To: string(to), Reason: string(from) + " is a terminal state"}
	}
	if !CanTransitionWithdrawal(from, to) {
		return &TransitionError{Entity: "withdrawal", From: string(from), To: string(to), Reason: "transition not allowed"}
	}
	return nil
}

func ValidateMeetingTransition(from, to models.MeetingStatus) error {
	if from.IsTerminal() {
		return &TransitionError{Entity: "meeting", From: string(from), To: string(to), Reason: string(from) + " is a terminal state"}
	}
	if !CanTransitionMeeting(from, to) {
		return &TransitionError{Entity: "meeting", From: string(from), To: string(to), Reason: "transition not allowed"}
	}
	return nil
}

// NextWithdrawalStatuses returns the states reachable from the given one.
func NextWithdrawalStatuses(from models.WithdrawalStatus) []models.WithdrawalStatus {
	return withdrawalTransitions[from]
}

func NextMeetingStatuses(from models.MeetingStatus) []models.MeetingStatus {
	return meetingTransitions[from]
}
