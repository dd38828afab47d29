package models

// Role is the authorization role carried by a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Urgency of a withdrawal request.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
	UrgencyUrgent Urgency = "urgent"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyUrgent:
		return true
	default:
		return false
	}
}

// WithdrawalStatus is the lifecycle state of a withdrawal request.
type WithdrawalStatus string

const (
	// WithdrawalPending is waiting for an admin decision.
	WithdrawalPending WithdrawalStatus = "pending"
	// WithdrawalApproved has been approved but not paid out.
	WithdrawalApproved WithdrawalStatus = "approved"
	// WithdrawalRejected was declined by an admin.
	WithdrawalRejected WithdrawalStatus = "rejected"
	// WithdrawalCompleted has been paid out.
	WithdrawalCompleted WithdrawalStatus = "completed"
)

func (s WithdrawalStatus) Valid() bool {
	switch s {
	case WithdrawalPending, WithdrawalApproved, WithdrawalRejected, WithdrawalCompleted:
		return true
	default:
		return false
	}
}

func (s WithdrawalStatus) IsTerminal() bool {
	return s == WithdrawalRejected || s == WithdrawalCompleted
}

// MeetingType is how a meeting is held.
type MeetingType string

const (
	MeetingVideo    MeetingType = "video"
	MeetingPhone    MeetingType = "phone"
	MeetingInPerson MeetingType = "in_person"
)

func (t MeetingType) Valid() bool {
	switch t {
	case MeetingVideo, MeetingPhone, MeetingInPerson:
		return true
	default:
		return false
	}
}

// MeetingStatus is the lifecycle state of a meeting request.
type MeetingStatus string

const (
	MeetingPending   MeetingStatus = "pending"
	MeetingScheduled MeetingStatus = "scheduled"
	MeetingConfirmed MeetingStatus = "confirmed"
	MeetingCompleted MeetingStatus = "completed"
	MeetingCancelled MeetingStatus = "cancelled"
)

func (s MeetingStatus) Valid() bool {
	switch s {
	case MeetingPending, MeetingScheduled, MeetingConfirmed, MeetingCompleted, MeetingCancelled:
		return true
	default:
		return false
	}
}

func (s MeetingStatus) IsTerminal() bool {
	return s == MeetingCompleted || s == MeetingCancelled
}

// HoldsLink reports whether a video meeting in this state keeps its join link.
func (s MeetingStatus) HoldsLink() bool {
	return s == MeetingScheduled || s == MeetingConfirmed || s == MeetingCompleted
}
