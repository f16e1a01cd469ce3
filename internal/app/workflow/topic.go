package workflow

import (
	"time"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/apperrors"
)

// Topic negotiation operates on a single per-thesis topic slot. A
// student-originated proposal awaits the supervisor's decision; a
// supervisor-originated one awaits the student's response. Because there
// is only one slot, a student proposal and a supervisor proposal can never
// both be pending at once.

// ProposeTopicByStudent records a student-originated topic proposal.
func ProposeTopicByStudent(t *models.Thesis, topic string, now time.Time) error {
	if topic == "" {
		return apperrors.NewValidationError("topic must not be empty")
	}
	if t.TopicStatus == models.TopicApproved {
		return apperrors.NewInvalidStateError("topic is already approved")
	}
	if t.TopicStatus == models.TopicPending {
		if t.TopicProposedBy == models.TopicBySupervisor {
			return apperrors.NewInvalidStateError("a supervisor-proposed topic awaits your response")
		}
		return apperrors.NewInvalidStateError("a proposed topic is still awaiting approval")
	}

	t.Topic = topic
	t.TopicProposedBy = models.TopicByStudent
	t.TopicStatus = models.TopicPending
	t.TopicRejectionComments = nil
	t.UpdatedAt = now
	return nil
}

// ProposeTopicBySupervisor records a supervisor-originated topic proposal
// for the student to accept or reject.
func ProposeTopicBySupervisor(t *models.Thesis, topic string, now time.Time) error {
	if topic == "" {
		return apperrors.NewValidationError("topic must not be empty")
	}
	if t.TopicStatus == models.TopicApproved {
		return apperrors.NewInvalidStateError("topic is already approved")
	}
	if t.TopicStatus == models.TopicPending {
		return apperrors.NewInvalidStateError("another topic proposal is still pending")
	}

	t.Topic = topic
	t.TopicProposedBy = models.TopicBySupervisor
	t.TopicStatus = models.TopicPending
	t.TopicRejectionComments = nil
	t.UpdatedAt = now
	return nil
}

// DecideTopic records the supervisor's approval or rejection of a
// student-originated proposal. Rejection comments become visible to the
// student.
func DecideTopic(t *models.Thesis, approve bool, comments string, now time.Time) error {
	if t.TopicStatus != models.TopicPending || t.TopicProposedBy != models.TopicByStudent {
		return apperrors.NewInvalidStateError("no student topic proposal is pending")
	}

	if approve {
		t.TopicStatus = models.TopicApproved
		t.TopicRejectionComments = nil
	} else {
		t.TopicStatus = models.TopicRejected
		if comments != "" {
			t.TopicRejectionComments = &comments
		}
	}
	t.UpdatedAt = now
	return nil
}

// RespondToTopic records the student's acceptance or rejection of a
// supervisor-originated proposal.
func RespondToTopic(t *models.Thesis, accept bool, comments string, now time.Time) error {
	if t.TopicStatus != models.TopicPending || t.TopicProposedBy != models.TopicBySupervisor {
		return apperrors.NewInvalidStateError("no supervisor topic proposal is pending")
	}

	if accept {
		t.TopicStatus = models.TopicApproved
		t.TopicRejectionComments = nil
	} else {
		t.TopicStatus = models.TopicRejected
		if comments != "" {
			t.TopicRejectionComments = &comments
		}
	}
	t.UpdatedAt = now
	return nil
}
