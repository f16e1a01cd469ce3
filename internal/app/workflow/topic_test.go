package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/apperrors"
)

func freshThesis() *models.Thesis {
	return &models.Thesis{
		ID:              10,
		StudentID:       100,
		Status:          models.ThesisNotSubmitted,
		TopicProposedBy: models.TopicByNone,
		TopicStatus:     models.TopicNone,
	}
}

func TestProposeTopicByStudent(t *testing.T) {
	th := freshThesis()

	require.NoError(t, ProposeTopicByStudent(th, "Graph Neural Networks", now))

	assert.Equal(t, "Graph Neural Networks", th.Topic)
	assert.Equal(t, models.TopicByStudent, th.TopicProposedBy)
	assert.Equal(t, models.TopicPending, th.TopicStatus)
}

func TestProposeTopicByStudent_SecondProposalWhilePending(t *testing.T) {
	th := freshThesis()
	require.NoError(t, ProposeTopicByStudent(th, "Graph Neural Networks", now))

	err := ProposeTopicByStudent(th, "Another Topic", now)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.Equal(t, "Graph Neural Networks", th.Topic)
}

func TestProposeTopicByStudent_WhileApproved(t *testing.T) {
	th := freshThesis()
	require.NoError(t, ProposeTopicByStudent(th, "Graph Neural Networks", now))
	require.NoError(t, DecideTopic(th, true, "", now))

	err := ProposeTopicByStudent(th, "Another Topic", now)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestProposeTopicByStudent_WhileSupervisorProposalPending(t *testing.T) {
	th := freshThesis()
	require.NoError(t, ProposeTopicBySupervisor(th, "Distributed Consensus", now))

	// The student must respond to the supervisor's proposal first.
	err := ProposeTopicByStudent(th, "My Own Topic", now)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestProposeTopic_EmptyTopic(t *testing.T) {
	th := freshThesis()
	require.ErrorIs(t, ProposeTopicByStudent(th, "", now), apperrors.ErrValidationFailed)
	require.ErrorIs(t, ProposeTopicBySupervisor(th, "", now), apperrors.ErrValidationFailed)
}

func TestDecideTopic_Rejection(t *testing.T) {
	th := freshThesis()
	require.NoError(t, ProposeTopicByStudent(th, "Graph Neural Networks", now))

	require.NoError(t, DecideTopic(th, false, "too broad, narrow the scope", now))

	assert.Equal(t, models.TopicRejected, th.TopicStatus)
	require.NotNil(t, th.TopicRejectionComments)
	assert.Equal(t, "too broad, narrow the scope", *th.TopicRejectionComments)

	// After rejection the student may propose again; the comments reset.
	require.NoError(t, ProposeTopicByStudent(th, "GNNs for fraud detection", now))
	assert.Nil(t, th.TopicRejectionComments)
	assert.Equal(t, models.TopicPending, th.TopicStatus)
}

func TestDecideTopic_NoPendingProposal(t *testing.T) {
	th := freshThesis()
	require.ErrorIs(t, DecideTopic(th, true, "", now), apperrors.ErrInvalidState)

	// A supervisor cannot decide their own proposal; that is the
	// student's response.
	require.NoError(t, ProposeTopicBySupervisor(th, "Distributed Consensus", now))
	require.ErrorIs(t, DecideTopic(th, true, "", now), apperrors.ErrInvalidState)
}

func TestRespondToTopic(t *testing.T) {
	th := freshThesis()
	require.NoError(t, ProposeTopicBySupervisor(th, "Distributed Consensus", now))

	require.NoError(t, RespondToTopic(th, true, "", now))
	assert.Equal(t, models.TopicApproved, th.TopicStatus)
	assert.Equal(t, models.TopicBySupervisor, th.TopicProposedBy)
}

func TestRespondToTopic_NoSupervisorProposal(t *testing.T) {
	th := freshThesis()
	require.NoError(t, ProposeTopicByStudent(th, "Graph Neural Networks", now))
	require.ErrorIs(t, RespondToTopic(th, true, "", now), apperrors.ErrInvalidState)
}

// A student-originated and a supervisor-originated proposal can never both
// be pending for the same thesis: the single topic slot makes the states
// mutually exclusive and every proposal path guards on pending.
func TestTopicProposalsMutuallyExclusive(t *testing.T) {
	th := freshThesis()
	require.NoError(t, ProposeTopicByStudent(th, "Graph Neural Networks", now))
	require.ErrorIs(t, ProposeTopicBySupervisor(th, "Distributed Consensus", now), apperrors.ErrInvalidState)

	require.NoError(t, DecideTopic(th, false, "no", now))
	require.NoError(t, ProposeTopicBySupervisor(th, "Distributed Consensus", now))
	require.ErrorIs(t, ProposeTopicByStudent(th, "Graph Neural Networks", now), apperrors.ErrInvalidState)
}
