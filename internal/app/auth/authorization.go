package auth

import (
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/apperrors"
)

// AuthorizationService bridges the pure resolver and the service layer: it
// turns loaded entities into resolver inputs and deny decisions into
// application errors.
type AuthorizationService struct {
	resolver *Resolver
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(resolver *Resolver) *AuthorizationService {
	return &AuthorizationService{resolver: resolver}
}

// ActorFromUser builds a resolver actor from a loaded user record
func ActorFromUser(u *models.User) *Actor {
	if u == nil {
		return nil
	}
	return &Actor{
		ID:       u.ID,
		Role:     u.Role,
		Roles:    u.Roles,
		Faculty:  u.Faculty,
		Approved: u.IsApproved,
	}
}

// ResourceFromThesis builds a resolver resource from a thesis and the
// faculty of its owning student
func ResourceFromThesis(t *models.Thesis, ownerFaculty string) *Resource {
	if t == nil {
		return nil
	}
	return &Resource{
		ThesisID:     t.ID,
		OwnerID:      t.StudentID,
		OwnerFaculty: ownerFaculty,
		SupervisorID: t.SupervisorID,
		ConsultantID: t.ConsultantID,
		ReviewerID:   t.ReviewerID,
	}
}

// ResourceFromStudent builds a resolver resource from a student's standing
// assignments, for actions that run before any thesis exists
func ResourceFromStudent(s *models.Student, ownerFaculty string) *Resource {
	if s == nil {
		return nil
	}
	return &Resource{
		OwnerID:      s.UserID,
		OwnerFaculty: ownerFaculty,
		SupervisorID: s.SupervisorID,
		ConsultantID: s.ConsultantID,
		ReviewerID:   s.ReviewerID,
	}
}

// Require authorizes the action and converts a deny into the matching
// application error. The deny reason and role sets travel as error details
// so the transport layer can render them without re-deriving the decision.
func (s *AuthorizationService) Require(actor *Actor, action Action, res *Resource) error {
	decision := s.resolver.Authorize(actor, action, res)
	if decision.Allowed {
		return nil
	}

	if decision.Reason == ReasonUnauthenticated {
		return apperrors.ErrUnauthenticated
	}

	details := map[string]interface{}{
		"reason": decision.Reason,
		"action": string(action),
	}
	if len(decision.RequiredRoles) > 0 {
		details["requiredRoles"] = rolesAsStrings(decision.RequiredRoles)
	}
	if len(decision.ActorRoles) > 0 {
		details["actorRoles"] = rolesAsStrings(decision.ActorRoles)
	}

	return apperrors.NewCustomError(apperrors.ErrPermissionDenied, denyMessage(decision.Reason)).
		WithDetails(details)
}

// Check returns the raw decision without error mapping
func (s *AuthorizationService) Check(actor *Actor, action Action, res *Resource) Decision {
	return s.resolver.Authorize(actor, action, res)
}

func denyMessage(reason string) string {
	switch reason {
	case ReasonUnknownAction:
		return "unknown action"
	case ReasonMissingRole:
		return "none of your roles permit this action"
	case ReasonNotOwner:
		return "you do not own this thesis"
	case ReasonNotAssigned:
		return "you are not assigned to this thesis"
	case ReasonFacultyMismatch:
		return "thesis belongs to a different faculty"
	case ReasonPendingApproval:
		return "your account is awaiting administrator approval"
	default:
		return "permission denied"
	}
}

func rolesAsStrings(roles []models.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}
