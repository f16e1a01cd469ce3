package auth

import (
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
)

// Action identifies an operation subject to authorization.
type Action string

const (
	ActionThesisSubmit     Action = "thesis.submit"
	ActionThesisView       Action = "thesis.view"
	ActionThesisDownload   Action = "thesis.download"
	ActionThesisDelete     Action = "thesis.delete"
	ActionThesisList       Action = "thesis.list"
	ActionThesisEvaluate   Action = "thesis.evaluate"
	ActionReviewSubmit     Action = "review.submit"
	ActionReviewSign       Action = "review.sign"
	ActionReReviewRequest  Action = "review.request_rereview"
	ActionAssignmentWrite  Action = "assignment.write"
	ActionTopicPropose     Action = "topic.propose"
	ActionTopicDecide      Action = "topic.decide"
	ActionTopicRespond     Action = "topic.respond"
	ActionUserApprove      Action = "user.approve"
	ActionUserList         Action = "user.list"
)

// Deny reasons, structured enough for the transport layer to render a
// precise client-facing error without leaking resource contents.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonUnknownAction   = "unknown_action"
	ReasonMissingRole     = "missing_role"
	ReasonNotOwner        = "not_owner"
	ReasonNotAssigned     = "not_assigned"
	ReasonFacultyMismatch = "faculty_mismatch"
	ReasonPendingApproval = "pending_approval"
)

// Actor is the authenticated identity making a request.
type Actor struct {
	ID       int64
	Role     models.Role
	Roles    []models.Role // Secondary roles
	Faculty  string
	Approved bool // Admin approval flag for staff accounts
}

// roles returns the primary role followed by the secondary ones.
func (a *Actor) roles() []models.Role {
	out := make([]models.Role, 0, len(a.Roles)+1)
	out = append(out, a.Role)
	for _, r := range a.Roles {
		if r != a.Role {
			out = append(out, r)
		}
	}
	return out
}

// Resource describes the target of a relationship-gated action: the thesis
// (or, pre-submission, the owning student's assignment fields).
type Resource struct {
	ThesisID     int64
	OwnerID      int64  // User id of the owning student
	OwnerFaculty string // Faculty of the owning student
	SupervisorID *int64
	ConsultantID *int64
	ReviewerID   *int64
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed       bool
	Reason        string
	RequiredRoles []models.Role
	ActorRoles    []models.Role
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string, required []models.Role, actor *Actor) Decision {
	d := Decision{Allowed: false, Reason: reason, RequiredRoles: required}
	if actor != nil {
		d.ActorRoles = actor.roles()
	}
	return d
}

// actionSpec declares how a single action is gated. Role requirements are
// an OR across the actor's role set; the relationship requirement is
// resolved against the Resource per the rules in relationAllows.
type actionSpec struct {
	anyRoles        []models.Role // Allowed if the actor holds any of these
	group           Group         // Allowed if any actor role is in this group
	minRole         models.Role   // Allowed if any actor role outranks this
	relation        bool          // Requires a relationship to the resource
	requireApproval bool          // Staff must be admin-approved
}

var actionTable = map[Action]actionSpec{
	ActionThesisSubmit:    {anyRoles: []models.Role{models.RoleStudent}},
	ActionThesisView:      {relation: true},
	ActionThesisDownload:  {relation: true},
	ActionThesisDelete:    {anyRoles: []models.Role{models.RoleStudent, models.RoleAdmin}, relation: true},
	ActionThesisList:      {group: GroupManagement},
	ActionThesisEvaluate:  {minRole: models.RoleSupervisor, relation: true, requireApproval: true},
	ActionReviewSubmit:    {anyRoles: []models.Role{models.RoleAdmin}, group: GroupStaff, relation: true, requireApproval: true},
	ActionReviewSign:      {anyRoles: []models.Role{models.RoleAdmin}, group: GroupSigning, relation: true, requireApproval: true},
	ActionReReviewRequest: {anyRoles: []models.Role{models.RoleAdmin}, group: GroupStaff, relation: true, requireApproval: true},
	ActionAssignmentWrite: {group: GroupManagement},
	ActionTopicPropose:    {anyRoles: []models.Role{models.RoleStudent, models.RoleSupervisor}, relation: true},
	ActionTopicDecide:     {anyRoles: []models.Role{models.RoleSupervisor}, relation: true},
	ActionTopicRespond:    {anyRoles: []models.Role{models.RoleStudent}, relation: true},
	ActionUserApprove:     {group: GroupManagement},
	ActionUserList:        {group: GroupManagement},
}

// Resolver decides whether an actor may perform an action on a resource.
// It is a pure function of its inputs and the static registry tables: no
// storage access, clock or randomness, so identical inputs always yield
// the identical decision.
type Resolver struct {
	registry *Registry
}

// NewResolver creates a Resolver over the given registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Authorize implements the decision algorithm: authentication check, role
// gate (OR across the actor's roles, with hierarchy ascension for minimum
// role requirements), staff-approval gate, then relationship resolution.
// Absence of an explicit allow is a deny.
func (r *Resolver) Authorize(actor *Actor, action Action, res *Resource) Decision {
	if actor == nil {
		return deny(ReasonUnauthenticated, nil, nil)
	}

	spec, ok := actionTable[action]
	if !ok {
		return deny(ReasonUnknownAction, nil, actor)
	}

	required := r.requiredRoles(spec)
	if len(required) > 0 && !r.roleGatePasses(actor, spec) {
		return deny(ReasonMissingRole, required, actor)
	}

	if spec.requireApproval && !actor.Approved && !actor.hasRole(models.RoleAdmin) {
		return deny(ReasonPendingApproval, required, actor)
	}

	if spec.relation {
		return r.relationAllows(actor, res, required)
	}

	return allow()
}

func (a *Actor) hasRole(role models.Role) bool {
	for _, r := range a.roles() {
		if r == role {
			return true
		}
	}
	return false
}

func (r *Resolver) roleGatePasses(actor *Actor, spec actionSpec) bool {
	for _, role := range actor.roles() {
		for _, allowed := range spec.anyRoles {
			if role == allowed {
				return true
			}
		}
		if spec.group != "" && r.registry.InGroup(role, spec.group) {
			return true
		}
		if spec.minRole != "" && r.registry.Outranks(role, spec.minRole) {
			return true
		}
	}
	return false
}

func (r *Resolver) requiredRoles(spec actionSpec) []models.Role {
	var required []models.Role
	required = append(required, spec.anyRoles...)
	if spec.group != "" {
		required = append(required, r.registry.GroupMembers(spec.group)...)
	}
	if spec.minRole != "" {
		required = append(required, spec.minRole)
	}
	return required
}

// relationAllows applies the relationship rules: admin always allows; a
// student allows only on their own thesis; supervisor/consultant/reviewer
// allow only when the matching assignment field names them; head of
// department and dean are scoped purely by faculty equality with the
// owning student, with no assignment-based narrowing.
func (r *Resolver) relationAllows(actor *Actor, res *Resource, required []models.Role) Decision {
	if res == nil {
		return deny(ReasonNotAssigned, required, actor)
	}

	reason := ReasonNotAssigned
	for _, role := range actor.roles() {
		switch role {
		case models.RoleAdmin:
			return allow()
		case models.RoleStudent:
			if res.OwnerID == actor.ID {
				return allow()
			}
			reason = ReasonNotOwner
		case models.RoleSupervisor:
			if res.SupervisorID != nil && *res.SupervisorID == actor.ID {
				return allow()
			}
		case models.RoleConsultant:
			if res.ConsultantID != nil && *res.ConsultantID == actor.ID {
				return allow()
			}
		case models.RoleReviewer:
			if res.ReviewerID != nil && *res.ReviewerID == actor.ID {
				return allow()
			}
		case models.RoleHeadOfDepartment, models.RoleDean:
			if actor.Faculty != "" && actor.Faculty == res.OwnerFaculty {
				return allow()
			}
			reason = ReasonFacultyMismatch
		}
	}
	return deny(reason, required, actor)
}
