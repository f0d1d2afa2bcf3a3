package permission

import (
	"petrosmart-backend/shared/database/models"
)

// Action is a capability verb. Manage is the wildcard: a grant of Manage
// covers every other action on its subject.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionManage Action = "manage"
)

// Subject is a resource type the evaluator rules over.
type Subject string

const (
	SubjectUser      Subject = "users"
	SubjectRole      Subject = "roles"
	SubjectStation   Subject = "stations"
	SubjectProduct   Subject = "products"
	SubjectInventory Subject = "inventory"
	SubjectSettings  Subject = "settings"
	SubjectReport    Subject = "reports"
	SubjectAll       Subject = "all"
)

// Condition scopes a grant to specific resource instances, e.g. "own
// record" or "own station". A nil resource means a type-level check, which
// a conditional grant still answers with true.
type Condition func(actor *models.User, resource interface{}) bool

type rule struct {
	action    Action
	subject   Subject
	inverted  bool
	condition Condition
}

// Ability is an immutable policy object for one account. Rules are a fixed
// table per role; there is no per-role storage to consult.
type Ability struct {
	actor *models.User
	rules []rule
}

// selfOnly restricts a User grant to the actor's own record.
func selfOnly(actor *models.User, resource interface{}) bool {
	u, ok := resource.(*models.User)
	if !ok {
		return false
	}
	return u.ID == actor.ID
}

// ownStation restricts a Station grant to stations the actor manages.
func ownStation(actor *models.User, resource interface{}) bool {
	s, ok := resource.(*models.Station)
	if !ok {
		return false
	}
	return s.ManagerID != nil && *s.ManagerID == actor.ID
}

// AbilityFor builds the policy object for an account from its role.
func AbilityFor(user *models.User) *Ability {
	a := &Ability{actor: user}

	switch user.Role.Name {
	case models.RoleSuperAdmin:
		a.can(ActionManage, SubjectAll, nil)

	case models.RoleAdmin:
		a.can(ActionCreate, SubjectUser, nil)
		a.can(ActionRead, SubjectUser, nil)
		a.can(ActionUpdate, SubjectUser, nil)
		a.can(ActionDelete, SubjectUser, nil)
		a.can(ActionRead, SubjectRole, nil)
		a.can(ActionManage, SubjectStation, nil)
		a.can(ActionManage, SubjectProduct, nil)
		a.can(ActionManage, SubjectInventory, nil)
		a.can(ActionManage, SubjectSettings, nil)
		a.can(ActionCreate, SubjectReport, nil)
		a.can(ActionRead, SubjectReport, nil)
		// Admins administer accounts but never the role set itself.
		a.cannot(ActionManage, SubjectRole)

	case models.RoleManager:
		a.can(ActionRead, SubjectUser, nil)
		a.can(ActionUpdate, SubjectUser, selfOnly)
		a.can(ActionRead, SubjectStation, nil)
		a.can(ActionUpdate, SubjectStation, ownStation)
		a.can(ActionRead, SubjectProduct, nil)
		a.can(ActionRead, SubjectInventory, nil)
		a.can(ActionUpdate, SubjectInventory, nil)
		a.can(ActionRead, SubjectSettings, nil)
		a.can(ActionCreate, SubjectReport, nil)
		a.can(ActionRead, SubjectReport, nil)

	case models.RoleStaff:
		a.can(ActionRead, SubjectUser, selfOnly)
		a.can(ActionUpdate, SubjectUser, selfOnly)
		a.can(ActionRead, SubjectStation, nil)
		a.can(ActionRead, SubjectProduct, nil)
		a.can(ActionRead, SubjectInventory, nil)
		a.can(ActionUpdate, SubjectInventory, nil)
		a.can(ActionRead, SubjectSettings, nil)
		a.can(ActionRead, SubjectReport, nil)

	case models.RoleUser:
		a.can(ActionRead, SubjectUser, selfOnly)
		a.can(ActionUpdate, SubjectUser, selfOnly)

	case models.RoleGuest:
		a.can(ActionRead, SubjectSettings, nil)
	}

	return a
}

func (a *Ability) can(action Action, subject Subject, condition Condition) {
	a.rules = append(a.rules, rule{action: action, subject: subject, condition: condition})
}

func (a *Ability) cannot(action Action, subject Subject) {
	a.rules = append(a.rules, rule{action: action, subject: subject, inverted: true})
}

// matches reports whether a rule covers the requested action and subject.
// Manage grants expand to every action; an inverted rule matches its
// literal action only, so "cannot manage roles" does not strip narrower
// grants like "read roles".
func (r rule) matches(action Action, subject Subject) bool {
	if r.subject != SubjectAll && r.subject != subject {
		return false
	}
	if r.inverted {
		return r.action == action
	}
	return r.action == ActionManage || r.action == action
}

// Can evaluates the policy for an action on a subject, optionally scoped to
// a resource instance. The last matching rule wins; absent any match the
// answer is deny.
func (a *Ability) Can(action Action, subject Subject, resource interface{}) bool {
	allowed := false
	for _, r := range a.rules {
		if !r.matches(action, subject) {
			continue
		}
		if r.condition != nil && resource != nil && !r.condition(a.actor, resource) {
			continue
		}
		allowed = !r.inverted
	}
	return allowed
}

// Can is a convenience wrapper building the ability for a one-off check.
func Can(user *models.User, action Action, subject Subject, resource interface{}) bool {
	return AbilityFor(user).Can(action, subject, resource)
}
