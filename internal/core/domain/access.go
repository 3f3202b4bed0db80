package domain

// AccessLevel names the role a caller must hold for an operation.
type AccessLevel int

const (
	AccessPublic AccessLevel = iota
	AccessAuthenticated
	AccessSelfOrSuperuser
	AccessSuperuser
)

func (l AccessLevel) String() string {
	switch l {
	case AccessPublic:
		return "public"
	case AccessAuthenticated:
		return "authenticated"
	case AccessSelfOrSuperuser:
		return "self_or_superuser"
	case AccessSuperuser:
		return "superuser"
	default:
		return "unknown"
	}
}

// Requirement is the authorization rule attached to an operation.
// TargetID is only meaningful for AccessSelfOrSuperuser.
type Requirement struct {
	Level    AccessLevel
	TargetID int64
}

func Public() Requirement           { return Requirement{Level: AccessPublic} }
func AnyAuthenticated() Requirement { return Requirement{Level: AccessAuthenticated} }
func SuperuserOnly() Requirement    { return Requirement{Level: AccessSuperuser} }

func SelfOrSuperuser(target int64) Requirement {
	return Requirement{Level: AccessSelfOrSuperuser, TargetID: target}
}

// Allows applies the role rule to an already resolved caller. A nil identity
// only satisfies AccessPublic.
func (r Requirement) Allows(id *Identity) error {
	if r.Level == AccessPublic {
		return nil
	}
	if id == nil {
		return ErrUnauthenticated
	}

	switch r.Level {
	case AccessAuthenticated:
		return nil
	case AccessSelfOrSuperuser:
		if id.ID == r.TargetID || id.IsSuperuser {
			return nil
		}
	case AccessSuperuser:
		if id.IsSuperuser {
			return nil
		}
	}
	return ErrForbidden
}
