package back

// Role is one of the five fixed positions a player queues for.
type Role int

const ( // this is stored in DB, don't change values
	RoleTop     Role = 0
	RoleJungle  Role = 1
	RoleMid     Role = 2
	RoleBot     Role = 3
	RoleSupport Role = 4
)

// Roles lists every role in a fixed order, the matchmaker relies on this
// order being stable to keep its enumeration deterministic.
var Roles = [5]Role{RoleTop, RoleJungle, RoleMid, RoleBot, RoleSupport} // nolint:gochecknoglobals

func (r Role) Name() string {
	switch r {
	case RoleTop:
		return "top"
	case RoleJungle:
		return "jungle"
	case RoleMid:
		return "mid"
	case RoleBot:
		return "bot"
	case RoleSupport:
		return "support"
	default:
		return "invalid"
	}
}

func (r Role) IsValid() bool {
	return r >= RoleTop && r <= RoleSupport
}
