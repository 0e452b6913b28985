package auth

import (
	"fmt"

	"github.com/samber/lo"
)

// Role は閉じた列挙。未知の文字列は RoleNone になり、何の権限も持たない。
type Role uint8

const (
	RoleNone Role = iota
	RoleLearner
	RoleAdmin
	RoleLead
	RoleFrontDev
	RoleBackDev
	RoleDataDev
	RoleTestExpert
)

var roleNames = [...]string{
	RoleNone:       "",
	RoleLearner:    "learner",
	RoleAdmin:      "admin",
	RoleLead:       "lead",
	RoleFrontDev:   "front_dev",
	RoleBackDev:    "back_dev",
	RoleDataDev:    "data_dev",
	RoleTestExpert: "test_expert",
}

var allRoles = []Role{RoleLearner, RoleAdmin, RoleLead, RoleFrontDev, RoleBackDev, RoleDataDev, RoleTestExpert}

func AllRoles() []Role { return append([]Role(nil), allRoles...) }

func ParseRole(s string) (Role, bool) {
	for _, r := range allRoles {
		if roleNames[r] == s {
			return r, true
		}
	}
	return RoleNone, false
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return ""
}

func (r Role) Valid() bool { return r != RoleNone && int(r) < len(roleNames) }

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", r)
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, ok := ParseRole(string(b))
	if !ok {
		return fmt.Errorf("unknown role %q", string(b))
	}
	*r = parsed
	return nil
}

// Capability はエンドポイント単位の権限ビット
type Capability uint8

const (
	CapSubmit Capability = 1 << iota
	CapList
	CapValidate
	CapManageAccounts
)

// 権限表はここだけで定義する（エンドポイントごとに許可リストを持たない）
var capabilities = map[Role]Capability{
	RoleLearner:    CapSubmit,
	RoleAdmin:      CapSubmit | CapList | CapManageAccounts,
	RoleLead:       CapSubmit | CapList,
	RoleFrontDev:   CapSubmit,
	RoleBackDev:    CapSubmit,
	RoleDataDev:    CapSubmit,
	RoleTestExpert: CapSubmit | CapList | CapValidate,
}

func (r Role) Can(c Capability) bool {
	return c != 0 && capabilities[r]&c == c
}

// RolesWith lists the roles holding every bit of c, in declaration order.
func RolesWith(c Capability) []Role {
	return lo.Filter(allRoles, func(r Role, _ int) bool { return r.Can(c) })
}

func RoleNames(roles []Role) []string {
	return lo.Map(roles, func(r Role, _ int) string { return r.String() })
}
