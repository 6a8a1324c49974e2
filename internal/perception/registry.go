package perception

import (
	"path/filepath"
)

type IconRole int

const (
	RoleMenu IconRole = iota
	RoleEvent
	RolePopup
	RoleOverweight
	RoleStatus
	RoleObjective
	RoleInWorld

	roleCount
)

var roleNames = [roleCount]string{"menu", "event", "popup", "overweight", "status", "objective", "inworld"}

func (r IconRole) String() string {
	if r < 0 || r >= roleCount {
		return "unknown"
	}
	return roleNames[r]
}

// Roles returns every role in canonical vector order.
func Roles() []IconRole {
	roles := make([]IconRole, 0, roleCount)
	for r := IconRole(0); r < roleCount; r++ {
		roles = append(roles, r)
	}
	return roles
}

// IconTemplate is one named icon. A hit on any of Files counts as a hit for Role.
type IconTemplate struct {
	Name       string
	Role       IconRole
	Confidence float64
	Files      []string
}

type Registry struct {
	templates [roleCount]IconTemplate
}

var defaultIconFiles = [roleCount][]string{
	RoleMenu:       {"menuicon.png", "fo1menuicon.png"},
	RoleEvent:      {"mutieevent.png", "lowresicon.png", "lowresicon1.png"},
	RolePopup:      {"ok.png"},
	RoleOverweight: {"overweight.png"},
	RoleStatus:     {"scoreicon.png"},
	RoleObjective:  {"tester.png", "tester1.png", "tester2.png"},
	RoleInWorld:    {"watericon.png"},
}

// NewRegistry builds the fixed icon registry rooted at dir.
func NewRegistry(dir string, confidence float64) *Registry {
	r := &Registry{}
	for _, role := range Roles() {
		files := make([]string, 0, len(defaultIconFiles[role]))
		for _, f := range defaultIconFiles[role] {
			files = append(files, filepath.Join(dir, f))
		}
		r.templates[role] = IconTemplate{
			Name:       role.String(),
			Role:       role,
			Confidence: confidence,
			Files:      files,
		}
	}

	return r
}

func (r *Registry) Template(role IconRole) IconTemplate {
	return r.templates[role]
}

func (r *Registry) Templates() []IconTemplate {
	out := make([]IconTemplate, len(r.templates))
	copy(out, r.templates[:])
	return out
}
