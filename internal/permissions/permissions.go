// Package permissions defines the closed set of capabilities a user can hold.
//
// A capability pairs an entity with an action. Its string form follows the
// "<app>.<action>_<entity>" convention, e.g. "company.add_project".
package permissions

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Entity is a permission-protected model.
type Entity int

const (
	EntityCompany Entity = iota
	EntityProject
	EntityInteraction
	EntityKeyword
	EntityUser
)

var entityNames = map[Entity]string{
	EntityCompany:     "company",
	EntityProject:     "project",
	EntityInteraction: "interaction",
	EntityKeyword:     "keyword",
	EntityUser:        "user",
}

// String returns the lowercase entity name.
func (e Entity) String() string {
	if name, ok := entityNames[e]; ok {
		return name
	}
	return "unknown"
}

// App returns the application label the entity belongs to.
func (e Entity) App() string {
	switch e {
	case EntityCompany, EntityProject:
		return "company"
	default:
		return "management"
	}
}

// Action is an operation on an entity.
type Action int

const (
	ActionView Action = iota
	ActionAdd
	ActionChange
	ActionDelete
)

var actionNames = map[Action]string{
	ActionView:   "view",
	ActionAdd:    "add",
	ActionChange: "change",
	ActionDelete: "delete",
}

// String returns the lowercase action name.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// Capability grants one action on one entity.
type Capability struct {
	Entity Entity
	Action Action
}

// String returns the "<app>.<action>_<entity>" form.
func (c Capability) String() string {
	return fmt.Sprintf("%s.%s_%s", c.Entity.App(), c.Action, c.Entity)
}

// Capabilities checked by the HTTP layer.
var (
	AddCompany    = Capability{EntityCompany, ActionAdd}
	ChangeCompany = Capability{EntityCompany, ActionChange}
	DeleteCompany = Capability{EntityCompany, ActionDelete}

	AddProject    = Capability{EntityProject, ActionAdd}
	ChangeProject = Capability{EntityProject, ActionChange}
	DeleteProject = Capability{EntityProject, ActionDelete}

	ViewInteraction   = Capability{EntityInteraction, ActionView}
	AddInteraction    = Capability{EntityInteraction, ActionAdd}
	ChangeInteraction = Capability{EntityInteraction, ActionChange}
	DeleteInteraction = Capability{EntityInteraction, ActionDelete}
)

// ErrUnknownCapability is returned by Parse for strings outside the enum.
var ErrUnknownCapability = errors.New("unknown capability")

// All returns every capability in a stable order.
func All() []Capability {
	all := make([]Capability, 0, len(entityNames)*len(actionNames))
	for e := EntityCompany; e <= EntityUser; e++ {
		for a := ActionView; a <= ActionDelete; a++ {
			all = append(all, Capability{Entity: e, Action: a})
		}
	}
	return all
}

// Parse converts "<app>.<action>_<entity>" back into a Capability.
func Parse(s string) (Capability, error) {
	s = strings.TrimSpace(s)
	for _, c := range All() {
		if c.String() == s {
			return c, nil
		}
	}
	return Capability{}, fmt.Errorf("%w: %q", ErrUnknownCapability, s)
}

// Set is the capability set held by one identity.
type Set struct {
	superuser bool
	caps      map[Capability]struct{}
}

// NewSet builds a set from granted capabilities.
func NewSet(caps ...Capability) Set {
	s := Set{caps: make(map[Capability]struct{}, len(caps))}
	for _, c := range caps {
		s.caps[c] = struct{}{}
	}
	return s
}

// SuperuserSet holds every capability.
func SuperuserSet() Set {
	return Set{superuser: true}
}

// Has reports whether every given capability is held.
func (s Set) Has(caps ...Capability) bool {
	if s.superuser {
		return true
	}
	for _, c := range caps {
		if _, ok := s.caps[c]; !ok {
			return false
		}
	}
	return true
}

// Strings lists the held capabilities in sorted string form.
func (s Set) Strings() []string {
	var caps []Capability
	if s.superuser {
		caps = All()
	} else {
		for c := range s.caps {
			caps = append(caps, c)
		}
	}
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = c.String()
	}
	sort.Strings(out)
	return out
}
