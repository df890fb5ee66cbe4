package activity

import (
	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/internal/crm/scope"
)

// Actor is who an activity is attributed to: a user, or a named system process
type Actor struct {
	userID string
	name   string
	system bool
}

// NextBot is the actor for changes with no identifiable acting user
var NextBot = SystemActor(cnst.SystemActorName)

func UserActor(id, name string) Actor {
	return Actor{userID: id, name: name}
}

func SystemActor(label string) Actor {
	return Actor{name: label, system: true}
}

// ActorFor attributes work to the calling user, or to NextBot when there is none
func ActorFor(c scope.Caller) Actor {
	if c.UserID == "" {
		return NextBot
	}
	return UserActor(c.UserID, c.Name)
}

func (a Actor) UserID() string { return a.userID }
func (a Actor) Name() string   { return a.name }
func (a Actor) IsSystem() bool { return a.system }
