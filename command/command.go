package command

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/impact2d/ecs"
	"github.com/milk9111/impact2d/tilemap"
)

// Kind identifies the command variant.
type Kind uint8

const (
	// Collide reports a resolved contact against the map or another entity.
	Collide Kind = iota
	// Touch reports that Ent overlaps Other and checks against its group.
	Touch
	Setting
	Kill
	Damage
	Trigger
	Message
)

var kindNames = [...]string{"collide", "touch", "setting", "kill", "damage", "trigger", "message"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Command is a deferred request produced during a frame. Which fields are
// meaningful depends on Kind:
//
//	Collide  Ent, Other (zero for tile hits), Normal, Trace (nil for entity hits)
//	Touch    Ent, Other
//	Setting  Ent, Settings
//	Kill     Ent
//	Damage   Ent, Other (the source), Amount
//	Trigger  Ent, Other
//	Message  Ent, Payload
type Command struct {
	Kind     Kind
	Ent      ecs.Entity
	Other    ecs.Entity
	Normal   cp.Vector
	Trace    *tilemap.Trace
	Amount   float64
	Settings map[string]any
	Payload  any
}

func (c Command) String() string {
	return fmt.Sprintf("%s(%s)", c.Kind, c.Ent)
}
