package command

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/impact2d/ecs"
	"github.com/milk9111/impact2d/tilemap"
)

// Queue is an append-only FIFO of commands, drained once per frame.
type Queue struct {
	items []Command
}

// Add appends a command.
func (q *Queue) Add(cmd Command) {
	if q == nil {
		return
	}
	q.items = append(q.items, cmd)
}

// Take returns all queued commands in insertion order and clears the queue.
func (q *Queue) Take() []Command {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len returns the number of pending commands.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Clear drops every pending command.
func (q *Queue) Clear() {
	if q == nil {
		return
	}
	q.items = nil
}

// CollideTile queues a contact against the tile grid.
func (q *Queue) CollideTile(ent ecs.Entity, normal cp.Vector, trace *tilemap.Trace) {
	q.Add(Command{Kind: Collide, Ent: ent, Normal: normal, Trace: trace})
}

// CollideEntity queues a contact between ent and other. normal points away
// from other.
func (q *Queue) CollideEntity(ent, other ecs.Entity, normal cp.Vector) {
	q.Add(Command{Kind: Collide, Ent: ent, Other: other, Normal: normal})
}

func (q *Queue) Touch(ent, other ecs.Entity) {
	q.Add(Command{Kind: Touch, Ent: ent, Other: other})
}

func (q *Queue) Setting(ent ecs.Entity, settings map[string]any) {
	q.Add(Command{Kind: Setting, Ent: ent, Settings: settings})
}

func (q *Queue) Kill(ent ecs.Entity) {
	q.Add(Command{Kind: Kill, Ent: ent})
}

func (q *Queue) Damage(ent, by ecs.Entity, amount float64) {
	q.Add(Command{Kind: Damage, Ent: ent, Other: by, Amount: amount})
}

func (q *Queue) Trigger(ent, other ecs.Entity) {
	q.Add(Command{Kind: Trigger, Ent: ent, Other: other})
}

func (q *Queue) Message(ent ecs.Entity, payload any) {
	q.Add(Command{Kind: Message, Ent: ent, Payload: payload})
}
