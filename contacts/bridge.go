// Package contacts turns physics contact callbacks into entity-aware events.
//
// Each contact is resolved to the two entities owning the touching bodies and
// classified as solid (neither shape is a sensor) or sensor (at least one
// shape is). Subscribers register for one of Begin/End x Solid/Sensor and are
// called synchronously, in registration order, inside the physics step.
package contacts

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/yohamta/donburi"
	"go.uber.org/zap"

	"github.com/automoto/tileworld/logging"
	"github.com/automoto/tileworld/physics"
)

// Kind is the four-way classification of a contact.
type Kind int

const (
	BeginSolid Kind = iota
	EndSolid
	BeginSensor
	EndSensor
	kindCount
)

func (k Kind) String() string {
	switch k {
	case BeginSolid:
		return "begin-solid"
	case EndSolid:
		return "end-solid"
	case BeginSensor:
		return "begin-sensor"
	case EndSensor:
		return "end-sensor"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is one resolved contact. It is only valid during the callback.
type Event struct {
	EntityA, EntityB donburi.Entity
	Contact          physics.Contact
}

// Handler receives contact events.
type Handler func(Event)

// Entities resolves entity validity and debug names.
type Entities interface {
	Valid(e donburi.Entity) bool
	NameOf(e donburi.Entity) string
}

// Bridge implements physics.ContactListener.
type Bridge struct {
	entities Entities
	handlers [kindCount][]Handler
	log      *zap.Logger
}

var _ physics.ContactListener = (*Bridge)(nil)

func NewBridge(entities Entities, logger *zap.Logger) *Bridge {
	return &Bridge{
		entities: entities,
		log:      logging.OrNop(logger),
	}
}

// Subscribe registers h for contacts of the given kind.
func (b *Bridge) Subscribe(kind Kind, h Handler) {
	if kind < 0 || kind >= kindCount {
		panic(fmt.Sprintf("contacts: subscribe to unknown kind %d", int(kind)))
	}
	b.handlers[kind] = append(b.handlers[kind], h)
}

// Subscribers returns the number of handlers registered for kind.
func (b *Bridge) Subscribers(kind Kind) int {
	if kind < 0 || kind >= kindCount {
		return 0
	}
	return len(b.handlers[kind])
}

func (b *Bridge) OnContactBegin(c physics.Contact) {
	b.dispatch(c, BeginSolid, BeginSensor)
}

func (b *Bridge) OnContactEnd(c physics.Contact) {
	b.dispatch(c, EndSolid, EndSensor)
}

func (b *Bridge) dispatch(c physics.Contact, solid, sensor Kind) {
	if c.ShapeA == nil || c.ShapeB == nil {
		b.log.Warn("contact without shapes dropped")
		return
	}

	entityA, okA := b.resolve(c.ShapeA)
	entityB, okB := b.resolve(c.ShapeB)
	if !okA || !okB {
		return
	}

	kind := solid
	if c.ShapeA.Sensor() || c.ShapeB.Sensor() {
		kind = sensor
	}

	ev := Event{EntityA: entityA, EntityB: entityB, Contact: c}
	for _, h := range b.handlers[kind] {
		h(ev)
	}
}

func (b *Bridge) resolve(shape *cp.Shape) (donburi.Entity, bool) {
	var none donburi.Entity
	body := shape.Body()
	if body == nil {
		b.log.Warn("contact shape has no body")
		return none, false
	}
	e, ok := body.UserData.(donburi.Entity)
	if !ok {
		b.log.Warn("contact body has no entity tag", zap.Any("user_data", body.UserData))
		return none, false
	}
	if !b.entities.Valid(e) {
		b.log.Debug("contact with invalid entity dropped",
			zap.Any("entity", e),
			zap.String("name", b.entities.NameOf(e)))
		return none, false
	}
	return e, true
}
