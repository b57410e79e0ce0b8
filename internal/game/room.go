package game

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// Room defines a location in the game world.
//
// Exit targets are checked against the room store when the world state is
// built, but the engine also tolerates a dangling target at runtime by
// refusing the move rather than failing the dispatch.
type Room struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// Exits maps a direction word to a destination room id.
	Exits map[string]string `json:"exits,omitempty"`

	// Items lists the ids of items initially present, in display order.
	Items []string `json:"items,omitempty"`

	// Properties is the author-defined property map (e.g. dark,
	// starting_room).
	Properties map[string]Value `json:"properties,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (r *Room) Validate() error {
	el := errors.NewErrorList()

	if r.Name == "" {
		el.Add(fmt.Errorf("room name is required"))
	}
	if r.Description == "" {
		el.Add(fmt.Errorf("room description is required"))
	}
	for dir, target := range r.Exits {
		if dir == "" {
			el.Add(fmt.Errorf("exit direction must not be empty"))
		}
		if target == "" {
			el.Add(fmt.Errorf("exit %s: destination room id is required", dir))
		}
	}
	for n, id := range r.Items {
		if id == "" {
			el.Add(fmt.Errorf("item %d: id must not be empty", n))
		}
	}

	return el.Err()
}
