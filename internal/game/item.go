package game

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-errors"
)

// Item defines a type of object loaded from asset files. Definitions are
// immutable after load; mutable state (location, property overrides) lives
// on the WorldState.
type Item struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// CanTake controls whether the item can be picked up at all. Scenery
	// (doors, statues) sets this false.
	CanTake bool `json:"can_take"`

	// Aliases are alternate words players can use to refer to the item
	// (e.g. ["key", "brass key"]).
	Aliases []string `json:"aliases,omitempty"`

	// Properties is the author-defined property map (e.g. locked, value,
	// unlocks). Values are constrained to the Value variants.
	Properties map[string]Value `json:"properties,omitempty"`
}

// Matches reports whether text refers to this item by name or alias.
func (i *Item) Matches(text string) bool {
	text = strings.ToLower(text)
	if strings.ToLower(i.Name) == text {
		return true
	}
	for _, a := range i.Aliases {
		if strings.ToLower(a) == text {
			return true
		}
	}
	return false
}

// Validate satisfies storage.ValidatingSpec.
func (i *Item) Validate() error {
	el := errors.NewErrorList()

	if i.Name == "" {
		el.Add(fmt.Errorf("item name is required"))
	}
	if i.Description == "" {
		el.Add(fmt.Errorf("item description is required"))
	}
	for n, a := range i.Aliases {
		if a == "" {
			el.Add(fmt.Errorf("alias %d must not be empty", n))
		}
	}

	return el.Err()
}
