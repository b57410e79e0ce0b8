package game

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// Settings is the world-level portion of the game definition: where new
// players start and which global flags are seeded at startup.
type Settings struct {
	StartRoom    string           `json:"start_room"`
	InitialFlags map[string]Value `json:"initial_flags,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (s *Settings) Validate() error {
	el := errors.NewErrorList()

	if s.StartRoom == "" {
		el.Add(fmt.Errorf("start_room is required"))
	}
	for name := range s.InitialFlags {
		if name == "" {
			el.Add(fmt.Errorf("flag name must not be empty"))
		}
	}

	return el.Err()
}
