package engine

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-quest/internal/game"
)

// Effect operations.
const (
	OpSetProperty   = "set_property"
	OpSetFlag       = "set_flag"
	OpAdjustScore   = "adjust_score"
	OpMoveItem      = "move_item"
	OpAddExit       = "add_exit"
	OpRespond       = "respond"
	OpBlockMovement = "block_movement"
)

// Effect is one state change or response declared in a handler. Which
// fields apply depends on Op; Validate enforces the combinations.
type Effect struct {
	Op string `json:"op"`

	// set_property targets exactly one of Item or Room.
	Item string `json:"item,omitempty"`
	Room string `json:"room,omitempty"`
	Key  string `json:"key,omitempty"`

	// set_property and set_flag payload. set_flag defaults to true when
	// omitted.
	Value game.Value `json:"value,omitempty"`

	Flag   string `json:"flag,omitempty"`
	Amount int    `json:"amount,omitempty"`

	// move_item destination: "room:<id>", "item:<id>", or "player".
	To string `json:"to,omitempty"`

	// add_exit fields. Target may name a room that does not exist yet;
	// moving through such an exit is refused at runtime.
	Direction string `json:"direction,omitempty"`
	Target    string `json:"target,omitempty"`

	// respond and block_movement template text.
	Text string `json:"text,omitempty"`

	tmpl *template.Template
}

func (e *Effect) Validate() error {
	el := errors.NewErrorList()

	switch e.Op {
	case OpSetProperty:
		if e.Key == "" {
			el.Add(fmt.Errorf("set_property requires key"))
		}
		if (e.Item == "") == (e.Room == "") {
			el.Add(fmt.Errorf("set_property requires exactly one of item or room"))
		}
	case OpSetFlag:
		if e.Flag == "" {
			el.Add(fmt.Errorf("set_flag requires flag"))
		}
	case OpAdjustScore:
		if e.Amount == 0 {
			el.Add(fmt.Errorf("adjust_score requires a non-zero amount"))
		}
	case OpMoveItem:
		if e.Item == "" {
			el.Add(fmt.Errorf("move_item requires item"))
		}
		if err := validateDestination(e.To); err != nil {
			el.Add(err)
		}
	case OpAddExit:
		if e.Room == "" {
			el.Add(fmt.Errorf("add_exit requires room"))
		}
		if e.Direction == "" {
			el.Add(fmt.Errorf("add_exit requires direction"))
		}
		if e.Target == "" {
			el.Add(fmt.Errorf("add_exit requires target"))
		}
	case OpRespond:
		if e.Text == "" {
			el.Add(fmt.Errorf("respond requires text"))
		}
	case OpBlockMovement:
		// Text is optional; a default refusal is used when empty.
	case "":
		el.Add(fmt.Errorf("effect op is required"))
	default:
		el.Add(fmt.Errorf("unknown effect op %q", e.Op))
	}

	return el.Err()
}

func validateDestination(to string) error {
	if to == "player" {
		return nil
	}
	kind, id, ok := strings.Cut(to, ":")
	if !ok || id == "" || (kind != "room" && kind != "item") {
		return fmt.Errorf("move_item destination must be \"room:<id>\", \"item:<id>\", or \"player\", got %q", to)
	}
	return nil
}

// destination resolves the To field against the acting player.
func (e *Effect) destination(playerID string) (game.Location, error) {
	if e.To == "player" {
		return game.InventoryLocation(playerID), nil
	}
	kind, id, _ := strings.Cut(e.To, ":")
	switch kind {
	case "room":
		return game.RoomLocation(id), nil
	case "item":
		return game.ContainerLocation(id), nil
	default:
		return game.Location{}, fmt.Errorf("bad destination %q", e.To)
	}
}
