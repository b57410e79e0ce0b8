package engine

import "strings"

// matches evaluates a handler's scope and conditions against an event and
// the current world state. Every condition must hold; a handler with no
// event_type condition matches any event type.
func (e *Engine) matches(h *Handler, ev *Event) bool {
	if !h.Eligible(e.originRoom(ev)) {
		return false
	}
	for key, want := range h.Conditions {
		if !e.matchCondition(key, want, ev) {
			return false
		}
	}
	return true
}

// originRoom resolves the room an event happened in, for scope checks.
// Movement and look events name their room explicitly; for everything else
// it is wherever the acting player stands.
func (e *Engine) originRoom(ev *Event) string {
	if room := ev.Data[DataFromRoom]; room != "" {
		return room
	}
	if room := ev.Data[DataToRoom]; room != "" {
		return room
	}
	room, err := e.world.PlayerRoom(ev.Player)
	if err != nil {
		return ""
	}
	return room
}

func (e *Engine) matchCondition(key, want string, ev *Event) bool {
	switch key {
	case CondEventType:
		return ev.Type == want

	case CondPlayerHas:
		return e.world.PlayerHasItem(ev.Player, want)

	case CondPlayerInRoom:
		room, err := e.world.PlayerRoom(ev.Player)
		return err == nil && room == want

	case CondFlagSet:
		return e.world.Flag(want).Truthy()

	case CondFlagUnset:
		return !e.world.Flag(want).Truthy()
	}

	if eventDataKeys[key] {
		return ev.Data[key] == want
	}

	if prop, ok := strings.CutPrefix(key, "player."); ok {
		v, err := e.world.PlayerProperty(ev.Player, prop)
		return err == nil && v.Matches(want)
	}

	if rest, ok := strings.CutPrefix(key, "item."); ok {
		id, prop, _ := strings.Cut(rest, ".")
		v, err := e.world.ItemProperty(id, prop)
		return err == nil && v.Matches(want)
	}

	if rest, ok := strings.CutPrefix(key, "room."); ok {
		id, prop, _ := strings.Cut(rest, ".")
		v, err := e.world.RoomProperty(id, prop)
		return err == nil && v.Matches(want)
	}

	// Unknown keys are rejected at load; reaching here means the handler
	// list was not validated.
	return false
}
