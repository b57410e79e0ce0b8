package engine

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-errors"
)

// Condition keys with fixed meanings. Any other key must either name an
// event data field or use one of the item./room./player. prefixes.
const (
	CondEventType    = "event_type"
	CondPlayerHas    = "player_has_item"
	CondPlayerInRoom = "player_in_room"
	CondFlagSet      = "flag_set"
	CondFlagUnset    = "flag_unset"
)

// eventDataKeys are the condition keys matched against event data.
var eventDataKeys = map[string]bool{
	DataItem:       true,
	DataUsedItem:   true,
	DataTargetItem: true,
	DataItem1:      true,
	DataItem2:      true,
	DataDirection:  true,
	DataFromRoom:   true,
	DataToRoom:     true,
	DataFlag:       true,
	DataValue:      true,
}

// ScopeGlobal makes a handler eligible for events from any room. The
// alternative is "room:<id>", restricting it to events originating there.
const ScopeGlobal = "global"

const scopeRoomPrefix = "room:"

// Handler is one declarative rule: when an event arrives in the handler's
// scope whose fields satisfy every condition, the effects run in order.
//
// A handler without an event_type condition matches every event type; that
// is legal but something authors should do deliberately.
type Handler struct {
	ID         string            `json:"id"`
	Scope      string            `json:"scope,omitempty"`
	Conditions map[string]string `json:"conditions"`
	Effects    []*Effect         `json:"effects"`
}

// Eligible reports whether the handler's scope covers the given room. An
// empty scope means global.
func (h *Handler) Eligible(originRoom string) bool {
	if h.Scope == "" || h.Scope == ScopeGlobal {
		return true
	}
	return strings.TrimPrefix(h.Scope, scopeRoomPrefix) == originRoom
}

func (h *Handler) Validate() error {
	el := errors.NewErrorList()

	if h.ID == "" {
		el.Add(fmt.Errorf("handler id is required"))
	}

	if h.Scope != "" && h.Scope != ScopeGlobal {
		if !strings.HasPrefix(h.Scope, scopeRoomPrefix) || len(h.Scope) == len(scopeRoomPrefix) {
			el.Add(fmt.Errorf("scope must be %q or %q", ScopeGlobal, scopeRoomPrefix+"<id>"))
		}
	}

	for key, val := range h.Conditions {
		if val == "" {
			el.Add(fmt.Errorf("condition %q must have a value", key))
		}
		if !validConditionKey(key) {
			el.Add(fmt.Errorf("unknown condition key %q", key))
		}
	}

	if len(h.Effects) == 0 {
		el.Add(fmt.Errorf("handler must have at least one effect"))
	}
	for n, effect := range h.Effects {
		if err := effect.Validate(); err != nil {
			el.Add(fmt.Errorf("effect %d: %w", n, err))
		}
	}

	return el.Err()
}

func validConditionKey(key string) bool {
	switch key {
	case CondEventType, CondPlayerHas, CondPlayerInRoom, CondFlagSet, CondFlagUnset:
		return true
	}
	if eventDataKeys[key] {
		return true
	}
	// item.<id>.<prop> and room.<id>.<prop> compare against world state;
	// player.<prop> compares against the acting player.
	if strings.HasPrefix(key, "player.") {
		return len(key) > len("player.")
	}
	for _, prefix := range []string{"item.", "room."} {
		if rest, ok := strings.CutPrefix(key, prefix); ok {
			id, prop, found := strings.Cut(rest, ".")
			return found && id != "" && prop != ""
		}
	}
	return false
}

// HandlerList is the ordered set of handlers for a world. Declaration
// order is dispatch order, which is why the list lives in a single file.
type HandlerList []*Handler

func (l *HandlerList) Validate() error {
	el := errors.NewErrorList()

	seen := map[string]bool{}
	for n, h := range *l {
		if err := h.Validate(); err != nil {
			el.Add(fmt.Errorf("handler %d (%s): %w", n, h.ID, err))
			continue
		}
		if seen[h.ID] {
			el.Add(fmt.Errorf("duplicate handler id %q", h.ID))
		}
		seen[h.ID] = true
	}

	return el.Err()
}
