package engine

import (
	"context"
	"fmt"

	"github.com/pixil98/go-log"
	"github.com/pixil98/go-quest/internal/game"
)

// outcome accumulates the player-visible results of a dispatch. Later
// respond effects replace earlier ones; a block wins over everything for
// movement events.
type outcome struct {
	response    string
	hasResponse bool

	block     bool
	blockText string

	flagChanges []flagChange
}

type flagChange struct {
	name  string
	value game.Value
}

// runEffects executes one handler's effects in order. A failing effect is
// logged and skipped; the remaining effects still run so a bad item id in
// one effect cannot wedge the handler.
func (e *Engine) runEffects(ctx context.Context, h *Handler, ev *Event, out *outcome) {
	logger := log.GetLogger(ctx).WithField("handler", h.ID)

	data := &TemplateData{
		Player: ev.Player,
		Event:  ev.Data,
	}
	if room, err := e.world.PlayerRoom(ev.Player); err == nil {
		data.Room = room
	}

	for n, effect := range h.Effects {
		err := e.runEffect(effect, ev, data, out)
		if err != nil {
			logger.Warnf("effect %d (%s) failed: %v", n, effect.Op, err)
		}
	}
}

func (e *Engine) runEffect(effect *Effect, ev *Event, data *TemplateData, out *outcome) error {
	switch effect.Op {
	case OpSetProperty:
		if effect.Item != "" {
			return e.world.SetItemProperty(effect.Item, effect.Key, effect.Value)
		}
		return e.world.SetRoomProperty(effect.Room, effect.Key, effect.Value)

	case OpSetFlag:
		val := effect.Value
		if val.Kind() == game.ValueNil {
			val = game.BoolValue(true)
		}
		if e.world.SetFlag(effect.Flag, val) {
			out.flagChanges = append(out.flagChanges, flagChange{effect.Flag, val})
		}
		return nil

	case OpAdjustScore:
		return e.world.AddScore(ev.Player, effect.Amount)

	case OpMoveItem:
		loc, err := effect.destination(ev.Player)
		if err != nil {
			return err
		}
		return e.world.MoveItem(effect.Item, loc)

	case OpAddExit:
		return e.world.AddExit(effect.Room, effect.Direction, effect.Target)

	case OpRespond:
		text, err := expandTemplate(effect.tmpl, data)
		if err != nil {
			return err
		}
		out.response = text
		out.hasResponse = true
		return nil

	case OpBlockMovement:
		out.block = true
		if effect.tmpl != nil {
			text, err := expandTemplate(effect.tmpl, data)
			if err != nil {
				return err
			}
			out.blockText = text
		}
		return nil

	default:
		return fmt.Errorf("unknown effect op %q", effect.Op)
	}
}
