package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pixil98/go-log"
	"github.com/pixil98/go-quest/internal/game"
)

const (
	// takeScore is awarded for successfully picking up an item.
	takeScore = 5

	// maxNotifyDepth caps chained notification dispatches so a handler
	// that sets a flag from a flag_changed event cannot loop forever.
	maxNotifyDepth = 8
)

// Result is what one player action produced: text for the acting player
// and, for movement, the rooms involved so callers can notify bystanders.
type Result struct {
	Text    string
	Blocked bool

	MovedFrom string
	MovedTo   string
}

// Engine dispatches events against the handler list and applies built-in
// game rules. A single mutex serializes all dispatches, so handlers always
// observe a consistent world and effects from concurrent players never
// interleave.
type Engine struct {
	world    *game.WorldState
	handlers HandlerList

	mu sync.Mutex
}

// NewEngine compiles the handler list against the world. Handler templates
// are parsed here so authoring errors fail startup.
func NewEngine(world *game.WorldState, handlers HandlerList) (*Engine, error) {
	funcs := templateFuncs(world)

	for _, h := range handlers {
		for n, effect := range h.Effects {
			if effect.Text == "" {
				continue
			}
			tmpl, err := parseTemplate(fmt.Sprintf("%s-%d", h.ID, n), effect.Text, funcs)
			if err != nil {
				return nil, fmt.Errorf("handler %q effect %d: %w", h.ID, n, err)
			}
			effect.tmpl = tmpl
		}
	}

	return &Engine{
		world:    world,
		handlers: handlers,
	}, nil
}

// World exposes the underlying state for read-side callers (the session
// layer resolves names and renders status from it).
func (e *Engine) World() *game.WorldState {
	return e.world
}

// dispatch runs all matching handlers in declaration order and returns the
// combined outcome. Conditions are evaluated up front, against the state as
// it was when the event arrived, so one handler's effects cannot change
// which later handlers fire. Callers must hold e.mu.
func (e *Engine) dispatch(ctx context.Context, ev *Event) *outcome {
	var matched []*Handler
	for _, h := range e.handlers {
		if e.matches(h, ev) {
			matched = append(matched, h)
		}
	}

	out := &outcome{}
	for _, h := range matched {
		e.runEffects(ctx, h, ev, out)
		if out.block && ev.Type == EventAttemptMove {
			break
		}
	}
	return out
}

// notify dispatches a notification event and any flag_changed events its
// effects produce. Responses are discarded. Callers must hold e.mu.
func (e *Engine) notify(ctx context.Context, ev *Event) {
	queue := []*Event{ev}
	for depth := 0; len(queue) > 0; depth++ {
		if depth >= maxNotifyDepth {
			log.GetLogger(ctx).Warnf("notification chain exceeded depth %d, dropping %d event(s)", maxNotifyDepth, len(queue))
			return
		}
		next := queue[0]
		queue = queue[1:]
		out := e.dispatch(ctx, next)
		queue = append(queue, flagEvents(next.Player, out)...)
	}
}

func flagEvents(player string, out *outcome) []*Event {
	events := make([]*Event, 0, len(out.flagChanges))
	for _, fc := range out.flagChanges {
		events = append(events, NewEvent(EventFlagChanged, player, map[string]string{
			DataFlag:  fc.name,
			DataValue: fc.value.String(),
		}))
	}
	return events
}

// finish drains flag notifications from a player-facing dispatch.
func (e *Engine) finish(ctx context.Context, player string, out *outcome) {
	for _, ev := range flagEvents(player, out) {
		e.notify(ctx, ev)
	}
}

// Join registers a player, announcing them on first sight, and returns
// their view of the starting room.
func (e *Engine) Join(ctx context.Context, player string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	created := e.world.GetOrCreatePlayer(player)
	if created {
		room, _ := e.world.PlayerRoom(player)
		e.notify(ctx, NewEvent(EventPlayerJoined, player, map[string]string{
			DataToRoom: room,
		}))
	}

	return e.look(ctx, player)
}

// Leave removes a player from the world.
func (e *Engine) Leave(ctx context.Context, player string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.world.RemovePlayer(player)
}

// Look describes the player's current room and dispatches look_room so
// handlers can add to the description.
func (e *Engine) Look(ctx context.Context, player string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.look(ctx, player)
}

func (e *Engine) look(ctx context.Context, player string) (*Result, error) {
	room, err := e.world.PlayerRoom(player)
	if err != nil {
		return nil, fmt.Errorf("looking up player %q: %w", player, err)
	}

	text, err := e.describeRoom(player, room)
	if err != nil {
		return nil, err
	}

	out := e.dispatch(ctx, NewEvent(EventLookRoom, player, map[string]string{
		DataFromRoom: room,
	}))
	e.finish(ctx, player, out)
	if out.hasResponse {
		text = text + "\n\n" + out.response
	}

	return &Result{Text: text}, nil
}

// Move attempts to move the player in a direction. Handlers see the
// attempt first and may block it; otherwise the exit map decides.
func (e *Engine) Move(ctx context.Context, player, direction string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	from, err := e.world.PlayerRoom(player)
	if err != nil {
		return nil, fmt.Errorf("looking up player %q: %w", player, err)
	}

	out := e.dispatch(ctx, NewEvent(EventAttemptMove, player, map[string]string{
		DataDirection: direction,
		DataFromRoom:  from,
	}))
	e.finish(ctx, player, out)

	if out.block {
		text := out.blockText
		if text == "" {
			text = "Something blocks your way."
		}
		return &Result{Text: text, Blocked: true}, nil
	}

	target, ok := e.world.Exit(from, direction)
	if !ok || !e.world.RoomExists(target) {
		return &Result{Text: "You can't go that way."}, nil
	}

	err = e.world.SetPlayerRoom(player, target)
	if err != nil {
		return nil, fmt.Errorf("moving player %q: %w", player, err)
	}

	e.notify(ctx, NewEvent(EventPlayerMoved, player, map[string]string{
		DataFromRoom: from,
		DataToRoom:   target,
	}))

	look, err := e.look(ctx, player)
	if err != nil {
		return nil, err
	}

	text := look.Text
	if out.hasResponse {
		text = out.response + "\n\n" + text
	}

	return &Result{Text: text, MovedFrom: from, MovedTo: target}, nil
}

// Take picks up an item from the player's room. Handlers only see the
// event when the pickup actually happened.
func (e *Engine) Take(ctx context.Context, player, itemID string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.world.TakeItem(player, itemID)
	switch {
	case err == nil:
	case errors.Is(err, game.ErrCannotTake):
		return &Result{Text: fmt.Sprintf("You can't take the %s.", e.world.ItemName(itemID))}, nil
	case errors.Is(err, game.ErrInventoryFull):
		return &Result{Text: "Your hands are full."}, nil
	case errors.Is(err, game.ErrNotFound):
		return &Result{Text: "You don't see that here."}, nil
	default:
		return nil, err
	}

	if err := e.world.AddScore(player, takeScore); err != nil {
		return nil, err
	}

	out := e.dispatch(ctx, NewEvent(EventItemTaken, player, map[string]string{
		DataItem: itemID,
	}))
	e.finish(ctx, player, out)

	text := "Taken."
	if out.hasResponse {
		text = out.response
	}
	return &Result{Text: text}, nil
}

// Drop puts a carried item down in the player's current room.
func (e *Engine) Drop(ctx context.Context, player, itemID string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.world.DropItem(player, itemID)
	if errors.Is(err, game.ErrNotFound) {
		return &Result{Text: "You aren't carrying that."}, nil
	}
	if err != nil {
		return nil, err
	}

	out := e.dispatch(ctx, NewEvent(EventItemDropped, player, map[string]string{
		DataItem: itemID,
	}))
	e.finish(ctx, player, out)

	text := "Dropped."
	if out.hasResponse {
		text = out.response
	}
	return &Result{Text: text}, nil
}

// Examine shows an item's description and dispatches examine_item so
// handlers can reveal more.
func (e *Engine) Examine(ctx context.Context, player, itemID string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	item, err := e.world.Item(itemID)
	if err != nil {
		return nil, fmt.Errorf("looking up item %q: %w", itemID, err)
	}

	out := e.dispatch(ctx, NewEvent(EventExamineItem, player, map[string]string{
		DataItem: itemID,
	}))
	e.finish(ctx, player, out)

	text := item.Description
	if out.hasResponse {
		text = text + "\n\n" + out.response
	}
	return &Result{Text: text}, nil
}

// Open asks handlers to open an item. Without a matching handler the item
// stays shut.
func (e *Engine) Open(ctx context.Context, player, itemID string) (*Result, error) {
	return e.attempt(ctx, EventOpenAttempt, player, itemID, "You can't open the %s.")
}

// Close asks handlers to close an item.
func (e *Engine) Close(ctx context.Context, player, itemID string) (*Result, error) {
	return e.attempt(ctx, EventCloseAttempt, player, itemID, "You can't close the %s.")
}

func (e *Engine) attempt(ctx context.Context, eventType, player, itemID, refusal string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := e.dispatch(ctx, NewEvent(eventType, player, map[string]string{
		DataItem: itemID,
	}))
	e.finish(ctx, player, out)

	if out.hasResponse {
		return &Result{Text: out.response}, nil
	}
	return &Result{Text: fmt.Sprintf(refusal, e.world.ItemName(itemID))}, nil
}

// Use applies one item to another (or to nothing). All semantics come from
// handlers; without a matching one the item simply does nothing here.
func (e *Engine) Use(ctx context.Context, player, usedID, targetID string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	data := map[string]string{
		DataUsedItem: usedID,
		DataItem1:    usedID,
	}
	if targetID != "" {
		data[DataTargetItem] = targetID
		data[DataItem2] = targetID
	}

	out := e.dispatch(ctx, NewEvent(EventUseItem, player, data))
	e.finish(ctx, player, out)

	if out.hasResponse {
		return &Result{Text: out.response}, nil
	}
	if targetID != "" {
		return &Result{Text: fmt.Sprintf("You can't use the %s on the %s.", e.world.ItemName(usedID), e.world.ItemName(targetID))}, nil
	}
	return &Result{Text: fmt.Sprintf("You can't use the %s here.", e.world.ItemName(usedID))}, nil
}
