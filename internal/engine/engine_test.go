package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/pixil98/go-quest/internal/game"
	"github.com/pixil98/go-quest/internal/storage"
	"github.com/pixil98/go-testutil"
)

type fakeStore[T storage.ValidatingSpec] map[string]T

func (s fakeStore[T]) Save(string, T) error { return nil }
func (s fakeStore[T]) Get(id string) T      { return s[id] }
func (s fakeStore[T]) GetAll() map[string]T { return s }

func testWorld(t *testing.T) *game.WorldState {
	t.Helper()

	items := fakeStore[*game.Item]{
		"magic-key": {
			Name:        "magic key",
			Description: "It glows faintly.",
			CanTake:     true,
			Aliases:     []string{"key"},
		},
		"magic-door": {
			Name:        "magic door",
			Description: "A heavy oak door bound in silver.",
			Aliases:     []string{"door"},
			Properties: map[string]game.Value{
				"locked": game.BoolValue(true),
			},
		},
		"gold-coin": {
			Name:        "gold coin",
			Description: "It glitters.",
			CanTake:     true,
		},
	}
	rooms := fakeStore[*game.Room]{
		"hall": {
			Name:        "Great Hall",
			Description: "A vaulted hall.",
			Exits:       map[string]string{"north": "vault"},
			Items:       []string{"magic-key", "magic-door", "gold-coin"},
		},
		"vault": {
			Name:        "Vault",
			Description: "Bare stone walls.",
			Exits:       map[string]string{"south": "hall"},
		},
	}

	w, err := game.NewWorldState(items, rooms, &game.Settings{StartRoom: "hall"})
	if err != nil {
		t.Fatalf("unexpected error building world: %v", err)
	}
	return w
}

func newTestEngine(t *testing.T, handlers HandlerList) *Engine {
	t.Helper()

	if err := handlers.Validate(); err != nil {
		t.Fatalf("invalid test handlers: %v", err)
	}

	e, err := NewEngine(testWorld(t), handlers)
	if err != nil {
		t.Fatalf("unexpected error building engine: %v", err)
	}
	e.world.GetOrCreatePlayer("alice")
	return e
}

func TestEngine_UseItem_UnlockDoor(t *testing.T) {
	handlers := HandlerList{
		{
			ID: "unlock-door",
			Conditions: map[string]string{
				"event_type":      "use_item",
				"used_item":       "magic-key",
				"target_item":     "magic-door",
				"player_has_item": "magic-key",
				"flag_unset":      "door_open",
			},
			Effects: []*Effect{
				{Op: OpSetFlag, Flag: "door_open"},
				{Op: OpSetProperty, Item: "magic-door", Key: "locked", Value: game.BoolValue(false)},
				{Op: OpAdjustScore, Amount: 50},
				{Op: OpRespond, Text: "The {{ itemname .Event.target_item }} swings open!"},
			},
		},
		{
			ID: "door-already-open",
			Conditions: map[string]string{
				"event_type":  "use_item",
				"used_item":   "magic-key",
				"target_item": "magic-door",
				"flag_set":    "door_open",
			},
			Effects: []*Effect{
				{Op: OpRespond, Text: "The door is already open."},
			},
		},
	}

	e := newTestEngine(t, handlers)
	ctx := context.Background()

	// Without the key in hand nothing matches.
	res, err := e.Use(ctx, "alice", "magic-key", "magic-door")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "no match", res.Text, "You can't use the magic key on the magic door.")

	if _, err := e.Take(ctx, "alice", "magic-key"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err = e.Use(ctx, "alice", "magic-key", "magic-door")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "unlock response", res.Text, "The magic door swings open!")
	testutil.AssertEqual(t, "flag set", e.world.Flag("door_open").Truthy(), true)

	locked, _ := e.world.ItemProperty("magic-door", "locked")
	testutil.AssertEqual(t, "door unlocked", locked.Bool(), false)

	score, _ := e.world.PlayerScore("alice")
	testutil.AssertEqual(t, "score after unlock", score, takeScore+50)

	// Using the key again hits the fallback handler; the reward is not
	// granted twice.
	res, err = e.Use(ctx, "alice", "magic-key", "magic-door")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "repeat response", res.Text, "The door is already open.")

	score, _ = e.world.PlayerScore("alice")
	testutil.AssertEqual(t, "score unchanged", score, takeScore+50)
}

func TestEngine_Move_Blocked(t *testing.T) {
	handlers := HandlerList{
		{
			ID: "locked-door-blocks",
			Conditions: map[string]string{
				"event_type": "attempt_move",
				"direction":  "north",
				"from_room":  "hall",
				"flag_unset": "door_open",
			},
			Effects: []*Effect{
				{Op: OpBlockMovement, Text: "The magic door is locked."},
			},
		},
	}

	e := newTestEngine(t, handlers)
	ctx := context.Background()

	res, err := e.Move(ctx, "alice", "north")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "blocked", res.Blocked, true)
	testutil.AssertEqual(t, "block text", res.Text, "The magic door is locked.")

	room, _ := e.world.PlayerRoom("alice")
	testutil.AssertEqual(t, "still in hall", room, "hall")

	e.world.SetFlag("door_open", game.BoolValue(true))

	res, err = e.Move(ctx, "alice", "north")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "not blocked", res.Blocked, false)
	testutil.AssertEqual(t, "moved from", res.MovedFrom, "hall")
	testutil.AssertEqual(t, "moved to", res.MovedTo, "vault")
	if !strings.Contains(res.Text, "Vault") {
		t.Errorf("expected room description, got %q", res.Text)
	}

	room, _ = e.world.PlayerRoom("alice")
	testutil.AssertEqual(t, "in vault", room, "vault")

	moves, _ := e.world.PlayerMoves("alice")
	testutil.AssertEqual(t, "move count", moves, 1)
}

func TestEngine_Move_NoExit(t *testing.T) {
	e := newTestEngine(t, HandlerList{})

	res, err := e.Move(context.Background(), "alice", "west")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "refusal", res.Text, "You can't go that way.")
	testutil.AssertEqual(t, "not blocked", res.Blocked, false)
}

func TestEngine_Move_ResponseJoinsDescription(t *testing.T) {
	handlers := HandlerList{
		{
			ID: "creaky-floor",
			Conditions: map[string]string{
				"event_type": "attempt_move",
				"from_room":  "hall",
			},
			Effects: []*Effect{
				{Op: OpRespond, Text: "The floorboards creak behind you."},
			},
		},
	}

	e := newTestEngine(t, handlers)

	res, err := e.Move(context.Background(), "alice", "north")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(res.Text, "The floorboards creak behind you.") {
		t.Errorf("expected handler response first, got %q", res.Text)
	}
	if !strings.Contains(res.Text, "Vault") {
		t.Errorf("expected room description after response, got %q", res.Text)
	}
}

func TestEngine_Take(t *testing.T) {
	handlers := HandlerList{
		{
			ID: "coin-bonus",
			Conditions: map[string]string{
				"event_type": "item_taken",
				"item":       "gold-coin",
			},
			Effects: []*Effect{
				{Op: OpAdjustScore, Amount: 95},
				{Op: OpRespond, Text: "The coin hums. You have {{ score .Player }} points."},
			},
		},
	}

	e := newTestEngine(t, handlers)
	ctx := context.Background()

	res, err := e.Take(ctx, "alice", "gold-coin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "response", res.Text, "The coin hums. You have 100 points.")

	score, _ := e.world.PlayerScore("alice")
	testutil.AssertEqual(t, "score", score, 100)

	// Default response and take bonus without a handler.
	res, err = e.Take(ctx, "alice", "magic-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "default response", res.Text, "Taken.")

	score, _ = e.world.PlayerScore("alice")
	testutil.AssertEqual(t, "score after plain take", score, 100+takeScore)
}

func TestEngine_Take_Refusals(t *testing.T) {
	e := newTestEngine(t, HandlerList{
		{
			ID: "door-taken",
			Conditions: map[string]string{
				"event_type": "item_taken",
				"item":       "magic-door",
			},
			Effects: []*Effect{
				{Op: OpAdjustScore, Amount: 999},
			},
		},
	})
	ctx := context.Background()

	res, err := e.Take(ctx, "alice", "magic-door")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "scenery refusal", res.Text, "You can't take the magic door.")

	res, err = e.Take(ctx, "alice", "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "unknown item refusal", res.Text, "You don't see that here.")

	// A refused take must not fire item_taken handlers.
	score, _ := e.world.PlayerScore("alice")
	testutil.AssertEqual(t, "score untouched", score, 0)
}

func TestEngine_Drop(t *testing.T) {
	e := newTestEngine(t, HandlerList{})
	ctx := context.Background()

	res, err := e.Drop(ctx, "alice", "magic-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "not carried", res.Text, "You aren't carrying that.")

	if _, err := e.Take(ctx, "alice", "magic-key"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err = e.Drop(ctx, "alice", "magic-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "dropped", res.Text, "Dropped.")
	testutil.AssertEqual(t, "not in inventory", e.world.PlayerHasItem("alice", "magic-key"), false)
}

func TestEngine_Examine(t *testing.T) {
	handlers := HandlerList{
		{
			ID: "key-inscription",
			Conditions: map[string]string{
				"event_type": "examine_item",
				"item":       "magic-key",
			},
			Effects: []*Effect{
				{Op: OpRespond, Text: "Runes flicker along its edge."},
			},
		},
	}

	e := newTestEngine(t, handlers)
	ctx := context.Background()

	res, err := e.Examine(ctx, "alice", "magic-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "with handler", res.Text, "It glows faintly.\n\nRunes flicker along its edge.")

	// Without a matching handler the item description stands alone.
	res, err = e.Examine(ctx, "alice", "gold-coin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "description only", res.Text, "It glitters.")

	if _, err := e.Examine(ctx, "alice", "ghost"); err == nil {
		t.Error("expected error for unknown item")
	}
}

func TestEngine_OpenClose(t *testing.T) {
	handlers := HandlerList{
		{
			ID: "open-door",
			Conditions: map[string]string{
				"event_type": "open_attempt",
				"item":       "magic-door",
				"flag_unset": "door_open",
			},
			Effects: []*Effect{
				{Op: OpSetFlag, Flag: "door_open"},
				{Op: OpRespond, Text: "The door creaks open."},
			},
		},
	}

	e := newTestEngine(t, handlers)
	ctx := context.Background()

	res, err := e.Open(ctx, "alice", "magic-door")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "open response", res.Text, "The door creaks open.")
	testutil.AssertEqual(t, "flag set", e.world.Flag("door_open").Truthy(), true)

	// No handler covers closing, so the default refusal applies.
	res, err = e.Close(ctx, "alice", "magic-door")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "close refusal", res.Text, "You can't close the magic door.")

	// Opening again finds no match either; door_open is already set.
	res, err = e.Open(ctx, "alice", "magic-door")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "repeat open refusal", res.Text, "You can't open the magic door.")
}

func TestEngine_Use_PositionalKeys(t *testing.T) {
	handlers := HandlerList{
		{
			ID: "unlock-positional",
			Conditions: map[string]string{
				"event_type": "use_item",
				"item1":      "magic-key",
				"item2":      "magic-door",
			},
			Effects: []*Effect{
				{Op: OpRespond, Text: "The lock turns."},
			},
		},
	}

	e := newTestEngine(t, handlers)

	// item1/item2 conditions match the same event as used_item/target_item.
	res, err := e.Use(context.Background(), "alice", "magic-key", "magic-door")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "positional match", res.Text, "The lock turns.")
}

func TestEngine_Look_LastResponseWins(t *testing.T) {
	handlers := HandlerList{
		{
			ID: "first-looker",
			Conditions: map[string]string{
				"event_type": "look_room",
				"from_room":  "hall",
			},
			Effects: []*Effect{
				{Op: OpRespond, Text: "A draft stirs the dust."},
			},
		},
		{
			ID: "second-looker",
			Conditions: map[string]string{
				"event_type": "look_room",
				"from_room":  "hall",
			},
			Effects: []*Effect{
				{Op: OpRespond, Text: "Something rustles in the rafters."},
			},
		},
	}

	e := newTestEngine(t, handlers)

	res, err := e.Look(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Text, "Something rustles in the rafters.") {
		t.Errorf("expected later response, got %q", res.Text)
	}
	if strings.Contains(res.Text, "A draft stirs the dust.") {
		t.Errorf("earlier response should have been replaced, got %q", res.Text)
	}
}

func TestEngine_Look_HiddenItems(t *testing.T) {
	e := newTestEngine(t, HandlerList{})
	e.world.SetItemProperty("gold-coin", "hidden", game.BoolValue(true))

	res, err := e.Look(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(res.Text, "gold coin") {
		t.Errorf("hidden item visible in %q", res.Text)
	}
	if !strings.Contains(res.Text, "magic key") {
		t.Errorf("visible item missing from %q", res.Text)
	}
}

func TestEngine_FlagChangedNotification(t *testing.T) {
	handlers := HandlerList{
		{
			ID: "pull-lever",
			Conditions: map[string]string{
				"event_type": "use_item",
				"used_item":  "magic-key",
			},
			Effects: []*Effect{
				{Op: OpSetFlag, Flag: "lever_pulled"},
				{Op: OpRespond, Text: "Click."},
			},
		},
		{
			ID: "secret-passage",
			Conditions: map[string]string{
				"event_type": "flag_changed",
				"flag":       "lever_pulled",
			},
			Effects: []*Effect{
				{Op: OpAddExit, Room: "vault", Direction: "down", Target: "hall"},
				// Responses from notification handlers are discarded.
				{Op: OpRespond, Text: "You should never see this."},
			},
		},
	}

	e := newTestEngine(t, handlers)

	res, err := e.Use(context.Background(), "alice", "magic-key", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "player response", res.Text, "Click.")

	target, ok := e.world.Exit("vault", "down")
	testutil.AssertEqual(t, "exit added", ok, true)
	testutil.AssertEqual(t, "exit target", target, "hall")
}

func TestEngine_Join(t *testing.T) {
	handlers := HandlerList{
		{
			ID: "greeter",
			Conditions: map[string]string{
				"event_type": "player_joined",
			},
			Effects: []*Effect{
				{Op: OpSetFlag, Flag: "someone_arrived"},
			},
		},
	}

	e := newTestEngine(t, handlers)
	ctx := context.Background()

	res, err := e.Join(ctx, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Text, "Great Hall") {
		t.Errorf("expected starting room description, got %q", res.Text)
	}
	testutil.AssertEqual(t, "join handler ran", e.world.Flag("someone_arrived").Truthy(), true)

	// Rejoining an existing player is not a fresh arrival.
	e.world.SetFlag("someone_arrived", game.BoolValue(false))
	if _, err := e.Join(ctx, "bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "no repeat announcement", e.world.Flag("someone_arrived").Truthy(), false)
}

func TestEngine_EffectFaultContainment(t *testing.T) {
	handlers := HandlerList{
		{
			ID: "partly-broken",
			Conditions: map[string]string{
				"event_type": "use_item",
				"used_item":  "magic-key",
			},
			Effects: []*Effect{
				{Op: OpMoveItem, Item: "no-such-item", To: "room:hall"},
				{Op: OpAdjustScore, Amount: 10},
				{Op: OpRespond, Text: "Still works."},
			},
		},
	}

	e := newTestEngine(t, handlers)

	res, err := e.Use(context.Background(), "alice", "magic-key", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "response", res.Text, "Still works.")

	score, _ := e.world.PlayerScore("alice")
	testutil.AssertEqual(t, "later effects ran", score, 10)
}

func TestEngine_MoveItemEffect(t *testing.T) {
	handlers := HandlerList{
		{
			ID: "conjure-coin",
			Conditions: map[string]string{
				"event_type": "use_item",
				"used_item":  "magic-key",
			},
			Effects: []*Effect{
				{Op: OpMoveItem, Item: "gold-coin", To: "player"},
				{Op: OpRespond, Text: "The coin leaps into your hand."},
			},
		},
	}

	e := newTestEngine(t, handlers)

	if _, err := e.Use(context.Background(), "alice", "magic-key", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "carried", e.world.PlayerHasItem("alice", "gold-coin"), true)
}

func TestEngine_RoomScope(t *testing.T) {
	handlers := HandlerList{
		{
			ID:    "vault-echo",
			Scope: "room:vault",
			Conditions: map[string]string{
				"event_type": "use_item",
				"used_item":  "magic-key",
			},
			Effects: []*Effect{
				{Op: OpRespond, Text: "Your footsteps echo off the vault walls."},
			},
		},
	}

	e := newTestEngine(t, handlers)
	ctx := context.Background()

	// Scoped handlers never fire outside their room, regardless of
	// conditions.
	res, err := e.Use(ctx, "alice", "magic-key", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "outside scope", res.Text, "You can't use the magic key here.")

	if err := e.world.SetPlayerRoom("alice", "vault"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err = e.Use(ctx, "alice", "magic-key", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "inside scope", res.Text, "Your footsteps echo off the vault walls.")
}

func TestEngine_AnyEventTypeHandler(t *testing.T) {
	handlers := HandlerList{
		{
			ID: "activity-counter",
			Conditions: map[string]string{
				"player_in_room": "hall",
			},
			Effects: []*Effect{
				{Op: OpSetFlag, Flag: "hall_activity"},
			},
		},
	}

	e := newTestEngine(t, handlers)
	ctx := context.Background()

	// A handler with no event_type condition fires for any event type.
	if _, err := e.Take(ctx, "alice", "gold-coin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "fired on take", e.world.Flag("hall_activity").Truthy(), true)

	e.world.SetFlag("hall_activity", game.BoolValue(false))
	if _, err := e.Look(ctx, "alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "fired on look", e.world.Flag("hall_activity").Truthy(), true)
}

func TestNewEngine_BadTemplate(t *testing.T) {
	handlers := HandlerList{
		{
			ID: "broken",
			Conditions: map[string]string{
				"event_type": "use_item",
			},
			Effects: []*Effect{
				{Op: OpRespond, Text: "{{ .Unclosed"},
			},
		},
	}

	_, err := NewEngine(testWorld(t), handlers)
	if err == nil {
		t.Error("expected template parse error at startup")
	}
}
