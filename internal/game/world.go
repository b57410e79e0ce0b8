package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/pixil98/go-quest/internal/storage"
)

// MaxInventory is the number of items a player can carry.
const MaxInventory = 10

// propContains seeds a container's contents from its definition.
const propContains = "contains"

// WorldState is the single source of truth for all mutable game state:
// item locations and property overrides, room exits and item lists, players,
// global flags, and scores. All access goes through its methods.
//
// Definitions (Item, Room) stay immutable after load; NewWorldState copies
// everything mutable out of them.
type WorldState struct {
	mu sync.RWMutex

	items   map[string]*ItemState
	rooms   map[string]*RoomState
	players map[string]*PlayerState
	flags   map[string]Value

	startRoom string
}

// ItemState holds the mutable side of one item: its current location,
// property overrides, and (for containers) contents.
type ItemState struct {
	def      *Item
	props    map[string]Value
	loc      Location
	placed   bool
	contents []string
}

// RoomState holds the mutable side of one room. Exits and the item list are
// copied from the definition so effects can change them at runtime.
type RoomState struct {
	def   *Room
	exits map[string]string
	props map[string]Value
	items []string
}

// PlayerState holds all mutable state for an active player. Players are
// created on their first event and forgotten when their session ends.
type PlayerState struct {
	Room      string
	Inventory []string
	Score     int
	Moves     int

	props map[string]Value

	Quit         bool
	LastActivity time.Time
}

// NewWorldState builds runtime state from the loaded definitions. It fails
// when the configuration violates the single-location invariant (an item
// listed in two places) or references unknown identifiers.
func NewWorldState(items storage.Storer[*Item], rooms storage.Storer[*Room], settings *Settings) (*WorldState, error) {
	w := &WorldState{
		items:     make(map[string]*ItemState),
		rooms:     make(map[string]*RoomState),
		players:   make(map[string]*PlayerState),
		flags:     make(map[string]Value),
		startRoom: settings.StartRoom,
	}

	for id, def := range items.GetAll() {
		w.items[id] = &ItemState{
			def:   def,
			props: copyProps(def.Properties),
		}
	}

	for id, def := range rooms.GetAll() {
		exits := make(map[string]string, len(def.Exits))
		for dir, target := range def.Exits {
			if _, ok := rooms.GetAll()[target]; !ok {
				return nil, fmt.Errorf("room %q: exit %s references unknown room %q", id, dir, target)
			}
			exits[dir] = target
		}
		w.rooms[id] = &RoomState{
			def:   def,
			exits: exits,
			props: copyProps(def.Properties),
		}
	}

	// Place room items, rejecting double placement.
	for id, def := range rooms.GetAll() {
		rs := w.rooms[id]
		for _, itemID := range def.Items {
			if err := w.place(itemID, RoomLocation(id)); err != nil {
				return nil, fmt.Errorf("room %q: %w", id, err)
			}
			rs.items = append(rs.items, itemID)
		}
	}

	// Place container contents declared via the "contains" property.
	for id, is := range w.items {
		contains, ok := is.props[propContains]
		if !ok {
			continue
		}
		for _, itemID := range contains.List() {
			if err := w.place(itemID, ContainerLocation(id)); err != nil {
				return nil, fmt.Errorf("item %q: %w", id, err)
			}
			is.contents = append(is.contents, itemID)
		}
	}

	if _, ok := w.rooms[settings.StartRoom]; !ok {
		return nil, fmt.Errorf("start room %q does not exist", settings.StartRoom)
	}

	for name, v := range settings.InitialFlags {
		w.flags[name] = v
	}

	return w, nil
}

// place marks an item's initial location during world construction.
func (w *WorldState) place(itemID string, loc Location) error {
	is, ok := w.items[itemID]
	if !ok {
		return fmt.Errorf("item %q: %w", itemID, ErrNotFound)
	}
	if is.placed {
		return fmt.Errorf("item %q listed at %s and %s: %w", itemID, is.loc, loc, ErrItemHeld)
	}
	is.loc = loc
	is.placed = true
	return nil
}

// --- Players ---

// GetOrCreatePlayer looks up a player by identifier, creating one in the
// start room on first sight. The returned bool is true if the player was
// just created.
func (w *WorldState) GetOrCreatePlayer(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.players[id]; ok {
		return false
	}
	w.players[id] = &PlayerState{
		Room:         w.startRoom,
		props:        make(map[string]Value),
		LastActivity: time.Now(),
	}
	return true
}

// RemovePlayer forgets a player and returns any carried items to the
// player's current room so nothing is lost with the session.
func (w *WorldState) RemovePlayer(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return ErrNotFound
	}

	if rs, ok := w.rooms[p.Room]; ok {
		for _, itemID := range p.Inventory {
			if is, ok := w.items[itemID]; ok {
				is.loc = RoomLocation(p.Room)
				rs.items = append(rs.items, itemID)
			}
		}
	}

	delete(w.players, id)
	return nil
}

// PlayerRoom returns the player's current room id.
func (w *WorldState) PlayerRoom(id string) (string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, ok := w.players[id]
	if !ok {
		return "", ErrNotFound
	}
	return p.Room, nil
}

// SetPlayerRoom moves a player to the given room and counts the move.
func (w *WorldState) SetPlayerRoom(id, roomID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return ErrNotFound
	}
	if _, ok := w.rooms[roomID]; !ok {
		return ErrNotFound
	}
	p.Room = roomID
	p.Moves++
	return nil
}

// PlayerScore returns the player's score.
func (w *WorldState) PlayerScore(id string) (int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, ok := w.players[id]
	if !ok {
		return 0, ErrNotFound
	}
	return p.Score, nil
}

// PlayerMoves returns how many moves the player has made.
func (w *WorldState) PlayerMoves(id string) (int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, ok := w.players[id]
	if !ok {
		return 0, ErrNotFound
	}
	return p.Moves, nil
}

// AddScore adds delta to the player's score. Negative deltas are legal.
func (w *WorldState) AddScore(id string, delta int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return ErrNotFound
	}
	p.Score += delta
	return nil
}

// Inventory returns a copy of the player's inventory, in carry order.
func (w *WorldState) Inventory(id string) ([]string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, ok := w.players[id]
	if !ok {
		return nil, ErrNotFound
	}
	inv := make([]string, len(p.Inventory))
	copy(inv, p.Inventory)
	return inv, nil
}

// PlayerHasItem reports whether the item is in the player's inventory.
func (w *WorldState) PlayerHasItem(id, itemID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, ok := w.players[id]
	if !ok {
		return false
	}
	for _, i := range p.Inventory {
		if i == itemID {
			return true
		}
	}
	return false
}

// PlayerProperty returns a custom player property, or the zero Value.
func (w *WorldState) PlayerProperty(id, key string) (Value, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, ok := w.players[id]
	if !ok {
		return Value{}, ErrNotFound
	}
	return p.props[key], nil
}

// SetPlayerProperty sets a custom player property.
func (w *WorldState) SetPlayerProperty(id, key string, v Value) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return ErrNotFound
	}
	p.props[key] = v
	return nil
}

// MarkPlayerActive resets the player's idle timer.
func (w *WorldState) MarkPlayerActive(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.players[id]; ok {
		p.LastActivity = time.Now()
	}
}

// SetPlayerQuit sets the quit flag for a player.
func (w *WorldState) SetPlayerQuit(id string, quit bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return ErrNotFound
	}
	p.Quit = quit
	return nil
}

// IsQuitting reports whether the player has requested to quit.
func (w *WorldState) IsQuitting(id string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, ok := w.players[id]
	return ok && p.Quit
}

// IdlePlayers returns the ids of players idle longer than the given
// duration.
func (w *WorldState) IdlePlayers(idle time.Duration) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	cutoff := time.Now().Add(-idle)
	var ids []string
	for id, p := range w.players {
		if p.LastActivity.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

// PlayersInRoom returns the ids of all players currently in the room.
func (w *WorldState) PlayersInRoom(roomID string) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var ids []string
	for id, p := range w.players {
		if p.Room == roomID {
			ids = append(ids, id)
		}
	}
	return ids
}

// --- Items ---

// Item returns the item's definition.
func (w *WorldState) Item(id string) (*Item, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	is, ok := w.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return is.def, nil
}

// ItemName returns the item's display name, or the id when unknown.
func (w *WorldState) ItemName(id string) string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if is, ok := w.items[id]; ok {
		return is.def.Name
	}
	return id
}

// ItemLocation returns where the item currently is. The bool is false for
// items that exist but have never been placed.
func (w *WorldState) ItemLocation(id string) (Location, bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	is, ok := w.items[id]
	if !ok {
		return Location{}, false, ErrNotFound
	}
	return is.loc, is.placed, nil
}

// MoveItem moves an item to a new location atomically, preserving the
// single-location invariant: the item is removed from wherever it is and
// added to the destination in one critical section. On any error the state
// is unchanged.
func (w *WorldState) MoveItem(id string, to Location) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	is, ok := w.items[id]
	if !ok {
		return fmt.Errorf("item %q: %w", id, ErrNotFound)
	}

	dest, err := w.holder(to)
	if err != nil {
		return fmt.Errorf("moving %q to %s: %w", id, to, err)
	}
	if to.Kind == InContainer && to.ID == id {
		return fmt.Errorf("item %q cannot contain itself: %w", id, ErrItemHeld)
	}
	for _, held := range *dest {
		if held == id {
			return fmt.Errorf("item %q already at %s: %w", id, to, ErrItemHeld)
		}
	}
	if to.Kind == InInventory && len(*dest) >= MaxInventory {
		return fmt.Errorf("moving %q to %s: %w", id, to, ErrInventoryFull)
	}

	if is.placed {
		src, err := w.holder(is.loc)
		if err == nil {
			*src = removeID(*src, id)
		}
	}

	*dest = append(*dest, id)
	is.loc = to
	is.placed = true
	return nil
}

// holder returns the id list owning items at the given location.
func (w *WorldState) holder(loc Location) (*[]string, error) {
	switch loc.Kind {
	case InRoom:
		rs, ok := w.rooms[loc.ID]
		if !ok {
			return nil, ErrNotFound
		}
		return &rs.items, nil
	case InContainer:
		is, ok := w.items[loc.ID]
		if !ok {
			return nil, ErrNotFound
		}
		return &is.contents, nil
	case InInventory:
		p, ok := w.players[loc.ID]
		if !ok {
			return nil, ErrNotFound
		}
		return &p.Inventory, nil
	default:
		return nil, ErrNotFound
	}
}

func removeID(list []string, id string) []string {
	for i, v := range list {
		if v == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// TakeItem moves an item from the player's current room into their
// inventory, enforcing can_take and the inventory capacity.
func (w *WorldState) TakeItem(playerID, itemID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[playerID]
	if !ok {
		return ErrNotFound
	}
	is, ok := w.items[itemID]
	if !ok {
		return ErrNotFound
	}
	if !is.placed || is.loc != RoomLocation(p.Room) {
		return ErrNotFound
	}
	if !is.def.CanTake {
		return ErrCannotTake
	}
	if len(p.Inventory) >= MaxInventory {
		return ErrInventoryFull
	}

	rs := w.rooms[p.Room]
	rs.items = removeID(rs.items, itemID)
	p.Inventory = append(p.Inventory, itemID)
	is.loc = InventoryLocation(playerID)
	return nil
}

// DropItem moves an item from the player's inventory into their current
// room.
func (w *WorldState) DropItem(playerID, itemID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[playerID]
	if !ok {
		return ErrNotFound
	}
	is, ok := w.items[itemID]
	if !ok || is.loc != InventoryLocation(playerID) {
		return ErrNotFound
	}
	rs, ok := w.rooms[p.Room]
	if !ok {
		return ErrNotFound
	}

	p.Inventory = removeID(p.Inventory, itemID)
	rs.items = append(rs.items, itemID)
	is.loc = RoomLocation(p.Room)
	return nil
}

// ItemProperty returns an item's property value, or the zero Value when the
// key is absent.
func (w *WorldState) ItemProperty(id, key string) (Value, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	is, ok := w.items[id]
	if !ok {
		return Value{}, ErrNotFound
	}
	return is.props[key], nil
}

// SetItemProperty sets an item's property value.
func (w *WorldState) SetItemProperty(id, key string, v Value) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	is, ok := w.items[id]
	if !ok {
		return ErrNotFound
	}
	is.props[key] = v
	return nil
}

// ContainerContents returns a copy of the ids inside a container item.
func (w *WorldState) ContainerContents(id string) ([]string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	is, ok := w.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	contents := make([]string, len(is.contents))
	copy(contents, is.contents)
	return contents, nil
}

// FindItemInRoom resolves a player-typed name to an item id among the
// room's items.
func (w *WorldState) FindItemInRoom(roomID, name string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	rs, ok := w.rooms[roomID]
	if !ok {
		return "", false
	}
	for _, id := range rs.items {
		if is, ok := w.items[id]; ok && is.def.Matches(name) {
			return id, true
		}
	}
	return "", false
}

// FindItemInInventory resolves a player-typed name to an item id among the
// player's carried items.
func (w *WorldState) FindItemInInventory(playerID, name string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, ok := w.players[playerID]
	if !ok {
		return "", false
	}
	for _, id := range p.Inventory {
		if is, ok := w.items[id]; ok && is.def.Matches(name) {
			return id, true
		}
	}
	return "", false
}

// --- Rooms ---

// Room returns the room's definition.
func (w *WorldState) Room(id string) (*Room, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	rs, ok := w.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rs.def, nil
}

// RoomExists reports whether the room id is known.
func (w *WorldState) RoomExists(id string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	_, ok := w.rooms[id]
	return ok
}

// RoomExits returns a copy of the room's current exits.
func (w *WorldState) RoomExits(id string) (map[string]string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	rs, ok := w.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	exits := make(map[string]string, len(rs.exits))
	for dir, target := range rs.exits {
		exits[dir] = target
	}
	return exits, nil
}

// Exit returns the destination of a room's exit, if it has one.
func (w *WorldState) Exit(roomID, direction string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	rs, ok := w.rooms[roomID]
	if !ok {
		return "", false
	}
	target, ok := rs.exits[direction]
	return target, ok
}

// AddExit adds (or replaces) an exit on a room. The destination is not
// required to exist yet; movement through a dangling exit fails as a no-op.
func (w *WorldState) AddExit(roomID, direction, target string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	rs, ok := w.rooms[roomID]
	if !ok {
		return ErrNotFound
	}
	rs.exits[direction] = target
	return nil
}

// RoomItems returns a copy of the ids of items currently in the room.
func (w *WorldState) RoomItems(id string) ([]string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	rs, ok := w.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	items := make([]string, len(rs.items))
	copy(items, rs.items)
	return items, nil
}

// RoomProperty returns a room's property value, or the zero Value when the
// key is absent.
func (w *WorldState) RoomProperty(id, key string) (Value, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	rs, ok := w.rooms[id]
	if !ok {
		return Value{}, ErrNotFound
	}
	return rs.props[key], nil
}

// SetRoomProperty sets a room's property value.
func (w *WorldState) SetRoomProperty(id, key string, v Value) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	rs, ok := w.rooms[id]
	if !ok {
		return ErrNotFound
	}
	rs.props[key] = v
	return nil
}

// --- Flags ---

// Flag returns a global flag's value. Unset flags return the zero Value,
// which is falsy.
func (w *WorldState) Flag(name string) Value {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.flags[name]
}

// SetFlag sets a global flag, reporting whether the value changed.
func (w *WorldState) SetFlag(name string, v Value) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	old := w.flags[name]
	w.flags[name] = v
	return !old.Equal(v)
}
