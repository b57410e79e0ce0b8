package engine

// Event types raised by player actions.
const (
	EventUseItem      = "use_item"
	EventAttemptMove  = "attempt_move"
	EventItemTaken    = "item_taken"
	EventItemDropped  = "item_dropped"
	EventLookRoom     = "look_room"
	EventExamineItem  = "examine_item"
	EventOpenAttempt  = "open_attempt"
	EventCloseAttempt = "close_attempt"
)

// Notification event types raised by the engine itself. Handlers may react
// to them with effects, but any response text is discarded.
const (
	EventPlayerJoined = "player_joined"
	EventPlayerMoved  = "player_moved"
	EventFlagChanged  = "flag_changed"
)

// Event data keys. use_item events carry the positional item1/item2 keys
// alongside used_item/target_item so handlers can use either vocabulary.
const (
	DataItem       = "item"
	DataUsedItem   = "used_item"
	DataTargetItem = "target_item"
	DataItem1      = "item1"
	DataItem2      = "item2"
	DataDirection  = "direction"
	DataFromRoom   = "from_room"
	DataToRoom     = "to_room"
	DataFlag       = "flag"
	DataValue      = "value"
)

// Event is one thing that happened in the world, attributed to a player.
// Data carries the event-specific fields listed above.
type Event struct {
	Type   string
	Player string
	Data   map[string]string
}

func NewEvent(typ, player string, data map[string]string) *Event {
	if data == nil {
		data = map[string]string{}
	}
	return &Event{Type: typ, Player: player, Data: data}
}
