package game

import "fmt"

// LocationKind identifies which kind of container currently holds an item.
type LocationKind int

const (
	InRoom LocationKind = iota
	InContainer
	InInventory
)

// Location is where an item is. Every item is at exactly one location: a
// room, a container item, or a player's inventory.
type Location struct {
	Kind LocationKind
	ID   string // room id, container item id, or player id
}

func RoomLocation(roomID string) Location {
	return Location{Kind: InRoom, ID: roomID}
}

func ContainerLocation(itemID string) Location {
	return Location{Kind: InContainer, ID: itemID}
}

func InventoryLocation(playerID string) Location {
	return Location{Kind: InInventory, ID: playerID}
}

func (l Location) String() string {
	switch l.Kind {
	case InRoom:
		return fmt.Sprintf("room %s", l.ID)
	case InContainer:
		return fmt.Sprintf("container %s", l.ID)
	case InInventory:
		return fmt.Sprintf("inventory of %s", l.ID)
	default:
		return "nowhere"
	}
}
