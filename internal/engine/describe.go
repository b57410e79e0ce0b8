package engine

import (
	"fmt"
	"sort"
	"strings"
)

// propHidden marks an item as invisible to room descriptions. Handlers
// reveal it by clearing the property.
const propHidden = "hidden"

// describeRoom renders the player's view of a room: name, description,
// visible items, exits, and any other players present.
func (e *Engine) describeRoom(player, roomID string) (string, error) {
	room, err := e.world.Room(roomID)
	if err != nil {
		return "", fmt.Errorf("describing room %q: %w", roomID, err)
	}

	var b strings.Builder
	b.WriteString(room.Name)
	b.WriteString("\n")
	b.WriteString(room.Description)

	itemIDs, err := e.world.RoomItems(roomID)
	if err != nil {
		return "", err
	}
	var names []string
	for _, id := range itemIDs {
		if v, err := e.world.ItemProperty(id, propHidden); err == nil && v.Truthy() {
			continue
		}
		names = append(names, e.world.ItemName(id))
	}
	if len(names) > 0 {
		b.WriteString("\nYou see: ")
		b.WriteString(strings.Join(names, ", "))
		b.WriteString(".")
	}

	exits, err := e.world.RoomExits(roomID)
	if err != nil {
		return "", err
	}
	if len(exits) > 0 {
		dirs := make([]string, 0, len(exits))
		for dir := range exits {
			dirs = append(dirs, dir)
		}
		sort.Strings(dirs)
		b.WriteString("\nExits: ")
		b.WriteString(strings.Join(dirs, ", "))
		b.WriteString(".")
	}

	var others []string
	for _, id := range e.world.PlayersInRoom(roomID) {
		if id != player {
			others = append(others, id)
		}
	}
	if len(others) > 0 {
		sort.Strings(others)
		b.WriteString("\nAlso here: ")
		b.WriteString(strings.Join(others, ", "))
		b.WriteString(".")
	}

	return b.String(), nil
}
