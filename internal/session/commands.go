package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixil98/go-quest/internal/engine"
)

const helpText = `Commands:
  look (l)              Describe your surroundings.
  examine <item> (x)    Take a closer look at something.
  go <direction>        Move. Bare directions work too: north, s, e, w, up, down.
  take <item>           Pick something up.
  drop <item>           Put something down.
  use <item> [on <item>]  Apply an item, optionally to something else.
  open / close <item>   Open or shut something, if it allows it.
  inventory (i)         List what you are carrying.
  score                 Show your score and move count.
  say <message>         Speak to everyone in the room.
  quit                  Leave the game.`

// execute runs a parsed command and returns the text to show the player.
// Player mistakes come back as UserError; anything else is a system fault
// that ends the session.
func (s *Session) execute(ctx context.Context, cmd *Command) (string, error) {
	world := s.engine.World()

	switch cmd.Verb {
	case "look":
		res, err := s.engine.Look(ctx, s.playerID)
		if err != nil {
			return "", err
		}
		return res.Text, nil

	case "go":
		res, err := s.engine.Move(ctx, s.playerID, cmd.Arg)
		if err != nil {
			return "", err
		}
		if res.MovedTo != "" {
			s.notify.NotifyRoom(ctx, res.MovedFrom, s.playerID, fmt.Sprintf("%s leaves %s.", s.playerID, cmd.Arg))
			s.notify.NotifyRoom(ctx, res.MovedTo, s.playerID, fmt.Sprintf("%s arrives.", s.playerID))
		}
		return res.Text, nil

	case "take":
		room, err := world.PlayerRoom(s.playerID)
		if err != nil {
			return "", err
		}
		id, ok := world.FindItemInRoom(room, cmd.Arg)
		if !ok {
			return "", NewUserError(fmt.Sprintf("You don't see any %s here.", cmd.Arg))
		}
		res, err := s.engine.Take(ctx, s.playerID, id)
		if err != nil {
			return "", err
		}
		return res.Text, nil

	case "drop":
		id, ok := world.FindItemInInventory(s.playerID, cmd.Arg)
		if !ok {
			return "", NewUserError(fmt.Sprintf("You aren't carrying any %s.", cmd.Arg))
		}
		res, err := s.engine.Drop(ctx, s.playerID, id)
		if err != nil {
			return "", err
		}
		return res.Text, nil

	case "examine", "open", "close":
		id, err := s.resolveNearby(cmd.Arg)
		if err != nil {
			return "", err
		}
		var res *engine.Result
		switch cmd.Verb {
		case "examine":
			res, err = s.engine.Examine(ctx, s.playerID, id)
		case "open":
			res, err = s.engine.Open(ctx, s.playerID, id)
		case "close":
			res, err = s.engine.Close(ctx, s.playerID, id)
		}
		if err != nil {
			return "", err
		}
		return res.Text, nil

	case "use":
		usedID, ok := world.FindItemInInventory(s.playerID, cmd.Arg)
		if !ok {
			room, err := world.PlayerRoom(s.playerID)
			if err != nil {
				return "", err
			}
			usedID, ok = world.FindItemInRoom(room, cmd.Arg)
			if !ok {
				return "", NewUserError(fmt.Sprintf("You don't have any %s.", cmd.Arg))
			}
		}

		var targetID string
		if cmd.Target != "" {
			room, err := world.PlayerRoom(s.playerID)
			if err != nil {
				return "", err
			}
			targetID, ok = world.FindItemInRoom(room, cmd.Target)
			if !ok {
				targetID, ok = world.FindItemInInventory(s.playerID, cmd.Target)
			}
			if !ok {
				return "", NewUserError(fmt.Sprintf("You don't see any %s here.", cmd.Target))
			}
		}

		res, err := s.engine.Use(ctx, s.playerID, usedID, targetID)
		if err != nil {
			return "", err
		}
		return res.Text, nil

	case "inventory":
		inv, err := world.Inventory(s.playerID)
		if err != nil {
			return "", err
		}
		if len(inv) == 0 {
			return "You aren't carrying anything.", nil
		}
		names := make([]string, 0, len(inv))
		for _, id := range inv {
			names = append(names, world.ItemName(id))
		}
		return "You are carrying: " + strings.Join(names, ", ") + ".", nil

	case "score":
		score, err := world.PlayerScore(s.playerID)
		if err != nil {
			return "", err
		}
		moves, err := world.PlayerMoves(s.playerID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Your score is %d, in %d moves.", score, moves), nil

	case "say":
		room, err := world.PlayerRoom(s.playerID)
		if err != nil {
			return "", err
		}
		s.notify.NotifyRoom(ctx, room, s.playerID, fmt.Sprintf("%s says: %s", s.playerID, cmd.Arg))
		return fmt.Sprintf("You say: %s", cmd.Arg), nil

	case "help":
		return helpText, nil

	case "quit":
		if err := world.SetPlayerQuit(s.playerID, true); err != nil {
			return "", err
		}
		return "", nil
	}

	return "", NewUserError("I don't understand that.")
}

// resolveNearby finds an item by name in the player's room or inventory.
func (s *Session) resolveNearby(name string) (string, error) {
	world := s.engine.World()

	room, err := world.PlayerRoom(s.playerID)
	if err != nil {
		return "", err
	}
	if id, ok := world.FindItemInRoom(room, name); ok {
		return id, nil
	}
	if id, ok := world.FindItemInInventory(s.playerID, name); ok {
		return id, nil
	}
	return "", NewUserError(fmt.Sprintf("You don't see any %s here.", name))
}
