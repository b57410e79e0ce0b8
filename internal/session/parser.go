package session

import (
	"strings"

	"github.com/pixil98/go-quest/internal/display"
)

// Command is one parsed line of player input.
type Command struct {
	Verb string

	// Arg is the first object phrase ("brass key" in "take the brass key"),
	// or the direction for go, or the message for say.
	Arg string

	// Target is the second object phrase after a preposition
	// ("door" in "use key on door").
	Target string
}

var directions = map[string]string{
	"north": "north", "n": "north",
	"south": "south", "s": "south",
	"east": "east", "e": "east",
	"west": "west", "w": "west",
	"up": "up", "u": "up",
	"down": "down", "d": "down",
}

var verbAliases = map[string]string{
	"l":        "look",
	"x":        "examine",
	"inspect":  "examine",
	"get":      "take",
	"grab":     "take",
	"i":        "inventory",
	"inv":      "inventory",
	"move":     "go",
	"walk":     "go",
	"q":        "quit",
	"exit":     "quit",
	"points":   "score",
	"commands": "help",
	"?":        "help",
}

// prepositions split "use X on Y" style input into object and target.
var prepositions = map[string]bool{
	"on":   true,
	"with": true,
	"at":   true,
	"in":   true,
	"to":   true,
}

var articles = map[string]bool{
	"the": true,
	"a":   true,
	"an":  true,
}

// Parse turns a trimmed, non-empty input line into a Command. Articles are
// dropped, verb aliases and direction shortcuts are normalized, and for
// "use" the phrase is split at the first preposition.
func Parse(line string) (*Command, error) {
	// The say shortcut binds directly to the message: 'hello
	if rest, ok := strings.CutPrefix(line, "'"); ok {
		msg := strings.TrimSpace(rest)
		if msg == "" {
			return nil, NewUserError("Say what?")
		}
		return &Command{Verb: "say", Arg: msg}, nil
	}

	fields := strings.Fields(line)
	verb := strings.ToLower(fields[0])
	if v, ok := verbAliases[verb]; ok {
		verb = v
	}

	// A bare direction is a movement command.
	if dir, ok := directions[verb]; ok {
		return &Command{Verb: "go", Arg: dir}, nil
	}

	// say keeps the rest of the line verbatim.
	if verb == "say" {
		msg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
		if msg == "" {
			return nil, NewUserError("Say what?")
		}
		return &Command{Verb: "say", Arg: msg}, nil
	}

	rest := dropArticles(fields[1:])

	switch verb {
	case "look":
		// "look at <item>" (or just "look <item>") examines it.
		if len(rest) > 0 && strings.EqualFold(rest[0], "at") {
			rest = rest[1:]
			if len(rest) == 0 {
				return nil, NewUserError("Look at what?")
			}
		}
		if len(rest) > 0 {
			return &Command{Verb: "examine", Arg: strings.Join(rest, " ")}, nil
		}
		return &Command{Verb: "look"}, nil

	case "inventory", "score", "help", "quit":
		return &Command{Verb: verb}, nil

	case "go":
		if len(rest) == 0 {
			return nil, NewUserError("Go where?")
		}
		dir, ok := directions[strings.ToLower(rest[0])]
		if !ok {
			dir = strings.ToLower(rest[0])
		}
		return &Command{Verb: "go", Arg: dir}, nil

	case "take", "drop", "examine", "open", "close":
		if len(rest) == 0 {
			return nil, NewUserError(display.Capitalize(verb) + " what?")
		}
		return &Command{Verb: verb, Arg: strings.Join(rest, " ")}, nil

	case "use":
		if len(rest) == 0 {
			return nil, NewUserError("Use what?")
		}
		arg, target := splitPreposition(rest)
		if arg == "" {
			return nil, NewUserError("Use what?")
		}
		return &Command{Verb: "use", Arg: arg, Target: target}, nil
	}

	return nil, NewUserError("I don't understand that.")
}

func dropArticles(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if !articles[strings.ToLower(f)] {
			out = append(out, f)
		}
	}
	return out
}

// splitPreposition cuts a phrase at its first preposition:
// ["key", "on", "door"] becomes ("key", "door").
func splitPreposition(fields []string) (string, string) {
	for i, f := range fields {
		if prepositions[strings.ToLower(f)] {
			return strings.Join(fields[:i], " "), strings.Join(fields[i+1:], " ")
		}
	}
	return strings.Join(fields, " "), ""
}
