package engine

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pixil98/go-quest/internal/game"
)

// TemplateData is the context available to respond and block_movement
// templates. World state is reached through the template functions instead.
type TemplateData struct {
	Player string
	Room   string
	Event  map[string]string
}

// templateFuncs builds the function map for handler templates: the sprig
// utilities plus world accessors.
func templateFuncs(w *game.WorldState) template.FuncMap {
	funcs := sprig.TxtFuncMap()

	funcs["flag"] = func(name string) string {
		return w.Flag(name).String()
	}
	funcs["prop"] = func(itemID, key string) string {
		v, err := w.ItemProperty(itemID, key)
		if err != nil {
			return ""
		}
		return v.String()
	}
	funcs["roomprop"] = func(roomID, key string) string {
		v, err := w.RoomProperty(roomID, key)
		if err != nil {
			return ""
		}
		return v.String()
	}
	funcs["itemname"] = w.ItemName
	funcs["score"] = func(playerID string) int {
		score, err := w.PlayerScore(playerID)
		if err != nil {
			return 0
		}
		return score
	}

	return funcs
}

// parseTemplate compiles a handler text template at load so authoring
// mistakes surface at startup rather than mid-game.
func parseTemplate(name, text string, funcs template.FuncMap) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return tmpl, nil
}

func expandTemplate(tmpl *template.Template, data *TemplateData) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}
