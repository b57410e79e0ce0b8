package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-quest/internal/engine"
	"github.com/pixil98/go-quest/internal/game"
	"github.com/pixil98/go-quest/internal/storage"
)

type StorageConfig struct {
	Items    AssetConfig[*game.Item] `json:"items"`
	Rooms    AssetConfig[*game.Room] `json:"rooms"`
	Settings FileConfig              `json:"settings"`
	Handlers FileConfig              `json:"handlers"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Items.Validate("items"))
	el.Add(c.Rooms.Validate("rooms"))
	el.Add(c.Settings.Validate("settings"))
	el.Add(c.Handlers.Validate("handlers"))
	return el.Err()
}

// BuildWorld loads all assets and assembles the runtime world state and the
// ordered handler list.
func (c *StorageConfig) BuildWorld() (*game.WorldState, engine.HandlerList, error) {
	items, err := c.Items.BuildFileStore()
	if err != nil {
		return nil, nil, fmt.Errorf("creating item store: %w", err)
	}
	rooms, err := c.Rooms.BuildFileStore()
	if err != nil {
		return nil, nil, fmt.Errorf("creating room store: %w", err)
	}
	settings, err := storage.LoadFile[*game.Settings](c.Settings.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading settings: %w", err)
	}
	handlers, err := storage.LoadFile[*engine.HandlerList](c.Handlers.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading handlers: %w", err)
	}

	world, err := game.NewWorldState(items, rooms, settings)
	if err != nil {
		return nil, nil, fmt.Errorf("building world state: %w", err)
	}

	return world, *handlers, nil
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}

// FileConfig points at a single asset file rather than a directory.
type FileConfig struct {
	Path string `json:"path"`
}

func (c *FileConfig) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	info, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s: %q is a directory, expected a file", name, c.Path)
	}

	return nil
}
