package config

import (
	"fmt"
	"slices"

	"github.com/ItsNotGoodName/x-tabstack/internal/mosaic"
	"github.com/ItsNotGoodName/x-tabstack/internal/render"
)

const (
	LayoutAuto   = "auto"
	LayoutManual = "manual"
)

var defaultConfig = Config{
	Accent:  "#94ebeb",
	Layout:  Layout{Type: LayoutAuto},
	Streams: []Stream{},
	Stacks:  [][]string{},
}

type Config struct {
	Accent  string   `json:"accent"`
	Layout  Layout   `json:"layout"`
	Streams []Stream `json:"streams"`
	// Stacks groups stream UUIDs into the initial stacks.
	Stacks [][]string `json:"stacks"`
}

type Layout struct {
	Type   string         `json:"type"` // [auto, manual]
	Manual []mosaic.Ratio `json:"manual,omitempty"`
}

type Stream struct {
	UUID  string   `json:"uuid"`
	Name  string   `json:"name"`
	Main  string   `json:"main"`
	Sub   string   `json:"sub"`
	Flags []string `json:"flags"`
}

func (s Stream) Title() string {
	if s.Name != "" {
		return s.Name
	}
	return s.UUID
}

func (c Config) AccentColor() (render.Color, error) {
	if c.Accent == "" {
		return render.Color{}, fmt.Errorf("accent: empty colour")
	}
	color, err := render.ParseColor(c.Accent)
	if err != nil {
		return render.Color{}, fmt.Errorf("accent: %w", err)
	}
	return color, nil
}

func (c Config) Mosaic() (mosaic.Layout, error) {
	switch c.Layout.Type {
	case "", LayoutAuto:
		return mosaic.LayoutGrid{}, nil
	case LayoutManual:
		return mosaic.LayoutManual{Ratios: c.Layout.Manual}, nil
	default:
		return nil, fmt.Errorf("layout %s not supported", c.Layout.Type)
	}
}

// Groups resolves Stacks into streams. Unknown UUIDs and streams already
// placed are skipped, empty groups are dropped and every stream not listed
// lands in one trailing group.
func (c Config) Groups() [][]Stream {
	placed := make(map[string]bool, len(c.Streams))
	var groups [][]Stream

	for _, uuids := range c.Stacks {
		var group []Stream
		for _, id := range uuids {
			idx := slices.IndexFunc(c.Streams, func(s Stream) bool { return s.UUID == id })
			if idx == -1 || placed[id] {
				continue
			}
			placed[id] = true
			group = append(group, c.Streams[idx])
		}
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}

	var rest []Stream
	for _, s := range c.Streams {
		if !placed[s.UUID] {
			rest = append(rest, s)
		}
	}
	if len(rest) > 0 {
		groups = append(groups, rest)
	}

	return groups
}
