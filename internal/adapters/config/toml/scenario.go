package toml

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"
)

type ScenarioEventKind string

const (
	ScenarioConnecting ScenarioEventKind = "connecting"
	ScenarioConnect    ScenarioEventKind = "connect"
	ScenarioDisconnect ScenarioEventKind = "disconnect"
	ScenarioWrite      ScenarioEventKind = "write"
	ScenarioSubscribe  ScenarioEventKind = "subscribe"
	ScenarioMTU        ScenarioEventKind = "mtu"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a scripted sequence of transport events replayed by simulate.
type Scenario struct {
	Name   string
	Events []ScenarioEvent
}

type ScenarioEvent struct {
	Kind             ScenarioEventKind
	ID               string
	Name             string
	Data             []byte
	Characteristic   uuid.UUID
	ResponseRequired bool
	Enabled          bool
	MTU              int
}

type scenarioSchema struct {
	Name   string                `toml:"name"`
	Events []scenarioEventSchema `toml:"events"`
}

type scenarioEventSchema struct {
	Kind             string `toml:"kind"`
	ID               string `toml:"id"`
	Name             string `toml:"name,omitempty"`
	Data             string `toml:"data,omitempty"`
	Hex              string `toml:"hex,omitempty"`
	Characteristic   string `toml:"characteristic,omitempty"`
	ResponseRequired bool   `toml:"response_required,omitempty"`
	Enabled          *bool  `toml:"enabled,omitempty"`
	MTU              int    `toml:"mtu,omitempty"`
}

func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario file: %w", err)
	}

	return ParseScenario(data)
}

// ParseScenario decodes a scenario document. Write payloads come from either
// data (text) or hex. Writes without a characteristic target the default one.
func ParseScenario(data []byte) (Scenario, error) {
	var file scenarioSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return Scenario{}, fmt.Errorf("decode scenario file: %w", err)
	}

	scenario := Scenario{Name: file.Name, Events: make([]ScenarioEvent, 0, len(file.Events))}
	for i, entry := range file.Events {
		event, err := entry.toEvent()
		if err != nil {
			return Scenario{}, fmt.Errorf("%w: event %d: %w", ErrInvalidScenario, i+1, err)
		}
		scenario.Events = append(scenario.Events, event)
	}

	return scenario, nil
}

func (e scenarioEventSchema) toEvent() (ScenarioEvent, error) {
	event := ScenarioEvent{
		Kind:             ScenarioEventKind(strings.ToLower(strings.TrimSpace(e.Kind))),
		ID:               e.ID,
		Name:             e.Name,
		ResponseRequired: e.ResponseRequired,
		Enabled:          e.Enabled == nil || *e.Enabled,
		MTU:              e.MTU,
	}

	switch event.Kind {
	case ScenarioConnecting, ScenarioConnect, ScenarioDisconnect, ScenarioSubscribe:
	case ScenarioMTU:
		if e.MTU < 1 {
			return ScenarioEvent{}, fmt.Errorf("mtu must be positive, got %d", e.MTU)
		}
	case ScenarioWrite:
		if e.Data != "" && e.Hex != "" {
			return ScenarioEvent{}, errors.New("write sets both data and hex")
		}
		event.Data = []byte(e.Data)
		if e.Hex != "" {
			decoded, err := hex.DecodeString(e.Hex)
			if err != nil {
				return ScenarioEvent{}, fmt.Errorf("decode hex payload: %w", err)
			}
			event.Data = decoded
		}
		if e.Characteristic != "" {
			parsed, err := uuid.Parse(e.Characteristic)
			if err != nil {
				return ScenarioEvent{}, fmt.Errorf("parse characteristic: %w", err)
			}
			event.Characteristic = parsed
		}
	default:
		return ScenarioEvent{}, fmt.Errorf("unknown kind %q", e.Kind)
	}

	return event, nil
}
