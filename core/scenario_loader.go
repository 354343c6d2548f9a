// core/scenario_loader.go
package core

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/signalsfoundry/urbanlink-simulator/kb"
	"github.com/signalsfoundry/urbanlink-simulator/model"
)

// Scenario is a small summary of what was loaded from JSON. It's mainly
// useful for logging or debugging from main().
type Scenario struct {
	Radio    RadioConfig
	AgentIDs []int
}

// internal JSON shapes, unexported so the file format can evolve.
type scenarioJSON struct {
	Radio  RadioConfig `json:"radio"`
	Agents []agentJSON `json:"agents"`
}

type agentJSON struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
	// Motion is "static" or "constant_velocity"; empty defaults to static.
	Motion           string  `json:"motion"`
	SpeedUnitsPerSec float64 `json:"speed_units_per_sec"`
}

// LoadScenario reads a JSON scenario from r, populates the agent store,
// and returns the radio configuration plus a summary of what was loaded.
//
// It fails only on JSON / structural errors plus duplicate or invalid
// agent IDs; radio parameter plausibility is not validated here. The
// channel model treats the record as trusted input.
func LoadScenario(store *kb.AgentStore, r io.Reader) (*Scenario, error) {
	if store == nil {
		return nil, fmt.Errorf("LoadScenario: store is nil")
	}

	var payload scenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}

	result := &Scenario{
		Radio:    payload.Radio,
		AgentIDs: make([]int, 0, len(payload.Agents)),
	}

	for _, ja := range payload.Agents {
		agent := &model.Agent{
			ID:   ja.ID,
			Name: ja.Name,
			Pose: model.Pose{
				X:     ja.X,
				Y:     ja.Y,
				Theta: ja.Theta,
			},
			MotionSource:     motionSourceFromString(ja.Motion),
			SpeedUnitsPerSec: ja.SpeedUnitsPerSec,
		}
		if err := store.AddAgent(agent); err != nil {
			return nil, fmt.Errorf("LoadScenario: %w", err)
		}
		result.AgentIDs = append(result.AgentIDs, ja.ID)
	}

	return result, nil
}

// motionSourceFromString maps the JSON "motion" string to our
// MotionSource constants. Unknown and empty values default to static so
// a sparse scenario file still yields a usable run.
func motionSourceFromString(s string) model.MotionSource {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "constant_velocity", "constant", "cv":
		return model.MotionSourceConstantVelocity
	case "static", "":
		return model.MotionSourceStatic
	default:
		return model.MotionSourceStatic
	}
}
