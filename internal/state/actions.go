package state

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/model"
)

// Apply runs one station action against the state, mutating only the fields
// owned by that station's domain. It returns true when the state changed and
// should be saved + broadcast. Unknown stations and unknown action names are
// a silent no-op: new station UIs may send exploratory actions and the
// server must stay forward-compatible.
func Apply(gs *model.GameState, station model.Station, action string, value json.RawMessage) bool {
	switch station {
	case model.StationPilot:
		return applyPilot(gs, action, value)
	case model.StationGunner:
		return applyGunner(gs, action, value)
	case model.StationEngineer:
		return applyEngineer(gs, action, value)
	case model.StationCommander:
		return applyCommander(gs, action, value)
	case model.StationComms:
		return applyComms(gs, action, value)
	default:
		return false
	}
}

func applyPilot(gs *model.GameState, action string, value json.RawMessage) bool {
	nav := &gs.Navigation
	switch action {
	case "set_speed":
		v, ok := asFloat(value)
		if !ok {
			return false
		}
		nav.Speed = clamp(v, 0, 100)
		return true
	case "set_heading_x":
		v, ok := asFloat(value)
		if !ok {
			return false
		}
		nav.Heading.X = v
		return true
	case "set_heading_y":
		v, ok := asFloat(value)
		if !ok {
			return false
		}
		nav.Heading.Y = v
		return true
	case "set_heading_z":
		v, ok := asFloat(value)
		if !ok {
			return false
		}
		nav.Heading.Z = v
		return true
	case "toggle_autopilot":
		nav.Autopilot = !nav.Autopilot
		return true
	case "initiate_hyperspace":
		// Only a ready hyperdrive starts charging; any other phase ignores
		// the request.
		if nav.Hyperspace.Status != model.HyperspaceReady {
			return false
		}
		nav.Hyperspace.Status = model.HyperspaceCharging
		nav.Hyperspace.Charge = 0
		return true
	default:
		return false
	}
}

func applyGunner(gs *model.GameState, action string, value json.RawMessage) bool {
	w := &gs.Weapons
	switch action {
	case "fire_turbolaser":
		id, ok := asString(value)
		if !ok {
			return false
		}
		for i := range w.Turbolasers {
			t := &w.Turbolasers[i]
			if t.ID != id {
				continue
			}
			if t.Status != model.WeaponReady {
				return false
			}
			t.Status = model.WeaponFiring
			t.Heat = clamp(t.Heat+25, 0, 100)
			return true
		}
		return false
	case "select_target":
		id, ok := asString(value)
		if !ok {
			return false
		}
		w.SelectedTarget = id
		return true
	case "launch_missile":
		kind, ok := asString(value)
		if !ok {
			return false
		}
		if w.Missiles.Status != model.WeaponReady {
			return false
		}
		switch kind {
		case "proton":
			if w.Missiles.Proton <= 0 {
				return false
			}
			w.Missiles.Proton--
		case "concussion":
			if w.Missiles.Concussion <= 0 {
				return false
			}
			w.Missiles.Concussion--
		case "ion":
			if w.Missiles.Ion <= 0 {
				return false
			}
			w.Missiles.Ion--
		default:
			return false
		}
		return true
	default:
		return false
	}
}

// powerAllocationPayload is the value shape for set_power_allocation.
type powerAllocationPayload struct {
	System string  `json:"system"`
	Value  float64 `json:"value"`
}

// repairPayload is the value shape for initiate_repair.
type repairPayload struct {
	System   string `json:"system"`
	Priority int    `json:"priority"`
}

func applyEngineer(gs *model.GameState, action string, value json.RawMessage) bool {
	eng := &gs.Engineering
	switch action {
	case "set_power_allocation":
		var p powerAllocationPayload
		if err := json.Unmarshal(value, &p); err != nil {
			return false
		}
		if !isPowerSystem(p.System) {
			return false
		}
		v := clamp(p.Value, 0, 100)
		// The cross-system total must stay within the reactor ceiling no
		// matter which client sent the action, so the invariant is enforced
		// here rather than in station UIs: the requested allocation is
		// honored and the remaining systems are scaled down to fit.
		other := 0.0
		for system, pct := range eng.PowerDistribution.PowerAllocations {
			if system != p.System {
				other += pct
			}
		}
		if other+v > eng.TotalPower {
			factor := 0.0
			if other > 0 {
				factor = (eng.TotalPower - v) / other
			}
			if factor < 0 {
				factor = 0
			}
			for system, pct := range eng.PowerDistribution.PowerAllocations {
				if system != p.System {
					eng.PowerDistribution.PowerAllocations[system] = pct * factor
				}
			}
		}
		eng.PowerDistribution.PowerAllocations[p.System] = v
		return true
	case "initiate_repair":
		var p repairPayload
		if err := json.Unmarshal(value, &p); err != nil {
			return false
		}
		if p.System == "" {
			return false
		}
		eng.RepairQueue = append(eng.RepairQueue, model.RepairTask{
			ID:        uuid.New().String(),
			System:    p.System,
			Priority:  p.Priority,
			Status:    model.RepairQueued,
			StartedAt: time.Now(),
		})
		return true
	case "toggle_emergency_power":
		eng.EmergencyPower = !eng.EmergencyPower
		return true
	default:
		return false
	}
}

func applyCommander(gs *model.GameState, action string, value json.RawMessage) bool {
	cmd := &gs.Command
	switch action {
	case "set_alert_level":
		v, ok := asString(value)
		if !ok {
			return false
		}
		gs.AlertLevel = model.AlertLevel(v)
		return true
	case "toggle_battle_stations":
		cmd.BattleStations = !cmd.BattleStations
		return true
	case "set_mission_status":
		v, ok := asString(value)
		if !ok {
			return false
		}
		gs.MissionStatus = model.MissionStatus(v)
		return true
	case "update_tactical_zoom":
		v, ok := asFloat(value)
		if !ok {
			return false
		}
		cmd.TacticalDisplay.Zoom = clamp(v, 0.1, 10)
		return true
	default:
		return false
	}
}

// messagePayload is the value shape for send_message.
type messagePayload struct {
	To        string                `json:"to"`
	Content   string                `json:"content"`
	Priority  model.MessagePriority `json:"priority"`
	Encrypted bool                  `json:"encrypted"`
	From      string                `json:"from"`
}

func applyComms(gs *model.GameState, action string, value json.RawMessage) bool {
	comms := &gs.Communications
	switch action {
	case "set_frequency":
		v, ok := asFloat(value)
		if !ok {
			return false
		}
		comms.PrimaryFrequency = v
		return true
	case "send_message":
		var p messagePayload
		if err := json.Unmarshal(value, &p); err != nil {
			return false
		}
		if p.Priority == "" {
			p.Priority = model.PriorityNormal
		}
		comms.MessageQueue = append(comms.MessageQueue, model.CommMessage{
			ID:           uuid.New().String(),
			From:         p.From,
			To:           p.To,
			Content:      p.Content,
			Priority:     p.Priority,
			Encrypted:    p.Encrypted,
			Acknowledged: false,
			Timestamp:    time.Now(),
		})
		return true
	case "toggle_emergency_beacon":
		comms.EmergencyBeacon = !comms.EmergencyBeacon
		return true
	default:
		return false
	}
}

func isPowerSystem(name string) bool {
	for _, s := range PowerSystems() {
		if s == name {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func asFloat(raw json.RawMessage) (float64, bool) {
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

func asString(raw json.RawMessage) (string, bool) {
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	return v, true
}
