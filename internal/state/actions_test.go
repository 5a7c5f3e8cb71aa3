package state

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/model"
)

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal value: %v", err)
	}
	return b
}

// deepCopy snapshots the state through a JSON round trip so slice and map
// subtrees do not alias the original.
func deepCopy(t *testing.T, gs *model.GameState) *model.GameState {
	t.Helper()
	b, err := json.Marshal(gs)
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}
	var out model.GameState
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	return &out
}

func TestPilotSetSpeedClamps(t *testing.T) {
	gs := NewGameState("s1")

	if !Apply(gs, model.StationPilot, "set_speed", raw(t, 150)) {
		t.Fatal("expected set_speed to change state")
	}
	if gs.Navigation.Speed != 100 {
		t.Fatalf("expected speed clamped to 100, got %v", gs.Navigation.Speed)
	}

	if !Apply(gs, model.StationPilot, "set_speed", raw(t, -5)) {
		t.Fatal("expected set_speed to change state")
	}
	if gs.Navigation.Speed != 0 {
		t.Fatalf("expected speed clamped to 0, got %v", gs.Navigation.Speed)
	}
}

func TestPilotHeadingAndAutopilot(t *testing.T) {
	gs := NewGameState("s1")

	Apply(gs, model.StationPilot, "set_heading_x", raw(t, 12.5))
	Apply(gs, model.StationPilot, "set_heading_y", raw(t, -3))
	Apply(gs, model.StationPilot, "set_heading_z", raw(t, 7))
	if gs.Navigation.Heading != (model.Vector3{X: 12.5, Y: -3, Z: 7}) {
		t.Fatalf("unexpected heading %+v", gs.Navigation.Heading)
	}

	Apply(gs, model.StationPilot, "toggle_autopilot", nil)
	if !gs.Navigation.Autopilot {
		t.Fatal("expected autopilot on after toggle")
	}
	Apply(gs, model.StationPilot, "toggle_autopilot", nil)
	if gs.Navigation.Autopilot {
		t.Fatal("expected autopilot off after second toggle")
	}
}

func TestPilotHyperspaceOnlyFromReady(t *testing.T) {
	gs := NewGameState("s1")

	if !Apply(gs, model.StationPilot, "initiate_hyperspace", nil) {
		t.Fatal("expected hyperspace initiation from ready")
	}
	if gs.Navigation.Hyperspace.Status != model.HyperspaceCharging {
		t.Fatalf("expected charging, got %q", gs.Navigation.Hyperspace.Status)
	}

	// Already charging: request is ignored.
	if Apply(gs, model.StationPilot, "initiate_hyperspace", nil) {
		t.Fatal("expected no-op while charging")
	}
}

func TestGunnerFireTurbolaser(t *testing.T) {
	gs := NewGameState("s1")

	if !Apply(gs, model.StationGunner, "fire_turbolaser", raw(t, "turbolaser-1")) {
		t.Fatal("expected fire_turbolaser to change state")
	}
	tl := gs.Weapons.Turbolasers[0]
	if tl.Status != model.WeaponFiring {
		t.Fatalf("expected firing, got %q", tl.Status)
	}
	if tl.Heat != 25 {
		t.Fatalf("expected heat 25, got %v", tl.Heat)
	}

	// A weapon that is not ready cannot fire again.
	if Apply(gs, model.StationGunner, "fire_turbolaser", raw(t, "turbolaser-1")) {
		t.Fatal("expected no-op while firing")
	}
	if Apply(gs, model.StationGunner, "fire_turbolaser", raw(t, "turbolaser-9")) {
		t.Fatal("expected no-op for unknown weapon id")
	}
}

func TestGunnerHeatClampsAt100(t *testing.T) {
	gs := NewGameState("s1")
	gs.Weapons.Turbolasers[0].Heat = 90

	Apply(gs, model.StationGunner, "fire_turbolaser", raw(t, "turbolaser-1"))
	if got := gs.Weapons.Turbolasers[0].Heat; got != 100 {
		t.Fatalf("expected heat clamped at 100, got %v", got)
	}
}

func TestGunnerLaunchMissileDecrementsAmmo(t *testing.T) {
	gs := NewGameState("s1")
	before := gs.Weapons.Missiles.Proton

	if !Apply(gs, model.StationGunner, "launch_missile", raw(t, "proton")) {
		t.Fatal("expected launch to change state")
	}
	if gs.Weapons.Missiles.Proton != before-1 {
		t.Fatalf("expected proton count %d, got %d", before-1, gs.Weapons.Missiles.Proton)
	}

	gs.Weapons.Missiles.Ion = 0
	if Apply(gs, model.StationGunner, "launch_missile", raw(t, "ion")) {
		t.Fatal("expected no-op with empty ion rack")
	}

	gs.Weapons.Missiles.Status = model.WeaponCharging
	if Apply(gs, model.StationGunner, "launch_missile", raw(t, "proton")) {
		t.Fatal("expected no-op while launcher not ready")
	}
}

func TestEngineerPowerAllocationClampAndRebalance(t *testing.T) {
	gs := NewGameState("s1")

	if !Apply(gs, model.StationEngineer, "set_power_allocation", raw(t, powerAllocationPayload{System: "weapons", Value: 999})) {
		t.Fatal("expected allocation to change state")
	}
	alloc := gs.Engineering.PowerDistribution.PowerAllocations
	if alloc["weapons"] != 100 {
		t.Fatalf("expected weapons allocation clamped to 100, got %v", alloc["weapons"])
	}
	sum := 0.0
	for _, pct := range alloc {
		sum += pct
	}
	if sum > gs.Engineering.TotalPower+1e-9 {
		t.Fatalf("expected cross-system total within %v, got %v", gs.Engineering.TotalPower, sum)
	}

	if Apply(gs, model.StationEngineer, "set_power_allocation", raw(t, powerAllocationPayload{System: "hyperdrive", Value: 10})) {
		t.Fatal("expected no-op for unrecognized system")
	}
}

func TestEngineerRepairAndEmergencyPower(t *testing.T) {
	gs := NewGameState("s1")

	if !Apply(gs, model.StationEngineer, "initiate_repair", raw(t, repairPayload{System: "shields", Priority: 2})) {
		t.Fatal("expected repair to change state")
	}
	if len(gs.Engineering.RepairQueue) != 1 {
		t.Fatalf("expected one queued repair, got %d", len(gs.Engineering.RepairQueue))
	}
	task := gs.Engineering.RepairQueue[0]
	if task.ID == "" || task.System != "shields" || task.Status != model.RepairQueued {
		t.Fatalf("unexpected repair task %+v", task)
	}

	Apply(gs, model.StationEngineer, "toggle_emergency_power", nil)
	if !gs.Engineering.EmergencyPower {
		t.Fatal("expected emergency power on after toggle")
	}
}

func TestCommanderActions(t *testing.T) {
	gs := NewGameState("s1")

	Apply(gs, model.StationCommander, "set_alert_level", raw(t, "red"))
	if gs.AlertLevel != model.AlertLevelRed {
		t.Fatalf("expected red alert, got %q", gs.AlertLevel)
	}

	Apply(gs, model.StationCommander, "toggle_battle_stations", nil)
	if !gs.Command.BattleStations {
		t.Fatal("expected battle stations on")
	}

	Apply(gs, model.StationCommander, "set_mission_status", raw(t, "paused"))
	if gs.MissionStatus != model.MissionStatusPaused {
		t.Fatalf("expected paused mission, got %q", gs.MissionStatus)
	}

	Apply(gs, model.StationCommander, "update_tactical_zoom", raw(t, 50))
	if gs.Command.TacticalDisplay.Zoom != 10 {
		t.Fatalf("expected zoom clamped to 10, got %v", gs.Command.TacticalDisplay.Zoom)
	}
	Apply(gs, model.StationCommander, "update_tactical_zoom", raw(t, 0.01))
	if gs.Command.TacticalDisplay.Zoom != 0.1 {
		t.Fatalf("expected zoom clamped to 0.1, got %v", gs.Command.TacticalDisplay.Zoom)
	}
}

func TestCommsSendMessageAppendsWithDefaults(t *testing.T) {
	gs := NewGameState("s1")

	if !Apply(gs, model.StationComms, "send_message", raw(t, messagePayload{To: "All Stations", Content: "test", Priority: model.PriorityHigh})) {
		t.Fatal("expected send_message to change state")
	}
	if len(gs.Communications.MessageQueue) != 1 {
		t.Fatalf("expected one queued message, got %d", len(gs.Communications.MessageQueue))
	}
	msg := gs.Communications.MessageQueue[0]
	if msg.ID == "" {
		t.Fatal("expected a generated message id")
	}
	if msg.Acknowledged {
		t.Fatal("expected message unacknowledged")
	}
	if msg.Priority != model.PriorityHigh || msg.Content != "test" || msg.To != "All Stations" {
		t.Fatalf("unexpected message %+v", msg)
	}

	// Priority defaults to normal when omitted.
	Apply(gs, model.StationComms, "send_message", raw(t, messagePayload{To: "Command", Content: "ping"}))
	if got := gs.Communications.MessageQueue[1].Priority; got != model.PriorityNormal {
		t.Fatalf("expected default priority normal, got %q", got)
	}
}

func TestCommsFrequencyAndBeacon(t *testing.T) {
	gs := NewGameState("s1")

	Apply(gs, model.StationComms, "set_frequency", raw(t, 455.75))
	if gs.Communications.PrimaryFrequency != 455.75 {
		t.Fatalf("expected primary frequency 455.75, got %v", gs.Communications.PrimaryFrequency)
	}

	Apply(gs, model.StationComms, "toggle_emergency_beacon", nil)
	if !gs.Communications.EmergencyBeacon {
		t.Fatal("expected emergency beacon on")
	}
}

func TestUnknownActionAndStationAreNoOps(t *testing.T) {
	gs := NewGameState("s1")

	if Apply(gs, model.StationPilot, "do_a_barrel_roll", raw(t, 1)) {
		t.Fatal("expected unknown action to be a silent no-op")
	}
	if Apply(gs, model.Station("janitor"), "set_speed", raw(t, 10)) {
		t.Fatal("expected unknown station to be a silent no-op")
	}
}

// Each station's actions may only touch that station's slice of the state.
func TestActionDomainIsolation(t *testing.T) {
	cases := []struct {
		station model.Station
		action  string
		value   any
	}{
		{model.StationPilot, "set_speed", 50},
		{model.StationGunner, "fire_turbolaser", "turbolaser-1"},
		{model.StationEngineer, "toggle_emergency_power", nil},
		{model.StationCommander, "toggle_battle_stations", nil},
		{model.StationComms, "toggle_emergency_beacon", nil},
	}
	for _, tc := range cases {
		gs := NewGameState("s1")
		before := deepCopy(t, gs)

		if !Apply(gs, tc.station, tc.action, raw(t, tc.value)) {
			t.Fatalf("%s/%s: expected state change", tc.station, tc.action)
		}

		if tc.station != model.StationPilot && !reflect.DeepEqual(gs.Navigation, before.Navigation) {
			t.Fatalf("%s/%s mutated navigation", tc.station, tc.action)
		}
		if tc.station != model.StationGunner && !reflect.DeepEqual(gs.Weapons, before.Weapons) {
			t.Fatalf("%s/%s mutated weapons", tc.station, tc.action)
		}
		if tc.station != model.StationEngineer && !reflect.DeepEqual(gs.Engineering, before.Engineering) {
			t.Fatalf("%s/%s mutated engineering", tc.station, tc.action)
		}
		if tc.station != model.StationCommander && !reflect.DeepEqual(gs.Command, before.Command) {
			t.Fatalf("%s/%s mutated command", tc.station, tc.action)
		}
		if tc.station != model.StationComms && !reflect.DeepEqual(gs.Communications, before.Communications) {
			t.Fatalf("%s/%s mutated communications", tc.station, tc.action)
		}
		if !reflect.DeepEqual(gs.Systems, before.Systems) || !reflect.DeepEqual(gs.Environment, before.Environment) {
			t.Fatalf("%s/%s mutated systems or environment", tc.station, tc.action)
		}
	}
}
