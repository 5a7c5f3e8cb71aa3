// Package state holds the pure game-state logic: the factory that builds a
// brand-new ship and the per-station action processor. Nothing in this
// package performs I/O; stores and the gateway live elsewhere.
package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/model"
)

// Default engineering power split across the six consumer systems. Sums to
// the initial TotalPower of 100.
var defaultPowerAllocations = map[string]float64{
	"weapons":        20,
	"shields":        20,
	"engines":        25,
	"lifeSupport":    15,
	"sensors":        10,
	"communications": 10,
}

// PowerSystems lists the consumer systems the engineer may allocate power to.
func PowerSystems() []string {
	return []string{"weapons", "shields", "engines", "lifeSupport", "sensors", "communications"}
}

// NewGameState builds the initial, fully-formed state document for a new
// session. This is the single source of truth for what a brand-new ship
// looks like; no other component may synthesize missing subsystems.
func NewGameState(sessionID string) *model.GameState {
	now := time.Now()
	return &model.GameState{
		SessionID:      sessionID,
		MissionStatus:  model.MissionStatusActive,
		AlertLevel:     model.AlertLevelGreen,
		Systems:        newSystems(),
		Navigation:     newNavigation(),
		Weapons:        newWeapons(),
		Communications: newCommunications(),
		Engineering:    newEngineering(),
		Command:        newCommand(),
		Environment:    newEnvironment(),
		Timestamp:      now,
		Version:        0,
	}
}

func newShipSystem() model.ShipSystem {
	return model.ShipSystem{
		Health:      100,
		Power:       100,
		Efficiency:  100,
		Temperature: 20,
		Status:      model.SystemOperational,
	}
}

func newSystems() model.SystemsState {
	return model.SystemsState{
		Hull:           newShipSystem(),
		Shields:        newShipSystem(),
		Weapons:        newShipSystem(),
		Engines:        newShipSystem(),
		Power:          newShipSystem(),
		Communications: newShipSystem(),
		Sensors:        newShipSystem(),
		LifeSupport:    newShipSystem(),
	}
}

func newNavigation() model.NavigationState {
	return model.NavigationState{
		Position: model.Vector3{},
		Heading:  model.Vector3{},
		Velocity: model.Vector3{},
		Speed:    0,
		Hyperspace: model.HyperspaceState{
			Status: model.HyperspaceReady,
			Charge: 100,
		},
		Fuel:      100,
		Autopilot: false,
	}
}

func newWeapons() model.WeaponsState {
	return model.WeaponsState{
		Turbolasers: []model.Weapon{
			{ID: "turbolaser-1", Status: model.WeaponReady, Heat: 0, Power: 100},
			{ID: "turbolaser-2", Status: model.WeaponReady, Heat: 0, Power: 100},
		},
		IonCannon: model.Weapon{ID: "ion-cannon-1", Status: model.WeaponReady, Heat: 0, Power: 100},
		Missiles: model.MissileRack{
			Status:     model.WeaponReady,
			Proton:     12,
			Concussion: 8,
			Ion:        4,
		},
		Targets:        []model.Target{},
		SelectedTarget: "",
	}
}

func newCommunications() model.CommunicationsState {
	return model.CommunicationsState{
		PrimaryFrequency:   121.5,
		EmergencyFrequency: 121.5,
		CommandFrequency:   243.0,
		SignalStrength:     100,
		Interference:       0,
		TransmissionStatus: "standby",
		Channels: []model.CommChannel{
			{ID: "channel-1", Name: "Open Channel", Frequency: 121.5, Encrypted: false, Active: true},
		},
		MessageQueue:    []model.CommMessage{},
		EmergencyBeacon: false,
	}
}

func newEngineering() model.EngineeringState {
	allocations := make(map[string]float64, len(defaultPowerAllocations))
	for system, pct := range defaultPowerAllocations {
		allocations[system] = pct
	}
	return model.EngineeringState{
		TotalPower:        100,
		ReactorOutput:     100,
		PowerDistribution: model.PowerDistribution{PowerAllocations: allocations},
		Battery:           100,
		EmergencyPower:    false,
		RepairQueue:       []model.RepairTask{},
		Diagnostics:       []string{},
	}
}

func newCommand() model.CommandState {
	return model.CommandState{
		BattleStations:  false,
		TacticalDisplay: model.TacticalDisplay{Zoom: 1, Mode: "sector"},
		Objectives: []model.Objective{
			{ID: uuid.New().String(), Description: "Escort the convoy through the Corellian Run", Completed: false},
		},
		CrewRoster: []model.CrewMember{},
	}
}

func newEnvironment() model.EnvironmentState {
	return model.EnvironmentState{
		Sector: model.Sector{Name: "Corellian Sector", Region: "Core Worlds"},
		CelestialBodies: []model.CelestialBody{
			{Name: "Corellia", Type: "planet", Distance: 12000},
		},
	}
}
