package model

import "time"

// GameState is the authoritative document describing the whole simulated ship
// for one session. It is stored as a single JSON value and always mutated
// whole: fetch, modify, save. Version is bumped by the state store on every
// save and is used to detect concurrent writers.
type GameState struct {
	SessionID      string              `json:"sessionId"`
	MissionStatus  MissionStatus       `json:"missionStatus"`
	AlertLevel     AlertLevel          `json:"alertLevel"`
	Systems        SystemsState        `json:"systems"`
	Navigation     NavigationState     `json:"navigation"`
	Weapons        WeaponsState        `json:"weapons"`
	Communications CommunicationsState `json:"communications"`
	Engineering    EngineeringState    `json:"engineering"`
	Command        CommandState        `json:"command"`
	Environment    EnvironmentState    `json:"environment"`
	Timestamp      time.Time           `json:"timestamp"`
	Version        int64               `json:"version"`
}

// MissionStatus is set by the commander or the GM.
type MissionStatus string

const (
	MissionStatusActive    MissionStatus = "active"
	MissionStatusPaused    MissionStatus = "paused"
	MissionStatusCompleted MissionStatus = "completed"
	MissionStatusFailed    MissionStatus = "failed"
)

// AlertLevel is the ship-wide alert condition.
type AlertLevel string

const (
	AlertLevelGreen  AlertLevel = "green"
	AlertLevelYellow AlertLevel = "yellow"
	AlertLevelRed    AlertLevel = "red"
)

// SystemStatus describes the operational condition of a single ship system.
type SystemStatus string

const (
	SystemOperational SystemStatus = "operational"
	SystemDamaged     SystemStatus = "damaged"
	SystemCritical    SystemStatus = "critical"
	SystemOffline     SystemStatus = "offline"
)

// ShipSystem is one of the eight monitored components in SystemsState.
type ShipSystem struct {
	Health      float64      `json:"health"`
	Power       float64      `json:"power"`
	Efficiency  float64      `json:"efficiency"`
	Temperature float64      `json:"temperature"`
	Status      SystemStatus `json:"status"`
}

// SystemsState tracks hull, shields and the other core components.
type SystemsState struct {
	Hull           ShipSystem `json:"hull"`
	Shields        ShipSystem `json:"shields"`
	Weapons        ShipSystem `json:"weapons"`
	Engines        ShipSystem `json:"engines"`
	Power          ShipSystem `json:"power"`
	Communications ShipSystem `json:"communications"`
	Sensors        ShipSystem `json:"sensors"`
	LifeSupport    ShipSystem `json:"lifeSupport"`
}

// Vector3 is a position, heading or velocity component set.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HyperspaceStatus is the hyperdrive charge cycle state.
type HyperspaceStatus string

const (
	HyperspaceReady    HyperspaceStatus = "ready"
	HyperspaceCharging HyperspaceStatus = "charging"
	HyperspaceJumping  HyperspaceStatus = "jumping"
	HyperspaceCooldown HyperspaceStatus = "cooldown"
)

// NavigationState is owned by the pilot station.
type NavigationState struct {
	Position   Vector3         `json:"position"`
	Heading    Vector3         `json:"heading"`
	Velocity   Vector3         `json:"velocity"`
	Speed      float64         `json:"speed"`
	Hyperspace HyperspaceState `json:"hyperspace"`
	Fuel       float64         `json:"fuel"`
	Autopilot  bool            `json:"autopilot"`
}

// HyperspaceState tracks the hyperdrive.
type HyperspaceState struct {
	Status HyperspaceStatus `json:"status"`
	Charge float64          `json:"charge"`
}

// WeaponStatus is the firing cycle state of a mounted weapon.
type WeaponStatus string

const (
	WeaponReady      WeaponStatus = "ready"
	WeaponFiring     WeaponStatus = "firing"
	WeaponCharging   WeaponStatus = "charging"
	WeaponOverheated WeaponStatus = "overheated"
	WeaponOffline    WeaponStatus = "offline"
)

// Weapon is a single turbolaser or ion cannon mount.
type Weapon struct {
	ID     string       `json:"id"`
	Status WeaponStatus `json:"status"`
	Heat   float64      `json:"heat"`
	Power  float64      `json:"power"`
}

// MissileRack holds the launcher status and the per-type ammunition counts.
type MissileRack struct {
	Status     WeaponStatus `json:"status"`
	Proton     int          `json:"proton"`
	Concussion int          `json:"concussion"`
	Ion        int          `json:"ion"`
}

// Target is an entry in the gunner's targeting list.
type Target struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
	Bearing  float64 `json:"bearing"`
	Locked   bool    `json:"locked"`
}

// WeaponsState is owned by the gunner station.
type WeaponsState struct {
	Turbolasers    []Weapon    `json:"turbolasers"`
	IonCannon      Weapon      `json:"ionCannon"`
	Missiles       MissileRack `json:"missiles"`
	Targets        []Target    `json:"targets"`
	SelectedTarget string      `json:"selectedTarget"`
}

// MessagePriority orders entries in the comms message queue.
type MessagePriority string

const (
	PriorityLow    MessagePriority = "low"
	PriorityNormal MessagePriority = "normal"
	PriorityHigh   MessagePriority = "high"
	PriorityUrgent MessagePriority = "urgent"
)

// CommMessage is one transmission in the message queue.
type CommMessage struct {
	ID           string          `json:"id"`
	From         string          `json:"from"`
	To           string          `json:"to"`
	Content      string          `json:"content"`
	Priority     MessagePriority `json:"priority"`
	Encrypted    bool            `json:"encrypted"`
	Acknowledged bool            `json:"acknowledged"`
	Timestamp    time.Time       `json:"timestamp"`
}

// CommChannel is a tunable communications channel.
type CommChannel struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Frequency float64 `json:"frequency"`
	Encrypted bool    `json:"encrypted"`
	Active    bool    `json:"active"`
}

// CommunicationsState is owned by the comms station.
type CommunicationsState struct {
	PrimaryFrequency   float64       `json:"primaryFrequency"`
	EmergencyFrequency float64       `json:"emergencyFrequency"`
	CommandFrequency   float64       `json:"commandFrequency"`
	SignalStrength     float64       `json:"signalStrength"`
	Interference       float64       `json:"interference"`
	TransmissionStatus string        `json:"transmissionStatus"`
	Channels           []CommChannel `json:"channels"`
	MessageQueue       []CommMessage `json:"messageQueue"`
	EmergencyBeacon    bool          `json:"emergencyBeacon"`
}

// RepairStatus tracks a repair task through the engineer's queue.
type RepairStatus string

const (
	RepairQueued     RepairStatus = "queued"
	RepairInProgress RepairStatus = "in_progress"
	RepairCompleted  RepairStatus = "completed"
)

// RepairTask is an entry in the engineering repair queue.
type RepairTask struct {
	ID        string       `json:"id"`
	System    string       `json:"system"`
	Priority  int          `json:"priority"`
	Status    RepairStatus `json:"status"`
	StartedAt time.Time    `json:"startedAt"`
}

// PowerDistribution is the engineer's allocation of reactor output across the
// six consumer systems. Allocations are percentages and their sum must not
// exceed the engineering TotalPower ceiling.
type PowerDistribution struct {
	PowerAllocations map[string]float64 `json:"powerAllocations"`
}

// EngineeringState is owned by the engineer station.
type EngineeringState struct {
	TotalPower        float64           `json:"totalPower"`
	ReactorOutput     float64           `json:"reactorOutput"`
	PowerDistribution PowerDistribution `json:"powerDistribution"`
	Battery           float64           `json:"battery"`
	EmergencyPower    bool              `json:"emergencyPower"`
	RepairQueue       []RepairTask      `json:"repairQueue"`
	Diagnostics       []string          `json:"diagnostics"`
}

// TacticalDisplay is the commander's shared tactical view settings.
type TacticalDisplay struct {
	Zoom float64 `json:"zoom"`
	Mode string  `json:"mode"`
}

// Objective is a mission objective shown on the command panel.
type Objective struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// CrewMember is an entry in the command crew roster.
type CrewMember struct {
	Name    string `json:"name"`
	Station string `json:"station"`
}

// CommandState is owned by the commander station.
type CommandState struct {
	BattleStations  bool            `json:"battleStations"`
	TacticalDisplay TacticalDisplay `json:"tacticalDisplay"`
	Objectives      []Objective     `json:"objectives"`
	CrewRoster      []CrewMember    `json:"crewRoster"`
}

// CelestialBody is a planet, moon, station or other object in the sector.
type CelestialBody struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Distance float64 `json:"distance"`
}

// Sector identifies where in the galaxy the ship currently is.
type Sector struct {
	Name   string `json:"name"`
	Region string `json:"region"`
}

// EnvironmentState describes the ship's surroundings; mutated only by the GM.
type EnvironmentState struct {
	Sector          Sector          `json:"sector"`
	CelestialBodies []CelestialBody `json:"celestialBodies"`
}
