// models/catalog_data.go
package models

// Built-in content tables. Mission ids are world*100 + position.
var DefaultWorlds = []World{
	{
		ID: 1, Subject: "mathematics", Title: "Nebula of Numbers",
		Tagline: "Chart the patterns that hold the galaxy together", Icon: "🪐", Color: "#7c3aed",
		Chapters: []Chapter{{ID: 10, Title: "Signal Decoding", MissionIDs: []int{101, 102, 103, 104}}},
	},
	{
		ID: 2, Subject: "physics", Title: "Gravity Well Outpost",
		Tagline: "Bend light, slingshot moons, survive the pull", Icon: "🌌", Color: "#2563eb",
		Chapters: []Chapter{{ID: 20, Title: "Orbital Mechanics", MissionIDs: []int{201, 202, 203}}},
	},
	{
		ID: 3, Subject: "chemistry", Title: "Reactor Station Kappa",
		Tagline: "Balance the reactions before the core overheats", Icon: "⚗️", Color: "#059669",
		Chapters: []Chapter{{ID: 30, Title: "Core Stabilization", MissionIDs: []int{301, 302, 303}}},
	},
	{
		ID: 4, Subject: "biology", Title: "Living Colony Seven",
		Tagline: "Keep the biodome breathing", Icon: "🧬", Color: "#16a34a",
		Chapters: []Chapter{{ID: 40, Title: "Biodome Survey", MissionIDs: []int{401, 402, 403}}},
	},
	{
		ID: 5, Subject: "computing", Title: "Quantum Relay Array",
		Tagline: "Route the fleet's messages through hostile space", Icon: "🛰️", Color: "#db2777",
		Chapters: []Chapter{{ID: 50, Title: "Relay Protocols", MissionIDs: []int{501, 502, 503, 504}}},
	},
}

var DefaultMissions = []Mission{
	{ID: 101, WorldID: 1, ChapterID: 10, Title: "Prime Beacon", Narrative: "A distress beacon pulses only on prime seconds. Decode its rhythm.", Difficulty: DifficultyCadet, XP: 650},
	{ID: 102, WorldID: 1, ChapterID: 10, Title: "Fractal Drift", Narrative: "Map the self-similar debris field before the shuttle drifts in.", Difficulty: DifficultyPilot, XP: 800},
	{ID: 103, WorldID: 1, ChapterID: 10, Title: "Vector Storm", Narrative: "Plot a safe course through crossing ion currents.", Difficulty: DifficultyAce, XP: 1100},
	{ID: 104, WorldID: 1, ChapterID: 10, Title: "Infinite Corridor", Narrative: "Prove the corridor converges before the hatch seals.", Difficulty: DifficultyLegend, XP: 1500},

	{ID: 201, WorldID: 2, ChapterID: 20, Title: "Escape Velocity", Narrative: "Compute the burn that frees the cargo pod from the moon.", Difficulty: DifficultyCadet, XP: 600},
	{ID: 202, WorldID: 2, ChapterID: 20, Title: "Slingshot Run", Narrative: "Borrow momentum from the gas giant without losing the hull.", Difficulty: DifficultyPilot, XP: 850},
	{ID: 203, WorldID: 2, ChapterID: 20, Title: "Lightbender", Narrative: "Use gravitational lensing to spot the hidden fleet.", Difficulty: DifficultyAce, XP: 1200},

	{ID: 301, WorldID: 3, ChapterID: 30, Title: "Coolant Balance", Narrative: "Balance the coolant equation before the alarms hit red.", Difficulty: DifficultyCadet, XP: 550},
	{ID: 302, WorldID: 3, ChapterID: 30, Title: "Catalyst Hunt", Narrative: "Find the catalyst that restarts the oxygen scrubbers.", Difficulty: DifficultyPilot, XP: 900},
	{ID: 303, WorldID: 3, ChapterID: 30, Title: "Chain Reaction", Narrative: "Contain the runaway reaction in reactor bay three.", Difficulty: DifficultyLegend, XP: 1400},

	{ID: 401, WorldID: 4, ChapterID: 40, Title: "Seed Vault", Narrative: "Classify the seed vault before the power cycle.", Difficulty: DifficultyCadet, XP: 500},
	{ID: 402, WorldID: 4, ChapterID: 40, Title: "Symbiosis", Narrative: "Pair the colony's fungi with the right root systems.", Difficulty: DifficultyPilot, XP: 750},
	{ID: 403, WorldID: 4, ChapterID: 40, Title: "Gene Forge", Narrative: "Trace the mutation spreading through the algae tanks.", Difficulty: DifficultyAce, XP: 1050},

	{ID: 501, WorldID: 5, ChapterID: 50, Title: "Handshake", Narrative: "Bring the first relay online with a clean handshake.", Difficulty: DifficultyCadet, XP: 600},
	{ID: 502, WorldID: 5, ChapterID: 50, Title: "Packet Storm", Narrative: "Sort the flood of packets before the buffers overflow.", Difficulty: DifficultyPilot, XP: 850},
	{ID: 503, WorldID: 5, ChapterID: 50, Title: "Cipher Gate", Narrative: "Crack the gate cipher guarding the deep-space relay.", Difficulty: DifficultyAce, XP: 1150},
	{ID: 504, WorldID: 5, ChapterID: 50, Title: "Mesh Commander", Narrative: "Keep every relay in the mesh talking at once.", Difficulty: DifficultyLegend, XP: 1600},
}
