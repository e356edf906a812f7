package icons

// DefaultIconColor is used when an icon has no entry of its own, which
// ValidateIconColors rules out for the canonical vocabulary.
const DefaultIconColor = "rgba(8,122,255,1)"

// iconColors assigns every canonical icon a default waypoint color.
// All values stay inside the official ten-color waypoint palette; onX
// ignores anything else on import. The table is total over
// CanonicalIconNames, enforced by ValidateIconColors.
var iconColors = map[string]string{
	// Navigation and default
	"Location":       "rgba(8,122,255,1)",
	"Cave":           "rgba(8,122,255,1)",
	"Caving":         "rgba(8,122,255,1)",
	"Visitor Center": "rgba(8,122,255,1)",
	"Marina":         "rgba(8,122,255,1)",

	// Hazards and obstructions
	"Hazard":       "rgba(255,51,0,1)",
	"Cornice":      "rgba(255,51,0,1)",
	"Slide Path":   "rgba(255,51,0,1)",
	"Steep Trail":  "rgba(255,51,0,1)",
	"Washout":      "rgba(255,51,0,1)",
	"Log Obstacle": "rgba(255,51,0,1)",

	// Camping (waypoint palette has no true orange; red-orange is closest)
	"Campsite":         "rgba(255,51,0,1)",
	"Camp Area":        "rgba(255,51,0,1)",
	"Camp Backcountry": "rgba(255,51,0,1)",
	"Campground":       "rgba(0,0,0,1)",

	// Hard closures
	"Barrier":         "rgba(255,0,0,1)",
	"Road Barrier":    "rgba(255,0,0,1)",
	"Closed Gate":     "rgba(255,0,0,1)",
	"Summit":          "rgba(255,0,0,1)",
	"Emergency Phone": "rgba(255,0,0,1)",

	// Infrastructure
	"Parking": "rgba(0,0,0,1)",
	"Fuel":    "rgba(0,0,0,1)",
	"Gear":    "rgba(0,0,0,1)",
	"Gate":    "rgba(0,0,0,1)",
	"Ruins":   "rgba(0,0,0,1)",

	// Water features and activities
	"Water Source":  "rgba(0,255,255,1)",
	"Waterfall":     "rgba(0,255,255,1)",
	"Potable Water": "rgba(0,255,255,1)",
	"Wetland":       "rgba(0,255,255,1)",
	"Rapids":        "rgba(0,255,255,1)",
	"Swimming":      "rgba(0,255,255,1)",
	"Canoe":         "rgba(0,255,255,1)",
	"Kayak":         "rgba(0,255,255,1)",
	"Raft":          "rgba(0,255,255,1)",
	"Put In":        "rgba(0,255,255,1)",
	"Take Out":      "rgba(0,255,255,1)",
	"Hand Launch":   "rgba(0,255,255,1)",
	"Windsurfing":   "rgba(0,255,255,1)",
	"Surfing Area":  "rgba(0,255,255,1)",
	"Beach Combing": "rgba(0,255,255,1)",
	"Fish":          "rgba(0,255,255,1)",

	// Springs and observation
	"Hot Spring":         "rgba(255,255,0,1)",
	"Geyser":             "rgba(255,255,0,1)",
	"Photo":              "rgba(255,255,0,1)",
	"View":               "rgba(255,255,0,1)",
	"Lookout":            "rgba(255,255,0,1)",
	"Observation Towers": "rgba(255,255,0,1)",
	"Lighthouses":        "rgba(255,255,0,1)",
	"Webcam":             "rgba(255,255,0,1)",

	// Trails and vehicles
	"Trailhead":       "rgba(132,212,0,1)",
	"4x4":             "rgba(132,212,0,1)",
	"ATV":             "rgba(132,212,0,1)",
	"Bike":            "rgba(132,212,0,1)",
	"Dirt Bike":       "rgba(132,212,0,1)",
	"Mountain Biking": "rgba(132,212,0,1)",
	"Overland":        "rgba(132,212,0,1)",
	"RV":              "rgba(132,212,0,1)",
	"SUV":             "rgba(132,212,0,1)",
	"Truck":           "rgba(132,212,0,1)",
	"Hike":            "rgba(132,212,0,1)",
	"Backpacker":      "rgba(132,212,0,1)",
	"Mountaineer":     "rgba(132,212,0,1)",
	"Access Point":    "rgba(132,212,0,1)",
	"Crossing":        "rgba(132,212,0,1)",
	"Footbridge":      "rgba(132,212,0,1)",
	"Open Gate":       "rgba(132,212,0,1)",

	// Winter
	"XC Skiing":    "rgba(255,255,255,1)",
	"Ski Touring":  "rgba(255,255,255,1)",
	"Ski":          "rgba(255,255,255,1)",
	"Ski Areas":    "rgba(255,255,255,1)",
	"Skin Track":   "rgba(255,255,255,1)",
	"Snowboarder":  "rgba(255,255,255,1)",
	"Snowmobile":   "rgba(255,255,255,1)",
	"Snowpark":     "rgba(255,255,255,1)",
	"Snow Pit":     "rgba(255,255,255,1)",
	"Couloir":      "rgba(255,255,255,1)",
	"Dog Sledding": "rgba(255,255,255,1)",

	// Shelters, food, wildlife
	"Cabin":          "rgba(139,69,19,1)",
	"Shelter":        "rgba(139,69,19,1)",
	"House":          "rgba(139,69,19,1)",
	"Food Source":    "rgba(139,69,19,1)",
	"Food Storage":   "rgba(139,69,19,1)",
	"Picnic Area":    "rgba(139,69,19,1)",
	"Kennels":        "rgba(139,69,19,1)",
	"Stock Tank":     "rgba(139,69,19,1)",
	"Water Crossing": "rgba(139,69,19,1)",
	"Horseback":      "rgba(139,69,19,1)",
	"Eagle":          "rgba(139,69,19,1)",
	"Feeding Area":   "rgba(139,69,19,1)",
	"Mushroom":       "rgba(139,69,19,1)",
	"Foraging":       "rgba(139,69,19,1)",

	// Technical terrain and the rest
	"Climbing":     "rgba(128,0,128,1)",
	"Rappel":       "rgba(128,0,128,1)",
	"Wildflower":   "rgba(128,0,128,1)",
	"Hang Gliding": "rgba(128,0,128,1)",
	"Sasquatch":    "rgba(128,0,128,1)",
}

// IconColor returns the default waypoint color for a canonical icon.
func IconColor(icon string) string {
	if c, ok := iconColors[icon]; ok {
		return c
	}
	return DefaultIconColor
}

// ValidateIconColors checks that every canonical icon has its own color
// entry and that no entry names an unknown icon. The validate command
// runs it so a bad table fails loudly instead of silently defaulting.
func ValidateIconColors() error {
	for _, name := range CanonicalIconNames {
		if _, ok := iconColors[name]; !ok {
			return &TableError{Table: "icon_colors", Key: name, Problem: "missing entry"}
		}
	}
	for name := range iconColors {
		if _, ok := CanonicalIconName(name); !ok {
			return &TableError{Table: "icon_colors", Key: name, Problem: "not a canonical icon"}
		}
	}
	return nil
}
