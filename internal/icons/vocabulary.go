// Package icons owns the icon vocabulary and the mapping engine between
// CalTopo marker symbols and onX icon names: exact and keyword resolution,
// advisory fuzzy suggestions, the versioned mapping document, and the
// append-only catalog of observed labels.
package icons

import "strings"

// CanonicalIconNames is the closed vocabulary of onX Backcountry icon
// names. Every icon entering a mapping table is validated against it.
var CanonicalIconNames = []string{
	"4x4",
	"Access Point",
	"ATV",
	"Backpacker",
	"Barrier",
	"Beach Combing",
	"Bike",
	"Cabin",
	"Camp Area",
	"Camp Backcountry",
	"Campground",
	"Campsite",
	"Canoe",
	"Cave",
	"Caving",
	"Climbing",
	"Closed Gate",
	"Cornice",
	"Couloir",
	"Crossing",
	"Dirt Bike",
	"Dog Sledding",
	"Eagle",
	"Emergency Phone",
	"Feeding Area",
	"Fish",
	"Food Source",
	"Food Storage",
	"Footbridge",
	"Foraging",
	"Fuel",
	"Gate",
	"Gear",
	"Geyser",
	"Hand Launch",
	"Hang Gliding",
	"Hazard",
	"Hike",
	"Horseback",
	"Hot Spring",
	"House",
	"Kayak",
	"Kennels",
	"Lighthouses",
	"Location",
	"Log Obstacle",
	"Lookout",
	"Marina",
	"Mountain Biking",
	"Mountaineer",
	"Mushroom",
	"Observation Towers",
	"Open Gate",
	"Overland",
	"Parking",
	"Photo",
	"Picnic Area",
	"Potable Water",
	"Put In",
	"Raft",
	"Rapids",
	"Rappel",
	"Road Barrier",
	"Ruins",
	"RV",
	"Sasquatch",
	"Shelter",
	"Ski",
	"Ski Areas",
	"Ski Touring",
	"Skin Track",
	"Slide Path",
	"Snow Pit",
	"Snowboarder",
	"Snowmobile",
	"Snowpark",
	"Steep Trail",
	"Stock Tank",
	"Summit",
	"Surfing Area",
	"SUV",
	"Swimming",
	"Take Out",
	"Trailhead",
	"Truck",
	"View",
	"Visitor Center",
	"Washout",
	"Water Crossing",
	"Water Source",
	"Waterfall",
	"Webcam",
	"Wetland",
	"Wildflower",
	"Windsurfing",
	"XC Skiing",
}

var (
	iconByNorm    = make(map[string]string, len(CanonicalIconNames))
	iconByCompact = make(map[string]string, len(CanonicalIconNames))
)

func init() {
	for _, name := range CanonicalIconNames {
		k := normIconKey(name)
		iconByNorm[k] = name
		iconByCompact[strings.ReplaceAll(k, " ", "")] = name
	}
}

// normIconKey folds case, underscores, hyphens and whitespace runs.
func normIconKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

// CanonicalIconName maps user input like "camp_backcountry" or
// "CampBackcountry" to the canonical spelling. Unknown names return false.
func CanonicalIconName(value string) (string, bool) {
	k := normIconKey(value)
	if k == "" {
		return "", false
	}
	if name, ok := iconByNorm[k]; ok {
		return name, true
	}
	name, ok := iconByCompact[strings.ReplaceAll(k, " ", "")]
	return name, ok
}
