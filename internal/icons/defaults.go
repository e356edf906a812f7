package icons

// Built-in mapping tables. A mapping file loaded through the registry
// replaces or extends these; with no file the registry runs on exactly
// what is defined here.

// DefaultIcon is the fallback when neither symbol nor keywords match.
const DefaultIcon = "Location"

// DefaultSymbol is the CalTopo fallback for onX icons with no reverse entry.
const DefaultSymbol = "point"

// DefaultGenericSymbols lists marker symbols that carry no meaning on
// their own. They never match the symbol table and never count as
// unmapped; resolution falls through to keywords.
func DefaultGenericSymbols() []string {
	return []string{"point", "marker", "pin", "dot", "circle"}
}

// DefaultSymbolMap maps lowercased CalTopo marker symbols to onX icons.
// Every target must be a canonical icon name.
func DefaultSymbolMap() map[string]string {
	return map[string]string{
		// Hazards and warnings
		"danger":  "Hazard",
		"skull":   "Hazard",
		"warning": "Hazard",
		"caution": "Hazard",
		"hazard":  "Hazard",
		"alert":   "Hazard",

		// Camping
		"campsite":   "Campsite",
		"tent":       "Campsite",
		"camp":       "Campsite",
		"camping":    "Campsite",
		"bivy":       "Camp Backcountry",
		"campground": "Campground",
		"camp-area":  "Camp Area",

		// Water sources and features
		"water":          "Water Source",
		"droplet":        "Water Source",
		"spring":         "Water Source",
		"creek":          "Water Source",
		"lake":           "Water Source",
		"river":          "Water Source",
		"waterfall":      "Waterfall",
		"hot-spring":     "Hot Spring",
		"geyser":         "Geyser",
		"rapids":         "Rapids",
		"wetland":        "Wetland",
		"potable":        "Potable Water",
		"water-crossing": "Water Crossing",

		// Vehicles and transportation
		"car":        "Parking",
		"parking":    "Parking",
		"vehicle":    "Parking",
		"lot":        "Parking",
		"4x4":        "4x4",
		"atv":        "ATV",
		"bike":       "Bike",
		"bicycle":    "Bike",
		"dirt-bike":  "Dirt Bike",
		"motorcycle": "Dirt Bike",
		"overland":   "Overland",
		"rv":         "RV",
		"suv":        "SUV",
		"truck":      "Truck",

		// Winter sports
		"skiing":      "XC Skiing",
		"ski":         "Ski",
		"xc-skiing":   "XC Skiing",
		"backcountry": "Ski Touring",
		"skin":        "Skin Track",
		"tour":        "Ski Touring",
		"ski-touring": "Ski Touring",
		"ski-area":    "Ski Areas",
		"snowboard":   "Snowboarder",
		"snowmobile":  "Snowmobile",
		"snowpark":    "Snowpark",
		"snow-pit":    "Snow Pit",

		// Hiking and trails
		"trailhead":  "Trailhead",
		"trail":      "Trailhead",
		"hike":       "Hike",
		"hiking":     "Hike",
		"backpack":   "Backpacker",
		"backpacker": "Backpacker",
		"mountaineer": "Mountaineer",

		// Climbing
		"climbing": "Climbing",
		"climb":    "Climbing",
		"rappel":   "Rappel",
		"cave":     "Cave",
		"caving":   "Caving",

		// Summits and terrain
		"summit":     "Summit",
		"peak":       "Summit",
		"triangle-u": "Summit",
		"mountain":   "Summit",
		"top":        "Summit",
		"cornice":    "Cornice",
		"couloir":    "Couloir",
		"slide-path": "Slide Path",
		"steep":      "Steep Trail",
		"log":        "Log Obstacle",

		// Infrastructure and barriers
		"barrier":      "Barrier",
		"road-barrier": "Road Barrier",
		"gate":         "Gate",
		"closed-gate":  "Closed Gate",
		"open-gate":    "Open Gate",
		"footbridge":   "Footbridge",
		"bridge":       "Footbridge",
		"crossing":     "Crossing",

		// Facilities and amenities
		"fuel":         "Fuel",
		"gas":          "Fuel",
		"food":         "Food Source",
		"restaurant":   "Food Source",
		"food-storage": "Food Storage",
		"picnic":       "Picnic Area",
		"shelter":      "Shelter",
		"house":        "House",
		"cabin":        "Cabin",
		"hut":          "Cabin",
		"yurt":         "Cabin",
		"kennels":      "Kennels",
		"visitor":      "Visitor Center",
		"gear":         "Gear",

		// Water activities
		"canoe":       "Canoe",
		"kayak":       "Kayak",
		"raft":        "Raft",
		"rafting":     "Raft",
		"swimming":    "Swimming",
		"swim":        "Swimming",
		"windsurf":    "Windsurfing",
		"hand-launch": "Hand Launch",
		"put-in":      "Put In",
		"take-out":    "Take Out",
		"marina":      "Marina",

		// Observation and views
		"camera":      "Photo",
		"photo":       "Photo",
		"binoculars":  "View",
		"viewpoint":   "View",
		"vista":       "View",
		"overlook":    "View",
		"lookout":     "Lookout",
		"observation": "Observation Towers",
		"tower":       "Observation Towers",
		"webcam":      "Webcam",
		"lighthouse":  "Lighthouses",

		// Wildlife and nature
		"eagle":      "Eagle",
		"bird":       "Eagle",
		"fish":       "Fish",
		"fishing":    "Fish",
		"mushroom":   "Mushroom",
		"wildflower": "Wildflower",
		"flower":     "Wildflower",
		"feeding":    "Feeding Area",
		"dog-sled":   "Dog Sledding",

		// Activities
		"horse":         "Horseback",
		"horseback":     "Horseback",
		"mountain-bike": "Mountain Biking",
		"mtb":           "Mountain Biking",
		"foraging":      "Foraging",
		"surfing":       "Surfing Area",
		"surf":          "Surfing Area",
		"hang-gliding":  "Hang Gliding",

		// Miscellaneous
		"access":       "Access Point",
		"access-point": "Access Point",
		"emergency":    "Emergency Phone",
		"phone":        "Emergency Phone",
		"ruins":        "Ruins",
		"stock-tank":   "Stock Tank",
		"washout":      "Washout",
		"sasquatch":    "Sasquatch",
		"bigfoot":      "Sasquatch",
	}
}

// DefaultKeywordMap returns keyword entries in priority order. Earlier
// entries win ties, so more specific concepts come before broad ones.
func DefaultKeywordMap() []KeywordEntry {
	return []KeywordEntry{
		// Camping
		{Icon: "Campsite", Keywords: []string{"camp", "camping"}},
		{Icon: "Camp Area", Keywords: []string{"camp area", "camping area"}},
		{Icon: "Camp Backcountry", Keywords: []string{"backcountry camp", "bivy", "bivouac"}},
		{Icon: "Campground", Keywords: []string{"campground", "established camp"}},
		// Water
		{Icon: "Water Source", Keywords: []string{"water", "spring", "refill", "creek", "stream"}},
		{Icon: "Waterfall", Keywords: []string{"waterfall", "falls"}},
		{Icon: "Hot Spring", Keywords: []string{"hot spring", "thermal"}},
		{Icon: "Potable Water", Keywords: []string{"potable", "drinking water"}},
		{Icon: "Water Crossing", Keywords: []string{"water crossing", "ford"}},
		// Transportation
		{Icon: "Parking", Keywords: []string{"car", "parking", "lot", "vehicle"}},
		{Icon: "Trailhead", Keywords: []string{"trailhead", "trail head", "th"}},
		{Icon: "4x4", Keywords: []string{"4x4", "four wheel"}},
		{Icon: "ATV", Keywords: []string{"atv", "quad"}},
		// Winter
		{Icon: "XC Skiing", Keywords: []string{"ski", "skin", "tour", "uptrack", "skiing", "xc"}},
		{Icon: "Ski Touring", Keywords: []string{"ski touring", "backcountry ski"}},
		{Icon: "Ski", Keywords: []string{"ski", "skiing"}},
		{Icon: "Snowboarder", Keywords: []string{"snowboard", "boarding"}},
		// Hiking
		{Icon: "Hike", Keywords: []string{"hike", "hiking"}},
		{Icon: "Backpacker", Keywords: []string{"backpack", "backpacking"}},
		{Icon: "Mountaineer", Keywords: []string{"mountaineer", "alpinist"}},
		// Terrain
		{Icon: "Summit", Keywords: []string{"summit", "peak", "top", "mt"}},
		{Icon: "Cave", Keywords: []string{"cave", "cavern"}},
		// Hazards
		{Icon: "Hazard", Keywords: []string{"danger", "avy", "avalanche", "slide", "caution", "warning"}},
		{Icon: "Barrier", Keywords: []string{"barrier", "closed"}},
		// Observation
		{Icon: "Photo", Keywords: []string{"camera", "photo"}},
		{Icon: "View", Keywords: []string{"view", "viewpoint", "vista", "overlook", "scenic"}},
		{Icon: "Lookout", Keywords: []string{"lookout", "observation"}},
		// Facilities
		{Icon: "Cabin", Keywords: []string{"cabin", "hut", "yurt"}},
		{Icon: "Shelter", Keywords: []string{"shelter", "refuge"}},
		{Icon: "Food Source", Keywords: []string{"food", "restaurant", "aid station"}},
		{Icon: "Emergency Phone", Keywords: []string{"emergency", "phone", "sos"}},
	}
}

// DefaultOnxIconMap maps onX icons back to CalTopo marker symbols for the
// reverse conversion. Icons without an entry fall back to DefaultSymbol.
func DefaultOnxIconMap() map[string]string {
	return map[string]string{
		"Location": "point",
		"Hazard":   "danger",
		"Barrier":  "danger",
		// Vehicles and access
		"Parking":   "automobile",
		"Trailhead": "circle-p",
		"4x4":       "automobile",
		"ATV":       "automobile",
		// Water. CalTopo's symbol set differs from onX; the stream
		// crossing repair symbol is the closest widely supported one.
		"Water Source":  "repair-streamcrossing",
		"Waterfall":     "repair-streamcrossing",
		"Hot Spring":    "repair-streamcrossing",
		"Potable Water": "repair-streamcrossing",
		// Camping
		"Campsite":         "camping",
		"Camp Backcountry": "camping",
		"Campground":       "camping",
		// Terrain and structures
		"Summit":  "peak",
		"Cabin":   "hut",
		"Shelter": "hut",
		"House":   "hut",
		// Camera and star are absent from CalTopo exports; flag-1 is a
		// safe non-default stand-in.
		"Photo": "flag-1",
		"View":  "flag-1",
		// Winter
		"XC Skiing":   "snowboarding",
		"Ski":         "snowboarding",
		"Snowboarder": "snowboarding",
		// Activities
		"Climbing":  "climbing-2",
		"Horseback": "point",
		"Cave":      "cave",
	}
}
