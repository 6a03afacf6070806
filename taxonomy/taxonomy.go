// Package taxonomy defines the fixed emergency category taxonomy and the builtin fallback knowledge.
package taxonomy

// Unclassified is the category reported when classification fails.
const Unclassified = "emergency_guide"

// Category is a taxonomy entry.
type Category struct {
	Key         string
	Name        string
	Description string
	Keywords    []string
}

// Taxonomy is an ordered category list; order decides classification ties.
type Taxonomy []Category

// Keys returns category keys in taxonomy order.
func (t Taxonomy) Keys() []string {
	keys := make([]string, len(t))
	for i, c := range t {
		keys[i] = c.Key
	}
	return keys
}

// Descriptions returns category descriptions in taxonomy order.
func (t Taxonomy) Descriptions() []string {
	out := make([]string, len(t))
	for i, c := range t {
		out[i] = c.Description
	}
	return out
}

// Lookup returns the category for key.
func (t Taxonomy) Lookup(key string) (Category, bool) {
	for _, c := range t {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// DisplayName returns the category name, or key itself when unknown.
func (t Taxonomy) DisplayName(key string) string {
	if c, ok := t.Lookup(key); ok {
		return c.Name
	}
	return key
}

// Default returns the emergency taxonomy.
func Default() Taxonomy {
	return Taxonomy{
		{
			Key:         "earthquake",
			Name:        "Earthquake Safety",
			Description: "Earthquake preparedness, response during seismic activity, drop cover hold procedures, aftershock safety, building damage assessment, post-earthquake recovery, seismic hazards, ground shaking, structural collapse prevention",
			Keywords:    []string{"earthquake", "seismic", "tremor", "quake", "ground shaking", "aftershock", "drop cover hold", "building collapse"},
		},
		{
			Key:         "flood",
			Name:        "Flood Response",
			Description: "Flood safety procedures, water evacuation, flash flood response, driving in flooded areas, water damage cleanup, flood preparedness, rising water levels, water rescue, turn around don't drown",
			Keywords:    []string{"flood", "water", "inundation", "overflow", "flash flood", "rising water", "evacuate", "turn around don't drown"},
		},
		{
			Key:         "hurricane",
			Name:        "Hurricane & Storm Safety",
			Description: "Hurricane preparedness, tropical storm safety, high wind protection, storm surge evacuation, hurricane eye safety, boarding windows, evacuation routes, shelter procedures, typhoon cyclone response",
			Keywords:    []string{"hurricane", "typhoon", "cyclone", "storm", "wind", "storm surge", "evacuation", "shelter", "tropical storm"},
		},
		{
			Key:         "wildfire",
			Name:        "Wildfire Emergency",
			Description: "Wildfire evacuation procedures, fire safety, smoke protection, defensible space, fire-resistant landscaping, escape routes, firefighting, forest fire, brush fire, fire shelter",
			Keywords:    []string{"wildfire", "fire", "forest fire", "brush fire", "evacuation", "smoke", "defensible space", "fire safety"},
		},
		{
			Key:         "tornado",
			Name:        "Tornado Safety",
			Description: "Tornado shelter procedures, severe weather response, basement safety, mobile home evacuation, tornado warning signs, safe rooms, storm cellars, debris protection, severe thunderstorms",
			Keywords:    []string{"tornado", "twister", "severe weather", "shelter", "basement", "safe room", "storm cellar", "debris"},
		},
		{
			Key:         "first_aid",
			Name:        "Medical Emergency & First Aid",
			Description: "First aid procedures, medical emergency response, bleeding control, shock treatment, CPR, wound care, emergency medical treatment, injury assessment, life-saving techniques, medical supplies",
			Keywords:    []string{"first aid", "medical", "bleeding", "wound", "injury", "CPR", "shock", "emergency treatment", "medical supplies"},
		},
		{
			Key:         "communication",
			Name:        "Emergency Communication",
			Description: "Emergency communication systems, radio procedures, emergency contacts, alert systems, communication during disasters, emergency broadcasting, family communication plans, emergency signals",
			Keywords:    []string{"communication", "radio", "emergency contact", "alert", "broadcasting", "signals", "family plan"},
		},
		{
			Key:         "evacuation",
			Name:        "Evacuation Procedures",
			Description: "Evacuation planning, escape routes, shelter procedures, emergency exits, transportation during emergencies, evacuation orders, safe zones, temporary shelters, relocation procedures",
			Keywords:    []string{"evacuation", "escape", "exit", "shelter", "safe zone", "relocation", "emergency transport"},
		},
		{
			Key:         "water_safety",
			Name:        "Water Safety & Purification",
			Description: "Water purification methods, emergency water sources, water safety during disasters, drinking water contamination, water storage, water treatment, waterborne diseases, emergency hydration",
			Keywords:    []string{"water purification", "drinking water", "water safety", "contamination", "water storage", "emergency water"},
		},
		{
			Key:         "region_specific",
			Name:        "Sri Lanka Emergency Response",
			Description: "Sri Lanka specific emergency procedures, monsoon safety, landslide warnings, tsunami response, local emergency services, tropical climate disasters, regional emergency protocols, local hazards",
			Keywords:    []string{"sri lanka", "monsoon", "landslide", "tsunami", "tropical", "local emergency", "regional hazards"},
		},
	}
}
