package taxonomy

import "github.com/viant/emergencykb/schema"

// Builtin returns the hand-authored fallback knowledge base.
// The returned slice is fresh on every call.
func Builtin() []schema.Document {
	entries := []struct{ category, title, content string }{
		{"earthquake", "During Earthquake Safety", "Drop, Cover, and Hold On. Drop to your hands and knees, take cover under a sturdy desk or table, and hold on to your shelter. If no table is available, cover your head and neck with your arms. Stay away from windows, mirrors, and heavy objects that could fall."},
		{"earthquake", "After Earthquake Safety", "Check for injuries and provide first aid. Check for hazards like gas leaks, electrical damage, and structural damage. Do not use elevators. Be prepared for aftershocks. Stay out of damaged buildings."},
		{"flood", "Flood Safety Rules", "Never drive through flooded roads. Just 6 inches of moving water can knock you down, and 12 inches can carry away a vehicle. Turn Around, Don't Drown. Move to higher ground immediately."},
		{"flood", "Flash Flood Response", "If caught in a flash flood while driving, abandon your vehicle immediately and move to higher ground. If trapped in a building, go to the highest floor but not the attic as you may become trapped by rising water."},
		{"first_aid", "Severe Bleeding Control", "Apply direct pressure to the wound with a clean cloth. If blood soaks through, add more layers without removing the first. Elevate the injured area above the heart if possible. Apply pressure to pressure points if bleeding doesn't stop."},
		{"first_aid", "Shock Treatment", "Have the person lie down with feet elevated 8-12 inches unless head, neck, or back injury is suspected. Keep person warm with blankets. Do not give food or water. Monitor breathing and pulse. Get medical help immediately."},
		{"hurricane", "Hurricane Evacuation", "Evacuate immediately if ordered by authorities. Follow designated evacuation routes. Do not take shortcuts as they may be blocked. If you cannot evacuate, find a safe room away from windows on the lowest floor of a sturdy building."},
		{"wildfire", "Wildfire Evacuation", "Evacuate early when advised. Have multiple escape routes planned. Keep your vehicle fueled and ready. If trapped by wildfire, call 911 and find a body of water or cleared area. Lie face down and cover yourself with wet clothing or soil."},
		{"region_specific", "Monsoon Safety Sri Lanka", "During monsoon season in Sri Lanka, avoid traveling through flood-prone areas like Kelani Valley and Gampaha. Monitor weather alerts from the Department of Meteorology. Prepare for power outages by keeping charged devices and backup power sources."},
		{"region_specific", "Landslide Warning Signs Sri Lanka", "In hilly areas like Kandy, Nuwara Eliya, and Ratnapura, watch for landslide warning signs: cracks in ground, tilting trees, sudden changes in water flow. The National Building Research Organisation provides landslide risk maps for Sri Lankan areas."},
		{"communication", "Emergency Communication", "Keep battery-powered or hand-crank radio for emergency updates. Text messages often work when voice calls don't. Register with Red Cross Safe and Well website. Have an out-of-state contact as a family communication hub."},
	}
	docs := make([]schema.Document, len(entries))
	for i, e := range entries {
		docs[i] = schema.Document{
			Category: e.category,
			Title:    e.title,
			Content:  e.content,
			Source:   schema.SourceBuiltin,
			ChunkID:  i,
		}
	}
	return docs
}
