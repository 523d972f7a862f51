package app

// amenityLabels is the candidate tag list for hotel photos, grouped by theme.
// Some labels appear in more than one group; DefaultVocabulary drops repeats.
var amenityLabels = [][]string{
	// rooms & room types
	{"room", "view", "bathroom", "bedroom", "suite", "king", "queen", "twin",
		"single", "double", "bed", "couch", "sofa", "studio", "penthouse"},
	// room features & furniture
	{"balcony", "patio", "terrace", "desk", "chair", "lamp", "nightstand",
		"closet", "wardrobe", "safe", "television", "TV", "minibar", "refrigerator",
		"microwave", "coffee", "tea", "curtains", "window", "door", "mirror"},
	// bathroom
	{"shower", "bathtub", "jacuzzi", "toilet", "sink", "hairdryer", "toiletries",
		"amenities", "towels", "steam", "sauna"},
	// bedding & comfort
	{"linens", "pillow", "blanket", "duvet", "comforter", "mattress", "memory foam",
		"pillow-top", "firm", "soft", "plush"},
	// hotel areas
	{"lobby", "reception", "concierge", "entrance", "corridor", "hallway", "elevator",
		"stairs", "lounge", "courtyard", "rooftop"},
	// dining & food
	{"restaurant", "bar", "breakfast", "lunch", "dinner", "brunch", "buffet",
		"à la carte", "menu", "chef", "cuisine", "meal", "room service", "dining",
		"table", "seating"},
	// diets
	{"vegetarian", "vegan", "gluten-free", "organic", "allergen-friendly"},
	// beverages
	{"alcohol", "wine", "beer", "cocktail", "minibar", "water", "beverage", "ice",
		"coffee", "tea"},
	// amenities & facilities
	{"pool", "gym", "spa", "fitness", "business center", "conference", "meeting",
		"banquet", "event", "wedding", "WiFi", "internet", "laundry", "dry cleaning",
		"parking", "valet"},
	// pool types
	{"indoor pool", "outdoor pool", "infinity pool", "heated pool", "lap pool",
		"kiddie pool"},
	// wellness & recreation
	{"hot tub", "sauna", "steam room", "massage", "treatment", "facial", "manicure",
		"pedicure", "weights", "treadmill", "elliptical", "bike", "yoga"},
	// technology
	{"WiFi", "USB", "outlet", "charging", "HDMI", "streaming", "cable", "satellite",
		"premium channels", "Netflix", "smart room", "digital key", "app-controlled",
		"Bluetooth", "speaker", "sound system"},
	// climate
	{"air-conditioning", "heating", "fan", "blackout"},
	// views & locations
	{"ocean", "mountain", "city", "beach", "garden", "waterfront", "lakeside",
		"riverside", "downtown", "suburban", "rural", "urban", "central", "panoramic",
		"scenic", "picturesque"},
	// transportation
	{"airport shuttle", "transportation", "rental", "car", "bicycle", "walking distance",
		"subway", "metro", "bus", "train", "station", "airport", "taxi", "uber", "lyft"},
	// design & style
	{"decor", "modern", "classic", "luxury", "budget", "historic", "contemporary",
		"minimalist", "rustic", "industrial", "tropical", "Mediterranean", "alpine",
		"colonial", "Victorian", "Art Deco"},
	// hotel types
	{"boutique", "chain", "independent", "resort", "motel", "inn", "lodge"},
	// special features
	{"family-friendly", "adults-only", "pet-friendly", "accessible", "handicap",
		"wheelchair", "non-smoking", "smoking", "child-friendly", "kids club"},
	// service
	{"service", "staff", "turndown", "housekeeping", "concierge", "valet",
		"wake-up call", "towel service"},
	// activities & entertainment
	{"playground", "games", "activities", "entertainment", "live music", "DJs",
		"shows", "performances", "nightlife", "clubbing", "dancing", "casino",
		"gambling", "library", "reading area"},
	// water activities
	{"private beach", "cabana", "lounger", "umbrella", "sunbed", "sunscreen",
		"poolside", "diving board", "waterslide", "water sports", "sailing", "surfing",
		"paddleboarding", "kayaking", "jet skiing", "fishing"},
	// sports
	{"golf", "tennis", "basketball", "volleyball", "billiards", "ping pong",
		"foosball", "arcade", "board games"},
	// occasions
	{"honeymoon", "anniversary", "birthday", "celebration"},
	// atmosphere & quality
	{"privacy", "quiet", "noisy", "busy", "secluded", "isolated", "connected",
		"convenience", "cozy", "spacious", "compact", "intimate", "expansive",
		"clean", "fresh", "spotless", "immaculate", "well-maintained", "renovated",
		"updated", "new", "breathtaking", "stunning", "sunset", "sunrise", "fireplace"},
}

// DefaultVocabulary returns the amenity labels with repeats removed, first
// occurrence kept. Each call returns a fresh slice.
func DefaultVocabulary() []string {
	var flat []string
	for _, g := range amenityLabels {
		flat = append(flat, g...)
	}
	return Dedupe(flat)
}

// Dedupe keeps the first occurrence of each label and drops empty ones.
func Dedupe(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
