package lexicon

// Tier identifies one severity bucket of the phrase dataset.
type Tier string

const (
	TierExtreme  Tier = "extreme"
	TierHigh     Tier = "high"
	TierModerate Tier = "moderate"
	TierSpam     Tier = "spam"
)

// PhraseList couples a tier with its phrases. Additional lists (other
// languages, site-specific terms) are appended at construction time, so
// extending coverage never requires a code change.
type PhraseList struct {
	Tier    Tier
	Phrases []string
}

// Built-in dataset: English plus Romanized Hindi and Devanagari, as
// observed in production traffic.
var builtinLists = []PhraseList{
	{Tier: TierExtreme, Phrases: []string{
		// Direct violence / death wishes
		"kill yourself", "kys", "go die", "drop dead", "i will kill you",
		"i will hurt you", "burn in hell", "hang yourself", "shoot yourself",
		"i hope you die", "you deserve to die", "lynch you", "execute you",
		// Severe sexual abuse terms
		"rape you", "rapist", "molest you", "pedophile", "sex slave",
		// Explicit threats
		"i will find you", "i know where you live", "i will track you", "you are dead",
		// Hindi, extreme sexual or violent abuse
		"madarchod", "behenchod", "gand mar dunga", "jaan se maar dunga", "maar dunga",
		"tera rape karunga", "bhosdike", "randi ke bachhe", "maa ki chut", "behen ki chut",
		"chut ka bachha", "gaand faad dunga", "tera khoon kar dunga", "zinda jala dunga", "latka dunga",
		// Hindi threats
		"dekh lunga tujhe", "ghar aa ja", "bahar mil", "dekh lunga baad mein",
		"tera game khatam", "teri vaat laga dunga",
	}},
	{Tier: TierHigh, Phrases: []string{
		// Strong profanity
		"fuck you", "motherfucker", "piece of shit", "dumbass", "bitch", "asshole",
		"bastard", "cunt", "slut", "whore", "retard", "retarded", "scumbag",
		"dipshit", "prick", "garbage human",
		// Aggressive harassment
		"you are worthless", "waste of oxygen", "nobody likes you", "you are useless",
		"no one cares about you", "you are pathetic", "you are disgusting",
		"shut up idiot", "attention seeker", "trash human",
		// Hindi strong insults
		"chutia", "chutiya", "chutiye", "haramkhor", "haraami", "kamina", "nalayak",
		"bewakoof", "pagal hai kya", "saale", "kutte", "kamine", "gandu", "bakchod",
		"bakchodi", "jhantu", "tatti insaan", "ghatiya insaan", "gawar", "bhikari",
	}},
	{Tier: TierModerate, Phrases: []string{
		// Mild profanity
		"damn you", "screw you", "shut up", "bloody idiot", "moron", "jerk", "creep",
		// Passive aggressive toxicity
		"nobody asked", "this is garbage", "you are embarrassing",
		"learn something first", "this is pathetic", "stop talking", "go away",
		// Slurs kept from the legacy hate list
		"nigga", "nigger", "faggot", "tranny", "dyke", "kike", "chink", "wetback",
		// Hindi mild insults / passive aggressive
		"faltu", "bekar", "bakwas", "chup ho ja", "dimag kharab hai", "sharam karo",
		"kuch nahi aata", "nikal yahan se", "faltu aadmi", "buddhu", "ullu",
		// Devanagari
		"मादरचोद", "चूतिया", "गांडू", "हरामी", "भोसड़ीके", "रण्डी",
	}},
	{Tier: TierSpam, Phrases: []string{
		"buy now", "click here", "limited offer", "free money", "earn cash fast",
		"crypto giveaway", "investment opportunity", "double your income",
		"100 percent profit", "work from home and earn", "dm me for offer",
		"telegram link", "whatsapp me", "exclusive deal",
		"contact me privately", "send details in dm", "urgent response needed",
		"act immediately",
		// Hindi spam
		"paise kamao ghar baithe", "free recharge", "investment scheme",
		"crypto paisa double", "telegram join karo", "whatsapp karo",
		"dm karo details ke liye", "jaldi karo offer limited",
	}},
}

// BuiltinLists returns a copy of the built-in dataset so callers can
// inspect or extend it without mutating package state.
func BuiltinLists() []PhraseList {
	out := make([]PhraseList, len(builtinLists))
	for i, l := range builtinLists {
		phrases := make([]string, len(l.Phrases))
		copy(phrases, l.Phrases)
		out[i] = PhraseList{Tier: l.Tier, Phrases: phrases}
	}
	return out
}
