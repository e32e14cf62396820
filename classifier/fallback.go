package classifier

// Fallback model: a small English-only distillation compiled into the
// binary so moderation keeps a classifier signal even when the
// multilingual weights file is missing or unreadable. Weights follow
// the same hashed logistic layout as the exported file.
func FallbackModel() *Model {
	m, err := NewModel(fallbackWeights)
	if err != nil {
		// The table below is static; this cannot fail at runtime.
		panic(err)
	}
	return m
}

var fallbackWeights = WeightsFile{
	Name:     "toxic-distill-en-fallback",
	Features: 4096,
	Labels: map[string]LabelHead{
		LabelToxic: {
			Bias: -4.0,
			Tokens: map[string]float64{
				"fuck": 6.2, "fucking": 6.0, "shit": 5.1, "bitch": 5.8,
				"asshole": 5.9, "bastard": 5.2, "idiot": 4.6, "stupid": 4.3,
				"moron": 4.7, "dumb": 3.9, "loser": 4.1, "trash": 3.4,
				"pathetic": 3.8, "worthless": 4.4, "ugly": 3.2, "hate": 3.1,
				"cunt": 6.1, "dick": 4.8, "scumbag": 5.0, "garbage": 3.0,
			},
		},
		LabelSevereToxic: {
			Bias: -5.0,
			Tokens: map[string]float64{
				"kill": 4.2, "die": 3.8, "kys": 7.5, "rape": 6.8,
				"murder": 4.5, "cunt": 5.4, "fuck": 3.6, "motherfucker": 6.2,
				"rapist": 6.4, "pedophile": 6.0,
			},
		},
		LabelObscene: {
			Bias: -4.2,
			Tokens: map[string]float64{
				"fuck": 6.0, "fucking": 5.8, "shit": 5.4, "dick": 5.5,
				"pussy": 5.9, "cock": 5.3, "porn": 5.0, "anal": 4.8,
				"cunt": 5.9, "whore": 5.2, "slut": 5.3, "xxx": 4.4,
			},
		},
		LabelThreat: {
			Bias: -5.2,
			Tokens: map[string]float64{
				"kill": 5.8, "die": 4.6, "hurt": 4.2, "find": 2.1,
				"hang": 4.4, "shoot": 4.9, "stab": 5.3, "burn": 4.0,
				"dead": 4.3, "destroy": 3.2, "yourself": 2.4, "you": 0.8,
				"execute": 4.5, "lynch": 5.6,
			},
		},
		LabelInsult: {
			Bias: -4.1,
			Tokens: map[string]float64{
				"idiot": 5.5, "stupid": 5.1, "moron": 5.6, "loser": 5.0,
				"clown": 4.4, "pathetic": 4.7, "dumbass": 5.8, "fool": 4.2,
				"bitch": 5.2, "asshole": 5.4, "worthless": 4.9, "retard": 6.0,
				"retarded": 5.9, "creep": 3.9, "jerk": 4.1,
			},
		},
		LabelIdentityHate: {
			Bias: -5.5,
			Tokens: map[string]float64{
				"nigger": 8.0, "nigga": 6.8, "faggot": 7.8, "kike": 7.6,
				"chink": 7.4, "tranny": 7.0, "dyke": 6.6, "wetback": 7.2,
			},
		},
	},
}
