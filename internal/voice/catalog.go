package voice

import "strings"

// NeutralStyle is the style every profile must support. Unsupported
// emotions fall back to it.
const NeutralStyle = "Neutral"

// Profile describes one synthesizable voice. EmotionMap translates
// canonical emotion tags into the provider's style names.
type Profile struct {
	Name               string
	VoiceID            string
	DisplayName        string
	SupportedLanguages []string
	SupportedStyles    []string
	DefaultLanguage    string
	DefaultStyle       string
	Model              string
	EmotionMap         map[string]string
}

// SupportsStyle reports whether the provider accepts the style for this
// voice.
func (p *Profile) SupportsStyle(style string) bool {
	for _, s := range p.SupportedStyles {
		if strings.EqualFold(s, style) {
			return true
		}
	}
	return false
}

// ResolveStyle maps an emotion tag to a provider style. The second return
// is false when the voice does not support the emotion and the default
// style was substituted.
func (p *Profile) ResolveStyle(emotion string) (string, bool) {
	style := emotion
	if mapped, ok := p.EmotionMap[strings.ToLower(emotion)]; ok {
		style = mapped
	}
	if p.SupportsStyle(style) {
		return style, true
	}
	if p.DefaultStyle != "" {
		return p.DefaultStyle, false
	}
	return NeutralStyle, false
}

var profiles = map[string]*Profile{
	"hyewon": {
		Name:               "Hyewon",
		VoiceID:            "651d3de921570047a83b90",
		DisplayName:        "Hyewon",
		SupportedLanguages: []string{"ko"},
		SupportedStyles:    []string{"Amused", "Angry", "Happy", "Sad", "Shy", "Neutral"},
		DefaultLanguage:    "ko",
		DefaultStyle:       NeutralStyle,
		Model:              "sona_speech_1",
		EmotionMap: map[string]string{
			"neutral": "Neutral",
			"happy":   "Happy",
			"sad":     "Sad",
			"angry":   "Angry",
			"shy":     "Shy",
		},
	},
	"haru": {
		Name:               "Haru",
		VoiceID:            "f4a2a3f41fc82de8616b84",
		DisplayName:        "Haru",
		SupportedLanguages: []string{"ko"},
		SupportedStyles:    []string{"Angry", "Happy", "Sad", "Shy", "Surprised", "Neutral"},
		DefaultLanguage:    "ko",
		DefaultStyle:       NeutralStyle,
		Model:              "sona_speech_1",
		EmotionMap: map[string]string{
			"neutral":   "Neutral",
			"happy":     "Happy",
			"sad":       "Sad",
			"angry":     "Angry",
			"shy":       "Shy",
			"surprised": "Surprised",
		},
	},
	"miya": {
		Name:               "Miya",
		VoiceID:            "ad965de9532e67f8c17d72",
		DisplayName:        "Miya",
		SupportedLanguages: []string{"ko"},
		SupportedStyles:    []string{"Angry", "Happy", "Embarrassed", "Painful", "Sad", "Neutral"},
		DefaultLanguage:    "ko",
		DefaultStyle:       NeutralStyle,
		Model:              "sona_speech_1",
		EmotionMap: map[string]string{
			"neutral":     "Neutral",
			"happy":       "Happy",
			"sad":         "Sad",
			"angry":       "Angry",
			"embarrassed": "Embarrassed",
			"painful":     "Painful",
		},
	},
}

// LookupProfile finds a profile by its catalog name, case-insensitive.
func LookupProfile(name string) (*Profile, bool) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Profiles lists every voice in the catalog.
func Profiles() []*Profile {
	out := make([]*Profile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p)
	}
	return out
}
