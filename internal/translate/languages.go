// ABOUTME: Target languages offered to learners
// ABOUTME: Each language carries its flag, accent color and a greeting
package translate

import "strings"

// Language is a translation target
type Language struct {
	Name     string
	Flag     string
	Color    string
	Greeting string
}

// Languages in picker order
var Languages = []Language{
	{Name: "Spanish", Flag: "🇪🇸", Color: "208", Greeting: "Hola!"},
	{Name: "French", Flag: "🇫🇷", Color: "33", Greeting: "Bonjour!"},
	{Name: "German", Flag: "🇩🇪", Color: "220", Greeting: "Hallo!"},
	{Name: "Italian", Flag: "🇮🇹", Color: "34", Greeting: "Ciao!"},
	{Name: "Japanese", Flag: "🇯🇵", Color: "196", Greeting: "Konnichiwa!"},
	{Name: "Mandarin Chinese", Flag: "🇨🇳", Color: "160", Greeting: "Ni Hao!"},
	{Name: "Korean", Flag: "🇰🇷", Color: "39", Greeting: "Annyeong!"},
	{Name: "Russian", Flag: "🇷🇺", Color: "63", Greeting: "Privet!"},
	{Name: "Hindi", Flag: "🇮🇳", Color: "214", Greeting: "Namaste!"},
}

// LanguageByName finds a language by name, case-insensitively.
// "chinese" and "mandarin" also match Mandarin Chinese.
func LanguageByName(name string) (Language, bool) {
	name = strings.TrimSpace(name)
	for _, lang := range Languages {
		if strings.EqualFold(lang.Name, name) {
			return lang, true
		}
	}

	switch strings.ToLower(name) {
	case "chinese", "mandarin":
		return LanguageByName("Mandarin Chinese")
	}
	return Language{}, false
}

// String returns the flag and name
func (l Language) String() string {
	return l.Flag + " " + l.Name
}
