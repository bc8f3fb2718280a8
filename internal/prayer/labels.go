package prayer

// Languages the labels are available in.
const (
	LangEnglish = "en"
	LangArabic  = "ar"
)

var arabicNames = map[string]string{
	"Fajr":       "الفجر",
	"Sunrise":    "الشروق",
	"Dhuhr":      "الظهر",
	"Asr":        "العصر",
	"Sunset":     "الغروب",
	"Maghrib":    "المغرب",
	"Isha":       "العشاء",
	"Imsak":      "الإمساك",
	"Midnight":   "منتصف الليل",
	"Firstthird": "الثلث الأول",
	"Lastthird":  "الثلث الأخير",
}

// ShortNames maps prayer names to status-bar abbreviations.
var ShortNames = map[string]string{
	"Fajr":       "F",
	"Sunrise":    "S",
	"Dhuhr":      "D",
	"Asr":        "A",
	"Sunset":     "St",
	"Maghrib":    "M",
	"Isha":       "I",
	"Imsak":      "Im",
	"Midnight":   "Mi",
	"Firstthird": "F3",
	"Lastthird":  "L3",
}

// Icons decorate the six canonical timings on the web page.
var Icons = map[string]string{
	"Fajr":    "🌅",
	"Sunrise": "☀️",
	"Dhuhr":   "🌞",
	"Asr":     "🌤️",
	"Maghrib": "🌆",
	"Isha":    "🌙",
}

// Label returns the display name of a prayer in lang. Unknown languages
// and names fall back to the English name.
func Label(name, lang string) string {
	if lang == LangArabic {
		if ar, ok := arabicNames[name]; ok {
			return ar
		}
	}
	return name
}

// ValidLanguage reports whether lang has labels.
func ValidLanguage(lang string) bool {
	return lang == LangEnglish || lang == LangArabic
}
