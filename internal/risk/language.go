package risk

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/selarassehat/rula/internal/posture"
)

// Supported lists the languages with translated text, the first being the
// fallback.
var Supported = []language.Tag{language.English, language.Indonesian}

var matcher = language.NewMatcher(Supported)

// MatchLanguage picks the best supported language for the given preferences.
// Each preference may be a BCP 47 tag or an Accept-Language header value.
func MatchLanguage(prefs ...string) language.Tag {
	var tags []language.Tag
	for _, p := range prefs {
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	_, idx, _ := matcher.Match(tags...)
	return Supported[idx]
}

// Text keys. English text doubles as the message key.
const (
	MsgAcceptable   = "Acceptable - No action required"
	MsgLow          = "Low Risk - Further investigation, change may be needed"
	MsgMedium       = "Medium Risk - Investigation and changes required soon"
	MsgHigh         = "High Risk - Investigation and changes required immediately"
	MsgNoPose       = "Error: Could not detect pose in video. Please ensure person is clearly visible."
	MsgResultsTitle = "RULA Assessment Results"
	MsgAverage      = "Average RULA Score"
	MsgMaximum      = "Maximum RULA Score"
	MsgMinimum      = "Minimum RULA Score"
	MsgRiskLevel    = "Risk Level"
	MsgFrames       = "Frames analysed"
	MsgAdjustments  = "Manual Adjustments"
	MsgAdjustHelp   = "Check boxes that apply to adjust RULA score"
	MsgOriginal     = "Original RULA"
	MsgAdjusted     = "Adjusted RULA"

	MsgShoulderRaised = "Shoulder raised"
	MsgArmAbducted    = "Arm abducted (>20° away from body)"
	MsgMidlineCross   = "Working across midline or out to side"
	MsgWristDeviated  = "Wrist deviated (radial/ulnar)"
	MsgNeckTwisted    = "Neck twisted"
	MsgNeckBent       = "Neck side bent"
	MsgTrunkTwisted   = "Trunk twisted"
	MsgTrunkBent      = "Trunk side bent"

	MsgWristTwist        = "Wrist Twist"
	MsgWristTwistMid     = "Mid-range (default)"
	MsgWristTwistExtreme = "At or near end of range"
	MsgLegs              = "Legs/Feet"
	MsgLegsSupported     = "Supported and balanced"
	MsgLegsNotSupported  = "Not supported"
	MsgMuscle            = "Muscle Use"
	MsgMuscleStatic      = "Static (held >1 min) or repeated (>4x/min)"
	MsgForce             = "Force/Load"
	MsgForceNone         = "None or <2 kg intermittent"
	MsgForceLight        = "2-10 kg intermittent"
	MsgForceHeavy        = "2-10 kg static/repeated, or >10 kg intermittent"
	MsgForceShock        = "Shock or rapid force increase"
)

// FlagMessages are the qualifier label keys in posture.Flags.Values order.
var FlagMessages = [posture.NumFlags]string{
	MsgShoulderRaised,
	MsgArmAbducted,
	MsgMidlineCross,
	MsgWristDeviated,
	MsgNeckTwisted,
	MsgNeckBent,
	MsgTrunkTwisted,
	MsgTrunkBent,
}

// ForceMessages are the force/load option label keys indexed by value.
var ForceMessages = [...]string{
	MsgForceNone,
	MsgForceLight,
	MsgForceHeavy,
	MsgForceShock,
}

var indonesian = map[string]string{
	MsgAcceptable:   "Dapat Diterima - Tidak perlu tindakan",
	MsgLow:          "Risiko Rendah - Perlu investigasi lebih lanjut, perubahan mungkin diperlukan",
	MsgMedium:       "Risiko Sedang - Investigasi dan perubahan diperlukan segera",
	MsgHigh:         "Risiko Tinggi - Investigasi dan perubahan diperlukan dengan segera",
	MsgNoPose:       "Error: Tidak dapat mendeteksi pose dalam video. Pastikan orang terlihat dengan jelas.",
	MsgResultsTitle: "Hasil Penilaian RULA",
	MsgAverage:      "Skor RULA Rata-rata",
	MsgMaximum:      "Skor RULA Maksimum",
	MsgMinimum:      "Skor RULA Minimum",
	MsgRiskLevel:    "Tingkat Risiko",
	MsgFrames:       "Frame dianalisis",
	MsgAdjustments:  "Penyesuaian Manual",
	MsgAdjustHelp:   "Centang kotak yang sesuai untuk menyesuaikan skor RULA",
	MsgOriginal:     "RULA Asli",
	MsgAdjusted:     "RULA Disesuaikan",

	MsgShoulderRaised: "Bahu terangkat",
	MsgArmAbducted:    "Lengan abduksi (>20° dari tubuh)",
	MsgMidlineCross:   "Bekerja melintasi garis tengah atau ke samping",
	MsgWristDeviated:  "Pergelangan tangan menyimpang (radial/ulnar)",
	MsgNeckTwisted:    "Leher berputar",
	MsgNeckBent:       "Leher miring ke samping",
	MsgTrunkTwisted:   "Batang tubuh berputar",
	MsgTrunkBent:      "Batang tubuh miring",

	MsgWristTwist:        "Putaran Pergelangan Tangan",
	MsgWristTwistMid:     "Rentang tengah (default)",
	MsgWristTwistExtreme: "Di atau dekat akhir rentang",
	MsgLegs:              "Kaki/Telapak Kaki",
	MsgLegsSupported:     "Didukung dan seimbang",
	MsgLegsNotSupported:  "Tidak didukung",
	MsgMuscle:            "Penggunaan Otot",
	MsgMuscleStatic:      "Statis (>1 menit) atau berulang (>4x/menit)",
	MsgForce:             "Gaya/Beban",
	MsgForceNone:         "Tidak ada atau <2 kg intermiten",
	MsgForceLight:        "2-10 kg intermiten",
	MsgForceHeavy:        "2-10 kg statis/berulang, atau >10 kg intermiten",
	MsgForceShock:        "Kejutan atau peningkatan gaya cepat",
}

var texts = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range indonesian {
		if err := b.SetString(language.Indonesian, key, msg); err != nil {
			panic(err)
		}
	}
	return b
}

// Printer returns a message printer for tag backed by the translated texts.
// Numbers printed through it use the language's separators.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(texts))
}

var levelKeys = map[Level]string{
	Acceptable: MsgAcceptable,
	Low:        MsgLow,
	Medium:     MsgMedium,
	High:       MsgHigh,
}

// Label returns the recommendation text of a level in the given language.
// An invalid level yields an empty string.
func Label(l Level, tag language.Tag) string {
	key, ok := levelKeys[l]
	if !ok {
		return ""
	}
	return Printer(tag).Sprintf(key)
}

// NoPoseMessage is shown when no frame of an input could be scored.
func NoPoseMessage(tag language.Tag) string {
	return Printer(tag).Sprintf(MsgNoPose)
}
