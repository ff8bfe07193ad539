package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestBucket(t *testing.T) {
	tests := []struct {
		score float64
		want  Level
	}{
		{1, Acceptable},
		{2, Acceptable},
		{2.01, Low},
		{4, Low},
		{4.5, Medium},
		{6, Medium},
		{6.1, High},
		{7, High},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Bucket(tt.score), "score %v", tt.score)
	}
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "medium", Medium.String())
	assert.Equal(t, "level(9)", Level(9).String())
	assert.True(t, High.Valid())
	assert.False(t, Level(0).Valid())
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Acceptable - No action required", Label(Acceptable, language.English))
	assert.Equal(t, "Risiko Tinggi - Investigasi dan perubahan diperlukan dengan segera", Label(High, language.Indonesian))
	assert.Empty(t, Label(Level(5), language.English))
}

func TestLabel_EveryLevelTranslated(t *testing.T) {
	for l := Acceptable; l <= High; l++ {
		en := Label(l, language.English)
		id := Label(l, language.Indonesian)
		assert.NotEmpty(t, en)
		assert.NotEqual(t, en, id, "level %s", l)
	}
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		prefs []string
		want  language.Tag
	}{
		{nil, language.English},
		{[]string{"id"}, language.Indonesian},
		{[]string{"id-ID"}, language.Indonesian},
		{[]string{"fr"}, language.English},
		{[]string{"fr-FR,id;q=0.8,en;q=0.5"}, language.Indonesian},
		{[]string{"not a tag!!", "id"}, language.Indonesian},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchLanguage(tt.prefs...), "prefs %v", tt.prefs)
	}
}

func TestNoPoseMessage(t *testing.T) {
	assert.Equal(t, "Error: Could not detect pose in video. Please ensure person is clearly visible.", NoPoseMessage(language.English))
	assert.Contains(t, NoPoseMessage(language.Indonesian), "Tidak dapat mendeteksi pose")
}
