package rula

// Lookup defaults used when a key falls outside a table.
const (
	DefaultScoreA = 4
	DefaultScoreB = 6
	DefaultGrand  = 7
)

// MaxGrandScore is the highest RULA grand score.
const MaxGrandScore = 7

// maxTableCKey caps Score A and Score B before the Table C lookup.
const maxTableCKey = 8

// ScoreA looks up the arm and wrist posture score. The wrist score selects
// the sub-table (scores above 4 use the fourth), upper and lower arm are
// capped at the table's edges. A wrist twist at end of range adds one.
func ScoreA(upperArm, lowerArm, wrist, wristTwist int) int {
	score := DefaultScoreA
	w := min(wrist, tableAWrists)
	u := min(upperArm, tableAUpperArms)
	l := min(lowerArm, tableALowerArms)
	if w >= 1 && u >= 1 && l >= 1 {
		score = tableA[w-1][u-1][l-1]
	}
	if wristTwist == 2 {
		score++
	}
	return score
}

// ScoreB looks up the neck, trunk and legs posture score. Legs == 1 selects
// the supported table; any other value selects the unsupported one.
func ScoreB(neck, trunk, legs int) int {
	table := &tableB[1]
	if legs == 1 {
		table = &tableB[0]
	}
	n := min(neck, tableBNecks)
	t := min(trunk, tableBTrunks)
	if n < 1 || t < 1 {
		return DefaultScoreB
	}
	return table[n-1][t-1]
}

// GrandScore adds muscle use and force/load to both posture scores and looks
// up Table C. The result never exceeds MaxGrandScore.
func GrandScore(scoreA, scoreB, muscleUse, forceLoad int) int {
	a := min(scoreA+muscleUse+forceLoad, maxTableCKey)
	b := min(scoreB+muscleUse+forceLoad, maxTableCKey)
	grand := DefaultGrand
	if a >= 1 && b >= 1 && a <= tableCScoreARows && b <= tableCScoreBCols {
		grand = tableC[a-1][b-1]
	}
	return min(grand, MaxGrandScore)
}

// Scores is the output of the table stage.
type Scores struct {
	A     int `json:"score_a"`
	B     int `json:"score_b"`
	Grand int `json:"rula_score"`
}

// Combine runs the three table lookups for one set of component scores.
func Combine(c Components, f Factors) Scores {
	a := ScoreA(c.UpperArm, c.LowerArm, c.Wrist, f.WristTwist)
	b := ScoreB(c.Neck, c.Trunk, f.Legs)
	return Scores{A: a, B: b, Grand: GrandScore(a, b, f.MuscleUse, f.ForceLoad)}
}

// TableA returns a copy of the sub-table for the given wrist score, rows by
// upper arm and columns by lower arm.
func TableA(wrist int) [][]int {
	w := max(1, min(wrist, tableAWrists))
	out := make([][]int, tableAUpperArms)
	for i, row := range tableA[w-1] {
		out[i] = append([]int(nil), row[:]...)
	}
	return out
}

// TableB returns a copy of the sub-table for the given legs score, rows by
// neck and columns by trunk.
func TableB(legs int) [][]int {
	src := tableB[1]
	if legs == 1 {
		src = tableB[0]
	}
	out := make([][]int, tableBNecks)
	for i, row := range src {
		out[i] = append([]int(nil), row[:]...)
	}
	return out
}

// TableC returns a copy of Table C, rows by Score A and columns by Score B.
func TableC() [][]int {
	out := make([][]int, tableCScoreARows)
	for i, row := range tableC {
		out[i] = append([]int(nil), row[:]...)
	}
	return out
}
