package rula

// Table dimensions. Keys are 1-based; the arrays below are indexed key-1.
const (
	tableAWrists     = 4
	tableAUpperArms  = 6
	tableALowerArms  = 3
	tableBLegs       = 2
	tableBNecks      = 6
	tableBTrunks     = 6
	tableCScoreARows = 8
	tableCScoreBCols = 7
)

// tableA is indexed [wrist][upper arm][lower arm].
var tableA = [tableAWrists][tableAUpperArms][tableALowerArms]int{
	{ // wrist 1
		{1, 2, 2},
		{2, 2, 2},
		{2, 3, 3},
		{2, 3, 3},
		{3, 4, 4},
		{3, 4, 4},
	},
	{ // wrist 2
		{2, 2, 3},
		{2, 2, 3},
		{3, 3, 3},
		{3, 3, 4},
		{4, 4, 4},
		{4, 4, 4},
	},
	{ // wrist 3
		{2, 3, 3},
		{3, 3, 3},
		{3, 4, 4},
		{4, 4, 4},
		{4, 4, 5},
		{4, 4, 5},
	},
	{ // wrist 4
		{3, 3, 4},
		{3, 3, 4},
		{3, 4, 4},
		{4, 4, 4},
		{4, 4, 5},
		{4, 4, 5},
	},
}

// tableB is indexed [legs][neck][trunk].
var tableB = [tableBLegs][tableBNecks][tableBTrunks]int{
	{ // legs supported
		{1, 2, 3, 5, 6, 7},
		{2, 2, 4, 5, 6, 7},
		{3, 3, 4, 5, 6, 7},
		{5, 5, 6, 7, 7, 7},
		{7, 7, 7, 7, 7, 8},
		{8, 8, 8, 8, 8, 8},
	},
	{ // legs not supported
		{1, 3, 4, 6, 7, 7},
		{2, 3, 5, 6, 7, 7},
		{3, 4, 5, 6, 7, 7},
		{5, 6, 7, 7, 7, 8},
		{7, 7, 7, 8, 8, 8},
		{8, 8, 8, 8, 8, 8},
	},
}

// tableC is indexed [score A][score B]. Score B has no eighth column; a key
// of 8 falls through to the lookup default.
var tableC = [tableCScoreARows][tableCScoreBCols]int{
	{1, 2, 3, 3, 4, 5, 5},
	{2, 2, 3, 4, 4, 5, 5},
	{3, 3, 3, 4, 4, 6, 6},
	{3, 3, 3, 4, 5, 6, 6},
	{4, 4, 4, 5, 6, 7, 7},
	{4, 4, 5, 6, 6, 7, 7},
	{5, 5, 6, 6, 7, 7, 7},
	{5, 5, 6, 7, 7, 7, 7},
}
