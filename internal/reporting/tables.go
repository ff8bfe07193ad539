package reporting

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/selarassehat/rula/internal/rula"
)

// FormatTables prints the three RULA lookup tables.
func FormatTables() string {
	var b strings.Builder

	b.WriteString("Table A (rows: upper arm, columns: lower arm)\n")
	for wrist := 1; wrist <= rula.MaxWristScore; wrist++ {
		fmt.Fprintf(&b, "\nwrist %d\n", wrist)
		writeGrid(&b, "upper\\lower", rula.TableA(wrist))
	}

	b.WriteString("\nTable B (rows: neck, columns: trunk)\n")
	for _, legs := range []int{1, 2} {
		fmt.Fprintf(&b, "\nlegs %d\n", legs)
		writeGrid(&b, "neck\\trunk", rula.TableB(legs))
	}

	b.WriteString("\nTable C (rows: score A, columns: score B)\n\n")
	writeGrid(&b, "A\\B", rula.TableC())
	return b.String()
}

// writeGrid writes a 1-indexed grid with row and column numbers.
func writeGrid(b *strings.Builder, corner string, grid [][]int) {
	if len(grid) == 0 {
		return
	}
	header := []string{corner}
	for c := range grid[0] {
		header = append(header, strconv.Itoa(c+1))
	}
	rows := make([][]string, len(grid))
	for r, cells := range grid {
		row := []string{strconv.Itoa(r + 1)}
		for _, v := range cells {
			row = append(row, strconv.Itoa(v))
		}
		rows[r] = row
	}
	writeTable(b, header, rows)
}
