// Package keypad describes the 4x4 calculator keypad and its secondary
// layer.
package keypad

import (
	"fmt"
	"strconv"
	"strings"
)

// Rows and Cols are the matrix dimensions.
const (
	Rows = 4
	Cols = 4
)

// Primary is the face of every key, row by row.
var Primary = [Rows][Cols]byte{
	{'1', '2', '3', '+'},
	{'4', '5', '6', '-'},
	{'7', '8', '9', '*'},
	{'.', '0', '=', '/'},
}

// Secondary is what a digit inserts while secondary mode is active, indexed
// by the digit.
var Secondary = [10]string{
	"^",     // 0
	"sin(",  // 1 degrees
	"root(", // 2
	"ln(",   // 3
	"(",     // 4
	")",     // 5
	"pi",    // 6
	"e",     // 7
	":",     // 8
	"s_(",   // 9 radians
}

// Cursor-mode actions, keyed by digit.
const (
	CursorRecall   = '1'
	CursorIntegral = '2'
	CursorVariable = '3'
	CursorLeft     = '4'
	CursorDelete   = '5'
	CursorRight    = '6'
	CursorResult   = '7'
	CursorEstimate = '8'
)

// IntegralTemplate is inserted by CursorIntegral. The cursor is left on its
// '(' so the bounds can be edited by moving left.
const IntegralTemplate = "[0,0]("

// KeyAt returns the key at 0-based row and col.
func KeyAt(row, col int) (byte, bool) {
	if row < 0 || row >= Rows || col < 0 || col >= Cols {
		return 0, false
	}
	return Primary[row][col], true
}

// Locate finds the 0-based position of a key face.
func Locate(key byte) (row, col int, ok bool) {
	for r := range Primary {
		for c := range Primary[r] {
			if Primary[r][c] == key {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// Name builds a key name from 0-based row, col: 0,3 -> "R1C4".
func Name(row, col int) string {
	return fmt.Sprintf("R%dC%d", row+1, col+1)
}

// ParseName parses names like R1C4 (case-insensitive) into 0-based row, col.
func ParseName(name string) (int, int, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if !strings.HasPrefix(name, "R") {
		return 0, 0, false
	}
	c := strings.IndexByte(name, 'C')
	if c < 2 {
		return 0, 0, false
	}
	row, err := strconv.Atoi(name[1:c])
	if err != nil {
		return 0, 0, false
	}
	col, err := strconv.Atoi(name[c+1:])
	if err != nil {
		return 0, 0, false
	}
	row--
	col--
	if _, ok := KeyAt(row, col); !ok {
		return 0, 0, false
	}
	return row, col, true
}

// SecondaryToken returns the text a digit inserts in secondary mode.
func SecondaryToken(key byte) (string, bool) {
	if !IsDigit(key) {
		return "", false
	}
	return Secondary[key-'0'], true
}

// Valid reports whether key is on the keypad.
func Valid(key byte) bool {
	_, _, ok := Locate(key)
	return ok
}

// FromRune maps a typed character to a key. Enter is handled by callers;
// everything not printed on the keypad is rejected.
func FromRune(r rune) (byte, bool) {
	if r > 0x7f {
		return 0, false
	}
	b := byte(r)
	return b, Valid(b)
}

// IsDigit reports whether key is 0-9.
func IsDigit(key byte) bool {
	return key >= '0' && key <= '9'
}

// IsOperator reports whether key is one of the four operator keys.
func IsOperator(key byte) bool {
	return key == '+' || key == '-' || key == '*' || key == '/'
}

// Layout renders the primary face as rows of space-separated keys, for help
// screens.
func Layout() []string {
	out := make([]string, 0, Rows)
	for _, row := range Primary {
		var b strings.Builder
		for i, k := range row {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte(k)
		}
		out = append(out, b.String())
	}
	return out
}
