package retropanel

// Board geometry.
const (
	BoardWidth  = 24 // Logical pixels per board
	BoardHeight = 6
	CharWidth   = 4 // Pixels per character cell
	CharsPerRow = 3 // Character cells per SW half
)

// BoardFor returns the board index that owns the (flipped) column sx.
func BoardFor(sx int) int {
	return sx / BoardWidth
}

// LocalX returns the column of sx within its board.
func LocalX(sx int) int {
	return sx % BoardWidth
}

// LocalToPhysical maps a board-local pixel to the chip's 12×12 matrix.
//
// Characters 0-2 sit on SW1-SW6 at their natural columns. Characters 3-5
// reuse the same CS columns on SW7-SW12.
func LocalToPhysical(lx, ly int) (px, py int) {
	char := lx / CharWidth
	col := lx % CharWidth
	if char < CharsPerRow {
		return char*CharWidth + col, ly
	}
	return (char-CharsPerRow)*CharWidth + col, ly + BoardHeight
}
