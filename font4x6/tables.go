package font4x6

var modernTable = map[rune]string{
	' ': "000000",
	'!': "444040",
	'"': "AA0000",
	'#': "AEAEA0",
	'%': "A248A0",
	'&': "4A4A60",
	'(': "248420",
	')': "842480",
	'*': "0A4A00",
	'+': "04E400",
	',': "000048",
	'-': "00E000",
	'.': "000040",
	'/': "224880",
	'0': "4AAA40",
	'1': "4C44E0",
	'2': "C248E0",
	'3': "C242C0",
	'4': "AAE220",
	'5': "E8C2C0",
	'6': "68CA40",
	'7': "E22440",
	'8': "4A4A40",
	'9': "4A62C0",
	':': "040400",
	';': "040448",
	'<': "024200",
	'=': "0E0E00",
	'>': "084800",
	'?': "C24040",
	'@': "4AE860",
	'A': "4AEAA0",
	'B': "CACAC0",
	'C': "688860",
	'D': "CAAAC0",
	'E': "E8C8E0",
	'F': "E8C880",
	'G': "68AA60",
	'H': "AAEAA0",
	'I': "E444E0",
	'J': "222A40",
	'K': "AACAA0",
	'L': "8888E0",
	'M': "AEEAA0",
	'N': "CAAAA0",
	'O': "4AAA40",
	'P': "CAC880",
	'Q': "4AAA62",
	'R': "CACAA0",
	'S': "6842C0",
	'T': "E44440",
	'U': "AAAA60",
	'V': "AAAA40",
	'W': "AAEEA0",
	'X': "AA4AA0",
	'Y': "AA4440",
	'Z': "E248E0",
	'[': "C888C0",
	']': "C444C0",
	'_': "0000E0",
	'a': "06AA60",
	'b': "88CAC0",
	'c': "068860",
	'd': "226A60",
	'e': "04AC60",
	'f': "24E440",
	'g': "06A62C",
	'h': "88CAA0",
	'i': "404440",
	'j': "20222C",
	'k': "88ACA0",
	'l': "C444E0",
	'm': "0CEAA0",
	'n': "0CAAA0",
	'o': "04AA40",
	'p': "0CAAC8",
	'q': "06AA62",
	'r': "068880",
	's': "06C2C0",
	't': "4E4460",
	'u': "0AAA60",
	'v': "0AAA40",
	'w': "0AAEA0",
	'x': "0A44A0",
	'y': "0AA62C",
	'z': "0E48E0",
	'|': "444440",
	'°': "4A4000",
	'♪': "64CC00",

	'\'': "440000",
}

// retroTable only carries the squared shapes.
var retroTable = map[rune]string{
	'0': "EAAAE0",
	'1': "4C44E0",
	'2': "E2E8E0",
	'3': "E262E0",
	'4': "AAE220",
	'5': "E8E2E0",
	'6': "E8EAE0",
	'7': "E22220",
	'8': "EAEAE0",
	'9': "EAE2E0",
	'A': "EAEAA0",
	'B': "CAEAC0",
	'C': "E888E0",
	'D': "CAAAC0",
	'E': "E8E8E0",
	'F': "E8E880",
	'G': "E8AAE0",
	'H': "AAEAA0",
	'I': "E444E0",
	'J': "222AE0",
	'K': "AACAA0",
	'L': "8888E0",
	'M': "AEAAA0",
	'N': "EAAAA0",
	'O': "EAAAE0",
	'P': "EAE880",
	'Q': "EAAAE2",
	'R': "EAECA0",
	'S': "E8E2E0",
	'T': "E44440",
	'U': "AAAAE0",
	'V': "AAAA40",
	'W': "AAEEA0",
	'X': "AA4AA0",
	'Y': "AAE440",
	'Z': "E248E0",
}

var iconTable = map[rune]string{
	'p': "8CEC80", // play
	'a': "AAAAA0", // pause
	's': "0EEE00", // stop
	'v': "26EE62", // speaker
	'n': "64CC00", // note
	'h': "AEE400", // heart
	'b': "A4E4A0", // brightness
	'c': "4ABA40", // clock
	'u': "4E4440", // up
	'd': "444E40", // down
	'l': "24E420", // left
	'r': "84E480", // right
	'*': "0A4A00", // star
}
