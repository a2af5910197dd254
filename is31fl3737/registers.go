package is31fl3737

// I²C addresses selected by the ADDR pin.
const (
	AddrGND uint16 = 0x50
	AddrSCL uint16 = 0x55
	AddrSDA uint16 = 0x5A
	AddrVCC uint16 = 0x5F
)

// Command registers, reachable from every page.
const (
	regCommand byte = 0xFD // Page select, requires unlock
	regUnlock  byte = 0xFE // Command register write lock
	unlockKey  byte = 0xC5
)

// Pages selected through regCommand.
const (
	PageLEDControl byte = 0x00
	PagePWM        byte = 0x01
	PageAutoBreath byte = 0x02
	PageFunction   byte = 0x03
)

// Function page registers.
const (
	regConfig        byte = 0x00
	regGlobalCurrent byte = 0x01
	regReset         byte = 0x11 // Reading resets every register to its default

	configSSD byte = 0x01 // Software shutdown disabled (normal operation)
)

// LED control page holds one on/off bit per LED in 24 registers.
const (
	ledControlFirst byte = 0x00
	ledControlCount      = 0x18
)

// Matrix geometry.
const (
	Width  = 12 // CS1-CS12
	Height = 12 // SW1-SW12

	// RegisterStride is the PWM register distance between two SW rows.
	RegisterStride = 16
	// PWMRegisters is the size of the PWM register image.
	PWMRegisters = Height * RegisterStride
	// ChunkSize bounds a single auto-increment burst write.
	ChunkSize = 64
)

// DefaultGlobalCurrent is the global current applied when no Opts are given.
const DefaultGlobalCurrent = 128
