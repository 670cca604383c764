package si4703

const (
	// registers 0..1 are read-only
	DEVICEID = iota
	CHIPID
	// registers 2..7 are read-write
	POWERCFG
	CHANNEL
	SYSCONFIG1
	SYSCONFIG2
	SYSCONFIG3
	TEST1

	// registers 8, 9 are reserved and never written; a..f are read-only
	TEST2
	BOOTCONFIG
	STATUSRSSI
	READCHAN
	RDSA
	RDSB
	RDSC
	RDSD
)

// NumRegisters is the size of the chip's register file.
const NumRegisters = 16

// Address is the fixed 2-wire address of the Si4702/03.
const Address = 0x10

// first and last register sent by a write; the chip starts latching at
// POWERCFG without being told.
const (
	firstWritable = POWERCFG
	lastWritable  = TEST1
	writeLen      = (lastWritable - firstWritable + 1) * 2
	readLen       = NumRegisters * 2
	// reads stream from STATUSRSSI, wrap after RDSD
	readStart = STATUSRSSI
)

var registerNames = [NumRegisters]string{
	"DEVICEID",
	"CHIPID",
	"POWERCFG",
	"CHANNEL",
	"SYSCONFIG1",
	"SYSCONFIG2",
	"SYSCONFIG3",
	"TEST1",
	"TEST2",
	"BOOTCONFIG",
	"STATUSRSSI",
	"READCHAN",
	"RDSA",
	"RDSB",
	"RDSC",
	"RDSD",
}

// RegisterName returns the datasheet name of reg, or "" if out of range.
func RegisterName(reg int) string {
	if reg < 0 || reg >= NumRegisters {
		return ""
	}
	return registerNames[reg]
}
