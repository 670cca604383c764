package si4703

// Field is a bit range inside one 16-bit register.
type Field struct {
	Mask  uint16
	Shift uint
}

// Get extracts the field from a register value.
func (f Field) Get(v uint16) uint16 {
	return (v & f.Mask) >> f.Shift
}

// Set returns v with the field replaced by x. Bits of x that don't fit are dropped.
func (f Field) Set(v, x uint16) uint16 {
	return v&^f.Mask | (x<<f.Shift)&f.Mask
}

// Bool reports whether a one-bit field is set.
func (f Field) Bool(v uint16) bool {
	return f.Get(v) != 0
}

// Max is the largest value the field can hold.
func (f Field) Max() uint16 {
	return f.Mask >> f.Shift
}

func (f Field) put(v uint16, on bool) uint16 {
	if on {
		return f.Set(v, 1)
	}
	return f.Set(v, 0)
}

/*
Register map, Si4702-03-C19 datasheet section 4.
*/
var (
	// 00h DEVICEID
	PN    = Field{0xF000, 12}
	MFGID = Field{0x0FFF, 0}

	// 01h CHIPID
	REV      = Field{0xFC00, 10}
	DEV      = Field{0x03C0, 6}
	FIRMWARE = Field{0x003F, 0}

	// 02h POWERCFG
	DSMUTE  = Field{0x8000, 15}
	DMUTE   = Field{0x4000, 14}
	MONO    = Field{0x2000, 13}
	RDSM    = Field{0x0800, 11}
	SKMODE  = Field{0x0400, 10}
	SEEKUP  = Field{0x0200, 9}
	SEEK    = Field{0x0100, 8}
	DISABLE = Field{0x0040, 6}
	ENABLE  = Field{0x0001, 0}

	// 03h CHANNEL
	TUNE = Field{0x8000, 15}
	CHAN = Field{0x03FF, 0}

	// 04h SYSCONFIG1
	RDSIEN  = Field{0x8000, 15}
	STCIEN  = Field{0x4000, 14}
	RDS     = Field{0x1000, 12}
	DE      = Field{0x0800, 11}
	AGCD    = Field{0x0400, 10}
	BLNDADJ = Field{0x00C0, 6}
	GPIO3   = Field{0x0030, 4}
	GPIO2   = Field{0x000C, 2}
	GPIO1   = Field{0x0003, 0}

	// 05h SYSCONFIG2
	SEEKTH = Field{0xFF00, 8}
	BAND   = Field{0x00C0, 6}
	SPACE  = Field{0x0030, 4}
	VOLUME = Field{0x000F, 0}

	// 06h SYSCONFIG3
	SMUTER = Field{0xC000, 14}
	SMUTEA = Field{0x3000, 12}
	VOLEXT = Field{0x0100, 8}
	SKSNR  = Field{0x00F0, 4}
	SKCNT  = Field{0x000F, 0}

	// 07h TEST1
	XOSCEN = Field{0x8000, 15}
	AHIZEN = Field{0x4000, 14}

	// 0Ah STATUSRSSI
	RDSR  = Field{0x8000, 15}
	STC   = Field{0x4000, 14}
	SFBL  = Field{0x2000, 13}
	AFCRL = Field{0x1000, 12}
	RDSS  = Field{0x0800, 11}
	BLERA = Field{0x0600, 9}
	ST    = Field{0x0100, 8}
	RSSI  = Field{0x00FF, 0}

	// 0Bh READCHAN
	BLERB  = Field{0xC000, 14}
	BLERC  = Field{0x3000, 12}
	BLERD  = Field{0x0C00, 10}
	READCH = Field{0x03FF, 0}
)

// DeviceID is register 00h.
type DeviceID struct {
	PartNumber   uint8
	Manufacturer uint16
}

func DecodeDeviceID(v uint16) DeviceID {
	return DeviceID{
		PartNumber:   uint8(PN.Get(v)),
		Manufacturer: MFGID.Get(v),
	}
}

func (d DeviceID) Encode() uint16 {
	v := PN.Set(0, uint16(d.PartNumber))
	return MFGID.Set(v, d.Manufacturer)
}

// ChipID is register 01h.
type ChipID struct {
	Revision uint8
	Device   uint8
	Firmware uint8
}

func DecodeChipID(v uint16) ChipID {
	return ChipID{
		Revision: uint8(REV.Get(v)),
		Device:   uint8(DEV.Get(v)),
		Firmware: uint8(FIRMWARE.Get(v)),
	}
}

func (c ChipID) Encode() uint16 {
	v := REV.Set(0, uint16(c.Revision))
	v = DEV.Set(v, uint16(c.Device))
	return FIRMWARE.Set(v, uint16(c.Firmware))
}

// PowerConfig is register 02h.
type PowerConfig struct {
	SoftmuteDisable bool
	MuteDisable     bool
	Mono            bool
	RDSVerbose      bool
	SeekStop        bool // SKMODE: stop at the band limit instead of wrapping
	SeekUp          bool
	Seek            bool
	Disable         bool
	Enable          bool
}

func DecodePowerConfig(v uint16) PowerConfig {
	return PowerConfig{
		SoftmuteDisable: DSMUTE.Bool(v),
		MuteDisable:     DMUTE.Bool(v),
		Mono:            MONO.Bool(v),
		RDSVerbose:      RDSM.Bool(v),
		SeekStop:        SKMODE.Bool(v),
		SeekUp:          SEEKUP.Bool(v),
		Seek:            SEEK.Bool(v),
		Disable:         DISABLE.Bool(v),
		Enable:          ENABLE.Bool(v),
	}
}

func (p PowerConfig) Encode() uint16 {
	var v uint16
	v = DSMUTE.put(v, p.SoftmuteDisable)
	v = DMUTE.put(v, p.MuteDisable)
	v = MONO.put(v, p.Mono)
	v = RDSM.put(v, p.RDSVerbose)
	v = SKMODE.put(v, p.SeekStop)
	v = SEEKUP.put(v, p.SeekUp)
	v = SEEK.put(v, p.Seek)
	v = DISABLE.put(v, p.Disable)
	return ENABLE.put(v, p.Enable)
}

// Channel is register 03h.
type Channel struct {
	Tune    bool
	Channel uint16
}

func DecodeChannel(v uint16) Channel {
	return Channel{Tune: TUNE.Bool(v), Channel: CHAN.Get(v)}
}

func (c Channel) Encode() uint16 {
	return CHAN.Set(TUNE.put(0, c.Tune), c.Channel)
}

// SysConfig1 is register 04h.
type SysConfig1 struct {
	RDSInterrupt bool
	STCInterrupt bool
	RDS          bool
	Deemphasis50 bool // 50 µs (Europe, Australia, Japan); 75 µs when clear
	AGCDisable   bool
	BlendAdjust  uint8
	GPIO3        uint8
	GPIO2        uint8
	GPIO1        uint8
}

func DecodeSysConfig1(v uint16) SysConfig1 {
	return SysConfig1{
		RDSInterrupt: RDSIEN.Bool(v),
		STCInterrupt: STCIEN.Bool(v),
		RDS:          RDS.Bool(v),
		Deemphasis50: DE.Bool(v),
		AGCDisable:   AGCD.Bool(v),
		BlendAdjust:  uint8(BLNDADJ.Get(v)),
		GPIO3:        uint8(GPIO3.Get(v)),
		GPIO2:        uint8(GPIO2.Get(v)),
		GPIO1:        uint8(GPIO1.Get(v)),
	}
}

func (s SysConfig1) Encode() uint16 {
	var v uint16
	v = RDSIEN.put(v, s.RDSInterrupt)
	v = STCIEN.put(v, s.STCInterrupt)
	v = RDS.put(v, s.RDS)
	v = DE.put(v, s.Deemphasis50)
	v = AGCD.put(v, s.AGCDisable)
	v = BLNDADJ.Set(v, uint16(s.BlendAdjust))
	v = GPIO3.Set(v, uint16(s.GPIO3))
	v = GPIO2.Set(v, uint16(s.GPIO2))
	return GPIO1.Set(v, uint16(s.GPIO1))
}

// SysConfig2 is register 05h.
type SysConfig2 struct {
	SeekThreshold uint8
	Band          uint8
	Spacing       uint8
	Volume        uint8
}

func DecodeSysConfig2(v uint16) SysConfig2 {
	return SysConfig2{
		SeekThreshold: uint8(SEEKTH.Get(v)),
		Band:          uint8(BAND.Get(v)),
		Spacing:       uint8(SPACE.Get(v)),
		Volume:        uint8(VOLUME.Get(v)),
	}
}

func (s SysConfig2) Encode() uint16 {
	v := SEEKTH.Set(0, uint16(s.SeekThreshold))
	v = BAND.Set(v, uint16(s.Band))
	v = SPACE.Set(v, uint16(s.Spacing))
	return VOLUME.Set(v, uint16(s.Volume))
}

// SysConfig3 is register 06h.
type SysConfig3 struct {
	SoftmuteRate        uint8
	SoftmuteAttenuation uint8
	VolumeExt           bool
	SeekSNR             uint8
	SeekCount           uint8
}

func DecodeSysConfig3(v uint16) SysConfig3 {
	return SysConfig3{
		SoftmuteRate:        uint8(SMUTER.Get(v)),
		SoftmuteAttenuation: uint8(SMUTEA.Get(v)),
		VolumeExt:           VOLEXT.Bool(v),
		SeekSNR:             uint8(SKSNR.Get(v)),
		SeekCount:           uint8(SKCNT.Get(v)),
	}
}

func (s SysConfig3) Encode() uint16 {
	v := SMUTER.Set(0, uint16(s.SoftmuteRate))
	v = SMUTEA.Set(v, uint16(s.SoftmuteAttenuation))
	v = VOLEXT.put(v, s.VolumeExt)
	v = SKSNR.Set(v, uint16(s.SeekSNR))
	return SKCNT.Set(v, uint16(s.SeekCount))
}

// Test1 is register 07h. Only the documented bits are decoded.
type Test1 struct {
	Oscillator bool
	AudioHighZ bool
}

func DecodeTest1(v uint16) Test1 {
	return Test1{Oscillator: XOSCEN.Bool(v), AudioHighZ: AHIZEN.Bool(v)}
}

func (t Test1) Encode() uint16 {
	return AHIZEN.put(XOSCEN.put(0, t.Oscillator), t.AudioHighZ)
}

// Status is register 0Ah.
type Status struct {
	RDSReady        bool
	Complete        bool // STC
	BandLimit       bool // SF/BL
	AFCRail         bool
	RDSSynchronized bool
	BlockAErrors    uint8
	Stereo          bool
	RSSI            uint8
}

func DecodeStatus(v uint16) Status {
	return Status{
		RDSReady:        RDSR.Bool(v),
		Complete:        STC.Bool(v),
		BandLimit:       SFBL.Bool(v),
		AFCRail:         AFCRL.Bool(v),
		RDSSynchronized: RDSS.Bool(v),
		BlockAErrors:    uint8(BLERA.Get(v)),
		Stereo:          ST.Bool(v),
		RSSI:            uint8(RSSI.Get(v)),
	}
}

func (s Status) Encode() uint16 {
	var v uint16
	v = RDSR.put(v, s.RDSReady)
	v = STC.put(v, s.Complete)
	v = SFBL.put(v, s.BandLimit)
	v = AFCRL.put(v, s.AFCRail)
	v = RDSS.put(v, s.RDSSynchronized)
	v = BLERA.Set(v, uint16(s.BlockAErrors))
	v = ST.put(v, s.Stereo)
	return RSSI.Set(v, uint16(s.RSSI))
}

// ReadChannel is register 0Bh. Channel is raw channel units; add the band's
// first channel to get a frequency.
type ReadChannel struct {
	BlockBErrors uint8
	BlockCErrors uint8
	BlockDErrors uint8
	Channel      uint16
}

func DecodeReadChannel(v uint16) ReadChannel {
	return ReadChannel{
		BlockBErrors: uint8(BLERB.Get(v)),
		BlockCErrors: uint8(BLERC.Get(v)),
		BlockDErrors: uint8(BLERD.Get(v)),
		Channel:      READCH.Get(v),
	}
}

func (r ReadChannel) Encode() uint16 {
	v := BLERB.Set(0, uint16(r.BlockBErrors))
	v = BLERC.Set(v, uint16(r.BlockCErrors))
	v = BLERD.Set(v, uint16(r.BlockDErrors))
	return READCH.Set(v, r.Channel)
}
