package nes

// Mapper remaps CPU and PPU addresses into offsets within a cartridge's PRG
// and CHR storage. Mapper-000 (NROM) is the only implementation; other
// mapper ids are rejected at cartridge-load time.
type Mapper interface {
	// cpuMapRead/cpuMapWrite remap a CPU-bus address in 0x8000-0xFFFF to a
	// PRG offset.
	cpuMapRead(addr uint16) uint16
	cpuMapWrite(addr uint16) uint16

	// ppuMapRead/ppuMapWrite remap a PPU-bus address in 0x0000-0x1FFF to a
	// CHR offset. ppuMapWrite additionally reports whether the cartridge's
	// CHR storage is writable (CHR-RAM) at that offset.
	ppuMapRead(addr uint16) uint16
	ppuMapWrite(addr uint16) (offset uint16, writable bool)
}
