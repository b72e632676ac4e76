package nes

// References:
// http://wiki.nesdev.com/w/index.php/PPU_registers
// https://www.youtube.com/watch?v=xdzOvpYPmGE (javidx9)
const (
	// PPU addresses
	patternTblAddr    uint16 = 0x0000
	patternTblAddrEnd uint16 = 0x1FFF
	patternTblSize    uint16 = 0x1000 // Single pattern table - size in bytes

	nameTblAddr    uint16 = 0x2000
	nameTblAddrEnd uint16 = 0x3EFF

	paletteAddr    uint16 = 0x3F00
	paletteAddrEnd uint16 = 0x3FFF

	maxScanlineSprites = 8
)

type Ppu struct {
	Cart *Cartridge

	nameTable    [2][1024]byte // NES allows storage for 2 nametables
	paletteTable [32]byte
	oam          objectAttributeMemory
	OamAddr      byte

	ctrl   PpuReg
	mask   PpuReg
	status PpuReg

	vramAddr  PpuLoopyReg // v: current VRAM address used for scrolling/PPUDATA
	tramAddr  PpuLoopyReg // t: target/latched scroll address
	fineX     byte
	addrLatch byte // w: write toggle shared by PPUSCROLL/PPUADDR
	dataBuffer byte

	// Background pipeline latches, refilled every 8 cycles.
	bgNextTileID     byte
	bgNextTileAttrib byte
	bgNextTileLsb    byte
	bgNextTileMsb    byte

	bgShifterPatternLo uint16
	bgShifterPatternHi uint16
	bgShifterAttribLo  uint16
	bgShifterAttribHi  uint16

	// Sprite pipeline state, refilled at cycle 257 of each visible scanline.
	scanlineSprites         [maxScanlineSprites]oamSprite
	spriteCount             int
	spriteShifterLo         [maxScanlineSprites]byte
	spriteShifterHi         [maxScanlineSprites]byte
	spriteZeroHitPossible   bool
	spriteZeroBeingRendered bool

	scanline      int  // Scanline count in the current frame, -1..260
	cycle         int  // Cycle count in the current scanline, 0..340
	frameComplete bool // Whether the current frame is finished rendering
	oddFrame      bool

	// NmiRequest is raised when vblank starts with NMI enabled in CTRL; the
	// System observes it, injects an NMI into the CPU, then clears it.
	NmiRequest bool

	// FrameBuffer holds the most recently composited frame, row-major,
	// 256 wide by 240 tall.
	FrameBuffer [240][256]Color
}

// NewPpu returns a PPU positioned at the start of a frame: the pre-render
// scanline (-1), cycle 0.
func NewPpu() *Ppu {
	return &Ppu{
		oam:      newOAM(64),
		scanline: -1,
	}
}

func (p *Ppu) ConnectCartridge(c *Cartridge) {
	p.Cart = c
}

// Clock advances the PPU by one pixel clock. 1 frame = 262 scanlines,
// 1 scanline = 341 cycles.
func (p *Ppu) Clock() {
	// Visible + pre-render scanlines.
	if p.scanline >= -1 && p.scanline < 240 {
		if p.scanline == 0 && p.cycle == 0 && p.oddFrame && p.renderingEnabled() {
			// Real 2C02 hardware shortens the odd-frame pre-render line by
			// one cycle; only skip the idle cycle when that condition holds.
			p.cycle = 1
		}

		if p.scanline == -1 && p.cycle == 1 {
			p.status.clearFlag(statusVBlank)
			p.status.clearFlag(statusSprite0Hit)
			p.status.clearFlag(statusSpriteOverflow)

			for i := range p.spriteShifterLo {
				p.spriteShifterLo[i] = 0
				p.spriteShifterHi[i] = 0
			}
		}

		if (p.cycle >= 2 && p.cycle < 258) || (p.cycle >= 321 && p.cycle < 338) {
			p.updateShifters()

			switch (p.cycle - 1) % 8 {
			case 0:
				p.loadBackgroundShifters()
				p.bgNextTileID = p.ppuRead(nameTblAddr | (p.vramAddr.value() & 0x0FFF))
			case 2:
				v := p.vramAddr.value()
				addr := uint16(0x23C0) | (v & 0x0C00) | ((v >> 4) & 0x38) | ((v >> 2) & 0x07)
				p.bgNextTileAttrib = p.ppuRead(addr)

				if p.vramAddr.getCoarseY()&0x02 != 0 {
					p.bgNextTileAttrib >>= 4
				}
				if p.vramAddr.getCoarseX()&0x02 != 0 {
					p.bgNextTileAttrib >>= 2
				}
				p.bgNextTileAttrib &= 0x03
			case 4:
				addr := p.ctrl.patternBg() + uint16(p.bgNextTileID)*16 + uint16(p.vramAddr.getFineY())
				p.bgNextTileLsb = p.ppuRead(addr)
			case 6:
				addr := p.ctrl.patternBg() + uint16(p.bgNextTileID)*16 + uint16(p.vramAddr.getFineY()) + 8
				p.bgNextTileMsb = p.ppuRead(addr)
			case 7:
				p.incrementScrollX()
			}
		}

		if p.cycle == 256 {
			p.incrementScrollY()
		}

		if p.cycle == 257 {
			p.loadBackgroundShifters()
			p.transferAddressX()
			p.evaluateSprites()
		}

		if p.cycle == 338 || p.cycle == 340 {
			p.bgNextTileID = p.ppuRead(nameTblAddr | (p.vramAddr.value() & 0x0FFF))
		}

		if p.scanline == -1 && p.cycle >= 280 && p.cycle < 305 {
			p.transferAddressY()
		}

		if p.cycle == 340 {
			p.fetchSpritePatterns()
		}
	}

	if p.scanline == 241 && p.cycle == 1 {
		p.status.setFlag(statusVBlank)
		if p.ctrl.enableNmi() {
			p.NmiRequest = true
		}
	}

	if p.cycle >= 1 && p.cycle <= 256 && p.scanline >= 0 && p.scanline < 240 {
		p.compositePixel()
	}

	p.cycle++
	if p.cycle >= 341 {
		p.cycle = 0
		p.scanline++

		if p.scanline >= 261 {
			p.scanline = -1
			p.frameComplete = true
			p.oddFrame = !p.oddFrame
		}
	}
}

func (p *Ppu) renderingEnabled() bool {
	return p.mask.renderBackground() || p.mask.renderSprites()
}

func (p *Ppu) incrementScrollX() {
	if p.renderingEnabled() {
		p.vramAddr.incrementX()
	}
}

func (p *Ppu) incrementScrollY() {
	if p.renderingEnabled() {
		p.vramAddr.incrementY()
	}
}

func (p *Ppu) transferAddressX() {
	if p.renderingEnabled() {
		p.vramAddr.transferX(p.tramAddr)
	}
}

func (p *Ppu) transferAddressY() {
	if p.renderingEnabled() {
		p.vramAddr.transferY(p.tramAddr)
	}
}

func (p *Ppu) loadBackgroundShifters() {
	p.bgShifterPatternLo = (p.bgShifterPatternLo & 0xFF00) | uint16(p.bgNextTileLsb)
	p.bgShifterPatternHi = (p.bgShifterPatternHi & 0xFF00) | uint16(p.bgNextTileMsb)

	var attribLo, attribHi uint16
	if p.bgNextTileAttrib&0b01 != 0 {
		attribLo = 0xFF
	}
	if p.bgNextTileAttrib&0b10 != 0 {
		attribHi = 0xFF
	}
	p.bgShifterAttribLo = (p.bgShifterAttribLo & 0xFF00) | attribLo
	p.bgShifterAttribHi = (p.bgShifterAttribHi & 0xFF00) | attribHi
}

func (p *Ppu) updateShifters() {
	if p.mask.renderBackground() {
		p.bgShifterPatternLo <<= 1
		p.bgShifterPatternHi <<= 1
		p.bgShifterAttribLo <<= 1
		p.bgShifterAttribHi <<= 1
	}

	if p.mask.renderSprites() && p.cycle >= 1 && p.cycle < 258 {
		for i := 0; i < p.spriteCount; i++ {
			if p.scanlineSprites[i].x > 0 {
				p.scanlineSprites[i].x--
			} else {
				p.spriteShifterLo[i] <<= 1
				p.spriteShifterHi[i] <<= 1
			}
		}
	}
}

// evaluateSprites scans OAM linearly, collecting up to 8 sprites visible on
// the NEXT scanline, and flags overflow if a 9th would qualify.
func (p *Ppu) evaluateSprites() {
	for i := range p.scanlineSprites {
		p.scanlineSprites[i] = oamSprite{y: 0xFF, id: 0xFF, attribute: 0xFF, x: 0xFF}
	}
	p.spriteCount = 0
	p.spriteZeroHitPossible = false

	height := int(p.ctrl.spriteHeight())

	oamIdx := 0
	for oamIdx < len(p.oam) && p.spriteCount < maxScanlineSprites+1 {
		diff := p.scanline - int(p.oam[oamIdx].y)

		if diff >= 0 && diff < height {
			if p.spriteCount < maxScanlineSprites {
				if oamIdx == 0 {
					p.spriteZeroHitPossible = true
				}
				copyOamEntry(&p.scanlineSprites[p.spriteCount], p.oam[oamIdx])
				p.spriteCount++
			} else {
				p.status.setFlag(statusSpriteOverflow)
				break
			}
		}

		oamIdx++
	}
}

// fetchSpritePatterns loads the pattern shifters for every sprite collected
// for the next scanline, honoring 8x8 vs 8x16 addressing and flips.
func (p *Ppu) fetchSpritePatterns() {
	for i := 0; i < p.spriteCount; i++ {
		sprite := p.scanlineSprites[i]

		var addr uint16
		height := p.ctrl.spriteHeight()

		row := p.scanline - int(sprite.y)
		if sprite.isFlippedVertical() {
			row = int(height) - 1 - row
		}

		if height == 8 {
			addr = p.ctrl.patternSprite() + uint16(sprite.id)*16 + uint16(row)
		} else {
			tile := sprite.id & 0xFE
			half := sprite.id & 0x01
			if row >= 8 {
				tile++
				row -= 8
			}
			addr = uint16(half)*0x1000 + uint16(tile)*16 + uint16(row)
		}

		lo := p.ppuRead(addr)
		hi := p.ppuRead(addr + 8)

		if sprite.isFlippedHorizontal() {
			lo = flipByte(lo)
			hi = flipByte(hi)
		}

		p.spriteShifterLo[i] = lo
		p.spriteShifterHi[i] = hi
	}
}

// compositePixel composes the background and sprite pixel for the current
// (scanline, cycle) and writes the resulting color into FrameBuffer.
func (p *Ppu) compositePixel() {
	x := p.cycle - 1
	y := p.scanline

	var bgPixel, bgPalette byte
	if p.mask.renderBackground() {
		if p.mask.renderBackgroundLeft() || x >= 8 {
			mux := uint16(0x8000) >> p.fineX

			p0 := byte(0)
			if p.bgShifterPatternLo&mux != 0 {
				p0 = 1
			}
			p1 := byte(0)
			if p.bgShifterPatternHi&mux != 0 {
				p1 = 1
			}
			bgPixel = (p1 << 1) | p0

			a0 := byte(0)
			if p.bgShifterAttribLo&mux != 0 {
				a0 = 1
			}
			a1 := byte(0)
			if p.bgShifterAttribHi&mux != 0 {
				a1 = 1
			}
			bgPalette = (a1 << 1) | a0
		}
	}

	var fgPixel, fgPalette byte
	var fgPriority bool
	spriteZeroRendered := false
	if p.mask.renderSprites() {
		if p.mask.renderSpritesLeft() || x >= 8 {
			for i := 0; i < p.spriteCount; i++ {
				if p.scanlineSprites[i].x != 0 {
					continue
				}

				p0 := byte(0)
				if p.spriteShifterLo[i]&0x80 != 0 {
					p0 = 1
				}
				p1 := byte(0)
				if p.spriteShifterHi[i]&0x80 != 0 {
					p1 = 1
				}
				pixel := (p1 << 1) | p0

				if pixel == 0 {
					continue
				}

				fgPixel = pixel
				fgPalette = (p.scanlineSprites[i].attribute & 0x03) + 4
				fgPriority = p.scanlineSprites[i].attribute&0x20 == 0

				if i == 0 {
					spriteZeroRendered = true
				}

				break
			}
		}
	}

	var pixel, palette byte
	switch {
	case bgPixel == 0 && fgPixel == 0:
		pixel, palette = 0, 0
	case bgPixel == 0 && fgPixel != 0:
		pixel, palette = fgPixel, fgPalette
	case bgPixel != 0 && fgPixel == 0:
		pixel, palette = bgPixel, bgPalette
	default:
		if fgPriority {
			pixel, palette = fgPixel, fgPalette
		} else {
			pixel, palette = bgPixel, bgPalette
		}

		if p.spriteZeroHitPossible && spriteZeroRendered && p.renderingEnabled() {
			leftClipped := !p.mask.renderBackgroundLeft() || !p.mask.renderSpritesLeft()
			minCycle := 1
			if leftClipped {
				minCycle = 9
			}
			if p.cycle >= minCycle && p.cycle <= 257 && p.cycle != 256 {
				p.status.setFlag(statusSprite0Hit)
			}
		}
	}

	if x >= 0 && x < 256 && y >= 0 && y < 240 {
		p.FrameBuffer[y][x] = p.getColorFromPalette(palette, pixel)
	}
}

// Communicate with main (CPU) bus - used for PPU register access.
func (p *Ppu) cpuRead(addr uint16) byte {
	var data byte

	switch addr {
	case 0x0000, 0x0001: // Controller, Mask: not readable
	case 0x0002: // Status
		data = (byte(p.status) & 0xE0) | (p.dataBuffer & 0x1F)
		p.status.clearFlag(statusVBlank)
		p.addrLatch = 0
	case 0x0003: // OAM Address: not readable
	case 0x0004: // OAM Data
		data = p.oam.read(p.OamAddr)
	case 0x0005, 0x0006: // Scroll, Address: not readable
	case 0x0007: // Data
		data = p.dataBuffer
		p.dataBuffer = p.ppuRead(p.vramAddr.value())

		if p.vramAddr.value() >= paletteAddr {
			data = p.dataBuffer
		}

		p.vramAddr.set(p.vramAddr.value() + p.ctrl.incrementMode())
	}

	return data
}

func (p *Ppu) cpuWrite(addr uint16, data byte) {
	switch addr {
	case 0x0000: // Controller
		p.ctrl = PpuReg(data)
		p.tramAddr.setNtX(p.ctrl.ntX())
		p.tramAddr.setNtY(p.ctrl.ntY())
	case 0x0001: // Mask
		p.mask = PpuReg(data)
	case 0x0002: // Status: not writable
	case 0x0003: // OAM Address
		p.OamAddr = data
	case 0x0004: // OAM Data
		p.oam.write(p.OamAddr, data)
	case 0x0005: // Scroll
		if p.addrLatch == 0 {
			p.fineX = data & 0x07
			p.tramAddr.setCoarseX(data >> 3)
			p.addrLatch = 1
		} else {
			p.tramAddr.setFineY(data & 0x07)
			p.tramAddr.setCoarseY(data >> 3)
			p.addrLatch = 0
		}
	case 0x0006: // Address
		if p.addrLatch == 0 {
			p.tramAddr.set((uint16(data&0x3F) << 8) | (p.tramAddr.value() & 0x00FF))
			p.addrLatch = 1
		} else {
			p.tramAddr.set((p.tramAddr.value() & 0xFF00) | uint16(data))
			p.vramAddr = p.tramAddr
			p.addrLatch = 0
		}
	case 0x0007: // Data
		p.ppuWrite(p.vramAddr.value(), data)
		p.vramAddr.set(p.vramAddr.value() + p.ctrl.incrementMode())
	}
}

// nameTableIndex selects which of the two physical nametables backs a
// logical nametable slot (0-3), according to the cartridge's mirroring.
func (p *Ppu) nameTableIndex(slot uint16) int {
	if p.Cart.Mirroring == MirrorVertical {
		return int(slot % 2)
	}
	return int(slot / 2)
}

// Communicate with PPU bus.
func (p *Ppu) ppuRead(addr uint16) byte {
	addr &= 0x3FFF

	var data byte

	if addr <= patternTblAddrEnd {
		data = p.Cart.ppuRead(addr)
	} else if addr >= nameTblAddr && addr <= nameTblAddrEnd {
		offset := addr & 0x03FF
		slot := (addr & 0x0FFF) / 0x0400
		data = p.nameTable[p.nameTableIndex(slot)][offset]
	} else if addr >= paletteAddr && addr <= paletteAddrEnd {
		pIdx := addr & 0x1F
		if pIdx == 0x10 || pIdx == 0x14 || pIdx == 0x18 || pIdx == 0x1C {
			pIdx -= 0x10
		}
		data = p.paletteTable[pIdx]
	}

	return data
}

func (p *Ppu) ppuWrite(addr uint16, data byte) {
	addr &= 0x3FFF

	if addr <= patternTblAddrEnd {
		p.Cart.ppuWrite(addr, data)
	} else if addr >= nameTblAddr && addr <= nameTblAddrEnd {
		offset := addr & 0x03FF
		slot := (addr & 0x0FFF) / 0x0400
		p.nameTable[p.nameTableIndex(slot)][offset] = data
	} else if addr >= paletteAddr && addr <= paletteAddrEnd {
		pIdx := addr & 0x1F
		if pIdx == 0x10 || pIdx == 0x14 || pIdx == 0x18 || pIdx == 0x1C {
			pIdx -= 0x10
		}
		p.paletteTable[pIdx] = data
	}
}

// Convenience functions for development.

// PatternTable decodes one of the two 4 KiB CHR pattern tables into a
// displayable 128x128 grid, useful for a debug view; not part of emulation
// correctness.
func (p *Ppu) PatternTable(i int, palette byte) [128][128]Color {
	var grid [128][128]Color

	for tileY := 0; tileY < 16; tileY++ {
		for tileX := 0; tileX < 16; tileX++ {
			memOffset := uint16(tileY*256 + tileX*16)

			for row := 0; row < 8; row++ {
				tileLo := p.ppuRead(uint16(i)*patternTblSize + memOffset + uint16(row))
				tileHi := p.ppuRead(uint16(i)*patternTblSize + memOffset + uint16(row) + 8)

				for col := 0; col < 8; col++ {
					pixel := (tileLo & 0x01) + ((tileHi & 0x01) << 1)
					tileLo >>= 1
					tileHi >>= 1

					x := tileX*8 + (7 - col)
					y := tileY*8 + row

					grid[y][x] = p.getColorFromPalette(palette, pixel)
				}
			}
		}
	}

	return grid
}

func (p *Ppu) getColorFromPalette(palette, pixel byte) Color {
	idx := p.ppuRead(paletteAddr+uint16(palette)*4+uint16(pixel)) & 0x3F
	return masterPalette[idx]
}
