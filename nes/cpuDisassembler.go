package nes

import (
	"fmt"
	"reflect"
)

// addrModeName maps an addressing mode function to the mnemonic suffix used
// by Disassemble, by comparing code pointers with reflect.
func (cpu *Cpu6502) addrModeName(fn func() byte) string {
	ptr := reflect.ValueOf(fn).Pointer()

	switch {
	case ptr == reflect.ValueOf(cpu.amIMP).Pointer():
		return "IMP"
	case ptr == reflect.ValueOf(cpu.amIMM).Pointer():
		return "IMM"
	case ptr == reflect.ValueOf(cpu.amREL).Pointer():
		return "REL"
	case ptr == reflect.ValueOf(cpu.amZP0).Pointer():
		return "ZP0"
	case ptr == reflect.ValueOf(cpu.amZPX).Pointer():
		return "ZPX"
	case ptr == reflect.ValueOf(cpu.amZPY).Pointer():
		return "ZPY"
	case ptr == reflect.ValueOf(cpu.amABS).Pointer():
		return "ABS"
	case ptr == reflect.ValueOf(cpu.amABX).Pointer():
		return "ABX"
	case ptr == reflect.ValueOf(cpu.amABY).Pointer():
		return "ABY"
	case ptr == reflect.ValueOf(cpu.amIND).Pointer():
		return "IND"
	case ptr == reflect.ValueOf(cpu.amIZX).Pointer():
		return "IZX"
	case ptr == reflect.ValueOf(cpu.amIZY).Pointer():
		return "IZY"
	}

	return "???"
}

// Disassemble decodes every instruction found between start and end
// (inclusive), walking the encoded byte stream rather than a fixed stride,
// and returns a map from each instruction's address to its disassembled
// text. It does not mutate CPU state.
func (cpu *Cpu6502) Disassemble(start, end uint16) map[uint16]string {
	lines := make(map[uint16]string)

	addr := uint32(start)
	for addr <= uint32(end) {
		lineAddr := uint16(addr)

		opcode := cpu.read(uint16(addr))
		addr++

		inst := cpu.InstLookup[opcode]
		text := fmt.Sprintf("$%04X: %s ", lineAddr, inst.Name)

		switch cpu.addrModeName(inst.AddrMode) {
		case "IMP":
			text += " {IMP}"
		case "IMM":
			value := cpu.read(uint16(addr))
			addr++
			text += fmt.Sprintf("#$%02X {IMM}", value)
		case "ZP0":
			lo := cpu.read(uint16(addr))
			addr++
			text += fmt.Sprintf("$%02X {ZP0}", lo)
		case "ZPX":
			lo := cpu.read(uint16(addr))
			addr++
			text += fmt.Sprintf("$%02X, X {ZPX}", lo)
		case "ZPY":
			lo := cpu.read(uint16(addr))
			addr++
			text += fmt.Sprintf("$%02X, Y {ZPY}", lo)
		case "IZX":
			lo := cpu.read(uint16(addr))
			addr++
			text += fmt.Sprintf("($%02X, X) {IZX}", lo)
		case "IZY":
			lo := cpu.read(uint16(addr))
			addr++
			text += fmt.Sprintf("($%02X), Y {IZY}", lo)
		case "ABS":
			lo := uint16(cpu.read(uint16(addr)))
			addr++
			hi := uint16(cpu.read(uint16(addr)))
			addr++
			text += fmt.Sprintf("$%04X {ABS}", hi<<8|lo)
		case "ABX":
			lo := uint16(cpu.read(uint16(addr)))
			addr++
			hi := uint16(cpu.read(uint16(addr)))
			addr++
			text += fmt.Sprintf("$%04X, X {ABX}", hi<<8|lo)
		case "ABY":
			lo := uint16(cpu.read(uint16(addr)))
			addr++
			hi := uint16(cpu.read(uint16(addr)))
			addr++
			text += fmt.Sprintf("$%04X, Y {ABY}", hi<<8|lo)
		case "IND":
			lo := uint16(cpu.read(uint16(addr)))
			addr++
			hi := uint16(cpu.read(uint16(addr)))
			addr++
			text += fmt.Sprintf("($%04X) {IND}", hi<<8|lo)
		case "REL":
			value := cpu.read(uint16(addr))
			addr++
			target := uint16(addr) + uint16(int8(value))
			text += fmt.Sprintf("$%02X [$%04X] {REL}", value, target)
		}

		lines[lineAddr] = text
	}

	return lines
}
