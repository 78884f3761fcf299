// Package registry compiles the typed configuration (pkg/config) into the
// encode/decode closures and PGN index spec.md §4.1 calls the Message
// Registry: it is the only package that knows how a semantic signal value
// becomes 8 bytes on the wire.
package registry

// PDUFormat returns the PDU Format byte (PF) of a PGN, the byte that
// decides whether the PGN is PDU-1 (destination-specific) or PDU-2
// (broadcast).
func PDUFormat(pgn uint32) uint8 {
	return uint8((pgn >> 8) & 0xFF)
}

// IsPDU1 reports whether pgn addresses a specific destination (PF < 0xF0).
func IsPDU1(pgn uint32) bool {
	return PDUFormat(pgn) < 0xF0
}

// BroadcastAddr is the destination address meaning "every node", used for
// all PDU-2 traffic and as the default destination for PDU-1 traffic that
// does not target a specific node.
const BroadcastAddr uint8 = 0xFF

// PGNToCANID composes a 29-bit extended CAN identifier from a PGN,
// priority, source and destination address, per the J1939-style layout in
// spec.md §4.1: priority(3) | data-page(1) | PF(8) | PS/dest(8) | src(8).
//
// For a PDU-1 (destination-specific) PGN the low byte of the PGN is
// cleared before the destination address is OR-ed in, per spec.md §9's
// resolution of the PDU-1 encoding ambiguity.
func PGNToCANID(pgn uint32, priority uint8, srcAddr, destAddr uint8) uint32 {
	encodedPGN := pgn
	if IsPDU1(pgn) {
		encodedPGN &= 0x1FF00
		encodedPGN |= uint32(destAddr)
	}

	dp := (encodedPGN >> 16) & 0x1
	pf := (encodedPGN >> 8) & 0xFF
	ps := encodedPGN & 0xFF

	var canID uint32
	canID |= uint32(priority&0x7) << 26
	canID |= dp << 24
	canID |= pf << 16
	canID |= ps << 8
	canID |= uint32(srcAddr)

	return canID
}

// CanonicalPGN returns the form of pgn used to key the PGN index (§4.1
// "build a mapping PGN -> list of (Node, BoundMessage)"). PDU-1 PGNs carry
// a destination address in their low byte once encoded onto the wire, so
// that byte cannot be recovered on decode; the index must therefore key
// PDU-1 message types by their PF byte alone (low byte cleared), the same
// value CANIDToPGN recovers from an inbound frame. PDU-2 PGNs are used
// unchanged, since nothing overwrites their low byte.
func CanonicalPGN(pgn uint32) uint32 {
	if IsPDU1(pgn) {
		return pgn & 0x1FF00
	}
	return pgn
}

// CANIDToPGN is the inverse of PGNToCANID: it recovers the PGN, priority,
// source and destination address from a 29-bit extended CAN identifier.
// For PDU-2 (broadcast) PGNs the recovered destination is always
// BroadcastAddr.
func CANIDToPGN(canID uint32) (pgn uint32, priority uint8, srcAddr, destAddr uint8) {
	srcAddr = uint8(canID & 0xFF)
	ps := (canID >> 8) & 0xFF
	pf := (canID >> 16) & 0xFF
	dp := (canID >> 24) & 0x1
	priority = uint8((canID >> 26) & 0x7)

	pgn = ps | (pf << 8) | (dp << 16)

	if IsPDU1(pgn) {
		destAddr = uint8(pgn & 0xFF)
		pgn &= 0x1FF00
	} else {
		destAddr = BroadcastAddr
	}

	return pgn, priority, srcAddr, destAddr
}
