package registry

import (
	"fmt"
	"strings"

	"github.com/brewbot/controller/pkg/config"
)

// GenerateDBC renders cfg's message_types as a minimal DBC document: one
// BO_ per message type, one SG_ per signal, PDU-1 PGNs addressed to
// broadcast (0xFF) in the frame id the way the registry itself would
// encode them with no destination-specific node (PDU-2 PGNs carry no
// destination byte and are used unchanged). This is the "built-in
// DBC database generated from the config" spec.md §6 requires, and is
// this repo's one DBC-producing path — there is no separate DBC file to
// parse.
func GenerateDBC(cfg *config.Config) string {
	var b strings.Builder
	b.WriteString("VERSION \"\"\n\n")
	b.WriteString("NS_ :\n\n")
	b.WriteString("BS_:\n\n")
	b.WriteString("BU_: MASTER\n\n")

	for _, mt := range cfg.MessageTypes {
		frameID := frameIDForDBC(mt)
		b.WriteString(fmt.Sprintf("BO_ %d %s: 8 MASTER\n", frameID, mt.DBCName))
		for _, sig := range mt.Signals {
			b.WriteString(dbcSignalLine(sig))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// frameIDForDBC computes the 29-bit identifier a message type resolves to
// when broadcast from address 0 at its configured priority, with the
// extended-frame bit set as cantools expects.
func frameIDForDBC(mt config.MessageType) uint32 {
	const extendedFrameBit = 1 << 31
	return PGNToCANID(mt.PGN, mt.Priority, 0, BroadcastAddr) | extendedFrameBit
}

func dbcSignalLine(sig config.Signal) string {
	signedness := "+"
	if sig.Signed {
		signedness = "-"
	}

	minV, maxV := 0.0, 0.0
	if sig.Min != nil {
		minV = *sig.Min
	}
	if sig.Max != nil {
		maxV = *sig.Max
	}

	return fmt.Sprintf(
		" SG_ %s : %d|%d@1%s (%g,%g) [%g|%g] \"%s\" MASTER\n",
		sig.DBCName, sig.StartBit, sig.SignalSize, signedness,
		sig.Scale, sig.Offset, minV, maxV, sig.Unit,
	)
}
