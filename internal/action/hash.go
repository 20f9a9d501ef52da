package action

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// DomainDispatch is the domain prefix for dispatch record identity.
// Version suffix enables future algorithm migration.
const DomainDispatch = "projector/dispatch/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RecordID computes the content-addressed ID of a dispatch record.
// The ID is stable across replays given the same session, seq, type and payload.
// Provenance is excluded: it is diagnostic and must not change identity.
func RecordID(session string, seq int64, typ string, payload []byte) (string, error) {
	compact := payload
	if len(payload) > 0 {
		var buf bytes.Buffer
		if err := json.Compact(&buf, payload); err != nil {
			return "", fmt.Errorf("RecordID: payload is not valid JSON: %w", err)
		}
		compact = buf.Bytes()
	}

	// Keys are emitted in a fixed order; values are JSON-encoded.
	var buf bytes.Buffer
	buf.WriteString(`{"payload":`)
	if len(compact) == 0 {
		buf.WriteString("null")
	} else {
		buf.Write(compact)
	}
	fmt.Fprintf(&buf, `,"seq":%d,"session":`, seq)
	writeString(&buf, session)
	buf.WriteString(`,"type":`)
	writeString(&buf, typ)
	buf.WriteByte('}')

	return hashWithDomain(DomainDispatch, buf.Bytes()), nil
}

// MustRecordID is like RecordID but panics on error.
// Use only in tests or when the payload is known to be valid.
func MustRecordID(session string, seq int64, typ string, payload []byte) string {
	id, err := RecordID(session, seq, typ, payload)
	if err != nil {
		panic(err)
	}
	return id
}

// writeString writes s as an NFC-normalized JSON string without HTML escaping.
func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(normalize(s))
	// Encoder adds a trailing newline, remove it
	buf.Truncate(buf.Len() - 1)
}

func normalize(s string) string {
	return norm.NFC.String(s)
}
