package action

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Record is the journal entry for one dispatch.
type Record struct {
	ID         string          `json:"id"`      // Content-addressed hash
	Session    string          `json:"session"` // Groups the dispatches of one process run
	Seq        int64           `json:"seq"`     // Logical clock
	Type       string          `json:"type"`    // Dynamic Go type of the action
	Payload    json.RawMessage `json:"payload"`
	Provenance Provenance      `json:"provenance"`
}

// NewRecord builds a Record for act, serializing it as JSON and computing its ID.
// Info is NFC-normalized so records hash identically regardless of input form.
func NewRecord(session string, seq int64, act any, prov Provenance) (Record, error) {
	payload, err := json.Marshal(act)
	if err != nil {
		return Record{}, fmt.Errorf("marshal action %s: %w", TypeName(act), err)
	}
	prov.Info = normalize(prov.Info)
	typ := TypeName(act)
	id, err := RecordID(session, seq, typ, payload)
	if err != nil {
		return Record{}, err
	}
	return Record{
		ID:         id,
		Session:    session,
		Seq:        seq,
		Type:       typ,
		Payload:    payload,
		Provenance: prov,
	}, nil
}

// TypeName returns the package-qualified dynamic type name of v ("todo.Action").
// Pointer types are reported with a leading "*"; nil yields "nil".
func TypeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
