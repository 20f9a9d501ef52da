package action

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Provenance is diagnostic metadata attached to every dispatched action:
// where the dispatch originated and a free-text annotation.
//
// It is carried along unchanged by projections and adapters. It may be
// stored or logged but never affects dispatch semantics.
type Provenance struct {
	File     string `json:"file"`
	Function string `json:"function"`
	Line     int    `json:"line"`
	Info     string `json:"info,omitempty"`
}

// Here captures the caller's location as a Provenance.
//
// Call it at the site that owns the dispatch (usually where a binding or
// handler is constructed). An empty Provenance is returned when the runtime
// cannot resolve the caller.
func Here(info string) Provenance {
	return Caller(1, info)
}

// Caller is like Here but skips additional stack frames, for helpers that
// capture provenance on behalf of their own caller.
func Caller(skip int, info string) Provenance {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Provenance{Info: info}
	}
	fn := ""
	if f := runtime.FuncForPC(pc); f != nil {
		fn = f.Name()
	}
	return Provenance{
		File:     file,
		Function: fn,
		Line:     line,
		Info:     info,
	}
}

// Append returns a copy whose Info has suffix chained onto it with " -> ".
// Adapters use it to name the closure that performed the dispatch.
func (p Provenance) Append(suffix string) Provenance {
	if suffix == "" {
		return p
	}
	if p.Info == "" {
		p.Info = suffix
		return p
	}
	p.Info = p.Info + " -> " + suffix
	return p
}

// IsZero reports whether no field is set.
func (p Provenance) IsZero() bool {
	return p == Provenance{}
}

// String renders "file:line function [info]" with the file reduced to its base name.
func (p Provenance) String() string {
	var b strings.Builder
	if p.File != "" {
		fmt.Fprintf(&b, "%s:%d", filepath.Base(p.File), p.Line)
	}
	if p.Function != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(shortFunc(p.Function))
	}
	if p.Info != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "[%s]", p.Info)
	}
	return b.String()
}

// shortFunc drops the import path from a fully qualified function name.
func shortFunc(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
