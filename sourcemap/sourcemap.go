// Package sourcemap implements the engine described in §4.5: it
// accumulates (generated position) -> (original position) mappings
// during stringification and encodes them as a Source Map v3 document,
// optionally composing through an upstream map supplied by the caller.
//
// The teacher package never stringifies, so it has no source-map
// analogue; this package's mapping-accumulator shape (an ordered slice
// of mappings with an Add method and JSON (de)serialization) is
// grounded on grindlemire/go-tui's internal/tuigen.SourceMap, adapted
// from its flat per-mapping JSON array to the VLQ-encoded `mappings`
// string the Source Map v3 convention requires.
package sourcemap

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Mapping is a single generated-to-original position pair. Lines and
// columns are 0-indexed, per the Source Map v3 convention (the rest of
// this module, like the CSS tree, uses 1-indexed positions; conversion
// happens at the Builder boundary).
type Mapping struct {
	GeneratedLine   int
	GeneratedColumn int
	Source          string
	OriginalLine    int
	OriginalColumn  int
	Name            string // optional; "" means unnamed
}

// V3 is the JSON shape of a Source Map v3 document (§4.5, §6).
type V3 struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// Builder accumulates mappings during stringification and encodes them
// into a V3 document.
type Builder struct {
	File     string
	mappings []Mapping
	sources  []string
	srcIndex map[string]int
	names    []string
	nameIdx  map[string]int
}

// NewBuilder returns an empty Builder for the generated file named
// file (may be "").
func NewBuilder(file string) *Builder {
	return &Builder{
		File:     file,
		srcIndex: make(map[string]int),
		nameIdx:  make(map[string]int),
	}
}

// Add records a mapping from a 1-indexed (genLine, genColumn) position
// in the generated output to a 1-indexed (origLine, origColumn)
// position in source. name is optional context (e.g. a property name)
// and may be "".
func (b *Builder) Add(genLine, genColumn int, source string, origLine, origColumn int, name string) {
	b.mappings = append(b.mappings, Mapping{
		GeneratedLine:   genLine - 1,
		GeneratedColumn: genColumn - 1,
		Source:          source,
		OriginalLine:    origLine - 1,
		OriginalColumn:  origColumn - 1,
		Name:            name,
	})
	b.sourceID(source)
	if name != "" {
		b.nameID(name)
	}
}

func (b *Builder) sourceID(source string) int {
	if idx, ok := b.srcIndex[source]; ok {
		return idx
	}
	idx := len(b.sources)
	b.sources = append(b.sources, source)
	b.srcIndex[source] = idx
	return idx
}

func (b *Builder) nameID(name string) int {
	if idx, ok := b.nameIdx[name]; ok {
		return idx
	}
	idx := len(b.names)
	b.names = append(b.names, name)
	b.nameIdx[name] = idx
	return idx
}

// Build renders the accumulated mappings into a V3 document.
func (b *Builder) Build() *V3 {
	sorted := append([]Mapping(nil), b.mappings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].GeneratedLine != sorted[j].GeneratedLine {
			return sorted[i].GeneratedLine < sorted[j].GeneratedLine
		}
		return sorted[i].GeneratedColumn < sorted[j].GeneratedColumn
	})

	var out strings.Builder
	line := 0
	prevGenCol, prevSrc, prevOrigLine, prevOrigCol, prevName := 0, 0, 0, 0, 0
	first := true
	for _, m := range sorted {
		for line < m.GeneratedLine {
			out.WriteByte(';')
			prevGenCol = 0
			line++
			first = true
		}
		if !first {
			out.WriteByte(',')
		}
		first = false

		srcIdx := b.srcIndex[m.Source]
		fields := []int{
			m.GeneratedColumn - prevGenCol,
			srcIdx - prevSrc,
			m.OriginalLine - prevOrigLine,
			m.OriginalColumn - prevOrigCol,
		}
		prevGenCol = m.GeneratedColumn
		prevSrc = srcIdx
		prevOrigLine = m.OriginalLine
		prevOrigCol = m.OriginalColumn

		if m.Name != "" {
			nameIdx := b.nameIdx[m.Name]
			fields = append(fields, nameIdx-prevName)
			prevName = nameIdx
		}
		encodeVLQ(&out, fields...)
	}

	return &V3{
		Version:  3,
		File:     b.File,
		Sources:  append([]string(nil), b.sources...),
		Names:    append([]string(nil), b.names...),
		Mappings: out.String(),
	}
}

// JSON renders the accumulated mappings as a Source Map v3 JSON
// document.
func (b *Builder) JSON() ([]byte, error) {
	return json.Marshal(b.Build())
}

// Decode parses a Source Map v3 JSON document.
func Decode(data []byte) (*V3, error) {
	var v3 V3
	if err := json.Unmarshal(data, &v3); err != nil {
		return nil, err
	}
	if v3.Version != 3 {
		return nil, fmt.Errorf("sourcemap: unsupported version %d", v3.Version)
	}
	return &v3, nil
}

// Consumer resolves generated positions in an already-decoded Source
// Map v3 document back to original positions, for composing a new map
// through an upstream one (§4.5).
type Consumer struct {
	doc      *V3
	segments []resolvedSegment
}

type resolvedSegment struct {
	genLine, genCol   int
	source            string
	origLine, origCol int
	hasName           bool
	name              string
}

// NewConsumer decodes doc's mappings string into a lookup structure.
func NewConsumer(doc *V3) (*Consumer, error) {
	c := &Consumer{doc: doc}
	line := 0
	genCol, srcIdx, origLine, origCol, nameIdx := 0, 0, 0, 0, 0
	for _, lineStr := range strings.Split(doc.Mappings, ";") {
		genCol = 0
		if lineStr != "" {
			for _, seg := range strings.Split(lineStr, ",") {
				fields, err := decodeVLQ(seg)
				if err != nil {
					return nil, err
				}
				if len(fields) < 4 {
					return nil, fmt.Errorf("sourcemap: malformed mapping segment %q", seg)
				}
				genCol += fields[0]
				srcIdx += fields[1]
				origLine += fields[2]
				origCol += fields[3]

				rs := resolvedSegment{
					genLine: line, genCol: genCol,
					origLine: origLine, origCol: origCol,
				}
				if srcIdx >= 0 && srcIdx < len(doc.Sources) {
					rs.source = doc.Sources[srcIdx]
				}
				if len(fields) >= 5 {
					nameIdx += fields[4]
					if nameIdx >= 0 && nameIdx < len(doc.Names) {
						rs.hasName = true
						rs.name = doc.Names[nameIdx]
					}
				}
				c.segments = append(c.segments, rs)
			}
		}
		line++
	}
	return c, nil
}

// Original resolves a 0-indexed generated (line, column) to its
// original (source, line, column), returning ok=false if no mapping
// covers that exact generated line (the last segment at or before the
// column on that line is used, matching standard source-map consumer
// behavior).
func (c *Consumer) Original(genLine, genCol int) (source string, origLine, origCol int, ok bool) {
	best := -1
	for i, s := range c.segments {
		if s.genLine != genLine {
			continue
		}
		if s.genCol > genCol {
			continue
		}
		if best == -1 || s.genCol > c.segments[best].genCol {
			best = i
		}
	}
	if best == -1 {
		return "", 0, 0, false
	}
	s := c.segments[best]
	return s.source, s.origLine, s.origCol, true
}

// Compose resolves every mapping in b through upstream, per §4.5:
// (output_pos) -> (this_input_pos) -> (original_pre_upstream_pos). The
// resulting document references upstream's sources list; mappings whose
// input position has no corresponding upstream mapping are left
// pointing at this build's own source.
func (b *Builder) Compose(upstream *Consumer) *Builder {
	composed := NewBuilder(b.File)
	for _, m := range b.mappings {
		source, origLine, origCol := m.Source, m.OriginalLine, m.OriginalColumn
		if resolvedSource, rl, rc, ok := upstream.Original(m.OriginalLine, m.OriginalColumn); ok {
			source, origLine, origCol = resolvedSource, rl, rc
		}
		composed.Add(m.GeneratedLine+1, m.GeneratedColumn+1, source, origLine+1, origCol+1, m.Name)
	}
	return composed
}
