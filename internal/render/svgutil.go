package render

import "bytes"

// sanitizeSVG normalises style spellings oksvg does not accept.
func sanitizeSVG(svg []byte) []byte {
	out := bytes.ReplaceAll(svg, []byte("fill: #"), []byte("fill:#"))
	out = bytes.ReplaceAll(out, []byte("stroke: #"), []byte("stroke:#"))
	out = bytes.ReplaceAll(out, []byte("fill:000000"), []byte("fill:#000000"))
	out = bytes.ReplaceAll(out, []byte("stop-color: #"), []byte("stop-color:#"))
	return out
}
