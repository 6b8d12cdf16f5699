package ranking

import (
	"sort"

	"github.com/kailas-cloud/newsrank/internal/domain/channel"
	"github.com/kailas-cloud/newsrank/internal/domain/client"
	"github.com/kailas-cloud/newsrank/internal/domain/document"
)

// candidate is a document with every channel score it earned.
type candidate struct {
	doc           document.Document
	scores        map[channel.Kind]float64
	holdingWeight float64
	// held is set when the document names a held instrument, even if the
	// holdings channel was switched off for the request.
	held          bool
}

func (c *candidate) fired(k channel.Kind) bool {
	_, ok := c.scores[k]
	return ok
}

func (c *candidate) score(k channel.Kind) float64 { return c.scores[k] }

// firedKinds returns firing channels in canonical order.
func (c *candidate) firedKinds() []channel.Kind {
	out := make([]channel.Kind, 0, len(c.scores))
	for _, k := range channel.All() {
		if c.fired(k) {
			out = append(out, k)
		}
	}
	return out
}

// merge groups hits by document, keeping the per-channel maximum.
// The result is sorted by guid so channel order never matters.
func merge(outputs []channelOutput, eligible *eligibleSet) []candidate {
	byGUID := make(map[string]*candidate)
	for _, o := range outputs {
		for _, h := range o.hits {
			doc, ok := eligible.get(h.guid)
			if !ok {
				continue
			}
			c, ok := byGUID[h.guid]
			if !ok {
				c = &candidate{doc: *doc, scores: make(map[channel.Kind]float64, len(channel.All()))}
				byGUID[h.guid] = c
			}
			if prev, seen := c.scores[h.kind]; !seen || h.score > prev {
				c.scores[h.kind] = h.score
			}
			if h.holdingWeight > c.holdingWeight {
				c.holdingWeight = h.holdingWeight
			}
		}
	}

	out := make([]candidate, 0, len(byGUID))
	for _, c := range byGUID {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].doc.GUID() < out[j].doc.GUID() })
	return out
}

// markHeld flags candidates that name one of the client's holdings.
func markHeld(cands []candidate, p *client.Profile) {
	for i := range cands {
		for _, t := range cands[i].doc.Instruments() {
			if _, ok := p.HoldingWeight(t); ok {
				cands[i].held = true
				break
			}
		}
	}
}
