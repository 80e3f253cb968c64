package transport

import (
	"fmt"
	"sort"
)

type Outcome uint8

const (
	Absorbed Outcome = iota // photon absorbed inside the domain
	Escaped                 // photon ended at or beyond the domain radius
	Diverged                // photon hit the interaction ceiling while still inside
)

func (o Outcome) String() string {
	switch o {
	case Absorbed:
		return "absorbed"
	case Escaped:
		return "escaped"
	case Diverged:
		return "diverged"
	}
	return fmt.Sprintf("outcome(%d)", uint8(o))
}

// DivergedPhoton records a photon that exhausted MaxInteractions.
type DivergedPhoton struct {
	Index        int
	Position     Point3
	Interactions int
}

// OutcomeLog tallies photon outcomes for one worker. Logs from several
// workers are combined with Merge once they are done.
type OutcomeLog struct {
	counts       [3]int
	crossings    int
	interactions int
	diverged     []DivergedPhoton
}

func (l *OutcomeLog) record(index int, r *PhotonResult) {
	l.counts[r.Outcome]++
	l.interactions += r.Interactions
	if r.Crossed {
		l.crossings++
	}
	if r.Outcome == Diverged {
		l.diverged = append(l.diverged, DivergedPhoton{
			Index:        index,
			Position:     r.Path[len(r.Path)-1],
			Interactions: r.Interactions,
		})
	}
}

// Merge folds other into l.
func (l *OutcomeLog) Merge(other *OutcomeLog) {
	for i := range l.counts {
		l.counts[i] += other.counts[i]
	}
	l.crossings += other.crossings
	l.interactions += other.interactions
	l.diverged = append(l.diverged, other.diverged...)
}

// Count returns how many photons ended with outcome o.
func (l *OutcomeLog) Count(o Outcome) int { return l.counts[o] }

// Total returns how many photons were recorded.
func (l *OutcomeLog) Total() int { return l.counts[0] + l.counts[1] + l.counts[2] }

// Diverged returns the diverged photons ordered by photon index.
func (l *OutcomeLog) Diverged() []DivergedPhoton {
	out := append([]DivergedPhoton(nil), l.diverged...)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
