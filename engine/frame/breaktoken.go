package frame

import (
	"fmt"

	"github.com/npillmayer/outflow/core/dimen"
)

// BreakToken describes where layout of a box resumes in the next fragmentainer.
// A box without a break token has been laid out completely.
type BreakToken struct {
	ConsumedBlockSize dimen.Dimen // block size consumed in previous fragmentainers
	Sequence          int         // number of the fragment this token continues
	// MonolithicOverflow is the amount a monolithic box overflowed the
	// fragmentainer it was placed in. It is used to position continuations
	// on subsequent pages.
	MonolithicOverflow dimen.Dimen
	IsRepeated         bool // layout of repeatable content, repeated on every page
	IsBreakBefore      bool // break before the box, nothing placed yet
	ChildIndex         int  // child to resume layout at
	Child              *BreakToken
}

// Next returns a token for the following fragment after consuming size.
func (bt *BreakToken) Next(size dimen.Dimen) *BreakToken {
	n := &BreakToken{ConsumedBlockSize: size}
	if bt != nil {
		n.ConsumedBlockSize += bt.ConsumedBlockSize
		n.Sequence = bt.Sequence + 1
	}
	return n
}

// Consumed returns the consumed block size of a possibly nil token.
func (bt *BreakToken) Consumed() dimen.Dimen {
	if bt == nil {
		return 0
	}
	return bt.ConsumedBlockSize
}

// SequenceNumber returns the fragment sequence number of a possibly nil token.
func (bt *BreakToken) SequenceNumber() int {
	if bt == nil {
		return 0
	}
	return bt.Sequence
}

func (bt *BreakToken) String() string {
	if bt == nil {
		return "<no-break>"
	}
	s := fmt.Sprintf("break#%d(consumed=%s", bt.Sequence, bt.ConsumedBlockSize)
	if bt.IsRepeated {
		s += ",repeated"
	}
	if bt.MonolithicOverflow != 0 {
		s += fmt.Sprintf(",overflow=%s", bt.MonolithicOverflow)
	}
	return s + ")"
}
