package pricebook

import "testing"

func TestPMBook_MergeIsOrderIndependent(t *testing.T) {
	tests := []struct {
		name  string
		apply func(b *PMBook)
	}{
		{
			name: "ask-then-bid",
			apply: func(b *PMBook) {
				b.ApplyAsk("tok", 0.45)
				b.ApplyBid("tok", 0.40)
			},
		},
		{
			name: "bid-then-ask",
			apply: func(b *PMBook) {
				b.ApplyBid("tok", 0.40)
				b.ApplyAsk("tok", 0.45)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewPMBook()
			tt.apply(b)

			q, ok := b.Quote("tok")
			if !ok {
				t.Fatal("expected quote to be present")
			}
			if q.Ask != 0.45 {
				t.Errorf("expected ask 0.45, got %f", q.Ask)
			}
			if q.Bid != 0.40 {
				t.Errorf("expected bid 0.40, got %f", q.Bid)
			}
		})
	}
}

func TestPMBook_NewSideOverwritesOldValue(t *testing.T) {
	b := NewPMBook()

	b.ApplyAsk("tok", 0.45)
	b.ApplyBid("tok", 0.40)
	b.ApplyAsk("tok", 0.50)

	q, _ := b.Quote("tok")
	if q.Ask != 0.50 {
		t.Errorf("expected ask overwritten to 0.50, got %f", q.Ask)
	}
	if q.Bid != 0.40 {
		t.Errorf("expected bid preserved at 0.40, got %f", q.Bid)
	}
}

func TestPMBook_ZeroPriceLeavesSideUntouched(t *testing.T) {
	b := NewPMBook()

	b.ApplyAsk("tok", 0.45)
	b.ApplyAsk("tok", 0)
	b.ApplyBid("tok", -0.1)

	q, ok := b.Quote("tok")
	if !ok {
		t.Fatal("expected quote to be present")
	}
	if q.Ask != 0.45 {
		t.Errorf("expected ask preserved at 0.45, got %f", q.Ask)
	}
	if q.Bid != 0 {
		t.Errorf("expected bid unset, got %f", q.Bid)
	}
}

func TestPMBook_UnknownTokenNotPresent(t *testing.T) {
	b := NewPMBook()

	_, ok := b.Quote("never-seen")
	if ok {
		t.Error("expected lookup of unknown token to report not present")
	}
}

func TestPMBook_IdempotentOnIdenticalInput(t *testing.T) {
	b := NewPMBook()

	b.ApplyAsk("tok", 0.45)
	before, _ := b.Quote("tok")

	b.ApplyAsk("tok", 0.45)
	after, _ := b.Quote("tok")

	if before != after {
		t.Errorf("expected identical quote after identical update, got %+v then %+v", before, after)
	}
}

func TestKalshiBook_DerivedNoSides(t *testing.T) {
	tests := []struct {
		name   string
		yesBid float64
		yesAsk float64
	}{
		{"mid-range", 0.54, 0.55},
		{"wide-spread", 0.10, 0.90},
		{"degenerate", 0.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewKalshiBook()
			b.Apply("TICK", tt.yesBid, tt.yesAsk)

			q, ok := b.Quote("TICK")
			if !ok {
				t.Fatal("expected quote to be present")
			}

			// Exact identities, not approximate: no_bid + yes_ask = 1 and
			// no_ask + yes_bid = 1.
			if q.NoBid+q.YesAsk != 1.0 {
				t.Errorf("no_bid + yes_ask = %f, want 1", q.NoBid+q.YesAsk)
			}
			if q.NoAsk+q.YesBid != 1.0 {
				t.Errorf("no_ask + yes_bid = %f, want 1", q.NoAsk+q.YesBid)
			}
			if q.YesBid <= q.YesAsk && q.NoBid > q.NoAsk {
				t.Errorf("derived NO inverted: bid %f > ask %f", q.NoBid, q.NoAsk)
			}
		})
	}
}

func TestKalshiBook_ApplyReplacesAllSides(t *testing.T) {
	b := NewKalshiBook()

	b.Apply("TICK", 0.54, 0.55)
	b.Apply("TICK", 0.60, 0.62)

	q, _ := b.Quote("TICK")
	if q.YesBid != 0.60 || q.YesAsk != 0.62 {
		t.Errorf("expected yes sides replaced, got %+v", q)
	}
	if q.NoBid+q.YesAsk != 1.0 || q.NoAsk+q.YesBid != 1.0 {
		t.Errorf("expected no sides re-derived from the latest frame, got %+v", q)
	}
}
