package citation

import (
	"math"
	"sync"
	"time"
)

// Card layout constants, in CSS pixels.
const (
	NarrowBreakpoint = 1024
	CardWidth        = 240
	CardMargin       = 16
	CardGap          = 8
)

// HighlightDuration is how long a jumped-to reference stays highlighted.
const HighlightDuration = 2 * time.Second

// HighlightClass is applied to a reference while it is highlighted.
const HighlightClass = "citation-highlight"

// Rect is a marker's bounding box relative to the viewport.
type Rect struct {
	Top    float64
	Bottom float64
	Left   float64
}

// Viewport describes the window and the content container at event time.
type Viewport struct {
	Width        float64
	ScrollY      float64
	ContainerTop float64 // container's top relative to the viewport
}

// Narrow reports whether the card floats below markers instead of sitting
// in the margin.
func (v Viewport) Narrow() bool {
	return v.Width < NarrowBreakpoint
}

// Position is where the card is drawn. Floating cards use page
// coordinates; margin cards use Top relative to the content container.
type Position struct {
	Top      float64
	Left     float64
	Floating bool
}

// CardPosition computes the card position for a marker.
func CardPosition(marker Rect, vp Viewport) Position {
	if vp.Narrow() {
		return Position{
			Top:      marker.Bottom + vp.ScrollY + CardGap,
			Left:     math.Max(CardMargin, math.Min(marker.Left, vp.Width-CardWidth)),
			Floating: true,
		}
	}
	containerTop := vp.ContainerTop + vp.ScrollY
	return Position{Top: marker.Top + vp.ScrollY - containerTop}
}

// Card is the currently displayed citation.
type Card struct {
	Citation Citation
	Pinned   bool
	Position Position
}

// Timer is the subset of *time.Timer used by Interaction.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// InteractionOption configures an Interaction.
type InteractionOption func(*Interaction)

// WithAfterFunc replaces the timer source used for highlight expiry.
func WithAfterFunc(fn AfterFunc) InteractionOption {
	return func(s *Interaction) {
		if fn != nil {
			s.afterFunc = fn
		}
	}
}

// Interaction tracks hover, pin and jump state for one rendered document.
// Marker number 0 means "none". It is safe for concurrent use.
type Interaction struct {
	mu          sync.Mutex
	citations   map[int]Citation
	active      int
	pinned      int
	pos         Position
	highlighted map[int]highlight
	gen         uint64
	afterFunc   AfterFunc
}

type highlight struct {
	timer Timer
	gen   uint64
}

// NewInteraction creates the interaction state for a set of citations.
func NewInteraction(citations []Citation, opts ...InteractionOption) *Interaction {
	s := &Interaction{
		citations:   make(map[int]Citation, len(citations)),
		highlighted: make(map[int]highlight),
		afterFunc:   realAfterFunc,
	}
	for _, c := range citations {
		s.citations[c.Number] = c
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hover shows marker n unless a card is pinned.
func (s *Interaction) Hover(n int, marker Rect, vp Viewport) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pinned != 0 {
		return
	}
	s.pos = CardPosition(marker, vp)
	s.active = n
}

// Leave hides the hovered card. Moving directly onto another marker keeps
// it, as does a pinned card.
func (s *Interaction) Leave(ontoMarker bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pinned != 0 || ontoMarker {
		return
	}
	s.active = 0
}

// Click pins marker n, or unpins it when it is already pinned.
func (s *Interaction) Click(n int, marker Rect, vp Viewport) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = CardPosition(marker, vp)
	if s.pinned == n {
		s.pinned, s.active = 0, 0
		return
	}
	s.pinned, s.active = n, n
}

// ClickOutside clears any pinned card. Clicks on markers or inside the
// card must not be reported here.
func (s *Interaction) ClickOutside() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pinned == 0 {
		return
	}
	s.pinned, s.active = 0, 0
}

// Jump closes the card and highlights reference n for HighlightDuration.
// It returns the anchor id to scroll into view, or "" when n is not a
// known citation.
func (s *Interaction) Jump(n int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pinned, s.active = 0, 0
	if _, ok := s.citations[n]; !ok {
		return ""
	}

	if h, ok := s.highlighted[n]; ok {
		h.timer.Stop()
	}
	s.gen++
	gen := s.gen
	timer := s.afterFunc(HighlightDuration, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.highlighted[n].gen == gen {
			delete(s.highlighted, n)
		}
	})
	s.highlighted[n] = highlight{timer: timer, gen: gen}
	return AnchorID(n)
}

// Card returns the card to display. Pinned wins over hover; ok is false
// when nothing is shown or the marker has no matching citation.
func (s *Interaction) Card() (Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.active
	if s.pinned != 0 {
		n = s.pinned
	}
	c, ok := s.citations[n]
	if !ok {
		return Card{}, false
	}
	return Card{Citation: c, Pinned: s.pinned != 0, Position: s.pos}, true
}

// Highlighted reports whether reference n currently carries HighlightClass.
func (s *Interaction) Highlighted(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.highlighted[n]
	return ok
}

// Close stops pending highlight timers. Call it when the document view is
// torn down.
func (s *Interaction) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for n, h := range s.highlighted {
		h.timer.Stop()
		delete(s.highlighted, n)
	}
	s.pinned, s.active = 0, 0
}
