package layout

import (
	"errors"
	"sync"
)

// fakeElement is an in-memory Element. Height may depend on the current
// font size so tests can model text wrapping.
type fakeElement struct {
	mu     sync.Mutex
	rect   Rect
	styles map[string]string
	props  map[string]string
	height func(fontSize float64) float64

	setCalls []string
	setErr   error
}

func newFakeElement() *fakeElement {
	return &fakeElement{
		styles: map[string]string{},
		props:  map[string]string{},
	}
}

func (e *fakeElement) BoundingRect() (Rect, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.rect
	if e.height != nil {
		fs, _ := ParsePixels(e.styles["font-size"])
		r.Height = e.height(fs)
		r.Bottom = r.Top + r.Height
	}
	return r, nil
}

func (e *fakeElement) ComputedStyle(property string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.styles[property], nil
}

func (e *fakeElement) SetStyle(property, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.setErr != nil {
		return e.setErr
	}
	e.styles[property] = value
	e.setCalls = append(e.setCalls, property+"="+value)
	return nil
}

func (e *fakeElement) Property(name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.props[name], nil
}

// fakeDocument maps selectors to elements.
type fakeDocument struct {
	url      string
	elements map[string]*fakeElement
	queryErr error
}

func (d *fakeDocument) Query(selector string) (Element, error) {
	if d.queryErr != nil {
		return nil, d.queryErr
	}
	el, ok := d.elements[selector]
	if !ok {
		return nil, nil
	}
	return el, nil
}

func (d *fakeDocument) URL() (string, error) {
	return d.url, nil
}

var errFake = errors.New("fake failure")

// wrapsAbove returns a height function that renders two lines while the
// font size is above limit and one line otherwise. Line height is the
// browser's "normal", 1.2 times the font size.
func wrapsAbove(limit float64) func(float64) float64 {
	return func(fs float64) float64 {
		if fs > limit {
			return fs * 1.2 * 2
		}
		return fs * 1.2
	}
}
