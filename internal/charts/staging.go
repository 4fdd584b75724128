package charts

import (
	"slices"

	"vizkit/domain/chart"
	"vizkit/internal/errors"
	"vizkit/ports"
)

type batch struct {
	layer chart.Layer
	elems []chart.Element
}

// staging collects a paint in memory so a failed painter leaves the bound
// surface as it was. commit swaps the chart's elements in one pass.
type staging struct {
	target  ports.Surface
	batches []batch
}

func newStaging(target ports.Surface) *staging {
	return &staging{target: target}
}

func (s *staging) Attach(layer chart.Layer, owner string, elems ...chart.Element) error {
	if !slices.Contains(chart.Layers(), layer) {
		return errors.InvalidInputf("unknown layer %q", layer)
	}
	staged := make([]chart.Element, len(elems))
	for i, e := range elems {
		e.Owner = owner
		staged[i] = e
	}
	s.batches = append(s.batches, batch{layer: layer, elems: staged})
	return nil
}

func (s *staging) Clear(layer chart.Layer, owner string) {
	s.batches = slices.DeleteFunc(s.batches, func(b batch) bool { return b.layer == layer })
}

func (s *staging) Remove(owner string) {
	s.batches = nil
}

// Elements is what the layer will hold after commit, other owners included
func (s *staging) Elements(layer chart.Layer) []chart.Element {
	var out []chart.Element
	for _, b := range s.batches {
		if b.layer == layer {
			out = append(out, b.elems...)
		}
	}
	return append(s.target.Elements(layer), out...)
}

func (s *staging) Size() chart.Dimensions {
	return s.target.Size()
}

func (s *staging) commit(owner string) error {
	for _, layer := range chart.Layers() {
		s.target.Clear(layer, owner)
	}
	for _, b := range s.batches {
		if err := s.target.Attach(b.layer, owner, b.elems...); err != nil {
			s.target.Remove(owner)
			return err
		}
	}
	return nil
}
