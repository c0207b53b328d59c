package mock

import "github.com/fwojciec/newsmd"

var _ newsmd.Converter = (*Converter)(nil)

// Converter is a mock implementation of newsmd.Converter.
type Converter struct {
	ConvertFn func(nodes []newsmd.Node) (string, error)
}

func (c *Converter) Convert(nodes []newsmd.Node) (string, error) {
	return c.ConvertFn(nodes)
}
