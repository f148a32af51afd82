package wow

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Characters looks up every name concurrently. Results keep the order of
// names; a failed lookup is reported in its Result rather than aborting the
// others.
func (c *Client) Characters(ctx context.Context, names []string) []Result {
	results := make([]Result, len(names))
	if c == nil {
		for i, name := range names {
			results[i] = Result{Name: name, Err: ErrNotConfigured}
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(c.fanout)
	for i, name := range names {
		g.Go(func() error {
			ch, err := c.Character(ctx, name)
			results[i] = Result{Name: name, Character: ch, Err: err}
			return nil
		})
	}
	g.Wait()
	return results
}
