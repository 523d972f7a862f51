package app

import "github.com/rs/zerolog"

// Counts is the per-kind outcome of an idempotent insert pass.
type Counts struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

func (c Counts) Total() int { return c.Inserted + c.Skipped + c.Failed }

func (c *Counts) add(o Counts) {
	c.Inserted += o.Inserted
	c.Skipped += o.Skipped
	c.Failed += o.Failed
}

func (c Counts) MarshalZerologObject(e *zerolog.Event) {
	e.Int("inserted", c.Inserted).Int("skipped", c.Skipped).Int("failed", c.Failed)
}
