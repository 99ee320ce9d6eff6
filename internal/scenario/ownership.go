package scenario

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/momentics/memlab/control"
	"github.com/momentics/memlab/ownership"
)

// Enemy is the owned resource in the ownership walkthrough.
type Enemy struct {
	X, Y float32
}

var enemySink *Enemy

// Ownership narrates unique and shared handle lifecycles, then times raw
// allocation against both handle kinds.
func Ownership(ctx context.Context, cfg control.Config, log zerolog.Logger) (Result, error) {
	var res Result
	say := func(format string, a ...any) {
		res.note(format, a...)
		log.Debug().Msgf(format, a...)
	}
	drop := func(*Enemy) { say("destroyed enemy") }

	say("unique: spawn enemy")
	func() {
		u := ownership.NewUnique(&Enemy{}, drop)
		defer u.Release()
		moved := u.Move()
		defer moved.Release()
		say("unique: moved to new owner, source valid=%t", u.Valid())
		say("unique: owner going out of scope")
	}()

	say("shared: create")
	a := ownership.NewShared(&Enemy{}, drop)
	say("shared: use count %d", a.UseCount())
	w := a.Downgrade()
	func() {
		b := a.Clone()
		defer b.Release()
		say("shared: new assignment, use count %d", a.UseCount())
	}()
	say("shared: clone out of scope, use count %d", a.UseCount())
	a.Release()
	say("shared: last owner released, use count %d", a.UseCount())
	if _, ok := w.Upgrade(); !ok {
		say("weak: upgrade after drop failed, expired=%t", w.Expired())
	}

	n := cfg.Iterations
	m, err := measure(ctx, "raw", func(ctx context.Context) error {
		for lo, hi := range chunks(n) {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				e := &Enemy{}
				e.X += 1
				e.Y += 1
				enemySink = e
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	res.add(m)

	m, err = measure(ctx, "unique", func(ctx context.Context) error {
		for lo, hi := range chunks(n) {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				u := ownership.NewUnique(&Enemy{}, nil)
				e := u.Get()
				e.X += 1
				e.Y += 1
				enemySink = e
				u.Release()
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	res.add(m)

	m, err = measure(ctx, "shared", func(ctx context.Context) error {
		for lo, hi := range chunks(n) {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				s := ownership.NewShared(&Enemy{}, nil)
				e := s.Get()
				e.X += 1
				e.Y += 1
				enemySink = e
				s.Release()
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	enemySink = nil
	res.add(m)
	return res, nil
}
