package catalog

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sadopc/breathe/internal/store"
)

// MethodStore persists custom methods.
type MethodStore interface {
	ListMethods() ([]store.Method, error)
	CreateMethod(m store.Method) (*store.Method, error)
	CreateMethods(ms []store.Method) error
	DeleteMethod(id string) error
}

// Catalog serves built-in patterns together with the user's custom ones.
type Catalog struct {
	store  MethodStore
	logger *slog.Logger
}

func New(s MethodStore, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Catalog{store: s, logger: logger}
}

// All returns built-ins followed by custom methods in creation order.
func (c *Catalog) All() ([]Pattern, error) {
	methods, err := c.store.ListMethods()
	if err != nil {
		return nil, fmt.Errorf("load custom methods: %w", err)
	}
	out := make([]Pattern, 0, len(Builtins)+len(methods))
	out = append(out, Builtins...)
	for _, m := range methods {
		out = append(out, FromMethod(m))
	}
	return out, nil
}

// Lookup finds a pattern by id. Unknown ids fall back to the first
// built-in; found reports whether id matched.
func (c *Catalog) Lookup(id string) (p Pattern, found bool, err error) {
	all, err := c.All()
	if err != nil {
		return Builtins[0], false, err
	}
	for _, cand := range all {
		if cand.ID == id {
			return cand, true, nil
		}
	}
	return Builtins[0], false, nil
}

// prepare validates p and gives it a fresh id and display defaults.
func prepare(p Pattern) (Pattern, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return Pattern{}, err
	}
	p.ID = NewCustomID()
	p.Custom = true
	if p.Icon == "" {
		p.Icon = Icons[0]
	}
	if p.Color == "" {
		p.Color = Colors[0]
	}
	return p, nil
}

// Add validates p, assigns it a fresh id and saves it.
func (c *Catalog) Add(p Pattern) (Pattern, error) {
	p, err := prepare(p)
	if err != nil {
		return Pattern{}, err
	}

	m, err := c.store.CreateMethod(p.ToMethod())
	if err != nil {
		return Pattern{}, fmt.Errorf("save method: %w", err)
	}
	c.logger.Info("custom method created", "id", m.ID, "title", m.Title)
	return FromMethod(*m), nil
}

// Import saves every pattern in ps as a new custom method. All patterns
// are validated first and then stored together, so a failure leaves the
// catalog unchanged.
func (c *Catalog) Import(ps []Pattern) ([]Pattern, error) {
	out := make([]Pattern, 0, len(ps))
	methods := make([]store.Method, 0, len(ps))
	for i, p := range ps {
		p, err := prepare(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %d (%q): %w", i+1, ps[i].Name, err)
		}
		out = append(out, p)
		methods = append(methods, p.ToMethod())
	}
	if err := c.store.CreateMethods(methods); err != nil {
		return nil, fmt.Errorf("save methods: %w", err)
	}
	c.logger.Info("custom methods imported", "count", len(out))
	return out, nil
}

// Remove deletes a custom method. Built-ins cannot be removed.
func (c *Catalog) Remove(id string) error {
	for _, b := range Builtins {
		if b.ID == id {
			return fmt.Errorf("%w: %q is built in", ErrInvalidMethod, id)
		}
	}
	if err := c.store.DeleteMethod(id); err != nil {
		return err
	}
	c.logger.Info("custom method removed", "id", id)
	return nil
}
