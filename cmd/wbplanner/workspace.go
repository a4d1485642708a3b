package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"wbplanner/internal/automapper"
	"wbplanner/internal/cache"
	"wbplanner/internal/navigator"
	"wbplanner/internal/plan"
	"wbplanner/internal/schema"
)

// workspace wires the planner components for one command run.
type workspace struct {
	id   uuid.UUID
	keep bool // leave the cache session open when the run ends

	cache  *cache.Cache
	nav    *navigator.Navigator
	mapper *automapper.AutoMapper
	stores []cache.Store
	log    logrus.FieldLogger
}

// openWorkspace loads the schema, opens the cache stores and, when
// withRules is set, compiles the automapper rules.
func (a *app) openWorkspace(ctx context.Context, withRules bool) (*workspace, error) {
	if a.cfg.Schema == "" {
		return nil, errors.New("no schema configured, use --schema")
	}

	graph, err := schema.LoadFile(a.cfg.Schema)
	if err != nil {
		return nil, err
	}

	w := &workspace{id: uuid.New()}
	if a.cfg.Session != "" {
		// Validated by config.
		w.id = uuid.MustParse(a.cfg.Session)
		w.keep = true
	}

	w.log = a.log.WithField("session", w.id.String())

	opts := []cache.Option{cache.WithLogger(w.log)}

	if a.cfg.Cache.LocalPath != "" {
		local, err := cache.OpenSQLiteStore(a.cfg.Cache.LocalPath)
		if err != nil {
			return nil, err
		}

		w.stores = append(w.stores, local)
		opts = append(opts, cache.WithLocalStore(local))
	}

	if a.cfg.Cache.RedisURL != "" {
		session, err := cache.NewRedisStore(a.cfg.Cache.RedisURL, w.id.String(), a.cfg.Cache.SessionTTL)
		if err != nil {
			w.close()
			return nil, err
		}

		w.stores = append(w.stores, session)
		opts = append(opts, cache.WithSessionStore(session))
	}

	w.cache = cache.New(opts...)
	if err := w.cache.Restore(ctx); err != nil {
		w.close()
		return nil, err
	}

	w.nav = navigator.New(graph,
		navigator.WithCache(w.cache),
		navigator.WithMaxDepth(a.cfg.MaxDepth),
		navigator.WithLogger(w.log),
	)

	if !withRules {
		return w, nil
	}

	rules := &automapper.Rules{}
	if a.cfg.Rules != "" {
		if rules, err = automapper.LoadRules(a.cfg.Rules); err != nil {
			w.close()
			return nil, err
		}
	}

	compiled, diags := automapper.Compile(rules, w.nav)
	for _, d := range diags.Warnings {
		w.log.WithField("code", d.Code).Warn(d.String())
	}

	if diags.HasErrors() {
		w.close()
		return nil, fmt.Errorf("invalid rules %s: %w", a.cfg.Rules, diags.Error())
	}

	w.mapper, err = automapper.New(w.nav, compiled,
		automapper.WithCache(w.cache),
		automapper.WithLogger(w.log),
	)
	if err != nil {
		w.close()
		return nil, err
	}

	return w, nil
}

func (w *workspace) newSession(baseTable string) (*plan.Session, error) {
	return plan.NewSession(w.nav, w.mapper, baseTable, w.sessionOptions()...)
}

func (w *workspace) sessionOptions() []plan.Option {
	return []plan.Option{
		plan.WithID(w.id),
		plan.WithCache(w.cache),
		plan.WithLogger(w.log),
	}
}

// finish persists the cache and closes the stores. A fresh session is
// ended with the run; a reused one stays open for the next run.
func (w *workspace) finish(ctx context.Context, s *plan.Session) error {
	var (
		errs *multierror.Error
		err  error
	)

	switch {
	case s != nil && w.keep:
		err = s.Save(ctx)
	case s != nil:
		err = s.Close(ctx)
	case w.keep:
		err = w.cache.Persist(ctx)
	}

	if err != nil {
		errs = multierror.Append(errs, err)
	}

	if err := w.close(); err != nil {
		errs = multierror.Append(errs, err)
	}

	return errs.ErrorOrNil()
}

func (w *workspace) close() error {
	var errs *multierror.Error

	for _, s := range w.stores {
		if err := s.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	w.stores = nil

	return errs.ErrorOrNil()
}

// joinErr returns err, with cleanup's error appended when there is one.
func joinErr(err, cleanup error) error {
	if cleanup == nil {
		return err
	}

	return multierror.Append(err, cleanup)
}
