package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"scenario-visualizer/internal/log"
	"scenario-visualizer/internal/playback"
)

// fixtureFile is the on-disk layout, the same shape as a json-server db.json.
type fixtureFile struct {
	Scenarios []playback.Scenario `yaml:"scenarios"`
}

// fixtureStore is a read-only set of scenarios keyed by id, kept in file order.
type fixtureStore struct {
	byID  map[int]*playback.Scenario
	order []int
}

// loadFixtures reads scenarios from a YAML file; JSON files parse as YAML too.
func loadFixtures(path string) (*fixtureStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}

	store := &fixtureStore{byID: make(map[int]*playback.Scenario, len(f.Scenarios))}
	for i := range f.Scenarios {
		sc := &f.Scenarios[i]
		if _, dup := store.byID[sc.ID]; dup {
			return nil, fmt.Errorf("duplicate scenario id %d in %s", sc.ID, path)
		}
		if sc.Vehicles == nil {
			sc.Vehicles = []playback.Vehicle{}
		}
		for _, v := range sc.Vehicles {
			if !v.Direction.Valid() {
				log.Warn("Vehicle has an unknown direction and will not move", "scenarioID", sc.ID, "vehicleID", v.ID, "direction", string(v.Direction))
			}
		}
		store.byID[sc.ID] = sc
		store.order = append(store.order, sc.ID)
	}
	return store, nil
}

func (s *fixtureStore) list() []*playback.Scenario {
	out := make([]*playback.Scenario, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

func (s *fixtureStore) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/scenarios", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.list())
	}).Methods(http.MethodGet)
	r.HandleFunc("/scenarios/{id:[0-9]+}", s.handleScenario).Methods(http.MethodGet)
	r.Use(withLogging, withCORS)
	return r
}

func (s *fixtureStore) handleScenario(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid scenario id", http.StatusBadRequest)
		return
	}
	sc, ok := s.byID[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// withCORS lets a board served from another origin fetch fixtures directly.
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		h.ServeHTTP(w, r)
	})
}

func runFixtures(ctx context.Context, opts *FixtureOptions) error {
	store, err := loadFixtures(opts.File)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           store.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Fixture server starting", "addr", opts.Addr, "file", opts.File, "scenarios", len(store.order))
		return listenAndServe(srv)
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(srv, 5*time.Second)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
