//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	"epigrid/internal/app"
	"epigrid/internal/core"
	"epigrid/internal/engine"
	"epigrid/internal/sims/epidemic"

	"github.com/hajimehoshi/ebiten/v2"
)

type kvList []string

func (l *kvList) String() string {
	return strings.Join(*l, ",")
}

func (l *kvList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func (l kvList) toMap() map[string]string {
	m := make(map[string]string, len(l))
	for _, kv := range l {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		m[parts[0]] = parts[1]
	}
	return m
}

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	scenarioPath := flag.String("scenario", "", "JSON scenario file overriding the flag configuration")
	var overrides kvList
	flag.Var(&overrides, "set", "simulation parameter override in key=value form (repeatable)")
	flag.Parse()

	var sim core.Sim
	if *scenarioPath != "" {
		sim = loadScenarioSim(*scenarioPath)
	} else {
		factory, ok := core.Sims()[cfg.Sim]
		if !ok {
			log.Fatalf("unknown sim %q", cfg.Sim)
		}
		sim = factory(overrides.toMap())
		sim.Reset(cfg.Seed)
	}

	game := app.New(sim, cfg)
	size := sim.Size()

	ebiten.SetWindowTitle("epigrid — " + sim.Name())
	ebiten.SetWindowSize(size.W*cfg.Scale+cfg.Panel, size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}

func loadScenarioSim(path string) core.Sim {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("open scenario: %v", err)
	}
	defer f.Close()

	sc, err := engine.LoadScenario(f)
	if err != nil {
		log.Fatalf("load scenario: %v", err)
	}
	world, err := epidemic.NewFromScenario(sc)
	if err != nil {
		log.Fatalf("build scenario world: %v", err)
	}
	return world
}
