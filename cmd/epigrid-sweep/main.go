package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"epigrid/internal/engine"
	"epigrid/internal/sims/epidemic"
)

type kvList []string

func (l *kvList) String() string {
	return strings.Join(*l, ",")
}

func (l *kvList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

type paramSet struct {
	virulence float64
	recovery  float64
	mobility  float64
}

func (p paramSet) String() string {
	return fmt.Sprintf("virulence=%.2f recovery=%.2f mobility=%.2f", p.virulence, p.recovery, p.mobility)
}

type runResult struct {
	params paramSet

	peakInfected     float64
	peakTick         int
	finalSusceptible float64
	finalDeceased    float64
	extinctionTick   int // first tick with no infected mass left, -1 if never
}

func main() {
	steps := flag.Int("steps", 365, "ticks to simulate per run")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	width := flag.Int("width", 96, "lattice width for sweep runs")
	height := flag.Int("height", 96, "lattice height for sweep runs")
	seed := flag.Int64("seed", 1337, "seed used for deterministic runs")
	csvOut := flag.Bool("csv", false, "emit the aggregate trajectory of a single run as CSV and exit")
	scenarioPath := flag.String("scenario", "", "JSON scenario file for the single run (implies -csv behavior uses it too)")
	var overrides kvList
	flag.Var(&overrides, "set", "parameter override in key=value form (repeatable)")
	flag.Parse()

	baseCfg := epidemic.DefaultConfig()
	baseCfg.Width = *width
	baseCfg.Height = *height
	baseCfg.Seed = *seed
	applyOverrides(&baseCfg, overrides)

	if *csvOut || *scenarioPath != "" {
		world := buildWorld(baseCfg, *scenarioPath)
		writeTrajectory(world, *steps)
		return
	}

	virulenceOptions := []float64{0.3, 0.6, 0.9, 1.2}
	recoveryOptions := []float64{0.2, 0.4, 0.6}
	mobilityOptions := []float64{0.5, 1.0, 1.5}

	var sets []paramSet
	for _, v := range virulenceOptions {
		for _, r := range recoveryOptions {
			for _, m := range mobilityOptions {
				sets = append(sets, paramSet{virulence: v, recovery: r, mobility: m})
			}
		}
	}

	jobs := make(chan paramSet)
	results := make([]runResult, 0, len(sets))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for set := range jobs {
				cfg := baseCfg
				cfg.Params.Virulence = set.virulence
				cfg.Params.Recovery = set.recovery
				cfg.Params.Mobility = set.mobility
				res := evaluate(cfg, *steps)
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
		}()
	}
	for _, set := range sets {
		jobs <- set
	}
	close(jobs)
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].peakInfected > results[j].peakInfected
	})

	fmt.Printf("%d runs of %d ticks on %dx%d (seed %d)\n\n", len(results), *steps, *width, *height, *seed)
	for _, res := range results {
		extinction := "never"
		if res.extinctionTick >= 0 {
			extinction = strconv.Itoa(res.extinctionTick)
		}
		fmt.Printf("%s  peak=%.1f%% @ tick %d  final S=%.1f%% D=%.1f%%  extinct=%s\n",
			res.params, res.peakInfected*100, res.peakTick,
			res.finalSusceptible*100, res.finalDeceased*100, extinction)
	}
}

func applyOverrides(cfg *epidemic.Config, overrides kvList) {
	if len(overrides) == 0 {
		return
	}
	m := make(map[string]string, len(overrides))
	for _, kv := range overrides {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		m[parts[0]] = parts[1]
	}
	// -width/-height/-seed only fill the gaps; explicit -set keys win
	if _, ok := m["w"]; !ok {
		m["w"] = strconv.Itoa(cfg.Width)
	}
	if _, ok := m["h"]; !ok {
		m["h"] = strconv.Itoa(cfg.Height)
	}
	if _, ok := m["seed"]; !ok {
		m["seed"] = strconv.FormatInt(cfg.Seed, 10)
	}
	*cfg = epidemic.FromMap(m)
}

func buildWorld(cfg epidemic.Config, scenarioPath string) *epidemic.World {
	if scenarioPath == "" {
		return epidemic.NewWithConfig(cfg)
	}
	f, err := os.Open(scenarioPath)
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

func evaluate(cfg epidemic.Config, steps int) runResult {
	world := epidemic.NewWithConfig(cfg)
	world.Reset(cfg.Seed)

	res := runResult{
		params: paramSet{
			virulence: cfg.Params.Virulence,
			recovery:  cfg.Params.Recovery,
			mobility:  cfg.Params.Mobility,
		},
		extinctionTick: -1,
	}
	for step := 1; step <= steps; step++ {
		world.Step()
		tot := world.Totals()
		if tot.Infected > res.peakInfected {
			res.peakInfected = tot.Infected
			res.peakTick = step
		}
		if tot.Infected == 0 && res.extinctionTick < 0 {
			res.extinctionTick = step
		}
		res.finalSusceptible = tot.Susceptible
		res.finalDeceased = tot.Deceased
	}
	return res
}

func writeTrajectory(world *epidemic.World, steps int) {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"tick", "susceptible", "infected", "recovered", "deceased"}); err != nil {
		log.Fatalf("write csv: %v", err)
	}
	record := func(tick int) {
		tot := world.Totals()
		row := []string{
			strconv.Itoa(tick),
			strconv.FormatFloat(tot.Susceptible, 'f', 6, 64),
			strconv.FormatFloat(tot.Infected, 'f', 6, 64),
			strconv.FormatFloat(tot.Recovered, 'f', 6, 64),
			strconv.FormatFloat(tot.Deceased, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			log.Fatalf("write csv: %v", err)
		}
	}
	record(0)
	for step := 1; step <= steps; step++ {
		world.Step()
		record(step)
	}
}
