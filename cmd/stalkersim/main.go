package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"stalkercraft.ai/internal/persistence/archive"
	"stalkercraft.ai/internal/persistence/indexdb"
	persistlog "stalkercraft.ai/internal/persistence/log"
	"stalkercraft.ai/internal/persistence/snapshot"
	"stalkercraft.ai/internal/sim/gridworld"
	"stalkercraft.ai/internal/sim/stalker"
	"stalkercraft.ai/internal/sim/stalker/feature/visibility"
	"stalkercraft.ai/internal/sim/stalker/kernel/model"
	"stalkercraft.ai/internal/sim/tuning"
	"stalkercraft.ai/internal/telemetry"
	"stalkercraft.ai/internal/transport/observer"
)

func main() {
	var (
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		seed       = flag.Int64("seed", 1337, "world and agent seed")
		ticks      = flag.Int("ticks", 2*visibility.DayLength, "ticks to simulate")
		tickRate   = flag.Int("tick_rate", 0, "ticks per second (0: as fast as possible)")
		players    = flag.Int("players", 2, "number of wandering players")
		hills      = flag.Int("hills", 4, "terrain hill amplitude")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite event index")
		observe    = flag.String("observe_addr", "127.0.0.1:8091", "loopback observer listen address (empty to disable)")
		snapEvery  = flag.Int("snapshot_every", 6000, "write an agent snapshot every N ticks (0 to disable)")
		resume     = flag.String("resume", "", "resume the agent from a snapshot file")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[stalkersim] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	cfg := tune.StalkerConfig()

	runDir := filepath.Join(*dataDir, "runs", time.Now().UTC().Format("20060102T150405Z"))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		logger.Fatalf("create run dir: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	events := persistlog.NewEventLogger(runDir, visibility.DayLength)
	defer events.Close()
	sinks := telemetry.Multi{events}

	indexPath := filepath.Join(runDir, "index.sqlite")
	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(indexPath)
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		sinks = append(sinks, idx)
	}

	if addr := strings.TrimSpace(*observe); addr != "" {
		obs := observer.NewServer(logger)
		sinks = append(sinks, obs)
		srv, err := serveObserver(ctx, addr, obs, logger)
		if err != nil {
			logger.Fatalf("observer: %v", err)
		}
		defer srv.Close()
	}

	start := uint64(1)
	var resumed *snapshot.SnapshotV1
	if p := strings.TrimSpace(*resume); p != "" {
		snap, err := snapshot.ReadSnapshot(p)
		if err != nil {
			logger.Fatalf("resume: %v", err)
		}
		resumed = &snap
		*seed = snap.Seed
		start = snap.Header.Tick
		logger.Printf("resuming %s at tick %d", p, start)
	}

	rng := rand.New(rand.NewSource(*seed))
	w := gridworld.New(gridworld.Options{Seed: *seed, HillAmplitude: *hills})
	w.Tick(start)
	if resumed != nil {
		w.SetTimeOfDay(resumed.TimeOfDay)
	}

	var people []*gridworld.Entity
	for i := 0; i < max(1, *players); i++ {
		people = append(people, w.Spawn(model.CategoryPlayer, w.Ground(rng.Intn(64)-32, rng.Intn(64)-32), gridworld.SpawnOptions{Health: 1e9}))
	}

	body := w.SpawnBody(model.CategoryStalker, w.Ground(0, 0))
	agent := model.NewAgent(body.ID(), body.Pos(), cfg)
	s := stalker.New(agent, w, body.Navigator(), body, cfg, stalker.Options{
		Rand:   rand.New(rand.NewSource(*seed + 1)),
		Logger: log.New(os.Stdout, "[stalker] ", log.LstdFlags|log.Lmicroseconds),
		Sink:   sinks,
	})
	pos := s.Planner().InitialPlacement(people[0].Pos())
	body.TeleportTo(pos)
	agent.Pos = pos
	if !s.OnAddedToWorld(start) {
		logger.Fatalf("stalker %d removed on add", agent.ID)
	}
	if resumed != nil {
		lookup := func(id model.EntityID) (model.EntityRef, bool) {
			e, ok := w.Entity(id)
			if !ok {
				return nil, false
			}
			return e, true
		}
		if err := snapshot.Restore(agent, *resumed, lookup); err != nil {
			logger.Fatalf("restore: %v", err)
		}
		pos = agent.Pos
		body.TeleportTo(pos)
	}
	logger.Printf("run %s: %d players, stalker at %.0f,%.0f,%.0f", runDir, len(people), pos.X, pos.Y, pos.Z)

	var pace <-chan time.Time
	if *tickRate > 0 {
		t := time.NewTicker(time.Second / time.Duration(*tickRate))
		defer t.Stop()
		pace = t.C
	}

	visible := 0
	now := start
	for i := 0; i < *ticks && !agent.Removed; i++ {
		if pace != nil {
			select {
			case <-ctx.Done():
			case <-pace:
			}
		}
		if ctx.Err() != nil {
			logger.Printf("interrupted at tick %d", now)
			break
		}
		now++
		w.Tick(now)
		wander(w, rng, people, now)
		s.Tick(now, stalker.Sense{Pos: body.Pos(), Facing: body.Facing(), InLiquid: body.InLiquid()})
		if visibility.Evaluate(w, body.Pos(), int64(now)).Visible {
			visible++
		}
		if *snapEvery > 0 && (now%uint64(*snapEvery) == 0 || (now+1)%visibility.DayLength == 0) {
			writeSnapshot(runDir, agent, now, *seed, w.TimeOfDay(), logger)
		}
	}
	if *snapEvery > 0 {
		writeSnapshot(runDir, agent, now, *seed, w.TimeOfDay(), logger)
	}

	logger.Printf("simulated %d ticks; visible %d; health %.0f", now-start, visible, agent.Health)
	if st := events.Stats(); st.Lines > 0 {
		logger.Printf("event log: %d lines in %d segments", st.Lines, st.Segments)
	}
	if idx == nil {
		return
	}
	st := idx.Stats()
	if err := idx.Close(); err != nil {
		logger.Printf("close index: %v", err)
	}
	summarize(indexPath, st, logger)
}

func writeSnapshot(runDir string, agent *model.Agent, now uint64, seed, tod int64, logger *log.Logger) {
	snap := snapshot.Capture(agent, now, seed, tod)
	snap.Header.RunID = filepath.Base(runDir)
	path := filepath.Join(runDir, "snapshots", fmt.Sprintf("%d.snap.zst", now))
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		logger.Printf("snapshot: %v", err)
		return
	}
	if day, dst, ok, err := archive.ArchiveDaySnapshot(runDir, path, snap, visibility.DayLength); err != nil {
		logger.Printf("archive: %v", err)
	} else if ok {
		logger.Printf("archived day %d: %s", day, dst)
	}
}

// wander nudges each player one column now and then, and puts them to bed
// at nightfall.
func wander(w *gridworld.World, rng *rand.Rand, people []*gridworld.Entity, now uint64) {
	night := visibility.IsNight(w.TimeOfDay())
	for _, p := range people {
		if !p.Alive() {
			continue
		}
		if night != p.Sleeping() && rng.Intn(200) == 0 {
			w.SetSleeping(p, night)
		}
		if p.Sleeping() || now%20 != 0 {
			continue
		}
		c := p.Pos().Cell()
		dx, dz := rng.Intn(3)-1, rng.Intn(3)-1
		w.Move(p, w.Ground(c.X+dx, c.Z+dz))
	}
}

func summarize(path string, st indexdb.Stats, logger *log.Logger) {
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		logger.Printf("reopen index: %v", err)
		return
	}
	defer idx.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, k := range []telemetry.Kind{
		telemetry.KindTargetAcquired,
		telemetry.KindStuck,
		telemetry.KindRespawned,
		telemetry.KindRespawnFailed,
		telemetry.KindBlockBroken,
		telemetry.KindDoorBroken,
		telemetry.KindGateBroken,
		telemetry.KindAttack,
		telemetry.KindDistracted,
		telemetry.KindWake,
	} {
		n, err := idx.CountByKind(ctx, k)
		if err != nil {
			logger.Printf("count %s: %v", k, err)
			continue
		}
		logger.Printf("%-16s %d", k, n)
	}
	if st.DropTotal > 0 {
		logger.Printf("index dropped %d events", st.DropTotal)
	}
}

func serveObserver(ctx context.Context, addr string, obs *observer.Server, logger *log.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/observe", obs.WSHandler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Printf("observer serve: %v", err)
		}
	}()
	logger.Printf("observer listening on %s", ln.Addr())
	return srv, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
