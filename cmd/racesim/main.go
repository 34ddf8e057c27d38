// Package main provides an offline race simulation tool. It runs batches
// of races through the production engine at high speed and reports whether
// the outcomes and the betting economy look sane: how often the favorite
// wins, what the winner's opening odds average out to, and how close the
// realized house take lands to the configured edge.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/saddleup/internal/config"
	"github.com/yourusername/saddleup/internal/engine"
	"github.com/yourusername/saddleup/internal/models"
	"github.com/yourusername/saddleup/internal/odds"
)

var (
	configFile string
	races      int
	workers    int
	seed       int64
	speedup    float64
	bettors    int
	outputPath string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
	rootCmd.Flags().IntVar(&races, "races", 100, "Number of races to simulate")
	rootCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Concurrent race simulations")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 uses the current time)")
	rootCmd.Flags().Float64Var(&speedup, "speedup", 100, "Factor to compress race wall time by")
	rootCmd.Flags().IntVar(&bettors, "bettors", 50, "Simulated bettors per race")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report as JSON to this path")
}

var rootCmd = &cobra.Command{
	Use:   "racesim",
	Short: "Run offline batches of races through the production engine",
	Long: `Simulates complete race cycles without a server: generates fields,
runs them through the movement engine at high speed, settles a synthetic
betting pool against the finish order and reports outcome statistics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// raceOutcome is what one simulated race contributes to the report.
type raceOutcome struct {
	winnerOdds   float64
	favoriteWon  bool
	strengthRank int
	raceSeconds  float64
	staked       float64
	paid         float64
}

// report is the aggregated batch summary. StrengthRankWins counts wins by
// the winner's strength rank within its field, index 0 being the strongest
// horse on the card.
type report struct {
	Races            int     `json:"races"`
	Seed             int64   `json:"seed"`
	MeanRaceSeconds  float64 `json:"mean_race_seconds"`
	FavoriteWins     int     `json:"favorite_wins"`
	FavoriteWinRate  float64 `json:"favorite_win_rate"`
	StrengthRankWins []int   `json:"strength_rank_wins"`
	MeanWinnerOdds   float64 `json:"mean_winner_odds"`
	TotalStaked      float64 `json:"total_staked"`
	TotalPaid        float64 `json:"total_paid"`
	RealizedTake     float64 `json:"realized_take"`
	ConfiguredEdge   float64 `json:"configured_edge"`
	DurationSeconds  float64 `json:"duration_seconds"`
}

func runBatch() error {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if races < 1 {
		return fmt.Errorf("need at least one race")
	}
	if speedup < 1 {
		return fmt.Errorf("speedup must be at least 1")
	}

	// The engine logs every race; at batch volume that is just noise.
	simLog := logrus.New()
	simLog.SetLevel(logrus.WarnLevel)

	raceCfg := engine.RaceConfig{
		HorseCount: cfg.Race.HorseCount,
		Distance:   cfg.Race.Distance,
		AttrMin:    cfg.Race.AttributeMin,
		AttrMax:    cfg.Race.AttributeMax,
	}

	// Movement per tick is scale*dt, so scaling both keeps the tick
	// resolution of a production race while compressing wall time.
	simCfg := engine.DefaultSimulatorConfig()
	simCfg.TickInterval = time.Duration(float64(simCfg.TickInterval) / speedup)
	simCfg.MovementScale *= speedup
	simCfg.GracePeriod = time.Duration(float64(simCfg.GracePeriod) / speedup)

	params := odds.Params{
		HouseEdge:  cfg.Odds.HouseEdge,
		MinOdds:    cfg.Odds.MinOdds,
		MaxOdds:    cfg.Odds.MaxOdds,
		PoolWeight: cfg.Odds.PoolWeight,
	}

	fmt.Printf("Simulating %d races (%d workers, seed %d, %.0fx speed)\n", races, workers, seed, speedup)
	start := time.Now()

	var (
		mu       sync.Mutex
		outcomes []raceOutcome
	)

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < races; i++ {
		raceID := i + 1
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed + int64(raceID)))
			outcome, err := simulateRace(raceID, raceCfg, simCfg, params, rng, simLog)
			if err != nil {
				return err
			}
			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rep := summarize(outcomes, cfg.Odds.HouseEdge, time.Since(start))
	printReport(rep)

	if outputPath != "" {
		if err := writeReport(rep, outputPath); err != nil {
			return err
		}
		fmt.Printf("\nReport written to %s\n", outputPath)
	}
	return nil
}

// simulateRace runs one complete cycle: field generation, a synthetic
// betting pass, the movement simulation and settlement.
func simulateRace(id int, raceCfg engine.RaceConfig, simCfg engine.SimulatorConfig, params odds.Params, rng *rand.Rand, simLog *logrus.Logger) (raceOutcome, error) {
	race := engine.CreateRace(id, raceCfg, rng)
	pricing := odds.NewEngine(params)
	board := pricing.Board(race)

	staked := placeBets(race, board, rng)

	favorite := favoriteHorse(board)

	race.SetPhase(models.PhaseRacing)
	simStart := time.Now()
	sim := engine.NewSimulator(simCfg, simLog, rng)
	order := sim.Run(context.Background(), race, nil)
	if len(order) == 0 {
		return raceOutcome{}, fmt.Errorf("race %d produced no finish order", id)
	}

	settler := engine.NewSettler(pricing, simLog)
	settlement := settler.Settle(race)

	winner := order[0]
	return raceOutcome{
		winnerOdds:   board[winner.ID].Winner,
		favoriteWon:  winner.ID == favorite,
		strengthRank: strengthRank(race, winner),
		raceSeconds:  time.Since(simStart).Seconds() * speedup,
		staked:       staked,
		paid:         settlement.TotalPaid(),
	}, nil
}

// strengthRank places the winner within its field by ability score,
// 1 being the strongest horse on the card.
func strengthRank(race *models.Race, winner *models.Horse) int {
	rank := 1
	for _, h := range race.Horses {
		if h.ID != winner.ID && h.Strength() > winner.Strength() {
			rank++
		}
	}
	return rank
}

// placeBets fills the pools the way a crowd would: winner and place bets
// weighted by the implied probabilities of the opening board, plus a few
// longshot trifectas. Returns the total staked.
func placeBets(race *models.Race, board map[int]models.HorseOdds, rng *rand.Rand) float64 {
	ids := make([]int, 0, len(board))
	weights := make([]float64, 0, len(board))
	var sum float64
	for id, quote := range board {
		w := 1.0 / quote.Winner
		ids = append(ids, id)
		weights = append(weights, w)
		sum += w
	}
	if sum == 0 {
		return 0
	}

	pick := func() int {
		target := rng.Float64() * sum
		for i, w := range weights {
			target -= w
			if target <= 0 {
				return ids[i]
			}
		}
		return ids[len(ids)-1]
	}

	var staked float64
	for i := 0; i < bettors; i++ {
		userID := fmt.Sprintf("sim_%d", i)
		amount := 0.5 + rng.Float64()*2.0

		var bet *models.Bet
		switch roll := rng.Float64(); {
		case roll < 0.65:
			bet = models.NewBet(userID, models.BetTypeWinner, amount, []int{pick()})
		case roll < 0.90:
			bet = models.NewBet(userID, models.BetTypePlace, amount, []int{pick()})
		default:
			first, second, third := pick(), pick(), pick()
			if first == second || second == third || first == third {
				// Collisions waste the pick, fall back to the top of the card.
				bet = models.NewBet(userID, models.BetTypeWinner, amount, []int{pick()})
			} else {
				bet = models.NewBet(userID, models.BetTypeTrifecta, amount, []int{first, second, third})
			}
		}

		if race.AddBet(bet) {
			staked += amount
		}
	}
	return staked
}

func favoriteHorse(board map[int]models.HorseOdds) int {
	favorite := 0
	best := 0.0
	for id, quote := range board {
		if favorite == 0 || quote.Winner < best {
			favorite = id
			best = quote.Winner
		}
	}
	return favorite
}

func summarize(outcomes []raceOutcome, configuredEdge float64, elapsed time.Duration) report {
	rep := report{
		Races:          len(outcomes),
		Seed:           seed,
		ConfiguredEdge: configuredEdge,
	}

	var oddsSum, secondsSum float64
	for _, o := range outcomes {
		if o.favoriteWon {
			rep.FavoriteWins++
		}
		for len(rep.StrengthRankWins) < o.strengthRank {
			rep.StrengthRankWins = append(rep.StrengthRankWins, 0)
		}
		rep.StrengthRankWins[o.strengthRank-1]++
		oddsSum += o.winnerOdds
		secondsSum += o.raceSeconds
		rep.TotalStaked += o.staked
		rep.TotalPaid += o.paid
	}

	if rep.Races > 0 {
		rep.FavoriteWinRate = float64(rep.FavoriteWins) / float64(rep.Races)
		rep.MeanWinnerOdds = oddsSum / float64(rep.Races)
		rep.MeanRaceSeconds = secondsSum / float64(rep.Races)
	}
	if rep.TotalStaked > 0 {
		rep.RealizedTake = 1 - rep.TotalPaid/rep.TotalStaked
	}
	rep.DurationSeconds = elapsed.Seconds()
	return rep
}

func printReport(rep report) {
	fmt.Println("\n=== Race Simulation Report ===")
	fmt.Printf("Races: %d (seed %d)\n", rep.Races, rep.Seed)
	fmt.Printf("Mean race time: %.1fs\n", rep.MeanRaceSeconds)
	fmt.Printf("Favorite won: %d (%.1f%%)\n", rep.FavoriteWins, rep.FavoriteWinRate*100)
	fmt.Printf("Mean winner opening odds: %.2f\n", rep.MeanWinnerOdds)
	fmt.Println("Wins by strength rank:")
	for i, wins := range rep.StrengthRankWins {
		if wins == 0 {
			continue
		}
		fmt.Printf("  #%d: %d (%.1f%%)\n", i+1, wins, float64(wins)/float64(rep.Races)*100)
	}
	fmt.Printf("Total staked: %.2f\n", rep.TotalStaked)
	fmt.Printf("Total paid out: %.2f\n", rep.TotalPaid)
	fmt.Printf("Realized house take: %.1f%% (configured edge %.1f%%)\n", rep.RealizedTake*100, rep.ConfiguredEdge*100)
	fmt.Printf("Batch completed in %.1fs\n", rep.DurationSeconds)
}

func writeReport(rep report, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
