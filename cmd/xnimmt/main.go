package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/x-nimmt/internal/apperrors"
	"github.com/palemoky/x-nimmt/internal/config"
	"github.com/palemoky/x-nimmt/internal/logger"
	"github.com/palemoky/x-nimmt/internal/match"
	"github.com/palemoky/x-nimmt/internal/storage"
	"github.com/palemoky/x-nimmt/internal/ui"
)

const leaderboardSize = 10

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

// options 命令行参数，未显式设置的不覆盖配置
type options struct {
	configPath string
	games      int
	seed       int64
	workers    int
	verbose    int
	players    string
	tui        bool
	set        map[string]bool
}

func parseFlags(args []string) (*options, error) {
	flags := flag.NewFlagSet("xnimmt", flag.ContinueOnError)
	o := &options{set: map[string]bool{}}
	flags.StringVar(&o.configPath, "config", "configs/config.yaml", "配置文件路径")
	flags.IntVar(&o.games, "games", 0, "对局数")
	flags.Int64Var(&o.seed, "seed", 0, "随机种子，负数表示随机")
	flags.IntVar(&o.workers, "workers", 0, "并行 worker 数")
	flags.IntVar(&o.verbose, "verbose", 0, "输出级别 0/1/2")
	flags.StringVar(&o.players, "players", "", "逗号分隔的智能体名称")
	flags.BoolVar(&o.tui, "tui", false, "显示进度界面")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	flags.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

func (o *options) apply(cfg *config.Config) {
	if o.set["games"] {
		cfg.Game.Games = o.games
	}
	if o.set["seed"] {
		cfg.Game.Seed = o.seed
	}
	if o.set["workers"] {
		cfg.Match.Workers = o.workers
	}
	if o.set["verbose"] {
		cfg.Game.Verbose = o.verbose
	}
	if o.set["players"] {
		var players []string
		for _, p := range strings.Split(o.players, ",") {
			if p = strings.TrimSpace(p); p != "" {
				players = append(players, p)
			}
		}
		cfg.Game.Players = players
	}
	if o.set["tui"] {
		cfg.Match.TUI = o.tui
	}
}

// loadConfig 依次应用配置文件、.env/环境变量与命令行参数
func loadConfig(o *options) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		if !o.set["config"] && errors.Is(err, fs.ErrNotExist) {
			log.Printf("配置文件 %s 不存在，使用默认配置", o.configPath)
			cfg = config.Default()
		} else {
			return nil, err
		}
	}
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	o.apply(cfg)
	return cfg, cfg.Validate()
}

func run(ctx context.Context, args []string, stdout io.Writer) int {
	o, err := parseFlags(args)
	if err != nil {
		return 2
	}

	cfg, err := loadConfig(o)
	if err != nil {
		log.Printf("配置错误: %v", err)
		return 2
	}

	if err := logger.Init(cfg.Log.Dir); err != nil {
		log.Printf("初始化日志失败: %v", err)
	}
	defer logger.Close()
	logger.SetDebug(cfg.Log.Debug)

	seed := cfg.ResolveSeed()
	runner, err := match.NewRunner(cfg.MatchConfig(seed))
	if err != nil {
		log.Printf("配置错误: %v", err)
		return 2
	}

	printer := ui.NewPrinter(stdout, cfg.Game.Verbose, cfg.Game.Players, cfg.Game.Games)
	printer.Settings(runner.Deck(), cfg.GameSettings())

	var summary *match.Summary
	if cfg.Match.TUI {
		summary, err = runWithProgress(ctx, runner, cfg, seed)
	} else {
		runner.SetListener(printer)
		runner.OnProgress(printer.Progress)
		summary, err = runner.RunParallel(ctx, cfg.Match.Workers)
	}

	if summary != nil && summary.Completed() > 0 {
		printer.Finish(summary)
	}
	if err != nil {
		logger.LogError("match %s: %v", runner.ID(), err)
		fmt.Fprintln(stdout, err)
		if apperrors.IsConfigError(err) {
			return 2
		}
		return 1
	}

	if cfg.Redis.Enabled {
		if err := recordToLeaderboard(ctx, cfg, summary, stdout); err != nil {
			logger.LogError("leaderboard: %v", err)
			log.Printf("排行榜更新失败: %v", err)
		}
	}
	return 0
}

type result struct {
	summary *match.Summary
	err     error
}

// runInBackground plays the match on its own goroutine, feeding progress and
// the final DoneMsg to updates. updates is closed once the match is over so a
// pending listen returns even after the UI has quit.
func runInBackground(ctx context.Context, runner *match.Runner, workers int, updates chan tea.Msg) <-chan result {
	runner.OnProgress(ui.SendProgress(ctx, updates))

	done := make(chan result, 1)
	go func() {
		defer close(updates)
		s, err := runner.RunParallel(ctx, workers)
		done <- result{s, err}
		select {
		case updates <- ui.DoneMsg{Summary: s, Err: err}:
		case <-ctx.Done():
		}
	}()
	return done
}

// runWithProgress 在 bubbletea 进度界面中运行比赛
func runWithProgress(ctx context.Context, runner *match.Runner, cfg *config.Config, seed uint64) (*match.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan tea.Msg, 16)
	done := runInBackground(ctx, runner, cfg.Match.Workers, updates)

	title := fmt.Sprintf("X Nimmt! %s  seed %d", strings.Join(cfg.Game.Players, " vs "), seed)
	model := ui.NewProgressModel(title, cfg.Game.Games, updates, cancel)
	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
		logger.LogError("progress ui: %v", err)
		cancel()
	}

	res := <-done
	return res.summary, res.err
}

// leaderboard is the part of storage.Leaderboard the CLI needs.
type leaderboard interface {
	RecordMatch(ctx context.Context, s *match.Summary) error
	GetLeaderboard(ctx context.Context, limit int) ([]*storage.LeaderboardEntry, error)
}

var _ leaderboard = (*storage.Leaderboard)(nil)

func recordToLeaderboard(ctx context.Context, cfg *config.Config, s *match.Summary, w io.Writer) error {
	rdb, err := storage.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer rdb.Close()
	return publish(ctx, storage.NewLeaderboard(rdb), s, w)
}

// publish records the match and prints the updated ranking.
func publish(ctx context.Context, lb leaderboard, s *match.Summary, w io.Writer) error {
	if err := lb.RecordMatch(ctx, s); err != nil {
		return fmt.Errorf("record match %s: %w", s.MatchID, err)
	}
	entries, err := lb.GetLeaderboard(ctx, leaderboardSize)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "\n === Leaderboard ===")
	for _, e := range entries {
		fmt.Fprintf(w, "  %2d. %-12s avg %7.2f  win rate %5.1f%%  (%d games)\n",
			e.Rank, e.Name, e.AveragePoints, e.WinRate, e.Games)
	}
	return nil
}
