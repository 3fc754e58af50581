// NSP 求解器命令行入口：
// 解析实例文件，构造初始解，运行模拟退火，输出并按需持久化结果
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/eljapi/nurse-scheduling-problem/internal/config"
	"github.com/eljapi/nurse-scheduling-problem/internal/database"
	"github.com/eljapi/nurse-scheduling-problem/internal/metrics"
	"github.com/eljapi/nurse-scheduling-problem/internal/parser"
	"github.com/eljapi/nurse-scheduling-problem/internal/repository"
	"github.com/eljapi/nurse-scheduling-problem/pkg/logger"
	"github.com/eljapi/nurse-scheduling-problem/pkg/render"
	"github.com/eljapi/nurse-scheduling-problem/pkg/scheduler/constraint"
	"github.com/eljapi/nurse-scheduling-problem/pkg/scheduler/optimizer"
	"github.com/eljapi/nurse-scheduling-problem/pkg/stats"
	"github.com/eljapi/nurse-scheduling-problem/pkg/validator"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var (
		instancePath = flag.String("instance", "", "实例文件路径（必填）")
		outputPath   = flag.String("output", "", "结果输出文件，缺省写到标准输出")
		iterations   = flag.Int("iterations", 0, "最大迭代次数，覆盖环境配置")
		t0           = flag.Float64("t0", 0, "初始温度，覆盖环境配置")
		alpha        = flag.Float64("alpha", 0, "冷却速率，覆盖环境配置")
		stagnation   = flag.Int("stagnation", 0, "停滞阈值，覆盖环境配置")
		seed         = flag.Int64("seed", 0, "随机种子，覆盖环境配置")
		mode         = flag.String("mode", "", "求解模式 optimisation/feasibility，覆盖环境配置")
		showVersion  = flag.Bool("version", false, "打印版本信息")
		showMetrics  = flag.Bool("metrics", false, "求解后打印指标")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("nspsolve v%s (build %s, commit %s)\n", Version, BuildTime, GitCommit)
		return
	}
	if *instancePath == "" {
		fmt.Fprintln(os.Stderr, "用法: nspsolve -instance <实例文件> [选项]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
	})

	// 命令行参数覆盖环境配置
	if *iterations > 0 {
		cfg.Solver.MaxIterations = *iterations
	}
	if *t0 > 0 {
		cfg.Solver.InitialTemperature = *t0
	}
	if *alpha > 0 {
		cfg.Solver.CoolingRate = *alpha
	}
	if *stagnation > 0 {
		cfg.Solver.StagnationLimit = *stagnation
	}
	if *seed != 0 {
		cfg.Solver.Seed = *seed
	}
	if *mode != "" {
		cfg.Solver.Mode = *mode
	}

	inst, err := parser.ParseFile(*instancePath)
	if err != nil {
		logger.WithError(err).Str("instance", *instancePath).Msg("解析实例失败")
		os.Exit(1)
	}
	logger.Info().
		Str("instance", *instancePath).
		Int("employees", inst.NumEmployees()).
		Int("days", inst.Horizon()).
		Int("shift_types", inst.NumShiftTypes()).
		Msg("实例加载完成")

	solverCfg := &optimizer.Config{
		InitialTemperature:    cfg.Solver.InitialTemperature,
		CoolingRate:           cfg.Solver.CoolingRate,
		MaxIterations:         cfg.Solver.MaxIterations,
		StagnationLimit:       cfg.Solver.StagnationLimit,
		WeightUpdateFrequency: cfg.Solver.WeightUpdateFrequency,
		MaxRestarts:           cfg.Solver.MaxRestarts,
		IntensifyPeriod:       cfg.Solver.IntensifyPeriod,
		DiversifyPeriod:       cfg.Solver.DiversifyPeriod,
		EliteSize:             cfg.Solver.EliteSize,
		TabuCapacity:          cfg.Solver.TabuCapacity,
		MinTemperature:        1e-8,
		PerturbationRate:      0.15,
		Seed:                  cfg.Solver.Seed,
	}

	solveMode := optimizer.ModeOptimisation
	if cfg.Solver.Mode == "feasibility" {
		solveMode = optimizer.ModeFeasibility
	}

	evaluator := constraint.NewEvaluator(inst)
	sa := optimizer.NewSimulatedAnnealing(inst, evaluator, solverCfg)
	result := sa.Solve(solveMode)

	recordMetrics(result, solveMode)

	report := validator.New(inst).Validate(result.Schedule)
	for _, violation := range report.Violations {
		if violation.Severity == validator.SeverityError {
			logger.Warn().Str("family", violation.Family).Str("employee", violation.EmployeeID).
				Msg("结果仍存在硬约束违反")
		}
	}

	solutionStats := stats.Analyze(inst, result.Schedule)
	logger.Info().
		Int("hard", result.HardScore).
		Int("soft", result.SoftScore).
		Bool("feasible", result.Feasible).
		Float64("coverage_rate", solutionStats.CoverageRate).
		Float64("minutes_std_dev", solutionStats.MinutesStdDev).
		Msg("求解结果统计")

	output := render.Solution(inst, result.Schedule) +
		"\n" + render.Matrix(result.Schedule) +
		"\n" + render.Summary(result.HardScore, result.SoftScore, result.Feasible, result.Duration.Seconds())

	if *outputPath != "" {
		if err := os.WriteFile(*outputPath, []byte(output), 0644); err != nil {
			logger.WithError(err).Str("path", *outputPath).Msg("写出结果文件失败")
			os.Exit(1)
		}
	} else {
		fmt.Print(output)
	}

	if cfg.Database.Enabled {
		persistRun(cfg, *instancePath, result)
	}
	if *showMetrics {
		fmt.Fprint(os.Stderr, metrics.GetRegistry().Expose())
	}

	// 收敛失败不是错误：带违反的最优解照常输出，退出码只反映流程本身
}

// recordMetrics 把求解结果写入指标注册表
func recordMetrics(result *optimizer.Result, mode optimizer.Mode) {
	registry := metrics.GetRegistry()
	registry.GetCounter("nsp_solve_runs_total").Inc(mode.String(), fmt.Sprintf("%t", result.Feasible))
	registry.GetCounter("nsp_iterations_total").Add(float64(result.Iterations))
	registry.GetCounter("nsp_accepted_moves_total").Add(float64(result.Accepted))
	registry.GetCounter("nsp_restarts_total").Add(float64(result.Restarts))
	registry.GetGauge("nsp_best_hard_score").Set(float64(result.HardScore), result.RunID.String())
	registry.GetGauge("nsp_best_soft_score").Set(float64(result.SoftScore), result.RunID.String())
	registry.GetGauge("nsp_solve_duration_seconds").Set(result.Duration.Seconds(), result.RunID.String())
}

// persistRun 把求解记录写入 Postgres
func persistRun(cfg *config.Config, instancePath string, result *optimizer.Result) {
	db, err := database.New(cfg)
	if err != nil {
		logger.WithError(err).Msg("连接数据库失败，跳过持久化")
		return
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := repository.NewSolveRunRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		logger.WithError(err).Msg("初始化存储表失败，跳过持久化")
		return
	}

	run := &repository.SolveRun{
		ID:           result.RunID,
		InstanceName: instancePath,
		Mode:         cfg.Solver.Mode,
		HardScore:    result.HardScore,
		SoftScore:    result.SoftScore,
		Feasible:     result.Feasible,
		Iterations:   result.Iterations,
		Restarts:     result.Restarts,
		Seed:         cfg.Solver.Seed,
		Duration:     result.Duration,
		Assignments:  result.Schedule.ToCompactString(),
	}
	if err := repo.Create(ctx, run); err != nil {
		logger.WithError(err).Msg("写入求解记录失败")
		return
	}
	logger.Info().Str("run_id", run.ID.String()).Msg("求解记录已持久化")
}
