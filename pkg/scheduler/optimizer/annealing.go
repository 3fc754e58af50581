// Package optimizer 提供排班优化算法
package optimizer

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/eljapi/nurse-scheduling-problem/pkg/logger"
	"github.com/eljapi/nurse-scheduling-problem/pkg/model"
	"github.com/eljapi/nurse-scheduling-problem/pkg/scheduler/constraint"
	"github.com/eljapi/nurse-scheduling-problem/pkg/scheduler/solver"
)

// Mode 求解模式
type Mode int

const (
	ModeOptimisation Mode = iota // 跑满迭代预算
	ModeFeasibility              // 找到可行解立即返回
)

// String 返回模式名称
func (m Mode) String() string {
	if m == ModeFeasibility {
		return "feasibility"
	}
	return "optimisation"
}

// Config 模拟退火参数
type Config struct {
	InitialTemperature    float64 `json:"initial_temperature"`
	CoolingRate           float64 `json:"cooling_rate"`
	MaxIterations         int     `json:"max_iterations"`
	StagnationLimit       int     `json:"stagnation_limit"`
	WeightUpdateFrequency int     `json:"weight_update_frequency"` // 0 表示取 StagnationLimit/2
	MaxRestarts           int     `json:"max_restarts"`
	IntensifyPeriod       int     `json:"intensify_period"`
	DiversifyPeriod       int     `json:"diversify_period"`
	EliteSize             int     `json:"elite_size"`
	TabuCapacity          int     `json:"tabu_capacity"`
	MinTemperature        float64 `json:"min_temperature"`
	PerturbationRate      float64 `json:"perturbation_rate"`
	AuditFrequency        int     `json:"audit_frequency"` // 0 表示关闭缓存校验
	Seed                  int64   `json:"seed"`            // 0 表示按时间播种
}

// DefaultConfig 默认参数
func DefaultConfig() *Config {
	return &Config{
		InitialTemperature: 100.0,
		CoolingRate:        0.99,
		MaxIterations:      100000,
		StagnationLimit:    1000,
		MaxRestarts:        5,
		IntensifyPeriod:    200,
		DiversifyPeriod:    500,
		EliteSize:          5,
		TabuCapacity:       50,
		MinTemperature:     1e-8,
		PerturbationRate:   0.15,
	}
}

// Result 一次求解的结果与统计
type Result struct {
	RunID      uuid.UUID       `json:"run_id"`
	Schedule   *model.Schedule `json:"-"`
	HardScore  int             `json:"hard_score"`
	SoftScore  int             `json:"soft_score"`
	Feasible   bool            `json:"feasible"`
	Iterations int             `json:"iterations"`
	Restarts   int             `json:"restarts"`
	Accepted   int             `json:"accepted"`
	Duration   time.Duration   `json:"duration"`
}

// SimulatedAnnealing 主搜索驱动器
// 不可行区域按加权硬约束得分接受移动，可行区域只在软约束上搜索且禁止重新进入不可行域；
// 带禁忌表、精英集合、周期性强化与多样化重启
type SimulatedAnnealing struct {
	inst      *model.Instance
	evaluator *constraint.Evaluator
	config    *Config
	rng       *rand.Rand
	logger    *logger.SolverLogger

	// 一次求解内的状态
	incremental     *constraint.IncrementalEvaluator
	neighborhood    *Neighborhood
	tabu            *TabuList
	elite           *EliteSet
	best            *model.Schedule
	bestHard        int
	bestSoft        int
	bestWeighted    float64
	currentWeighted float64
}

// NewSimulatedAnnealing 创建求解器，随机数发生器在此播种一次
func NewSimulatedAnnealing(inst *model.Instance, evaluator *constraint.Evaluator, config *Config) *SimulatedAnnealing {
	if config == nil {
		config = DefaultConfig()
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimulatedAnnealing{
		inst:      inst,
		evaluator: evaluator,
		config:    config,
		rng:       rand.New(rand.NewSource(seed)),
		logger:    logger.NewSolverLogger(),
	}
}

// Solve 从五步构造解出发求解
func (sa *SimulatedAnnealing) Solve(mode Mode) *Result {
	initial := solver.NewInitialSolutionGenerator(sa.inst, sa.rng).Generate()
	return sa.SolveFrom(initial, mode)
}

// SolveFrom 从给定的初始排班出发求解
func (sa *SimulatedAnnealing) SolveFrom(initial *model.Schedule, mode Mode) *Result {
	start := time.Now()
	runID := uuid.New()
	cfg := sa.config

	sa.logger.StartRun(runID.String(), sa.inst.NumEmployees(), sa.inst.Horizon(), sa.inst.NumShiftTypes())

	sa.incremental = constraint.NewIncrementalEvaluator(sa.evaluator, initial)
	sa.neighborhood = NewNeighborhood(sa.inst, sa.evaluator, sa.rng)
	sa.tabu = NewTabuList(cfg.TabuCapacity)
	sa.elite = NewEliteSet(cfg.EliteSize)

	sa.best = sa.incremental.Snapshot()
	sa.bestHard = sa.incremental.CurrentHard()
	sa.bestSoft = sa.incremental.CurrentSoft()
	sa.elite.Add(sa.best, sa.bestHard, sa.bestSoft)
	sa.refreshWeightedScores()

	weightFreq := cfg.WeightUpdateFrequency
	if weightFreq <= 0 {
		weightFreq = cfg.StagnationLimit / 2
	}
	if weightFreq <= 0 {
		weightFreq = 1
	}

	temperature := cfg.InitialTemperature
	iterSinceImprovement := 0
	restarts := 0
	accepted := 0
	iterations := 0

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		iterations = iter + 1

		// 1. 周期性调整自适应权重
		if iter%weightFreq == 0 {
			sa.evaluator.UpdateWeights(sa.incremental.Schedule())
			sa.refreshWeightedScores()
		}

		// 2. 长期无改进时的多样化重启
		if iterSinceImprovement > cfg.DiversifyPeriod && restarts < cfg.MaxRestarts {
			sa.diversify()
			restarts++
			iterSinceImprovement = 0
			temperature = 0.8 * cfg.InitialTemperature
			sa.logger.Diversify(iter, restarts)
			continue
		}

		// 3. 周期性从精英解做强化爬山
		if iterSinceImprovement > 0 && iterSinceImprovement%cfg.IntensifyPeriod == 0 {
			if sa.intensify() {
				iterSinceImprovement = 0
			}
		}

		// 4. 产出候选移动并做禁忌检查（以准则覆盖）
		move := sa.neighborhood.RandomMove(sa.incremental.Schedule(), sa.incremental.CurrentHard())
		delta := sa.incremental.GetDelta(move)
		newHard := sa.incremental.CurrentHard() + delta.Hard
		newSoft := sa.incremental.CurrentSoft() + delta.Soft

		rejected := false
		if sa.isTabu(move) && !sa.aspires(delta, newHard, newSoft) {
			rejected = true
		}

		// 5. 选择接受判据：不可行域用加权硬增量，可行域用软增量且禁止重新不可行
		var metric float64
		if !rejected {
			if sa.incremental.CurrentHard() < 0 {
				metric = delta.WeightedHard
			} else if newHard < 0 {
				rejected = true
			} else {
				metric = float64(delta.Soft)
			}
		}

		// 6. Metropolis 接受准则
		if !rejected && acceptance(metric, temperature) > sa.rng.Float64() {
			// 7. 接受：提交移动并把被覆盖的分配加入禁忌表
			displaced := sa.displacedKeys(move)
			sa.incremental.Apply(move)
			sa.currentWeighted += delta.WeightedHard
			for _, key := range displaced {
				sa.tabu.Add(key)
			}
			accepted++
		}

		// 8. 更新最优解与精英集合
		if sa.updateBest() {
			iterSinceImprovement = 0
			sa.logger.NewBest(iter, sa.bestHard, sa.bestSoft)
		} else {
			iterSinceImprovement++
		}

		// 9. 停滞处理：路径重连或回到最优解并扰动，重加热
		if iterSinceImprovement > cfg.StagnationLimit {
			relink := sa.rng.Float64() < 0.5 && sa.elite.Len() >= 2
			sa.escapeStagnation(relink)
			temperature = cfg.InitialTemperature
			iterSinceImprovement = 0
			sa.logger.Stagnation(iter, relink)
		}

		// 10. 降温
		temperature = math.Max(cfg.MinTemperature, cfg.CoolingRate*temperature)

		if cfg.AuditFrequency > 0 && iter%cfg.AuditFrequency == 0 && !sa.incremental.Audit() {
			logger.Warn().Int("iteration", iter).Msg("增量缓存校验失败，整表重算")
			sa.incremental.Reset(sa.incremental.Schedule())
		}
		if iter%100 == 0 {
			sa.logger.Progress(iter, sa.bestHard, sa.bestSoft,
				sa.incremental.CurrentHard(), sa.incremental.CurrentSoft(), temperature)
		}

		// 11. 可行性模式下找到可行解立即退出
		if mode == ModeFeasibility && sa.bestHard == 0 {
			break
		}
	}

	result := &Result{
		RunID:      runID,
		Schedule:   sa.best,
		HardScore:  sa.bestHard,
		SoftScore:  sa.bestSoft,
		Feasible:   sa.bestHard == 0,
		Iterations: iterations,
		Restarts:   restarts,
		Accepted:   accepted,
		Duration:   time.Since(start),
	}
	sa.logger.RunComplete(runID.String(), result.Duration, result.HardScore, result.SoftScore,
		result.Iterations, result.Feasible)
	return result
}

// acceptance Metropolis 接受概率：改进必收，恶化按 exp(Δ/T) 概率接受
func acceptance(delta, temperature float64) float64 {
	if delta > 0 {
		return 1.0
	}
	if temperature <= 0 {
		return 0.0
	}
	return math.Exp(delta / temperature)
}

// isTabu 检查移动写入的任一 (员工, 天, 新班次) 是否在禁忌表中
func (sa *SimulatedAnnealing) isTabu(move model.Move) bool {
	s := sa.incremental.Schedule()
	switch move.Type {
	case model.MoveChange, model.MoveFixShiftRotation:
		return sa.tabu.Contains(TabuKey{move.Employee1, move.Day1, move.Shift2})
	case model.MoveSwap:
		v1 := s.Get(move.Employee1, move.Day1)
		v2 := s.Get(move.Employee2, move.Day2)
		return sa.tabu.Contains(TabuKey{move.Employee1, move.Day1, v2}) ||
			sa.tabu.Contains(TabuKey{move.Employee2, move.Day2, v1})
	default:
		// 块交换与毁坏重建不做禁忌检查
		return false
	}
}

// aspires 准则覆盖：移动将产生新的全局最优时无视禁忌
// 当前不可行时按加权硬得分比较，否则按 (硬, 软) 字典序
func (sa *SimulatedAnnealing) aspires(delta constraint.Delta, newHard, newSoft int) bool {
	if sa.incremental.CurrentHard() < 0 {
		return sa.currentWeighted+delta.WeightedHard > sa.bestWeighted
	}
	return lexBetter(newHard, newSoft, sa.bestHard, sa.bestSoft)
}

// displacedKeys 收集移动将覆盖掉的分配，作为禁忌键
func (sa *SimulatedAnnealing) displacedKeys(move model.Move) []TabuKey {
	s := sa.incremental.Schedule()
	switch move.Type {
	case model.MoveChange, model.MoveFixShiftRotation:
		return []TabuKey{{move.Employee1, move.Day1, s.Get(move.Employee1, move.Day1)}}
	case model.MoveSwap:
		return []TabuKey{
			{move.Employee1, move.Day1, s.Get(move.Employee1, move.Day1)},
			{move.Employee2, move.Day2, s.Get(move.Employee2, move.Day2)},
		}
	default:
		return nil
	}
}

// updateBest 用当前解挑战最优解；双方都不可行时按加权得分比较，否则按字典序
func (sa *SimulatedAnnealing) updateBest() bool {
	currentHard := sa.incremental.CurrentHard()
	currentSoft := sa.incremental.CurrentSoft()

	improved := false
	if currentHard < 0 && sa.bestHard < 0 {
		improved = sa.currentWeighted > sa.bestWeighted
	} else {
		improved = lexBetter(currentHard, currentSoft, sa.bestHard, sa.bestSoft)
	}
	if !improved {
		return false
	}

	sa.best = sa.incremental.Snapshot()
	sa.bestHard = currentHard
	sa.bestSoft = currentSoft
	sa.bestWeighted = sa.currentWeighted
	sa.elite.Add(sa.best, sa.bestHard, sa.bestSoft)
	return true
}

// diversify 引导式重启：取最接近可行的精英（或新造初始解），
// 把违反格以 0.7 的概率清为休息日，然后重置评估器、禁忌表与权重
func (sa *SimulatedAnnealing) diversify() {
	var base *model.Schedule
	if member := sa.elite.DiversificationBase(); member != nil {
		base = member.Schedule.Clone()
	} else {
		base = solver.NewInitialSolutionGenerator(sa.inst, sa.rng).Generate()
	}

	for _, cell := range sa.evaluator.Hard().ViolatingAssignments(base) {
		if sa.rng.Float64() < 0.7 {
			base.Set(cell[0], cell[1], 0)
		}
	}

	sa.incremental.Reset(base)
	sa.tabu.Clear()
	sa.evaluator.Reset()
	sa.refreshWeightedScores()
}

// intensify 从每个精英解做最多 30 步贪心改进的变邻域爬山
// 出现严格更优的排班时同时设为当前解与最优解
func (sa *SimulatedAnnealing) intensify() bool {
	const maxImprovingMoves = 30
	const attemptsPerNeighborhood = 20

	var champion *model.Schedule
	championHard, championSoft := sa.bestHard, sa.bestSoft

	for _, member := range sa.elite.Members() {
		work := constraint.NewIncrementalEvaluator(sa.evaluator, member.Schedule)
		improving := 0
		level := 0
		for improving < maxImprovingMoves && level < 3 {
			found := false
			for attempt := 0; attempt < attemptsPerNeighborhood; attempt++ {
				var move model.Move
				switch level {
				case 0:
					move = sa.neighborhood.RandomChangeMove(work.Schedule())
				case 1:
					move = sa.neighborhood.RandomSwapMove(work.Schedule())
				default:
					move = sa.neighborhood.RandomBlockSwapMove(work.Schedule())
				}
				delta := work.GetDelta(move)
				if delta.Hard > 0 || (delta.Hard == 0 && delta.Soft > 0) {
					work.Apply(move)
					improving++
					found = true
					break
				}
			}
			if found {
				level = 0
			} else {
				level++
			}
		}
		if lexBetter(work.CurrentHard(), work.CurrentSoft(), championHard, championSoft) {
			champion = work.Snapshot()
			championHard = work.CurrentHard()
			championSoft = work.CurrentSoft()
		}
	}

	if champion == nil {
		return false
	}
	sa.incremental.Reset(champion)
	sa.best = champion.Clone()
	sa.bestHard = championHard
	sa.bestSoft = championSoft
	sa.elite.Add(champion, championHard, championSoft)
	sa.refreshWeightedScores()
	return true
}

// escapeStagnation 从精英对做路径重连，或回到最优解并扰动 15%
func (sa *SimulatedAnnealing) escapeStagnation(relink bool) {
	var restart *model.Schedule
	if relink {
		restart = sa.pathRelink()
	} else {
		restart = sa.best.Clone()
		sa.neighborhood.Perturb(restart, sa.config.PerturbationRate)
	}
	sa.incremental.Reset(restart)
	sa.evaluator.Reset()
	sa.refreshWeightedScores()
}

// pathRelink 在两个精英之间构造新起点：源解的每格以 0.3 的概率改为目标解的值
func (sa *SimulatedAnnealing) pathRelink() *model.Schedule {
	members := sa.elite.Members()
	i := sa.rng.Intn(len(members))
	j := sa.rng.Intn(len(members))
	for j == i {
		j = sa.rng.Intn(len(members))
	}
	source := members[i].Schedule.Clone()
	target := members[j].Schedule

	for emp := 0; emp < source.NumEmployees(); emp++ {
		for day := 0; day < source.HorizonDays(); day++ {
			if sa.rng.Float64() < 0.3 {
				source.Set(emp, day, target.Get(emp, day))
			}
		}
	}
	return source
}

// refreshWeightedScores 权重或解变化后重算缓存的加权得分
func (sa *SimulatedAnnealing) refreshWeightedScores() {
	sa.currentWeighted = sa.evaluator.WeightedHardScore(sa.incremental.Schedule())
	sa.bestWeighted = sa.evaluator.WeightedHardScore(sa.best)
}
