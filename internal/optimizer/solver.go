package optimizer

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Status is the solver outcome
type Status string

const (
	StatusOptimal           Status = "optimal"
	StatusOptimalInaccurate Status = "optimal_inaccurate"
	StatusInfeasible        Status = "infeasible"
	StatusMaxIter           Status = "max_iter"
	StatusDegenerate        Status = "degenerate"
)

// Usable reports whether the weights of a solution may be used
func (s Status) Usable() bool {
	return s == StatusOptimal || s == StatusOptimalInaccurate
}

const (
	flatCurvature      = 1e-12
	tieTolerance       = 1e-12
	bisectionSteps     = 200
	inaccurateResidual = 1e-6
)

// Problem is a box-constrained quadratic program on the simplex
//
//	minimize   0.5·wᵀQw − cᵀw
//	subject to Σw = 1, Lower ≤ w ≤ Upper
type Problem struct {
	Q     *mat.SymDense
	C     []float64 // nil이면 0 (최소분산)
	Lower float64
	Upper float64
}

// Solution is the solver output
type Solution struct {
	Weights    []float64
	Status     Status
	Iterations int
	Objective  float64
}

// Solver is an accelerated projected-gradient (FISTA) QP solver
// ⭐ 결정적: 동일 입력 → 동일 출력 (시작점 = 균등 비중, 고정 반복 예산)
type Solver struct {
	MaxIterations int
	Tolerance     float64
}

// Solve runs the solver on p
func (s Solver) Solve(p Problem) Solution {
	n, _ := p.Q.Dims()

	if !feasible(n, p.Lower, p.Upper) {
		return Solution{Status: StatusInfeasible}
	}

	c := p.C
	if c == nil {
		c = make([]float64, n)
	}
	if hasNaN(c) || hasNaN(p.Q.RawSymmetric().Data) {
		return Solution{Status: StatusDegenerate}
	}

	// 스텝 크기 1/L, L = λmax(Q)
	var eig mat.EigenSym
	if ok := eig.Factorize(p.Q, false); !ok {
		return Solution{Status: StatusDegenerate}
	}
	values := eig.Values(nil)
	lipschitz := values[len(values)-1]
	if math.IsNaN(lipschitz) {
		return Solution{Status: StatusDegenerate}
	}
	if lipschitz <= flatCurvature {
		// 곡률 무시 가능 → 선형 문제의 꼭짓점 해
		w := solveLinear(c, p.Lower, p.Upper)
		return Solution{Weights: w, Status: StatusOptimal, Objective: objective(p.Q, c, w)}
	}

	start := make([]float64, n)
	for i := range start {
		start[i] = 1.0 / float64(n)
	}
	w := project(start, p.Lower, p.Upper)
	y := append([]float64(nil), w...)
	t := 1.0

	grad := make([]float64, n)
	step := make([]float64, n)

	for k := 1; k <= s.MaxIterations; k++ {
		gradient(p.Q, c, y, grad)
		for i := range step {
			step[i] = y[i] - grad[i]/lipschitz
		}
		next := project(step, p.Lower, p.Upper)

		moved := floats.Distance(next, w, 2)

		// 적응형 재시작: 목적함수 방향이 나빠지면 모멘텀 초기화
		restart := 0.0
		for i := range next {
			restart += grad[i] * (next[i] - w[i])
		}

		tNext := (1 + math.Sqrt(1+4*t*t)) / 2
		if restart > 0 {
			tNext = 1
			copy(y, next)
		} else {
			beta := (t - 1) / tNext
			for i := range y {
				y[i] = next[i] + beta*(next[i]-w[i])
			}
		}
		w, t = next, tNext

		if hasNaN(w) {
			return Solution{Status: StatusDegenerate, Iterations: k}
		}
		if moved < s.Tolerance {
			return Solution{Weights: w, Status: StatusOptimal, Iterations: k, Objective: objective(p.Q, c, w)}
		}
	}

	// 반복 예산 소진: 투영 기울기 잔차가 작으면 부정확 최적으로 인정
	status := StatusMaxIter
	if residual(p, c, w, lipschitz) < inaccurateResidual {
		status = StatusOptimalInaccurate
	}
	return Solution{Weights: w, Status: status, Iterations: s.MaxIterations, Objective: objective(p.Q, c, w)}
}

// solveLinear maximizes cᵀw on {Σw = 1, lower ≤ w ≤ upper}
// c가 큰 순서로 upper까지 채우고, 동률 그룹은 균등 분할
func solveLinear(c []float64, lower, upper float64) []float64 {
	n := len(c)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return c[order[a]] > c[order[b]] })

	w := make([]float64, n)
	for i := range w {
		w[i] = lower
	}
	remaining := 1 - float64(n)*lower
	capacity := upper - lower
	scale := math.Max(1, math.Max(math.Abs(floats.Max(c)), math.Abs(floats.Min(c))))

	for start := 0; start < n && remaining > 0; {
		end := start + 1
		for end < n && c[order[start]]-c[order[end]] <= tieTolerance*scale {
			end++
		}
		group := order[start:end]
		share := math.Min(capacity, remaining/float64(len(group)))
		for _, i := range group {
			w[i] += share
		}
		remaining -= share * float64(len(group))
		start = end
	}
	return w
}

func feasible(n int, lower, upper float64) bool {
	if n == 0 || lower > upper {
		return false
	}
	return float64(n)*lower <= 1+1e-12 && float64(n)*upper >= 1-1e-12
}

// gradient writes Qw − c into dst
func gradient(q *mat.SymDense, c, w, dst []float64) {
	var qw mat.VecDense
	qw.MulVec(q, mat.NewVecDense(len(w), w))
	for i := range dst {
		dst[i] = qw.AtVec(i) - c[i]
	}
}

func objective(q *mat.SymDense, c, w []float64) float64 {
	wv := mat.NewVecDense(len(w), w)
	return 0.5*mat.Inner(wv, q, wv) - floats.Dot(c, w)
}

// residual is ‖w − proj(w − ∇f(w)/L)‖·L
func residual(p Problem, c, w []float64, lipschitz float64) float64 {
	grad := make([]float64, len(w))
	gradient(p.Q, c, w, grad)
	step := make([]float64, len(w))
	for i := range step {
		step[i] = w[i] - grad[i]/lipschitz
	}
	return floats.Distance(w, project(step, p.Lower, p.Upper), 2) * lipschitz
}

// project maps v onto {Σw = 1, lower ≤ w ≤ upper}
// w_i = clip(v_i − τ, lower, upper), τ는 이분법으로 탐색 (Σ가 τ에 대해 단조감소)
func project(v []float64, lower, upper float64) []float64 {
	lo := floats.Min(v) - upper // Σ = n·upper ≥ 1
	hi := floats.Max(v) - lower // Σ = n·lower ≤ 1

	out := make([]float64, len(v))
	for k := 0; k < bisectionSteps; k++ {
		tau := (lo + hi) / 2
		if clippedSum(v, tau, lower, upper) > 1 {
			lo = tau
		} else {
			hi = tau
		}
		if hi-lo <= 0 {
			break
		}
	}

	tau := (lo + hi) / 2
	for i, x := range v {
		out[i] = clip(x-tau, lower, upper)
	}
	return out
}

func clippedSum(v []float64, tau, lower, upper float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += clip(x-tau, lower, upper)
	}
	return sum
}

func clip(x, lower, upper float64) float64 {
	return math.Max(lower, math.Min(upper, x))
}

func hasNaN(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return true
		}
	}
	return false
}
