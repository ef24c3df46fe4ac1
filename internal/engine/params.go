package engine

// Search pruning toggles. Each corresponds to one technique named in the
// search core's pruning toolkit; kept as named constants rather than a
// config struct since none of them are meant to be user-tunable at runtime.
const (
	EnableRFP             = true // Reverse futility pruning
	EnableNMP             = true // Null move pruning
	EnableProbcut         = true
	EnableFutilityPruning = true
	EnableSingularExt     = true
	EnableSEEPruning      = true
	EnableLMP             = true // Late move pruning
	EnableHistoryPruning  = true
)

// probcutDepth is the minimum depth at which ProbCut is attempted.
const probcutDepth = 5

// lmpThreshold[depth] caps the number of quiet moves tried at shallow
// depths before Late Move Pruning skips the rest.
var lmpThreshold = [8]int{0, 5, 8, 13, 20, 29, 40, 53}

// historyPruningThreshold is the minimum history score a quiet move needs
// to avoid being skipped at shallow depth.
const historyPruningThreshold = -4000

// lazyEvalMargin gates quiescence search's cheap material-only cutoff
// before falling back to the full static evaluation.
const lazyEvalMargin = 400
