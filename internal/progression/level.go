package progression

import (
	"math"
	"math/bits"
)

// Progress is the derived position of a cumulative XP total on the level curve.
type Progress struct {
	Level          int     `json:"level"`
	TotalXP        int64   `json:"total_xp"`
	CurrentLevelXP int64   `json:"current_level_xp"`
	NextLevelXP    int64   `json:"next_level_xp"`
	ProgressToNext float64 `json:"progress_to_next"`
}

// Threshold returns the cumulative XP required to reach level.
// Level 1 requires 0 XP. Levels below 1 are treated as level 1.
// Thresholds past the int64 range saturate at math.MaxInt64.
func (p Policy) Threshold(level int) int64 {
	if level <= 1 {
		return 0
	}

	// One of L and L-1 is even, so halve it before multiplying.
	a, b := uint64(level), uint64(level-1)
	if a%2 == 0 {
		a /= 2
	} else {
		b /= 2
	}

	hi, pairs := bits.Mul64(a, b)
	if hi != 0 || pairs > math.MaxInt64 {
		return math.MaxInt64
	}
	hi, total := bits.Mul64(pairs, uint64(p.levelStep()))
	if hi != 0 || total > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(total)
}

func (p Policy) levelStep() int64 {
	if p.LevelStepXP <= 0 {
		return DefaultPolicy().LevelStepXP
	}
	return p.LevelStepXP
}

// LevelFor maps cumulative XP onto the curve. A total exactly on a threshold
// belongs to the higher level. Negative totals are treated as zero.
func (p Policy) LevelFor(totalXP int64) Progress {
	if totalXP < 0 {
		totalXP = 0
	}

	// Solve step*L*(L-1)/2 <= x for the largest L, then correct float error.
	step := float64(p.levelStep())
	level := int((1 + math.Sqrt(1+8*float64(totalXP)/step)) / 2)
	if level < 1 {
		level = 1
	}
	for level > 1 && p.Threshold(level) > totalXP {
		level--
	}
	// A saturated threshold cannot be exceeded, so it ends the climb.
	for {
		next := p.Threshold(level + 1)
		if next > totalXP || next == math.MaxInt64 {
			break
		}
		level++
	}

	base := p.Threshold(level)
	span := p.Threshold(level+1) - base
	current := totalXP - base

	progress := 1.0
	if span > 0 {
		progress = float64(current) / float64(span)
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	return Progress{
		Level:          level,
		TotalXP:        totalXP,
		CurrentLevelXP: current,
		NextLevelXP:    span,
		ProgressToNext: progress,
	}
}
