package core

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

// ScoredFrame is a candidate frame with its quality score, the input to
// per-scene keyframe selection.
type ScoredFrame struct {
	Timestamp float64
	Score     float64
}

// EncodeFunc re-encodes the frame at the given timestamp to the profile's
// target resolution and format. Called once per selected frame; the raw
// candidate frames are not retained past allocation.
type EncodeFunc func(ctx context.Context, sceneIndex int, timestamp float64) ([]byte, error)

// Allocator distributes the keyframe budget across scenes and selects the
// highest-scoring frames within each scene.
type Allocator struct {
	logger *zap.Logger
}

func NewAllocator(logger *zap.Logger) *Allocator {
	return &Allocator{logger: logger}
}

// Budget is the total keyframe count for a profile and duration,
// never below one.
func Budget(profile entity.Profile, duration float64) int {
	b := int(math.Round(float64(profile.KeyframesPerMinute) * duration / 60))
	if b < 1 {
		b = 1
	}
	return b
}

// Plan computes per-scene keyframe allocations summing to budget.
// Base allocations are proportional to scene duration (floored); every
// scene is guaranteed one slot, with the overage clawed back from the
// scenes with the largest fractional remainder first. Leftover slots from
// floor rounding go to the largest fractional remainders, ties broken by
// scene index ascending. When the scene count exceeds the budget the
// one-slot floor wins and the effective total is the scene count.
func Plan(scenes []entity.Scene, duration float64, budget int) []int {
	n := len(scenes)
	alloc := make([]int, n)
	if n == 0 {
		return alloc
	}
	if n == 1 || duration <= 0 {
		alloc[0] = budget
		for i := 1; i < n; i++ {
			alloc[i] = 1
		}
		return alloc
	}

	frac := make([]float64, n)
	sum := 0
	for i, sc := range scenes {
		exact := float64(budget) * sc.Duration() / duration
		alloc[i] = int(math.Floor(exact))
		frac[i] = exact - float64(alloc[i])
		sum += alloc[i]
	}

	// Distribute floor-rounding leftovers, largest remainder first.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if frac[order[a]] != frac[order[b]] {
			return frac[order[a]] > frac[order[b]]
		}
		return order[a] < order[b]
	})
	for k := 0; sum < budget; k = (k + 1) % n {
		alloc[order[k]]++
		sum++
	}

	// Guarantee one slot per scene, deducting from the largest
	// remainders among scenes that can spare a slot.
	for i := range alloc {
		if alloc[i] == 0 {
			alloc[i] = 1
			sum++
		}
	}
	for _, i := range order {
		if sum <= budget {
			break
		}
		for sum > budget && alloc[i] > 1 {
			alloc[i]--
			sum--
		}
	}

	return alloc
}

// AllocateBudget selects the top-scoring frames per scene under the
// budget, re-encodes them through encode, and returns them ordered by
// timestamp. Scenes with fewer candidates than their allocation yield
// fewer keyframes; the shortfall is logged, not redistributed.
func (a *Allocator) AllocateBudget(
	ctx context.Context,
	scenes []entity.Scene,
	framesByScene map[int][]ScoredFrame,
	budget int,
	duration float64,
	encode EncodeFunc,
) ([]entity.KeyframeCandidate, error) {
	if budget < 1 {
		budget = 1
	}
	plan := Plan(scenes, duration, budget)

	type pick struct {
		sceneIndex int
		frame      ScoredFrame
	}
	var picks []pick

	for i, sc := range scenes {
		candidates := append([]ScoredFrame(nil), framesByScene[sc.Index]...)
		sort.SliceStable(candidates, func(a, b int) bool {
			if candidates[a].Score != candidates[b].Score {
				return candidates[a].Score > candidates[b].Score
			}
			return candidates[a].Timestamp < candidates[b].Timestamp
		})

		want := plan[i]
		if len(candidates) < want {
			if a.logger != nil {
				a.logger.Warn("keyframe budget shortfall",
					zap.Int("scene", sc.Index),
					zap.Int("allocated", want),
					zap.Int("candidates", len(candidates)),
				)
			}
			want = len(candidates)
		}
		for _, fr := range candidates[:want] {
			picks = append(picks, pick{sceneIndex: sc.Index, frame: fr})
		}
	}

	sort.SliceStable(picks, func(a, b int) bool {
		return picks[a].frame.Timestamp < picks[b].frame.Timestamp
	})

	selected := make([]entity.KeyframeCandidate, 0, len(picks))
	for _, p := range picks {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		data, err := encode(ctx, p.sceneIndex, p.frame.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("encode keyframe at %.3fs: %w", p.frame.Timestamp, err)
		}
		selected = append(selected, entity.KeyframeCandidate{
			SceneIndex: p.sceneIndex,
			Timestamp:  p.frame.Timestamp,
			Score:      p.frame.Score,
			Encoded:    data,
		})
	}

	return selected, nil
}

// GroupFramesByScene buckets scored sample frames into the scene whose
// half-open time range contains their timestamp.
func GroupFramesByScene(scenes []entity.Scene, frames []entity.Frame, scores []float64) map[int][]ScoredFrame {
	grouped := make(map[int][]ScoredFrame, len(scenes))
	for i, f := range frames {
		for _, sc := range scenes {
			if f.Timestamp >= sc.StartTime && (f.Timestamp < sc.EndTime || (sc.Duration() == 0 && f.Timestamp == sc.StartTime)) {
				grouped[sc.Index] = append(grouped[sc.Index], ScoredFrame{
					Timestamp: f.Timestamp,
					Score:     scores[i],
				})
				break
			}
		}
	}
	return grouped
}
