package scene

import (
	"cmp"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/vike-go/engine/game_object"
	"github.com/Carmen-Shannon/vike-go/engine/light"
	"github.com/Carmen-Shannon/vike-go/engine/model"
	"github.com/Carmen-Shannon/vike-go/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
)

// DrawRange is a contiguous run [Start, End) of the instance buffer drawn with one model.
// The closing range of a pass may be empty and carries a nil Model when the pass had no
// drawable entries at all.
type DrawRange struct {
	Model model.Model
	Start uint32
	End   uint32
}

// Len returns the number of instances in the range.
func (r DrawRange) Len() uint32 {
	return r.End - r.Start
}

// FrameData is the compiled output of PreFrame.
type FrameData struct {
	// Instances holds every object instance followed by every light instance.
	Instances []InstanceRaw

	// Objects are the draw ranges of object instances, grouped by model.
	Objects []DrawRange

	// Lights are the draw ranges of light marker instances, grouped by model.
	Lights []DrawRange

	// LightUniform holds one entry per expanded light instance, up to light.MaxLights.
	LightUniform light.LightUniform
}

// AssertCapacity panics when the frame does not fit the GPU instance buffer.
func (f *FrameData) AssertCapacity() {
	if len(f.Instances) > MaxInstances {
		panic("scene: instance buffer capacity exceeded")
	}
}

func (s *store) PreFrame() FrameData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var fd FrameData
	lights := s.sortedLights()

	for _, l := range lights {
		if fd.LightUniform.Full() {
			break
		}
		s.forEachPlacement(*l.Transform(), s.arraysFor(l.Name()), func(t transform.Transform) bool {
			return fd.LightUniform.Push(l.ToGPU(t))
		})
	}

	objects := s.sortedObjects()
	drawable := make([]drawEntry, 0, len(objects)+len(lights))
	for _, obj := range objects {
		if obj.Model() != nil {
			drawable = append(drawable, objectEntry(obj))
		}
	}
	fd.Objects = s.compileRanges(&fd.Instances, drawable)

	drawable = drawable[:0]
	for _, l := range lights {
		if l.Model() != nil {
			drawable = append(drawable, lightEntry(l))
		}
	}
	fd.Lights = s.compileRanges(&fd.Instances, drawable)

	return fd
}

// drawEntry is an object or light reduced to what the range pass needs.
type drawEntry struct {
	name     string
	mdl      model.Model
	base     transform.Transform
	color    mgl32.Vec3
	hasColor bool
}

func objectEntry(obj game_object.GameObject) drawEntry {
	return drawEntry{name: obj.Name(), mdl: obj.Model(), base: *obj.Transform()}
}

func lightEntry(l light.GameLight) drawEntry {
	return drawEntry{name: l.Name(), mdl: l.Model(), base: *l.Transform(), color: l.Color(), hasColor: true}
}

// compileRanges appends the instances of entries to dst and returns the draw ranges over
// them. Entries are grouped by model handle, groups ordered by model name and distinct
// models sharing a name by first appearance; entries arrive in name order and the
// stable sort keeps that order within a group. A range is closed whenever the model
// changes, skipping empty ones, and the last range is always closed.
func (s *store) compileRanges(dst *[]InstanceRaw, entries []drawEntry) []DrawRange {
	seen := make(map[model.Model]int)
	for _, e := range entries {
		if _, ok := seen[e.mdl]; !ok {
			seen[e.mdl] = len(seen)
		}
	}
	slices.SortStableFunc(entries, func(a, b drawEntry) int {
		return cmp.Or(
			cmp.Compare(a.mdl.Name(), b.mdl.Name()),
			cmp.Compare(seen[a.mdl], seen[b.mdl]),
		)
	})

	var ranges []DrawRange
	var current model.Model
	start := uint32(len(*dst))
	for _, e := range entries {
		if current != nil && current != e.mdl {
			end := uint32(len(*dst))
			if end > start {
				ranges = append(ranges, DrawRange{Model: current, Start: start, End: end})
			}
			start = end
			current = nil
		}
		if current == nil {
			current = e.mdl
		}

		from := len(*dst)
		*dst = s.expand(*dst, e.base, s.arraysFor(e.name))
		if e.hasColor {
			for i := from; i < len(*dst); i++ {
				(*dst)[i].SetColor(e.color)
			}
		}
	}
	return append(ranges, DrawRange{Model: current, Start: start, End: uint32(len(*dst))})
}

// expand appends the instances of one object or light to dst. Without arrays the base
// transform is the single instance; otherwise each array contributes Count instances in
// array-name order and the base alone is not drawn.
func (s *store) expand(dst []InstanceRaw, base transform.Transform, arrays []Array) []InstanceRaw {
	if len(arrays) == 0 {
		return append(dst, NewInstanceRaw(base))
	}
	for _, a := range arrays {
		if a.Count == 0 || a.Generator == nil {
			continue
		}
		from := len(dst)
		dst = slices.Grow(dst, a.Count)[:from+a.Count]
		slots := dst[from:]
		if a.Count >= s.parallelThreshold && s.expansionWorkers > 1 {
			if pool := s.pool(); pool != nil {
				s.expandParallel(pool, slots, base, a.Generator)
				continue
			}
		}
		for i := range slots {
			slots[i] = NewInstanceRaw(base.Add(a.Generator.Transform(i)))
		}
	}
	return dst
}

// expandParallel fills slots in chunks on the expansion pool. Each task writes a disjoint
// sub-slice, so the result is identical to serial expansion.
func (s *store) expandParallel(pool worker.DynamicWorkerPool, slots []InstanceRaw, base transform.Transform, gen ArrayGenerator) {
	chunk := (len(slots) + s.expansionWorkers - 1) / s.expansionWorkers

	var wg sync.WaitGroup
	taskID := 0
	for lo := 0; lo < len(slots); lo += chunk {
		hi := min(lo+chunk, len(slots))
		wg.Add(1)
		first, part := lo, slots[lo:hi]
		pool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				for i := range part {
					part[i] = NewInstanceRaw(base.Add(gen.Transform(first + i)))
				}
				return nil, nil
			},
		})
		taskID++
	}
	wg.Wait()
}

// forEachPlacement calls fn with every expanded placement of base until fn returns false.
func (s *store) forEachPlacement(base transform.Transform, arrays []Array, fn func(transform.Transform) bool) {
	if len(arrays) == 0 {
		fn(base)
		return
	}
	for _, a := range arrays {
		if a.Generator == nil {
			continue
		}
		for i := range a.Count {
			if !fn(base.Add(a.Generator.Transform(i))) {
				return
			}
		}
	}
}
