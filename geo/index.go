package geo

import (
	"sort"
	"sync"
)

// Entry is one indexed location. Tag is a free-form label callers filter on (the report type).
type Entry struct {
	ID    string
	Tag   string
	Point Point
}

// Hit is an entry matched by a radius query.
type Hit struct {
	Entry
	Distance float64
}

// Index answers radius queries over points. Entries are bucketed by geohash at every
// precision from 1 to MaxPrecision; a query scans a cell and its neighbours at the finest
// level whose cells are at least as large as the search radius, then filters by
// great-circle distance.
type Index struct {
	mu     sync.RWMutex
	byID   map[string]Entry
	levels [MaxPrecision + 1]map[string]map[string]struct{}
}

func NewIndex() *Index {
	idx := &Index{byID: make(map[string]Entry)}
	for p := 1; p <= MaxPrecision; p++ {
		idx.levels[p] = make(map[string]map[string]struct{})
	}
	return idx
}

// Put inserts or replaces an entry.
func (idx *Index) Put(e Entry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if old, ok := idx.byID[e.ID]; ok {
		idx.unlink(old)
	}
	idx.byID[e.ID] = e
	hash := Encode(e.Point, MaxPrecision)
	for p := 1; p <= MaxPrecision; p++ {
		cell := hash[:p]
		bucket, ok := idx.levels[p][cell]
		if !ok {
			bucket = make(map[string]struct{})
			idx.levels[p][cell] = bucket
		}
		bucket[e.ID] = struct{}{}
	}
}

// Remove drops the entry with the given id, if present.
func (idx *Index) Remove(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if old, ok := idx.byID[id]; ok {
		idx.unlink(old)
		delete(idx.byID, id)
	}
}

func (idx *Index) unlink(e Entry) {
	hash := Encode(e.Point, MaxPrecision)
	for p := 1; p <= MaxPrecision; p++ {
		cell := hash[:p]
		if bucket, ok := idx.levels[p][cell]; ok {
			delete(bucket, e.ID)
			if len(bucket) == 0 {
				delete(idx.levels[p], cell)
			}
		}
	}
}

func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.byID)
}

// Within returns every entry accepted by filter (nil accepts all) whose distance to p is at
// most radius meters, closest first.
func (idx *Index) Within(p Point, radius float64, filter func(Entry) bool) []Hit {
	if radius < 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var hits []Hit
	consider := func(e Entry) {
		if filter != nil && !filter(e) {
			return
		}
		if d := Distance(p, e.Point); d <= radius {
			hits = append(hits, Hit{Entry: e, Distance: d})
		}
	}

	if level := queryLevel(p, radius); level == 0 {
		for _, e := range idx.byID {
			consider(e)
		}
	} else {
		for _, cell := range coveringCells(p, level) {
			for id := range idx.levels[level][cell] {
				consider(idx.byID[id])
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})
	return hits
}

// NearestWithin returns the closest entry accepted by filter within radius meters of p.
func (idx *Index) NearestWithin(p Point, radius float64, filter func(Entry) bool) (Hit, bool) {
	hits := idx.Within(p, radius, filter)
	if len(hits) == 0 {
		return Hit{}, false
	}
	return hits[0], true
}

// queryLevel picks the finest precision whose cells cover the search box with a 3x3 block.
// Zero means the box is too large, touches a pole or crosses the antimeridian, and the caller
// must scan everything.
func queryLevel(p Point, radius float64) int {
	dLat, dLng, ok := boundingDegrees(p, radius)
	if !ok {
		return 0
	}
	// margin for floating point error at cell edges
	dLat *= 1.01
	dLng *= 1.01
	if p.Lng-dLng <= -180 || p.Lng+dLng >= 180 {
		return 0
	}
	for level := MaxPrecision; level >= 1; level-- {
		h, w := CellSize(level)
		if h >= dLat && w >= dLng {
			return level
		}
	}
	return 0
}
